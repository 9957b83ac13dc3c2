package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasklist/app"
	"tasklist/config"
	"tasklist/model"
	"tasklist/view"
)

const (
	emptyBanner   = "No tasks here yet. Add one above."
	noMatches     = "No tasks match this filter."
	inputHint     = "What needs to be done?"
	defaultStatus = "Ready"
)

type uiMode int

const (
	modeNormal uiMode = iota
	modeAdd
	modeEdit
	modeConfirmClear
)

// noticeExpiredMsg hides the notice it was scheduled for, unless a newer one
// replaced it in the meantime.
type noticeExpiredMsg struct{ seq int }

// Options configures a Model. Zero values fall back to defaults.
type Options struct {
	Keys           config.Keymap
	NoticeDuration time.Duration
	Logger         *slog.Logger
	// Clipboard receives copied text. Defaults to the system clipboard.
	Clipboard func(string) error
}

type Model struct {
	session *app.Session
	logger  *slog.Logger

	keys  keyMap
	help  help.Model
	input textinput.Model

	mode   uiMode
	cursor int

	notice         app.Notice
	noticeSeq      int
	noticeDuration time.Duration

	copyText func(string) error

	width  int
	height int
}

func NewModel(session *app.Session, opts Options) *Model {
	if opts.Keys == (config.Keymap{}) {
		opts.Keys = config.Default().Keys
	}
	if opts.NoticeDuration <= 0 {
		opts.NoticeDuration = config.DefaultNoticeDuration
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	in := textinput.New()
	in.Placeholder = inputHint
	in.Prompt = "> "
	in.CharLimit = 0

	return &Model{
		session:        session,
		logger:         opts.Logger,
		keys:           newKeyMap(opts.Keys),
		help:           help.New(),
		input:          in,
		mode:           modeNormal,
		noticeDuration: opts.NoticeDuration,
		copyText:       opts.Clipboard,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = app.Notice{}
		}
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd, modeEdit:
			return m, m.updateInputMode(msg)
		case modeConfirmClear:
			return m, m.updateConfirmMode(msg)
		default:
			return m, m.updateNormalMode(msg)
		}
	}
	return m, nil
}

func (m *Model) updateNormalMode(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Add):
		return m.startInput(modeAdd, "")
	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()
	case key.Matches(msg, m.keys.Toggle):
		if row, ok := m.selectedRow(); ok {
			_, cmd, _ := m.dispatch(app.Toggle{ID: row.Task.ID})
			return cmd
		}
	case key.Matches(msg, m.keys.Delete):
		if row, ok := m.selectedRow(); ok {
			_, cmd, _ := m.dispatch(app.Delete{ID: row.Task.ID})
			return cmd
		}
	case key.Matches(msg, m.keys.Clear):
		if len(m.session.View().Rows) == 0 {
			return m.setNotice(app.Notice{Text: "Nothing to clear", Kind: app.NoticeSuccess})
		}
		m.mode = modeConfirmClear
	case key.Matches(msg, m.keys.FilterAll):
		return m.setFilter(model.FilterAll)
	case key.Matches(msg, m.keys.FilterActive):
		return m.setFilter(model.FilterActive)
	case key.Matches(msg, m.keys.FilterCompleted):
		return m.setFilter(model.FilterCompleted)
	case key.Matches(msg, m.keys.NextFilter):
		return m.setFilter(nextFilter(m.session.Filter()))
	case key.Matches(msg, m.keys.Copy):
		return m.copyVisible()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) updateInputMode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		if m.mode == modeEdit {
			m.dispatch(app.CancelEdit{})
		}
		m.stopInput()
		return nil
	case "esc":
		// Leaving the edit field commits it, like enter.
		if m.mode == modeEdit {
			return m.applyInput()
		}
		m.stopInput()
		return nil
	case "enter":
		return m.applyInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) updateConfirmMode(msg tea.KeyMsg) tea.Cmd {
	m.mode = modeNormal
	switch strings.ToLower(msg.String()) {
	case "y":
		res, cmd, _ := m.dispatch(app.ClearFiltered{Confirmed: true})
		if cmd != nil {
			return cmd
		}
		return m.setNotice(app.Notice{
			Text: fmt.Sprintf("%d %s cleared", res.Removed, plural(res.Removed, "task", "tasks")),
			Kind: app.NoticeSuccess,
		})
	default:
		m.dispatch(app.ClearFiltered{Confirmed: false})
		return m.setNotice(app.Notice{Text: "Clear cancelled", Kind: app.NoticeSuccess})
	}
}

func (m *Model) applyInput() tea.Cmd {
	text := m.input.Value()
	switch m.mode {
	case modeAdd:
		res, cmd, err := m.dispatch(app.Add{Text: text})
		if errors.Is(err, app.ErrValidation) {
			// Keep the field open so the user can type something.
			return cmd
		}
		m.stopInput()
		m.cursor = len(res.View.Rows) - 1
		return cmd
	case modeEdit:
		_, cmd, _ := m.dispatch(app.Edit{ID: m.session.Editing(), Text: text})
		m.stopInput()
		return cmd
	}
	return nil
}

func (m *Model) startInput(mode uiMode, value string) tea.Cmd {
	m.mode = mode
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) stopInput() {
	m.mode = modeNormal
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) startEdit() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	if _, err := m.session.Dispatch(app.BeginEdit{ID: row.Task.ID}); err != nil {
		m.logger.Debug("begin edit failed", "error", err)
		return nil
	}
	return m.startInput(modeEdit, row.Task.Text)
}

func (m *Model) setFilter(f model.Filter) tea.Cmd {
	res, cmd, _ := m.dispatch(app.SetFilter{Filter: f})
	if res.Changed {
		m.cursor = 0
	}
	return cmd
}

func (m *Model) copyVisible() tea.Cmd {
	texts := m.session.View().Texts()
	if len(texts) == 0 {
		return m.setNotice(app.Notice{Text: "Nothing to copy", Kind: app.NoticeSuccess})
	}
	if err := m.copyText(strings.Join(texts, "\n")); err != nil {
		m.logger.Warn("clipboard write failed", "error", err)
		return m.setNotice(app.Notice{Text: "Copy failed: " + err.Error(), Kind: app.NoticeError})
	}
	return m.setNotice(app.Notice{
		Text: fmt.Sprintf("%d %s copied to the clipboard", len(texts), plural(len(texts), "task", "tasks")),
		Kind: app.NoticeSuccess,
	})
}

// dispatch forwards an action to the session, keeps the cursor on a visible
// row and schedules the notice the action produced.
func (m *Model) dispatch(a app.Action) (app.Result, tea.Cmd, error) {
	res, err := m.session.Dispatch(a)
	if err != nil {
		m.logger.Debug("action failed", "action", fmt.Sprintf("%T", a), "error", err)
	}
	m.cursor = clamp(m.cursor, 0, len(res.View.Rows)-1)

	notice := res.Notice
	if notice.Text == "" && err != nil {
		notice = app.Notice{Text: err.Error(), Kind: app.NoticeError}
	}
	if notice.Text == "" {
		return res, nil, err
	}
	return res, m.setNotice(notice), err
}

func (m *Model) setNotice(n app.Notice) tea.Cmd {
	m.noticeSeq++
	m.notice = n
	seq := m.noticeSeq
	return tea.Tick(m.noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

func (m *Model) moveCursor(delta int) {
	rows := len(m.session.View().Rows)
	if rows == 0 {
		m.cursor = 0
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, rows-1)
}

func (m *Model) selectedRow() (view.Row, bool) {
	rows := m.session.View().Rows
	if m.cursor < 0 || m.cursor >= len(rows) {
		return view.Row{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	v := m.session.View()
	title := lipgloss.NewStyle().Bold(true).Render("tasklist")
	summary := fmt.Sprintf("filter: %s • %d left", v.Filter.Label(), v.Counts.Active)
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		title,
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  "+summary),
	)

	viewW := m.viewportWidth()
	innerW := viewW - 2
	if innerW < 20 {
		innerW = viewW
	}
	panelH := m.height - 9
	if m.help.ShowAll {
		panelH -= 4
	}
	if panelH < 6 {
		panelH = 6
	}

	const paneGap = 1
	leftW, rightW := m.paneWidths(innerW, paneGap)
	split := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderFiltersPanel(v, leftW, panelH-2),
		lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("│"),
		m.renderTasksPanel(v, rightW, panelH-2),
	)

	frameColor := lipgloss.Color("240")
	if m.mode == modeNormal {
		frameColor = lipgloss.Color("39")
	}
	panes := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(frameColor).
		Width(innerW).
		Height(panelH - 2).
		Render(split)

	statusText := m.notice.Text
	if statusText == "" {
		statusText = defaultStatus
	}
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	if m.notice.Kind == app.NoticeError {
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
	footer := m.renderFooter(statusText, statusStyle, m.contextualHint())

	parts := []string{header, m.renderInputLine(viewW), panes, footer}
	if m.mode == modeConfirmClear {
		prompt := fmt.Sprintf("%s (%s) [y/N]", app.ClearConfirmPrompt, v.Filter.Label())
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Width(viewW).Render(prompt))
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

func (m *Model) renderInputLine(width int) string {
	label := "New task"
	if m.mode == modeEdit {
		label = "Edit task"
	}
	style := lipgloss.NewStyle().Width(width)
	if m.mode != modeAdd && m.mode != modeEdit {
		style = style.Faint(true)
	}
	return style.Render(label + " " + m.input.View())
}

func (m *Model) renderFiltersPanel(v view.View, width, height int) string {
	lines := []string{panelTitleStyled("Filters", false)}
	keys := []key.Binding{m.keys.FilterAll, m.keys.FilterActive, m.keys.FilterCompleted}
	for i, c := range v.Controls {
		marker := " "
		labelStyle := lipgloss.NewStyle()
		if c.Active {
			marker = "▸"
			labelStyle = labelStyle.Bold(true).Underline(true)
		}
		countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
		if color := c.CounterColor(); color != "" {
			countStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
		}
		hint := ""
		if i < len(keys) {
			hint = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(" [" + keys[i].Help().Key + "]")
		}
		lines = append(lines, marker+" "+labelStyle.Render(c.Label)+" "+countStyle.Render(fmt.Sprintf("%d", c.Count))+hint)
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTasksPanel(v view.View, width, height int) string {
	lines := make([]string, 0, len(v.Rows)+2)
	lines = append(lines, panelTitleStyled("Tasks · "+v.Filter.Label(), m.mode == modeNormal))

	switch {
	case v.Empty:
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(emptyBanner))
	case len(v.Rows) == 0:
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(noMatches))
	default:
		textW := width - 7
		for i, row := range v.Rows {
			cursor := " "
			if i == m.cursor {
				cursor = "▸"
			}
			check := "[ ]"
			if row.Task.Completed {
				check = "[x]"
			}

			style := lipgloss.NewStyle()
			if row.Task.Completed {
				style = style.Faint(true).Strikethrough(true)
			}
			if i == m.cursor {
				style = style.Bold(true).Foreground(lipgloss.Color("229"))
			}
			if row.Dimmed {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
			}

			lines = append(lines, style.Render(cursor+" "+check+" "+truncateRunes(strings.ReplaceAll(row.Task.Text, "\n", " "), textW)))
		}
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) contextualHint() string {
	switch m.mode {
	case modeAdd:
		return "enter save • esc cancel"
	case modeEdit:
		return "enter/esc save • ctrl+c cancel"
	case modeConfirmClear:
		return "y confirm • n/esc cancel"
	}
	return m.keys.Help.Help().Key + " shortcuts"
}

func (m *Model) viewportWidth() int {
	if m.width <= 0 {
		return 1
	}
	// Leave the last column free; some terminals wrap on it.
	if m.width > 1 {
		return m.width - 1
	}
	return m.width
}

func (m *Model) paneWidths(total, gap int) (int, int) {
	if total <= 0 {
		return 20, 30
	}
	if gap < 0 {
		gap = 0
	}

	minLeft := 18
	minRight := 30
	if total < minLeft+minRight+gap {
		left := total / 3
		if left < 12 {
			left = 12
		}
		right := total - left - gap
		if right < 12 {
			right = 12
			left = total - right - gap
			if left < 10 {
				left = 10
			}
		}
		return left, right
	}

	left := total / 5
	if left < minLeft {
		left = minLeft
	}
	if left > 28 {
		left = 28
	}
	return left, total - left - gap
}

func (m *Model) renderFooter(statusText string, statusStyle lipgloss.Style, rightHint string) string {
	left := strings.TrimSpace(statusText)
	right := strings.TrimSpace(rightHint)
	if left == "" {
		left = defaultStatus
	}

	leftW := utf8.RuneCountInString(left)
	rightW := utf8.RuneCountInString(right)
	width := m.viewportWidth()

	if leftW+rightW+1 > width {
		maxLeft := width - rightW - 1
		if maxLeft < 8 {
			maxLeft = 8
		}
		left = truncateRunes(left, maxLeft)
		leftW = utf8.RuneCountInString(left)
	}

	padding := width - leftW - rightW
	if padding < 1 {
		padding = 1
	}

	rightStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	line := statusStyle.Render(left) + strings.Repeat(" ", padding) + rightStyle.Render(right)
	return lipgloss.NewStyle().Width(width).Render(line)
}

func panelTitleStyled(title string, active bool) string {
	style := lipgloss.NewStyle().Bold(true)
	if active {
		style = style.Foreground(lipgloss.Color("39"))
	}
	return style.Render(title)
}

func nextFilter(f model.Filter) model.Filter {
	filters := model.Filters()
	for i, candidate := range filters {
		if candidate == f {
			return filters[(i+1)%len(filters)]
		}
	}
	return model.FilterAll
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func clamp(v, min, max int) int {
	if max < min {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
