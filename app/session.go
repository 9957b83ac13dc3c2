package app

import (
	"errors"
	"fmt"
	"log/slog"

	"tasklist/model"
	"tasklist/view"
)

// User-facing notices.
const (
	NoticeAdded         = "Task added successfully in your To-Do"
	NoticeEmptyAdd      = "Oops! It seems that you didn't write anything in the field."
	NoticeEmptyEdit     = "Task cannot be empty. Please enter a valid task."
	NoticeSaveFailed    = "Change applied, but saving to storage failed."
	ClearConfirmPrompt  = "Are you sure you want to clear the tasks? This action cannot be undone."
	NoticeTaskNotFound  = "That task no longer exists."
	NoticeInvalidFilter = "Unknown filter."
)

// Persister writes the full list after every mutation.
type Persister interface {
	Save(tasks []model.Task) error
}

type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is a transient message for the front end to show.
type Notice struct {
	Text string
	Kind NoticeKind
}

// Result is what a dispatched action produced.
type Result struct {
	View    view.View
	Notice  Notice
	Changed bool
	Removed int
}

// Action is one of Add, BeginEdit, Edit, CancelEdit, Toggle, Delete,
// ClearFiltered or SetFilter.
type Action interface {
	action()
}

type Add struct{ Text string }

type BeginEdit struct{ ID string }

type Edit struct {
	ID   string
	Text string
}

type CancelEdit struct{}

type Toggle struct{ ID string }

type Delete struct{ ID string }

// ClearFiltered removes every task matching the current filter. It is a
// no-op unless the user confirmed the prompt.
type ClearFiltered struct{ Confirmed bool }

type SetFilter struct{ Filter model.Filter }

func (Add) action()           {}
func (BeginEdit) action()     {}
func (Edit) action()          {}
func (CancelEdit) action()    {}
func (Toggle) action()        {}
func (Delete) action()        {}
func (ClearFiltered) action() {}
func (SetFilter) action()     {}

// Session owns the application state: the task list, the selected filter and
// the task being edited. Every Dispatch leaves the list, the persisted copy
// and the returned view consistent.
type Session struct {
	tasks   *TaskList
	filter  model.Filter
	editing string
	saver   Persister
	logger  *slog.Logger
}

// NewSession hydrates a session from loaded tasks. The filter starts at All.
func NewSession(tasks []model.Task, saver Persister, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		tasks:  NewTaskList(tasks),
		filter: model.FilterAll,
		saver:  saver,
		logger: logger,
	}
}

// Tasks returns a copy of the current list.
func (s *Session) Tasks() []model.Task {
	return s.tasks.Tasks()
}

// List exposes read access to the underlying task list.
func (s *Session) List() *TaskList {
	return s.tasks
}

func (s *Session) Filter() model.Filter {
	return s.filter
}

func (s *Session) Editing() string {
	return s.editing
}

// View renders the current state.
func (s *Session) View() view.View {
	return view.Render(s.tasks.tasks, s.filter, s.editing)
}

// Dispatch applies one action. Validation failures return a *ValidationError
// and leave the list untouched.
func (s *Session) Dispatch(a Action) (Result, error) {
	s.logger.Debug("dispatch", "action", fmt.Sprintf("%T", a))

	switch a := a.(type) {
	case Add:
		if _, err := s.tasks.Add(a.Text); err != nil {
			return s.fail(err, NoticeEmptyAdd)
		}
		s.filter = model.FilterAll
		return s.commit(Notice{Text: NoticeAdded, Kind: NoticeSuccess}, 0)

	case BeginEdit:
		if _, err := s.tasks.Get(a.ID); err != nil {
			return s.fail(err, NoticeTaskNotFound)
		}
		s.editing = a.ID
		return Result{View: s.View(), Changed: true}, nil

	case Edit:
		s.editing = ""
		if _, err := s.tasks.Edit(a.ID, a.Text); err != nil {
			notice := NoticeTaskNotFound
			if errors.Is(err, ErrValidation) {
				notice = NoticeEmptyEdit
			}
			return s.fail(err, notice)
		}
		return s.commit(Notice{}, 0)

	case CancelEdit:
		changed := s.editing != ""
		s.editing = ""
		return Result{View: s.View(), Changed: changed}, nil

	case Toggle:
		if _, err := s.tasks.ToggleComplete(a.ID); err != nil {
			return s.fail(err, NoticeTaskNotFound)
		}
		return s.commit(Notice{}, 0)

	case Delete:
		if err := s.tasks.Remove(a.ID); err != nil {
			return s.fail(err, NoticeTaskNotFound)
		}
		if s.editing == a.ID {
			s.editing = ""
		}
		return s.commit(Notice{}, 0)

	case ClearFiltered:
		if !a.Confirmed {
			return Result{View: s.View()}, nil
		}
		removed := s.tasks.RemoveWhere(s.filter.Matches)
		if s.editing != "" {
			if _, err := s.tasks.Get(s.editing); err != nil {
				s.editing = ""
			}
		}
		return s.commit(Notice{}, removed)

	case SetFilter:
		if !a.Filter.Valid() {
			return s.fail(fmt.Errorf("%w: %q", model.ErrInvalidFilter, a.Filter), NoticeInvalidFilter)
		}
		if a.Filter == s.filter {
			return Result{View: s.View()}, nil
		}
		s.filter = a.Filter
		return Result{View: s.View(), Changed: true}, nil

	default:
		return Result{View: s.View()}, fmt.Errorf("unsupported action %T", a)
	}
}

func (s *Session) commit(notice Notice, removed int) (Result, error) {
	res := Result{Changed: true, Removed: removed, Notice: notice}
	if s.saver != nil {
		if err := s.saver.Save(s.tasks.Tasks()); err != nil {
			s.logger.Error("save tasks failed", "error", err)
			res.View = s.View()
			res.Notice = Notice{Text: NoticeSaveFailed, Kind: NoticeError}
			return res, fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}
	res.View = s.View()
	return res, nil
}

func (s *Session) fail(err error, notice string) (Result, error) {
	s.logger.Debug("action rejected", "error", err)
	return Result{
		View:   s.View(),
		Notice: Notice{Text: notice, Kind: NoticeError},
	}, err
}
