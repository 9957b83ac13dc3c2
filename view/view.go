// Package view projects a task list and the selected filter onto what a
// front end draws: the visible rows, the three counters, the filter
// controls and the empty-list banner.
package view

import "tasklist/model"

// HighlightColor is used for the counter of the active filter control.
const HighlightColor = "#25b558"

// Row is one visible task. Position is its index in the full list.
type Row struct {
	Task     model.Task
	Position int
	Dimmed   bool
}

// Control is a filter selector with its live counter.
type Control struct {
	Filter model.Filter
	Label  string
	Count  int
	Active bool
}

// View is a snapshot; it is recomputed after every change and never mutated.
type View struct {
	Filter   model.Filter
	Rows     []Row
	Counts   model.Counts
	Controls []Control
	// Empty reflects the whole list, not the visible rows.
	Empty   bool
	Editing string
}

// Render computes the view for tasks under filter. editing is the ID of the
// task being edited, or "" when no edit is in progress.
func Render(tasks []model.Task, filter model.Filter, editing string) View {
	if !filter.Valid() {
		filter = model.FilterAll
	}
	counts := model.CountTasks(tasks)

	rows := make([]Row, 0, len(tasks))
	for i, t := range tasks {
		if !filter.Matches(t) {
			continue
		}
		rows = append(rows, Row{
			Task:     t,
			Position: i,
			Dimmed:   editing != "" && t.ID != editing,
		})
	}

	controls := make([]Control, 0, 3)
	for _, f := range model.Filters() {
		controls = append(controls, Control{
			Filter: f,
			Label:  f.Label(),
			Count:  counts.Of(f),
			Active: f == filter,
		})
	}

	return View{
		Filter:   filter,
		Rows:     rows,
		Counts:   counts,
		Controls: controls,
		Empty:    counts.All == 0,
		Editing:  editing,
	}
}

// Visible returns the tasks of the visible rows in order.
func (v View) Visible() []model.Task {
	out := make([]model.Task, 0, len(v.Rows))
	for _, r := range v.Rows {
		out = append(out, r.Task)
	}
	return out
}

// Texts returns the visible task texts in order.
func (v View) Texts() []string {
	out := make([]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		out = append(out, r.Task.Text)
	}
	return out
}

// CounterColor returns the colour for a control's counter: the highlight for
// the active filter, "" (terminal default) for the others.
func (c Control) CounterColor() string {
	if c.Active {
		return HighlightColor
	}
	return ""
}
