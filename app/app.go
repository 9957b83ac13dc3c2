package app

import (
	"errors"
	"strings"

	"tasklist/model"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrTaskNotFound = errors.New("task not found")
	ErrPersist      = errors.New("tasks could not be saved")
)

// ValidationError is returned when task text is empty after trimming.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Op      string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Op + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

const emptyTextMessage = "task text must not be empty"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// normalizeText keeps a task on one line: line breaks become spaces and the
// ends are trimmed.
func normalizeText(text string) string {
	return strings.TrimSpace(lineBreaks.Replace(text))
}

// TaskList is the authoritative ordered list of tasks for a session.
// Insertion order is display order; tasks are addressed by ID.
type TaskList struct {
	tasks []model.Task
}

// NewTaskList hydrates a list, assigning an ID to every task that lacks one.
func NewTaskList(tasks []model.Task) *TaskList {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = model.NewID()
		}
	}
	return &TaskList{tasks: out}
}

// Tasks returns a copy of the list.
func (l *TaskList) Tasks() []model.Task {
	out := make([]model.Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

func (l *TaskList) Len() int {
	return len(l.tasks)
}

// Get returns a task by id.
func (l *TaskList) Get(id string) (model.Task, error) {
	if i := l.indexOf(id); i >= 0 {
		return l.tasks[i], nil
	}
	return model.Task{}, ErrTaskNotFound
}

// IDAt maps a 0-based position to the ID of the task there right now.
// Positions shift after any removal, so the result must not be cached.
func (l *TaskList) IDAt(position int) (string, bool) {
	if position < 0 || position >= len(l.tasks) {
		return "", false
	}
	return l.tasks[position].ID, true
}

// PositionOf returns the current 0-based position of a task, or -1.
func (l *TaskList) PositionOf(id string) int {
	return l.indexOf(id)
}

func (l *TaskList) Add(text string) (model.Task, error) {
	text = normalizeText(text)
	if text == "" {
		return model.Task{}, &ValidationError{Op: "add", Message: emptyTextMessage}
	}
	task := model.Task{
		ID:        model.NewID(),
		Text:      text,
		Completed: false,
	}
	l.tasks = append(l.tasks, task)
	return task, nil
}

func (l *TaskList) Edit(id, text string) (model.Task, error) {
	text = normalizeText(text)
	if text == "" {
		return model.Task{}, &ValidationError{Op: "edit", Message: emptyTextMessage}
	}
	i := l.indexOf(id)
	if i < 0 {
		return model.Task{}, ErrTaskNotFound
	}
	l.tasks[i].Text = text
	return l.tasks[i], nil
}

func (l *TaskList) ToggleComplete(id string) (model.Task, error) {
	i := l.indexOf(id)
	if i < 0 {
		return model.Task{}, ErrTaskNotFound
	}
	l.tasks[i].Completed = !l.tasks[i].Completed
	return l.tasks[i], nil
}

func (l *TaskList) Remove(id string) error {
	i := l.indexOf(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)
	return nil
}

// RemoveWhere deletes every task matching pred and returns how many went.
func (l *TaskList) RemoveWhere(pred func(model.Task) bool) int {
	kept := make([]model.Task, 0, len(l.tasks))
	removed := 0
	for _, t := range l.tasks {
		if pred(t) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	l.tasks = kept
	return removed
}

func (l *TaskList) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
