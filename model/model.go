package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidFilter = errors.New("invalid filter")

// Filter selects which tasks are visible and which ones a clear removes.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters returns the filters in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

// ParseFilter resolves a filter name. "assigned" is accepted as an alias of active.
func ParseFilter(name string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(FilterAll):
		return FilterAll, nil
	case string(FilterActive), "assigned", "todo":
		return FilterActive, nil
	case string(FilterCompleted), "done":
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, name)
	}
}

// Valid reports whether f is one of the three known filters.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	}
	return false
}

// Matches is the predicate used both for the visible set and for clearing.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Label is the human name shown on filter controls.
func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// Task is a single to-do entry. ID is session-local and never persisted.
type Task struct {
	ID        string `json:"-" yaml:"-"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Counts are always computed over the whole list, independent of the filter.
type Counts struct {
	All       int `json:"all" yaml:"all"`
	Active    int `json:"active" yaml:"active"`
	Completed int `json:"completed" yaml:"completed"`
}

// CountTasks tallies tasks by completion.
func CountTasks(tasks []Task) Counts {
	c := Counts{All: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}

// Of returns the counter associated with a filter.
func (c Counts) Of(f Filter) int {
	switch f {
	case FilterActive:
		return c.Active
	case FilterCompleted:
		return c.Completed
	default:
		return c.All
	}
}

// Consistent reports whether All == Active + Completed.
func (c Counts) Consistent() bool {
	return c.All == c.Active+c.Completed
}

// NewID returns a fresh task identifier.
func NewID() string {
	return uuid.NewString()
}
