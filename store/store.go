package store

import (
	"encoding/json"
	"errors"
	"log/slog"

	"tasklist/model"
)

// DefaultSlot is the slot name the task list lives under.
const DefaultSlot = "tasks"

// Tasks reads and writes the whole task list as one serialized blob in a
// single named slot. Every Save is a full rewrite; the last writer wins.
type Tasks struct {
	area   Area
	slot   string
	logger *slog.Logger
}

// NewTasks binds the adapter to a slot. An empty slot means DefaultSlot.
func NewTasks(area Area, slot string, logger *slog.Logger) *Tasks {
	if slot == "" {
		slot = DefaultSlot
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tasks{area: area, slot: slot, logger: logger}
}

// Slot returns the slot name.
func (t *Tasks) Slot() string {
	return t.slot
}

// Load returns the persisted list. Missing or unreadable data degrades to an
// empty list and is only logged.
func (t *Tasks) Load() []model.Task {
	data, err := t.area.Get(t.slot)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			t.logger.Warn("task slot unreadable, starting empty", "slot", t.slot, "error", err)
		}
		return []model.Task{}
	}
	tasks, err := decodeTasks(data)
	if err != nil {
		t.logger.Warn("task slot corrupt, starting empty", "slot", t.slot, "bytes", len(data), "error", err)
		return []model.Task{}
	}
	t.logger.Debug("tasks loaded", "slot", t.slot, "count", len(tasks))
	return tasks
}

// Save overwrites the slot with the full list.
func (t *Tasks) Save(tasks []model.Task) error {
	data, err := encodeTasks(tasks)
	if err != nil {
		return err
	}
	if err := t.area.Put(t.slot, data); err != nil {
		return err
	}
	t.logger.Debug("tasks saved", "slot", t.slot, "count", len(tasks))
	return nil
}

func encodeTasks(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return json.Marshal(tasks)
}

func decodeTasks(data []byte) ([]model.Task, error) {
	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}
