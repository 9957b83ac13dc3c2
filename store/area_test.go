package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"tasklist/model"
)

func openAreas(t *testing.T) map[string]Area {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFileArea(filepath.Join(dir, "file"))
	if err != nil {
		t.Fatalf("NewFileArea() error = %v", err)
	}
	sqlite, err := OpenSQLite(filepath.Join(dir, "sqlite", "tasklist.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	badgerDB, err := OpenBadger(BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}

	areas := map[string]Area{
		BackendFile:   file,
		BackendSQLite: sqlite,
		BackendBadger: badgerDB,
		BackendMemory: NewMemoryArea(),
	}
	t.Cleanup(func() {
		for _, a := range areas {
			_ = a.Close()
		}
	})
	return areas
}

func mustPut(t *testing.T, area Area, key, value string) {
	t.Helper()
	if err := area.Put(key, []byte(value)); err != nil {
		t.Fatalf("Put(%q) error = %v", key, err)
	}
}

func mustSave(t *testing.T, tasks *Tasks, list []model.Task) {
	t.Helper()
	if err := tasks.Save(list); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

func TestAreaContract(t *testing.T) {
	for name, area := range openAreas(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := area.Get("tasks"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for a missing slot, got %v", err)
			}

			mustPut(t, area, "tasks", `[1]`)
			mustPut(t, area, "tasks", `[2]`)

			got, err := area.Get("tasks")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != `[2]` {
				t.Fatalf("expected last write to win, got %q", got)
			}

			if _, err := area.Get(""); !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("expected ErrInvalidKey for an empty slot, got %v", err)
			}
		})
	}
}

func TestTasksRoundTripOnEveryBackend(t *testing.T) {
	want := []model.Task{
		{Text: "a", Completed: false},
		{Text: "b", Completed: true},
		{Text: "c", Completed: false},
	}
	for name, area := range openAreas(t) {
		t.Run(name, func(t *testing.T) {
			tasks := NewTasks(area, DefaultSlot, nil)
			if got := tasks.Load(); len(got) != 0 {
				t.Fatalf("expected empty list before first save, got %+v", got)
			}

			mustSave(t, tasks, want)
			if got := tasks.Load(); !reflect.DeepEqual(got, want) {
				t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
			}

			mustSave(t, tasks, want[:1])
			if got := tasks.Load(); !reflect.DeepEqual(got, want[:1]) {
				t.Fatalf("overwrite mismatch: got %+v want %+v", got, want[:1])
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasklist.db")
	want := []model.Task{{Text: "kept"}}

	first, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	mustSave(t, NewTasks(first, "", nil), want)
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer second.Close()
	if got := NewTasks(second, "", nil).Load(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v after reopen, got %+v", want, got)
	}
}

func TestBadgerPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	want := []model.Task{{Text: "kept", Completed: true}}

	first, err := OpenBadger(BadgerConfig{Path: dir, SyncWrites: true})
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	mustSave(t, NewTasks(first, "", nil), want)
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := OpenBadger(BadgerConfig{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer second.Close()
	if got := NewTasks(second, "", nil).Load(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v after reopen, got %+v", want, got)
	}
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()

	area, err := Open("FILE", filepath.Join(dir, "data"), nil)
	if err != nil {
		t.Fatalf("Open(file) error = %v", err)
	}
	if _, ok := area.(*FileArea); !ok {
		t.Fatalf("expected *FileArea, got %T", area)
	}

	area, err = Open(BackendMemory, "", nil)
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := area.(*MemoryArea); !ok {
		t.Fatalf("expected *MemoryArea, got %T", area)
	}

	if _, err := Open("postgres", dir, nil); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
	if _, err := Open(BackendBadger, "", nil); err == nil {
		t.Fatalf("expected an error for badger without a path")
	}
}
