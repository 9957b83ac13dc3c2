package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"tasklist/model"
)

func sampleTasks(label string) []model.Task {
	return []model.Task{
		{Text: "a-" + label, Completed: false},
		{Text: "b-" + label, Completed: true},
		{Text: "c-" + label, Completed: false},
	}
}

func newFileTasks(t *testing.T) (*Tasks, *FileArea) {
	t.Helper()
	area, err := NewFileArea(t.TempDir())
	if err != nil {
		t.Fatalf("open file area failed: %v", err)
	}
	return NewTasks(area, "", nil), area
}

func TestLoadMissingSlotReturnsEmptyList(t *testing.T) {
	tasks, _ := newFileTasks(t)

	got := tasks.Load()
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestSaveThenLoad(t *testing.T) {
	tasks, _ := newFileTasks(t)
	want := sampleTasks("x")

	if err := tasks.Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got := tasks.Load()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("save/load mismatch\nwant=%+v\ngot=%+v", want, got)
	}
}

func TestSaveWritesPlainTaskArray(t *testing.T) {
	tasks, area := newFileTasks(t)
	in := []model.Task{{ID: "ignored", Text: "buy milk"}, {ID: "also", Text: "call", Completed: true}}

	if err := tasks.Save(in); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(area.Path(DefaultSlot))
	if err != nil {
		t.Fatalf("read slot file failed: %v", err)
	}
	want := `[{"text":"buy milk","completed":false},{"text":"call","completed":true}]`
	if string(data) != want {
		t.Fatalf("unexpected persisted bytes\nwant=%s\ngot=%s", want, data)
	}
}

func TestSaveEmptyListWritesEmptyArray(t *testing.T) {
	tasks, area := newFileTasks(t)
	if err := tasks.Save(nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(area.Path(DefaultSlot))
	if err != nil {
		t.Fatalf("read slot file failed: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected [] for empty list, got %s", data)
	}
}

func TestLoadCorruptSlotReturnsEmptyList(t *testing.T) {
	for name, raw := range map[string]string{
		"syntax":    "{invalid",
		"truncated": `[{"text":"a","completed":fa`,
		"wrongType": `{"text":"a"}`,
		"badField":  `[{"text":5,"completed":false}]`,
	} {
		t.Run(name, func(t *testing.T) {
			tasks, area := newFileTasks(t)
			if err := os.WriteFile(area.Path(DefaultSlot), []byte(raw), 0o644); err != nil {
				t.Fatalf("write corrupt slot failed: %v", err)
			}
			if got := tasks.Load(); len(got) != 0 {
				t.Fatalf("expected empty list for corrupt slot, got %+v", got)
			}
		})
	}
}

func TestLoadNullSlotReturnsEmptyList(t *testing.T) {
	tasks, area := newFileTasks(t)
	if err := os.WriteFile(area.Path(DefaultSlot), []byte("null"), 0o644); err != nil {
		t.Fatalf("write slot failed: %v", err)
	}
	got := tasks.Load()
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestLoadKeepsUntrimmedTextAndMissingFields(t *testing.T) {
	tasks, area := newFileTasks(t)
	raw := `[{"text":"  padded  "},{"completed":true}]`
	if err := os.WriteFile(area.Path(DefaultSlot), []byte(raw), 0o644); err != nil {
		t.Fatalf("write slot failed: %v", err)
	}

	got := tasks.Load()
	want := []model.Task{{Text: "  padded  "}, {Text: "", Completed: true}}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("legacy decode mismatch\nwant=%+v\ngot=%+v", want, got)
	}
}

func TestSaveKeepsBackupOfPreviousContent(t *testing.T) {
	tasks, area := newFileTasks(t)
	initial := sampleTasks("old")
	updated := sampleTasks("new")

	if err := tasks.Save(initial); err != nil {
		t.Fatalf("initial save failed: %v", err)
	}
	if err := tasks.Save(updated); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	if got := tasks.Load(); !reflect.DeepEqual(updated, got) {
		t.Fatalf("latest mismatch\nwant=%+v\ngot=%+v", updated, got)
	}

	data, err := os.ReadFile(area.Path(DefaultSlot) + ".bak")
	if err != nil {
		t.Fatalf("read backup failed: %v", err)
	}
	gotBackup, err := decodeTasks(data)
	if err != nil {
		t.Fatalf("decode backup failed: %v", err)
	}
	if !reflect.DeepEqual(initial, gotBackup) {
		t.Fatalf("backup mismatch\nwant=%+v\ngot=%+v", initial, gotBackup)
	}
}

func TestRotatingBackupsArePruned(t *testing.T) {
	tasks, area := newFileTasks(t)

	if err := tasks.Save(sampleTasks("seed")); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}
	for i := 0; i < 15; i++ {
		if err := tasks.Save(sampleTasks(fmt.Sprintf("%d", i))); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
		time.Sleep(1 * time.Millisecond)
	}

	files, err := filepath.Glob(area.Path(DefaultSlot) + ".bak.*")
	if err != nil {
		t.Fatalf("glob rotating backups failed: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("expected rotating backups, found none")
	}
	if len(files) > maxRotatingBackups {
		t.Fatalf("expected at most %d rotating backups, got %d", maxRotatingBackups, len(files))
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	area := NewMemoryArea()
	work := NewTasks(area, "work", nil)
	home := NewTasks(area, "home", nil)

	if err := work.Save(sampleTasks("w")); err != nil {
		t.Fatalf("save work failed: %v", err)
	}
	if got := home.Load(); len(got) != 0 {
		t.Fatalf("expected home slot untouched, got %+v", got)
	}
	if work.Slot() != "work" {
		t.Fatalf("unexpected slot name %q", work.Slot())
	}
}

func TestInvalidSlotName(t *testing.T) {
	area := NewMemoryArea()
	if err := NewTasks(area, "../escape", nil).Save(nil); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
