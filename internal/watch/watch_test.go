package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New(zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(w.Stop)
	w.Start()
	return w
}

func TestWriteEmitsProfileID(t *testing.T) {
	dir := t.TempDir()
	taskPath := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(taskPath, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher(t)
	if err := w.Add("proj-a", taskPath); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := os.WriteFile(taskPath, []byte(`{"tasks":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case id := <-w.Changed():
		if id != "proj-a" {
			t.Errorf("got profile %q, want proj-a", id)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change event delivered")
	}
}

func TestUnrelatedFileIgnored(t *testing.T) {
	dir := t.TempDir()
	taskPath := filepath.Join(dir, "tasks.json")
	otherPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(taskPath, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher(t)
	if err := w.Add("proj-a", taskPath); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := os.WriteFile(otherPath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case id := <-w.Changed():
		t.Fatalf("unexpected event for %q", id)
	case <-time.After(600 * time.Millisecond):
	}
}

func TestRemoveStopsEvents(t *testing.T) {
	dir := t.TempDir()
	taskPath := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(taskPath, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher(t)
	if err := w.Add("proj-a", taskPath); err != nil {
		t.Fatalf("Add: %v", err)
	}
	w.Remove(taskPath)

	if err := os.WriteFile(taskPath, []byte(`{"tasks":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case id := <-w.Changed():
		t.Fatalf("unexpected event for %q after Remove", id)
	case <-time.After(600 * time.Millisecond):
	}
}

func TestAddMissingDir(t *testing.T) {
	w := newTestWatcher(t)
	err := w.Add("proj-a", filepath.Join(t.TempDir(), "nope", "tasks.json"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
