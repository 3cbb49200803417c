package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shrimptools/taskviewer/models"
)

const (
	historyPrefix = "tasks_memory_"
	historySuffix = ".json"
	// stampLayout matches the filesystem-safe timestamp the producer embeds
	// in snapshot names, e.g. tasks_memory_2025-08-24T10-30-00.json.
	stampLayout = "2006-01-02T15-04-05"
)

// HistoryEntry summarizes one archived task snapshot for list views. Counts
// come from the snapshot body; a snapshot that fails to parse still lists,
// with ParseErr set, so the UI can show it instead of dropping it silently.
type HistoryEntry struct {
	Name       string     `json:"name"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
	TaskCount  int        `json:"taskCount"`
	Completed  int        `json:"completed"`
	InProgress int        `json:"inProgress"`
	Pending    int        `json:"pending"`
	Summary    string     `json:"summary,omitempty"`
	ParseErr   string     `json:"parseError,omitempty"`
}

// HistoryStore lists and serves the tasks_memory_*.json snapshots the task
// manager drops into a project's memory directory whenever it supersedes a
// task list. The directory listing is the index; there is no sidecar file.
type HistoryStore struct {
	dir string
}

// NewHistoryStore creates a store over the given memory directory. The
// directory may not exist yet; listing then yields no entries.
func NewHistoryStore(dir string) (*HistoryStore, error) {
	if dir == "" {
		return nil, errors.New("history directory required")
	}
	return &HistoryStore{dir: dir}, nil
}

// Dir returns the backing directory path.
func (s *HistoryStore) Dir() string { return s.dir }

// List returns all snapshots, newest first. Snapshots whose embedded
// timestamp does not parse sort last, by name, rather than being dropped.
func (s *HistoryStore) List() ([]HistoryEntry, error) {
	names, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []HistoryEntry{}, nil
		}
		return nil, fmt.Errorf("read history dir %s: %w", s.dir, err)
	}

	entries := make([]HistoryEntry, 0, len(names))
	for _, de := range names {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, historyPrefix) || !strings.HasSuffix(name, historySuffix) {
			continue
		}
		entries = append(entries, s.summarize(name))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].ArchivedAt, entries[j].ArchivedAt
		switch {
		case a != nil && b != nil:
			return a.After(*b)
		case a != nil:
			return true
		case b != nil:
			return false
		default:
			return entries[i].Name > entries[j].Name
		}
	})
	return entries, nil
}

func (s *HistoryStore) summarize(name string) HistoryEntry {
	entry := HistoryEntry{Name: name}

	stamp := strings.TrimSuffix(strings.TrimPrefix(name, historyPrefix), historySuffix)
	if t, err := time.Parse(stampLayout, stamp); err == nil {
		entry.ArchivedAt = &t
	}

	tf, err := s.Get(name)
	if err != nil {
		entry.ParseErr = err.Error()
		return entry
	}
	entry.TaskCount = len(tf.Tasks)
	entry.Summary = tf.Summary
	for _, t := range tf.Tasks {
		switch t.Status {
		case models.StatusCompleted:
			entry.Completed++
		case models.StatusInProgress:
			entry.InProgress++
		default:
			entry.Pending++
		}
	}
	return entry
}

// Get reads one snapshot by file name, applying the same legacy-array
// normalization as the live task store.
func (s *HistoryStore) Get(name string) (models.TaskFile, error) {
	path, err := s.entryPath(name)
	if err != nil {
		return models.TaskFile{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.TaskFile{}, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
		}
		return models.TaskFile{}, fmt.Errorf("read snapshot %s: %w", name, err)
	}

	tf, err := decodeTaskData(path, data)
	if err != nil {
		return models.TaskFile{}, err
	}
	return tf, nil
}

// Delete removes one snapshot file.
func (s *HistoryStore) Delete(name string) error {
	path, err := s.entryPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrEntryNotFound, name)
		}
		return fmt.Errorf("delete snapshot %s: %w", name, err)
	}
	return nil
}

// ImportInto loads a snapshot and merges its tasks into the given task store
// using the append/replace semantics of TaskStore.Import.
func (s *HistoryStore) ImportInto(ts TaskStore, name string, mode ImportMode) (int, error) {
	tf, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	if err := ts.Import(tf.Tasks, mode); err != nil {
		return 0, fmt.Errorf("import snapshot %s: %w", name, err)
	}
	return len(tf.Tasks), nil
}

// entryPath resolves a snapshot name, rejecting anything that would escape
// the memory directory or that does not look like a snapshot file.
func (s *HistoryStore) entryPath(name string) (string, error) {
	if name != filepath.Base(name) || !strings.HasPrefix(name, historyPrefix) || !strings.HasSuffix(name, historySuffix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// decodeTaskData is the shared legacy-tolerant decoder for snapshot bodies.
func decodeTaskData(path string, data []byte) (models.TaskFile, error) {
	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if trimmed == "" {
		return models.TaskFile{Tasks: []models.Task{}}, nil
	}
	if trimmed[0] == '[' {
		var tasks []models.Task
		if err := json.Unmarshal([]byte(trimmed), &tasks); err != nil {
			return models.TaskFile{}, &ParseError{Path: path, Err: err}
		}
		return models.TaskFile{Tasks: tasks}, nil
	}
	var tf models.TaskFile
	if err := json.Unmarshal([]byte(trimmed), &tf); err != nil {
		return models.TaskFile{}, &ParseError{Path: path, Err: err}
	}
	if tf.Tasks == nil {
		tf.Tasks = []models.Task{}
	}
	return tf, nil
}
