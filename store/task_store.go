package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/shrimptools/taskviewer/models"
)

// ImportMode controls how imported tasks combine with the current list.
type ImportMode string

const (
	// ImportAppend merges the imported tasks after the current ones. Duplicate
	// IDs are kept as-is; the producer never promised unique IDs across
	// snapshots and no rule says which copy would win.
	ImportAppend ImportMode = "append"
	// ImportReplace discards the current list and substitutes the imported one.
	ImportReplace ImportMode = "replace"
)

// ParseImportMode validates a mode string from the API surface.
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(s) {
	case ImportAppend, ImportReplace:
		return ImportMode(s), nil
	default:
		return "", fmt.Errorf("unsupported import mode %q (want append or replace)", s)
	}
}

// TaskStore is the persistence boundary for one project's task file.
type TaskStore interface {
	Load() (models.TaskFile, error)
	Save(tf models.TaskFile) error
	SaveTasks(tasks []models.Task) error
	UpdateTask(task models.Task) (models.Task, error)
	DeleteTask(id string) error
	Import(tasks []models.Task, mode ImportMode) error
	Path() string
}

// FileTaskStore reads and rewrites a single tasks.json produced by the Shrimp
// Task Manager. Every operation takes a file lock, reloads, mutates, and
// rewrites the whole file via temp-then-rename, so a concurrent reader never
// observes a partial write. Two writers still race as last-write-wins, which
// is the accepted mode for a single-user local tool.
type FileTaskStore struct {
	filePath string
	flk      *flock.Flock
}

// NewFileTaskStore creates a store for the given task file path. The file is
// not required to exist; Load reports that case as ErrNotCreated.
func NewFileTaskStore(path string) (*FileTaskStore, error) {
	if path == "" {
		return nil, errors.New("task file path required")
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create task dir %s: %w", dir, err)
		}
	}
	return &FileTaskStore{
		filePath: path,
		flk:      flock.New(path + ".lock"),
	}, nil
}

// Path returns the backing file path.
func (s *FileTaskStore) Path() string { return s.filePath }

// Load reads and normalizes the task file. A legacy bare-array file is
// wrapped as {tasks: array} here, exactly once, before any other component
// sees it. Missing file yields an empty TaskFile plus ErrNotCreated.
func (s *FileTaskStore) Load() (models.TaskFile, error) {
	if err := s.flk.Lock(); err != nil {
		return models.TaskFile{}, fmt.Errorf("lock %s: %w", s.filePath, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	return s.loadLocked()
}

func (s *FileTaskStore) loadLocked() (models.TaskFile, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.TaskFile{Tasks: []models.Task{}}, ErrNotCreated
		}
		return models.TaskFile{}, fmt.Errorf("read %s: %w", s.filePath, err)
	}
	// Legacy bare-array files are wrapped here, exactly once, before the
	// list reaches any other component.
	return decodeTaskData(s.filePath, data)
}

// Save rewrites the whole file with the given contents, bumping updatedAt.
func (s *FileTaskStore) Save(tf models.TaskFile) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", s.filePath, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	return s.saveLocked(tf)
}

func (s *FileTaskStore) saveLocked(tf models.TaskFile) error {
	now := time.Now().UTC()
	tf.UpdatedAt = &now
	if tf.CreatedAt == nil {
		tf.CreatedAt = &now
	}
	if tf.Tasks == nil {
		tf.Tasks = []models.Task{}
	}

	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}

	tmp := s.filePath + ".tmp"
	defer func() { _ = os.Remove(tmp) }()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("replace %s: %w", s.filePath, err)
	}
	return nil
}

// SaveTasks rewrites the task list while preserving file-level metadata
// (initialRequest, summary, createdAt) untouched by this operation.
func (s *FileTaskStore) SaveTasks(tasks []models.Task) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", s.filePath, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	tf, err := s.loadLocked()
	if err != nil && !errors.Is(err, ErrNotCreated) {
		return err
	}
	tf.Tasks = tasks
	return s.saveLocked(tf)
}

// UpdateTask replaces the record matching task.ID and returns the stored
// result. The replacement is validated; the rest of the file is untouched.
func (s *FileTaskStore) UpdateTask(task models.Task) (models.Task, error) {
	if err := models.ValidateStruct(task); err != nil {
		return models.Task{}, fmt.Errorf("invalid task: %w", err)
	}

	if err := s.flk.Lock(); err != nil {
		return models.Task{}, fmt.Errorf("lock %s: %w", s.filePath, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	tf, err := s.loadLocked()
	if err != nil && !errors.Is(err, ErrNotCreated) {
		return models.Task{}, err
	}

	found := false
	now := time.Now().UTC()
	for i := range tf.Tasks {
		if tf.Tasks[i].ID == task.ID {
			task.CreatedAt = tf.Tasks[i].CreatedAt
			task.UpdatedAt = &now
			tf.Tasks[i] = task
			found = true
			break
		}
	}
	if !found {
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, task.ID)
	}

	if err := s.saveLocked(tf); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// DeleteTask removes one task by ID and rewrites the file.
func (s *FileTaskStore) DeleteTask(id string) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", s.filePath, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	tf, err := s.loadLocked()
	if err != nil && !errors.Is(err, ErrNotCreated) {
		return err
	}

	kept := make([]models.Task, 0, len(tf.Tasks))
	found := false
	for _, t := range tf.Tasks {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	tf.Tasks = kept
	return s.saveLocked(tf)
}

// Import merges or substitutes the given tasks according to mode. Append
// keeps duplicates; replace swaps the list atomically. File-level metadata
// survives either way.
func (s *FileTaskStore) Import(tasks []models.Task, mode ImportMode) error {
	if err := s.flk.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", s.filePath, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	tf, err := s.loadLocked()
	if err != nil && !errors.Is(err, ErrNotCreated) {
		return err
	}

	switch mode {
	case ImportAppend:
		tf.Tasks = append(tf.Tasks, tasks...)
	case ImportReplace:
		tf.Tasks = tasks
	default:
		return fmt.Errorf("unsupported import mode %q", mode)
	}

	return s.saveLocked(tf)
}
