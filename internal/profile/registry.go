// Package profile manages the viewer's multi-project profiles: named
// pointers to task files on disk, persisted in a settings.json shared by
// every invocation of the tool.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a profile ID does not exist.
var ErrNotFound = errors.New("profile not found")

// Profile points the viewer at one project's task file. ProjectRoot is
// optional; when set it is where project-scoped agent definitions live.
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	TaskPath    string    `json:"taskPath"`
	ProjectRoot string    `json:"projectRoot,omitempty"`
	AddedAt     time.Time `json:"addedAt"`
}

// MemoryDir is where the task manager keeps history snapshots for this
// profile: a memory/ directory next to the task file.
func (p Profile) MemoryDir() string {
	return filepath.Join(filepath.Dir(p.TaskPath), "memory")
}

// settingsFile is the on-disk shape. Early releases stored a bare profile
// array; that form is still read and upgraded on the next write.
type settingsFile struct {
	Profiles  []Profile  `json:"profiles"`
	Version   string     `json:"version,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Registry loads and persists profiles. Mutating operations lock the
// settings file, reload, mutate, and rewrite it whole via temp-then-rename,
// the same discipline the task store applies to task files.
type Registry struct {
	path string
	flk  *flock.Flock
}

// NewRegistry creates a registry over the given settings path.
func NewRegistry(path string) (*Registry, error) {
	if path == "" {
		return nil, errors.New("settings path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	return &Registry{path: path, flk: flock.New(path + ".lock")}, nil
}

// Path returns the settings file path.
func (r *Registry) Path() string { return r.path }

// List returns all profiles in stored order.
func (r *Registry) List() ([]Profile, error) {
	if err := r.flk.Lock(); err != nil {
		return nil, fmt.Errorf("lock settings: %w", err)
	}
	defer func() { _ = r.flk.Unlock() }()

	sf, err := r.loadLocked()
	if err != nil {
		return nil, err
	}
	return sf.Profiles, nil
}

// Get returns one profile by ID.
func (r *Registry) Get(id string) (Profile, error) {
	profiles, err := r.List()
	if err != nil {
		return Profile{}, err
	}
	for _, p := range profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Add registers a new profile for the given task file path and returns it.
// The ID is a slug of the name plus a short random suffix so two projects
// named "backend" stay distinct.
func (r *Registry) Add(name, taskPath, projectRoot string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, errors.New("profile name required")
	}
	if taskPath == "" {
		return Profile{}, errors.New("task file path required")
	}

	if err := r.flk.Lock(); err != nil {
		return Profile{}, fmt.Errorf("lock settings: %w", err)
	}
	defer func() { _ = r.flk.Unlock() }()

	sf, err := r.loadLocked()
	if err != nil {
		return Profile{}, err
	}

	p := Profile{
		ID:          slugify(name) + "-" + uuid.NewString()[:8],
		Name:        name,
		TaskPath:    taskPath,
		ProjectRoot: projectRoot,
		AddedAt:     time.Now().UTC(),
	}
	sf.Profiles = append(sf.Profiles, p)

	if err := r.saveLocked(sf); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Rename changes a profile's display name. The ID stays stable so open
// dashboard tabs keep working.
func (r *Registry) Rename(id, newName string) (Profile, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return Profile{}, errors.New("profile name required")
	}

	if err := r.flk.Lock(); err != nil {
		return Profile{}, fmt.Errorf("lock settings: %w", err)
	}
	defer func() { _ = r.flk.Unlock() }()

	sf, err := r.loadLocked()
	if err != nil {
		return Profile{}, err
	}

	for i := range sf.Profiles {
		if sf.Profiles[i].ID == id {
			sf.Profiles[i].Name = newName
			if err := r.saveLocked(sf); err != nil {
				return Profile{}, err
			}
			return sf.Profiles[i], nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Remove unregisters a profile. The task file itself is never touched.
func (r *Registry) Remove(id string) error {
	if err := r.flk.Lock(); err != nil {
		return fmt.Errorf("lock settings: %w", err)
	}
	defer func() { _ = r.flk.Unlock() }()

	sf, err := r.loadLocked()
	if err != nil {
		return err
	}

	kept := make([]Profile, 0, len(sf.Profiles))
	found := false
	for _, p := range sf.Profiles {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	sf.Profiles = kept
	return r.saveLocked(sf)
}

func (r *Registry) loadLocked() (settingsFile, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settingsFile{Profiles: []Profile{}}, nil
		}
		return settingsFile{}, fmt.Errorf("read settings %s: %w", r.path, err)
	}

	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if trimmed == "" {
		return settingsFile{Profiles: []Profile{}}, nil
	}

	if trimmed[0] == '[' {
		// Legacy bare-array settings.
		var profiles []Profile
		if err := json.Unmarshal([]byte(trimmed), &profiles); err != nil {
			return settingsFile{}, fmt.Errorf("parse settings %s: %w", r.path, err)
		}
		return settingsFile{Profiles: profiles}, nil
	}

	var sf settingsFile
	if err := json.Unmarshal([]byte(trimmed), &sf); err != nil {
		return settingsFile{}, fmt.Errorf("parse settings %s: %w", r.path, err)
	}
	if sf.Profiles == nil {
		sf.Profiles = []Profile{}
	}
	return sf, nil
}

func (r *Registry) saveLocked(sf settingsFile) error {
	now := time.Now().UTC()
	sf.UpdatedAt = &now
	if sf.Version == "" {
		sf.Version = "1"
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	tmp := r.path + ".tmp"
	defer func() { _ = os.Remove(tmp) }()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp settings: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace settings %s: %w", r.path, err)
	}
	return nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "project"
	}
	if len(s) > 40 {
		s = strings.Trim(s[:40], "-")
	}
	return s
}
