package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shrimptools/taskviewer/models"
)

const (
	epicsFile         = "epics.json"
	storiesFile       = "stories.json"
	verificationsFile = "verifications.json"
)

// ProjectData holds the dashboard's sidecar collections. The task manager
// writes them next to the task file when it runs verifications; a project
// without them just gets empty collections.
type ProjectData struct {
	Epics         []models.Epic
	Stories       []models.Story
	Verifications map[string]models.VerificationRecord
}

// LoadProjectData reads the optional epic, story and verification files from
// a task file's directory. Missing files are normal and yield empty
// collections; a file that exists but does not parse is a ParseError.
func LoadProjectData(dir string) (ProjectData, error) {
	pd := ProjectData{
		Epics:         []models.Epic{},
		Stories:       []models.Story{},
		Verifications: map[string]models.VerificationRecord{},
	}

	if err := readSidecar(filepath.Join(dir, epicsFile), &pd.Epics); err != nil {
		return ProjectData{}, err
	}
	if err := readSidecar(filepath.Join(dir, storiesFile), &pd.Stories); err != nil {
		return ProjectData{}, err
	}
	if err := readSidecar(filepath.Join(dir, verificationsFile), &pd.Verifications); err != nil {
		return ProjectData{}, err
	}

	// The map is keyed by story ID; records that omit their own storyId get
	// it filled from the key.
	for id, v := range pd.Verifications {
		if v.StoryID == "" {
			v.StoryID = id
			pd.Verifications[id] = v
		}
	}
	return pd, nil
}

func readSidecar(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	return nil
}
