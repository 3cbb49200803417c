package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/shrimptools/taskviewer/internal/board"
	"github.com/shrimptools/taskviewer/internal/i18n"
	"github.com/shrimptools/taskviewer/internal/notes"
	"github.com/shrimptools/taskviewer/internal/profile"
	"github.com/shrimptools/taskviewer/models"
	"github.com/shrimptools/taskviewer/store"
)

type profileResponse struct {
	profile.Profile
	LastChangedAt *time.Time `json:"lastChangedAt,omitempty"`
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.registry.List()
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileResponse{Profile: p, LastChangedAt: s.lastChanged(p.ID)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		TaskPath    string `json:"taskPath"`
		ProjectRoot string `json:"projectRoot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := s.registry.Add(req.Name, req.TaskPath, req.ProjectRoot)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleRenameProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := s.registry.Rename(r.PathValue("id"), req.Name)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			s.writeError(w, err)
		} else {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRemoveProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Remove(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

// taskFileResponse is a normalized task file plus the not-created marker the
// UI uses to show its onboarding hint instead of an empty board.
type taskFileResponse struct {
	models.TaskFile
	NotCreated bool `json:"notCreated,omitempty"`
}

// loadTolerant reads a profile's task file, treating a file that does not
// exist yet as an empty list rather than a failure.
func loadTolerant(ts store.TaskStore) (models.TaskFile, bool, error) {
	tf, err := ts.Load()
	if err != nil {
		if errors.Is(err, store.ErrNotCreated) {
			return tf, true, nil
		}
		return models.TaskFile{}, false, err
	}
	return tf, false, nil
}

func (s *Server) handleGetTasks(w http.ResponseWriter, r *http.Request) {
	_, ts, err := s.storeFor(r.PathValue("profileID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	tf, notCreated, err := loadTolerant(ts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskFileResponse{TaskFile: tf, NotCreated: notCreated})
}

func (s *Server) handlePutTasks(w http.ResponseWriter, r *http.Request) {
	_, ts, err := s.storeFor(r.PathValue("profileID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var tf models.TaskFile
	if err := json.NewDecoder(r.Body).Decode(&tf); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := ts.Save(tf); err != nil {
		s.writeError(w, err)
		return
	}

	saved, _, err := loadTolerant(ts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskFileResponse{TaskFile: saved})
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	_, ts, err := s.storeFor(r.PathValue("profileID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	taskID := r.PathValue("taskID")
	if task.ID == "" {
		task.ID = taskID
	}
	if task.ID != taskID {
		http.Error(w, "task id in body does not match path", http.StatusBadRequest)
		return
	}

	updated, err := ts.UpdateTask(task)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			s.writeError(w, err)
		} else {
			var pe *store.ParseError
			if errors.As(err, &pe) {
				s.writeError(w, err)
			} else {
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	_, ts, err := s.storeFor(r.PathValue("profileID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := ts.DeleteTask(r.PathValue("taskID")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func filterFromQuery(r *http.Request) board.FilterState {
	q := r.URL.Query()
	return board.FilterState{
		Text:   q.Get("filter"),
		Status: q.Get("status"),
		Story:  q.Get("story"),
	}
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	_, ts, err := s.storeFor(r.PathValue("profileID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	tf, notCreated, err := loadTolerant(ts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	state := filterFromQuery(r)
	groups := board.GroupFiltered(tf.Tasks, state)

	// The story dropdown lists every key regardless of the active filter.
	allKeys := make([]string, 0)
	for _, g := range board.Group(tf.Tasks) {
		allKeys = append(allKeys, g.Key)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"groups":     groups,
		"stories":    allKeys,
		"totalTasks": len(tf.Tasks),
		"notCreated": notCreated,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	p, ts, err := s.storeFor(r.PathValue("profileID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	tf, _, err := loadTolerant(ts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	pd, err := store.LoadProjectData(filepath.Dir(p.TaskPath))
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Without a stories file the story keys derived from the tasks stand in,
	// statusless, so they count as active.
	stories := pd.Stories
	if len(stories) == 0 {
		for _, g := range board.Group(tf.Tasks) {
			if g.Key == board.NoStoryKey {
				continue
			}
			stories = append(stories, models.Story{ID: g.Key, Title: g.Key})
		}
	}

	stats := board.Project(pd.Epics, stories, tf.Tasks, pd.Verifications)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	_, hs, err := s.historyFor(r.PathValue("profileID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	entries, err := hs.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	_, hs, err := s.historyFor(r.PathValue("profileID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	tf, err := hs.Get(r.PathValue("entry"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tf)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	_, hs, err := s.historyFor(r.PathValue("profileID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := hs.Delete(r.PathValue("entry")); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	profileID := r.PathValue("profileID")
	_, hs, err := s.historyFor(profileID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	modeStr := r.URL.Query().Get("mode")
	if modeStr == "" {
		modeStr = string(store.ImportAppend)
	}
	mode, err := store.ParseImportMode(modeStr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, ts, err := s.storeFor(profileID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	count, err := hs.ImportInto(ts, r.PathValue("entry"), mode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"imported": count,
		"mode":     mode,
	})
}

func (s *Server) handleGlobalAgents(w http.ResponseWriter, r *http.Request) {
	list, err := s.agents.LoadGlobal(s.globalAgentsDir)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleProjectAgents(w http.ResponseWriter, r *http.Request) {
	p, err := s.registry.Get(r.PathValue("profileID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	list, err := s.agents.LoadProject(p.ProjectRoot)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleListReleaseNotes(w http.ResponseWriter, r *http.Request) {
	list, err := notes.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetReleaseNote(w http.ResponseWriter, r *http.Request) {
	n, err := notes.Get(r.PathValue("version"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleListLocales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": i18n.Languages(),
		"detected":  i18n.Match(r.Header.Get("Accept-Language")),
	})
}

func (s *Server) handleGetLocale(w http.ResponseWriter, r *http.Request) {
	msgs, err := i18n.Bundle(r.PathValue("lang"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}
