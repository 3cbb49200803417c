// Package server hosts the dashboard's HTTP API and static UI. Handlers are
// thin: they resolve a profile, delegate to the stores and the board engine,
// and serialize the result. All task-file writes go through the store layer
// so its locking and atomic-rewrite discipline applies to API traffic too.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shrimptools/taskviewer/internal/agents"
	"github.com/shrimptools/taskviewer/internal/profile"
	"github.com/shrimptools/taskviewer/store"
)

// Options configures a Server.
type Options struct {
	Host            string
	Port            int
	Registry        *profile.Registry
	Agents          *agents.Loader
	GlobalAgentsDir string
	// StaticDir overrides the embedded UI with files served from disk.
	StaticDir string
	Logger    zerolog.Logger
}

type Server struct {
	registry        *profile.Registry
	agents          *agents.Loader
	globalAgentsDir string
	log             zerolog.Logger
	server          *http.Server

	// changes records when a profile's task file last changed on disk,
	// fed by the fsnotify watcher.
	changes sync.Map // profile ID -> time.Time
}

// New builds the server and its route table.
func New(opts Options) (*Server, error) {
	if opts.Registry == nil {
		return nil, errors.New("profile registry required")
	}
	if opts.Agents == nil {
		opts.Agents = agents.NewLoader()
	}

	s := &Server{
		registry:        opts.Registry,
		agents:          opts.Agents,
		globalAgentsDir: opts.GlobalAgentsDir,
		log:             opts.Logger.With().Str("component", "server").Logger(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/profiles", s.handleListProfiles)
	mux.HandleFunc("POST /api/profiles", s.handleAddProfile)
	mux.HandleFunc("PUT /api/profiles/{id}", s.handleRenameProfile)
	mux.HandleFunc("DELETE /api/profiles/{id}", s.handleRemoveProfile)

	mux.HandleFunc("GET /api/tasks/{profileID}", s.handleGetTasks)
	mux.HandleFunc("PUT /api/tasks/{profileID}", s.handlePutTasks)
	mux.HandleFunc("PUT /api/tasks/{profileID}/task/{taskID}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{profileID}/task/{taskID}", s.handleDeleteTask)

	mux.HandleFunc("GET /api/board/{profileID}", s.handleBoard)
	mux.HandleFunc("GET /api/stats/{profileID}", s.handleStats)

	mux.HandleFunc("GET /api/history/{profileID}", s.handleListHistory)
	mux.HandleFunc("GET /api/history/{profileID}/{entry}", s.handleGetHistory)
	mux.HandleFunc("DELETE /api/history/{profileID}/{entry}", s.handleDeleteHistory)
	mux.HandleFunc("POST /api/history/{profileID}/{entry}/import", s.handleImportHistory)

	mux.HandleFunc("GET /api/agents/global", s.handleGlobalAgents)
	mux.HandleFunc("GET /api/agents/{profileID}", s.handleProjectAgents)

	mux.HandleFunc("GET /api/release-notes", s.handleListReleaseNotes)
	mux.HandleFunc("GET /api/release-notes/{version}", s.handleGetReleaseNote)

	mux.HandleFunc("GET /api/locales", s.handleListLocales)
	mux.HandleFunc("GET /api/locales/{lang}", s.handleGetLocale)

	mux.HandleFunc("OPTIONS /api/", s.handleCORS)

	mux.Handle("/", s.staticHandler(opts.StaticDir))

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler: corsMiddleware(s.logMiddleware(mux)),
	}
	return s, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.server.Addr }

// Start runs the listener in a goroutine tracked by wg. Startup failures go
// to errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		s.log.Info().Str("addr", s.server.Addr).Msg("dashboard listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("dashboard server error: %w", err)
		}
	}()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// TrackChanges consumes profile IDs from the file watcher and records when
// each profile's task file last changed. The loop ends when ch closes.
func (s *Server) TrackChanges(ch <-chan string) {
	go func() {
		for id := range ch {
			s.changes.Store(id, time.Now().UTC())
			s.log.Info().Str("profile", id).Msg("task file changed on disk")
		}
	}()
}

func (s *Server) lastChanged(profileID string) *time.Time {
	if v, ok := s.changes.Load(profileID); ok {
		t := v.(time.Time)
		return &t
	}
	return nil
}

// storeFor resolves a profile ID to its profile and task store.
func (s *Server) storeFor(profileID string) (profile.Profile, store.TaskStore, error) {
	p, err := s.registry.Get(profileID)
	if err != nil {
		return profile.Profile{}, nil, err
	}
	ts, err := store.NewFileTaskStore(p.TaskPath)
	if err != nil {
		return profile.Profile{}, nil, err
	}
	return p, ts, nil
}

func (s *Server) historyFor(profileID string) (profile.Profile, *store.HistoryStore, error) {
	p, err := s.registry.Get(profileID)
	if err != nil {
		return profile.Profile{}, nil, err
	}
	hs, err := store.NewHistoryStore(p.MemoryDir())
	if err != nil {
		return profile.Profile{}, nil, err
	}
	return p, hs, nil
}

func (s *Server) handleCORS(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps store and registry failures onto HTTP statuses: missing
// things are 404, unreadable input is 400, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var pe *store.ParseError
	switch {
	case errors.Is(err, profile.ErrNotFound),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrEntryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &pe), errors.Is(err, store.ErrInvalidEntryName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error().Err(err).Msg("request failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
