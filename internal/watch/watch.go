// Package watch monitors registered task files for external edits so the
// server can tell clients to reload. The task manager rewrites files with a
// temp-file rename, so the parent directory is watched rather than the file
// itself. Watching is best-effort: errors are logged, never fatal.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const debounceDelay = 250 * time.Millisecond

// Watcher emits profile IDs whose task file changed on disk.
type Watcher struct {
	fsw     *fsnotify.Watcher
	log     zerolog.Logger
	changed chan string

	mu       sync.Mutex
	byFile   map[string]string // absolute task path -> profile ID
	dirRefs  map[string]int    // watched dir -> number of files in it
	pending  map[string]*time.Timer
	stopped  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a watcher. Call Start to begin delivering events.
func New(log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		fsw:     fsw,
		log:     log.With().Str("component", "watch").Logger(),
		changed: make(chan string, 16),
		byFile:  make(map[string]string),
		dirRefs: make(map[string]int),
		pending: make(map[string]*time.Timer),
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Changed delivers profile IDs whose task file was modified. Rapid event
// bursts from a single save are debounced to one delivery.
func (w *Watcher) Changed() <-chan string {
	return w.changed
}

// Start launches the event loop.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.eventLoop()
}

// Stop tears the watcher down. The Changed channel stays open but delivers
// nothing further.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	for _, t := range w.pending {
		t.Stop()
	}
	w.mu.Unlock()

	w.cancel()
	_ = w.fsw.Close()
	w.wg.Wait()
}

// Add registers a profile's task file. The file does not have to exist yet;
// its directory does.
func (w *Watcher) Add(profileID, taskPath string) error {
	abs, err := filepath.Abs(taskPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if old, ok := w.byFile[abs]; ok && old == profileID {
		return nil
	}
	w.byFile[abs] = profileID
	w.dirRefs[dir]++
	if w.dirRefs[dir] == 1 {
		if err := w.fsw.Add(dir); err != nil {
			delete(w.byFile, abs)
			w.dirRefs[dir]--
			return err
		}
	}
	return nil
}

// Remove unregisters a profile's task file.
func (w *Watcher) Remove(taskPath string) {
	abs, err := filepath.Abs(taskPath)
	if err != nil {
		return
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.byFile[abs]; !ok {
		return
	}
	delete(w.byFile, abs)
	w.dirRefs[dir]--
	if w.dirRefs[dir] <= 0 {
		delete(w.dirRefs, dir)
		_ = w.fsw.Remove(dir)
	}
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")

		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	profileID, ok := w.byFile[abs]
	if !ok || w.stopped {
		return
	}

	// One editor save can fire several events; collapse them.
	if t, ok := w.pending[profileID]; ok {
		t.Stop()
	}
	w.pending[profileID] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, profileID)
		stopped := w.stopped
		w.mu.Unlock()
		if stopped {
			return
		}
		select {
		case w.changed <- profileID:
		default:
			w.log.Debug().Str("profile", profileID).Msg("change channel full, dropping event")
		}
	})
}
