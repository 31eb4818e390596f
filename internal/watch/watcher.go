package watch

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"tidyd/internal/errors"
	"tidyd/internal/log"
)

// Event is one raw filesystem notification forwarded to the dispatcher.
type Event struct {
	Name      string // Full path as reported by fsnotify
	Op        fsnotify.Op
	Timestamp time.Time
}

// Watcher monitors a single directory for file changes using fsnotify.
// It forwards every notification unfiltered; deciding which events matter
// is the dispatcher's job.
type Watcher struct {
	// Directory being watched
	dir string

	// Channel delivering events to the dispatcher
	events chan Event

	// Channel to signal stop
	stopChan chan struct{}

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Lock for running state
	mutex sync.RWMutex

	// Lifecycle flags; a stopped watcher cannot be restarted
	running bool
	stopped bool
}

// New creates a directory watcher using fsnotify.
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	return &Watcher{
		events:    make(chan Event, 10),
		stopChan:  make(chan struct{}),
		fsWatcher: fsWatcher,
	}, nil
}

// Watch registers the directory to monitor. The registration is fixed for
// the watcher's lifetime; it does not recurse into subdirectories.
func (w *Watcher) Watch(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return errors.NewFileError("cannot access watch directory", dir, errors.WatchFailed, err)
	}
	if !info.IsDir() {
		return errors.NewFileError(fmt.Sprintf("%s is not a directory", dir), dir, errors.WatchFailed, nil)
	}

	if err := w.fsWatcher.Add(dir); err != nil {
		return errors.NewFileError("failed to register watch", dir, errors.WatchFailed, err)
	}

	w.mutex.Lock()
	w.dir = dir
	w.mutex.Unlock()

	log.LogWithFields(log.F("directory", dir)).Info("Watching directory")
	return nil
}

// Events returns the channel that delivers filesystem notifications.
// The channel is closed once the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins forwarding filesystem notifications.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.stopped {
		return errors.New("watcher cannot be restarted")
	}
	if w.running {
		return errors.New("watcher already running")
	}
	if w.dir == "" {
		return errors.New("no watch directory configured")
	}
	w.running = true

	go w.loop()

	log.Info("Watcher started")
	return nil
}

// loop forwards fsnotify events until stopped. It is the only sender on
// w.events and closes the channel on exit.
func (w *Watcher) loop() {
	defer close(w.events)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			ev := Event{Name: event.Name, Op: event.Op, Timestamp: time.Now()}

			// Blocking send; a slow consumer backs events up rather than
			// dropping them.
			select {
			case w.events <- ev:
			case <-w.stopChan:
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}

// Stop halts the watcher and closes the event channel.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.running {
		return
	}
	w.running = false
	w.stopped = true

	close(w.stopChan)

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}

	log.Info("Watcher stopped")
}

// IsRunning returns whether the watcher is currently active.
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// Directory returns the watched directory, empty until Watch succeeds.
func (w *Watcher) Directory() string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.dir
}
