package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"tidyd/internal/config"
	"tidyd/internal/errors"
	"tidyd/internal/log"
	"tidyd/internal/organize"
	"tidyd/internal/rules"
)

// DaemonStatus represents the current status of the daemon
type DaemonStatus struct {
	Running        bool      // Whether the daemon is currently active
	WatchDirectory string    // Directory being watched
	LastActivity   time.Time // Time of last file activity
	FilesProcessed int       // Files that completed an action
}

// Daemon ties the watcher, the rule engine, and the action executor into the
// unattended organizing service. Events are consumed by a single goroutine,
// so each file is fully resolved before the next one is considered.
type Daemon struct {
	watchDir string

	// The file watcher
	watcher *Watcher

	// Rule engine and action executor
	engine *rules.Engine
	exec   *organize.Executor

	// Statistics
	processed    int
	lastActivity time.Time

	// Lock for state, WaitGroup to join the consumer on Stop
	mutex sync.RWMutex
	wg    sync.WaitGroup

	// Whether the daemon is running
	running bool
}

// NewDaemon builds the organizing service from a validated configuration.
func NewDaemon(cfg *config.Config) (*Daemon, error) {
	watcher, err := New()
	if err != nil {
		return nil, err
	}

	engine, err := rules.NewEngine(cfg.Rules, cfg.Ignore)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		watchDir: cfg.WatchPath(),
		watcher:  watcher,
		engine:   engine,
		exec:     organize.New(cfg.BaseDir, cfg.Settings.DryRun),
	}, nil
}

// Start registers the watch and begins processing events.
func (d *Daemon) Start() error {
	d.mutex.Lock()
	if d.running {
		d.mutex.Unlock()
		return errors.New("daemon is already running")
	}
	d.running = true
	d.mutex.Unlock()

	if err := d.watcher.Watch(d.watchDir); err != nil {
		d.setStopped()
		return err
	}
	if err := d.watcher.Start(); err != nil {
		d.setStopped()
		return err
	}

	d.wg.Add(1)
	go d.processEvents()

	log.LogWithFields(
		log.F("directory", d.watchDir),
		log.F("dryRun", d.exec.DryRun()),
	).Info("Daemon started")
	return nil
}

// Stop halts the watcher and waits for the in-flight event to finish.
func (d *Daemon) Stop() {
	d.mutex.Lock()
	if !d.running {
		d.mutex.Unlock()
		return
	}
	d.running = false
	d.mutex.Unlock()

	d.watcher.Stop()
	d.wg.Wait()

	log.Info("Daemon stopped")
}

func (d *Daemon) setStopped() {
	d.mutex.Lock()
	d.running = false
	d.mutex.Unlock()
}

// Status returns the current status of the daemon
func (d *Daemon) Status() DaemonStatus {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	return DaemonStatus{
		Running:        d.running,
		WatchDirectory: d.watchDir,
		LastActivity:   d.lastActivity,
		FilesProcessed: d.processed,
	}
}

// processEvents is the single consumer of the watcher's event stream.
func (d *Daemon) processEvents() {
	defer d.wg.Done()

	for event := range d.watcher.Events() {
		d.handleEvent(event)
	}
}

// handleEvent resolves one notification and runs at most one action for it.
// Failures are logged and swallowed so the loop survives to the next event.
func (d *Daemon) handleEvent(event Event) {
	// Create covers files moved into the directory; Write covers in-place
	// writes. Remove, Rename and Chmod notifications carry nothing to act on.
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if event.Name == "" {
		return
	}

	name := filepath.Base(event.Name)
	if d.engine.Ignored(name) {
		log.Debugf("Ignoring %s", name)
		return
	}

	path := filepath.Join(d.watchDir, name)

	eventLog := log.LogWithFields(
		log.F("event", uuid.NewString()[:8]),
		log.F("file", name),
		log.F("op", event.Op.String()),
	)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			eventLog.Warn("File vanished before processing, discarding event")
			return
		}
		eventLog.WithField("error", err).Error("Failed to stat file")
		return
	}
	if info.IsDir() {
		return
	}

	d.mutex.Lock()
	d.lastActivity = event.Timestamp
	d.mutex.Unlock()

	eventLog.Debug("Processing file")

	rule, err := d.engine.Select(path)
	if err != nil {
		log.LogWithError(err).Error("Rule matching failed")
		return
	}
	if rule == nil {
		eventLog.Debug("No rule matched")
		return
	}

	action := rule.Actions[0]
	eventLog.WithField("rule", rule.Pattern()).WithField("action", action.String()).Info("Rule matched")

	outcome, err := d.exec.Execute(action, path)
	if err != nil {
		log.LogWithError(err).Error("Action failed")
		return
	}

	d.mutex.Lock()
	d.processed++
	d.mutex.Unlock()

	eventLog.WithField("outcome", string(outcome)).Info("File processed")
}
