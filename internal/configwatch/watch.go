// Package configwatch hot-reloads a connections config file: it debounces
// fsnotify write events on the file's directory and funnels every
// background outcome (reload success, reload failure, watch-level error)
// through internal/dblog's structured logger instead of printing to stderr
// directly, so config-reload activity shows up alongside every other
// pool/manager log line in the same JSON shape. The initial load's error is
// returned by Start rather than logged.
package configwatch

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/smartdb-go/smartdb/internal/dblog"
)

// DefaultDebounce is the delay applied after the last observed write before
// reload is invoked again.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads configPath (debounced) whenever it is written to.
type Watcher struct {
	configPath string
	debounce   time.Duration
	reload     func() error
	fsw        *fsnotify.Watcher
	stopCh     chan struct{}
}

// New builds a Watcher over configPath with the given debounce window. A
// debounce of zero falls back to DefaultDebounce.
func New(configPath string, debounce time.Duration, reload func() error) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}

	return &Watcher{
		configPath: absPath,
		debounce:   debounce,
		reload:     reload,
		fsw:        fsw,
		stopCh:     make(chan struct{}),
	}, nil
}

// Start runs reload once synchronously, then watches configPath for
// debounced writes in the background until Stop is called.
func (w *Watcher) Start() error {
	if err := w.reload(); err != nil {
		return fmt.Errorf("initial config load failed: %w", err)
	}

	go w.watchLoop()
	return nil
}

func (w *Watcher) watchLoop() {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write != fsnotify.Write {
				continue
			}
			eventPath, err := filepath.Abs(event.Name)
			if err != nil || eventPath != w.configPath {
				continue
			}
			timer.Reset(w.debounce)
			pending = timer.C

		case <-pending:
			pending = nil
			if err := w.reload(); err != nil {
				dblog.Warn("config reload failed", "path", w.configPath, "error", err.Error())
				continue
			}
			dblog.Info("config reloaded", "path", w.configPath)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			dblog.Warn("config watch error", "path", w.configPath, "error", err.Error())

		case <-w.stopCh:
			return
		}
	}
}

// Stop stops watching and releases the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	return w.fsw.Close()
}
