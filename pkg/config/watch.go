package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bastiangx/gopostfix/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads the config file whenever it changes on disk.
type Watcher struct {
	file     string
	onReload func(*Config)
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      *log.Logger
}

// NewWatcher creates a watcher for configPath. The directory is watched
// rather than the file so editors that replace the file on save still
// trigger a reload.
func NewWatcher(configPath string, onReload func(*Config)) (*Watcher, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "resolve config path")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "watch %s", filepath.Dir(absPath))
	}

	return &Watcher{
		file:     absPath,
		onReload: onReload,
		watcher:  watcher,
		debounce: DefaultDebounce,
		log:      logger.New("config"),
	}, nil
}

// SetDebounce changes the settle delay. Must be called before Run.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run blocks until ctx is done, reloading on every settled change.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var settle <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if p, err := filepath.Abs(event.Name); err != nil || p != w.file {
				continue
			}
			timer.Reset(w.debounce)
			settle = timer.C

		case <-settle:
			settle = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("Watch error: %v", err)

		case <-ctx.Done():
			timer.Stop()
			return nil
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.file)
	if err != nil {
		w.log.Warnf("Reload failed, keeping current config: %v", err)
		return
	}
	w.log.Infof("Reloaded from %s", w.file)
	w.onReload(cfg)
}
