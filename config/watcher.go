package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/fieldbot/drivecore/logging"
	"github.com/fieldbot/drivecore/utils"
)

// DefaultWatchDelay is how long a config file must be quiet before it is re-read.
const DefaultWatchDelay = 250 * time.Millisecond

// A Watcher re-reads a config file whenever it changes on disk and hands every valid result to a
// callback. Invalid edits are logged and skipped.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	debounce func(func())
	onChange func(*Config)
	logger   logging.Logger
	workers  utils.StoppableWorkers
	closed   atomic.Bool
}

// NewWatcher starts watching filePath. Bursts of events closer together than delay are coalesced
// into one re-read.
func NewWatcher(filePath string, delay time.Duration, onChange func(*Config), logger logging.Logger) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultWatchDelay
	}
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", filePath)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	// Editors commonly replace the file rather than write it, so watch the directory.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "watching %s", filepath.Dir(abs)), fsw.Close())
	}

	w := &Watcher{
		path:     abs,
		fsw:      fsw,
		debounce: debounce.New(delay),
		onChange: onChange,
		logger:   logger,
	}
	w.workers = utils.NewStoppableWorkers(w.run)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debounce(w.reload)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("config watch error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) reload() {
	if w.closed.Load() {
		return
	}
	cfg, err := Read(w.path)
	if err != nil {
		w.logger.Warnw("ignoring config change", "path", w.path, "error", err)
		return
	}
	w.logger.Infow("config changed", "path", w.path)
	w.onChange(cfg)
}

// Close stops watching. Pending re-reads are dropped.
func (w *Watcher) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	w.workers.Stop()
	return w.fsw.Close()
}
