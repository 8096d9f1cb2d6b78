package config

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Watcher polls the settings file for modification time changes and swaps
// reloaded settings into the Store. A file that fails to load keeps the
// previous settings in place.
type Watcher struct {
	path     string
	store    *Store
	interval time.Duration
	logger   *slog.Logger
	modTime  time.Time
}

// NewWatcher creates a Watcher for the given settings file. The file does not
// need to exist at watch time.
func NewWatcher(path string, store *Store, interval time.Duration, logger *slog.Logger) *Watcher {
	return &Watcher{
		path:     path,
		store:    store,
		interval: interval,
		logger:   logger,
		modTime:  fileModTime(path),
	}
}

// Run polls until the context is cancelled. It blocks, so call it in a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	current := fileModTime(w.path)

	// Skip if file doesn't exist (may be mid-save) or unchanged.
	if current.IsZero() || current.Equal(w.modTime) {
		return
	}
	w.modTime = current

	s, err := LoadSettings(w.path)
	if err != nil {
		w.logger.Error("settings reload failed, keeping previous", "path", w.path, "error", err)
		return
	}

	w.store.Replace(s)
	w.logger.Info("settings reloaded",
		"path", w.path,
		"staleness_threshold", s.StalenessThreshold.Std(),
		"task_deadline_offset", s.TaskDeadlineOffset.Std())
}

// fileModTime returns the file's modification time, or zero if it can't be read.
func fileModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
