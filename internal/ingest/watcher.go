package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	apperrors "pipeledger/internal/errors"
)

// Watcher runs a callback once new bulletin files in the inbox have settled.
type Watcher struct {
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	callback func(ctx context.Context) error
	logger   *slog.Logger
}

// NewWatcher watches dir. Bursts of events within debounce collapse into one
// callback.
func NewWatcher(dir string, debounce time.Duration, logger *slog.Logger, callback func(ctx context.Context) error) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, apperrors.NewIOError("create watcher", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, apperrors.NewIOError("watch "+dir, err)
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		watcher:  fw,
		callback: callback,
		logger:   logger.With(slog.String("component", "watcher")),
	}, nil
}

// Run blocks until ctx is done. Callback errors are logged and the watcher
// keeps running; the next event retries.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	w.logger.Info("watching inbox", slog.String("dir", w.dir), slog.Duration("debounce", w.debounce))
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("inbox event", slog.String("name", event.Name), slog.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("inbox watcher error", slog.String("error", err.Error()))

		case <-timer.C:
			if err := w.callback(ctx); err != nil {
				w.logger.Error("inbox run failed", slog.String("error", err.Error()))
			}

		case <-ctx.Done():
			w.logger.Info("inbox watcher stopping")
			return nil
		}
	}
}

func relevant(e fsnotify.Event) bool {
	if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	_, err := ParseFileName(e.Name)
	return err == nil && !strings.HasPrefix(filepath.Base(e.Name), ".")
}
