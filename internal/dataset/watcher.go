package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps the engine in sync with a dataset directory while the service
// runs. New or rewritten files are re-registered, removed files drop their
// view.
type Watcher struct {
	engine  *Engine
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

func NewWatcher(engine *Engine, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create dataset watcher: %w", err)
	}
	return &Watcher{engine: engine, watcher: fsWatcher, logger: logger}, nil
}

// Watch blocks until ctx is cancelled, applying file events to the engine.
// Run it on its own goroutine.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch dataset dir %q: %w", dir, err)
	}
	w.logger.InfoContext(ctx, "watching dataset directory", slog.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isDatasetFile(event.Name) {
				continue
			}
			w.apply(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "dataset watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) apply(ctx context.Context, event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		table, err := w.engine.RegisterFile(ctx, event.Name)
		if err != nil {
			w.logger.WarnContext(ctx, "failed to register dataset file",
				slog.String("path", event.Name), slog.String("error", err.Error()))
			return
		}
		w.logger.InfoContext(ctx, "dataset table refreshed",
			slog.String("table", table), slog.String("path", event.Name))
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		table := TableNameForPath(event.Name)
		if err := w.engine.DropTable(ctx, table); err != nil {
			w.logger.WarnContext(ctx, "failed to drop dataset table",
				slog.String("table", table), slog.String("error", err.Error()))
			return
		}
		w.logger.InfoContext(ctx, "dataset table dropped", slog.String("table", table))
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
