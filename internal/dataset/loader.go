package dataset

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/talkdata/talkdata/internal/storage"
)

// Loader moves dataset files into the engine: from a local directory at
// startup, optionally syncing them down from an object store first.
type Loader struct {
	engine *Engine
	logger *slog.Logger
}

func NewLoader(engine *Engine, logger *slog.Logger) *Loader {
	return &Loader{engine: engine, logger: logger}
}

// LoadDir registers every parquet and CSV file under dir. A file that fails
// to register is logged and skipped so one bad file does not take the whole
// dataset down.
func (l *Loader) LoadDir(ctx context.Context, dir string) (int, error) {
	loaded := 0
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !isDatasetFile(path) {
			return nil
		}
		table, err := l.engine.RegisterFile(ctx, path)
		if err != nil {
			l.logger.WarnContext(ctx, "skipping dataset file",
				slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		l.logger.InfoContext(ctx, "registered dataset table",
			slog.String("table", table), slog.String("path", path))
		loaded++
		return nil
	})
	if err != nil {
		return loaded, fmt.Errorf("walk dataset dir %q: %w", dir, err)
	}
	return loaded, nil
}

// SyncFromObjectStore downloads every dataset object under prefix into dir.
// Existing local files are overwritten; registration happens afterwards via
// LoadDir.
func (l *Loader) SyncFromObjectStore(ctx context.Context, store storage.ObjectStore, prefix, dir string) (int, error) {
	infos, err := store.List(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("list dataset objects: %w", err)
	}

	synced := 0
	for _, info := range infos {
		if !isDatasetFile(info.Key) {
			continue
		}
		if err := l.downloadObject(ctx, store, info.Key, dir); err != nil {
			return synced, err
		}
		synced++
	}
	return synced, nil
}

func (l *Loader) downloadObject(ctx context.Context, store storage.ObjectStore, key, dir string) error {
	reader, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get dataset object %q: %w", key, err)
	}
	defer func() { _ = reader.Close() }()

	localPath := filepath.Join(dir, filepath.Base(key))
	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create dataset file %q: %w", localPath, err)
	}
	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		return fmt.Errorf("write dataset file %q: %w", localPath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close dataset file %q: %w", localPath, err)
	}
	l.logger.InfoContext(ctx, "synced dataset object",
		slog.String("key", key), slog.String("path", localPath))
	return nil
}

func isDatasetFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".csv":
		return true
	default:
		return false
	}
}
