package matcher

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/catalog"
)

// LoadFunc reloads the catalog from its source.
type LoadFunc func(ctx context.Context) (*catalog.Catalog, error)

// Watch watches a catalog file and rebuilds the index whenever the file is
// written or replaced. Reload or rebuild failures are logged and the
// previous index keeps serving. Watch blocks until ctx is cancelled.
func (m *Matcher) Watch(ctx context.Context, path string, load LoadFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors and atomic writers
	// replace the file, which would drop a direct watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	m.logger.Info("watching catalog file", zap.String("path", target))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cat, err := load(ctx)
			if err != nil {
				m.logger.Warn("catalog reload failed, keeping previous index",
					zap.String("path", target),
					zap.Error(err),
				)
				continue
			}
			if err := m.Rebuild(ctx, cat); err != nil {
				m.logger.Warn("index rebuild failed, keeping previous index",
					zap.String("path", target),
					zap.Error(err),
				)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}
