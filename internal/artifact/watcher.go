package artifact

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/notegraph/notegraph/internal/checksum"
)

// RefreshFunc is called with the owning node id and new content after an
// artifact file changes on disk.
type RefreshFunc func(nodeID string, content []byte)

// Watch starts an fsnotify watcher on the artifacts directory and invokes
// refresh for externally-edited <node_id>.md files until ctx is cancelled.
// Unchanged rewrites are skipped via a checksum cache, which also swallows
// the echo of the store's own writes. Removals are ignored: node deletion
// owns artifact removal, and a manually-removed file is recoverable by a
// later content save.
func Watch(ctx context.Context, store *Store, logger *slog.Logger, refresh RefreshFunc) error {
	// The directory is created lazily on first write; ensure it exists so
	// the watcher has something to attach to.
	if err := os.MkdirAll(store.Root(), 0o755); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.Root()); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", store.Root()))

	seen := make(map[string]string) // filename -> last checksum

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			nodeID, isArtifact := strings.CutSuffix(name, ".md")
			if !isArtifact || nodeID == "" {
				continue
			}

			data, readErr := store.Read(name)
			if readErr != nil {
				logger.Warn("watcher: read failed", slog.String("file", name), slog.String("error", readErr.Error()))
				continue
			}
			cs := checksum.Sum(data)
			if seen[name] == cs {
				continue
			}
			seen[name] = cs

			logger.Debug("watcher: artifact changed", slog.String("node_id", nodeID))
			if refresh != nil {
				refresh(nodeID, data)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
