package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 250 * time.Millisecond

// WatchOverrides merges the overrides file at path into the categorizer
// whenever it is written, until ctx ends. Entries removed from the file stay
// registered until deleted through the API. The parent directory is watched
// so editors that replace the file are noticed.
func (s *Server) WatchOverrides(ctx context.Context, path string) error {
	if s.pipeline == nil {
		return fmt.Errorf("no pipeline to reload overrides into")
	}
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create overrides watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	go s.watchLoop(ctx, w, path)
	s.logger.Info("Watching overrides file", "path", path)
	return nil
}

func (s *Server) watchLoop(ctx context.Context, w *fsnotify.Watcher, path string) {
	defer w.Close()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			debounce = time.After(reloadDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("Overrides watcher error", "error", err)
		case <-debounce:
			debounce = nil
			s.reloadOverrides(path)
		}
	}
}

func (s *Server) reloadOverrides(path string) {
	s.overridesMu.Lock()
	defer s.overridesMu.Unlock()
	if !s.pipeline.Categorizer().ImportOverrides(path) {
		s.logger.Warn("Keeping previous overrides after failed reload", "path", path)
	}
}
