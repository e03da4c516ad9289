package library

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pixelpane/pixelpane/internal/log"
)

// debounce coalesces bursts of filesystem events (media copies touch a
// directory many times in quick succession) into one rescan.
const debounce = 500 * time.Millisecond

// Watch rescans collections when their directories change on disk,
// which is how removable-media swaps become visible without a restart.
// root is the absolute media mount point. Watch blocks until ctx is
// cancelled.
func (l *Library) Watch(ctx context.Context, root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	logger := log.WithComponent("library")

	// Map watched absolute directories back to collection names.
	dirs := make(map[string]string)
	l.mu.Lock()
	for name, c := range l.collections {
		abs := filepath.Join(root, filepath.FromSlash(c.dir))
		dirs[abs] = name
	}
	l.mu.Unlock()
	for abs, name := range dirs {
		if err := w.Add(abs); err != nil {
			logger.Warn().Err(err).
				Str(log.FieldCollection, name).
				Str(log.FieldPath, abs).
				Msg("cannot watch collection directory")
		}
	}

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name, known := dirs[filepath.Dir(ev.Name)]
			if !known {
				continue
			}
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		case <-fire:
			for name := range pending {
				if err := l.Scan(name); err != nil {
					logger.Warn().Err(err).
						Str(log.FieldCollection, name).
						Msg("rescan failed")
				} else {
					logger.Info().
						Str("event", "library.rescanned").
						Str(log.FieldCollection, name).
						Msg("collection rescanned")
				}
			}
			pending = make(map[string]struct{})
			fire = nil
		}
	}
}
