// Package library maintains the named media collections and their
// playback cursors.
package library

import (
	"fmt"
	"path"
	"sync"

	"github.com/pixelpane/pixelpane/internal/media"
	"github.com/pixelpane/pixelpane/internal/storage"
)

// cursor is an ordered sequence of media paths with a current index.
type cursor struct {
	dir   string
	items []string
	idx   int
}

// Library holds one cursor per named collection. All methods are safe
// for concurrent use; control-surface requests and the watcher both
// touch it.
type Library struct {
	mu          sync.Mutex
	store       storage.Store
	collections map[string]*cursor
}

// New creates a library over the store. collections maps a collection
// name to its directory below the media root. Call ScanAll before use.
func New(store storage.Store, collections map[string]string) *Library {
	l := &Library{store: store, collections: make(map[string]*cursor, len(collections))}
	for name, dir := range collections {
		l.collections[name] = &cursor{dir: dir}
	}
	return l
}

// Scan repopulates one collection from storage. Entries that classify
// to no playback mode are skipped. The cursor index is preserved when
// it still fits, otherwise reset.
func (l *Library) Scan(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.collections[name]
	if !ok {
		return fmt.Errorf("unknown collection %q", name)
	}
	entries, err := l.store.List(c.dir)
	if err != nil {
		return fmt.Errorf("scan collection %q: %w", name, err)
	}
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		p := path.Join(c.dir, e.Name)
		if media.Classify(p) == media.ModeNone {
			continue
		}
		items = append(items, p)
	}
	c.items = items
	if c.idx >= len(items) {
		c.idx = 0
	}
	return nil
}

// ScanAll scans every collection, returning the first error.
func (l *Library) ScanAll() error {
	l.mu.Lock()
	names := make([]string, 0, len(l.collections))
	for name := range l.collections {
		names = append(names, name)
	}
	l.mu.Unlock()
	for _, name := range names {
		if err := l.Scan(name); err != nil {
			return err
		}
	}
	return nil
}

// Next advances the collection's cursor with wraparound and returns
// the new current path.
func (l *Library) Next(name string) (string, error) {
	return l.advance(name, 1)
}

// Prev steps the collection's cursor back with wraparound and returns
// the new current path.
func (l *Library) Prev(name string) (string, error) {
	return l.advance(name, -1)
}

func (l *Library) advance(name string, step int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.collections[name]
	if !ok {
		return "", fmt.Errorf("unknown collection %q", name)
	}
	if len(c.items) == 0 {
		return "", fmt.Errorf("collection %q is empty", name)
	}
	c.idx = (c.idx + step + len(c.items)) % len(c.items)
	return c.items[c.idx], nil
}

// Names returns the configured collection names.
func (l *Library) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.collections))
	for name := range l.collections {
		names = append(names, name)
	}
	return names
}

// Dir returns the directory of a collection below the media root.
func (l *Library) Dir(name string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.collections[name]
	if !ok {
		return "", false
	}
	return c.dir, true
}
