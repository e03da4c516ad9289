// Package storage is the boundary to the removable media mount. The
// player only ever sees the narrow Store interface; paths are always
// relative to the mount root.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is a readable, seekable media file.
type File interface {
	io.Reader
	io.Seeker
	io.Closer
}

// Entry is one directory listing entry.
type Entry struct {
	Name  string
	IsDir bool
}

// Store provides read access to the media mount.
type Store interface {
	// Open opens a file below the mount root.
	Open(path string) (File, error)
	// Exists reports whether a file exists below the mount root.
	Exists(path string) bool
	// List enumerates a directory below the mount root, sorted by name.
	List(dir string) ([]Entry, error)
}

type osStore struct {
	root string
}

// NewOS returns a Store rooted at the given mount point.
func NewOS(root string) Store {
	return &osStore{root: root}
}

// resolve confines path to the store root. The cleaned relative path
// must not start with a ".." segment; ".." inside a file name is fine.
func (s *osStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes media root", path)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *osStore) Open(path string) (File, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full) // #nosec G304 -- full is confined to the media root by resolve
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *osStore) Exists(path string) bool {
	full, err := s.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

func (s *osStore) List(dir string) ([]Entry, error) {
	full, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, Entry{Name: e.Name(), IsDir: e.IsDir()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
