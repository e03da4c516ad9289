package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (Store, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "videos"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "videos", "clip.mjpg"), []byte("frame-data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "top.jpg"), []byte("jpeg-data"), 0o644))
	return NewOS(root), root
}

func TestOpenReadsFile(t *testing.T) {
	store, _ := newTestStore(t)

	f, err := store.Open("videos/clip.mjpg")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "frame-data", string(data))

	// Files must seek so streams can rewind at end of media.
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	again, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestOpenMissing(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Open("videos/absent.mjpg")
	assert.Error(t, err)
}

func TestOpenRejectsEscape(t *testing.T) {
	store, _ := newTestStore(t)
	escapes := []string{
		"..",
		"../outside.jpg",
		"../../etc/passwd",
		"videos/../../outside.jpg",
	}
	for _, p := range escapes {
		_, err := store.Open(p)
		assert.ErrorContains(t, err, "escapes media root", "path %q", p)
	}
}

func TestOpenAllowsDotsInName(t *testing.T) {
	store, root := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "my..clip.mjpg"), []byte("x"), 0o644))

	f, err := store.Open("my..clip.mjpg")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.True(t, store.Exists("my..clip.mjpg"))
}

func TestExists(t *testing.T) {
	store, _ := newTestStore(t)
	assert.True(t, store.Exists("top.jpg"))
	assert.True(t, store.Exists("videos/clip.mjpg"))
	assert.False(t, store.Exists("videos"), "directories are not media files")
	assert.False(t, store.Exists("absent.jpg"))
	assert.False(t, store.Exists("../etc/passwd"))
}

func TestListSorted(t *testing.T) {
	store, root := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "videos", "a.mjpg"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "videos", "z.jpg"), []byte("x"), 0o644))

	entries, err := store.List("videos")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a.mjpg", entries[0].Name)
	assert.Equal(t, "clip.mjpg", entries[1].Name)
	assert.Equal(t, "z.jpg", entries[2].Name)
	for _, e := range entries {
		assert.False(t, e.IsDir)
	}
}

func TestListRoot(t *testing.T) {
	store, _ := newTestStore(t)
	entries, err := store.List("")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Name: "top.jpg", IsDir: false}, entries[0])
	assert.Equal(t, Entry{Name: "videos", IsDir: true}, entries[1])
}

func TestListMissingDir(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.List("nope")
	assert.Error(t, err)
}
