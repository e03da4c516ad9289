package panel

import (
	"fmt"
	"sync"
)

// Memory is an in-process panel used by tests and soak runs. It keeps
// the last pushed pixels and counts blits.
type Memory struct {
	mu     sync.Mutex
	width  int
	height int
	pix    []byte
	blits  int
}

// NewMemory creates a memory panel of the given dimensions.
func NewMemory(width, height int) *Memory {
	return &Memory{
		width:  width,
		height: height,
		pix:    make([]byte, width*height*BytesPerPixel),
	}
}

func (m *Memory) Size() (int, int) { return m.width, m.height }

func (m *Memory) Blit(x, y, w, h int, pix []byte) error {
	if len(pix) != w*h*BytesPerPixel {
		return fmt.Errorf("blit: pixel buffer is %d bytes, want %d", len(pix), w*h*BytesPerPixel)
	}
	if x < 0 || y < 0 || x+w > m.width || y+h > m.height {
		return fmt.Errorf("blit: rectangle %dx%d at (%d,%d) out of panel bounds %dx%d", w, h, x, y, m.width, m.height)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for row := 0; row < h; row++ {
		dst := ((y+row)*m.width + x) * BytesPerPixel
		src := row * w * BytesPerPixel
		copy(m.pix[dst:dst+w*BytesPerPixel], pix[src:src+w*BytesPerPixel])
	}
	m.blits++
	return nil
}

func (m *Memory) Close() error { return nil }

// Blits returns the number of completed transfers.
func (m *Memory) Blits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blits
}

// Snapshot copies the current panel contents.
func (m *Memory) Snapshot() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.pix))
	copy(out, m.pix)
	return out
}
