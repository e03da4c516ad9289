package frame

import "github.com/pixelpane/pixelpane/internal/panel"

// SlotWriter is the injected block sink handed to a media source for
// one production cycle. Decoders deliver macro-blocks of RGBA pixels;
// the writer converts to RGB565, applies the centering offset and
// clips against the slot bounds, so sources stay decoupled from panel
// geometry.
type SlotWriter struct {
	pool *Pool
	idx  int
	offX int
	offY int
}

// NewSlotWriter creates a writer over the pool. Bind selects the
// target slot before each production cycle.
func NewSlotWriter(pool *Pool) *SlotWriter {
	return &SlotWriter{pool: pool, idx: -1}
}

// Bind targets the writer at a slot acquired from the pool.
func (w *SlotWriter) Bind(idx int) {
	w.idx = idx
	w.offX, w.offY = 0, 0
}

// SetOffset sets the centering offset applied to subsequent blocks.
func (w *SlotWriter) SetOffset(x, y int) {
	w.offX, w.offY = x, y
}

// Size returns the slot dimensions in pixels.
func (w *SlotWriter) Size() (width, height int) { return w.pool.Size() }

// Clear fills the bound slot with black.
func (w *SlotWriter) Clear() {
	buf := w.pool.Slot(w.idx)
	if buf == nil {
		return
	}
	for i := range buf {
		buf[i] = 0
	}
}

// WriteBlock writes a w*h macro-block of RGBA pixels (4 bytes each) at
// (x, y) in image coordinates. Blocks falling partly outside the slot
// are clipped; blocks entirely outside are dropped.
func (w *SlotWriter) WriteBlock(x, y, bw, bh int, rgba []byte) {
	buf := w.pool.Slot(w.idx)
	if buf == nil || len(rgba) < bw*bh*4 {
		return
	}
	width, height := w.pool.Size()
	for row := 0; row < bh; row++ {
		dy := y + row + w.offY
		if dy < 0 || dy >= height {
			continue
		}
		for col := 0; col < bw; col++ {
			dx := x + col + w.offX
			if dx < 0 || dx >= width {
				continue
			}
			src := (row*bw + col) * 4
			lo, hi := panel.RGB565(rgba[src], rgba[src+1], rgba[src+2])
			dst := (dy*width + dx) * panel.BytesPerPixel
			buf[dst] = lo
			buf[dst+1] = hi
		}
	}
}
