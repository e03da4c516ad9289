// Package frame owns the double-buffered frame pipeline between the
// playback producer and the display consumer: two fixed-size RGB565
// slots and the token gate that arbitrates their ownership.
package frame

import "github.com/pixelpane/pixelpane/internal/panel"

// Pool holds the two interchangeable pixel slots. Exactly one slot is
// owned by the producer and one by the consumer at any instant; the
// indices swap at publish. The pool itself does no locking, the Gate
// token protocol is the only synchronization between the two sides.
type Pool struct {
	slots    [2][]byte
	width    int
	height   int
	writeIdx int
	readyIdx int
}

// NewPool allocates both slots for the given panel dimensions.
func NewPool(width, height int) *Pool {
	p := &Pool{width: width, height: height, readyIdx: -1}
	size := width * height * panel.BytesPerPixel
	p.slots[0] = make([]byte, size)
	p.slots[1] = make([]byte, size)
	return p
}

// Size returns the slot dimensions in pixels.
func (p *Pool) Size() (width, height int) { return p.width, p.height }

// AcquireWritable returns the index of the slot not currently displayed.
// Must only be called by the producer after winning the free token.
func (p *Pool) AcquireWritable() int { return p.writeIdx }

// Publish marks the just-written slot as the ready slot and flips the
// write index so the next production cycle targets the other buffer.
func (p *Pool) Publish() {
	p.readyIdx = p.writeIdx
	p.writeIdx ^= 1
}

// Consume returns the most recently published slot index, or -1 when
// nothing has been published yet.
func (p *Pool) Consume() int { return p.readyIdx }

// Slot returns the raw pixel buffer of the given slot.
func (p *Pool) Slot(i int) []byte {
	if i < 0 || i > 1 {
		return nil
	}
	return p.slots[i]
}
