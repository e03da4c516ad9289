// Package panel abstracts the fixed-resolution pixel panel. The frame
// pipeline only touches the Panel interface; the concrete drivers own
// the transfer mechanics.
package panel

// BytesPerPixel is the size of one RGB565 pixel on the wire.
const BytesPerPixel = 2

// Panel is the display boundary. Blit pushes a rectangle of RGB565
// pixels in one bulk operation; partial failures are not reported.
type Panel interface {
	// Size returns the panel dimensions in pixels.
	Size() (width, height int)
	// Blit transfers a w*h rectangle of RGB565 pixels at (x, y).
	// len(pix) must be w*h*BytesPerPixel.
	Blit(x, y, w, h int, pix []byte) error
	// Close releases the panel.
	Close() error
}

// RGB565 packs an 8-bit RGB triple into a little-endian RGB565 pixel.
func RGB565(r, g, b uint8) (lo, hi byte) {
	p := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
	return byte(p), byte(p >> 8)
}
