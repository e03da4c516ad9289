package media

import (
	"image"

	"github.com/pixelpane/pixelpane/internal/frame"
)

// blockRows is the strip height used when feeding decoded pixels to
// the slot writer, mirroring the macro-block granularity of the
// underlying decoders.
const blockRows = 16

// deliverBlocks pushes img to the sink in row strips. step subsamples
// the image by taking every step-th pixel in both dimensions, which
// implements the integer power-of-two downscale of the still variant
// (step is 1 for streaming frames).
func deliverBlocks(dst *frame.SlotWriter, img image.Image, step int) {
	if step < 1 {
		step = 1
	}
	bounds := img.Bounds()
	outW := bounds.Dx() / step
	outH := bounds.Dy() / step
	if outW == 0 || outH == 0 {
		return
	}

	buf := make([]byte, outW*blockRows*4)
	for y := 0; y < outH; y += blockRows {
		rows := blockRows
		if y+rows > outH {
			rows = outH - y
		}
		for r := 0; r < rows; r++ {
			srcY := bounds.Min.Y + (y+r)*step
			for x := 0; x < outW; x++ {
				cr, cg, cb, _ := img.At(bounds.Min.X+x*step, srcY).RGBA()
				i := (r*outW + x) * 4
				buf[i] = byte(cr >> 8)
				buf[i+1] = byte(cg >> 8)
				buf[i+2] = byte(cb >> 8)
				buf[i+3] = 0xff
			}
		}
		dst.WriteBlock(0, y, outW, rows, buf)
	}
}
