//go:build linux

package panel

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FBDev drives a Linux framebuffer device configured for 16bpp RGB565.
// The device is mapped once at open; Blit copies rows straight into
// the mapping. The mapping assumes packed rows (stride == width*2),
// which holds for the panel controllers this daemon targets.
type FBDev struct {
	file   *os.File
	mem    []byte
	width  int
	height int
}

// OpenFBDev maps the framebuffer device at the given dimensions.
func OpenFBDev(device string, width, height int) (*FBDev, error) {
	f, err := os.OpenFile(device, os.O_RDWR, 0) // #nosec G304 -- device node comes from validated config
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", device, err)
	}
	size := width * height * BytesPerPixel
	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap framebuffer %s: %w", device, err)
	}
	return &FBDev{file: f, mem: mem, width: width, height: height}, nil
}

func (d *FBDev) Size() (int, int) { return d.width, d.height }

func (d *FBDev) Blit(x, y, w, h int, pix []byte) error {
	if len(pix) != w*h*BytesPerPixel {
		return fmt.Errorf("blit: pixel buffer is %d bytes, want %d", len(pix), w*h*BytesPerPixel)
	}
	if x < 0 || y < 0 || x+w > d.width || y+h > d.height {
		return fmt.Errorf("blit: rectangle %dx%d at (%d,%d) out of panel bounds %dx%d", w, h, x, y, d.width, d.height)
	}
	for row := 0; row < h; row++ {
		dst := ((y+row)*d.width + x) * BytesPerPixel
		src := row * w * BytesPerPixel
		copy(d.mem[dst:dst+w*BytesPerPixel], pix[src:src+w*BytesPerPixel])
	}
	return nil
}

func (d *FBDev) Close() error {
	if d.mem != nil {
		if err := unix.Munmap(d.mem); err != nil {
			_ = d.file.Close()
			return fmt.Errorf("munmap framebuffer: %w", err)
		}
		d.mem = nil
	}
	return d.file.Close()
}
