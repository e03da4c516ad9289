//go:build !linux

package panel

import "fmt"

// FBDev is only available on Linux.
type FBDev struct{}

// OpenFBDev fails on platforms without a framebuffer device.
func OpenFBDev(device string, width, height int) (*FBDev, error) {
	return nil, fmt.Errorf("framebuffer device %s not supported on this platform", device)
}

func (d *FBDev) Size() (int, int) { return 0, 0 }

func (d *FBDev) Blit(x, y, w, h int, pix []byte) error {
	return fmt.Errorf("fbdev unsupported")
}

func (d *FBDev) Close() error { return nil }
