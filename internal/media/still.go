package media

import (
	"fmt"
	"image/jpeg"
	"io"

	"github.com/pixelpane/pixelpane/internal/frame"
	"github.com/pixelpane/pixelpane/internal/storage"
)

// maxDivisor caps the power-of-two downscale of the still renderer.
const maxDivisor = 8

// stillSource renders a single JPEG once per open. The header is
// probed at open so a broken file is rejected as an open failure, not
// a decode failure. After the first successful render the source is
// quiescent: ProduceFrame reports no work without an error, so the
// controller idles instead of busy-looping.
type stillSource struct {
	path        string
	file        storage.File
	width       int
	height      int
	needsRender bool
}

func openStill(store storage.Store, path string) (Source, error) {
	f, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open still %s: %w", path, err)
	}
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("probe still %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rewind still %s: %w", path, err)
	}
	return &stillSource{
		path:        path,
		file:        f,
		width:       cfg.Width,
		height:      cfg.Height,
		needsRender: true,
	}, nil
}

func (s *stillSource) Mode() Mode { return ModeStill }

func (s *stillSource) ProduceFrame(dst *frame.SlotWriter) (bool, error) {
	if !s.needsRender {
		return false, nil
	}

	img, err := jpeg.Decode(s.file)
	if err != nil {
		// Leave needsRender set so the next cycle retries.
		if _, serr := s.file.Seek(0, io.SeekStart); serr != nil {
			return false, fmt.Errorf("rewind still %s: %w", s.path, serr)
		}
		return false, fmt.Errorf("decode still %s: %w", s.path, err)
	}
	s.needsRender = false

	w, h := dst.Size()
	div := fitDivisor(s.width, s.height, w, h)
	dst.Clear()
	dst.SetOffset((w-s.width/div)/2, (h-s.height/div)/2)
	deliverBlocks(dst, img, div)
	return true, nil
}

// fitDivisor picks the smallest power-of-two divisor that fits both
// scaled dimensions within the panel, capped at maxDivisor.
func fitDivisor(imgW, imgH, panelW, panelH int) int {
	div := 1
	for div < maxDivisor && (imgW/div > panelW || imgH/div > panelH) {
		div <<= 1
	}
	return div
}

func (s *stillSource) Close() error {
	return s.file.Close()
}
