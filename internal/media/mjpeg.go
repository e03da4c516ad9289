package media

import (
	"bufio"
	"bytes"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/pixelpane/pixelpane/internal/frame"
	"github.com/pixelpane/pixelpane/internal/storage"
)

// maxUnit caps one compressed unit so a corrupt stream cannot grow a
// frame without bound.
const maxUnit = 4 << 20

// mjpegSource reads sequential JPEG units from a motion-JPEG byte
// stream. Units are located by SOI/EOI marker scan, which also works
// inside AVI MJPG containers. At end-of-stream the source seeks back
// to offset zero, making the stream an infinite restartable sequence.
type mjpegSource struct {
	path string
	file storage.File
	br   *bufio.Reader
	unit bytes.Buffer
}

func openMJPEG(store storage.Store, path string) (Source, error) {
	f, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stream %s: %w", path, err)
	}
	return &mjpegSource{
		path: path,
		file: f,
		br:   bufio.NewReaderSize(f, 64<<10),
	}, nil
}

func (s *mjpegSource) Mode() Mode { return ModeStreaming }

func (s *mjpegSource) ProduceFrame(dst *frame.SlotWriter) (bool, error) {
	unit, err := s.nextUnit()
	if err != nil {
		return false, err
	}
	img, err := jpeg.Decode(bytes.NewReader(unit))
	if err != nil {
		return false, fmt.Errorf("decode frame in %s: %w", s.path, err)
	}

	// Center without scaling; oversized frames are clipped by the sink.
	w, h := dst.Size()
	dst.SetOffset((w-img.Bounds().Dx())/2, (h-img.Bounds().Dy())/2)
	deliverBlocks(dst, img, 1)
	return true, nil
}

// nextUnit scans forward to the next SOI marker and collects bytes
// through the matching EOI. Hitting end-of-stream rewinds to offset
// zero and retries once, so a fully consumed stream loops seamlessly.
func (s *mjpegSource) nextUnit() ([]byte, error) {
	for attempt := 0; attempt < 2; attempt++ {
		unit, err := s.scanUnit()
		if err == nil {
			return unit, nil
		}
		if err != io.EOF {
			return nil, err
		}
		if err := s.rewind(); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no frame found in %s", s.path)
}

func (s *mjpegSource) scanUnit() ([]byte, error) {
	// Seek the SOI marker (FF D8). Tracking the previous byte keeps
	// markers preceded by fill bytes (FF FF D8) in sync.
	var prev byte
	for {
		b, err := s.br.ReadByte()
		if err != nil {
			return nil, err
		}
		if prev == 0xff && b == 0xd8 {
			break
		}
		prev = b
	}

	s.unit.Reset()
	s.unit.WriteByte(0xff)
	s.unit.WriteByte(0xd8)

	// Collect through the EOI marker (FF D9).
	prev = 0
	for {
		b, err := s.br.ReadByte()
		if err != nil {
			return nil, err
		}
		s.unit.WriteByte(b)
		if s.unit.Len() > maxUnit {
			return nil, fmt.Errorf("frame in %s exceeds %d bytes", s.path, maxUnit)
		}
		if prev == 0xff && b == 0xd9 {
			out := make([]byte, s.unit.Len())
			copy(out, s.unit.Bytes())
			return out, nil
		}
		prev = b
	}
}

func (s *mjpegSource) rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind %s: %w", s.path, err)
	}
	s.br.Reset(s.file)
	return nil
}

func (s *mjpegSource) Close() error {
	return s.file.Close()
}
