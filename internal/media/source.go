// Package media implements the two playback source variants: a
// streaming motion-JPEG decoder that loops at end-of-stream and a
// still-image renderer that decodes once per open. The variant is
// chosen by file extension at open time.
package media

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/pixelpane/pixelpane/internal/frame"
	"github.com/pixelpane/pixelpane/internal/storage"
)

// Mode classifies a media identity.
type Mode string

const (
	ModeNone      Mode = "none"
	ModeStreaming Mode = "streaming"
	ModeStill     Mode = "still"
)

// ErrUnsupported is returned when a path's extension maps to no variant.
var ErrUnsupported = errors.New("media: unsupported file extension")

// Source produces frames into a bound slot writer.
//
// ProduceFrame returns (true, nil) when a frame was written, (false,
// nil) when the source is quiescent (a still that has already
// rendered), and (false, err) on a transient decode failure. Decode
// failures are recoverable; the caller simply retries next cycle.
type Source interface {
	Mode() Mode
	ProduceFrame(dst *frame.SlotWriter) (bool, error)
	Close() error
}

// Classify maps a path to its playback mode by extension.
func Classify(p string) Mode {
	switch strings.ToLower(path.Ext(p)) {
	case ".mjpg", ".mjpeg", ".avi":
		return ModeStreaming
	case ".jpg", ".jpeg":
		return ModeStill
	default:
		return ModeNone
	}
}

// Open classifies path and opens the matching source variant over the
// store. An unrecognized extension is a hard open failure.
func Open(store storage.Store, p string) (Source, error) {
	switch Classify(p) {
	case ModeStreaming:
		return openMJPEG(store, p)
	case ModeStill:
		return openStill(store, p)
	default:
		return nil, fmt.Errorf("open %s: %w", p, ErrUnsupported)
	}
}
