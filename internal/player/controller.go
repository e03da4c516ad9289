// Package player drives the frame pipeline: the Controller runs the
// producer side (one production attempt per tick, safe-point media
// switches, stall recovery) and the Consumer transfers published
// frames to the panel.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pixelpane/pixelpane/internal/config"
	"github.com/pixelpane/pixelpane/internal/frame"
	"github.com/pixelpane/pixelpane/internal/log"
	"github.com/pixelpane/pixelpane/internal/media"
	"github.com/pixelpane/pixelpane/internal/metrics"
	"github.com/pixelpane/pixelpane/internal/storage"
)

// Identity names the active media and its playback mode.
type Identity struct {
	Path string
	Mode media.Mode
}

// Status is the controller state reported to the control surface.
type Status struct {
	Path   string     `json:"path"`
	Mode   media.Mode `json:"mode"`
	Paused bool       `json:"paused"`
}

// pendingSwitch is the single-slot switch mailbox. Last writer wins;
// the producer consumes it exactly once at the next safe point.
type pendingSwitch struct {
	path   string
	reopen bool
}

// openFunc matches media.Open; swapped in tests.
type openFunc func(storage.Store, string) (media.Source, error)

// Controller owns the playback state machine and the producer side of
// the handoff gate. Request* methods are called from control-surface
// goroutines and only touch the mutex-guarded mailbox and flags; all
// slot writes happen on the producer goroutine inside Tick.
type Controller struct {
	cfg    config.PlayerConfig
	store  storage.Store
	pool   *frame.Pool
	gate   *frame.Gate
	writer *frame.SlotWriter
	logger zerolog.Logger
	open   openFunc
	now    func() time.Time

	mu      sync.Mutex
	current Identity
	paused  bool
	resumed bool
	pending *pendingSwitch

	// Producer-context state, untouched by request goroutines.
	source      media.Source
	lastSuccess time.Time
}

// NewController wires the producer over the shared pool and gate.
func NewController(cfg config.PlayerConfig, store storage.Store, pool *frame.Pool, gate *frame.Gate) *Controller {
	return &Controller{
		cfg:    cfg,
		store:  store,
		pool:   pool,
		gate:   gate,
		writer: frame.NewSlotWriter(pool),
		logger: log.WithComponent("player"),
		open:   media.Open,
		now:    time.Now,
	}
}

// RequestOpen queues a switch to the given media path. The request is
// acknowledged immediately and applied at the next safe point.
func (c *Controller) RequestOpen(path string) {
	c.mu.Lock()
	c.pending = &pendingSwitch{path: path}
	c.mu.Unlock()
	c.logger.Info().
		Str("event", "player.switch_queued").
		Str(log.FieldPath, path).
		Msg("switch request accepted")
}

// RequestReopen queues a forced reopen of the current media.
func (c *Controller) RequestReopen() {
	c.mu.Lock()
	c.pending = &pendingSwitch{reopen: true}
	c.mu.Unlock()
}

// Pause suspends frame production. The consumer keeps the last
// displayed frame on the panel.
func (c *Controller) Pause() {
	c.setPaused(true)
}

// Resume restarts frame production at the current stream position.
func (c *Controller) Resume() {
	c.setPaused(false)
}

// Stop is defined as entering the paused state.
func (c *Controller) Stop() {
	c.setPaused(true)
}

func (c *Controller) setPaused(paused bool) {
	c.mu.Lock()
	changed := c.paused != paused
	c.paused = paused
	if changed && !paused {
		c.resumed = true
	}
	c.mu.Unlock()
	if changed {
		c.logger.Info().
			Str("event", "player.paused_changed").
			Bool("paused", paused).
			Msg("pause state changed")
	}
}

// Status reports the current media identity and pause state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	mode := c.current.Mode
	if mode == "" {
		mode = media.ModeNone
	}
	return Status{Path: c.current.Path, Mode: mode, Paused: c.paused}
}

// Run paces production attempts at the configured tick rate until ctx
// is cancelled. The producer never blocks beyond the bounded waits
// inside Tick, so request handling stays responsive.
func (c *Controller) Run(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Limit(c.cfg.TickRate), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			c.closeSource()
			return err
		}
		c.Tick()
	}
}

// Tick performs one production cycle: apply a pending switch at the
// safe point, skip entirely when paused, otherwise attempt to produce
// a frame into the free slot.
func (c *Controller) Tick() {
	c.mu.Lock()
	p := c.pending
	c.pending = nil
	paused := c.paused
	resumed := c.resumed
	c.resumed = false
	c.mu.Unlock()

	if resumed {
		// Time spent paused is not charged to the stall window.
		c.lastSuccess = c.now()
	}

	if p != nil {
		if !c.applySwitch(p) {
			// Safe point not reached yet; retry next tick unless a
			// newer request arrived in the meantime.
			c.mu.Lock()
			if c.pending == nil {
				c.pending = p
			}
			c.mu.Unlock()
			return
		}
	}

	if paused {
		return
	}

	if c.source == nil {
		c.retryAfterFailedReopen()
		return
	}

	if !c.gate.WaitFree(c.cfg.WaitFree) {
		metrics.IncFrameProduced("skipped")
		c.checkStall()
		return
	}

	c.writer.Bind(c.pool.AcquireWritable())
	produced, err := c.source.ProduceFrame(c.writer)
	switch {
	case produced:
		c.pool.Publish()
		c.gate.PublishReady()
		c.lastSuccess = c.now()
		metrics.IncFrameProduced("success")
	case err == nil:
		// Quiescent source (rendered still); idle, not a failure.
		c.gate.ReleaseFree()
		c.lastSuccess = c.now()
		metrics.IncFrameProduced("idle")
	default:
		c.gate.ReleaseFree()
		metrics.IncFrameProduced("decode_failure")
		c.logger.Debug().Err(err).
			Str("event", "player.decode_failed").
			Str(log.FieldPath, c.currentPath()).
			Msg("production cycle failed")
		c.checkStall()
	}
}

// applySwitch opens the requested media at the safe point. Returns
// false when the free token could not be won within the switch
// timeout, meaning the request must be retried next tick.
func (c *Controller) applySwitch(p *pendingSwitch) bool {
	if !c.gate.WaitFree(c.cfg.WaitFreeSwitch) {
		return false
	}
	// The token only confirmed the consumer holds no slot mid-transfer
	// of the previous media; nothing was written, so hand it back.
	c.gate.ReleaseFree()

	path := p.path
	if p.reopen {
		path = c.currentPath()
		if path == "" {
			return true
		}
	}
	c.openMedia(path)
	return true
}

// openMedia force-closes the active source and opens path. On failure
// the previous media identity is kept and playback continues (or the
// controller stays idle when nothing was open).
func (c *Controller) openMedia(path string) {
	prev := c.source
	src, err := c.open(c.store, path)
	if err != nil {
		metrics.IncOpen(false, string(media.Classify(path)))
		c.logger.Warn().Err(err).
			Str("event", "player.open_failed").
			Str(log.FieldPath, path).
			Msg("media open failed, keeping previous media")
		return
	}
	if prev != nil {
		_ = prev.Close()
	}
	c.source = src
	c.lastSuccess = c.now()
	metrics.IncOpen(true, string(src.Mode()))

	c.mu.Lock()
	old := c.current
	c.current = Identity{Path: path, Mode: src.Mode()}
	c.mu.Unlock()
	c.logger.Info().
		Str("event", "player.media_opened").
		Str(log.FieldOldState, old.Path).
		Str(log.FieldNewState, path).
		Str(log.FieldMode, string(src.Mode())).
		Msg("media opened")
}

// checkStall force-reopens the current media when no frame succeeded
// within the stall threshold. The window restarts on every reopen
// attempt, so repeated failures trigger exactly one reopen per
// threshold window rather than one per failed cycle.
func (c *Controller) checkStall() {
	if c.source == nil {
		return
	}
	threshold := c.stallThreshold(c.source.Mode())
	if c.now().Sub(c.lastSuccess) <= threshold {
		return
	}
	path := c.currentPath()
	metrics.IncStallReopen()
	c.logger.Warn().
		Str("event", "player.stall_reopen").
		Str(log.FieldPath, path).
		Dur("threshold", threshold).
		Msg("no frame within stall threshold, reopening media")

	_ = c.source.Close()
	c.source = nil
	c.lastSuccess = c.now()
	src, err := c.open(c.store, path)
	if err != nil {
		metrics.IncOpen(false, string(media.Classify(path)))
		c.logger.Warn().Err(err).
			Str("event", "player.reopen_failed").
			Str(log.FieldPath, path).
			Msg("stall reopen failed, retrying next window")
		return
	}
	c.source = src
	metrics.IncOpen(true, string(src.Mode()))
}

// retryAfterFailedReopen reattempts the open of the current identity
// once per stall window when a previous stall reopen failed.
func (c *Controller) retryAfterFailedReopen() {
	path := c.currentPath()
	if path == "" {
		return
	}
	threshold := c.stallThreshold(media.Classify(path))
	if c.now().Sub(c.lastSuccess) <= threshold {
		return
	}
	c.lastSuccess = c.now()
	c.openMedia(path)
}

func (c *Controller) stallThreshold(mode media.Mode) time.Duration {
	if mode == media.ModeStill {
		return c.cfg.StallStill
	}
	return c.cfg.StallStreaming
}

func (c *Controller) currentPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Path
}

func (c *Controller) closeSource() {
	if c.source != nil {
		_ = c.source.Close()
		c.source = nil
	}
}
