package player

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/pixelpane/pixelpane/internal/frame"
	"github.com/pixelpane/pixelpane/internal/log"
	"github.com/pixelpane/pixelpane/internal/metrics"
	"github.com/pixelpane/pixelpane/internal/panel"
)

// Consumer is the display side of the pipeline. It runs on its own
// goroutine, blocks on the gate's ready token, transfers the published
// slot to the panel in one bulk blit and releases the slot for reuse.
// It never initiates a switch, pause or open.
type Consumer struct {
	pool     *frame.Pool
	gate     *frame.Gate
	panel    panel.Panel
	interval time.Duration
	logger   zerolog.Logger
	fpsBits  atomic.Uint64
}

// NewConsumer wires the consumer over the shared pool and gate.
func NewConsumer(pool *frame.Pool, gate *frame.Gate, p panel.Panel, fpsInterval time.Duration) *Consumer {
	return &Consumer{
		pool:     pool,
		gate:     gate,
		panel:    p,
		interval: fpsInterval,
		logger:   log.WithComponent("display"),
	}
}

// Run loops until ctx is cancelled. WaitReady is its only suspension
// point.
func (c *Consumer) Run(ctx context.Context) error {
	width, height := c.pool.Size()
	frames := 0
	windowStart := time.Now()

	for {
		if !c.gate.WaitReady(ctx) {
			return ctx.Err()
		}
		idx := c.pool.Consume()
		if pix := c.pool.Slot(idx); pix != nil {
			start := time.Now()
			if err := c.panel.Blit(0, 0, width, height, pix); err != nil {
				c.logger.Warn().Err(err).
					Str("event", "display.blit_failed").
					Int(log.FieldSlot, idx).
					Msg("panel transfer failed")
			} else {
				metrics.ObserveBlit(time.Since(start))
				metrics.IncFrameDisplayed()
				frames++
			}
		}
		c.gate.ReleaseUsed()

		if elapsed := time.Since(windowStart); elapsed >= c.interval {
			fps := float64(frames) / elapsed.Seconds()
			c.fpsBits.Store(math.Float64bits(fps))
			metrics.SetDisplayFPS(fps)
			frames = 0
			windowStart = time.Now()
		}
	}
}

// FPS returns the frames-per-second measured over the last window.
func (c *Consumer) FPS() float64 {
	return math.Float64frombits(c.fpsBits.Load())
}
