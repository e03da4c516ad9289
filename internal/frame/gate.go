package frame

import (
	"context"
	"time"
)

// Gate is the single-slot producer/consumer exchange. Two binary
// tokens arbitrate slot ownership: the producer must win the free
// token before writing and the consumer must win the ready token
// before transferring. Between PublishReady and the matching
// ReleaseUsed the published slot is never reacquired by the producer,
// which is what rules out tearing. The gate holds no frame data.
type Gate struct {
	free  chan struct{}
	ready chan struct{}
}

// NewGate creates a gate with the free token available, so the first
// production cycle can start immediately.
func NewGate() *Gate {
	g := &Gate{
		free:  make(chan struct{}, 1),
		ready: make(chan struct{}, 1),
	}
	g.free <- struct{}{}
	return g
}

// WaitFree blocks until a slot is free to write, bounded by timeout.
// A false return means the cycle should be skipped and retried on the
// next tick; it is not an error condition.
func (g *Gate) WaitFree(timeout time.Duration) bool {
	select {
	case <-g.free:
		return true
	default:
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-g.free:
		return true
	case <-t.C:
		return false
	}
}

// PublishReady hands the just-written slot to the consumer. Must only
// be called after a successful WaitFree.
func (g *Gate) PublishReady() {
	g.ready <- struct{}{}
}

// ReleaseFree returns the free token without publishing, used when the
// production attempt failed so the next cycle may retry.
func (g *Gate) ReleaseFree() {
	g.free <- struct{}{}
}

// WaitReady blocks until a published slot exists or ctx is cancelled.
func (g *Gate) WaitReady(ctx context.Context) bool {
	select {
	case <-g.ready:
		return true
	case <-ctx.Done():
		return false
	}
}

// ReleaseUsed signals that the transferred slot may be reused.
func (g *Gate) ReleaseUsed() {
	g.free <- struct{}{}
}
