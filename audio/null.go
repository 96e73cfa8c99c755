package audio

import (
	"context"
	"sync"
)

// nullContext accepts and discards everything. It keeps the suspended/running
// lifecycle so callers behave as they would on a real device.
type nullContext struct {
	rate  int
	mu    sync.Mutex
	state State
}

func NewNull(cfg Config) (Context, error) {
	cfg = cfg.withDefaults()
	return &nullContext{rate: cfg.SampleRate}, nil
}

func (n *nullContext) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

func (n *nullContext) SampleRate() int { return n.rate }

func (n *nullContext) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == StateClosed {
		return ErrClosed
	}
	n.state = StateRunning
	return nil
}

func (n *nullContext) Schedule([]float32) error {
	switch n.State() {
	case StateClosed:
		return ErrClosed
	case StateSuspended:
		return ErrSuspended
	}
	return nil
}

func (n *nullContext) Close() error {
	n.mu.Lock()
	n.state = StateClosed
	n.mu.Unlock()
	return nil
}
