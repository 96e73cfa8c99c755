package audio

import (
	"context"
	"sync"
)

// Offline is a context that starts running and mixes every scheduled graph
// into one buffer from time zero. It backs export and previews where no
// device is involved.
type Offline struct {
	rate int

	mu     sync.Mutex
	mix    []float32
	count  int
	closed bool
}

func NewOffline(sampleRate int) *Offline {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Offline{rate: sampleRate}
}

func (o *Offline) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return StateClosed
	}
	return StateRunning
}

func (o *Offline) Resume(ctx context.Context) error {
	if o.State() == StateClosed {
		return ErrClosed
	}
	return ctx.Err()
}

func (o *Offline) SampleRate() int { return o.rate }

func (o *Offline) Schedule(samples []float32) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	if len(samples) > len(o.mix) {
		o.mix = append(o.mix, make([]float32, len(samples)-len(o.mix))...)
	}
	for i, v := range samples {
		o.mix[i] += v
	}
	o.count++
	return nil
}

func (o *Offline) Close() error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	return nil
}

// Samples returns a copy of the mix so far.
func (o *Offline) Samples() []float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]float32, len(o.mix))
	copy(out, o.mix)
	return out
}

// Scheduled is the number of graphs mixed in.
func (o *Offline) Scheduled() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.count
}
