//go:build !linux

package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

type otoContext struct {
	ctx   *oto.Context
	ready chan struct{}
	cfg   Config
	mix   *mixer

	mu     sync.Mutex
	state  State
	player *oto.Player
}

// NewOto opens an oto context as mono float32. oto allows one context per
// process, so this backend and the speaker backend exclude each other.
func NewOto(cfg Config) (Context, error) {
	cfg = cfg.withDefaults()
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(cfg.BufferMs) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("oto: %w", err)
	}
	// oto.Player applies the volume, so the mixer runs at unity.
	return &otoContext{ctx: ctx, ready: ready, cfg: cfg, mix: newMixer(1)}, nil
}

func (o *otoContext) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *otoContext) SampleRate() int { return o.cfg.SampleRate }

func (o *otoContext) Resume(ctx context.Context) error {
	select {
	case <-o.ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case StateRunning:
		return nil
	case StateClosed:
		return ErrClosed
	}

	if o.player == nil {
		o.player = o.ctx.NewPlayer(&mixReader{mix: o.mix})
		o.player.SetVolume(o.cfg.Volume)
		o.player.Play()
	} else if err := o.ctx.Resume(); err != nil {
		return fmt.Errorf("oto resume: %w", err)
	}
	o.state = StateRunning
	return nil
}

func (o *otoContext) Schedule(samples []float32) error {
	o.mu.Lock()
	state := o.state
	o.mu.Unlock()
	switch state {
	case StateClosed:
		return ErrClosed
	case StateSuspended:
		return ErrSuspended
	}
	o.mix.add(samples)
	return nil
}

// Close stops the player and suspends the device; oto contexts cannot be
// released.
func (o *otoContext) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateClosed {
		return nil
	}
	o.state = StateClosed
	var err error
	if o.player != nil {
		err = o.player.Close()
		if serr := o.ctx.Suspend(); err == nil {
			err = serr
		}
	}
	o.mix.reset()
	return err
}
