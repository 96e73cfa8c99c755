//go:build !linux

package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	cfg    Config
	mix    *mixer

	mu    sync.Mutex
	state State
}

// NewMalgo opens the default miniaudio playback device as mono float32.
// The device is initialized here and started on Resume.
func NewMalgo(cfg Config) (Context, error) {
	cfg = cfg.withDefaults()
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo: %w", err)
	}

	m := &malgoContext{ctx: ctx, cfg: cfg, mix: newMixer(cfg.Volume)}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 1
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInMilliseconds = uint32(cfg.BufferMs)

	var scratch []float32
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			scratch = m.mix.fillBytes(out, scratch)
		},
	}

	dev, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("malgo playback device: %w", err)
	}
	m.device = dev
	return m, nil
}

func (m *malgoContext) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *malgoContext) SampleRate() int { return m.cfg.SampleRate }

func (m *malgoContext) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateRunning:
		return nil
	case StateClosed:
		return ErrClosed
	}
	if err := m.device.Start(); err != nil {
		return fmt.Errorf("malgo start: %w", err)
	}
	m.state = StateRunning
	return nil
}

func (m *malgoContext) Schedule(samples []float32) error {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	switch state {
	case StateClosed:
		return ErrClosed
	case StateSuspended:
		return ErrSuspended
	}
	m.mix.add(samples)
	return nil
}

func (m *malgoContext) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateClosed {
		return nil
	}
	m.state = StateClosed
	m.device.Uninit()
	_ = m.ctx.Uninit()
	m.ctx.Free()
	m.mix.reset()
	return nil
}
