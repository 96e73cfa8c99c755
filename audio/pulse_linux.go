//go:build linux

package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

var errNoSinks = errors.New("pulse: no playback sinks")

type pulseContext struct {
	client *pulse.Client
	cfg    Config
	mix    *mixer

	// dial creates the playback stream. It talks to the server and may
	// block, so it runs without mu held.
	dial func() (*pulse.PlaybackStream, error)

	mu     sync.Mutex
	state  State
	stream *pulse.PlaybackStream
}

// NewPulse connects to the PulseAudio (or PipeWire) server. The playback
// stream is not created until Resume.
func NewPulse(cfg Config) (Context, error) {
	cfg = cfg.withDefaults()
	c, err := pulse.NewClient(pulse.ClientApplicationName("retrowave"))
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	p := &pulseContext{client: c, cfg: cfg, mix: newMixer(1)}
	p.dial = p.openStream
	return p, nil
}

func (p *pulseContext) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *pulseContext) SampleRate() int { return p.cfg.SampleRate }

func (p *pulseContext) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	switch p.state {
	case StateRunning:
		p.mu.Unlock()
		return nil
	case StateClosed:
		p.mu.Unlock()
		return ErrClosed
	}
	stream := p.stream
	p.mu.Unlock()

	if stream == nil {
		type result struct {
			stream *pulse.PlaybackStream
			err    error
		}
		done := make(chan result, 1)
		go func() {
			s, err := p.dial()
			if err == nil {
				s = p.adopt(s)
			}
			done <- result{s, err}
		}()
		select {
		case r := <-done:
			if r.err != nil {
				return r.err
			}
			stream = r.stream
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateRunning:
		return nil
	case StateClosed:
		return ErrClosed
	}
	stream.Start()
	p.state = StateRunning
	return nil
}

// adopt stores s as the context's stream unless another resume got there
// first or the context was closed meanwhile, in which case s is discarded.
// It returns the stream to use.
func (p *pulseContext) adopt(s *pulse.PlaybackStream) *pulse.PlaybackStream {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateClosed || p.stream != nil {
		s.Close()
		return p.stream
	}
	p.stream = s
	return s
}

func (p *pulseContext) openStream() (*pulse.PlaybackStream, error) {
	sinks, err := p.client.ListSinks()
	if err != nil {
		return nil, fmt.Errorf("pulse list sinks: %w", err)
	}
	if len(sinks) == 0 {
		return nil, errNoSinks
	}

	reader := pulse.Float32Reader(func(buf []float32) (int, error) {
		p.mix.fill(buf)
		return len(buf), nil
	})
	vol := uint32(float64(proto.VolumeNorm) * p.cfg.Volume)
	stream, err := p.client.NewPlayback(reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(p.cfg.SampleRate),
		pulse.PlaybackLatency(float64(p.cfg.BufferMs)/1000),
		pulse.PlaybackRawOption(func(cs *proto.CreatePlaybackStream) {
			cs.ChannelVolumes = proto.ChannelVolumes{vol}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("pulse playback: %w", err)
	}
	return stream, nil
}

func (p *pulseContext) Schedule(samples []float32) error {
	p.mu.Lock()
	state := p.state
	p.mu.Unlock()
	switch state {
	case StateClosed:
		return ErrClosed
	case StateSuspended:
		return ErrSuspended
	}
	p.mix.add(samples)
	return nil
}

func (p *pulseContext) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateClosed {
		return nil
	}
	p.state = StateClosed
	if p.stream != nil {
		p.stream.Stop()
		p.stream.Close()
	}
	p.mix.reset()
	p.client.Close()
	return nil
}
