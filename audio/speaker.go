package audio

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// speakerContext plays through the beep speaker. The speaker is process-wide,
// so only one of these should be open at a time.
type speakerContext struct {
	cfg   Config
	rate  beep.SampleRate
	mixer *beep.Mixer

	mu    sync.Mutex
	state State
}

func NewSpeaker(cfg Config) (Context, error) {
	cfg = cfg.withDefaults()
	return &speakerContext{
		cfg:   cfg,
		rate:  beep.SampleRate(cfg.SampleRate),
		mixer: &beep.Mixer{},
	}, nil
}

func (s *speakerContext) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *speakerContext) SampleRate() int { return s.cfg.SampleRate }

func (s *speakerContext) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateRunning:
		return nil
	case StateClosed:
		return ErrClosed
	}

	bufferSize := s.rate.N(time.Duration(s.cfg.BufferMs) * time.Millisecond)
	if err := speaker.Init(s.rate, bufferSize); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	speaker.Play(masterVolume(s.mixer, s.cfg.Volume))
	s.state = StateRunning
	return nil
}

func (s *speakerContext) Schedule(samples []float32) error {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	switch state {
	case StateClosed:
		return ErrClosed
	case StateSuspended:
		return ErrSuspended
	}
	speaker.Lock()
	s.mixer.Add(monoStreamer(samples))
	speaker.Unlock()
	return nil
}

func (s *speakerContext) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil
	}
	wasRunning := s.state == StateRunning
	s.state = StateClosed
	if wasRunning {
		speaker.Clear()
		speaker.Close()
	}
	return nil
}

// monoStreamer duplicates a mono buffer to both speaker channels.
func monoStreamer(samples []float32) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(out [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := 0
		for n < len(out) && pos < len(samples) {
			v := softLimit(float64(samples[pos]))
			out[n][0] = v
			out[n][1] = v
			n++
			pos++
		}
		return n, true
	})
}

// masterVolume maps a linear gain in [0, 1] onto a base-2 volume effect.
func masterVolume(s beep.Streamer, gain float64) *effects.Volume {
	gain = clampVolume(gain)
	v := &effects.Volume{Streamer: s, Base: 2}
	if gain == 0 {
		v.Silent = true
		return v
	}
	v.Volume = math.Log2(gain)
	return v
}
