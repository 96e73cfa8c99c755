package audio

import (
	"context"
	"errors"
)

const (
	DefaultSampleRate = 44100
	DefaultBufferMs   = 50
)

var (
	ErrUnsupported = errors.New("audio output not supported on this platform")
	ErrSuspended   = errors.New("audio context is suspended")
	ErrClosed      = errors.New("audio context is closed")
)

type State int

const (
	StateSuspended State = iota
	StateRunning
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Context is a live audio output. Every backend starts suspended and produces
// sound only after Resume succeeds. Scheduled graphs overlap freely.
type Context interface {
	State() State
	Resume(ctx context.Context) error
	SampleRate() int
	// Schedule starts playback of a rendered mono graph and returns immediately.
	Schedule(samples []float32) error
	Close() error
}

// Opener creates a context. It is called lazily, on first interaction.
type Opener func() (Context, error)

type Config struct {
	SampleRate int
	BufferMs   int
	// Volume is the master gain in [0, 1].
	Volume float64
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.BufferMs <= 0 {
		c.BufferMs = DefaultBufferMs
	}
	c.Volume = clampVolume(c.Volume)
	return c
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
