// Package player gates sound playback on audio readiness. The context is
// opened lazily on the first Initialize and must be running before any
// generator is called.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"retrowave/audio"
	"retrowave/sfx"
)

const DefaultResumeTimeout = 2 * time.Second

var errNoGenerator = errors.New("no generator")

type State int

const (
	Uninitialized State = iota
	Created
)

func (s State) String() string {
	if s == Created {
		return "created"
	}
	return "uninitialized"
}

// Sounds is the lookup side of a registry.
type Sounds interface {
	Get(name string) (sfx.Definition, bool)
}

type Controller struct {
	open   audio.Opener
	sounds Sounds
	log    zerolog.Logger

	resumeTimeout time.Duration
	onPlay        func(name, playID string)

	mu sync.Mutex
	ac audio.Context

	resumes sync.WaitGroup
	played  atomic.Int64
}

type Option func(*Controller)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithResumeTimeout bounds background resumes started by Initialize.
func WithResumeTimeout(d time.Duration) Option {
	return func(c *Controller) { c.resumeTimeout = d }
}

// WithPlayHook is called after every sound that started playing.
func WithPlayHook(fn func(name, playID string)) Option {
	return func(c *Controller) { c.onPlay = fn }
}

func New(open audio.Opener, sounds Sounds, opts ...Option) *Controller {
	c := &Controller{
		open:          open,
		sounds:        sounds,
		log:           zerolog.Nop(),
		resumeTimeout: DefaultResumeTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ac == nil {
		return Uninitialized
	}
	return Created
}

// Context returns the live audio context, or nil before creation.
func (c *Controller) Context() audio.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ac
}

// Played is the number of sounds that started.
func (c *Controller) Played() int {
	return int(c.played.Load())
}

// Initialize creates the audio context on first call. Later calls request a
// resume in the background when the context is suspended; resume failures
// are logged only. It is safe to call from any goroutine, any number of times.
func (c *Controller) Initialize() error {
	c.mu.Lock()
	if ac := c.ac; ac != nil {
		c.mu.Unlock()
		if ac.State() == audio.StateSuspended {
			c.resumeAsync(ac)
		}
		return nil
	}
	defer c.mu.Unlock()

	ac, err := c.open()
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUnsupportedPlatform, err)
		c.log.Error().Err(err).Msg("audio_context_failed")
		return err
	}
	c.ac = ac
	c.log.Info().
		Str("state", ac.State().String()).
		Int("sample_rate", ac.SampleRate()).
		Msg("audio_context_created")
	return nil
}

func (c *Controller) resumeAsync(ac audio.Context) {
	c.resumes.Add(1)
	go func() {
		defer c.resumes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.resumeTimeout)
		defer cancel()
		if err := ac.Resume(ctx); err != nil {
			c.log.Warn().Err(err).Msg("audio_resume_failed")
			return
		}
		c.log.Info().Msg("audio_resumed")
	}()
}

// Wait blocks until background resumes started by Initialize have finished.
func (c *Controller) Wait() {
	c.resumes.Wait()
}

// EnsureReady reports whether the context exists and is running, creating it
// once and awaiting a resume when needed.
func (c *Controller) EnsureReady(ctx context.Context) bool {
	_, err := c.ready(ctx)
	return err == nil
}

func (c *Controller) ready(ctx context.Context) (audio.Context, error) {
	ac := c.Context()
	if ac == nil {
		if err := c.Initialize(); err != nil {
			return nil, err
		}
		if ac = c.Context(); ac == nil {
			return nil, ErrUnsupportedPlatform
		}
	}

	switch ac.State() {
	case audio.StateRunning:
		return ac, nil
	case audio.StateClosed:
		return nil, fmt.Errorf("%w: %w", ErrResumeFailed, audio.ErrClosed)
	}

	if err := ac.Resume(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResumeFailed, err)
	}
	if ac.State() != audio.StateRunning {
		return nil, fmt.Errorf("%w: context is %s", ErrResumeFailed, ac.State())
	}
	c.log.Info().Msg("audio_resumed")
	return ac, nil
}

// Play looks up name and runs its generator on a running context. Every
// failure is logged and returned; none of them panic or touch other sounds.
func (c *Controller) Play(ctx context.Context, name string) error {
	playID := uuid.NewString()
	l := c.log.With().Str("sound", name).Str("play_id", playID).Logger()

	def, ok := c.sounds.Get(name)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrSoundNotFound, name)
		l.Error().Msg("sound_not_found")
		return err
	}

	ac, err := c.ready(ctx)
	if err != nil {
		l.Warn().Err(err).Msg("audio_not_ready")
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}

	start := time.Now()
	if err := generate(def, ac); err != nil {
		l.Error().Err(err).Msg("generator_failed")
		return fmt.Errorf("%w: %s: %w", ErrGeneratorFailure, name, err)
	}

	c.played.Add(1)
	l.Debug().Dur("generate", time.Since(start)).Msg("sound_started")
	if c.onPlay != nil {
		c.onPlay(name, playID)
	}
	return nil
}

func generate(def sfx.Definition, ac audio.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if def.Generator == nil {
		return errNoGenerator
	}
	return def.Generator(ac)
}
