//go:build linux

package audio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jfreymuth/pulse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPulseResumeHonoursContextWhileDialing(t *testing.T) {
	release := make(chan struct{})
	dialed := make(chan struct{})
	p := &pulseContext{cfg: Config{}.withDefaults(), mix: newMixer(1)}
	p.dial = func() (*pulse.PlaybackStream, error) {
		close(dialed)
		<-release
		return nil, errors.New("server went away")
	}
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Resume(ctx) }()

	<-dialed
	// State must not wait on the stalled dial.
	assert.Equal(t, StateSuspended, p.State())
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Resume ignored cancellation")
	}
	assert.Equal(t, StateSuspended, p.State())
}

func TestPulseResumeDialError(t *testing.T) {
	p := &pulseContext{cfg: Config{}.withDefaults(), mix: newMixer(1)}
	p.dial = func() (*pulse.PlaybackStream, error) { return nil, errNoSinks }

	err := p.Resume(context.Background())
	require.ErrorIs(t, err, errNoSinks)
	assert.Equal(t, StateSuspended, p.State())
}

func TestPulseResumeAfterCloseSkipsDial(t *testing.T) {
	p := &pulseContext{cfg: Config{}.withDefaults(), mix: newMixer(1), state: StateClosed}
	p.dial = func() (*pulse.PlaybackStream, error) {
		t.Error("dial called on a closed context")
		return nil, nil
	}
	assert.ErrorIs(t, p.Resume(context.Background()), ErrClosed)
}

func TestMalgoAndOtoUnsupportedOnLinux(t *testing.T) {
	for _, ctor := range []func(Config) (Context, error){NewMalgo, NewOto} {
		c, err := ctor(Config{})
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrUnsupported)
	}
	_, err := openFirst([]string{BackendMalgo, BackendOto, BackendNull}, Config{})
	assert.NoError(t, err, "auto falls through to the next backend")
}
