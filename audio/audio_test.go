package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMixerSumsAndDropsFinishedVoices(t *testing.T) {
	m := newMixer(1)
	m.add([]float32{0.1, 0.1, 0.1})
	m.add([]float32{0.2})
	m.add(nil)
	require.Equal(t, 2, m.activeCount())

	out := make([]float32, 2)
	m.fill(out)
	assert.InDelta(t, 0.3, out[0], 1e-6)
	assert.InDelta(t, 0.1, out[1], 1e-6)
	assert.Equal(t, 1, m.activeCount())

	m.fill(out)
	assert.InDelta(t, 0.1, out[0], 1e-6)
	assert.Zero(t, out[1])
	assert.Zero(t, m.activeCount())

	m.fill(out)
	assert.Equal(t, []float32{0, 0}, out)
}

func TestMixerAppliesVolume(t *testing.T) {
	m := newMixer(0.5)
	m.add([]float32{0.4})
	out := make([]float32, 1)
	m.fill(out)
	assert.InDelta(t, 0.2, out[0], 1e-6)
}

func TestMixerFillBytesLittleEndianFloat(t *testing.T) {
	m := newMixer(1)
	m.add([]float32{0.25, -0.5})
	out := make([]byte, 8)
	m.fillBytes(out, nil)
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(out[0:])))
	assert.Equal(t, float32(-0.5), math.Float32frombits(binary.LittleEndian.Uint32(out[4:])))
}

func TestSoftLimit(t *testing.T) {
	assert.Equal(t, 0.5, softLimit(0.5))
	assert.Equal(t, -0.5, softLimit(-0.5))
	for _, v := range []float64{0.9, 2, 50, -0.9, -2, -50} {
		got := softLimit(v)
		assert.LessOrEqual(t, math.Abs(got), 1.0)
		assert.Greater(t, math.Abs(got), 0.8)
	}
	assert.Greater(t, softLimit(2), softLimit(0.9))
}

func TestConfigDefaults(t *testing.T) {
	c := Config{Volume: 3}.withDefaults()
	assert.Equal(t, DefaultSampleRate, c.SampleRate)
	assert.Equal(t, DefaultBufferMs, c.BufferMs)
	assert.Equal(t, 1.0, c.Volume)
	assert.Equal(t, 0.0, clampVolume(-1))
}

func TestFakeContextLifecycle(t *testing.T) {
	ctx := context.Background()
	f := NewFakeContext(0)
	assert.Equal(t, DefaultSampleRate, f.SampleRate())
	assert.Equal(t, StateSuspended, f.State())
	assert.ErrorIs(t, f.Schedule([]float32{1}), ErrSuspended)

	require.NoError(t, f.Resume(ctx))
	assert.Equal(t, StateRunning, f.State())
	require.NoError(t, f.Schedule([]float32{1}))
	assert.Len(t, f.Scheduled(), 1)

	f.Suspend()
	assert.Equal(t, StateSuspended, f.State())

	require.NoError(t, f.Close())
	assert.ErrorIs(t, f.Resume(ctx), ErrClosed)
	assert.ErrorIs(t, f.Schedule([]float32{1}), ErrClosed)
	assert.Equal(t, 2, f.ResumeCalls())
}

func TestFakeContextResumeError(t *testing.T) {
	boom := errors.New("blocked by policy")
	f := NewFakeContext(8000)
	f.SetResumeError(boom)
	assert.ErrorIs(t, f.Resume(context.Background()), boom)
	assert.Equal(t, StateSuspended, f.State())

	f.SetResumeError(nil)
	require.NoError(t, f.Resume(context.Background()))
}

func TestFakeContextResumeHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := NewFakeContext(8000)
	assert.ErrorIs(t, f.Resume(ctx), context.Canceled)
}

func TestFakeBackend(t *testing.T) {
	b := &FakeBackend{SampleRate: 8000}
	c, err := b.Open()
	require.NoError(t, err)
	assert.Equal(t, 8000, c.SampleRate())
	assert.Len(t, b.Opened(), 1)

	b.SetErr(ErrUnsupported)
	_, err = b.Open()
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Len(t, b.Opened(), 1)
}

func TestNullBackend(t *testing.T) {
	open, err := NewOpener(" NULL ", Config{SampleRate: 22050})
	require.NoError(t, err)
	c, err := open()
	require.NoError(t, err)
	assert.Equal(t, 22050, c.SampleRate())
	assert.Equal(t, StateSuspended, c.State())
	assert.ErrorIs(t, c.Schedule(nil), ErrSuspended)
	require.NoError(t, c.Resume(context.Background()))
	require.NoError(t, c.Schedule([]float32{0}))
	require.NoError(t, c.Close())
	assert.Equal(t, StateClosed, c.State())
}

func TestNewOpenerUnknownBackend(t *testing.T) {
	_, err := NewOpener("alsa", Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alsa")
}

func TestOpenFirstFallsThrough(t *testing.T) {
	constructors["broken"] = func(Config) (Context, error) { return nil, errors.New("no device") }
	t.Cleanup(func() { delete(constructors, "broken") })

	c, err := openFirst([]string{"broken", BackendNull}, Config{})
	require.NoError(t, err)
	assert.Equal(t, StateSuspended, c.State())

	_, err = openFirst([]string{"broken"}, Config{})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), "no device")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "suspended", StateSuspended.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestOfflineMixesFromZero(t *testing.T) {
	o := NewOffline(8000)
	assert.Equal(t, StateRunning, o.State())
	require.NoError(t, o.Resume(context.Background()))
	require.NoError(t, o.Schedule([]float32{0.1, 0.2}))
	require.NoError(t, o.Schedule([]float32{0.1, 0.1, 0.5}))
	got := o.Samples()
	require.Len(t, got, 3)
	assert.InDelta(t, 0.2, got[0], 1e-6)
	assert.InDelta(t, 0.3, got[1], 1e-6)
	assert.InDelta(t, 0.5, got[2], 1e-6)
	assert.Equal(t, 2, o.Scheduled())

	require.NoError(t, o.Close())
	assert.ErrorIs(t, o.Schedule([]float32{1}), ErrClosed)
}

func TestMixReaderStreamsWholeFrames(t *testing.T) {
	m := newMixer(1)
	r := &mixReader{mix: m}

	buf := make([]byte, 10)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, make([]byte, 10), buf, "silence when idle")

	m.add([]float32{0.5, 0.25})
	n, err = r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])))
	assert.Zero(t, m.activeCount())
}

func TestBackendsListsEveryConstructor(t *testing.T) {
	for name := range constructors {
		assert.Contains(t, Backends(), name)
	}
	for _, name := range autoOrder {
		assert.Contains(t, constructors, name)
	}
}
