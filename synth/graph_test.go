package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 8000

func peak(buf []float32) float64 {
	m := 0.0
	for _, v := range buf {
		m = math.Max(m, math.Abs(float64(v)))
	}
	return m
}

func TestRenderLengthMatchesDuration(t *testing.T) {
	g := Chain(Osc(Square, P(440)).Until(0.25), Amp(P(0.5)))
	buf, err := g.Render(testRate)
	require.NoError(t, err)
	assert.Len(t, buf, 2000)
	assert.InDelta(t, 0.5, peak(buf), 1e-6)
}

func TestRenderRejectsUnbounded(t *testing.T) {
	g := Chain(Osc(Sine, P(440)))
	_, err := g.Render(testRate)
	assert.ErrorIs(t, err, ErrUnbounded)

	g = Chain(Osc(Sine, P(440)).Until(math.Inf(1)))
	_, err = g.Render(testRate)
	assert.ErrorIs(t, err, ErrUnbounded)
}

func TestRenderRejectsEmpty(t *testing.T) {
	_, err := NewGraph().Render(testRate)
	assert.ErrorIs(t, err, ErrEmptyGraph)

	_, err = NewGraph(NewBus()).Render(testRate)
	assert.ErrorIs(t, err, ErrEmptyGraph)
}

func TestRenderInvalidRate(t *testing.T) {
	_, err := Chain(WhiteNoise(0.1)).Render(0)
	assert.Error(t, err)
}

func TestOscillatorRespectsStartTime(t *testing.T) {
	g := Chain(Osc(Square, P(1000)).From(0.1).Until(0.2))
	buf, err := g.Render(testRate)
	require.NoError(t, err)
	require.Len(t, buf, 1600)
	assert.Zero(t, peak(buf[:800]))
	assert.InDelta(t, 1, peak(buf[800:]), 1e-6)
}

func TestSequentialSourcesOnOneBus(t *testing.T) {
	a := Osc(Square, P(500)).Until(0.1)
	b := Osc(Square, P(700)).From(0.1).Until(0.2)
	buf, err := NewGraph(NewBus(a, b)).Render(testRate)
	require.NoError(t, err)
	// no overlap, so square waves never sum past full scale
	assert.InDelta(t, 1, peak(buf), 1e-6)
}

func TestNoiseSeedDeterministic(t *testing.T) {
	build := func() *Graph {
		g := Chain(WhiteNoise(0.05))
		g.Seed = 42
		return g
	}
	a, err := build().Render(testRate)
	require.NoError(t, err)
	b, err := build().Render(testRate)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.LessOrEqual(t, peak(a), 1.0)
	assert.Greater(t, peak(a), 0.0)
}

func TestNoiseImpulseOnlyFillsHead(t *testing.T) {
	n := &Noise{Length: 0.05, Amplitude: 0.25, Impulse: 50, Stop: 0.05}
	buf, err := Chain(n).Render(testRate)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak(buf[:50]), 0.25)
	assert.Zero(t, peak(buf[50:]))
}

func TestNoiseLoopsPastBuffer(t *testing.T) {
	n := WhiteNoise(0.01).Until(0.05).Looping()
	g := Chain(n)
	g.Seed = 7
	buf, err := g.Render(testRate)
	require.NoError(t, err)
	require.Len(t, buf, 400)
	assert.Equal(t, buf[0], buf[80])
	assert.Equal(t, buf[5], buf[325])
}

func TestNoiseWithoutLoopGoesSilent(t *testing.T) {
	n := WhiteNoise(0.01).Until(0.05)
	buf, err := Chain(n).Render(testRate)
	require.NoError(t, err)
	assert.Zero(t, peak(buf[80:]))
}

func TestLowpassAttenuatesHighFrequency(t *testing.T) {
	dry, err := Chain(Osc(Sine, P(3000)).Until(0.2)).Render(testRate)
	require.NoError(t, err)
	wet, err := Chain(Osc(Sine, P(3000)).Until(0.2), LP(Const(100), 0.7)).Render(testRate)
	require.NoError(t, err)
	assert.Less(t, peak(wet[400:]), peak(dry[400:])*0.1)
}

func TestHighpassAttenuatesLowFrequency(t *testing.T) {
	wet, err := Chain(Osc(Sine, P(50)).Until(0.5), HP(Const(2000), 0.7)).Render(testRate)
	require.NoError(t, err)
	assert.Less(t, peak(wet[2000:]), 0.05)
}

func TestBandpassKeepsCenter(t *testing.T) {
	center, err := Chain(Osc(Sine, P(1000)).Until(0.5), BP(Const(1000), 2)).Render(testRate)
	require.NoError(t, err)
	far, err := Chain(Osc(Sine, P(60)).Until(0.5), BP(Const(1000), 2)).Render(testRate)
	require.NoError(t, err)
	assert.Greater(t, peak(center[2000:]), 0.8)
	assert.Less(t, peak(far[2000:]), 0.1)
}

func TestFilterDesignClampsCutoff(t *testing.T) {
	f := LP(Const(0), 0)
	assert.Equal(t, f.design(testRate, testRate), f.design(testRate/2*0.99, testRate))
	assert.Equal(t, f.design(-50, testRate), f.design(10, testRate))

	bp := BP(Const(0), 0)
	assert.Equal(t, bp.design(500, testRate), BP(Const(0), 1).design(500, testRate), "zero bandpass Q is a linear Q of 1")
}

func TestFilterFollowsCutoffSweep(t *testing.T) {
	sweep := P(100).ExpTo(3500, 0.5)
	buf, err := Chain(Osc(Sine, P(3000)).Until(0.5), LP(sweep, 0)).Render(testRate)
	require.NoError(t, err)
	assert.Greater(t, peak(buf[3600:]), peak(buf[400:800])*5)
}

func TestGainEnvelopeDecays(t *testing.T) {
	buf, err := Chain(Osc(Square, P(200)).Until(0.5), Amp(P(1).ExpTo(0.001, 0.5))).Render(testRate)
	require.NoError(t, err)
	assert.Greater(t, peak(buf[:400]), peak(buf[3600:])*10)
}

func TestDurationIsLatestStop(t *testing.T) {
	g := NewGraph(
		NewBus(WhiteNoise(0.2)),
		NewBus(Osc(Triangle, Const(180)).Until(0.1)),
	)
	assert.InDelta(t, 0.2, g.Duration(), 1e-12)
}

func TestWaveShapesBounded(t *testing.T) {
	for _, w := range []Wave{Sine, Square, Sawtooth, Triangle} {
		for i := 0; i < 100; i++ {
			v := w.sample(float64(i) / 100)
			assert.LessOrEqual(t, math.Abs(v), 1.0, w.String())
		}
	}
}

func TestFrequencyModulationChangesSignal(t *testing.T) {
	plain, err := Chain(Osc(Sine, P(400)).Until(0.1)).Render(testRate)
	require.NoError(t, err)
	mod, err := Chain(Osc(Sine, P(400)).Until(0.1).Modulate(LFO{Wave: Sawtooth, Rate: 30, Depth: 50})).Render(testRate)
	require.NoError(t, err)
	assert.NotEqual(t, plain, mod)
}
