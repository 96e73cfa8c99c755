package sfx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retrowave/audio"
	"retrowave/synth"
)

func TestCatalogueContents(t *testing.T) {
	r := NewCatalogue()
	assert.Equal(t, 30, r.Len())
	for _, name := range []string{"correct", "error", "explosion", "lowRumble", "glitch", "alarmLoop"} {
		_, ok := r.Get(name)
		assert.True(t, ok, name)
	}
	for info := range r.All() {
		assert.NotEqual(t, DefaultCategory, info.Category, info.Name)
		assert.NotEqual(t, DefaultDescription, info.Description, info.Name)
	}
}

func TestEveryPresetRendersBoundedAudio(t *testing.T) {
	const rate = 22050
	for _, p := range presets {
		t.Run(p.name, func(t *testing.T) {
			g := p.graph()
			buf, err := g.Render(rate)
			require.NoError(t, err)
			require.NotEmpty(t, buf)
			assert.LessOrEqual(t, g.Duration(), 3.0)

			peak := 0.0
			for _, v := range buf {
				f := float64(v)
				require.False(t, math.IsNaN(f) || math.IsInf(f, 0))
				peak = math.Max(peak, math.Abs(f))
			}
			assert.Greater(t, peak, 0.001, "silent preset")
		})
	}
}

func TestFilterQ(t *testing.T) {
	want := map[string]float64{
		"explosion":   1,
		"snareDrum":   1,
		"ambiencePad": 1,
		"step":        1,
		"alarmLoop":   0,
	}
	for _, p := range presets {
		q, ok := want[p.name]
		if !ok {
			continue
		}
		var filters int
		for _, bus := range p.graph().Buses {
			for _, st := range bus.Stages {
				if f, ok := st.(*synth.Filter); ok {
					filters++
					assert.Equal(t, q, f.Q, "%s %s filter", p.name, f.Type)
				}
			}
		}
		assert.Positive(t, filters, p.name)
	}
}

func TestGeneratorSchedulesOneGraph(t *testing.T) {
	r := NewCatalogue()
	def, ok := r.Get("coinPickup")
	require.True(t, ok)

	off := audio.NewOffline(8000)
	require.NoError(t, def.Generator(off))
	assert.Equal(t, 1, off.Scheduled())
	assert.InDelta(t, 560, len(off.Samples()), 1)
}

func TestGeneratorPropagatesScheduleError(t *testing.T) {
	def, ok := NewCatalogue().Get("blip")
	require.True(t, ok)
	// suspended context refuses
	err := def.Generator(audio.NewFakeContext(8000))
	assert.ErrorIs(t, err, audio.ErrSuspended)
}

func TestAlarmLoopIsBounded(t *testing.T) {
	var alarm preset
	for _, p := range presets {
		if p.name == "alarmLoop" {
			alarm = p
		}
	}
	g := alarm.graph()
	require.NoError(t, g.Validate())
	assert.InDelta(t, 3.0, g.Duration(), 1e-9)
}
