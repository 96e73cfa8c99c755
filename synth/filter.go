package synth

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// FilterType selects the biquad response.
type FilterType int

const (
	Lowpass FilterType = iota
	Highpass
	Bandpass
)

func (f FilterType) String() string {
	switch f {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	default:
		return "unknown"
	}
}

// Coefficients are refreshed once per control block, not per sample.
const controlBlock = 32

// Filter is a biquad stage. Q is in dB for lowpass and highpass and linear for
// bandpass. Either way a zero Q means a linear Q of 1.
type Filter struct {
	Type      FilterType
	Frequency *Param
	Q         float64
	Mod       *LFO
}

func LP(freq *Param, q float64) *Filter { return &Filter{Type: Lowpass, Frequency: freq, Q: q} }
func HP(freq *Param, q float64) *Filter { return &Filter{Type: Highpass, Frequency: freq, Q: q} }
func BP(freq *Param, q float64) *Filter { return &Filter{Type: Bandpass, Frequency: freq, Q: q} }

// Modulate attaches an LFO to the cutoff.
func (f *Filter) Modulate(l LFO) *Filter {
	f.Mod = &l
	return f
}

// design returns the RBJ section for freq, clamped to [10 Hz, 0.99 nyquist].
func (f *Filter) design(freq float64, sr int) biquad.Coefficients {
	rate := float64(sr)
	freq = math.Max(10, math.Min(freq, rate/2*0.99))
	q := f.Q
	switch {
	case f.Type != Bandpass:
		q = math.Pow(10, q/20)
	case q <= 0:
		q = 1
	}
	switch f.Type {
	case Highpass:
		return design.Highpass(freq, q, rate)
	case Bandpass:
		return design.Bandpass(freq, q, rate)
	default:
		return design.Lowpass(freq, q, rate)
	}
}

// process runs one section over buf, redesigning it from the cutoff
// timeline at the start of every control block. The section keeps its
// state across redesigns.
func (f *Filter) process(buf []float64, sr int) {
	sec := biquad.NewSection(f.design(f.Frequency.At(0)+f.Mod.at(0), sr))
	for i, x := range buf {
		if i > 0 && i%controlBlock == 0 {
			t := float64(i) / float64(sr)
			sec.Coefficients = f.design(f.Frequency.At(t)+f.Mod.at(t), sr)
		}
		buf[i] = sec.ProcessSample(x)
	}
}

// Gain multiplies the signal by an envelope.
type Gain struct {
	Gain *Param
}

// Amp wraps an envelope param as a gain stage.
func Amp(env *Param) *Gain { return &Gain{Gain: env} }

func (g *Gain) process(buf []float64, sr int) {
	for i := range buf {
		buf[i] *= g.Gain.At(float64(i) / float64(sr))
	}
}
