package synth

import "math"

// Wave selects an oscillator shape.
type Wave int

const (
	Sine Wave = iota
	Square
	Sawtooth
	Triangle
)

func (w Wave) String() string {
	switch w {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	case Triangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// sample returns the wave value for phase in [0, 1).
func (w Wave) sample(phase float64) float64 {
	switch w {
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2 * (phase - 0.5)
	case Triangle:
		return 1 - 4*math.Abs(phase-0.5)
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// LFO adds Depth * wave(Rate) to the param it modulates.
type LFO struct {
	Wave  Wave
	Rate  float64
	Depth float64
}

func (l *LFO) at(t float64) float64 {
	if l == nil {
		return 0
	}
	phase := l.Rate * t
	return l.Depth * l.Wave.sample(phase-math.Floor(phase))
}

// Oscillator is a periodic source.
type Oscillator struct {
	Wave      Wave
	Frequency *Param
	Detune    float64 // cents
	FM        *LFO
	Start     float64
	Stop      float64
}

// Osc returns an oscillator playing from time zero. Call Until to bound it.
func Osc(w Wave, freq *Param) *Oscillator {
	return &Oscillator{Wave: w, Frequency: freq}
}

// From delays the oscillator start.
func (o *Oscillator) From(t float64) *Oscillator {
	o.Start = t
	return o
}

// Until sets the stop time.
func (o *Oscillator) Until(t float64) *Oscillator {
	o.Stop = t
	return o
}

// Modulate attaches an LFO to the frequency.
func (o *Oscillator) Modulate(l LFO) *Oscillator {
	o.FM = &l
	return o
}

func (o *Oscillator) span() (float64, float64) { return o.Start, o.Stop }

func (o *Oscillator) render(out []float64, sr int, _ *renderState) {
	first, last := sampleSpan(o.Start, o.Stop, sr, len(out))
	ratio := math.Pow(2, o.Detune/1200)
	phase := 0.0
	for i := first; i < last; i++ {
		t := float64(i) / float64(sr)
		out[i] += o.Wave.sample(phase)
		freq := (o.Frequency.At(t) + o.FM.at(t)) * ratio
		phase += freq / float64(sr)
		phase -= math.Floor(phase)
	}
}
