package synth

// Noise plays a white-noise buffer.
type Noise struct {
	// Length of the generated buffer in seconds.
	Length float64
	// Amplitude scales the uniform [-1, 1) noise.
	Amplitude float64
	// Impulse, when positive, fills only the first Impulse samples and leaves
	// the rest of the buffer silent.
	Impulse int
	Loop    bool
	Start   float64
	Stop    float64
}

// WhiteNoise returns a full-scale noise buffer of the given length that plays
// for its whole length.
func WhiteNoise(length float64) *Noise {
	return &Noise{Length: length, Amplitude: 1, Stop: length}
}

func (n *Noise) From(t float64) *Noise {
	n.Start = t
	return n
}

func (n *Noise) Until(t float64) *Noise {
	n.Stop = t
	return n
}

func (n *Noise) Looping() *Noise {
	n.Loop = true
	return n
}

func (n *Noise) span() (float64, float64) { return n.Start, n.Stop }

func (n *Noise) buffer(sr int, st *renderState) []float64 {
	size := int(n.Length * float64(sr))
	if size <= 0 {
		return nil
	}
	fill := size
	if n.Impulse > 0 && n.Impulse < size {
		fill = n.Impulse
	}
	buf := make([]float64, size)
	for i := 0; i < fill; i++ {
		buf[i] = (st.rng.Float64()*2 - 1) * n.Amplitude
	}
	return buf
}

func (n *Noise) render(out []float64, sr int, st *renderState) {
	buf := n.buffer(sr, st)
	if len(buf) == 0 {
		return
	}
	first, last := sampleSpan(n.Start, n.Stop, sr, len(out))
	for i := first; i < last; i++ {
		j := i - first
		if j >= len(buf) {
			if !n.Loop {
				return
			}
			j %= len(buf)
		}
		out[i] += buf[j]
	}
}
