package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// voice tracks a playing graph
type voice struct {
	buffer []float32
	pos    int
}

// mixer sums scheduled graphs for pull-based outputs. The device callback
// asks for a block, active voices are mixed into it and finished ones dropped.
type mixer struct {
	mu     sync.Mutex
	active []voice
	volume float64
}

func newMixer(volume float64) *mixer {
	return &mixer{volume: clampVolume(volume), active: make([]voice, 0, 8)}
}

func (m *mixer) add(samples []float32) {
	if len(samples) == 0 {
		return
	}
	m.mu.Lock()
	m.active = append(m.active, voice{buffer: samples})
	m.mu.Unlock()
}

// fill writes the next len(out) mixed samples.
func (m *mixer) fill(out []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(out)
	if len(m.active) == 0 {
		return
	}

	remaining := m.active[:0]
	for i := range m.active {
		v := &m.active[i]
		for j := 0; j < len(out) && v.pos < len(v.buffer); j++ {
			out[j] += v.buffer[v.pos]
			v.pos++
		}
		if v.pos < len(v.buffer) {
			remaining = append(remaining, *v)
		}
	}
	// release finished buffers
	for i := len(remaining); i < len(m.active); i++ {
		m.active[i] = voice{}
	}
	m.active = remaining

	for i, v := range out {
		out[i] = float32(softLimit(float64(v) * m.volume))
	}
}

// fillBytes writes little-endian float32 frames for devices that take raw bytes.
func (m *mixer) fillBytes(out []byte, scratch []float32) []float32 {
	n := len(out) / 4
	if cap(scratch) < n {
		scratch = make([]float32, n)
	}
	scratch = scratch[:n]
	m.fill(scratch)
	for i, v := range scratch {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return scratch
}

func (m *mixer) activeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

func (m *mixer) reset() {
	m.mu.Lock()
	m.active = m.active[:0]
	m.mu.Unlock()
}

// mixReader is an endless stream of mixed float32 frames, silence when no
// voice is active.
type mixReader struct {
	mix     *mixer
	scratch []float32
}

func (r *mixReader) Read(p []byte) (int, error) {
	n := len(p) &^ 3
	r.scratch = r.mix.fillBytes(p[:n], r.scratch)
	return n, nil
}

// softLimit compresses peaks above 0.8 before the hard clip so overlapping
// graphs do not wrap.
func softLimit(v float64) float64 {
	if v > 0.8 {
		v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
	} else if v < -0.8 {
		v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
	}
	if v > 1.0 {
		v = 1.0
	} else if v < -1.0 {
		v = -1.0
	}
	return v
}
