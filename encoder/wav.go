package encoder

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// WavEncoder buffers 16-bit mono samples and writes a RIFF/WAVE file on Close.
type WavEncoder struct {
	format      beep.Format
	samples     []int16
	out         seekBuffer
	closed      bool
	totalFrames uint64
	encodeTime  time.Duration
	mu          sync.Mutex
}

func NewWav(sampleRate int) (*WavEncoder, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wav: invalid sample rate %d", sampleRate)
	}
	return &WavEncoder{
		format: beep.Format{
			SampleRate:  beep.SampleRate(sampleRate),
			NumChannels: Channels,
			Precision:   BitsPerSample / 8,
		},
	}, nil
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.New("wav: encode after close")
	}
	e.samples = append(e.samples, block...)
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if err := wav.Encode(&e.out, int16Streamer(e.samples), e.format); err != nil {
		return fmt.Errorf("writing wav: %w", err)
	}
	return nil
}

func (e *WavEncoder) Bytes() []byte {
	return e.out.buf
}

func (e *WavEncoder) TotalFrames() uint64 {
	return e.totalFrames
}

func (e *WavEncoder) AddEncodeTime(d time.Duration) {
	e.mu.Lock()
	e.encodeTime += d
	e.mu.Unlock()
}

func (e *WavEncoder) EncodeTime() time.Duration {
	return e.encodeTime
}

// int16Streamer plays 16-bit samples as a beep stream, same value on both
// channels so the mono down-mix is lossless.
func int16Streamer(samples []int16) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(out [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := 0
		for n < len(out) && pos < len(samples) {
			v := float64(samples[pos]) / 32768
			out[n][0], out[n][1] = v, v
			n++
			pos++
		}
		return n, true
	})
}

// seekBuffer is an in-memory io.WriteSeeker; wav.Encode seeks back to patch
// the RIFF sizes once the stream ends.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	if end := s.pos + len(p); end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}
	n := copy(s.buf[s.pos:], p)
	s.pos += n
	return n, nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(s.pos)
	case io.SeekEnd:
		base = int64(len(s.buf))
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}
	next := base + offset
	if next < 0 {
		return 0, errors.New("seek: negative position")
	}
	s.pos = int(next)
	return next, nil
}
