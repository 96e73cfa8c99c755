package encoder

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// New returns an encoder for format ("wav" or "flac").
func New(format string, sampleRate int) (Encoder, error) {
	switch strings.ToLower(format) {
	case FormatWAV:
		return NewWav(sampleRate)
	case FormatFLAC:
		return NewFlac(sampleRate)
	default:
		return nil, fmt.Errorf("%w %q (want %s)", ErrUnknownFormat, format, strings.Join(Formats(), " or "))
	}
}

// Export quantizes float samples in [-1, 1] to 16 bits and encodes them.
func Export(samples []float32, sampleRate int, format string) ([]byte, error) {
	enc, err := New(format, sampleRate)
	if err != nil {
		return nil, err
	}
	if err := Encode(enc, samples); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// Encode feeds samples to enc block by block and closes it. Time spent
// inside the encoder accumulates in enc.EncodeTime.
func Encode(enc Encoder, samples []float32) error {
	block := make([]int16, 0, BlockSize)
	for i := 0; i < len(samples); i += BlockSize {
		end := min(i+BlockSize, len(samples))
		block = block[:0]
		for _, v := range samples[i:end] {
			block = append(block, quantize(v))
		}
		start := time.Now()
		if err := enc.EncodeBlock(block); err != nil {
			return err
		}
		enc.AddEncodeTime(time.Since(start))
	}
	return enc.Close()
}

// Extension returns the file extension for format, with the dot.
func Extension(format string) string {
	return "." + strings.ToLower(format)
}

func quantize(v float32) int16 {
	f := math.Round(float64(v) * 32767)
	if f > math.MaxInt16 {
		return math.MaxInt16
	}
	if f < math.MinInt16 {
		return math.MinInt16
	}
	return int16(f)
}
