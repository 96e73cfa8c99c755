package encoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/gopxl/beep/wav"
)

func TestExportWav(t *testing.T) {
	samples := make([]float32, 5000)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(float64(i)/10))
	}

	data, err := Export(samples, 8000, "wav")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE magic: %q", data[:12])
	}
	if got, want := len(data), 44+2*len(samples); got != want {
		t.Errorf("len = %d, want %d", got, want)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		t.Errorf("bits per sample = %d, want 16", bits)
	}

	s, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("wav.Decode: %v", err)
	}
	defer s.Close()
	if format.SampleRate != 8000 || format.NumChannels != 1 || format.Precision != 2 {
		t.Errorf("format = %+v", format)
	}
	if s.Len() != len(samples) {
		t.Errorf("decoded length = %d, want %d", s.Len(), len(samples))
	}
}

func TestExportFlac(t *testing.T) {
	samples := make([]float32, BlockSize*2+100)
	data, err := Export(samples, 44100, "FLAC")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if string(data[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
}

func TestEncodeAccumulatesEncodeTime(t *testing.T) {
	enc, err := New(FormatFLAC, 44100)
	if err != nil {
		t.Fatal(err)
	}
	samples := make([]float32, BlockSize*3)
	for i := range samples {
		samples[i] = float32(math.Sin(float64(i) / 7))
	}
	if err := Encode(enc, samples); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if enc.EncodeTime() <= 0 {
		t.Errorf("EncodeTime = %v, want > 0", enc.EncodeTime())
	}
	if string(enc.Bytes()[:4]) != "fLaC" {
		t.Error("output does not start with FLAC magic")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := Export([]float32{0}, 44100, "mp3")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestQuantizeClamps(t *testing.T) {
	cases := map[float32]int16{
		0:    0,
		1:    32767,
		-1:   -32767,
		2:    32767,
		-2:   -32768,
		0.5:  16384,
		-0.5: -16384,
	}
	for in, want := range cases {
		if got := quantize(in); got != want {
			t.Errorf("quantize(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestWavEncoderAfterClose(t *testing.T) {
	enc, err := NewWav(8000)
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeBlock([]int16{1}); err == nil {
		t.Error("expected error encoding after close")
	}
	if len(enc.Bytes()) != 44 {
		t.Errorf("empty wav = %d bytes, want 44", len(enc.Bytes()))
	}
}

func TestSeekBuffer(t *testing.T) {
	var b seekBuffer
	b.Write([]byte("hello world"))
	if _, err := b.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	b.Write([]byte("J"))
	if _, err := b.Seek(-5, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	b.Write([]byte("W"))
	if got := string(b.buf); got != "Jello World" {
		t.Errorf("got %q", got)
	}
	if _, err := b.Seek(-100, io.SeekCurrent); err == nil {
		t.Error("expected error for negative seek")
	}
}
