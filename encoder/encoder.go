package encoder

import (
	"errors"
	"time"
)

const (
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

var ErrUnknownFormat = errors.New("unknown export format")

const (
	FormatWAV  = "wav"
	FormatFLAC = "flac"
)

func Formats() []string {
	return []string{FormatWAV, FormatFLAC}
}

type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
	AddEncodeTime(d time.Duration)
	EncodeTime() time.Duration
}
