//go:build !linux

package audio

func NewPulse(Config) (Context, error) {
	return nil, ErrUnsupported
}
