package audio

// NewMalgo is unavailable on Linux, where the pulse backend drives output.
func NewMalgo(Config) (Context, error) {
	return nil, ErrUnsupported
}
