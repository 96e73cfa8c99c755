package audio

// NewOto is unavailable on Linux, where the pulse backend drives output.
func NewOto(Config) (Context, error) {
	return nil, ErrUnsupported
}
