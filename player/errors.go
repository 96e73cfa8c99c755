package player

import "errors"

var (
	// ErrUnsupportedPlatform means no audio context could be created.
	ErrUnsupportedPlatform = errors.New("audio unsupported on this platform")
	// ErrResumeFailed means the context exists but would not start running.
	ErrResumeFailed  = errors.New("audio context resume failed")
	ErrSoundNotFound = errors.New("sound not found")
	// ErrNotReady wraps the reason a play was skipped.
	ErrNotReady         = errors.New("audio not ready")
	ErrGeneratorFailure = errors.New("sound generator failed")
)
