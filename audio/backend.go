package audio

import (
	"errors"
	"fmt"
	"strings"
)

const (
	BackendAuto    = "auto"
	BackendPulse   = "pulse"
	BackendMalgo   = "malgo"
	BackendOto     = "oto"
	BackendSpeaker = "speaker"
	BackendNull    = "null"
)

// Backends lists the names accepted by NewOpener.
func Backends() []string {
	return []string{BackendAuto, BackendPulse, BackendMalgo, BackendOto, BackendSpeaker, BackendNull}
}

type constructor func(Config) (Context, error)

var constructors = map[string]constructor{
	BackendPulse:   NewPulse,
	BackendMalgo:   NewMalgo,
	BackendOto:     NewOto,
	BackendSpeaker: NewSpeaker,
	BackendNull:    NewNull,
}

// autoOrder is tried front to back by the auto backend.
var autoOrder = []string{BackendPulse, BackendMalgo, BackendOto, BackendSpeaker}

// NewOpener returns an Opener for the named backend. Nothing is opened until
// the Opener is called.
func NewOpener(name string, cfg Config) (Opener, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = BackendAuto
	}
	if name == BackendAuto {
		return func() (Context, error) { return openFirst(autoOrder, cfg) }, nil
	}
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown audio backend %q (want one of %s)", name, strings.Join(Backends(), ", "))
	}
	return func() (Context, error) { return ctor(cfg) }, nil
}

func openFirst(order []string, cfg Config) (Context, error) {
	var errs []error
	for _, name := range order {
		ctx, err := constructors[name](cfg)
		if err == nil {
			return ctx, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return nil, fmt.Errorf("%w: %w", ErrUnsupported, errors.Join(errs...))
}
