// Package sfx holds the sound catalogue: named presets with display metadata
// and a generator that renders and schedules the preset on an audio context.
package sfx

import (
	"iter"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"retrowave/audio"
)

const (
	DefaultDescription = "No description"
	DefaultEmoji       = "🔊"
	DefaultCategory    = "Uncategorized"
)

// Generator builds a preset's graph and starts it on ac. It returns once the
// graph is scheduled; playback continues inside the backend.
type Generator func(ac audio.Context) error

// Metadata is the optional display information supplied at registration.
// Empty fields are replaced by the package defaults.
type Metadata struct {
	Description string
	Emoji       string
	Category    string
}

// Info is a definition without its generator.
type Info struct {
	Name        string
	Description string
	Emoji       string
	Category    string
}

// Matches reports whether query is a case-insensitive substring of the name,
// description or category. The empty query matches everything.
func (i Info) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{i.Name, i.Description, i.Category} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

type Definition struct {
	Info
	Generator Generator
}

// Registry maps sound names to definitions. Enumeration follows first
// registration; re-registering a name replaces it in place.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]Definition
	order []string
	log   zerolog.Logger
}

type Option func(*Registry)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		defs: make(map[string]Definition),
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register stores or silently overwrites the definition for name.
func (r *Registry) Register(name string, meta Metadata, gen Generator) {
	def := Definition{
		Info: Info{
			Name:        name,
			Description: orDefault(meta.Description, DefaultDescription),
			Emoji:       orDefault(meta.Emoji, DefaultEmoji),
			Category:    orDefault(meta.Category, DefaultCategory),
		},
		Generator: gen,
	}

	r.mu.Lock()
	_, existed := r.defs[name]
	if !existed {
		r.order = append(r.order, name)
	}
	r.defs[name] = def
	r.mu.Unlock()

	r.log.Debug().
		Str("sound", name).
		Str("category", def.Category).
		Bool("replaced", existed).
		Msg("sound_registered")
}

func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All yields every definition's info in registry order. Each range sees a
// snapshot taken when iteration starts.
func (r *Registry) All() iter.Seq[Info] {
	return func(yield func(Info) bool) {
		for _, info := range r.List() {
			if !yield(info) {
				return
			}
		}
	}
}

// List returns a fresh slice of every definition's info in registry order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name].Info)
	}
	return out
}

// Filter returns the infos matching query, in registry order.
func (r *Registry) Filter(query string) []Info {
	var out []Info
	for info := range r.All() {
		if info.Matches(query) {
			out = append(out, info)
		}
	}
	return out
}

// Categories returns the distinct categories in order of first appearance.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for info := range r.All() {
		if !seen[info.Category] {
			seen[info.Category] = true
			out = append(out, info.Category)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
