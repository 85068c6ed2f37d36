// Package mapper copies field values between record shapes through copy
// functions registered once at startup. Each function is ordinary typed
// Go code; types are only used as registry keys, never walked by
// reflection.
package mapper

import (
	"fmt"
	"reflect"

	"github.com/pkordes/reactivities/backend/internal/domain"
)

type pair struct {
	src, dst reflect.Type
}

func (p pair) String() string {
	return p.src.String() + " -> " + p.dst.String()
}

// Profile registers a group of related copy functions on a Builder.
type Profile func(b *Builder)

// Builder collects copy functions before the Mapper is frozen by New.
type Builder struct {
	funcs map[pair]any
	err   error
}

// Register adds the copy function for the (S, D) pair.
// Registering the same pair twice makes New fail.
func Register[S, D any](b *Builder, fn func(src S, dst *D)) {
	key := pair{src: reflect.TypeFor[S](), dst: reflect.TypeFor[D]()}
	if _, dup := b.funcs[key]; dup {
		if b.err == nil {
			b.err = fmt.Errorf("mapper: duplicate mapping for %s", key)
		}
		return
	}
	b.funcs[key] = fn
}

// Mapper holds an immutable set of copy functions. It is safe for
// concurrent use because nothing mutates it after New returns.
type Mapper struct {
	funcs map[pair]any
}

// New applies every profile and returns the resulting Mapper.
func New(profiles ...Profile) (*Mapper, error) {
	b := &Builder{funcs: make(map[pair]any)}
	for _, p := range profiles {
		p(b)
	}
	if b.err != nil {
		return nil, b.err
	}
	return &Mapper{funcs: b.funcs}, nil
}

// Map copies src onto dst using the function registered for (S, D).
// It returns domain.ErrMappingConfigurationMissing when none is registered.
func Map[S, D any](m *Mapper, src S, dst *D) error {
	fn, err := lookup[S, D](m)
	if err != nil {
		return err
	}
	fn(src, dst)
	return nil
}

// Supports reports, as an error, whether m can map S onto D. Constructors
// call it so a missing mapping fails at startup rather than per request.
func Supports[S, D any](m *Mapper) error {
	_, err := lookup[S, D](m)
	return err
}

func lookup[S, D any](m *Mapper) (func(S, *D), error) {
	key := pair{src: reflect.TypeFor[S](), dst: reflect.TypeFor[D]()}
	if m == nil {
		return nil, fmt.Errorf("mapper: %s: %w", key, domain.ErrMappingConfigurationMissing)
	}
	fn, ok := m.funcs[key].(func(S, *D))
	if !ok {
		return nil, fmt.Errorf("mapper: %s: %w", key, domain.ErrMappingConfigurationMissing)
	}
	return fn, nil
}
