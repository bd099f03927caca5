// Package internal provides internal implementation details for confx.
package internal

import (
	"context"

	"go.eggybyte.com/confx/errors"
)

// Source describes a provider of raw configuration values.
// Implementations must be safe for concurrent use.
type Source interface {
	// Load reads the current key-value snapshot of the source.
	Load(ctx context.Context) (map[string]string, error)
}

// Descriptor converts raw configuration input into a typed value.
// The resolver depends only on this interface, never on a concrete
// validation or serialization library.
type Descriptor interface {
	// Kind names the descriptor's shape for introspection and reports.
	Kind() string

	// Parse converts a raw string into a typed value.
	Parse(raw string) (any, error)

	// Conform checks an already-typed value against the descriptor's shape,
	// coercing it where the shape allows.
	Conform(value any) (any, error)
}

// Origin identifies which layer supplied an entry's value.
type Origin string

// Provenance layers, in precedence order.
const (
	OriginEnvironment Origin = "environment"
	OriginOverride    Origin = "override"
	OriginDefault     Origin = "default"
)

// State is the resolution state of a registry entry.
type State int

// Entry states. Pending only occurs in deferred-resolution mode before
// the first ResolveAll call.
const (
	StatePending State = iota
	StateResolved
	StateFailed
)

// EntrySpec is the internal form of a declared configuration entry.
type EntrySpec struct {
	Name       string
	Var        string
	Info       string
	Required   bool
	Default    any // nil means no default
	Secret     bool
	Descriptor Descriptor
}

// outcome is the result of resolving one entry against one snapshot.
// It is replaced wholesale on re-resolution so readers never observe a
// partially updated result.
type outcome struct {
	state  State
	value  any
	origin Origin
	raw    *string // pre-coercion input, kept for diagnostics
	err    *errors.E
}

// EntryView is a read-only copy of one registry entry's current state.
type EntryView struct {
	Spec   EntrySpec
	State  State
	Value  any
	Origin Origin
	Raw    *string
	Err    *errors.E
}
