// Package internal provides internal implementation details for confx.
package internal

import (
	"context"
	"fmt"

	"dario.cat/mergo"
)

// Snapshot is an immutable merged view of the base sources overlaid by the
// override map. Lookups consult the override layer first.
type Snapshot struct {
	base     map[string]string
	override map[string]any
}

// NewSnapshot builds a snapshot from a base map and an override map.
// Both maps are copied; the snapshot never observes later mutations of
// the caller's maps.
func NewSnapshot(base map[string]string, override map[string]any) *Snapshot {
	b := make(map[string]string, len(base))
	for k, v := range base {
		b[k] = v
	}

	o := make(map[string]any, len(override))
	for k, v := range override {
		o[k] = v
	}

	return &Snapshot{base: b, override: o}
}

// WithOverride returns a new snapshot sharing the base layer with a
// replaced override layer.
func (s *Snapshot) WithOverride(override map[string]any) *Snapshot {
	return NewSnapshot(s.base, override)
}

// Override returns the current override layer. The returned map must not
// be mutated.
func (s *Snapshot) Override() map[string]any {
	return s.override
}

// Lookup finds varName in the snapshot. Override values win over base
// values. The second return names the layer that supplied the value.
func (s *Snapshot) Lookup(varName string) (any, Origin, bool) {
	if v, ok := s.override[varName]; ok {
		return v, OriginOverride, true
	}
	if v, ok := s.base[varName]; ok {
		return v, OriginEnvironment, true
	}
	return nil, "", false
}

// LoadBase loads every source in order and merges the results, later
// sources taking precedence for colliding keys.
func LoadBase(ctx context.Context, sources []Source) (map[string]string, error) {
	merged := make(map[string]string)

	for i, source := range sources {
		snapshot, err := source.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("source %d load failed: %w", i, err)
		}

		if err := mergo.Merge(&merged, snapshot, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("source %d merge failed: %w", i, err)
		}
	}

	return merged, nil
}
