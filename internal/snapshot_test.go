// Package internal provides tests for snapshot construction and lookup.
package internal

import (
	"context"
	"testing"
)

func TestSnapshot_LookupPrecedence(t *testing.T) {
	snap := NewSnapshot(
		map[string]string{"HTTP_PORT": "8080", "LOG_LEVEL": "info"},
		map[string]any{"HTTP_PORT": "9090"},
	)

	tests := []struct {
		name       string
		varName    string
		wantValue  any
		wantOrigin Origin
		wantFound  bool
	}{
		{
			name:       "override wins over base",
			varName:    "HTTP_PORT",
			wantValue:  "9090",
			wantOrigin: OriginOverride,
			wantFound:  true,
		},
		{
			name:       "base only",
			varName:    "LOG_LEVEL",
			wantValue:  "info",
			wantOrigin: OriginEnvironment,
			wantFound:  true,
		},
		{
			name:      "absent",
			varName:   "MISSING",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, origin, found := snap.Lookup(tt.varName)
			if found != tt.wantFound {
				t.Fatalf("Lookup() found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			if value != tt.wantValue {
				t.Errorf("Lookup() value = %v, want %v", value, tt.wantValue)
			}
			if origin != tt.wantOrigin {
				t.Errorf("Lookup() origin = %v, want %v", origin, tt.wantOrigin)
			}
		})
	}
}

func TestSnapshot_TypedOverrideValue(t *testing.T) {
	snap := NewSnapshot(nil, map[string]any{"HTTP_PORT": 9090})

	value, origin, found := snap.Lookup("HTTP_PORT")
	if !found {
		t.Fatal("Lookup() should find typed override value")
	}
	if value != 9090 {
		t.Errorf("Lookup() value = %v, want 9090", value)
	}
	if origin != OriginOverride {
		t.Errorf("Lookup() origin = %v, want override", origin)
	}
}

func TestSnapshot_CopiesInputMaps(t *testing.T) {
	base := map[string]string{"KEY": "old"}
	override := map[string]any{}

	snap := NewSnapshot(base, override)

	base["KEY"] = "mutated"
	override["KEY"] = "injected"

	value, origin, found := snap.Lookup("KEY")
	if !found {
		t.Fatal("Lookup() should find KEY")
	}
	if value != "old" {
		t.Errorf("Snapshot should be immune to caller mutations, got %v", value)
	}
	if origin != OriginEnvironment {
		t.Errorf("Origin = %v, want environment", origin)
	}
}

func TestSnapshot_WithOverride(t *testing.T) {
	snap := NewSnapshot(map[string]string{"KEY": "base"}, map[string]any{"KEY": "first"})
	next := snap.WithOverride(map[string]any{"KEY": "second"})

	if v, _, _ := snap.Lookup("KEY"); v != "first" {
		t.Errorf("Original snapshot changed, got %v", v)
	}
	if v, _, _ := next.Lookup("KEY"); v != "second" {
		t.Errorf("New snapshot override = %v, want second", v)
	}

	// Replacing the override with an empty map falls back to the base.
	cleared := snap.WithOverride(nil)
	if v, origin, _ := cleared.Lookup("KEY"); v != "base" || origin != OriginEnvironment {
		t.Errorf("Cleared override lookup = %v (%v), want base (environment)", v, origin)
	}
}

func TestLoadBase_MergesLastWins(t *testing.T) {
	sources := []Source{
		NewMapSource(map[string]string{"A": "1", "B": "1"}),
		NewMapSource(map[string]string{"B": "2", "C": "2"}),
	}

	merged, err := LoadBase(context.Background(), sources)
	if err != nil {
		t.Fatalf("LoadBase() error = %v", err)
	}

	want := map[string]string{"A": "1", "B": "2", "C": "2"}
	if len(merged) != len(want) {
		t.Fatalf("LoadBase() len = %d, want %d", len(merged), len(want))
	}
	for k, v := range want {
		if merged[k] != v {
			t.Errorf("merged[%s] = %q, want %q", k, merged[k], v)
		}
	}
}

func TestLoadBase_SourceError(t *testing.T) {
	sources := []Source{
		NewMapSource(map[string]string{"A": "1"}),
		failingSource{},
	}

	if _, err := LoadBase(context.Background(), sources); err == nil {
		t.Fatal("LoadBase() should propagate source errors")
	}
}

type failingSource struct{}

func (failingSource) Load(ctx context.Context) (map[string]string, error) {
	return nil, context.DeadlineExceeded
}
