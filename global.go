package confx

import (
	"context"
	"sync"
)

var (
	defaultMu  sync.Mutex
	defaultReg *Registry
)

// Default returns the process-wide registry, creating it on first use
// with the process environment as the only base source and a no-op
// logger. Use SetDefault to install a registry with custom options
// before any package-level declarations run.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultReg == nil {
		reg, err := New(context.Background(), Options{})
		if err != nil {
			// The environment source cannot fail to load; reaching this
			// indicates a programming error.
			panic("confx: default registry init: " + err.Error())
		}
		defaultReg = reg
	}

	return defaultReg
}

// SetDefault replaces the process-wide registry. Entries declared on
// the previous default are not carried over.
func SetDefault(r *Registry) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultReg = r
}

// Declare registers an entry on the default registry.
func Declare(spec Spec) (*Handle, error) {
	return Default().Declare(spec)
}

// MustDeclare registers an entry on the default registry, panicking on
// declaration errors.
func MustDeclare(spec Spec) *Handle {
	return Default().MustDeclare(spec)
}

// ResolveAll resolves every entry on the default registry.
func ResolveAll() {
	Default().ResolveAll()
}

// SetOverride replaces the default registry's override layer and
// re-resolves every entry.
func SetOverride(override map[string]any) {
	Default().SetOverride(override)
}

// Refresh reloads the default registry's base sources and re-resolves.
func Refresh(ctx context.Context) error {
	return Default().Refresh(ctx)
}

// Validate aggregates every failed entry on the default registry.
func Validate() error {
	return Default().Validate()
}

// Show renders the default registry's entry report.
func Show() string {
	return Default().Show()
}

// Entries returns the default registry's entry records.
func Entries() []Entry {
	return Default().Entries()
}
