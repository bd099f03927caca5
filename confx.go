package confx

import (
	"context"
	"fmt"

	"go.eggybyte.com/confx/internal"
	"go.eggybyte.com/confx/log"
)

// Source describes a provider of raw configuration values.
// Implementations must be safe for concurrent use.
type Source interface {
	// Load reads the current key-value snapshot of the source.
	Load(ctx context.Context) (map[string]string, error)
}

// Options holds configuration for a registry.
type Options struct {
	Logger   log.Logger     // Logger for registry operations (default: no-op)
	Sources  []Source       // Base sources, later sources override earlier ones (default: process environment)
	Override map[string]any // Initial override layer; values may already be typed
	Defer    bool           // Register entries without resolving until ResolveAll
}

// Registry is the process-wide, insertion-ordered catalog of declared
// configuration entries. It is safe for concurrent use.
type Registry struct {
	impl *internal.RegistryImpl
}

// New creates a registry and loads its base sources once.
//
// Parameters:
//   - ctx: context for the initial source load
//   - opts: registry configuration options
//
// Returns:
//   - *Registry: initialized registry
//   - error: initialization error if any
func New(ctx context.Context, opts Options) (*Registry, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Noop()
	}

	sources := opts.Sources
	if len(sources) == 0 {
		sources = []Source{NewEnvSource(EnvOptions{})}
	}

	// Convert sources to internal type
	internalSources := make([]internal.Source, len(sources))
	for i, src := range sources {
		internalSources[i] = src
	}

	impl, err := internal.NewRegistry(logger, internalSources, opts.Defer)
	if err != nil {
		return nil, err
	}

	if err := impl.Initialize(ctx, opts.Override); err != nil {
		return nil, err
	}

	return &Registry{impl: impl}, nil
}

// Declare validates and registers a new entry, resolving it immediately
// unless the registry was created with Defer. The returned handle stays
// bound to the live entry across re-resolutions.
func (r *Registry) Declare(spec Spec) (*Handle, error) {
	if spec.Var == "" {
		spec.Var = deriveVar(spec.Name)
	}
	if spec.Descriptor == nil {
		spec.Descriptor = String
	}

	err := r.impl.Declare(internal.EntrySpec{
		Name:       spec.Name,
		Var:        spec.Var,
		Info:       spec.Info,
		Required:   spec.Required,
		Default:    spec.Default,
		Secret:     spec.Secret,
		Descriptor: spec.Descriptor,
	})
	if err != nil {
		return nil, err
	}

	return &Handle{impl: r.impl, name: spec.Name}, nil
}

// MustDeclare is like Declare but panics on declaration errors. Intended
// for package-level entry declarations where a broken spec is a bug.
func (r *Registry) MustDeclare(spec Spec) *Handle {
	handle, err := r.Declare(spec)
	if err != nil {
		panic(fmt.Sprintf("confx: %v", err))
	}
	return handle
}

// ResolveAll resolves every registered entry against the current
// snapshot. In deferred mode this performs the first resolution.
func (r *Registry) ResolveAll() {
	r.impl.ResolveAll()
}

// SetOverride replaces the override layer and re-resolves every entry
// in insertion order. Concurrent readers see each entry's fully-old or
// fully-new outcome, never a mix.
func (r *Registry) SetOverride(override map[string]any) {
	r.impl.SetOverride(override)
}

// Refresh reloads the base sources, keeps the current override layer,
// and re-resolves every entry.
func (r *Registry) Refresh(ctx context.Context) error {
	return r.impl.Refresh(ctx)
}

// Validate aggregates every currently-failed entry into one error.
// Returns nil when every entry resolved.
func (r *Registry) Validate() error {
	return internal.Validate(r.impl.Views())
}

// Show renders the secret-redacting, one-line-per-entry report of every
// declared entry in insertion order.
func (r *Registry) Show() string {
	return internal.Show(r.impl.Views())
}

// Entries returns read-only structured records for every entry in
// insertion order.
func (r *Registry) Entries() []Entry {
	views := r.impl.Views()
	entries := make([]Entry, len(views))
	for i, v := range views {
		entries[i] = entryFromView(v)
	}
	return entries
}

// --- Public wrappers for source constructors (delegating to internal) ---

// EnvOptions configures environment variable source behavior.
type EnvOptions struct {
	Prefix    string // Prefix filter for environment variables (e.g., "APP_")
	Lowercase bool   // Convert keys to lowercase
	Uppercase bool   // Convert keys to uppercase
}

// NewEnvSource creates an environment variable source.
func NewEnvSource(opts EnvOptions) Source {
	return internal.NewEnvSource(internal.EnvOptions{
		Prefix:    opts.Prefix,
		Lowercase: opts.Lowercase,
		Uppercase: opts.Uppercase,
	})
}

// NewMapSource creates a static map-backed source for tests and tooling.
func NewMapSource(values map[string]string) Source {
	return internal.NewMapSource(values)
}
