// Package internal provides internal implementation details for confx.
//
// Overview:
//   - Responsibility: Own the process-wide catalog of declared entries
//   - Key Types: RegistryImpl with insertion-ordered entry cells
//   - Concurrency Model: One RWMutex guards snapshot and all entry cells
//   - Error Semantics: Declaration failures return *errors.E and register nothing
//   - Performance Notes: Resolution is synchronous and in-memory, no I/O after Initialize
package internal

import (
	"context"
	"fmt"
	"sync"

	"go.eggybyte.com/confx/errors"
	"go.eggybyte.com/confx/log"
)

// RegistryImpl implements the configuration entry registry.
type RegistryImpl struct {
	logger   log.Logger
	sources  []Source
	deferred bool

	mu     sync.RWMutex
	snap   *Snapshot
	order  []*entryCell
	byName map[string]*entryCell
}

// entryCell is the mutable cell owned by the registry for one entry.
// The outcome is replaced wholesale under the registry write lock.
type entryCell struct {
	spec    EntrySpec
	outcome outcome
}

// NewRegistry creates a new registry. Initialize must be called before
// declarations are resolved.
func NewRegistry(logger log.Logger, sources []Source, deferred bool) (*RegistryImpl, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("at least one source is required")
	}

	return &RegistryImpl{
		logger:   logger,
		sources:  sources,
		deferred: deferred,
		byName:   make(map[string]*entryCell),
	}, nil
}

// Initialize loads the base sources once and installs the initial
// snapshot with the given override layer.
func (r *RegistryImpl) Initialize(ctx context.Context, override map[string]any) error {
	base, err := LoadBase(ctx, r.sources)
	if err != nil {
		return fmt.Errorf("failed to load base sources: %w", err)
	}

	r.mu.Lock()
	r.snap = NewSnapshot(base, override)
	r.mu.Unlock()

	r.logger.Info("configuration sources loaded", log.Int("keys", len(base)))
	return nil
}

// Declare validates and registers a new entry. Unless the registry runs
// in deferred mode, the entry is resolved immediately against the current
// snapshot.
func (r *RegistryImpl) Declare(spec EntrySpec) error {
	if err := checkSpec(spec); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[spec.Name]; exists {
		return errors.New(errors.CodeDeclaration, spec.Name, spec.Var, "entry already declared")
	}

	cell := &entryCell{spec: spec}
	if !r.deferred {
		cell.outcome = resolve(spec, r.snapLocked())
	}

	r.order = append(r.order, cell)
	r.byName[spec.Name] = cell

	r.logger.Debug("entry declared",
		log.Str("name", spec.Name),
		log.Str("var", spec.Var),
		log.Bool("required", spec.Required))

	if cell.outcome.state == StateFailed {
		r.logger.Warn("entry failed to resolve",
			log.Str("name", spec.Name),
			log.Str("var", spec.Var),
			log.Str("code", string(cell.outcome.err.Code)))
	}

	return nil
}

// checkSpec rejects invalid declarations before anything is registered.
func checkSpec(spec EntrySpec) error {
	if spec.Name == "" {
		return errors.New(errors.CodeDeclaration, spec.Name, spec.Var, "entry name is empty")
	}
	if spec.Descriptor == nil {
		return errors.New(errors.CodeDeclaration, spec.Name, spec.Var, "entry has no type descriptor")
	}
	if spec.Required && spec.Default != nil {
		return errors.New(errors.CodeDeclaration, spec.Name, spec.Var, "required entry cannot carry a default")
	}
	return nil
}

// ResolveAll resolves every registered entry in insertion order against
// the current snapshot. In deferred mode this performs the first
// resolution.
func (r *RegistryImpl) ResolveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolveAllLocked()
}

// SetOverride replaces the override layer and re-resolves every entry.
func (r *RegistryImpl) SetOverride(override map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snap = r.snapLocked().WithOverride(override)
	r.resolveAllLocked()
}

// Refresh reloads the base sources, rebuilds the snapshot keeping the
// current override layer, and re-resolves every entry.
func (r *RegistryImpl) Refresh(ctx context.Context) error {
	base, err := LoadBase(ctx, r.sources)
	if err != nil {
		return fmt.Errorf("failed to reload base sources: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.snap = NewSnapshot(base, r.snapLocked().Override())
	r.resolveAllLocked()
	return nil
}

// resolveAllLocked re-runs the resolver for every entry. Each cell's
// outcome is replaced in one assignment so concurrent readers, which
// take the read lock, only ever see a fully-old or fully-new outcome.
func (r *RegistryImpl) resolveAllLocked() {
	failed := 0
	snap := r.snapLocked()
	for _, cell := range r.order {
		cell.outcome = resolve(cell.spec, snap)
		if cell.outcome.state == StateFailed {
			failed++
		}
	}

	r.logger.Info("configuration re-resolved",
		log.Int("entries", len(r.order)),
		log.Int("failed", failed))
}

// snapLocked returns the active snapshot, or an empty one if Initialize
// has not run yet. Callers must hold the lock.
func (r *RegistryImpl) snapLocked() *Snapshot {
	if r.snap == nil {
		r.snap = NewSnapshot(nil, nil)
	}
	return r.snap
}

// View returns a read-only copy of one entry's current state.
func (r *RegistryImpl) View(name string) (EntryView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cell, ok := r.byName[name]
	if !ok {
		return EntryView{}, false
	}
	return cell.view(), true
}

// Views returns read-only copies of every entry in insertion order.
func (r *RegistryImpl) Views() []EntryView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	views := make([]EntryView, len(r.order))
	for i, cell := range r.order {
		views[i] = cell.view()
	}
	return views
}

// Len returns the number of registered entries.
func (r *RegistryImpl) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (c *entryCell) view() EntryView {
	return EntryView{
		Spec:   c.spec,
		State:  c.outcome.state,
		Value:  c.outcome.value,
		Origin: c.outcome.origin,
		Raw:    c.outcome.raw,
		Err:    c.outcome.err,
	}
}
