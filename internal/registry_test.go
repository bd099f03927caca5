// Package internal provides tests for the entry registry.
package internal

import (
	"context"
	"sync"
	"testing"

	"go.eggybyte.com/confx/errors"
	"go.eggybyte.com/confx/testingx"
)

func newTestRegistry(t *testing.T, base map[string]string, override map[string]any) *RegistryImpl {
	t.Helper()

	reg, err := NewRegistry(testingx.NewMockLogger(t), []Source{NewMapSource(base)}, false)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if err := reg.Initialize(context.Background(), override); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return reg
}

func TestNewRegistry_NilLogger(t *testing.T) {
	_, err := NewRegistry(nil, []Source{NewMapSource(nil)}, false)
	if err == nil {
		t.Fatal("NewRegistry() should return error for nil logger")
	}
}

func TestNewRegistry_EmptySources(t *testing.T) {
	_, err := NewRegistry(testingx.NewMockLogger(t), nil, false)
	if err == nil {
		t.Fatal("NewRegistry() should return error for empty sources")
	}
}

func TestRegistry_DeclareResolvesEagerly(t *testing.T) {
	reg := newTestRegistry(t, map[string]string{"HTTP_PORT": "8080"}, nil)

	if err := reg.Declare(intSpec("port", "HTTP_PORT")); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}

	view, ok := reg.View("port")
	if !ok {
		t.Fatal("View() should find the declared entry")
	}
	if view.State != StateResolved {
		t.Fatalf("State = %v, want resolved", view.State)
	}
	if view.Value != int64(8080) {
		t.Errorf("Value = %v, want 8080", view.Value)
	}
}

func TestRegistry_DeclareRejectsDuplicateName(t *testing.T) {
	reg := newTestRegistry(t, nil, nil)

	if err := reg.Declare(intSpec("port", "HTTP_PORT")); err != nil {
		t.Fatalf("first Declare() error = %v", err)
	}

	err := reg.Declare(intSpec("port", "OTHER_VAR"))
	testingx.AssertError(t, err, errors.CodeDeclaration)

	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (duplicate must not register)", reg.Len())
	}
}

func TestRegistry_DeclareRejectsRequiredWithDefault(t *testing.T) {
	reg := newTestRegistry(t, map[string]string{"HTTP_PORT": "8080"}, nil)

	spec := intSpec("port", "HTTP_PORT")
	spec.Required = true
	spec.Default = int64(9090)

	err := reg.Declare(spec)
	testingx.AssertError(t, err, errors.CodeDeclaration)

	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (invalid spec must not register)", reg.Len())
	}
}

func TestRegistry_DeclareRejectsEmptyName(t *testing.T) {
	reg := newTestRegistry(t, nil, nil)

	err := reg.Declare(intSpec("", "HTTP_PORT"))
	testingx.AssertError(t, err, errors.CodeDeclaration)
}

func TestRegistry_DeclareRejectsMissingDescriptor(t *testing.T) {
	reg := newTestRegistry(t, nil, nil)

	err := reg.Declare(EntrySpec{Name: "port", Var: "HTTP_PORT"})
	testingx.AssertError(t, err, errors.CodeDeclaration)
}

func TestRegistry_ViewsPreserveInsertionOrder(t *testing.T) {
	reg := newTestRegistry(t, nil, nil)

	names := []string{"zeta", "alpha", "mid"}
	for _, name := range names {
		if err := reg.Declare(intSpec(name, "VAR_"+name)); err != nil {
			t.Fatalf("Declare(%s) error = %v", name, err)
		}
	}

	views := reg.Views()
	if len(views) != len(names) {
		t.Fatalf("Views() len = %d, want %d", len(views), len(names))
	}
	for i, name := range names {
		if views[i].Spec.Name != name {
			t.Errorf("views[%d].Name = %q, want %q", i, views[i].Spec.Name, name)
		}
	}
}

func TestRegistry_SetOverrideReresolvesAll(t *testing.T) {
	logger := testingx.NewMockLogger(t)
	reg, err := NewRegistry(logger, []Source{NewMapSource(map[string]string{"HTTP_PORT": "8080"})}, false)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if err := reg.Initialize(context.Background(), nil); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if err := reg.Declare(intSpec("port", "HTTP_PORT")); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}

	reg.SetOverride(map[string]any{"HTTP_PORT": "9090"})

	view, _ := reg.View("port")
	if view.Value != int64(9090) {
		t.Errorf("Value after SetOverride = %v, want 9090", view.Value)
	}
	if view.Origin != OriginOverride {
		t.Errorf("Origin after SetOverride = %v, want override", view.Origin)
	}

	logger.AssertLogged("INFO", "configuration re-resolved")

	// Clearing the override falls back to the environment value.
	reg.SetOverride(nil)
	view, _ = reg.View("port")
	if view.Value != int64(8080) || view.Origin != OriginEnvironment {
		t.Errorf("Value after clearing = %v (%v), want 8080 (environment)", view.Value, view.Origin)
	}
}

func TestRegistry_SetOverrideFlipsFailureToSuccess(t *testing.T) {
	reg := newTestRegistry(t, nil, nil)

	spec := intSpec("port", "HTTP_PORT")
	spec.Required = true
	if err := reg.Declare(spec); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}

	view, _ := reg.View("port")
	if view.State != StateFailed {
		t.Fatalf("State = %v, want failed before override", view.State)
	}

	reg.SetOverride(map[string]any{"HTTP_PORT": "8080"})

	view, _ = reg.View("port")
	if view.State != StateResolved {
		t.Fatalf("State = %v, want resolved after override", view.State)
	}
	if view.Err != nil {
		t.Errorf("Err should be cleared after successful re-resolution, got %v", view.Err)
	}
}

func TestRegistry_RefreshReloadsBase(t *testing.T) {
	backing := map[string]string{"HTTP_PORT": "8080"}
	source := &mutableSource{values: backing}

	reg, err := NewRegistry(testingx.NewMockLogger(t), []Source{source}, false)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if err := reg.Initialize(context.Background(), nil); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := reg.Declare(intSpec("port", "HTTP_PORT")); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}

	source.set("HTTP_PORT", "9191")

	// Base is read once; nothing changes until an explicit refresh.
	view, _ := reg.View("port")
	if view.Value != int64(8080) {
		t.Fatalf("Value before Refresh = %v, want 8080", view.Value)
	}

	if err := reg.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	view, _ = reg.View("port")
	if view.Value != int64(9191) {
		t.Errorf("Value after Refresh = %v, want 9191", view.Value)
	}
}

func TestRegistry_DeferredMode(t *testing.T) {
	reg, err := NewRegistry(testingx.NewMockLogger(t), []Source{NewMapSource(map[string]string{"HTTP_PORT": "8080"})}, true)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if err := reg.Initialize(context.Background(), nil); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if err := reg.Declare(intSpec("port", "HTTP_PORT")); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}

	view, _ := reg.View("port")
	if view.State != StatePending {
		t.Fatalf("State = %v, want pending before ResolveAll", view.State)
	}

	reg.ResolveAll()

	view, _ = reg.View("port")
	if view.State != StateResolved {
		t.Fatalf("State = %v, want resolved after ResolveAll", view.State)
	}
	if view.Value != int64(8080) {
		t.Errorf("Value = %v, want 8080", view.Value)
	}
}

func TestRegistry_ConcurrentDeclareAndRead(t *testing.T) {
	reg := newTestRegistry(t, map[string]string{"HTTP_PORT": "8080"}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		name := string(rune('a' + i))

		go func(name string) {
			defer wg.Done()
			_ = reg.Declare(intSpec(name, "HTTP_PORT"))
		}(name)

		go func() {
			defer wg.Done()
			for _, view := range reg.Views() {
				// A reader must never observe a half-updated cell: a
				// resolved view carries a value, a failed view an error.
				switch view.State {
				case StateResolved:
					if view.Err != nil {
						t.Error("resolved view must not carry an error")
					}
				case StateFailed:
					if view.Err == nil {
						t.Error("failed view must carry an error")
					}
				}
			}
		}()
	}

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg.SetOverride(map[string]any{"HTTP_PORT": "9090"})
		}(i)
	}

	wg.Wait()

	if reg.Len() != 8 {
		t.Errorf("Len() = %d, want 8", reg.Len())
	}
}

// mutableSource is a map source whose backing values can change between
// loads, simulating an environment refresh.
type mutableSource struct {
	mu     sync.Mutex
	values map[string]string
}

func (s *mutableSource) Load(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	config := make(map[string]string, len(s.values))
	for k, v := range s.values {
		config[k] = v
	}
	return config, nil
}

func (s *mutableSource) set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}
