package confx

import (
	"strings"
	"unicode"

	"go.eggybyte.com/confx/errors"
	"go.eggybyte.com/confx/internal"
)

// Spec declares one configuration entry.
//
// Var defaults to a SCREAMING_SNAKE_CASE derivation of Name, so an
// entry named "databaseURL" reads "DATABASE_URL". Default may be a raw
// string, which is coerced like source input, or a typed value, which
// is used as-is. A required entry cannot also carry a default.
type Spec struct {
	Name       string     // Entry name, unique within a registry
	Var        string     // Source variable name; derived from Name when empty
	Info       string     // Optional description shown in reports
	Required   bool       // Entry must be present in some layered source
	Default    any        // Value used when the variable is absent; nil means none
	Descriptor Descriptor // Value type; nil means String
	Secret     bool       // Redact the value in reports and errors
}

// Origin identifies which layer supplied an entry's value.
type Origin string

// Provenance layers, in precedence order.
const (
	OriginEnvironment Origin = "environment"
	OriginOverride    Origin = "override"
	OriginDefault     Origin = "default"
)

// Entry is a read-only structured record of one declared entry's
// current state, exposed for introspection tooling. Secret entries
// carry a redacted Raw.
type Entry struct {
	Name     string
	Var      string
	Info     string
	Required bool
	Secret   bool
	Resolved bool   // false while failed or pending
	Source   Origin // layer that supplied the value, empty unless resolved
	Value    any    // nil unless resolved
	Raw      string // pre-coercion input, empty when none was consulted
	Err      error  // *errors.E when failed, nil otherwise
}

// NotLoaded is the sentinel returned by Handle.Value for entries that
// failed to resolve. Referencing a failed entry's value therefore does
// not crash; the failure surfaces when Validate is checked.
type NotLoaded struct {
	Code   errors.Code
	Detail string
}

// String implements fmt.Stringer.
func (n *NotLoaded) String() string {
	if n.Code == "" {
		return "<not loaded: pending>"
	}
	return "<not loaded: " + string(n.Code) + ": " + n.Detail + ">"
}

// Handle is a live accessor bound to one registry entry. It reads
// through the registry's cell, so re-resolution is observed without
// re-declaring.
type Handle struct {
	impl *internal.RegistryImpl
	name string
}

// Value returns the entry's materialized value. For failed or pending
// entries it returns a *NotLoaded sentinel instead of panicking.
func (h *Handle) Value() any {
	view, ok := h.impl.View(h.name)
	if !ok {
		return &NotLoaded{Detail: "entry not registered"}
	}

	switch view.State {
	case internal.StateResolved:
		return view.Value
	case internal.StateFailed:
		return &NotLoaded{Code: view.Err.Code, Detail: view.Err.Msg}
	default:
		return &NotLoaded{Detail: "resolution is deferred"}
	}
}

// Err returns the entry's current resolution error, or nil.
func (h *Handle) Err() error {
	view, ok := h.impl.View(h.name)
	if !ok || view.Err == nil {
		return nil
	}
	return view.Err
}

// Source returns the layer that supplied the entry's value. Empty
// unless the entry is resolved.
func (h *Handle) Source() Origin {
	view, ok := h.impl.View(h.name)
	if !ok || view.State != internal.StateResolved {
		return ""
	}
	return Origin(view.Origin)
}

// Entry returns the full structured record for the entry.
func (h *Handle) Entry() Entry {
	view, ok := h.impl.View(h.name)
	if !ok {
		return Entry{Name: h.name}
	}
	return entryFromView(view)
}

// entryFromView converts an internal view into the public record,
// redacting secret raw input.
func entryFromView(v internal.EntryView) Entry {
	e := Entry{
		Name:     v.Spec.Name,
		Var:      v.Spec.Var,
		Info:     v.Spec.Info,
		Required: v.Spec.Required,
		Secret:   v.Spec.Secret,
		Resolved: v.State == internal.StateResolved,
		Source:   Origin(v.Origin),
	}

	if v.State == internal.StateResolved {
		e.Value = v.Value
	}
	if v.Err != nil {
		e.Err = v.Err
	}
	if v.Raw != nil {
		if v.Spec.Secret {
			e.Raw = "<SECRET>"
		} else {
			e.Raw = *v.Raw
		}
	}

	return e
}

// deriveVar transforms an entry name into its default source variable
// name: camel-case boundaries become underscores, separators become
// underscores, and the result is upper-cased. "databaseURL" derives
// "DATABASE_URL", "db.pool-size" derives "DB_POOL_SIZE".
func deriveVar(name string) string {
	var b strings.Builder
	runes := []rune(name)

	for i, r := range runes {
		switch {
		case r == '.' || r == '-' || r == ' ' || r == '/':
			b.WriteByte('_')
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}

	return b.String()
}
