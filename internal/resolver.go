// Package internal provides internal implementation details for confx.
//
// Overview:
//   - Responsibility: Resolve one entry against one snapshot
//   - Key Types: resolve function producing an outcome
//   - Concurrency Model: Pure function of its inputs; callers serialize writes
//   - Error Semantics: Every failure is a structured *errors.E, never a panic
//   - Performance Notes: Resolution is a map lookup plus one coercion pass
package internal

import (
	"go.eggybyte.com/confx/errors"
)

// resolve applies the precedence rules for one entry: snapshot lookup,
// then default, then required-missing. Raw string input goes through the
// descriptor's Parse; typed override input goes through Conform only.
func resolve(spec EntrySpec, snap *Snapshot) outcome {
	raw, origin, ok := snap.Lookup(spec.Var)
	if ok {
		if s, isString := raw.(string); isString {
			return parseRaw(spec, s, origin)
		}
		return conformTyped(spec, raw, origin)
	}

	if spec.Default != nil {
		// A string default is coerced like source input; a typed default
		// is used as-is.
		if s, isString := spec.Default.(string); isString {
			return parseRaw(spec, s, OriginDefault)
		}
		return outcome{state: StateResolved, value: spec.Default, origin: OriginDefault}
	}

	if spec.Required {
		return outcome{
			state: StateFailed,
			err:   requiredErr(spec),
		}
	}

	// Absent and optional: treated as a present-but-nil default.
	return outcome{state: StateResolved, value: nil, origin: OriginDefault}
}

// parseRaw coerces a raw string through the entry's descriptor.
func parseRaw(spec EntrySpec, raw string, origin Origin) outcome {
	value, err := spec.Descriptor.Parse(raw)
	if err != nil {
		return outcome{
			state: StateFailed,
			raw:   &raw,
			err:   invalidErr(spec, raw, err),
		}
	}
	return outcome{state: StateResolved, value: value, origin: origin, raw: &raw}
}

// conformTyped shape-checks an already-typed override value, skipping
// deserialization.
func conformTyped(spec EntrySpec, value any, origin Origin) outcome {
	conformed, err := spec.Descriptor.Conform(value)
	if err != nil {
		return outcome{
			state: StateFailed,
			err:   invalidTypedErr(spec, err),
		}
	}
	return outcome{state: StateResolved, value: conformed, origin: origin}
}

func requiredErr(spec EntrySpec) *errors.E {
	e := errors.New(errors.CodeRequiredNotPresent, spec.Name, spec.Var, "required and not set")
	return e.(*errors.E)
}

// invalidErr builds the InvalidValue error for a raw string input.
// Secret entries never leak the raw value or the underlying parse error,
// which may quote the input.
func invalidErr(spec EntrySpec, raw string, cause error) *errors.E {
	if spec.Secret {
		e := errors.New(errors.CodeInvalidValue, spec.Name, spec.Var, "invalid value <SECRET>")
		return e.(*errors.E)
	}
	e := errors.Wrap(errors.CodeInvalidValue, spec.Name, spec.Var, "invalid value "+quote(raw), cause)
	return e.(*errors.E)
}

// invalidTypedErr builds the InvalidValue error for a typed override that
// failed shape conformance.
func invalidTypedErr(spec EntrySpec, cause error) *errors.E {
	if spec.Secret {
		e := errors.New(errors.CodeInvalidValue, spec.Name, spec.Var, "override value <SECRET> does not conform")
		return e.(*errors.E)
	}
	e := errors.Wrap(errors.CodeInvalidValue, spec.Name, spec.Var, "override value does not conform", cause)
	return e.(*errors.E)
}

func quote(s string) string {
	return `"` + s + `"`
}
