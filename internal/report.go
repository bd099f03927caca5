// Package internal provides internal implementation details for confx.
//
// Overview:
//   - Responsibility: Aggregate validation and human-readable reporting
//   - Key Types: Validate multi-error aggregation, Show line renderer
//   - Concurrency Model: Operates on read-only entry views
//   - Error Semantics: Validate surfaces every failed entry in one error
//   - Performance Notes: One pass over the registry per call
package internal

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"go.eggybyte.com/confx/errors"
)

// Validate collects every entry currently in a failed state into one
// aggregate error. Returns nil when every entry resolved. Entries that
// are still pending (deferred mode before ResolveAll) produce a single
// error naming the pending state rather than guessing per-entry results.
func Validate(views []EntryView) error {
	var pending int
	var errs []error

	for _, v := range views {
		switch v.State {
		case StateFailed:
			errs = append(errs, v.Err)
		case StatePending:
			pending++
		}
	}

	if pending > 0 {
		errs = append(errs, fmt.Errorf("%d entries not resolved yet: call ResolveAll first", pending))
	}

	return multierr.Combine(errs...)
}

// Show renders one line per entry in insertion order. Secret entries
// never display their raw or typed value, in success or failure paths.
func Show(views []EntryView) string {
	var b strings.Builder

	for i, v := range views {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderLine(v))
	}

	return b.String()
}

// renderLine produces the per-entry report line:
//
//	name: value from VAR in source // info
//	name: nil because VAR is not set // info
//	name: <not loaded> because VAR is required and not set
//	name: <not loaded> because VAR has invalid value "raw": detail
//
// Secret entries always render <SECRET> in the value slot.
func renderLine(v EntryView) string {
	var line string

	switch v.State {
	case StatePending:
		line = fmt.Sprintf("%s: <unresolved> because resolution is deferred", v.Spec.Name)
	case StateResolved:
		if v.Value == nil && v.Origin == OriginDefault && !hasDefault(v) {
			line = fmt.Sprintf("%s: %s because %s is not set", v.Spec.Name, valueSlot(v, "nil"), v.Spec.Var)
		} else {
			line = fmt.Sprintf("%s: %s from %s in %s", v.Spec.Name, valueSlot(v, formatValue(v.Value)), v.Spec.Var, v.Origin)
		}
	case StateFailed:
		line = fmt.Sprintf("%s: %s because %s", v.Spec.Name, valueSlot(v, "<not loaded>"), failureReason(v))
	}

	if v.Spec.Info != "" {
		line += " // " + v.Spec.Info
	}
	return line
}

// valueSlot substitutes <SECRET> for the rendered value of secret entries.
func valueSlot(v EntryView, rendered string) string {
	if v.Spec.Secret {
		return "<SECRET>"
	}
	return rendered
}

// failureReason explains a failed entry without leaking secret input.
func failureReason(v EntryView) string {
	switch {
	case v.Err == nil:
		return v.Spec.Var + " failed to resolve"
	case v.Err.Code == errors.CodeRequiredNotPresent:
		return v.Spec.Var + " is required and not set"
	case v.Spec.Secret:
		return v.Spec.Var + " has an invalid value"
	case v.Raw != nil:
		detail := v.Err.Msg
		if v.Err.Err != nil {
			detail += ": " + v.Err.Err.Error()
		}
		return fmt.Sprintf("%s has %s", v.Spec.Var, detail)
	default:
		return fmt.Sprintf("%s: %s", v.Spec.Var, v.Err.Msg)
	}
}

func hasDefault(v EntryView) bool {
	return v.Spec.Default != nil
}

func formatValue(value any) string {
	if value == nil {
		return "nil"
	}
	switch value.(type) {
	case string:
		return fmt.Sprintf("%q", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
