package confx

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Descriptor converts raw configuration input into a typed value.
// Parse handles raw strings from the environment or string defaults;
// Conform shape-checks already-typed values injected through the
// override layer.
type Descriptor interface {
	// Kind names the descriptor's shape for introspection and reports.
	Kind() string

	// Parse converts a raw string into a typed value.
	Parse(raw string) (any, error)

	// Conform checks an already-typed value against the descriptor's
	// shape, coercing it where the shape allows.
	Conform(value any) (any, error)
}

// Ident is the value type produced by the Keyword descriptor: a
// symbolic identifier carried as a distinct string type.
type Ident string

// Primitive descriptors. Int produces int64, Double produces float64,
// Keyword produces Ident.
var (
	String  Descriptor = primitive{kind: "string"}
	Int     Descriptor = primitive{kind: "int"}
	Double  Descriptor = primitive{kind: "double"}
	Keyword Descriptor = primitive{kind: "keyword"}
	Bool    Descriptor = primitive{kind: "bool"}
)

type primitive struct {
	kind string
}

// Kind returns the primitive kind name.
func (p primitive) Kind() string {
	return p.kind
}

// Parse coerces a raw string to the primitive's value type.
func (p primitive) Parse(raw string) (any, error) {
	switch p.kind {
	case "string":
		return raw, nil
	case "int":
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse int: %w", err)
		}
		return v, nil
	case "double":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse double: %w", err)
		}
		return v, nil
	case "keyword":
		return parseIdent(raw)
	case "bool":
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("parse bool: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown primitive kind %q", p.kind)
	}
}

// Conform accepts values that already carry the primitive's type, plus
// lossless numeric conversions for int and double.
func (p primitive) Conform(value any) (any, error) {
	switch p.kind {
	case "string":
		if s, ok := value.(string); ok {
			return s, nil
		}
	case "int":
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case int64:
			return v, nil
		case float64:
			// math.MaxInt64 rounds up to 2^63 as a float64, so the upper
			// bound is exclusive.
			if v < math.MinInt64 || v >= math.MaxInt64 {
				return nil, fmt.Errorf("expected int, %v out of range", v)
			}
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("expected int, got fractional %v", v)
			}
			return int64(v), nil
		}
	case "double":
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
	case "keyword":
		switch v := value.(type) {
		case Ident:
			return v, nil
		case string:
			return parseIdent(v)
		}
	case "bool":
		if b, ok := value.(bool); ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", p.kind, value)
}

// parseIdent converts a non-empty string into an Ident. A leading colon
// is stripped so ":redis" and "redis" produce the same identifier.
// Validation is deliberately permissive: anything non-empty without
// whitespace qualifies.
func parseIdent(raw string) (any, error) {
	s := strings.TrimPrefix(raw, ":")
	if s == "" {
		return nil, fmt.Errorf("parse keyword: empty identifier")
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return nil, fmt.Errorf("parse keyword: %q contains whitespace", raw)
	}
	return Ident(s), nil
}
