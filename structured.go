package confx

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// JSON creates a structured descriptor whose raw values use literal
// JSON syntax. The raw string is deserialized into a fresh copy of the
// prototype and then conformed against `validate` struct tags.
//
// The prototype may be a struct, a pointer to struct, or a map. When it
// is a pointer, resolved values are pointers too.
//
//	type Limits struct {
//		MaxConns int `json:"max_conns" validate:"min=1"`
//	}
//	spec := confx.Spec{Name: "limits", Descriptor: confx.JSON(Limits{})}
func JSON(prototype any) Descriptor {
	return newStructured("json", prototype, json.Marshal, json.Unmarshal)
}

// YAML creates a structured descriptor whose raw values use block-style
// YAML syntax. Deserialization and conformance mirror JSON with the
// yaml codec and `yaml` field tags.
func YAML(prototype any) Descriptor {
	return newStructured("yaml", prototype, yaml.Marshal, yaml.Unmarshal)
}

// structured deserializes raw payloads with one of the two grammar
// codecs, then conforms the result with a shared validator instance.
type structured struct {
	kind      string
	elem      reflect.Type // prototype's base (non-pointer) type
	wantPtr   bool         // prototype was a pointer
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
	validate  *validator.Validate
}

func newStructured(kind string, prototype any, marshal func(any) ([]byte, error), unmarshal func([]byte, any) error) Descriptor {
	t := reflect.TypeOf(prototype)
	if t == nil {
		panic("confx: structured descriptor prototype must be non-nil")
	}

	wantPtr := false
	if t.Kind() == reflect.Pointer {
		wantPtr = true
		t = t.Elem()
	}

	return structured{
		kind:      kind,
		elem:      t,
		wantPtr:   wantPtr,
		marshal:   marshal,
		unmarshal: unmarshal,
		validate:  validator.New(),
	}
}

// Kind returns the grammar family name.
func (d structured) Kind() string {
	return d.kind
}

// Parse deserializes the raw payload and conforms the result. The error
// names the failed stage so diagnostics can tell a syntax error from a
// shape mismatch.
func (d structured) Parse(raw string) (any, error) {
	target := reflect.New(d.elem)
	if err := d.unmarshal([]byte(raw), target.Interface()); err != nil {
		return nil, fmt.Errorf("deserialize %s: %w", d.kind, err)
	}

	if err := d.check(target.Interface()); err != nil {
		return nil, fmt.Errorf("conform: %w", err)
	}

	return d.result(target), nil
}

// Conform shape-checks an already-typed value, skipping deserialization.
// Values that are not already the prototype type are reshaped through
// the grammar's codec first.
func (d structured) Conform(value any) (any, error) {
	if value == nil {
		return nil, fmt.Errorf("conform: nil value")
	}

	// Already the prototype type: conform directly. A typed-nil pointer
	// carries no value to conform and is rejected like untyped nil.
	t := reflect.TypeOf(value)
	if t == d.elem || (t.Kind() == reflect.Pointer && t.Elem() == d.elem) {
		if t.Kind() == reflect.Pointer && reflect.ValueOf(value).IsNil() {
			return nil, fmt.Errorf("conform: nil value")
		}
		if err := d.check(value); err != nil {
			return nil, fmt.Errorf("conform: %w", err)
		}
		return d.normalize(value), nil
	}

	// Otherwise reshape (e.g. a map injected by dev tooling) through the
	// codec and conform the result.
	data, err := d.marshal(value)
	if err != nil {
		return nil, fmt.Errorf("reshape %s: %w", d.kind, err)
	}

	target := reflect.New(d.elem)
	if err := d.unmarshal(data, target.Interface()); err != nil {
		return nil, fmt.Errorf("reshape %s: %w", d.kind, err)
	}

	if err := d.check(target.Interface()); err != nil {
		return nil, fmt.Errorf("conform: %w", err)
	}

	return d.result(target), nil
}

// check runs validator tags for struct shapes. Non-struct prototypes
// (maps, slices) have no tag-based shape to enforce.
func (d structured) check(value any) error {
	if d.elem.Kind() != reflect.Struct {
		return nil
	}
	return d.validate.Struct(value)
}

// result converts the freshly-built *T into the prototype's shape.
func (d structured) result(target reflect.Value) any {
	if d.wantPtr {
		return target.Interface()
	}
	return target.Elem().Interface()
}

// normalize aligns an accepted value's pointerness with the prototype's.
func (d structured) normalize(value any) any {
	t := reflect.TypeOf(value)
	switch {
	case d.wantPtr && t.Kind() != reflect.Pointer:
		ptr := reflect.New(d.elem)
		ptr.Elem().Set(reflect.ValueOf(value))
		return ptr.Interface()
	case !d.wantPtr && t.Kind() == reflect.Pointer:
		return reflect.ValueOf(value).Elem().Interface()
	default:
		return value
	}
}
