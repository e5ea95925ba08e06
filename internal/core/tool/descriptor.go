package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"sandtimer.dev/mcp/internal/core/apperr"
)

// BindFunc turns schema-valid argument values into the typed arguments of one tool
type BindFunc func(values map[string]interface{}) (Arguments, error)

// Descriptor is an immutable tool definition
type Descriptor struct {
	name        string
	description string
	schema      Schema
	compiled    *gojsonschema.Schema
	bind        BindFunc
}

// NewDescriptor creates a descriptor and compiles its input schema
func NewDescriptor(name, description string, schema Schema, bind BindFunc) (*Descriptor, error) {
	if name == "" {
		return nil, fmt.Errorf("tool name cannot be empty")
	}
	if bind == nil {
		return nil, fmt.Errorf("tool %s has no binder", name)
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema for tool %s: %w", name, err)
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid schema for tool %s: %w", name, err)
	}

	return &Descriptor{
		name:        name,
		description: description,
		schema:      schema,
		compiled:    compiled,
		bind:        bind,
	}, nil
}

// Name returns the tool name
func (d *Descriptor) Name() string {
	return d.name
}

// Description returns the tool description
func (d *Descriptor) Description() string {
	return d.description
}

// Schema returns the input schema
func (d *Descriptor) Schema() Schema {
	return d.schema
}

// Bind validates raw JSON arguments against the schema and returns the typed
// arguments. Every failure is an *apperr.Error of kind validation.
func (d *Descriptor) Bind(raw json.RawMessage) (Arguments, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var decoded interface{}
	if err := decoder.Decode(&decoded); err != nil {
		return nil, apperr.Validation("arguments for tool %q are not valid JSON", d.name)
	}
	values, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, apperr.Validation("arguments for tool %q must be an object", d.name)
	}

	result, err := d.compiled.Validate(gojsonschema.NewBytesLoader(trimmed))
	if err != nil {
		return nil, apperr.Validation("arguments for tool %q could not be validated", d.name)
	}
	if !result.Valid() {
		return nil, apperr.Validation("%s", d.describeErrors(result.Errors()))
	}

	return d.bind(values)
}

// describeErrors renders schema errors as messages naming the offending parameter
func (d *Descriptor) describeErrors(errs []gojsonschema.ResultError) string {
	messages := make([]string, 0, len(errs))
	seen := make(map[string]bool, len(errs))

	for _, e := range errs {
		msg := d.describeError(e)
		if seen[msg] {
			continue
		}
		seen[msg] = true
		messages = append(messages, msg)
	}

	sort.Strings(messages)
	return strings.Join(messages, "; ")
}

func (d *Descriptor) describeError(e gojsonschema.ResultError) string {
	field := e.Field()

	switch e.Type() {
	case "required":
		if property, ok := e.Details()["property"].(string); ok {
			return fmt.Sprintf("missing required parameter '%s'", property)
		}
	case "invalid_type":
		if p, ok := d.schema.Property(field); ok {
			return fmt.Sprintf("parameter '%s' must be %s", field, article(p.Type))
		}
	case "number_gte":
		if p, ok := d.schema.Property(field); ok && p.Minimum != nil {
			return fmt.Sprintf("parameter '%s' must be >= %d", field, *p.Minimum)
		}
	case "string_gte":
		return fmt.Sprintf("parameter '%s' must be a non-empty string", field)
	}

	return fmt.Sprintf("parameter '%s': %s", field, e.Description())
}

func article(jsonType string) string {
	switch jsonType {
	case "integer":
		return "an integer"
	case "object", "array":
		return "an " + jsonType
	default:
		return "a " + jsonType
	}
}

// requireLabel extracts a non-empty, trimmed label
func requireLabel(values map[string]interface{}, name string) (string, error) {
	raw, ok := values[name]
	if !ok {
		return "", apperr.Validation("missing required parameter '%s'", name)
	}
	label, ok := raw.(string)
	if !ok {
		return "", apperr.Validation("parameter '%s' must be a string", name)
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return "", apperr.Validation("parameter '%s' must be a non-empty string", name)
	}
	return label, nil
}

// requireSeconds extracts an integral number of seconds >= minimum.
// Integral floats such as 300.0 are accepted.
func requireSeconds(values map[string]interface{}, name string, minimum int) (int, error) {
	raw, ok := values[name]
	if !ok {
		return 0, apperr.Validation("missing required parameter '%s'", name)
	}

	var seconds int64
	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			seconds = i
			break
		}
		f, err := v.Float64()
		if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
			return 0, apperr.Validation("parameter '%s' must be an integer", name)
		}
		seconds = int64(f)
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return 0, apperr.Validation("parameter '%s' must be an integer", name)
		}
		seconds = int64(v)
	default:
		return 0, apperr.Validation("parameter '%s' must be an integer", name)
	}

	if seconds < int64(minimum) {
		return 0, apperr.Validation("parameter '%s' must be >= %d", name, minimum)
	}
	if seconds > math.MaxInt32 {
		return 0, apperr.Validation("parameter '%s' is too large", name)
	}

	return int(seconds), nil
}
