package tool

import (
	"encoding/json"
	"fmt"

	"sandtimer.dev/mcp/internal/core/apperr"
)

// Registry is the static catalog of invocable tools
type Registry struct {
	tools  []*Descriptor
	byName map[string]*Descriptor
}

// NewRegistry creates a registry; tool names must be unique
func NewRegistry(descriptors ...*Descriptor) (*Registry, error) {
	r := &Registry{
		tools:  make([]*Descriptor, 0, len(descriptors)),
		byName: make(map[string]*Descriptor, len(descriptors)),
	}

	for _, d := range descriptors {
		if d == nil {
			return nil, fmt.Errorf("nil tool descriptor")
		}
		if _, exists := r.byName[d.Name()]; exists {
			return nil, fmt.Errorf("duplicate tool name: %s", d.Name())
		}
		r.tools = append(r.tools, d)
		r.byName[d.Name()] = d
	}

	return r, nil
}

// Lookup returns the descriptor registered under name
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// List returns all descriptors in registration order
func (r *Registry) List() []*Descriptor {
	list := make([]*Descriptor, len(r.tools))
	copy(list, r.tools)
	return list
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	return len(r.tools)
}

// Resolve looks up the tool and validates its arguments. Unknown tools are
// rejected before any validation takes place.
func (r *Registry) Resolve(name string, raw json.RawMessage) (*Descriptor, Arguments, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, nil, apperr.UnknownTool(name)
	}

	args, err := d.Bind(raw)
	if err != nil {
		return d, nil, err
	}

	return d, args, nil
}
