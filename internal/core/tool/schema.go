package tool

import (
	"bytes"
	"encoding/json"
)

// Property describes one parameter of a tool
type Property struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Minimum     *int
	MinLength   *int
}

type propertyJSON struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Minimum     *int   `json:"minimum,omitempty"`
	MinLength   *int   `json:"minLength,omitempty"`
}

// Schema is a JSON schema for an object whose properties keep declaration order
type Schema struct {
	Properties []Property
}

// Property returns the declared property with the given name
func (s Schema) Property(name string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Required returns the names of required properties in declaration order
func (s Schema) Required() []string {
	required := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return required
}

// MarshalJSON renders the schema with properties in declaration order
func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)

	for i, p := range s.Properties {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(propertyJSON{
			Type:        p.Type,
			Description: p.Description,
			Minimum:     p.Minimum,
			MinLength:   p.MinLength,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')

	required, err := json.Marshal(s.Required())
	if err != nil {
		return nil, err
	}
	buf.WriteString(`,"required":`)
	buf.Write(required)
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func intPtr(v int) *int {
	return &v
}
