package internal

import (
	"fmt"
	"slices"
)

// Field types accepted by the schema validator.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// Property declares a single body field: its basic type and whether it
// may be omitted.
type Property struct {
	Type     string
	Optional bool
}

// Schema is a one-level-deep declarative description of a request
// body. It is deliberately non-recursive: values are checked against
// basic types only, and unknown fields always pass through silently.
// That permissiveness is a contract, not a gap.
type Schema struct {
	Properties map[string]Property
}

// Object builds an object schema from property declarations.
func Object(properties map[string]Property) *Schema {
	return &Schema{Properties: properties}
}

// Required declares a required property of the given type.
func Required(fieldType string) Property {
	return Property{Type: fieldType}
}

// Optional declares an optional property of the given type.
func Optional(fieldType string) Property {
	return Property{Type: fieldType, Optional: true}
}

// Validate checks data against the schema and returns every violation
// found. A nil schema accepts anything. Only declared properties are
// inspected; errors accumulate rather than failing fast.
func (s *Schema) Validate(data map[string]any) []string {
	if s == nil {
		return nil
	}

	// Stable order keeps error output deterministic across adapters.
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	slices.Sort(names)

	var errs []string
	for _, name := range names {
		prop := s.Properties[name]
		value, present := data[name]
		if !present || value == nil {
			if !prop.Optional {
				errs = append(errs, fmt.Sprintf("%s is required", name))
			}
			continue
		}
		if !matchesType(value, prop.Type) {
			errs = append(errs, fmt.Sprintf("%s must be of type %s", name, prop.Type))
		}
	}
	return errs
}

// matchesType checks a decoded value against a basic schema type.
// Numeric JSON values decode as float64; form values arrive as strings
// and only ever satisfy the string type.
func matchesType(value any, fieldType string) bool {
	switch fieldType {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		switch value.(type) {
		case float64, int, int64:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeArray:
		_, ok := value.([]any)
		return ok
	}
	return false
}
