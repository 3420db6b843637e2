package contract

import (
	"encoding/json"

	"github.com/getkin/kin-openapi/openapi3"
)

// Deterministic scalar values used when a schema carries no example.
const (
	exampleInteger = 42
	exampleNumber  = 5.5
	exampleString  = "string"
)

var formatExamples = map[string]string{
	"date":      "2017-07-21",
	"date-time": "2017-07-21T17:32:28Z",
	"email":     "user@example.com",
	"uuid":      "3fa85f64-5717-4562-b3fc-2c963f66afa6",
	"uri":       "https://example.com",
	"url":       "https://example.com",
	"hostname":  "example.com",
	"ipv4":      "192.0.2.1",
	"byte":      "U3dhZ2dlciByb2Nrcw==",
	"password":  "********",
}

// generator builds example values from schemas. The active set breaks
// reference cycles: a schema already being expanded yields nil.
type generator struct {
	active map[*openapi3.Schema]bool
}

func newGenerator() *generator {
	return &generator{active: make(map[*openapi3.Schema]bool)}
}

// Example produces a JSON-shaped example for a schema.
func Example(ref *openapi3.SchemaRef) interface{} {
	return normalizeJSON(newGenerator().value(ref))
}

func (g *generator) value(ref *openapi3.SchemaRef) interface{} {
	if ref == nil || ref.Value == nil {
		return nil
	}
	s := ref.Value

	if s.Example != nil {
		return s.Example
	}
	if len(s.Enum) > 0 {
		return s.Enum[0]
	}
	if s.Default != nil {
		return s.Default
	}

	if g.active[s] {
		return nil
	}
	g.active[s] = true
	defer delete(g.active, s)

	switch {
	case len(s.AllOf) > 0:
		return g.allOf(s)
	case len(s.OneOf) > 0:
		return g.value(s.OneOf[0])
	case len(s.AnyOf) > 0:
		return g.value(s.AnyOf[0])
	}

	switch schemaType(s) {
	case openapi3.TypeInteger:
		if s.Min != nil && *s.Min > exampleInteger {
			return int64(*s.Min)
		}
		return exampleInteger
	case openapi3.TypeNumber:
		if s.Min != nil && *s.Min > exampleNumber {
			return *s.Min
		}
		return exampleNumber
	case openapi3.TypeBoolean:
		return false
	case openapi3.TypeString:
		if v, ok := formatExamples[s.Format]; ok {
			return v
		}
		return exampleString
	case openapi3.TypeArray:
		return g.array(s)
	case openapi3.TypeObject:
		return g.object(s)
	}
	return nil
}

func (g *generator) array(s *openapi3.Schema) interface{} {
	n := 1
	if s.MinItems > 1 {
		n = int(s.MinItems)
	}
	if s.MaxItems != nil && uint64(n) > *s.MaxItems {
		n = int(*s.MaxItems)
	}

	items := make([]interface{}, 0, n)
	if s.Items == nil {
		return items
	}
	for i := 0; i < n; i++ {
		v := g.value(s.Items)
		if v == nil {
			break
		}
		items = append(items, v)
	}
	return items
}

func (g *generator) object(s *openapi3.Schema) interface{} {
	obj := make(map[string]interface{}, len(s.Properties))
	for name, prop := range s.Properties {
		if v := g.value(prop); v != nil {
			obj[name] = v
		}
	}
	return obj
}

func (g *generator) allOf(s *openapi3.Schema) interface{} {
	merged := make(map[string]interface{})
	var last interface{}
	for _, part := range s.AllOf {
		v := g.value(part)
		if obj, ok := v.(map[string]interface{}); ok {
			for k, pv := range obj {
				merged[k] = pv
			}
			continue
		}
		if v != nil {
			last = v
		}
	}
	if len(s.Properties) > 0 {
		if obj, ok := g.object(s).(map[string]interface{}); ok {
			for k, pv := range obj {
				merged[k] = pv
			}
		}
	}
	if len(merged) == 0 && last != nil {
		return last
	}
	return merged
}

// schemaType returns the declared type, inferring object or array from
// properties or items when the type is omitted.
func schemaType(s *openapi3.Schema) string {
	if s.Type != nil {
		for _, t := range s.Type.Slice() {
			if t != "null" {
				return t
			}
		}
	}
	switch {
	case len(s.Properties) > 0:
		return openapi3.TypeObject
	case s.Items != nil:
		return openapi3.TypeArray
	}
	return ""
}

// normalizeJSON round-trips a value through encoding/json so callers always
// see map[string]interface{}, []interface{}, float64, string, bool or nil.
func normalizeJSON(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
