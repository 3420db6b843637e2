package contract

import (
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ExampleResponses returns, for the operation at (path, action), an example
// body keyed by each declared status code in 100..599. Explicit examples are
// preferred over generated ones. A response without a schema maps to nil.
// When only a default response is declared it is reported under 200.
func (c *Contract) ExampleResponses(path, action string) (map[int]interface{}, error) {
	op, err := c.Operation(path, action)
	if err != nil {
		return nil, err
	}

	out := make(map[int]interface{})
	if op.Operation.Responses == nil {
		return out, nil
	}

	var fallback *openapi3.ResponseRef
	for key, ref := range op.Operation.Responses.Map() {
		if key == "default" {
			fallback = ref
			continue
		}
		code, ok := statusCode(key)
		if !ok {
			continue
		}
		out[code] = c.responseExample(op, key, ref)
	}
	if len(out) == 0 && fallback != nil {
		out[http.StatusOK] = c.responseExample(op, "default", fallback)
	}
	return out, nil
}

// CanonicalResponse picks the example with the numerically smallest status.
func CanonicalResponse(examples map[int]interface{}) (int, interface{}, bool) {
	if len(examples) == 0 {
		return 0, nil, false
	}
	codes := make([]int, 0, len(examples))
	for code := range examples {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes[0], examples[codes[0]], true
}

func (c *Contract) responseExample(op *Operation, key string, ref *openapi3.ResponseRef) interface{} {
	if ref == nil || ref.Value == nil {
		return nil
	}

	if c.version == VersionSwagger2 {
		if ex, ok := c.swagger2Example(op, key); ok {
			return normalizeJSON(ex)
		}
	}

	mt := pickMediaType(ref.Value.Content)
	if mt == nil {
		return nil
	}
	if mt.Example != nil {
		return normalizeJSON(mt.Example)
	}
	if len(mt.Examples) > 0 {
		names := make([]string, 0, len(mt.Examples))
		for name := range mt.Examples {
			names = append(names, name)
		}
		sort.Strings(names)
		if ex := mt.Examples[names[0]]; ex != nil && ex.Value != nil && ex.Value.Value != nil {
			return normalizeJSON(ex.Value.Value)
		}
	}
	if mt.Schema == nil {
		return nil
	}
	return Example(mt.Schema)
}

// swagger2Example reads responses.<code>.examples from the source document,
// which openapi2conv does not carry into the converted media types.
func (c *Contract) swagger2Example(op *Operation, key string) (interface{}, bool) {
	examples, ok := lookup(c.source, "paths", op.PathTemplate, strings.ToLower(op.Method), "responses", key, "examples").(map[string]interface{})
	if !ok || len(examples) == 0 {
		return nil, false
	}
	if ex, ok := examples[mimeJSON]; ok {
		return ex, true
	}
	mimes := make([]string, 0, len(examples))
	for m := range examples {
		mimes = append(mimes, m)
	}
	sort.Strings(mimes)
	return examples[mimes[0]], true
}

func lookup(v interface{}, keys ...string) interface{} {
	for _, k := range keys {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}

func pickMediaType(content openapi3.Content) *openapi3.MediaType {
	if len(content) == 0 {
		return nil
	}
	if mt := content.Get(mimeJSON); mt != nil {
		return mt
	}
	mimes := make([]string, 0, len(content))
	for m := range content {
		mimes = append(mimes, m)
	}
	sort.Strings(mimes)
	return content[mimes[0]]
}

func buildDefinitions(doc *openapi3.T) map[string]interface{} {
	defs := make(map[string]interface{})
	if doc.Components == nil {
		return defs
	}
	for name, ref := range doc.Components.Schemas {
		defs[name] = Example(ref)
	}
	return defs
}
