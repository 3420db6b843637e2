package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaValidator validates decoded documents against a compiled JSON Schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles schemaJSON under the given resource name.
func NewSchemaValidator(name, schemaJSON string) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(name, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate checks doc against the schema. doc may be any Go value; it is
// normalised through JSON first so YAML-decoded maps validate the same way.
func (v *SchemaValidator) Validate(doc interface{}) *Result {
	result := Valid()

	data, err := json.Marshal(doc)
	if err != nil {
		result.AddError(&FieldError{
			Location: LocationDocument,
			Code:     ErrCodeInvalidJSON,
			Message:  fmt.Sprintf("document is not JSON-encodable: %v", err),
		})
		return result
	}

	var normalized interface{}
	if err := json.Unmarshal(data, &normalized); err != nil {
		result.AddError(&FieldError{
			Location: LocationDocument,
			Code:     ErrCodeInvalidJSON,
			Message:  err.Error(),
		})
		return result
	}

	if err := v.schema.Validate(normalized); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			parseSchemaErrors(validationErr, result)
		} else {
			result.AddError(&FieldError{
				Location: LocationDocument,
				Code:     ErrCodeSchema,
				Message:  err.Error(),
			})
		}
	}

	return result
}

// parseSchemaErrors extracts detailed errors from JSON Schema validation
func parseSchemaErrors(err *jsonschema.ValidationError, result *Result) {
	if len(err.Causes) == 0 {
		result.AddError(NewSchemaError(extractFieldFromPath(err.InstanceLocation), LocationDocument, err.Message))
		return
	}

	for _, cause := range err.Causes {
		parseSchemaErrors(cause, result)
	}
}

// extractFieldFromPath extracts field name from JSON Pointer path
func extractFieldFromPath(path string) string {
	if path == "" || path == "/" {
		return ""
	}
	path = strings.TrimPrefix(path, "/")
	return strings.ReplaceAll(path, "/", ".")
}
