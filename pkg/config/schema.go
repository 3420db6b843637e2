package config

import (
	_ "embed"
	"sync"

	"github.com/getmockd/swaggerstub/pkg/validation"
)

//go:embed config.schema.json
var schemaJSON string

var (
	schemaOnce      sync.Once
	schemaValidator *validation.SchemaValidator
	schemaErr       error
)

// ValidateDocument checks a decoded configuration document against the
// embedded JSON Schema.
func ValidateDocument(doc interface{}) *validation.Result {
	schemaOnce.Do(func() {
		schemaValidator, schemaErr = validation.NewSchemaValidator("swaggerstub.schema.json", schemaJSON)
	})
	if schemaErr != nil {
		result := validation.Valid()
		result.AddError(&validation.FieldError{
			Location: validation.LocationDocument,
			Code:     validation.ErrCodeSchema,
			Message:  schemaErr.Error(),
		})
		return result
	}
	return schemaValidator.Validate(doc)
}
