// Package validation holds the validation result types shared across the stub
// and a JSON Schema validator for structured documents.
//
// Contract validation (pkg/contract) reports request violations as a Result made
// of FieldErrors, each tagged with the location of the offending value (path,
// query, body). Configuration loading (pkg/config) uses SchemaValidator to check
// a decoded config document against its embedded JSON Schema before any semantic
// checks run.
//
// # Basic Usage
//
//	v, err := validation.NewSchemaValidator("config.json", schemaJSON)
//	if err != nil {
//	    return err
//	}
//	result := v.Validate(document)
//	if !result.Valid {
//	    for _, e := range result.Errors {
//	        fmt.Println(e.Error())
//	    }
//	}
package validation
