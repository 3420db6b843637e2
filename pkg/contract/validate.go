package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"

	"github.com/getmockd/swaggerstub/pkg/validation"
)

const (
	mimeJSON = "application/json"
	mimeForm = "application/x-www-form-urlencoded"
)

// ValidateRequest checks a parsed request against the operation at (path,
// action): path parameter types, query parameters and the request body.
// Security requirements are not enforced.
func (c *Contract) ValidateRequest(ctx context.Context, path, action string, body interface{}, query map[string]string) *validation.Result {
	result := validation.Valid()

	op, err := c.Operation(path, action)
	if err != nil {
		result.AddError(&validation.FieldError{
			Location: validation.LocationPath,
			Code:     validation.ErrCodeNoRoute,
			Message:  err.Error(),
		})
		return result
	}

	form := op.bodyEncoding() == mimeForm
	if form {
		op.validateFormBody(body, result)
		body = nil
	}

	req, err := op.buildRequest(ctx, path, body, query)
	if err != nil {
		result.AddError(&validation.FieldError{
			Location: validation.LocationBody,
			Code:     validation.ErrCodeInvalidJSON,
			Message:  err.Error(),
		})
		return result
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: op.PathParams(path),
		Route: &routers.Route{
			Spec:      c.doc,
			Path:      op.PathTemplate,
			PathItem:  op.PathItem,
			Method:    op.Method,
			Operation: op.Operation,
		},
		Options: &openapi3filter.Options{
			MultiError:         true,
			ExcludeRequestBody: form,
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}

	if err := openapi3filter.ValidateRequest(ctx, input); err != nil {
		parseRequestErrors(err, result)
	}
	return result
}

// validateFormBody checks a form body against the form media type schema.
// Form values arrive as strings and are coerced to the declared property
// types first; absent fields stay absent.
func (op *Operation) validateFormBody(body interface{}, result *validation.Result) {
	rb := op.Operation.RequestBody.Value
	mt := rb.Content.Get(mimeForm)
	if mt == nil {
		mt = rb.Content.Get("multipart/form-data")
	}
	var schema *openapi3.Schema
	if mt != nil && mt.Schema != nil {
		schema = mt.Schema.Value
	}

	if body == nil {
		// a form with required fields cannot be absent
		if rb.Required || (schema != nil && len(schema.Required) > 0) {
			result.AddError(validation.NewRequiredError("body", validation.LocationBody))
		}
		return
	}
	if schema == nil {
		return
	}

	obj, ok := body.(map[string]interface{})
	if !ok {
		result.AddError(validation.NewSchemaError("", validation.LocationBody, "form body must be an object"))
		return
	}
	if err := schema.VisitJSON(coerceForm(obj, schema), openapi3.MultiErrors()); err != nil {
		parseRequestErrors(err, result)
	}
}

// coerceForm converts string values to the type their property declares.
// Values that do not convert are left as strings for the schema to reject.
func coerceForm(obj map[string]interface{}, schema *openapi3.Schema) map[string]interface{} {
	out := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		out[k] = v
		prop := schema.Properties[k]
		if prop == nil || prop.Value == nil {
			continue
		}
		if str, ok := v.(string); ok {
			out[k] = coerceFormValue(str, prop.Value)
		}
	}
	return out
}

func coerceFormValue(v string, s *openapi3.Schema) interface{} {
	switch schemaType(s) {
	case openapi3.TypeInteger:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return float64(n)
		}
	case openapi3.TypeNumber:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case openapi3.TypeBoolean:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	case openapi3.TypeArray:
		if s.Items != nil && s.Items.Value != nil {
			return []interface{}{coerceFormValue(v, s.Items.Value)}
		}
		return []interface{}{v}
	}
	return v
}

// buildRequest synthesises an *http.Request carrying the parsed body as JSON.
// Form bodies are validated separately and never reach it.
func (op *Operation) buildRequest(ctx context.Context, path string, body interface{}, query map[string]string) (*http.Request, error) {
	u := url.URL{Scheme: "http", Host: "contract.invalid", Path: path}
	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		u.RawQuery = values.Encode()
	}

	var (
		payload     io.Reader = http.NoBody
		contentType string
	)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		payload = bytes.NewReader(data)
		contentType = mimeJSON
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, u.String(), payload)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (op *Operation) bodyEncoding() string {
	rb := op.Operation.RequestBody
	if rb == nil || rb.Value == nil || len(rb.Value.Content) == 0 {
		return mimeJSON
	}
	if rb.Value.Content.Get(mimeJSON) != nil {
		return mimeJSON
	}
	if rb.Value.Content.Get(mimeForm) != nil || rb.Value.Content.Get("multipart/form-data") != nil {
		return mimeForm
	}
	return mimeJSON
}

// parseRequestErrors converts kin-openapi errors to FieldErrors.
func parseRequestErrors(err error, result *validation.Result) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, e := range multi {
			parseRequestErrors(e, result)
		}
		return
	}

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		fe := &validation.FieldError{
			Code:    validation.ErrCodeContract,
			Message: reqErr.Error(),
		}

		switch {
		case reqErr.Parameter != nil:
			fe.Field = reqErr.Parameter.Name
			fe.Code = validation.ErrCodeParameter
			switch reqErr.Parameter.In {
			case openapi3.ParameterInPath:
				fe.Location = validation.LocationPath
			case openapi3.ParameterInQuery:
				fe.Location = validation.LocationQuery
			case openapi3.ParameterInHeader:
				fe.Location = validation.LocationHeader
			default:
				fe.Location = reqErr.Parameter.In
			}
		default:
			fe.Location = validation.LocationBody
		}

		if reqErr.Err != nil {
			fe.Message = reqErr.Err.Error()
			var schemaErr *openapi3.SchemaError
			if errors.As(reqErr.Err, &schemaErr) {
				if p := formatJSONPath(schemaErr.JSONPointer()); p != "" && fe.Field == "" {
					fe.Field = p
				}
				fe.Message = schemaErr.Reason
				fe.Code = validation.ErrCodeSchema
			}
		}

		result.AddError(fe)
		return
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		result.AddError(validation.NewSchemaError(formatJSONPath(schemaErr.JSONPointer()), validation.LocationBody, schemaErr.Reason))
		return
	}

	result.AddError(&validation.FieldError{
		Code:    validation.ErrCodeContract,
		Message: err.Error(),
	})
}

// formatJSONPath renders ["tags", "0", "name"] as tags[0].name.
func formatJSONPath(parts []string) string {
	var sb strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		if isIndex(part) {
			sb.WriteString("[" + part + "]")
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func isIndex(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
