// Package contract loads API contracts (Swagger 2.0 or OpenAPI 3.x, as JSON or
// YAML) and answers the questions the resolver asks about them:
//
//   - does (path, action) name a defined operation?
//   - is a request's body and query valid for that operation?
//   - what example body does the operation return for each status code?
//   - what does an example of each named type look like?
//
// Swagger 2.0 documents are converted to OpenAPI 3 with kin-openapi's
// openapi2conv; validation runs through openapi3filter. The document as loaded
// is kept (as JSON) so it can be served back verbatim.
//
// Example generation is deterministic so tests can assert on it: explicit
// examples win, then the first enum value, then the default, then a value built
// from the schema type (integers are 42, numbers 5.5, strings "string",
// booleans false, arrays hold one item).
package contract
