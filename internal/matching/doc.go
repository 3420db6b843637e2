// Package matching provides the path and body matching algorithms shared by the
// contract and the test fixture.
//
// It covers:
//
//   - Path template matching: exact paths and {name} parameter segments, scored so
//     that a literal template wins over a parameterised one
//   - Path variable extraction for matched templates
//   - JSONPath evaluation over decoded request bodies, with type-aware comparison
//
// Score constants are defined in path.go.
package matching
