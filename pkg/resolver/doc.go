// Package resolver decides how an intercepted request is answered.
//
// Resolution is strictly ordered and the first applicable rule wins:
//
//  1. the body is parsed as JSON, then as a form; an unparseable body is a 400
//  2. the reserved document path returns the contract document
//  3. an explicit mock for (action, path)
//  4. a side effect for (action, path)
//  5. an undefined operation is a 400 for POST and a 404 otherwise
//  6. an invalid request is a 400
//  7. the example response with the smallest status code
//
// Every rule except 1, 2 and scripted side-effect failures appends one record
// to the ledger's call history.
package resolver
