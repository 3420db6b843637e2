// Package cli provides the command-line interface for swaggerstub.
//
// The cli package implements commands for working with API contracts outside
// of a Go test:
//   - inspect: List the operations of one or more contracts
//   - examples: Print the generated example for each named type
//   - resolve: Run a single request through a fresh stub and print the answer
//   - validate: Check a configuration file and every contract it references
//   - version: Show swaggerstub version
//
// Every command accepts --json for machine-readable output and --log-level /
// --log-format to control diagnostics written to stderr.
package cli
