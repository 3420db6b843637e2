package cli

import (
	"io"

	"github.com/getmockd/swaggerstub/pkg/cli/internal/output"
)

// printResult outputs a single operation result.
//
// Contract: when --json is active, ONLY the JSON encoding of data is written
// to stdout. Human-readable prose must go to stderr or be omitted entirely.
// textFn is called only in text mode.
func printResult(g *globalFlags, w io.Writer, data any, textFn func()) error {
	if g.jsonOutput {
		return output.JSON(w, data)
	}
	textFn()
	return nil
}
