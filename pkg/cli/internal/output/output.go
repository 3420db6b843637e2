// Package output provides common output formatting utilities.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// JSON writes indented JSON to w.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table renders rows under header as a bordered table.
func Table(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	cols := make([]any, len(header))
	for i, h := range header {
		cols[i] = h
	}
	table.Header(cols...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

// Warn prints a warning message to w.
func Warn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "Warning: "+format+"\n", args...)
}
