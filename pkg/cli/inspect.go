package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/swaggerstub/pkg/cli/internal/output"
	"github.com/getmockd/swaggerstub/pkg/config"
	"github.com/getmockd/swaggerstub/pkg/contract"
)

// InspectOutput describes one contract.
type InspectOutput struct {
	Contract   string                      `json:"contract"`
	Title      string                      `json:"title"`
	Version    contract.Version            `json:"version"`
	BasePath   string                      `json:"basePath"`
	Operations []contract.OperationSummary `json:"operations"`
}

func newInspectCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <contract>...",
		Short: "List the operations defined by contracts",
		Long: `List the operations defined by one or more contracts.

Arguments may be doublestar globs such as 'specs/**/*.yaml'.`,
		Example: `  swaggerstub inspect petstore.yaml
  swaggerstub inspect 'specs/**/*.{yaml,json}' --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := config.ExpandContracts(args)
			if err != nil {
				return err
			}

			results := make([]InspectOutput, 0, len(paths))
			for _, p := range paths {
				c, err := contract.LoadFile(p)
				if err != nil {
					return err
				}
				if len(c.Operations()) == 0 {
					output.Warn(cmd.ErrOrStderr(), "%s defines no operations", p)
				}
				results = append(results, InspectOutput{
					Contract:   p,
					Title:      c.Title(),
					Version:    c.Version(),
					BasePath:   c.BasePath(),
					Operations: c.Summary(),
				})
			}

			w := cmd.OutOrStdout()
			var tableErr error
			err = printResult(g, w, results, func() {
				for i, r := range results {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "%s (%s, %s)\n", r.Title, r.Contract, r.Version)

					rows := make([][]string, 0, len(r.Operations))
					for _, op := range r.Operations {
						rows = append(rows, []string{op.Method, op.Path, op.OperationID, joinStatuses(op.Statuses)})
					}
					if err := output.Table(w, []string{"Method", "Path", "Operation", "Statuses"}, rows); err != nil && tableErr == nil {
						tableErr = err
					}
				}
			})
			if err != nil {
				return err
			}
			return tableErr
		},
	}
}

func joinStatuses(codes []int) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}
