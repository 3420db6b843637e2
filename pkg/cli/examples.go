package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/swaggerstub/pkg/cli/internal/output"
	"github.com/getmockd/swaggerstub/pkg/contract"
)

func newExamplesCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "examples <contract> [type]",
		Short: "Print the generated example for each named type",
		Long: `Print the example payload swaggerstub generates for the named types of a
contract (Swagger definitions or OpenAPI component schemas). With a type
argument only that example is printed. Output is always JSON.`,
		Example: `  swaggerstub examples petstore.yaml
  swaggerstub examples petstore.yaml Pet`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := contract.LoadFile(args[0])
			if err != nil {
				return err
			}

			defs := c.Definitions()
			if len(args) == 1 {
				return output.JSON(cmd.OutOrStdout(), defs)
			}

			example, ok := defs[args[1]]
			if !ok {
				return fmt.Errorf("%w %q (known: %v)", ErrUnknownType, args[1], c.DefinitionNames())
			}
			return output.JSON(cmd.OutOrStdout(), example)
		},
	}
}
