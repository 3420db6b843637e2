package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/getmockd/swaggerstub/pkg/config"
	"github.com/getmockd/swaggerstub/pkg/contract"
)

// ValidateOutput is the JSON result of the validate command.
type ValidateOutput struct {
	Config  string           `json:"config"`
	Valid   bool             `json:"valid"`
	Targets []ValidateTarget `json:"targets"`
}

// ValidateTarget reports one validated target.
type ValidateTarget struct {
	BaseURL    string `json:"baseUrl"`
	Contract   string `json:"contract"`
	Title      string `json:"title,omitempty"`
	Operations int    `json:"operations"`
	Error      string `json:"error,omitempty"`
}

func newValidateCommand(g *globalFlags) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file and the contracts it references",
		Long: `Validate a swaggerstub configuration file without running anything.

This command checks:
  - YAML/JSON syntax
  - Schema validation (required fields, valid values)
  - Base URLs (absolute http/https, one target per scheme and host)
  - Every referenced contract loads and is a valid OpenAPI document

If -f is not given, SWAGGERSTUB_CONFIG or ./swaggerstub.yaml is used.`,
		Example: `  # Validate config in current directory
  swaggerstub validate

  # Validate a specific config file
  swaggerstub validate -f ./stubs/swaggerstub.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				configFile = os.Getenv("SWAGGERSTUB_CONFIG")
			}
			if configFile == "" {
				configFile = "swaggerstub.yaml"
			}

			cfg, err := config.LoadFromFile(configFile)
			if err != nil {
				return err
			}
			cfg.ApplyEnv()
			log := g.logger(cmd.ErrOrStderr())

			out := ValidateOutput{Config: configFile, Valid: true}
			for _, t := range cfg.Targets {
				vt := ValidateTarget{BaseURL: t.BaseURL, Contract: t.Contract}
				c, err := contract.LoadFile(t.Contract, contract.WithValidation(), contract.WithDocumentPath(cfg.ContractPath))
				if err != nil {
					vt.Error = err.Error()
					out.Valid = false
					log.Debug("contract failed validation", "contract", t.Contract, "error", err)
				} else {
					vt.Title = c.Title()
					vt.Operations = len(c.Operations())
				}
				out.Targets = append(out.Targets, vt)
			}

			w := cmd.OutOrStdout()
			if err := printResult(g, w, out, func() {
				for _, t := range out.Targets {
					if t.Error != "" {
						fmt.Fprintf(w, "FAIL  %s  %s\n      %s\n", t.BaseURL, filepath.Base(t.Contract), t.Error)
						continue
					}
					fmt.Fprintf(w, "ok    %s  %s (%d operations)\n", t.BaseURL, filepath.Base(t.Contract), t.Operations)
				}
			}); err != nil {
				return err
			}

			if !out.Valid {
				return fmt.Errorf("%s: %w", configFile, config.ErrInvalidConfig)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "f", "", "Config file path")
	return cmd
}
