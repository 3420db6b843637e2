package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/swaggerstub/pkg/logging"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	logLevel   string
	logFormat  string
	jsonOutput bool
}

// logger builds the command logger. Diagnostics always go to stderr so that
// stdout carries only results.
func (g *globalFlags) logger(stderr io.Writer) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(g.logLevel),
		Format: logging.ParseFormat(g.logFormat),
		Output: stderr,
	})
}

// NewRootCommand builds the command tree. Each call returns an independent
// tree, so commands can be executed repeatedly in one process.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "swaggerstub",
		Short: "swaggerstub answers HTTP calls from a Swagger/OpenAPI contract",
		Long: `swaggerstub is a contract-driven HTTP test double.

Given a Swagger 2.0 or OpenAPI 3 document it validates requests against the
contract and answers them with the example response of the matching
operation. In Go tests use the pkg/testing fixture; this command line tool
inspects contracts and tries out requests.`,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
	}

	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().BoolVar(&g.jsonOutput, "json", false, "Output command results in JSON format")

	root.AddCommand(
		newInspectCommand(g),
		newExamplesCommand(g),
		newResolveCommand(g),
		newValidateCommand(g),
		newVersionCommand(g),
	)
	return root
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// Execute runs the CLI with the process arguments and exits on failure.
// This is called by main.main().
func Execute() {
	if code := Run(os.Args[1:], os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}
