package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/json2vars-setter/json2vars/config"
	"github.com/json2vars-setter/json2vars/internal/logger"
	"github.com/json2vars-setter/json2vars/internal/output"
	"github.com/json2vars-setter/json2vars/internal/settings"
)

var version = "0.1.0"

// NewRootCmd builds the json2vars command tree. Flag defaults come from st.
func NewRootCmd(st *settings.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "json2vars",
		Short:   "Parse and validate build matrix configuration files",
		Version: version,
		Long: `json2vars reads a JSON build matrix (operating systems, per-ecosystem
version lists and a GitHub Pages branch), validates it and hands it on:
printed as JSON, YAML or text, or exported as GitHub Actions step outputs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Bool("strict", st.Strict, "reject unknown and duplicate keys (env JSON2VARS_STRICT)")
	flags.Bool("no-color", st.ColorDisabled(), "disable colored output (env NO_COLOR)")
	flags.String("log-level", st.LogLevel, "diagnostics level: debug, info, warn, error (env JSON2VARS_LOG_LEVEL)")

	rootCmd.AddCommand(newParseCmd(st))
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newOutputsCmd(st))
	rootCmd.AddCommand(newSchemaCmd())

	return rootCmd
}

// Execute runs the CLI against the process arguments and environment.
// It is called by main.main().
func Execute() error {
	st, err := settings.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", output.ErrorIcon(true), err)
		return err
	}

	rootCmd := NewRootCmd(st)
	if err := rootCmd.Execute(); err != nil {
		noColor, _ := rootCmd.PersistentFlags().GetBool("no-color")
		fmt.Fprintf(rootCmd.ErrOrStderr(), "%s %v\n", output.ErrorIcon(noColor || !output.IsTerminal(os.Stderr)), err)
		return err
	}
	return nil
}

// runtime is what every subcommand needs, resolved from persistent flags.
type runtime struct {
	parser  *config.Parser
	log     zerolog.Logger
	noColor bool
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	strict, _ := cmd.Flags().GetBool("strict")
	noColor, _ := cmd.Flags().GetBool("no-color")
	logLevel, _ := cmd.Flags().GetString("log-level")

	if !noColor {
		if f, ok := cmd.OutOrStdout().(*os.File); !ok || !output.IsTerminal(f) {
			noColor = true
		}
	}

	log, err := logger.New(cmd.ErrOrStderr(), logLevel, noColor)
	if err != nil {
		return nil, err
	}

	return &runtime{
		parser:  config.NewParser(config.WithStrict(strict), config.WithLogger(log)),
		log:     log,
		noColor: noColor,
	}, nil
}
