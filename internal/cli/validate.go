package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/json2vars-setter/json2vars/config"
	"github.com/json2vars-setter/json2vars/internal/output"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check one or more matrix files",
		Long: `Check matrix files and report every problem found.
In tolerant mode, files with unrecognized top-level keys pass with a warning.
The command fails if any file is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		cfg, err := rt.parser.Parse(path)
		if err == nil {
			ignored := cfg.Ignored()
			if rt.parser.Strict() || len(ignored) == 0 {
				fmt.Fprintf(out, "%s %s: %d os, %d ecosystems\n",
					output.SuccessIcon(rt.noColor), path, len(cfg.OS()), len(cfg.Ecosystems()))
				continue
			}
			fmt.Fprintf(out, "%s %s: %d os, %d ecosystems, ignored %s\n",
				output.WarningIcon(rt.noColor), path, len(cfg.OS()), len(cfg.Ecosystems()), strings.Join(ignored, ", "))
			continue
		}

		failed++
		rt.log.Warn().Err(err).Str("path", path).Msg("invalid matrix config")

		var pe *config.ParseError
		if !errors.As(err, &pe) || len(pe.Violations()) == 0 {
			fmt.Fprintf(out, "%s %v\n", output.ErrorIcon(rt.noColor), err)
			continue
		}
		fmt.Fprintf(out, "%s %s: %v\n", output.ErrorIcon(rt.noColor), path, config.ErrShape)
		for _, v := range pe.Violations() {
			fmt.Fprintf(out, "    - %v\n", v)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d matrix files are invalid", failed, len(args))
	}
	return nil
}
