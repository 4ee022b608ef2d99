package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/json2vars-setter/json2vars/internal/output"
	"github.com/json2vars-setter/json2vars/internal/settings"
	"github.com/json2vars-setter/json2vars/pkg/jsonpath"
)

func newParseCmd(st *settings.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a matrix file and print it",
		Long: `Parse a matrix file and print the validated result.

Examples:
  json2vars parse .github/workflows/matrix.json
  json2vars parse matrix.json --format yaml
  json2vars parse matrix.json --query '$.versions.rust'`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}

	cmd.Flags().StringP("format", "f", st.Format, "output format: json, yaml, text (env JSON2VARS_FORMAT)")
	cmd.Flags().StringP("query", "q", "", "print only the value at this JSONPath")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	query, _ := cmd.Flags().GetString("query")

	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}

	cfg, err := rt.parser.Parse(args[0])
	if err != nil {
		return err
	}
	rt.log.Info().Str("path", args[0]).Msg("matrix config is valid")

	if query == "" {
		return output.Render(cmd.OutOrStdout(), cfg, format, rt.noColor)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	value, err := jsonpath.Extract(string(data), query)
	if err != nil {
		return fmt.Errorf("query %s: %w", query, err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}
