package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/json2vars-setter/json2vars/internal/ghoutput"
	"github.com/json2vars-setter/json2vars/internal/settings"
)

func newOutputsCmd(st *settings.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outputs <file>",
		Short: "Export a matrix file as GitHub Actions step outputs",
		Long: `Parse a matrix file and append its values to the GITHUB_OUTPUT file.

Each list is written as a JSON array (OS, VERSIONS_<ECOSYSTEM>) and item by
item (OS_0, VERSIONS_RUST_1, ...), followed by GHPAGES_BRANCH.`,
		Args: cobra.ExactArgs(1),
		RunE: runOutputs,
	}

	cmd.Flags().String("github-output", st.GitHubOutput, "file to append outputs to (env GITHUB_OUTPUT)")
	cmd.Flags().Bool("dry-run", false, "print the outputs instead of writing them")

	return cmd
}

func runOutputs(cmd *cobra.Command, args []string) error {
	target, _ := cmd.Flags().GetString("github-output")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}

	cfg, err := rt.parser.Parse(args[0])
	if err != nil {
		return err
	}

	pairs, err := ghoutput.Flatten(cfg)
	if err != nil {
		return err
	}

	if dryRun {
		return ghoutput.Write(cmd.OutOrStdout(), pairs)
	}

	if err := ghoutput.Append(target, pairs); err != nil {
		if errors.Is(err, ghoutput.ErrNoOutputFile) {
			return fmt.Errorf("%w (use --github-output or --dry-run outside GitHub Actions)", err)
		}
		return err
	}

	rt.log.Info().Str("path", args[0]).Str("output", target).Int("count", len(pairs)).Msg("wrote GitHub outputs")
	return nil
}
