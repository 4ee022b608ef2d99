package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/json2vars-setter/json2vars/config"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of matrix files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			strict, _ := cmd.Flags().GetBool("strict")
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.Schema(strict))
			return err
		},
	}
}
