package cli

import (
	"github.com/spf13/cobra"

	"github.com/ppiankov/mtm/internal/manifest"
)

const version = "0.1.0"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeJSON(cmd.OutOrStdout(), map[string]string{
			"version":        version,
			"name":           "mtm",
			"schema_version": manifest.Version,
		})
	},
}
