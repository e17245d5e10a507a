package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X".
var version = "0.1.0"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ladder version as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		return writeJSON(out, map[string]string{
			"name":    "ladder",
			"version": version,
			"go":      runtime.Version(),
		}, colorStdout(out))
	},
}
