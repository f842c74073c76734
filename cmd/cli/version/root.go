package version

import (
	"github.com/spf13/cobra"

	"github.com/storacha/sandbox/pkg/build"
)

var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sandbox version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(build.Version)
	},
}
