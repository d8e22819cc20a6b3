package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridden at build time via -ldflags, matching a plain
// string default for local/dev builds.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the solver version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}
