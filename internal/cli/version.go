package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/nextaction/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Skip config loading so version works without a home directory.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}

// VersionCmd returns the version command
func VersionCmd() *cobra.Command {
	return versionCmd
}
