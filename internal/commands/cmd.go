package commands

import (
	"github.com/spf13/cobra"

	"github.com/user/release-tools/internal/logger"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "reltools",
	Short: "Semantic-version release automation for Node.js and Python projects",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetDebug(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newReleaseCommand())
}

func Execute() error {
	return rootCmd.Execute()
}
