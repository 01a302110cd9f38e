package main

import (
	"github.com/inkpub/micropub/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mpctl",
	Short: "Operator tool for the Micropub server",
	Long: `mpctl mints and revokes access tokens and previews how an update
instruction changes a post, without touching the content store.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.Init("debug")
		} else {
			logger.Init("warn")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}
