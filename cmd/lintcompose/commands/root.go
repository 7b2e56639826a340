package commands

import "github.com/spf13/cobra"

// Apply adds every lintcompose command to rootCmd.
func Apply(rootCmd *cobra.Command) {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(presetsCmd)
}
