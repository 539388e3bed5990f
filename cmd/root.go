package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pos",
	Short: "Point-of-sale workflow manager",
	Long:  `Point-of-sale service for a small food operation: stations, catalog, orders and sales`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
