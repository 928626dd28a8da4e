package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gradebook",
		Short:        "Operator tools for the gradebook database",
		SilenceUsage: true,
	}
	root.AddCommand(migrateCmd(), reportCmd(), tableCmd())
	return root
}
