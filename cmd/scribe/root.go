package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scribe",
		Short: "Generate structured reports from documents",
		Long: `scribe extracts text from PDF and text documents, generates a structured
report for each with Gemini, and optionally exports the reports to Google Docs
or Azure Blob Storage. Configuration is read from config.toml and SCRIBE_*
environment variables.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newGenerateCmd(),
		newMigrateCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the scribe version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scribe %s\n", version)
		},
	}
}
