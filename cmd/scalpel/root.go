package main

import (
	"github.com/spf13/cobra"

	"scalpel/internal/version"
)

var (
	workspaceFlag string
	formatFlag    string
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "scalpel",
	Short: "Code intelligence and guarded mutation for JavaScript and TypeScript",
	Long: `scalpel extracts functions and variables from JS/TS sources, resolves them
through span, hash, and path-signature selectors, and performs guarded
replace/rename mutations that refuse to commit syntactically broken or
drifted results. Relationship commands report importers, call sites, call
graphs, dead code, and hot paths.`,
	Version:       version.Info(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("scalpel version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", ".",
		"Workspace root directory")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "json",
		"Output format (json, yaml, table)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "human",
		"Log format (json, human)")
}
