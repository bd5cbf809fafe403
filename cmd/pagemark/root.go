package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagemark/internal/api"
	"github.com/jackzampolin/pagemark/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "pagemark",
	Short: "Convert academic PDFs to markdown with figure and table images",
	Long: `Pagemark converts academic PDFs to annotated markdown. It scans the
document text for figure, table, and image mentions, lets an operator bind
each mention to a page region, extracts those regions as high-resolution
images, and reinserts image links at every mention.

The pipeline includes:
  - Reference detection (Figure 2, Table A.3, ...) with slug deduplication
  - Interactive region binding over an HTTP session API
  - High-resolution region extraction via pdftoppm
  - Marker reinsertion and bibliography splitting`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.pagemark/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "pagemark home directory (default: ~/.pagemark)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
