package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagemark/internal/api"
	"github.com/jackzampolin/pagemark/internal/config"
	"github.com/jackzampolin/pagemark/internal/convert"
	"github.com/jackzampolin/pagemark/internal/home"
	"github.com/jackzampolin/pagemark/internal/refscan"
)

var (
	convertOutputDir string
	convertScanOnly  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf>",
	Short: "Convert a PDF to annotated markdown without region binding",
	Long: `Convert a PDF to annotated markdown headlessly.

Headless conversion scans for references, splits the bibliography, and
writes the markdown outputs, but binds no page regions, so no images are
extracted and every detected reference is reported as a warning. Use the
server (pagemark serve) for interactive region binding.

Examples:
  pagemark convert paper.pdf                  # Write markdown outputs
  pagemark convert paper.pdf --scan-only      # Report references, write nothing`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		mgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}

		c, err := convert.New(ctx, convert.Request{
			PDFPath:   args[0],
			OutputDir: convertOutputDir,
			Home:      h,
			Config:    mgr.Get(),
			Logger:    logger,
		})
		if err != nil {
			return err
		}
		defer c.Close()

		if convertScanOnly {
			return api.Output(scanReport(c.References()))
		}

		result, err := c.Finalize(ctx)
		if err != nil {
			return err
		}
		return api.Output(result)
	},
}

// scanEntry is one detected reference in scan-only output.
type scanEntry struct {
	Name      string `json:"name" yaml:"name"`
	Asset     string `json:"asset" yaml:"asset"`
	Page      int    `json:"page" yaml:"page"`
	Mentions  int    `json:"mentions" yaml:"mentions"`
	FirstSeen int    `json:"first_seen" yaml:"first_seen"`
}

func scanReport(refs []*refscan.Reference) []scanEntry {
	entries := make([]scanEntry, 0, len(refs))
	for _, ref := range refscan.SortForDisplay(refs) {
		entries = append(entries, scanEntry{
			Name:      ref.DisplayName,
			Asset:     ref.AssetName,
			Page:      ref.PageIndex + 1,
			Mentions:  len(ref.Offsets),
			FirstSeen: ref.TextOffset,
		})
	}
	return entries
}

func init() {
	convertCmd.Flags().StringVar(&convertOutputDir, "output-dir", "", "Output directory (default: <home>/output/<name>)")
	convertCmd.Flags().BoolVar(&convertScanOnly, "scan-only", false, "List detected references without writing outputs")

	rootCmd.AddCommand(convertCmd)
}
