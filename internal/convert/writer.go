package convert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackzampolin/pagemark/internal/assets"
	"github.com/jackzampolin/pagemark/internal/home"
)

// writeOutputs writes the annotated stream, the bibliography stream (only
// when non-empty), and the extracted asset images, filling the result's
// path fields.
func writeOutputs(c *Conversion, result *Result, main, bibliography string, extracted []*assets.Asset) error {
	imagesDir := filepath.Join(c.outputDir, home.ImagesDirName)
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, a := range extracted {
		path := filepath.Join(imagesDir,
			fmt.Sprintf("%s.%s", a.Name, c.cfg.Extraction.ImageFormat))
		if err := os.WriteFile(path, a.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write asset %s: %w", a.Name, err)
		}
		result.Assets = append(result.Assets, AssetSummary{
			Name:      a.Name,
			Path:      path,
			PageIndex: a.PageIndex,
			Width:     a.Width,
			Height:    a.Height,
		})
	}

	annotatedPath := filepath.Join(c.outputDir,
		fmt.Sprintf("%s-converted.md", c.baseName))
	if err := os.WriteFile(annotatedPath, []byte(main), 0o644); err != nil {
		return fmt.Errorf("failed to write annotated text: %w", err)
	}
	result.AnnotatedPath = annotatedPath

	if bibliography != "" {
		referencesPath := filepath.Join(c.outputDir,
			fmt.Sprintf("%s-references-converted.md", c.baseName))
		if err := os.WriteFile(referencesPath, []byte(bibliography), 0o644); err != nil {
			return fmt.Errorf("failed to write references text: %w", err)
		}
		result.ReferencesPath = referencesPath
	}

	return nil
}
