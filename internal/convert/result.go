package convert

import (
	"fmt"

	"github.com/jackzampolin/pagemark/internal/assets"
	"github.com/jackzampolin/pagemark/internal/binding"
	"github.com/jackzampolin/pagemark/internal/refscan"
)

// Result summarizes a finished conversion.
type Result struct {
	ID             string         `json:"id" yaml:"id"`
	BaseName       string         `json:"base_name" yaml:"base_name"`
	Title          string         `json:"title,omitempty" yaml:"title,omitempty"`
	OutputDir      string         `json:"output_dir" yaml:"output_dir"`
	AnnotatedPath  string         `json:"annotated_path" yaml:"annotated_path"`
	ReferencesPath string         `json:"references_path,omitempty" yaml:"references_path,omitempty"`
	PageCount      int            `json:"page_count" yaml:"page_count"`
	ReferenceCount int            `json:"reference_count" yaml:"reference_count"`
	Assets         []AssetSummary `json:"assets" yaml:"assets"`
	Warnings       []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	assets []*assets.Asset
}

// AssetSummary describes one written asset.
type AssetSummary struct {
	Name      string `json:"name" yaml:"name"`
	Path      string `json:"path" yaml:"path"`
	PageIndex int    `json:"page_index" yaml:"page_index"`
	Width     int    `json:"width" yaml:"width"`
	Height    int    `json:"height" yaml:"height"`
}

// addWarnings records the per-item issues of a conversion: references left
// unbound, bindings whose render failed, and mentions that could not be
// matched for marker insertion.
func (r *Result) addWarnings(refs []*refscan.Reference, bindings []*binding.Binding, skipped []string) {
	bound := make(map[string]*binding.Binding, len(bindings))
	for _, b := range bindings {
		bound[b.AssetName] = b
	}
	for _, ref := range refs {
		b, ok := bound[ref.AssetName]
		switch {
		case !ok:
			r.Warnings = append(r.Warnings,
				fmt.Sprintf("%s: no region bound, not extracted", ref.DisplayName))
		case b.Failed:
			r.Warnings = append(r.Warnings,
				fmt.Sprintf("%s: region could not be rendered, marker omitted", ref.DisplayName))
		}
	}
	for _, name := range skipped {
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("%s: mention text not found, marker omitted", name))
	}
}
