// Package reinsert rewrites the document stream with image markers for every
// extracted asset and splits off a trailing bibliography section.
package reinsert

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackzampolin/pagemark/internal/assets"
	"github.com/jackzampolin/pagemark/internal/refscan"
	"github.com/jackzampolin/pagemark/internal/textindex"
)

// Insertion is one entry of the insertion log: text added at a stream offset
// computed against the un-mutated original.
type Insertion struct {
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

// Result is the annotated document stream plus its insertion log.
type Result struct {
	// Annotated is the primary stream with image markers applied.
	Annotated string
	// Bibliography is the secondary stream (empty when no heading found).
	Bibliography string
	// Insertions is the applied log, in descending-offset order.
	Insertions []Insertion
	// Skipped lists mentions that could not be matched back to the text.
	Skipped []string
}

// Options configures an Engine.
type Options struct {
	// ImageDir is the relative directory used in markdown links.
	ImageDir string
	// ImageFormat is the asset file extension.
	ImageFormat string
	// Logger receives skipped-mention warnings.
	Logger *slog.Logger
}

// Engine performs the reinsertion pass.
type Engine struct {
	imageDir    string
	imageFormat string
	logger      *slog.Logger
}

// NewEngine creates a reinsertion engine.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dir := opts.ImageDir
	if dir == "" {
		dir = "./images"
	}
	format := opts.ImageFormat
	if format == "" {
		format = "png"
	}
	return &Engine{imageDir: dir, imageFormat: format, logger: logger}
}

// matcher locates a mention at a recorded offset. Matchers are tried in
// priority order; the first that matches wins. The chain tolerates text
// normalization differences between the scanning pass and the assembled
// stream.
type matcher struct {
	name  string
	match func(text string, offset int, ref *refscan.Reference) int // match length, or -1
}

func matchers() []matcher {
	return []matcher{
		{"display_name", func(text string, offset int, ref *refscan.Reference) int {
			if strings.HasPrefix(text[offset:], ref.DisplayName) {
				return len(ref.DisplayName)
			}
			return -1
		}},
		{"display_name_lower", func(text string, offset int, ref *refscan.Reference) int {
			lower := strings.ToLower(ref.DisplayName)
			if strings.HasPrefix(text[offset:], lower) {
				return len(lower)
			}
			return -1
		}},
		{"asset_name", func(text string, offset int, ref *refscan.Reference) int {
			if strings.HasPrefix(text[offset:], ref.AssetName) {
				return len(ref.AssetName)
			}
			return -1
		}},
	}
}

// Annotate inserts an image marker after every mention of every reference
// that has an extracted asset. Insertions are computed against the original
// stream and applied in descending-offset order so earlier offsets stay
// valid throughout.
func (e *Engine) Annotate(ix *textindex.Index, refs []*refscan.Reference, extracted []*assets.Asset) Result {
	text := ix.Text()

	byName := make(map[string]*assets.Asset, len(extracted))
	for _, a := range extracted {
		byName[a.Name] = a
	}

	type ordered struct {
		ins Insertion
		seq int
	}

	chain := matchers()
	var pending []ordered
	var skipped []string
	seen := make(map[string]bool) // assetName@lineEnd, one marker per ref per line

	for _, ref := range refs {
		asset, ok := byName[ref.AssetName]
		if !ok {
			continue
		}
		for _, offset := range ref.Offsets {
			if offset < 0 || offset > len(text) {
				continue
			}
			length := -1
			for _, m := range chain {
				if length = m.match(text, offset, ref); length >= 0 {
					break
				}
			}
			if length < 0 {
				skipped = append(skipped, ref.AssetName)
				e.logger.Warn("mention not found at recorded offset, skipping marker",
					"asset", ref.AssetName, "offset", offset)
				continue
			}

			at := lineEnd(text, offset+length)
			key := fmt.Sprintf("%s@%d", ref.AssetName, at)
			if seen[key] {
				continue
			}
			seen[key] = true
			pending = append(pending, ordered{
				ins: Insertion{Offset: at, Text: e.marker(ref, asset)},
				seq: len(pending),
			})
		}
	}

	// Descending offset: inserting at a later offset never shifts the
	// offsets still to be applied. Equal offsets apply in reverse discovery
	// order, which leaves same-line markers in mention order in the output.
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].ins.Offset != pending[j].ins.Offset {
			return pending[i].ins.Offset > pending[j].ins.Offset
		}
		return pending[i].seq > pending[j].seq
	})

	insertions := make([]Insertion, len(pending))
	for i, p := range pending {
		insertions[i] = p.ins
	}

	return Result{
		Annotated:  Apply(text, insertions),
		Insertions: insertions,
		Skipped:    skipped,
	}
}

// Apply applies an insertion log to the original text. The log must be in
// descending-offset order; offsets are relative to the un-mutated original.
func Apply(text string, insertions []Insertion) string {
	out := text
	for _, ins := range insertions {
		out = out[:ins.Offset] + ins.Text + out[ins.Offset:]
	}
	return out
}

// marker builds the markdown image reference for an asset.
func (e *Engine) marker(ref *refscan.Reference, a *assets.Asset) string {
	return fmt.Sprintf("\n\n![%s](%s/%s.%s)\n",
		ref.DisplayName, e.imageDir, a.Name, e.imageFormat)
}

// lineEnd returns the offset of the newline ending the line containing pos,
// or the end of the text.
func lineEnd(text string, pos int) int {
	if pos >= len(text) {
		return len(text)
	}
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(text)
}
