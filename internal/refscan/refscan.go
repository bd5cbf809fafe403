// Package refscan finds structured mentions of figures, tables, and images
// in a document text stream.
package refscan

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackzampolin/pagemark/internal/textindex"
)

// Kind classifies a visual artifact mention.
type Kind string

const (
	KindFigure Kind = "figure"
	KindTable  Kind = "table"
	KindImage  Kind = "image"
)

// Number is a one- or two-part artifact number ("2" or "2.1").
type Number struct {
	Major    int
	Minor    int
	HasMinor bool
}

// String formats the number the way it appears in a slug.
func (n Number) String() string {
	if n.HasMinor {
		return fmt.Sprintf("%d.%d", n.Major, n.Minor)
	}
	return strconv.Itoa(n.Major)
}

// Less orders numbers lexicographically by (major, minor): (2) sorts before
// (2.1), and both before (3).
func (n Number) Less(o Number) bool {
	if n.Major != o.Major {
		return n.Major < o.Major
	}
	if n.HasMinor != o.HasMinor {
		return !n.HasMinor
	}
	return n.Minor < o.Minor
}

// Reference is the deduplicated logical entity behind one or more mentions.
type Reference struct {
	Kind        Kind   `json:"kind"`
	Number      Number `json:"number"`
	DisplayName string `json:"display_name"` // literal matched text, e.g. "Figure 2.1"
	AssetName   string `json:"asset_name"`   // slug, e.g. "figure2.1"
	PageIndex   int    `json:"page_index"`   // page of the first mention
	TextOffset  int    `json:"text_offset"`  // stream offset of the first mention

	// Offsets holds every mention's stream offset in ascending order,
	// including the first. Reinsertion marks each of them.
	Offsets []int `json:"offsets"`
}

// Options controls scanning behavior.
type Options struct {
	// StrictNumbers treats a sub-numbered mention followed by sentence
	// punctuation as a bare major number, and skips mentions whose number
	// continues into a longer dotted run ("2.1.3").
	StrictNumbers bool
}

// mentionPattern matches `<Kind> <major>(.<minor>)?` with word boundaries on
// both sides. "Figure1" fails the required whitespace; "prefigure 1" fails
// the leading boundary.
var mentionPattern = regexp.MustCompile(`(?i)\b(figure|table|image)\s+(\d+)(?:\.(\d+))?\b`)

// Scan walks the assembled text stream and returns the deduplicated
// references ordered by first occurrence. Malformed near-mentions are
// skipped silently.
func Scan(ix *textindex.Index, opts Options) []*Reference {
	text := ix.Text()
	var refs []*Reference
	byName := make(map[string]*Reference)

	for _, m := range mentionPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		matched := text[start:end]

		kind := Kind(strings.ToLower(text[m[2]:m[3]]))
		major, _ := strconv.Atoi(text[m[4]:m[5]])
		num := Number{Major: major}
		if m[6] >= 0 {
			minor, _ := strconv.Atoi(text[m[6]:m[7]])
			num.Minor = minor
			num.HasMinor = true
		}

		if opts.StrictNumbers && num.HasMinor {
			if continuesDottedRun(text, end) {
				continue
			}
			if endsSentence(text, end) {
				// Read "Table 3.14." as "Table 3" followed by prose.
				matched = text[start:m[5]]
				num = Number{Major: major}
			}
		}

		slug := string(kind) + num.String()
		if ref, seen := byName[slug]; seen {
			ref.Offsets = append(ref.Offsets, start)
			continue
		}

		page, _, _ := ix.Locate(start)
		ref := &Reference{
			Kind:        kind,
			Number:      num,
			DisplayName: matched,
			AssetName:   slug,
			PageIndex:   page,
			TextOffset:  start,
			Offsets:     []int{start},
		}
		byName[slug] = ref
		refs = append(refs, ref)
	}

	return refs
}

// SortForDisplay returns the references ordered by kind, then number, for
// presentation in the operator's candidate list.
func SortForDisplay(refs []*Reference) []*Reference {
	sorted := make([]*Reference, len(refs))
	copy(sorted, refs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		return sorted[i].Number.Less(sorted[j].Number)
	})
	return sorted
}

// continuesDottedRun reports whether the match is followed by another
// ".<digit>" segment, e.g. "2.1.3".
func continuesDottedRun(text string, end int) bool {
	return end+1 < len(text) && text[end] == '.' && isDigit(text[end+1])
}

// endsSentence reports whether the match is immediately followed by
// sentence-terminating punctuation.
func endsSentence(text string, end int) bool {
	if end >= len(text) {
		return false
	}
	switch text[end] {
	case '.', '!', '?':
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
