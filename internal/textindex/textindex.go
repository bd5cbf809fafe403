// Package textindex assembles per-page text into a single document stream
// and maps stream offsets back to pages.
package textindex

import (
	"sort"
	"strings"
)

// Separator joins consecutive pages in the document stream. Its width is
// counted once per page break so offset math stays exact.
const Separator = "\n"

// Index is the concatenated document text together with the offset of each
// page's first byte. An offset belongs to page i when it falls in the
// half-open range [start(i), start(i+1)); the separator after a page is
// attributed to that page.
type Index struct {
	text   string
	starts []int
}

// Build assembles an index from per-page text segments. Page content is not
// transformed.
func Build(pages []string) *Index {
	var b strings.Builder
	starts := make([]int, len(pages))
	for i, page := range pages {
		if i > 0 {
			b.WriteString(Separator)
		}
		starts[i] = b.Len()
		b.WriteString(page)
	}
	return &Index{text: b.String(), starts: starts}
}

// Text returns the assembled document stream.
func (ix *Index) Text() string { return ix.text }

// PageCount returns the number of pages in the index.
func (ix *Index) PageCount() int { return len(ix.starts) }

// PageStart returns the stream offset of a page's first byte.
func (ix *Index) PageStart(pageIndex int) int {
	if pageIndex < 0 || pageIndex >= len(ix.starts) {
		return -1
	}
	return ix.starts[pageIndex]
}

// Locate maps a stream offset to (pageIndex, localOffset). ok is false when
// the offset is outside the stream.
func (ix *Index) Locate(offset int) (pageIndex, localOffset int, ok bool) {
	if offset < 0 || offset > len(ix.text) || len(ix.starts) == 0 {
		return 0, 0, false
	}
	// First page whose start is beyond the offset; the owning page is the
	// one before it.
	i := sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > offset
	})
	page := i - 1
	if page < 0 {
		page = 0
	}
	return page, offset - ix.starts[page], true
}
