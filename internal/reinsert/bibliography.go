package reinsert

import (
	"regexp"
	"strings"
)

// headingPattern matches a whole line that is a bibliography heading:
// optional markdown heading markers, optional section numbering, then
// "references" or "bibliography" alone.
var headingPattern = regexp.MustCompile(
	`(?i)^\s*(?:#{1,6}\s+)?(?:(?:\d+|[ivxlc]+)[.)]?\s+)?(?:references|bibliography)\s*:?\s*$`)

// SplitBibliography separates a trailing bibliography section from the main
// text. Everything from the heading line to the end moves verbatim into the
// secondary stream; the primary stream is truncated at the heading's start.
// A missing heading is not an error: the secondary stream is empty and the
// primary stream is returned unmodified.
func SplitBibliography(text string) (main, bibliography string) {
	offset := 0
	for offset <= len(text) {
		end := len(text)
		if i := strings.IndexByte(text[offset:], '\n'); i >= 0 {
			end = offset + i
		}
		line := text[offset:end]
		if headingPattern.MatchString(line) {
			return strings.TrimRight(text[:offset], " \t\n"), text[offset:]
		}
		if end == len(text) {
			break
		}
		offset = end + 1
	}
	return text, ""
}
