package reinsert

import "strings"

// metadataMarkers disqualify a line from being the document title.
var metadataMarkers = []string{"doi:", "arxiv:", "volume", "page"}

// ExtractTitle guesses the document title from the first ten non-empty
// lines, skipping overlong lines and obvious metadata. Returns "" when no
// plausible line exists.
func ExtractTitle(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || len(line) >= 200 {
			continue
		}
		lower := strings.ToLower(line)
		skip := false
		for _, marker := range metadataMarkers {
			if strings.Contains(lower, marker) {
				skip = true
				break
			}
		}
		if !skip {
			return line
		}
	}
	return ""
}
