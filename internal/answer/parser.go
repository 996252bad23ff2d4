// Package answer extracts display text and citation references from the raw
// answers returned by the query service.
package answer

import (
	"regexp"
	"strings"
)

var (
	refPattern  = regexp.MustCompile(`\[[^\]]+\]`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// Parse splits a raw answer into display content and its bracketed citation
// references (e.g. "[Doc A p.3]"). References keep first-appearance order and
// are deduplicated by exact text. The content is the input with all citation
// spans removed and runs of three or more newlines collapsed to two, trimmed.
// If stripping the citations leaves nothing, the trimmed original is returned
// so the transcript never shows an empty bubble.
func Parse(raw string) (string, []string) {
	matches := refPattern.FindAllString(raw, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(raw), nil
	}

	var refs []string
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		ref := m[1 : len(m)-1]
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}

	content := refPattern.ReplaceAllString(raw, "")
	content = newlineRuns.ReplaceAllString(content, "\n\n")
	content = strings.TrimSpace(content)
	if content == "" {
		content = strings.TrimSpace(raw)
	}

	return content, refs
}
