package search

import "strings"

// snippetLen is the total window length, in characters, of a snippet.
const snippetLen = 200

// snippetLead is how far back from the match start the window begins:
// the window starts at max(0, match-snippetLead).
const snippetLead = 66

// buildSnippet extracts a window of content around the first
// case-insensitive occurrence of the raw query string. When nothing
// matches it falls back to a prefix of snippetLen characters.
func buildSnippet(content, query string) string {
	content = normalizeWhitespace(content)
	if content == "" {
		return ""
	}

	lowerContent := strings.ToLower(content)
	idx := strings.Index(lowerContent, strings.ToLower(strings.TrimSpace(query)))

	if idx < 0 {
		end := min(len(content), snippetLen)
		snippet := content[:end]
		if end < len(content) {
			snippet += "..."
		}
		return snippet
	}

	start := idx - snippetLead
	prefix := start > 0
	if start < 0 {
		start = 0
	}
	end := start + snippetLen
	suffix := end < len(content)
	if end > len(content) {
		end = len(content)
	}

	snippet := content[start:end]
	if prefix {
		snippet = "..." + snippet
	}
	if suffix {
		snippet = snippet + "..."
	}
	return snippet
}

// normalizeWhitespace collapses any run of whitespace to a single space
// and trims the result.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
