package search

import (
	"strings"
)

// defaultTextFields are the TEXT fields the lexical query is built
// against. The schema's residue fields (description, subject,
// catalogNumber, ...) are never populated by the ingest path, so
// they're deliberately excluded here rather than widening every query
// against fields that can never match.
var defaultTextFields = []string{"title", "content"}

// dashQuoteEllipsis maps dashes, curly/smart quotes, and ellipses to a
// plain space, so a query like "event-driven" tokenizes the same way
// "event driven" does.
var dashQuoteEllipsis = strings.NewReplacer(
	"-", " ", "‐", " ", "‑", " ", "‒", " ", "–", " ", "—", " ", "―", " ",
	"‘", " ", "’", " ", "“", " ", "”", " ",
	"…", " ", "...", " ",
)

// redisSpecialChars are escaped in every emitted term. The set escapes
// ' and " too, though neither is special in the query language.
const redisSpecialChars = `\@{}[]()|<>"'=:;!#$%^&*+-~,.`

func escapeQueryTerm(term string) string {
	var b strings.Builder
	for _, r := range term {
		if strings.ContainsRune(redisSpecialChars, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// buildTextQuery rewrites a raw query into a prefix-aware lexical
// expression: trim, normalize dashes/quotes/ellipses to spaces, split
// the trailing token off as a prefix alternation (base(tok|tok*)) when
// it's at least two characters, or drop it when it's a single
// character. Returns "" when the rewritten query has nothing left to
// search for.
func buildTextQuery(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return ""
	}
	cleaned = dashQuoteEllipsis.Replace(cleaned)
	tokens := strings.Fields(cleaned)
	if len(tokens) == 0 {
		return ""
	}

	last := tokens[len(tokens)-1]
	base := tokens[:len(tokens)-1]

	var b strings.Builder
	for i, t := range base {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(escapeQueryTerm(t))
	}

	if len(last) >= 2 {
		esc := escapeQueryTerm(last)
		b.WriteString("(")
		b.WriteString(esc)
		b.WriteString("|")
		b.WriteString(esc)
		b.WriteString("*)")
	}
	// len(last) == 1: dropped entirely; a one-char prefix matches too much.

	inner := strings.TrimSpace(b.String())
	if inner == "" {
		return ""
	}
	return fieldExpr() + ":(" + inner + ")"
}

func fieldExpr() string {
	return "@" + strings.Join(defaultTextFields, "|")
}
