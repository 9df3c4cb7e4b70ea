package search

import (
	"strings"
	"testing"
)

func TestBuildSnippetCentersOnFirstMatch(t *testing.T) {
	content := strings.Repeat("padding ", 60) + "kafka streams are great" + strings.Repeat(" filler", 60)
	snippet := buildSnippet(content, "kafka")
	if !strings.Contains(snippet, "kafka streams are great") {
		t.Fatalf("snippet missing match: %q", snippet)
	}
	if !strings.HasPrefix(snippet, "...") {
		t.Fatalf("snippet should be prefixed with ellipsis: %q", snippet)
	}
	if !strings.HasSuffix(snippet, "...") {
		t.Fatalf("snippet should be suffixed with ellipsis: %q", snippet)
	}
}

func TestBuildSnippetFallsBackWithoutMatch(t *testing.T) {
	content := "a short unrelated document body"
	snippet := buildSnippet(content, "kubernetes")
	if snippet != content {
		t.Fatalf("snippet = %q, want unchanged content", snippet)
	}
}

func TestBuildSnippetEmptyContent(t *testing.T) {
	if got := buildSnippet("", "kafka"); got != "" {
		t.Fatalf("buildSnippet() = %q, want empty", got)
	}
}

func TestBuildSnippetWindowIsTwoHundredChars(t *testing.T) {
	content := strings.Repeat("padding ", 60) + "kafka streams are great" + strings.Repeat(" filler", 60)
	snippet := buildSnippet(content, "kafka")
	trimmed := strings.TrimSuffix(strings.TrimPrefix(snippet, "..."), "...")
	if len(trimmed) != snippetLen {
		t.Fatalf("snippet window = %d chars, want %d: %q", len(trimmed), snippetLen, snippet)
	}
}

func TestBuildSnippetMatchesWholeQueryNotPerToken(t *testing.T) {
	// "streams kafka" never occurs as a substring even though both
	// "streams" and "kafka" individually do; matching must be on the
	// raw query string, not per-token, so this must fall back to the
	// prefix rather than centering on either token.
	content := "kafka is great for streams processing at scale, " + strings.Repeat("filler ", 60)
	snippet := buildSnippet(content, "streams kafka")
	if !strings.HasPrefix(snippet, "kafka is great") {
		t.Fatalf("expected prefix fallback when the exact query phrase doesn't occur, got: %q", snippet)
	}
}

func TestBuildSnippetFallbackIsTwoHundredChars(t *testing.T) {
	content := strings.Repeat("x", 500)
	snippet := buildSnippet(content, "nomatch")
	trimmed := strings.TrimSuffix(snippet, "...")
	if len(trimmed) != snippetLen {
		t.Fatalf("fallback snippet = %d chars, want %d", len(trimmed), snippetLen)
	}
}
