package indexer

import (
	"strings"

	"github.com/eng-universe/blogsearch/internal/extractor"
)

// IndexRecord is the in-memory form of a doc:{doc_id} hash: every
// textual field the hybrid index projects, plus the optional packed
// embedding bytes. DocID is always the original fetched URL — never the
// extractor's canonical URL, which is instead stored in the url field.
type IndexRecord struct {
	DocID       string
	Title       string
	Content     string
	Topics      []string
	Source      string
	Company     string
	Authors     []string
	PublishedAt string
	URL         string
	Lang        string
	Embedding   []byte // nil when keyword-only or when a late-interaction backend owns retrieval
}

// fromParsedDocument builds the textual fields of an IndexRecord from a
// freshly parsed page, before topics/embedding are computed.
func fromParsedDocument(doc extractor.ParsedDocument, docID, source string) IndexRecord {
	url := doc.CanonicalURL
	if url == "" {
		url = doc.URL
	}
	return IndexRecord{
		DocID:       docID,
		Title:       doc.Title,
		Content:     doc.Content,
		Source:      source,
		Company:     doc.Company,
		Authors:     doc.Authors,
		PublishedAt: doc.PublishedAt,
		URL:         url,
		Lang:        doc.Language,
	}
}

// ToHash renders an IndexRecord as the field map written to doc:{doc_id}.
// The embedding field is omitted entirely when nil, rather than written
// empty, so a keyword-only deployment's hashes never carry a stray
// zero-length embedding field.
func (r IndexRecord) ToHash() map[string]string {
	h := map[string]string{
		"doc_id":       r.DocID,
		"title":        r.Title,
		"content":      r.Content,
		"topics":       strings.Join(r.Topics, ","),
		"source":       r.Source,
		"company":      r.Company,
		"authors":      strings.Join(r.Authors, ","),
		"published_at": r.PublishedAt,
		"url":          r.URL,
		"lang":         r.Lang,
	}
	return h
}

// textFieldNames lists every ToHash field eligible for idempotent
// preservation on re-index: the embedding field is handled
// separately, since bytes aren't meaningfully "non-empty" in the same
// sense as text.
var textFieldNames = []string{
	"doc_id", "title", "content", "topics", "source",
	"company", "authors", "published_at", "url", "lang",
}

// preserveExisting fills in any field that the new write would leave
// empty with its previously persisted value, so a re-index with a
// thinner payload never erases data an earlier, richer crawl populated.
func preserveExisting(next map[string]string, existing map[string]string) map[string]string {
	for _, name := range textFieldNames {
		if next[name] != "" {
			continue
		}
		if prev, ok := existing[name]; ok && prev != "" {
			next[name] = prev
		}
	}
	return next
}
