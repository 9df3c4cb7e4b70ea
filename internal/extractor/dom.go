package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/eng-universe/blogsearch/internal/metadata"
	"golang.org/x/net/html"
)

/*
Responsibilities
  - Turn raw article HTML into a ParsedDocument
  - Isolate the meaningful content container
  - Strip site chrome (nav, footer, aside, script, style, noscript)
  - Recover title/canonical-url/authors/published-at/language from the
    usual OpenGraph/Twitter/meta conventions, falling back to plain tags

Extraction never aborts the caller: a document that doesn't parse as
HTML, or that has no identifiable content container, degrades to an
empty ParsedDocument rather than propagating past the indexer.
*/

// DomExtractor parses raw HTML into a ParsedDocument using goquery.
type DomExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewDomExtractor(metadataSink metadata.MetadataSink) DomExtractor {
	return DomExtractor{metadataSink: metadataSink}
}

var strippedTags = []string{"nav", "footer", "aside", "script", "style", "noscript"}

// Parse reduces raw article HTML to a ParsedDocument:
// strip chrome, pick the narrowest content container available, and
// recover the document's metadata fields from meta tags.
func (d DomExtractor) Parse(pageURL string, rawHTML []byte) ParsedDocument {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(rawHTML)))
	if err != nil {
		d.metadataSink.RecordError("extractor", "Parse", metadata.CauseContentInvalid, err,
			metadata.NewAttr(metadata.AttrURL, pageURL))
		return ParsedDocument{URL: pageURL}
	}

	for _, tag := range strippedTags {
		doc.Find(tag).Remove()
	}

	parsed := ParsedDocument{URL: pageURL}
	parsed.Title = firstNonEmpty(
		metaContent(doc, "property", "og:title"),
		metaContent(doc, "name", "twitter:title"),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	parsed.CanonicalURL = firstNonEmpty(
		metaContent(doc, "property", "og:url"),
		doc.Find(`link[rel="canonical"]`).AttrOr("href", ""),
	)
	parsed.Authors = extractAuthors(doc)
	parsed.PublishedAt = extractPublishedAt(doc)
	parsed.Language = firstNonEmpty(
		metaContent(doc, "property", "og:locale"),
		metaContent(doc, "name", "language"),
	)
	// Text nodes are joined with a space so adjacent blocks don't run together.
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range selectContainer(doc).Nodes {
		walk(n)
	}
	parsed.Content = normalizeWhitespace(strings.Join(parts, " "))

	if host := hostOf(pageURL); host != "" {
		parsed.Company = CompanyForHost(host)
	}

	return parsed
}

// selectContainer picks the narrowest content container available:
// <article> > <main> > <body> > the whole document.
func selectContainer(doc *goquery.Document) *goquery.Selection {
	if s := doc.Find("article").First(); s.Length() > 0 {
		return s
	}
	if s := doc.Find("main").First(); s.Length() > 0 {
		return s
	}
	if s := doc.Find("body").First(); s.Length() > 0 {
		return s
	}
	return doc.Selection
}

func extractAuthors(doc *goquery.Document) []string {
	var authors []string
	seen := make(map[string]struct{})
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		authors = append(authors, name)
	}

	for _, v := range []string{
		metaContent(doc, "name", "author"),
		metaContent(doc, "property", "article:author"),
	} {
		for _, part := range strings.Split(v, ",") {
			add(part)
		}
	}

	doc.Find(`[rel="author"]`).Each(func(_ int, s *goquery.Selection) {
		add(s.Text())
	})

	return authors
}

func extractPublishedAt(doc *goquery.Document) string {
	if v := firstNonEmpty(
		metaContent(doc, "property", "article:published_time"),
		metaContent(doc, "property", "article:modified_time"),
		metaContent(doc, "name", "publish_date"),
	); v != "" {
		return v
	}
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		return v
	}
	return ""
}

// metaContent reads <meta attr="name" content="..."> for either the
// "property" (OpenGraph) or "name" (standard/Twitter) attribute.
func metaContent(doc *goquery.Document, attr, name string) string {
	sel := doc.Find(`meta[` + attr + `="` + name + `"]`).First()
	v, _ := sel.Attr("content")
	return strings.TrimSpace(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
