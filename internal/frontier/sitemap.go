package frontier

import (
	"encoding/xml"
	"io"
	"strings"
)

// sitemapURLSet and sitemapIndex model the two XML shapes a sitemap URL
// can resolve to: a leaf <urlset> of page locations, or a <sitemapindex>
// of further sitemap locations to recurse into. Both share the same
// <loc> leaf shape, so ParseSitemap tries urlset first and falls back to
// treating every <sitemap> entry as a <url> entry.
type sitemapURLSet struct {
	XMLName xml.Name       `xml:"urlset"`
	URLs    []sitemapEntry `xml:"url"`
}

type sitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	Sitemaps []sitemapEntry `xml:"sitemap"`
}

type sitemapEntry struct {
	Loc string `xml:"loc"`
}

// IsSitemapURL reports whether path looks like a sitemap resource: the
// crawl worker needs this before deciding whether to run link extraction
// or sitemap parsing on a fetched body.
func IsSitemapURL(path string) bool {
	lower := strings.ToLower(path)
	for _, suffix := range []string{"sitemap.xml", "sitemap_index.xml", "sitemap.xml.gz"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return strings.HasSuffix(lower, ".xml") && strings.Contains(lower, "sitemap")
}

// ParseSitemap extracts every <loc> from a sitemap body, whether it is a
// leaf urlset or a sitemapindex of further sitemaps. Locations are
// returned as-is; the caller is responsible for normalizing and
// allow-list filtering each one before re-admission.
func ParseSitemap(body io.Reader) ([]string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	var set sitemapURLSet
	if err := xml.Unmarshal(data, &set); err == nil && len(set.URLs) > 0 {
		return locsOf(set.URLs), nil
	}

	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	return locsOf(index.Sitemaps), nil
}

func locsOf(entries []sitemapEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Loc != "" {
			out = append(out, e.Loc)
		}
	}
	return out
}
