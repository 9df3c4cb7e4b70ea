package frontier

import (
	"fmt"
	"strconv"
	"strings"
)

// Source enumerates how a CrawlItem entered the frontier.
type Source string

const (
	SourceSeed       Source = "seed"
	SourceSitemap    Source = "sitemap"
	SourceDiscovered Source = "discovered"
)

// CrawlItem is a single crawl work unit. Two items with equal URL are
// equivalent regardless of Source/Depth: URL is the dedup key.
type CrawlItem struct {
	URL    string
	Source Source
	Depth  int
}

// Serialize renders a CrawlItem as the tab-delimited "url\tsource\tdepth"
// form the frontier stores in the coordination store's lists and sets.
func (c CrawlItem) Serialize() string {
	return strings.Join([]string{c.URL, string(c.Source), strconv.Itoa(c.Depth)}, "\t")
}

// Deserialize parses the tab-delimited form Serialize produces. It is the
// exact inverse: Deserialize(Serialize(i)) == i for every valid CrawlItem.
func Deserialize(s string) (CrawlItem, error) {
	parts := strings.SplitN(s, "\t", 3)
	if len(parts) != 3 {
		return CrawlItem{}, fmt.Errorf("frontier: malformed crawl item %q", s)
	}
	depth, err := strconv.Atoi(parts[2])
	if err != nil {
		return CrawlItem{}, fmt.Errorf("frontier: malformed crawl item depth %q: %w", s, err)
	}
	return CrawlItem{URL: parts[0], Source: Source(parts[1]), Depth: depth}, nil
}
