package frontier

import "regexp"

// AllowList holds the two admission tables:
// per-host article-path regex patterns, and per-host seed-listing paths
// (index/category pages that are fetched for their links but never
// persisted as documents).
type AllowList struct {
	patterns map[string][]*regexp.Regexp
	listings map[string]map[string]bool
}

func NewAllowList() *AllowList {
	return &AllowList{
		patterns: map[string][]*regexp.Regexp{},
		listings: map[string]map[string]bool{},
	}
}

// AddPattern registers a regex (matched against the URL path) that marks
// an article path as admissible for host.
func (a *AllowList) AddPattern(host, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	a.patterns[host] = append(a.patterns[host], re)
	return nil
}

// AddListing registers a seed-listing path for host: a page that is
// fetched and whose links are followed, but which is never itself
// persisted as a document.
func (a *AllowList) AddListing(host, path string) {
	if a.listings[host] == nil {
		a.listings[host] = map[string]bool{}
	}
	a.listings[host][path] = true
}

// IsAllowedURL reports whether host/path may be enqueued: either it is a
// registered listing page for host, or it matches one of host's article
// patterns.
func (a *AllowList) IsAllowedURL(host, path string) bool {
	return a.IsListingURL(host, path) || a.matchesPattern(host, path)
}

// IsListingURL reports whether host/path is a registered seed-listing
// page. Listing pages are crawled for outbound links but are never
// persisted as documents.
func (a *AllowList) IsListingURL(host, path string) bool {
	return a.listings[host] != nil && a.listings[host][path]
}

func (a *AllowList) matchesPattern(host, path string) bool {
	for _, re := range a.patterns[host] {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
