package cmd

import "github.com/eng-universe/blogsearch/internal/frontier"

// siteProfile is one supported blog's admission policy: the article-path
// regex(es) the allow-list matches against, the seed-listing path(s) that
// are crawled for links but never persisted, and which sitemap paths the
// seed subcommand should enqueue for the domain. These are fixed,
// hand-curated per-host tables, not anything operator-supplied at
// runtime.
type siteProfile struct {
	domain       string
	articlePaths []string
	listingPaths []string
	sitemapPaths []string
}

var defaultSitemapPaths = []string{"/sitemap.xml", "/sitemap_index.xml"}

var supportedSites = []siteProfile{
	{domain: "engineering.fb.com", articlePaths: []string{`^/\d{4}/\d{2}/\d{2}/[^/]+/[^/]+$`}, listingPaths: []string{"/"}},
	{domain: "builders.ramp.com", articlePaths: []string{`^/post/[^/]+$`}, listingPaths: []string{"/"}},
	{domain: "airbnb.tech", articlePaths: []string{`^/[^/]+/[^/]+$`}, listingPaths: []string{"/"}},
	{domain: "www.anthropic.com", articlePaths: []string{`^/engineering/[^/]+$`}, listingPaths: []string{"/engineering"}},
	{domain: "developers.openai.com", articlePaths: []string{`^/blog/[^/]+$`}, listingPaths: []string{"/blog"}},
	{domain: "blog.cloudflare.com", articlePaths: []string{`^/[^/]+$`}, listingPaths: []string{"/"}},
	{domain: "developers.googleblog.com", articlePaths: []string{`^/[^/]+$`}, listingPaths: []string{"/"}},
	{domain: "www.notion.com", articlePaths: []string{`^/blog/[^/]+$`}, listingPaths: []string{"/blog"}},
	{domain: "cursor.com", articlePaths: []string{`^/blog/[^/]+$`}, listingPaths: []string{"/blog"}},
	{domain: "shopify.engineering", articlePaths: []string{`^/[^/]+$`}, listingPaths: []string{"/"}},
	{domain: "netflixtechblog.com", articlePaths: []string{`^/[^/]+-[0-9a-f]{8,}$`}, listingPaths: []string{"/"}, sitemapPaths: []string{"/sitemap/sitemap.xml", "/sitemap.xml"}},
	{domain: "github.blog", articlePaths: []string{`^/engineering/[^/]+/[^/]+$`}, listingPaths: []string{"/engineering"}},
	{domain: "engineering.atspotify.com", articlePaths: []string{`^/\d{4}/\d{1,2}/[^/]+$`}, listingPaths: []string{"/"}},
	{domain: "slack.engineering", articlePaths: []string{`^/[^/]+$`}, listingPaths: []string{"/"}},
	{domain: "stripe.com", articlePaths: []string{`^/blog/[^/]+$`}, listingPaths: []string{"/blog"}},
	{domain: "www.uber.com", articlePaths: []string{`^/blog/[^/]+$`}, listingPaths: []string{"/blog"}},
}

// defaultAllowList builds the admission table every crawl and seed run
// uses. It is not operator-configurable: the set of supported blogs is
// fixed code.
func defaultAllowList() (*frontier.AllowList, error) {
	al := frontier.NewAllowList()
	for _, site := range supportedSites {
		for _, pattern := range site.articlePaths {
			if err := al.AddPattern(site.domain, pattern); err != nil {
				return nil, err
			}
		}
		for _, path := range site.listingPaths {
			al.AddListing(site.domain, path)
		}
	}
	return al, nil
}

// sitemapURLsForDomain returns the sitemap.xml locations seeding should
// admit for domain, or nil if domain isn't one of the supported sites.
func sitemapURLsForDomain(domain string) []string {
	for _, site := range supportedSites {
		if site.domain != domain {
			continue
		}
		paths := site.sitemapPaths
		if len(paths) == 0 {
			paths = defaultSitemapPaths
		}
		urls := make([]string, 0, len(paths))
		for _, p := range paths {
			urls = append(urls, "https://"+domain+p)
		}
		return urls
	}
	return nil
}

// DefaultAllowListForTest exposes defaultAllowList to the package's
// external test package.
func DefaultAllowListForTest() (*frontier.AllowList, error) {
	return defaultAllowList()
}

// SitemapURLsForDomainForTest exposes sitemapURLsForDomain the same way.
func SitemapURLsForDomainForTest(domain string) []string {
	return sitemapURLsForDomain(domain)
}
