package cmd_test

import (
	"testing"

	cmd "github.com/eng-universe/blogsearch/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestSupportedSitesAllowListAdmitsArticlesAndListings(t *testing.T) {
	al, err := cmd.DefaultAllowListForTest()
	require.NoError(t, err)

	require.True(t, al.IsAllowedURL("stripe.com", "/blog/online-migration"))
	require.True(t, al.IsAllowedURL("stripe.com", "/blog"))
	require.True(t, al.IsListingURL("stripe.com", "/blog"))
	require.False(t, al.IsListingURL("stripe.com", "/blog/online-migration"))

	require.False(t, al.IsAllowedURL("stripe.com", "/pricing"))
	require.False(t, al.IsAllowedURL("unknown-host.example", "/blog/post"))
}

func TestSitemapURLsForDomainUsesDefaultsWhenUnspecified(t *testing.T) {
	urls := cmd.SitemapURLsForDomainForTest("stripe.com")
	require.Equal(t, []string{"https://stripe.com/sitemap.xml", "https://stripe.com/sitemap_index.xml"}, urls)
}

func TestSitemapURLsForDomainUsesPerSiteOverride(t *testing.T) {
	urls := cmd.SitemapURLsForDomainForTest("netflixtechblog.com")
	require.Equal(t, []string{
		"https://netflixtechblog.com/sitemap/sitemap.xml",
		"https://netflixtechblog.com/sitemap.xml",
	}, urls)
}

func TestSitemapURLsForDomainUnknownHostReturnsNil(t *testing.T) {
	require.Nil(t, cmd.SitemapURLsForDomainForTest("not-a-supported-blog.example"))
}
