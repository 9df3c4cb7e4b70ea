package frontier_test

import (
	"testing"

	"github.com/eng-universe/blogsearch/internal/frontier"
	"github.com/stretchr/testify/require"
)

func TestAllowListMatchesArticlePattern(t *testing.T) {
	a := frontier.NewAllowList()
	require.NoError(t, a.AddPattern("netflixtechblog.com", `^/[a-z0-9-]+-[0-9a-f]{6,}$`))

	require.True(t, a.IsAllowedURL("netflixtechblog.com", "/how-we-scaled-things-abc123def"))
	require.False(t, a.IsAllowedURL("netflixtechblog.com", "/about"))
	require.False(t, a.IsAllowedURL("other.com", "/how-we-scaled-things-abc123def"))
}

func TestAllowListListingPageIsAllowedButMarkedAsListing(t *testing.T) {
	a := frontier.NewAllowList()
	a.AddListing("netflixtechblog.com", "/")

	require.True(t, a.IsAllowedURL("netflixtechblog.com", "/"))
	require.True(t, a.IsListingURL("netflixtechblog.com", "/"))
	require.False(t, a.IsListingURL("netflixtechblog.com", "/some-post-abc123"))
}
