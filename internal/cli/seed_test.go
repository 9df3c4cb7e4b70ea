package cmd_test

import (
	"context"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	cmd "github.com/eng-universe/blogsearch/internal/cli"
	"github.com/eng-universe/blogsearch/internal/frontier"
	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestFrontier(t *testing.T) *frontier.Frontier {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sc := store.NewFromRedis(rdb)
	t.Cleanup(func() { sc.Close() })

	return frontier.New(sc, "crawl:queue", "crawl:delay", "crawl:seen",
		func(domain string) string { return "robots:next_allowed:" + domain },
		func() float64 { return 0 })
}

func TestSeedOneEnqueuesURLAndItsSitemaps(t *testing.T) {
	fr := newTestFrontier(t)
	sink := metadata.NewRecorder(zerolog.New(io.Discard))
	ctx := context.Background()

	cmd.SeedOneForTest(ctx, fr, sink, "https://stripe.com/blog/online-migration")

	n, err := fr.QueueLen(ctx)
	require.NoError(t, err)
	// one article URL plus two default sitemap locations for stripe.com
	require.Equal(t, int64(3), n)
}

func TestSeedOneUnsupportedHostStillEnqueuesTheURLAlone(t *testing.T) {
	fr := newTestFrontier(t)
	sink := metadata.NewRecorder(zerolog.New(io.Discard))
	ctx := context.Background()

	cmd.SeedOneForTest(ctx, fr, sink, "https://not-a-supported-blog.example/post")

	n, err := fr.QueueLen(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}
