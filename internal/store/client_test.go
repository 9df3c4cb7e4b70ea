package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewFromRedis(rdb)
}

func TestQueuePushPop(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, ok, err := c.PopLeft(ctx, "crawl:queue")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.PushRight(ctx, "crawl:queue", "a"))
	require.NoError(t, c.PushRight(ctx, "crawl:queue", "b"))

	n, err := c.Length(ctx, "crawl:queue")
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	v, ok, err := c.PopLeft(ctx, "crawl:queue")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", v)
}

func TestSeenAddIsAtMostOnce(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	added, err := c.SeenAdd(ctx, "crawl:seen", "hash1")
	require.NoError(t, err)
	require.True(t, added)

	addedAgain, err := c.SeenAdd(ctx, "crawl:seen", "hash1")
	require.NoError(t, err)
	require.False(t, addedAgain)
}

func TestDelayedDueOrdering(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	require.NoError(t, c.DelayedAdd(ctx, "crawl:delay", "late", 300))
	require.NoError(t, c.DelayedAdd(ctx, "crawl:delay", "early", 100))
	require.NoError(t, c.DelayedAdd(ctx, "crawl:delay", "mid", 200))

	due, err := c.DelayedDue(ctx, "crawl:delay", 250)
	require.NoError(t, err)
	require.Equal(t, []string{"early", "mid"}, due)
}

func TestDelayedRemoveBatchReportsPerMemberOutcome(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	require.NoError(t, c.DelayedAdd(ctx, "crawl:delay", "present", 100))

	removed, err := c.DelayedRemoveBatch(ctx, "crawl:delay", []string{"present", "absent"})
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, removed)

	// A second pass over the same member loses the race it already won.
	removed, err = c.DelayedRemoveBatch(ctx, "crawl:delay", []string{"present"})
	require.NoError(t, err)
	require.Equal(t, []bool{false}, removed)
}

func TestPushRightBatchPreservesOrder(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	require.NoError(t, c.PushRightBatch(ctx, "crawl:queue", []string{"a", "b", "c"}))

	for _, want := range []string{"a", "b", "c"} {
		v, ok, err := c.PopLeft(ctx, "crawl:queue")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, want, v)
	}
}

func TestHashRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	require.NoError(t, c.HashSet(ctx, "robots:example.com", map[string]string{
		"crawl_delay_s": "2",
		"allowed":       "true",
	}))

	m, err := c.HashGetAll(ctx, "robots:example.com")
	require.NoError(t, err)
	require.Equal(t, "2", m["crawl_delay_s"])
	require.Equal(t, "true", m["allowed"])
}

func TestIncrMonotonic(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	first, err := c.Incr(ctx, "crawl:doc_seq")
	require.NoError(t, err)
	second, err := c.Incr(ctx, "crawl:doc_seq")
	require.NoError(t, err)
	require.Equal(t, first+1, second)
}

func TestScanKeysMatchesPattern(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	require.NoError(t, c.HashSet(ctx, "doc:a", map[string]string{"title": "a"}))
	require.NoError(t, c.HashSet(ctx, "doc:b", map[string]string{"title": "b"}))
	require.NoError(t, c.HashSet(ctx, "robots:example.com", map[string]string{"allowed": "true"}))

	keys, err := c.ScanKeys(ctx, "doc:*")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"doc:a", "doc:b"}, keys)
}

func TestReserveMutualExclusion(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	res, err := c.Reserve(ctx, "robots:next_allowed:example.com", 1000, 5)
	require.NoError(t, err)
	require.True(t, res.Reserved)
	require.Equal(t, float64(1005), res.NextAllowed)

	res2, err := c.Reserve(ctx, "robots:next_allowed:example.com", 1001, 5)
	require.NoError(t, err)
	require.False(t, res2.Reserved)
	require.Equal(t, float64(1005), res2.NextAllowed)

	res3, err := c.Reserve(ctx, "robots:next_allowed:example.com", 1006, 5)
	require.NoError(t, err)
	require.True(t, res3.Reserved)
	require.Equal(t, float64(1011), res3.NextAllowed)
}
