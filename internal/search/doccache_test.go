package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScanStore struct {
	keys []string
	docs map[string]map[string]string
}

func (s *fakeScanStore) ScanKeys(ctx context.Context, match string) ([]string, error) {
	return s.keys, nil
}

func (s *fakeScanStore) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.docs[key], nil
}

func TestNewDocCacheLoadsEveryScannedKey(t *testing.T) {
	store := &fakeScanStore{
		keys: []string{"doc:1", "doc:2"},
		docs: map[string]map[string]string{
			"doc:1": docHash("1", "Kafka internals", "kafka streams partitions", nil),
			"doc:2": docHash("2", "Flink basics", "stream processing with flink", nil),
		},
	}
	cache, err := NewDocCache(context.Background(), store, "doc:*")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	d, ok := cache.get("doc:1")
	require.True(t, ok)
	assert.Equal(t, "Kafka internals", d.title)

	_, ok = cache.get("doc:missing")
	assert.False(t, ok)
}

func TestPlannerUsesDocCacheInsteadOfStoreHydration(t *testing.T) {
	textOnly := &fakeStore{
		textKeys: []string{"doc:1"},
		// No docs registered on the store side: if the planner fell
		// back to a store HGETALL, hydration would fail.
		docs: map[string]map[string]string{},
	}
	cache := &DocCache{docs: map[string]hydratedDoc{
		"doc:1": hydratedDocFromHash("1", docHash("1", "Cached title", "cached content", nil)),
	}}

	p := New(textOnly, nil, nil, testSink(), nil, Config{IndexName: "idx:blogs"}).WithDocCache(cache)

	results, _, err := p.Search(context.Background(), "kafka", ModeKeyword, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Cached title", results[0].Title)
}
