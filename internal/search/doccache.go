package search

import "context"

// docCacheStore is the narrow slice of store.Client a DocCache needs to
// warm itself: one SCAN pass to enumerate doc keys, then one HGETALL per
// key to load it.
type docCacheStore interface {
	ScanKeys(ctx context.Context, match string) ([]string, error)
	HashGetAll(ctx context.Context, key string) (map[string]string, error)
}

// DocCache is the optional in-process hydration cache: a doc_key ->
// decoded hash map populated by one SCAN doc:* pass at planner
// construction, consulted in place of a per-candidate HGETALL when
// present.
type DocCache struct {
	docs map[string]hydratedDoc
}

// NewDocCache scans every key matching pattern (e.g. "doc:*") and loads
// each hash into memory. A store with no matching keys yet produces an
// empty, valid cache rather than an error.
func NewDocCache(ctx context.Context, store docCacheStore, pattern string) (*DocCache, error) {
	keys, err := store.ScanKeys(ctx, pattern)
	if err != nil {
		return nil, err
	}
	docs := make(map[string]hydratedDoc, len(keys))
	for _, key := range keys {
		hash, err := store.HashGetAll(ctx, key)
		if err != nil || len(hash) == 0 {
			continue
		}
		docID := hash["doc_id"]
		if docID == "" {
			docID = key
		}
		docs[key] = hydratedDocFromHash(docID, hash)
	}
	return &DocCache{docs: docs}, nil
}

// Len reports how many documents the cache holds.
func (c *DocCache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

func (c *DocCache) get(key string) (hydratedDoc, bool) {
	d, ok := c.docs[key]
	return d, ok
}
