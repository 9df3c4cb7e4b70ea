/*
Package search is the query planner: it turns a raw query string into
FT.SEARCH/FT.SEARCH-KNN calls against the coordination store's
secondary index, hydrates candidate doc:{doc_id} hashes, and ranks
them.

Vector scoring is always recomputed client-side from the stored
embedding bytes rather than trusted from RediSearch's own vector_score
field — this keeps ranking stable across index rebuilds and makes the
planner indifferent to which embedding provider actually produced the
stored vector.
*/
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/eng-universe/blogsearch/internal/embeddings"
	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/pkg/failure"
	"github.com/eng-universe/blogsearch/pkg/vectorutil"
)

type storeClient interface {
	RawCommand(ctx context.Context, args ...interface{}) (interface{}, error)
	HashGetAll(ctx context.Context, key string) (map[string]string, error)
}

// embeddingProvider is the narrow slice of embeddings.Provider the
// planner depends on to embed the query string for semantic/hybrid mode.
type embeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, embeddings.ProviderName, failure.ClassifiedError)
}

// lateInteractionProvider is the narrow slice of
// embeddings.LateInteractionProvider the planner depends on. When set,
// it replaces the KNN-over-stored-embeddings path entirely for
// semantic/hybrid modes.
type lateInteractionProvider interface {
	Retrieve(ctx context.Context, query string, k int) ([]embeddings.RetrievedDoc, failure.ClassifiedError)
}

// searchMetrics is the latency sink a Planner reports every completed
// Search call into.
type searchMetrics interface {
	ObserveSearchLatency(ms float64)
}

// Config configures a Planner.
type Config struct {
	IndexName           string
	DocKey              func(docID string) string
	EmbeddingsDim       int
	CandidateMultiplier int // hybrid/semantic candidate pool size as a multiple of the requested limit; 0 defaults to 5
}

type Planner struct {
	store        storeClient
	provider     embeddingProvider
	lateBackend  lateInteractionProvider
	metadataSink metadata.MetadataSink
	metrics      searchMetrics
	cfg          Config
	docCache     *DocCache
}

// WithDocCache attaches an in-process doc-hydration cache, built by
// NewDocCache, in place of this planner's per-candidate HGETALL calls.
// Returns the planner for chaining at construction time.
func (p *Planner) WithDocCache(cache *DocCache) *Planner {
	p.docCache = cache
	return p
}

func New(store storeClient, provider embeddingProvider, lateBackend lateInteractionProvider,
	metadataSink metadata.MetadataSink, metrics searchMetrics, cfg Config) *Planner {
	if cfg.CandidateMultiplier <= 0 {
		cfg.CandidateMultiplier = 5
	}
	return &Planner{
		store: store, provider: provider, lateBackend: lateBackend,
		metadataSink: metadataSink, metrics: metrics, cfg: cfg,
	}
}

// queryTimer accumulates the store-round-trip time of one Search call.
// Only FT.SEARCH commands count: embedding the query or hydrating docs
// is deliberately excluded, so the reported latency reflects the index,
// not the embedding provider.
type queryTimer struct {
	ms float64
}

// ftSearch runs one FT.SEARCH round-trip, charging its wall time to qt.
func (p *Planner) ftSearch(ctx context.Context, qt *queryTimer, args ...interface{}) (interface{}, error) {
	start := time.Now()
	raw, err := p.store.RawCommand(ctx, args...)
	qt.ms += float64(time.Since(start)) / float64(time.Millisecond)
	return raw, err
}

// Search dispatches by mode, hydrates candidates, ranks them, and
// returns the summed FT.SEARCH round-trip time in milliseconds. The
// same value is observed into the search-latency histogram regardless
// of outcome.
func (p *Planner) Search(ctx context.Context, query string, mode Mode, limit int) ([]Result, float64, error) {
	if limit <= 0 {
		limit = 10
	}
	qt := &queryTimer{}
	defer func() {
		if p.metrics != nil {
			p.metrics.ObserveSearchLatency(qt.ms)
		}
	}()

	var results []Result
	var err error
	switch mode {
	case ModeSemantic:
		results, err = p.searchSemantic(ctx, qt, query, limit)
	case ModeHybrid:
		results, err = p.searchHybrid(ctx, qt, query, limit)
	default:
		results, err = p.searchKeyword(ctx, qt, query, limit)
	}
	return results, qt.ms, err
}

// searchKeyword lets FT.SEARCH's own ranking decide result order; the
// planner never recomputes a score for pure lexical hits (there is no
// vector_score field to read), so every result carries the literal
// score 0.
func (p *Planner) searchKeyword(ctx context.Context, qt *queryTimer, query string, limit int) ([]Result, error) {
	ids, err := p.runTextQuery(ctx, qt, query, limit)
	if err != nil {
		return nil, err
	}
	docs := p.hydrate(ctx, ids)
	results := make([]Result, 0, len(docs))
	for _, d := range docs {
		results = append(results, toResult(d, query, 0))
	}
	return results, nil
}

func (p *Planner) searchSemantic(ctx context.Context, qt *queryTimer, query string, limit int) ([]Result, error) {
	if p.lateBackend != nil {
		return p.searchLateInteraction(ctx, query, limit)
	}
	return p.searchVector(ctx, qt, query, limit)
}

// searchHybrid unions the keyword and KNN candidate doc-keys preserving
// first-seen order, hydrates each, then recomputes cosine similarity
// against the query embedding for every candidate that has a usable
// stored embedding. Candidates with a missing or dim-mismatched
// embedding are dropped rather than scored.
func (p *Planner) searchHybrid(ctx context.Context, qt *queryTimer, query string, limit int) ([]Result, error) {
	if p.lateBackend != nil {
		return p.searchLateInteraction(ctx, query, limit)
	}

	pool := limit * p.cfg.CandidateMultiplier

	textIDs, err := p.runTextQuery(ctx, qt, query, pool)
	if err != nil {
		return nil, err
	}
	vectorIDs, qvec, ok := p.vectorCandidateIDs(ctx, qt, query, pool)
	if !ok {
		vectorIDs = nil
	}

	order := make([]string, 0, len(textIDs)+len(vectorIDs))
	seen := map[string]bool{}
	for _, id := range textIDs {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, id := range vectorIDs {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}

	out := make([]Result, 0, len(order))
	for _, id := range order {
		doc, found := p.hydrateOne(ctx, id)
		if !found {
			continue
		}
		docVec, uerr := vectorutil.UnpackFloat32(doc.embedding)
		if !ok || uerr != nil || len(docVec) != len(qvec) {
			// No usable embedding (or no query embedding to compare
			// against): dropped from hybrid results entirely.
			continue
		}
		out = append(out, toResult(doc, query, vectorutil.CosineSimilarity(qvec, docVec)))
	}

	// First-seen order (union order above) is the tie-break for equal
	// scores; sort.SliceStable preserves it across the descending sort.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// vectorCandidateIDs embeds query, normalizes it to the configured
// dimension, and runs the KNN candidate query, returning the matching
// doc keys and the normalized query vector used to score them. ok is
// false when no provider is configured or embedding/normalization
// failed, in which case callers must not trust qvec.
func (p *Planner) vectorCandidateIDs(ctx context.Context, qt *queryTimer, query string, limit int) (ids []string, qvec []float32, ok bool) {
	if p.provider == nil {
		return nil, nil, false
	}
	vec, _, cerr := p.provider.Embed(ctx, query)
	if cerr != nil {
		p.metadataSink.RecordError("search", "vectorCandidateIDs", mapSearchErrorToMetadataCause(ErrCauseEmbeddingFailed), cerr,
			metadata.NewAttr(metadata.AttrQuery, query))
		return nil, nil, false
	}
	qvec, nerr := vectorutil.NormalizeEmbedding(vec, p.cfg.EmbeddingsDim)
	if nerr != nil {
		return nil, nil, false
	}

	raw, err := p.ftSearch(ctx, qt,
		"FT.SEARCH", p.cfg.IndexName,
		fmt.Sprintf("*=>[KNN %d @embedding $vec AS vector_score]", limit),
		"PARAMS", "2", "vec", string(vectorutil.PackFloat32(qvec)),
		"SORTBY", "vector_score",
		"LIMIT", "0", fmt.Sprintf("%d", limit),
		"RETURN", "0",
		"DIALECT", "2",
	)
	if err != nil {
		return nil, qvec, true
	}
	ids, err = parseDocKeys(raw)
	if err != nil {
		return nil, qvec, true
	}
	return ids, qvec, true
}

func (p *Planner) searchVector(ctx context.Context, qt *queryTimer, query string, limit int) ([]Result, error) {
	if p.provider == nil {
		return nil, nil
	}
	vec, _, cerr := p.provider.Embed(ctx, query)
	if cerr != nil {
		p.metadataSink.RecordError("search", "searchVector", mapSearchErrorToMetadataCause(ErrCauseEmbeddingFailed), cerr,
			metadata.NewAttr(metadata.AttrQuery, query))
		return nil, nil
	}
	qvec, nerr := vectorutil.NormalizeEmbedding(vec, p.cfg.EmbeddingsDim)
	if nerr != nil {
		return nil, nil
	}

	raw, err := p.ftSearch(ctx, qt,
		"FT.SEARCH", p.cfg.IndexName,
		fmt.Sprintf("*=>[KNN %d @embedding $vec AS vector_score]", limit),
		"PARAMS", "2", "vec", string(vectorutil.PackFloat32(qvec)),
		"SORTBY", "vector_score",
		"LIMIT", "0", fmt.Sprintf("%d", limit),
		"RETURN", "0",
		"DIALECT", "2",
	)
	if err != nil {
		return nil, &SearchError{Message: err.Error(), Cause: ErrCauseStoreFailure}
	}
	ids, err := parseDocKeys(raw)
	if err != nil {
		return nil, &SearchError{Message: err.Error(), Cause: ErrCauseMalformedResults}
	}

	docs := p.hydrate(ctx, ids)
	results := make([]Result, 0, len(docs))
	for _, d := range docs {
		docVec, uerr := vectorutil.UnpackFloat32(d.embedding)
		score := 0.0
		if uerr == nil {
			score = vectorutil.CosineSimilarity(qvec, docVec)
		}
		results = append(results, toResult(d, query, score))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results, nil
}

func (p *Planner) searchLateInteraction(ctx context.Context, query string, limit int) ([]Result, error) {
	hits, cerr := p.lateBackend.Retrieve(ctx, query, limit)
	if cerr != nil {
		p.metadataSink.RecordError("search", "searchLateInteraction", mapSearchErrorToMetadataCause(ErrCauseLateInteraction), cerr,
			metadata.NewAttr(metadata.AttrQuery, query))
		return nil, nil
	}
	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		doc, ok := p.hydrateOne(ctx, h.ID)
		if !ok {
			continue
		}
		results = append(results, toResult(doc, query, h.Score))
	}
	return results, nil
}

func (p *Planner) runTextQuery(ctx context.Context, qt *queryTimer, query string, limit int) ([]string, error) {
	expr := buildTextQuery(query)
	if expr == "" {
		return nil, nil
	}
	raw, err := p.ftSearch(ctx, qt,
		"FT.SEARCH", p.cfg.IndexName, expr,
		"LIMIT", "0", fmt.Sprintf("%d", limit),
		"RETURN", "0",
		"DIALECT", "2",
	)
	if err != nil {
		return nil, &SearchError{Message: err.Error(), Cause: ErrCauseStoreFailure}
	}
	ids, err := parseDocKeys(raw)
	if err != nil {
		return nil, &SearchError{Message: err.Error(), Cause: ErrCauseMalformedResults}
	}
	return ids, nil
}

func (p *Planner) hydrate(ctx context.Context, ids []string) []hydratedDoc {
	docs := make([]hydratedDoc, 0, len(ids))
	for _, id := range ids {
		if d, ok := p.hydrateOne(ctx, id); ok {
			docs = append(docs, d)
		}
	}
	return docs
}

func (p *Planner) hydrateOne(ctx context.Context, docKey string) (hydratedDoc, bool) {
	if p.docCache != nil {
		return p.docCache.get(docKey)
	}
	hash, err := p.store.HashGetAll(ctx, docKey)
	if err != nil || len(hash) == 0 {
		return hydratedDoc{}, false
	}
	docID := hash["doc_id"]
	if docID == "" {
		docID = docKey
	}
	return hydratedDocFromHash(docID, hash), true
}

func toResult(d hydratedDoc, query string, score float64) Result {
	return Result{
		DocID:       d.docID,
		Title:       d.title,
		URL:         d.url,
		Snippet:     buildSnippet(d.content, query),
		Score:       score,
		Source:      d.source,
		Company:     d.company,
		Authors:     d.authors,
		Topics:      d.topics,
		PublishedAt: d.publishedAt,
	}
}

// parseDocKeys reads a RETURN-0 FT.SEARCH response, which is a flat
// array of [count, key1, key2, ...] with no per-key field payload.
func parseDocKeys(raw interface{}) ([]string, error) {
	arr, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("search: unexpected FT.SEARCH response type %T", raw)
	}
	if len(arr) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(arr)-1)
	for _, elem := range arr[1:] {
		switch v := elem.(type) {
		case string:
			ids = append(ids, v)
		case []byte:
			ids = append(ids, string(v))
		default:
			return nil, fmt.Errorf("search: unexpected FT.SEARCH key type %T", elem)
		}
	}
	return ids, nil
}
