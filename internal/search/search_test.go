package search

import (
	"context"
	"strings"
	"testing"

	"github.com/eng-universe/blogsearch/internal/embeddings"
	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/pkg/failure"
	"github.com/eng-universe/blogsearch/pkg/vectorutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory stand-in for the narrow storeClient slice
// the planner depends on: it answers FT.SEARCH calls from two canned
// key lists (selected by whether the query contains a KNN clause) and
// serves doc:{doc_id} hashes from a plain map.
type fakeStore struct {
	textKeys   []string
	vectorKeys []string
	docs       map[string]map[string]string
}

func (s *fakeStore) RawCommand(ctx context.Context, args ...interface{}) (interface{}, error) {
	expr, _ := args[2].(string)
	keys := s.textKeys
	if strings.Contains(expr, "KNN") {
		keys = s.vectorKeys
	}
	out := []interface{}{int64(len(keys))}
	for _, k := range keys {
		out = append(out, k)
	}
	return out, nil
}

func (s *fakeStore) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.docs[key], nil
}

type fakeProvider struct {
	vec []float32
}

func (p *fakeProvider) Embed(ctx context.Context, text string) ([]float32, embeddings.ProviderName, failure.ClassifiedError) {
	return p.vec, embeddings.ProviderDummy, nil
}

func testSink() metadata.MetadataSink {
	return metadata.NewRecorder(zerolog.Nop())
}

func docHash(docID, title, content string, vec []float32) map[string]string {
	h := map[string]string{
		"doc_id":  docID,
		"title":   title,
		"content": content,
		"url":     "https://blog.example.com/" + docID,
		"source":  "seed",
		"authors": "Ada Lovelace",
	}
	if vec != nil {
		h["embedding"] = string(vectorutil.PackFloat32(vec))
	}
	return h
}

func TestSearchKeywordHydratesInOrder(t *testing.T) {
	store := &fakeStore{
		textKeys: []string{"doc:1", "doc:2"},
		docs: map[string]map[string]string{
			"doc:1": docHash("1", "Kafka internals", "kafka streams partitions", nil),
			"doc:2": docHash("2", "Flink basics", "stream processing with flink", nil),
		},
	}
	p := New(store, nil, nil, testSink(), nil, Config{IndexName: "idx:blogs"})

	results, _, err := p.Search(context.Background(), "kafka streams", ModeKeyword, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].DocID)
	assert.Equal(t, "2", results[1].DocID, "keyword mode preserves FT.SEARCH's own result order")
	assert.Equal(t, float64(0), results[0].Score, "keyword mode never recomputes a score")
	assert.Equal(t, float64(0), results[1].Score)
	assert.Equal(t, []string{"Ada Lovelace"}, results[0].Authors)
}

func TestSearchKeywordEmptyQueryReturnsNoResults(t *testing.T) {
	store := &fakeStore{}
	p := New(store, nil, nil, testSink(), nil, Config{IndexName: "idx:blogs"})

	results, _, err := p.Search(context.Background(), "   ", ModeKeyword, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSemanticRanksByCosineSimilarity(t *testing.T) {
	queryVec := []float32{1, 0, 0}
	store := &fakeStore{
		vectorKeys: []string{"doc:1", "doc:2"},
		docs: map[string]map[string]string{
			"doc:1": docHash("1", "Off topic", "unrelated content", []float32{0, 1, 0}),
			"doc:2": docHash("2", "On topic", "closely related content", []float32{0.9, 0.1, 0}),
		},
	}
	p := New(store, &fakeProvider{vec: queryVec}, nil, testSink(), nil,
		Config{IndexName: "idx:blogs", EmbeddingsDim: 3})

	results, _, err := p.Search(context.Background(), "topic", ModeSemantic, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "2", results[0].DocID)
}

func TestSearchHybridUnionsTextAndVectorCandidates(t *testing.T) {
	queryVec := []float32{1, 0}
	store := &fakeStore{
		textKeys:   []string{"doc:3"},
		vectorKeys: []string{"doc:1"},
		docs: map[string]map[string]string{
			"doc:1": docHash("1", "Vector hit", "semantic match content", []float32{1, 0}),
			"doc:3": docHash("3", "Lexical hit", "kafka keyword match", []float32{0, 1}),
		},
	}
	p := New(store, &fakeProvider{vec: queryVec}, nil, testSink(), nil,
		Config{IndexName: "idx:blogs", EmbeddingsDim: 2, CandidateMultiplier: 5})

	results, _, err := p.Search(context.Background(), "kafka", ModeHybrid, 10)
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, r := range results {
		ids[r.DocID] = true
	}
	assert.True(t, ids["1"])
	assert.True(t, ids["3"])
	assert.Equal(t, "1", results[0].DocID, "candidate with higher cosine similarity to the query should rank first")
}

func TestSearchHybridDropsCandidatesWithoutEmbeddings(t *testing.T) {
	queryVec := []float32{1, 0}
	store := &fakeStore{
		textKeys:   []string{"doc:3"},
		vectorKeys: []string{"doc:1"},
		docs: map[string]map[string]string{
			"doc:1": docHash("1", "Vector hit", "semantic match content", []float32{1, 0}),
			"doc:3": docHash("3", "Lexical hit", "kafka keyword match", nil),
		},
	}
	p := New(store, &fakeProvider{vec: queryVec}, nil, testSink(), nil,
		Config{IndexName: "idx:blogs", EmbeddingsDim: 2, CandidateMultiplier: 5})

	results, _, err := p.Search(context.Background(), "kafka", ModeHybrid, 10)
	require.NoError(t, err)
	require.Len(t, results, 1, "candidate with no usable embedding must be dropped, not scored")
	assert.Equal(t, "1", results[0].DocID)
}

func TestParseDocKeysHandlesEmptyResponse(t *testing.T) {
	ids, err := parseDocKeys([]interface{}{int64(0)})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParseDocKeysRejectsUnexpectedShape(t *testing.T) {
	_, err := parseDocKeys("not-an-array")
	require.Error(t, err)
}
