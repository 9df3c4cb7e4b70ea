package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eng-universe/blogsearch/pkg/retry"
	"github.com/eng-universe/blogsearch/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDummyProviderIsDeterministic(t *testing.T) {
	p := NewDummyProvider(8)

	vec1, name, err := p.Embed(context.Background(), "golang concurrency patterns")
	require.Nil(t, err)
	assert.Equal(t, ProviderDummy, name)
	assert.Len(t, vec1, 8)

	vec2, _, _ := p.Embed(context.Background(), "golang concurrency patterns")
	assert.Equal(t, vec1, vec2)

	vec3, _, _ := p.Embed(context.Background(), "something else entirely")
	assert.NotEqual(t, vec1, vec3)
}

func testRetryParam() retry.RetryParam {
	return retry.NewRetryParam(time.Millisecond, time.Millisecond, 1, 2, timeutil.NewBackoffParam(time.Millisecond, 2.0, 10*time.Millisecond))
}

func TestRemoteProviderMeanPoolsTokenMatrix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		matrix := [][]float32{{1, 1, 1}, {3, 3, 3}}
		_ = json.NewEncoder(w).Encode(matrix)
	}))
	defer srv.Close()

	p := NewRemoteProvider("test-model", "secret", testRetryParam())
	p.endpoint = srv.URL

	vec, name, err := p.Embed(context.Background(), "hello world")
	require.Nil(t, err)
	assert.Equal(t, ProviderHuggingFace, name)
	assert.Equal(t, []float32{2, 2, 2}, vec)
}

func TestRemoteProviderRejectsOn4xxWithoutRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer srv.Close()

	p := NewRemoteProvider("test-model", "bad-key", testRetryParam())
	p.endpoint = srv.URL

	_, _, err := p.Embed(context.Background(), "hello world")
	require.NotNil(t, err)
	assert.Equal(t, 1, calls)
}

func TestRemoteProviderRetriesOn5xx(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode([]float32{1, 2, 3})
	}))
	defer srv.Close()

	p := NewRemoteProvider("test-model", "", testRetryParam())
	p.endpoint = srv.URL

	vec, _, err := p.Embed(context.Background(), "hello world")
	require.Nil(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.Equal(t, 2, calls)
}

func TestLateInteractionRetrieveTreatsEmptyIndexAsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"index_empty": true, "results": []any{}})
	}))
	defer srv.Close()

	c := NewLateInteractionClient(srv.URL, "colbert-small", "")
	docs, err := c.Retrieve(context.Background(), "query text", 5)
	require.Nil(t, err)
	assert.Empty(t, docs)
}

func TestLateInteractionRetrieveReturnsRankedResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": "doc-1", "score": 0.9},
				{"id": "doc-2", "score": 0.5},
			},
		})
	}))
	defer srv.Close()

	c := NewLateInteractionClient(srv.URL, "colbert-small", "")
	docs, err := c.Retrieve(context.Background(), "query text", 5)
	require.Nil(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].ID)
	assert.Equal(t, 0.9, docs[0].Score)
}

func TestLateInteractionAddDocumentsPropagatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewLateInteractionClient(srv.URL, "colbert-small", "")
	err := c.AddDocuments(context.Background(), []string{"1"}, []string{"text"})
	require.NotNil(t, err)
}
