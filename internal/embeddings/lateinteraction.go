package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eng-universe/blogsearch/pkg/failure"
)

// LateInteractionClient talks to a pylate/ColBERT-style scoring service:
// documents are handed over in full and the service keeps its own
// multi-vector index, so retrieval is delegated rather than computed
// locally from a stored embedding column.
type LateInteractionClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

func NewLateInteractionClient(baseURL, model, apiKey string) *LateInteractionClient {
	return &LateInteractionClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
	}
}

type addDocumentsRequest struct {
	Model string   `json:"model"`
	IDs   []string `json:"ids"`
	Texts []string `json:"texts"`
}

func (c *LateInteractionClient) AddDocuments(ctx context.Context, ids, texts []string) failure.ClassifiedError {
	body, _ := json.Marshal(addDocumentsRequest{Model: c.model, IDs: ids, Texts: texts})
	resp, err := c.post(ctx, "/documents", body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

type retrieveRequest struct {
	Model string `json:"model"`
	Query string `json:"query"`
	K     int    `json:"k"`
}

type retrieveResponse struct {
	Results []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	} `json:"results"`
	Empty bool `json:"index_empty"`
}

func (c *LateInteractionClient) Retrieve(ctx context.Context, query string, k int) ([]RetrievedDoc, failure.ClassifiedError) {
	body, _ := json.Marshal(retrieveRequest{Model: c.model, Query: query, K: k})
	resp, embErr := c.post(ctx, "/retrieve", body)
	if embErr != nil {
		return nil, embErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &EmbeddingError{Message: err.Error(), Retryable: false, Cause: ErrCauseProviderUnreachable}
	}

	var parsed retrieveResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &EmbeddingError{Message: err.Error(), Retryable: false, Cause: ErrCauseProviderRejected}
	}

	// An empty index is a legitimate outcome before the first document has
	// been added, not a failure.
	if parsed.Empty || len(parsed.Results) == 0 {
		return []RetrievedDoc{}, nil
	}

	out := make([]RetrievedDoc, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, RetrievedDoc{ID: r.ID, Score: r.Score})
	}
	return out, nil
}

func (c *LateInteractionClient) post(ctx context.Context, path string, body []byte) (*http.Response, *EmbeddingError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &EmbeddingError{Message: err.Error(), Retryable: false, Cause: ErrCauseProviderRejected}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &EmbeddingError{Message: err.Error(), Retryable: true, Cause: ErrCauseProviderUnreachable}
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		return nil, &EmbeddingError{
			Message:   fmt.Sprintf("status %d: %s", resp.StatusCode, string(raw)),
			Retryable: resp.StatusCode >= 500,
			Cause:     ErrCauseProviderRejected,
		}
	}
	return resp, nil
}
