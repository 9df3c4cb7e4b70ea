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
	"github.com/eng-universe/blogsearch/pkg/retry"
)

// RemoteProvider calls a hosted feature-extraction endpoint (the
// HuggingFace Inference API by default) and mean-pools the returned token
// matrix down to a single vector. This is the one embedding path allowed
// to retry: a transient 5xx or timeout from the provider is retried, up to
// retryParam.MaxAttempts calls in all, unlike a page fetch.
type RemoteProvider struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	retryParam retry.RetryParam
}

func NewRemoteProvider(model, apiKey string, retryParam retry.RetryParam) *RemoteProvider {
	return &RemoteProvider{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   "https://api-inference.huggingface.co/models/" + model,
		apiKey:     apiKey,
		retryParam: retryParam,
	}
}

func (r *RemoteProvider) Embed(ctx context.Context, text string) ([]float32, ProviderName, failure.ClassifiedError) {
	task := func() ([]float32, failure.ClassifiedError) {
		return r.callOnce(ctx, text)
	}
	result := retry.Retry(r.retryParam, task)
	if result.Err() != nil {
		return nil, ProviderHuggingFace, result.Err()
	}
	return result.Value(), ProviderHuggingFace, nil
}

func (r *RemoteProvider) callOnce(ctx context.Context, text string) ([]float32, failure.ClassifiedError) {
	payload, _ := json.Marshal(map[string]interface{}{
		"inputs":  text,
		"options": map[string]bool{"wait_for_model": true},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &EmbeddingError{Message: err.Error(), Retryable: false, Cause: ErrCauseProviderRejected}
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &EmbeddingError{Message: err.Error(), Retryable: true, Cause: ErrCauseProviderUnreachable}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &EmbeddingError{Message: err.Error(), Retryable: true, Cause: ErrCauseProviderUnreachable}
	}

	if resp.StatusCode >= 500 {
		return nil, &EmbeddingError{Message: fmt.Sprintf("provider status %d", resp.StatusCode), Retryable: true, Cause: ErrCauseProviderUnreachable}
	}
	if resp.StatusCode >= 400 {
		return nil, &EmbeddingError{Message: fmt.Sprintf("provider status %d: %s", resp.StatusCode, string(body)), Retryable: false, Cause: ErrCauseProviderRejected}
	}

	return meanPool(body)
}

// meanPool decodes a HuggingFace feature-extraction response, which may be
// a flat vector, a token-by-dimension matrix, or a batch of those, and
// mean-pools across every outer dimension down to one vector.
func meanPool(body []byte) ([]float32, failure.ClassifiedError) {
	var flat []float32
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	var matrix [][]float32
	if err := json.Unmarshal(body, &matrix); err == nil && len(matrix) > 0 {
		return meanRows(matrix), nil
	}

	var batch [][][]float32
	if err := json.Unmarshal(body, &batch); err == nil && len(batch) > 0 {
		return meanRows(batch[0]), nil
	}

	return nil, &EmbeddingError{Message: "unrecognized embedding response shape", Retryable: false, Cause: ErrCauseProviderRejected}
}

func meanRows(rows [][]float32) []float32 {
	if len(rows) == 0 {
		return nil
	}
	dim := len(rows[0])
	out := make([]float32, dim)
	for _, row := range rows {
		for i := 0; i < dim && i < len(row); i++ {
			out[i] += row[i]
		}
	}
	n := float32(len(rows))
	for i := range out {
		out[i] /= n
	}
	return out
}
