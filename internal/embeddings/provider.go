package embeddings

import (
	"context"

	"github.com/eng-universe/blogsearch/pkg/failure"
)

// Provider is the embed trait every non-late-interaction backend
// implements: a single piece of text in, a fixed-length vector plus the
// provider's own name out.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, ProviderName, failure.ClassifiedError)
}

// LateInteractionProvider is the optional pluggable multi-vector
// (ColBERT-family) retriever: documents are handed to it
// directly instead of a single stored vector, and queries are resolved by
// delegating retrieval to it rather than running a KNN clause.
type LateInteractionProvider interface {
	AddDocuments(ctx context.Context, ids, texts []string) failure.ClassifiedError
	Retrieve(ctx context.Context, query string, k int) ([]RetrievedDoc, failure.ClassifiedError)
}
