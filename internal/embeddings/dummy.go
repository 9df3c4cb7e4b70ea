package embeddings

import (
	"context"
	"hash/fnv"

	"github.com/eng-universe/blogsearch/pkg/failure"
)

// DummyProvider is a deterministic, dependency-free embedding backend used
// in tests and in deployments that never configured a real one. Equal
// input text always produces an equal vector; no two inputs are
// guaranteed to differ meaningfully, which is fine since it exists only
// to exercise the rest of the pipeline without a real model.
type DummyProvider struct {
	dim int
}

func NewDummyProvider(dim int) *DummyProvider {
	return &DummyProvider{dim: dim}
}

func (d *DummyProvider) Embed(ctx context.Context, text string) ([]float32, ProviderName, failure.ClassifiedError) {
	vec := make([]float32, d.dim)
	h := fnv.New32a()
	for i := 0; i < d.dim; i++ {
		h.Write([]byte{byte(i)})
		h.Write([]byte(text))
		sum := h.Sum32()
		vec[i] = float32(sum%2000)/1000.0 - 1.0
	}
	return vec, ProviderDummy, nil
}
