package embeddings

import (
	"time"

	"github.com/eng-universe/blogsearch/pkg/retry"
	"github.com/eng-universe/blogsearch/pkg/timeutil"
)

// BackendConfig carries every setting New needs to pick and build a
// backend, independent of the config package so this factory stays
// importable from both the indexer and search composition roots without
// creating an import cycle.
type BackendConfig struct {
	Provider                  string // "dummy", "huggingface", "pylate" or "colbert"
	Dim                       int
	HuggingFaceAPIKey         string
	HuggingFaceEmbeddingModel string
	PylateBaseURL             string
	PylateModel               string
	PylateAPIKey              string
}

var defaultRetryParam = retry.NewRetryParam(
	200*time.Millisecond,
	100*time.Millisecond,
	1,
	3,
	timeutil.NewBackoffParam(200*time.Millisecond, 2.0, 5*time.Second),
)

// New builds the configured embedding backend. A late-interaction
// backend (pylate/colbert) owns both indexing and retrieval itself, so
// it's returned as the second value instead of a Provider; callers
// consult whichever of the two is non-nil. Exactly one of the two
// returned values is non-nil; any provider name other than huggingface,
// pylate, or colbert yields the dummy Provider.
func New(cfg BackendConfig) (Provider, LateInteractionProvider) {
	switch cfg.Provider {
	case "huggingface":
		return NewRemoteProvider(cfg.HuggingFaceEmbeddingModel, cfg.HuggingFaceAPIKey, defaultRetryParam), nil
	case "pylate", "colbert":
		return nil, NewLateInteractionClient(cfg.PylateBaseURL, cfg.PylateModel, cfg.PylateAPIKey)
	default:
		return NewDummyProvider(cfg.Dim), nil
	}
}
