package fetcher

import (
	"context"

	"github.com/eng-universe/blogsearch/pkg/failure"
)

// Fetcher performs a single bounded HTTP GET and classifies the outcome.
// It never retries: per-fetch failures (permanent rejection or rate-limit
// contention alike) are resolved by the crawl worker dropping the item,
// not by the fetcher trying again.
type Fetcher interface {
	Fetch(ctx context.Context, crawlDepth int, fetchParam FetchParam) (FetchResult, failure.ClassifiedError)
}
