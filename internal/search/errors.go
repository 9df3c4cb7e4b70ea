package search

import (
	"fmt"

	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/pkg/failure"
)

type SearchErrorCause string

const (
	ErrCauseStoreFailure     SearchErrorCause = "coordination store failure"
	ErrCauseEmbeddingFailed  SearchErrorCause = "embedding provider failed"
	ErrCauseLateInteraction  SearchErrorCause = "late-interaction retrieval failed"
	ErrCauseMalformedResults SearchErrorCause = "malformed FT.SEARCH response"
)

// SearchError classifies a Search failure. A failed query never panics
// the caller; the composition root decides whether to surface it
// as an empty result set or an error to the CLI/API layer.
type SearchError struct {
	Message string
	Cause   SearchErrorCause
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search: %s: %s", e.Cause, e.Message)
}

func (e *SearchError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func (e *SearchError) IsRetryable() bool {
	return e.Cause == ErrCauseStoreFailure
}

func mapSearchErrorToMetadataCause(cause SearchErrorCause) metadata.ErrorCause {
	switch cause {
	case ErrCauseStoreFailure:
		return metadata.CauseStoreFailure
	case ErrCauseEmbeddingFailed, ErrCauseLateInteraction:
		return metadata.CauseInvariantViolation
	case ErrCauseMalformedResults:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
