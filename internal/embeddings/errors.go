package embeddings

import (
	"fmt"

	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/pkg/failure"
)

type EmbeddingErrorCause string

const (
	ErrCauseProviderUnreachable EmbeddingErrorCause = "provider unreachable"
	ErrCauseProviderRejected    EmbeddingErrorCause = "provider rejected request"
	ErrCauseDimDeficit          EmbeddingErrorCause = "embedding dimension deficit"
	ErrCauseEmptyIndex          EmbeddingErrorCause = "late-interaction index is empty"
)

type EmbeddingError struct {
	Message   string
	Retryable bool
	Cause     EmbeddingErrorCause
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embeddings: %s: %s", e.Cause, e.Message)
}

func (e *EmbeddingError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *EmbeddingError) IsRetryable() bool {
	return e.Retryable
}

func mapEmbeddingErrorToMetadataCause(err *EmbeddingError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseProviderUnreachable:
		return metadata.CauseNetworkFailure
	case ErrCauseDimDeficit:
		return metadata.CauseInvariantViolation
	case ErrCauseEmptyIndex:
		return metadata.CauseUnknown
	default:
		return metadata.CauseUnknown
	}
}
