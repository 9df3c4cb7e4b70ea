package indexer

import (
	"fmt"

	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/pkg/failure"
)

type IndexErrorCause string

const (
	ErrCauseStoreFailure    IndexErrorCause = "coordination store failure"
	ErrCauseRawMissing      IndexErrorCause = "raw document missing"
	ErrCauseEmbeddingFailed IndexErrorCause = "embedding provider failed"
)

// IndexError classifies a failure inside the indexer loop. A store
// error is the only thing that terminates the loop; everything
// else (missing crawl:doc record, embedding failure) is logged and
// skipped.
type IndexError struct {
	Message string
	Cause   IndexErrorCause
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("indexer: %s: %s", e.Cause, e.Message)
}

func (e *IndexError) Severity() failure.Severity {
	if e.Cause == ErrCauseStoreFailure {
		return failure.SeverityFatal
	}
	return failure.SeverityRecoverable
}

func (e *IndexError) IsRetryable() bool {
	return false
}

func mapIndexErrorToMetadataCause(cause IndexErrorCause) metadata.ErrorCause {
	switch cause {
	case ErrCauseStoreFailure:
		return metadata.CauseStoreFailure
	case ErrCauseRawMissing:
		return metadata.CauseContentInvalid
	case ErrCauseEmbeddingFailed:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
