package store

import (
	"fmt"

	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/pkg/failure"
)

type StoreErrorCause string

const (
	ErrCauseConnectionFailure = "failed to connect to store"
	ErrCauseCommandFailure    = "store command failed"
	ErrCauseScriptFailure     = "store script evaluation failed"
)

type StoreError struct {
	Message   string
	Retryable bool
	Cause     StoreErrorCause
	Key       string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s (key=%s): %s", e.Cause, e.Key, e.Message)
}

func (e *StoreError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapStoreErrorToMetadataCause maps store-local error semantics to the
// canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used to derive
// control-flow decisions.
func mapStoreErrorToMetadataCause(err *StoreError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseConnectionFailure:
		return metadata.CauseNetworkFailure
	case ErrCauseCommandFailure, ErrCauseScriptFailure:
		return metadata.CauseStoreFailure
	default:
		return metadata.CauseUnknown
	}
}
