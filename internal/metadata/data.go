package metadata

import (
	"time"
)

type FetchEvent struct {
	fetchUrl    string
	httpStatus  int
	duration    time.Duration
	contentType string
	crawlDepth  int
}

/*
crawlStats
  - Represents a terminal, derived summary of a completed crawl run
  - Contains only aggregate counts and durations
  - Is computed by the supervising driver after shutdown
  - Is recorded exactly once
  - Must not influence scheduling, retries, or crawl termination
  - Must be constructed without reading metadata
*/
type crawlStats struct {
	totalFetched int
	totalStored  int
	totalErrors  int
	totalDenied  int
	durationMs   int64
}

// ArtifactKind enumerates the side-channel artifacts the pipeline persists.
type ArtifactKind string

const (
	ArtifactRawHTML     ArtifactKind = "raw_html"
	ArtifactCleanText   ArtifactKind = "clean_text"
	ArtifactIndexRecord ArtifactKind = "index_record"
)

type ArtifactRecord struct {
	paths string
	kind  ArtifactKind
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to derive retry, continuation, or abort decisions.
	 - Any use of metadata.ErrorCause outside logging, metrics, or reporting is a design violation.
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for retry, continuation, or abort decisions.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.
	Non-goals:
	 - ErrorCause does not encode severity.
	 - ErrorCause does not imply retryability.
	 - ErrorCause does not imply crawl termination.
	 - ErrorCause does not imply correctness of downstream behavior.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

Meaning:
  - The failure does not map cleanly to any known category.
  - Used as a safe fallback.

Examples:
  - Unexpected internal errors
  - Unclassified third-party library failures

# CauseNetworkFailure

Meaning:
  - Failure caused by network transport or remote availability.

Examples:
  - TCP timeouts
  - DNS resolution failures
  - Connection resets
  - robots.txt fetch timeout

# CausePolicyDisallow

Meaning:
  - Crawling was disallowed by an explicit policy or rule.

Examples:
  - robots.txt disallow
  - HTTP 403 / 401 interpreted as access denial
  - rate-limit enforcement

# CauseContentInvalid

Meaning:
  - Content was fetched but could not be processed meaningfully.

Examples:
  - Non-HTML responses
  - Empty or unextractable document bodies
  - Broken sitemap XML

# CauseStorageFailure

Meaning:
  - Failure while persisting crawl artifacts, locally or in object storage.

Examples:
  - Disk full
  - Write permission errors
  - Object storage upload failure

# CauseStoreFailure

Meaning:
  - Failure talking to the shared coordination store.

Examples:
  - Connection refused
  - Command error returned by the store

# CauseRetryFailure

Meaning:
  - A bounded retry loop exhausted its attempts.

Examples:
  - Embedding provider HTTP calls giving up after max attempts

# CauseInvariantViolation

Meaning:
  - A system-level invariant was violated.

Examples:
  - Embedding dimension deficit
  - Impossible crawl depth
  - Internal consistency checks failing
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseStoreFailure
	CauseRetryFailure
	CauseInvariantViolation
)

type ErrorRecord struct {
	packageName string
	action      string
	cause       ErrorCause
	errorString string
	observedAt  time.Time
	attrs       []Attribute
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrTime       AttributeKey = "time"
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrDomain     AttributeKey = "domain"
	AttrPath       AttributeKey = "path"
	AttrDepth      AttributeKey = "depth"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
	AttrMessage    AttributeKey = "message"
	AttrDocID      AttributeKey = "doc_id"
	AttrMode       AttributeKey = "mode"
	AttrQuery      AttributeKey = "query"
)
