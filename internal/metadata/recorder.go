package metadata

import (
	"time"

	"github.com/rs/zerolog"
)

/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Content hashes
- Crawl depth
- Store round-trip outcomes
- Artifact write locations

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Hashes
- Status codes
- Durations
- Identifiers (doc ID, domain)

Disallowed:
- Whole request/response objects
- Anything that would require re-deriving control-flow decisions from a log line
*/

// MetadataSink is the narrow, observation-only surface every pipeline
// component writes through. Nothing on this interface returns an error:
// a metadata sink must never be a reason a crawl, index, or search
// operation fails.
type MetadataSink interface {
	RecordFetch(event FetchEvent, attrs ...Attribute)
	RecordError(packageName, action string, cause ErrorCause, err error, attrs ...Attribute)
	RecordArtifact(record ArtifactRecord, attrs ...Attribute)
}

// Recorder is the zerolog-backed MetadataSink used throughout the pipeline.
// It holds no mutable state beyond the logger itself; every call is an
// independent structured log line.
type Recorder struct {
	log zerolog.Logger
}

func NewRecorder(log zerolog.Logger) *Recorder {
	return &Recorder{log: log}
}

func (r *Recorder) RecordFetch(event FetchEvent, attrs ...Attribute) {
	evt := r.log.Info().
		Str("url", event.fetchUrl).
		Int("http_status", event.httpStatus).
		Dur("duration", event.duration).
		Str("content_type", event.contentType).
		Int("depth", event.crawlDepth)
	applyAttrs(evt, attrs)
	evt.Msg("fetch")
}

func (r *Recorder) RecordError(packageName, action string, cause ErrorCause, err error, attrs ...Attribute) {
	record := ErrorRecord{
		packageName: packageName,
		action:      action,
		cause:       cause,
		observedAt:  observationTime(attrs),
		attrs:       attrs,
	}
	if err != nil {
		record.errorString = err.Error()
	}

	evt := r.log.Warn().
		Str("package", record.packageName).
		Str("action", record.action).
		Str("cause", causeLabel(record.cause)).
		Str("err", record.errorString)
	applyAttrs(evt, attrs)
	evt.Msg("error")
}

func (r *Recorder) RecordArtifact(record ArtifactRecord, attrs ...Attribute) {
	evt := r.log.Info().
		Str("kind", string(record.kind)).
		Str("path", record.paths)
	applyAttrs(evt, attrs)
	evt.Msg("artifact")
}

func applyAttrs(evt *zerolog.Event, attrs []Attribute) {
	for _, a := range attrs {
		evt.Str(string(a.Key), a.Value)
	}
}

// observationTime looks for an explicit AttrTime attribute; callers that
// don't supply one get the zero value rather than a fabricated timestamp,
// since metadata construction must not depend on wall-clock state it
// wasn't handed.
func observationTime(attrs []Attribute) time.Time {
	for _, a := range attrs {
		if a.Key == AttrTime {
			if t, err := time.Parse(time.RFC3339, a.Value); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func causeLabel(c ErrorCause) string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseStoreFailure:
		return "store_failure"
	case CauseRetryFailure:
		return "retry_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// NewArtifactRecord builds an ArtifactRecord for logging. It carries no
// behavior; it exists only to give RecordArtifact a typed parameter.
func NewArtifactRecord(kind ArtifactKind, path string) ArtifactRecord {
	return ArtifactRecord{paths: path, kind: kind}
}

// NewCrawlStats builds a terminal crawlStats summary. It is computed once,
// after a crawl run's workers have all exited, and is never read back
// during the run itself.
func NewCrawlStats(totalFetched, totalStored, totalErrors, totalDenied int, duration time.Duration) crawlStats {
	return crawlStats{
		totalFetched: totalFetched,
		totalStored:  totalStored,
		totalErrors:  totalErrors,
		totalDenied:  totalDenied,
		durationMs:   duration.Milliseconds(),
	}
}

func (r *Recorder) RecordCrawlStats(stats crawlStats) {
	r.log.Info().
		Int("total_fetched", stats.totalFetched).
		Int("total_stored", stats.totalStored).
		Int("total_errors", stats.totalErrors).
		Int("total_denied", stats.totalDenied).
		Int64("duration_ms", stats.durationMs).
		Msg("crawl finished")
}

// NewFetchEvent builds a FetchEvent for RecordFetch.
func NewFetchEvent(fetchUrl string, httpStatus int, duration time.Duration, contentType string, crawlDepth int) FetchEvent {
	return FetchEvent{
		fetchUrl:    fetchUrl,
		httpStatus:  httpStatus,
		duration:    duration,
		contentType: contentType,
		crawlDepth:  crawlDepth,
	}
}
