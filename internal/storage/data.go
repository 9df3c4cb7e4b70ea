package storage

import (
	"strconv"
	"time"
)

// CrawlDocRecord is the persisted form of crawl:doc:{id}: everything the
// indexer needs to locate and re-derive a fetched page, without needing to
// re-fetch it.
type CrawlDocRecord struct {
	ID          string
	URL         string
	Domain      string
	Source      string
	Depth       int
	URLHash     string
	ContentHash string // blake3 fingerprint of the raw body, for unchanged-recrawl detection
	FetchedAt   time.Time
	Status      int
	RawPath     string // set when stored locally
	CleanedPath string
	RawKey      string // set when stored in the object store
	CleanKey    string
}

// ToHash renders a CrawlDocRecord as the field map written to the
// coordination store's crawl:doc:{id} hash. Empty path/key fields are
// omitted rather than written as empty strings, so a record stored
// locally never carries stray raw_key/clean_key fields and vice versa.
func (r CrawlDocRecord) ToHash() map[string]string {
	h := map[string]string{
		"url":        r.URL,
		"domain":     r.Domain,
		"source":     r.Source,
		"depth":      strconv.Itoa(r.Depth),
		"url_hash":   r.URLHash,
		"fetched_at": r.FetchedAt.UTC().Format(time.RFC3339),
		"status":     strconv.Itoa(r.Status),
	}
	putIfNotEmpty(h, "content_hash", r.ContentHash)
	putIfNotEmpty(h, "raw_path", r.RawPath)
	putIfNotEmpty(h, "cleaned_path", r.CleanedPath)
	putIfNotEmpty(h, "raw_key", r.RawKey)
	putIfNotEmpty(h, "clean_key", r.CleanKey)
	return h
}

// CrawlDocRecordFromHash is the inverse of ToHash, used by the indexer to
// read crawl:doc:{id} back out of the store.
func CrawlDocRecordFromHash(id string, h map[string]string) CrawlDocRecord {
	fetchedAt, _ := time.Parse(time.RFC3339, h["fetched_at"])
	return CrawlDocRecord{
		ID:          id,
		URL:         h["url"],
		Domain:      h["domain"],
		Source:      h["source"],
		Depth:       mustAtoi(h["depth"]),
		URLHash:     h["url_hash"],
		ContentHash: h["content_hash"],
		FetchedAt:   fetchedAt,
		Status:      mustAtoi(h["status"]),
		RawPath:     h["raw_path"],
		CleanedPath: h["cleaned_path"],
		RawKey:      h["raw_key"],
		CleanKey:    h["clean_key"],
	}
}

func putIfNotEmpty(h map[string]string, key, value string) {
	if value != "" {
		h[key] = value
	}
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
