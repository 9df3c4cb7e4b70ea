package robots

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/eng-universe/blogsearch/internal/metadata"
)

// storeClient is the narrow slice of store.Client the robots cache needs.
// Declared locally so tests can fake it without a real Redis instance.
type storeClient interface {
	HashGetAll(ctx context.Context, key string) (map[string]string, error)
	HashSet(ctx context.Context, key string, fields map[string]string) error
}

// Cache is the store-backed robots.txt cache: a robots:{domain} hash in
// the coordination store, shared by every crawler process, with no TTL
// — cached rules persist until the key is deleted out of band.
type Cache struct {
	store        storeClient
	http         *http.Client
	userAgent    string
	keyForDomain func(domain string) string
	metadataSink metadata.MetadataSink
}

func NewCache(s storeClient, httpClient *http.Client, userAgent string, keyForDomain func(string) string, metadataSink metadata.MetadataSink) *Cache {
	return &Cache{store: s, http: httpClient, userAgent: userAgent, keyForDomain: keyForDomain, metadataSink: metadataSink}
}

// GetOrFetch reads the cached rules for domain, or fetches and parses
// https://{domain}/robots.txt on a cache miss, caching the result before
// returning it.
func (c *Cache) GetOrFetch(ctx context.Context, domain string) (Rules, error) {
	key := c.keyForDomain(domain)

	if hash, err := c.store.HashGetAll(ctx, key); err == nil && len(hash) > 0 {
		if rules, ok := rulesFromHash(domain, hash); ok {
			return rules, nil
		}
	}

	rules, err := c.fetch(ctx, domain)
	if err != nil {
		c.metadataSink.RecordError("robots", "GetOrFetch", mapRobotsErrorToMetadataCause(asRobotsError(err)), err,
			metadata.NewAttr(metadata.AttrDomain, domain))
		return Rules{}, err
	}

	if err := c.store.HashSet(ctx, key, hashFromRules(rules)); err != nil {
		c.metadataSink.RecordError("robots", "GetOrFetch.cache", metadata.CauseStoreFailure, err,
			metadata.NewAttr(metadata.AttrDomain, domain))
	}
	return rules, nil
}

func (c *Cache) fetch(ctx context.Context, domain string) (Rules, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+domain+"/robots.txt", nil)
	if err != nil {
		return Rules{}, &RobotsError{Message: err.Error(), Retryable: false, Cause: ErrCauseFetchFailure}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Rules{}, &RobotsError{Message: err.Error(), Retryable: true, Cause: ErrCauseFetchFailure}
	}
	defer resp.Body.Close()

	now := time.Now()
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return Unrestricted(domain, now), nil
	}
	if resp.StatusCode >= 300 {
		return Rules{}, &RobotsError{Message: "non-2xx robots.txt response", Retryable: true, Cause: ErrCauseFetchFailure}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return Rules{}, &RobotsError{Message: err.Error(), Retryable: true, Cause: ErrCauseFetchFailure}
	}

	return Parse(domain, c.userAgent, body, now)
}

func hashFromRules(r Rules) map[string]string {
	return map[string]string{
		"crawl_delay_s":  strconv.FormatFloat(r.CrawlDelayS, 'f', -1, 64),
		"request_rate_s": strconv.FormatFloat(r.RequestRateS, 'f', -1, 64),
		"allowed":        strconv.FormatBool(r.Allowed),
		"fetched_at":     r.FetchedAt.Format(time.RFC3339),
		"text":           r.Text,
	}
}

func rulesFromHash(domain string, hash map[string]string) (Rules, bool) {
	text, ok := hash["text"]
	if !ok {
		return Rules{}, false
	}
	fetchedAt, _ := time.Parse(time.RFC3339, hash["fetched_at"])

	if text == "" {
		return Unrestricted(domain, fetchedAt), true
	}

	crawlDelayS, _ := strconv.ParseFloat(hash["crawl_delay_s"], 64)
	requestRateS, _ := strconv.ParseFloat(hash["request_rate_s"], 64)
	allowed, _ := strconv.ParseBool(hash["allowed"])

	rules, err := Parse(domain, "", []byte(text), fetchedAt)
	if err != nil {
		return Rules{}, false
	}
	rules.CrawlDelayS = crawlDelayS
	rules.RequestRateS = requestRateS
	rules.Allowed = allowed
	return rules, true
}

func asRobotsError(err error) *RobotsError {
	if re, ok := err.(*RobotsError); ok {
		return re
	}
	return nil
}
