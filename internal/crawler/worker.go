package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/eng-universe/blogsearch/internal/fetcher"
	"github.com/eng-universe/blogsearch/internal/frontier"
	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/internal/robots"
	"github.com/eng-universe/blogsearch/internal/storage"
	"github.com/eng-universe/blogsearch/pkg/hashutil"
	"github.com/eng-universe/blogsearch/pkg/urlutil"
)

/*
Worker runs the crawl loop: pop a
CrawlItem, check robots, reserve a per-domain fetch slot, fetch, branch
on sitemap-vs-page, extract and enqueue outbound links, and persist the
page unless it's a listing/seed-root/sitemap document.

Everything here runs single-threaded inside one goroutine; correctness
across many Workers (in this process or others) comes entirely from the
coordination store's atomic primitives, not from anything local.
*/

type frontierClient interface {
	Enqueue(ctx context.Context, item frontier.CrawlItem, dedupe bool) (bool, error)
	Dequeue(ctx context.Context) (frontier.CrawlItem, bool, error)
	Delay(ctx context.Context, item frontier.CrawlItem, whenTS float64) error
	RequeueDelayed(ctx context.Context, max int) (int, error)
	ReserveNextAllowed(ctx context.Context, domain string, delaySeconds float64) (bool, float64, error)
}

type robotsCache interface {
	GetOrFetch(ctx context.Context, domain string) (robots.Rules, error)
}

type docWriter interface {
	Persist(ctx context.Context, rec storage.CrawlDocRecord, rawHTML []byte) (string, error)
}

type allowListChecker interface {
	IsAllowedURL(host, path string) bool
	IsListingURL(host, path string) bool
}

type Worker struct {
	id           int
	frontier     frontierClient
	robots       robotsCache
	fetcher      fetcher.Fetcher
	allowList    allowListChecker
	writer       docWriter
	metadataSink metadata.MetadataSink
	metrics      CrawlMetrics
	cfg          Config
	stop         *StopSignal
	counter      *DocCounter
}

func NewWorker(
	id int,
	f frontierClient,
	r robotsCache,
	ft fetcher.Fetcher,
	al allowListChecker,
	w docWriter,
	sink metadata.MetadataSink,
	metrics CrawlMetrics,
	cfg Config,
	stop *StopSignal,
	counter *DocCounter,
) *Worker {
	return &Worker{
		id: id, frontier: f, robots: r, fetcher: ft, allowList: al, writer: w,
		metadataSink: sink, metrics: metrics, cfg: cfg, stop: stop, counter: counter,
	}
}

// Run drives the worker loop until stop is set or ctx is cancelled. A
// non-nil return means a coordination-store call failed
// unrecoverably: the worker terminates and a supervisor is
// expected to restart it.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if w.stop.IsSet() {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := w.frontier.RequeueDelayed(ctx, w.cfg.RequeueBatch); err != nil {
			return fmt.Errorf("crawler: requeue delayed: %w", err)
		}

		item, ok, err := w.frontier.Dequeue(ctx)
		if err != nil {
			return fmt.Errorf("crawler: dequeue: %w", err)
		}
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.cfg.EmptyPollInterval):
			}
			continue
		}

		if err := w.processItem(ctx, item); err != nil {
			return err
		}
	}
}

// processItem handles one dequeued item: robots, reservation, fetch,
// link extraction, and persistence.
// A non-nil error here means a store call failed; every other failure
// mode (robots deny, reservation contention, fetch failure, parse
// failure) is logged and resolved by returning nil so the loop moves on.
func (w *Worker) processItem(ctx context.Context, item frontier.CrawlItem) error {
	domain, err := domainOf(item.URL)
	if err != nil {
		w.metadataSink.RecordError("crawler", "processItem", metadata.CauseContentInvalid, err,
			metadata.NewAttr(metadata.AttrURL, item.URL))
		return nil
	}

	rules, err := w.robots.GetOrFetch(ctx, domain)
	if err != nil {
		w.metadataSink.RecordError("crawler", "robots", metadata.CauseNetworkFailure, err,
			metadata.NewAttr(metadata.AttrDomain, domain))
		return nil
	}

	path := pathOf(item.URL)
	if !rules.CanFetch(w.cfg.UserAgent, path) {
		w.metadataSink.RecordError("crawler", "processItem", metadata.CausePolicyDisallow, fmt.Errorf("robots deny"),
			metadata.NewAttr(metadata.AttrURL, item.URL), metadata.NewAttr(metadata.AttrDomain, domain))
		return nil
	}

	delaySeconds := rules.EffectiveDelay(w.cfg.CrawlDelayDefault).Seconds()
	reserved, next, err := w.frontier.ReserveNextAllowed(ctx, domain, delaySeconds)
	if err != nil {
		return fmt.Errorf("crawler: reserve next allowed: %w", err)
	}
	if !reserved {
		if err := w.frontier.Delay(ctx, item, next); err != nil {
			return fmt.Errorf("crawler: delay item: %w", err)
		}
		return nil
	}

	parsedURL, err := url.Parse(item.URL)
	if err != nil {
		w.metadataSink.RecordError("crawler", "processItem", metadata.CauseContentInvalid, err,
			metadata.NewAttr(metadata.AttrURL, item.URL))
		return nil
	}

	result, fetchErr := w.fetcher.Fetch(ctx, item.Depth, fetcher.NewFetchParam(*parsedURL, w.cfg.UserAgent))
	if fetchErr != nil {
		// Already recorded by the fetcher itself; fetch failures
		// are dropped, never retried.
		return nil
	}

	responseURL := result.URL()
	if frontier.IsSitemapURL(responseURL.Path) {
		w.admitSitemap(ctx, result.Body(), item.Depth)
		return nil
	}

	w.extractAndEnqueueLinks(ctx, responseURL, result.Body(), domain, item)

	if w.shouldPersist(item, domain, path) {
		if err := w.persist(ctx, item, domain, result); err != nil {
			return fmt.Errorf("crawler: persist doc: %w", err)
		}
	}

	return nil
}

func (w *Worker) admitSitemap(ctx context.Context, body []byte, depth int) {
	locs, err := frontier.ParseSitemap(bytes.NewReader(body))
	if err != nil {
		w.metadataSink.RecordError("crawler", "admitSitemap", metadata.CauseContentInvalid, err)
		return
	}
	for _, loc := range locs {
		parsed, err := url.Parse(loc)
		if err != nil {
			continue
		}
		normalized, ok := urlutil.Normalize(*parsed)
		if !ok {
			continue
		}
		if !w.allowList.IsAllowedURL(normalized.Hostname(), normalized.Path) {
			continue
		}
		item := frontier.CrawlItem{URL: normalized.String(), Source: frontier.SourceSitemap, Depth: depth + 1}
		if _, err := w.frontier.Enqueue(ctx, item, true); err != nil {
			w.metadataSink.RecordError("crawler", "admitSitemap.enqueue", metadata.CauseStoreFailure, err)
		}
	}
}

func (w *Worker) extractAndEnqueueLinks(ctx context.Context, responseURL url.URL, body []byte, domain string, item frontier.CrawlItem) {
	if item.Depth >= w.cfg.DepthLimit {
		return
	}
	links, err := fetcher.ExtractLinks(responseURL, body)
	if err != nil {
		w.metadataSink.RecordError("crawler", "extractLinks", metadata.CauseContentInvalid, err,
			metadata.NewAttr(metadata.AttrURL, item.URL))
		return
	}
	for _, link := range links {
		if !w.cfg.AllowExternal && !urlutil.SameDomain(link.Hostname(), domain) {
			continue
		}
		if !w.allowList.IsAllowedURL(link.Hostname(), link.Path) {
			continue
		}
		next := frontier.CrawlItem{URL: link.String(), Source: item.Source, Depth: item.Depth + 1}
		if _, err := w.frontier.Enqueue(ctx, next, true); err != nil {
			w.metadataSink.RecordError("crawler", "extractLinks.enqueue", metadata.CauseStoreFailure, err,
				metadata.NewAttr(metadata.AttrURL, next.URL))
		}
	}
}

// shouldPersist applies the skip rules: sitemap documents,
// seed-root pages, and listing pages are crawled for their links but
// never stored as documents.
func (w *Worker) shouldPersist(item frontier.CrawlItem, domain, path string) bool {
	if item.Source == frontier.SourceSitemap {
		return false
	}
	if item.Source == frontier.SourceSeed && item.Depth == 0 {
		return false
	}
	if w.allowList.IsListingURL(domain, path) {
		return false
	}
	return true
}

func (w *Worker) persist(ctx context.Context, item frontier.CrawlItem, domain string, result fetcher.FetchResult) error {
	urlHash, _ := hashutil.HashBytes([]byte(item.URL), hashutil.HashAlgoSHA256)
	rec := storage.CrawlDocRecord{
		URL:       item.URL,
		Domain:    domain,
		Source:    string(item.Source),
		Depth:     item.Depth,
		URLHash:   urlHash,
		FetchedAt: result.FetchedAt(),
		Status:    result.Code(),
	}

	if _, err := w.writer.Persist(ctx, rec, result.Body()); err != nil {
		return err
	}

	if w.metrics != nil {
		w.metrics.RecordCrawl(domain)
	}

	if w.cfg.MaxDocs > 0 && w.counter.Increment(w.cfg.MaxDocs) {
		w.stop.Set()
	}
	return nil
}

func domainOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("crawler: url has no host: %q", rawURL)
	}
	return host, nil
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "/"
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}
