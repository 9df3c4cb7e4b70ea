package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/pkg/failure"
	"github.com/eng-universe/blogsearch/pkg/urlutil"
)

/*
Responsibilities

- Perform HTTP requests
- Apply headers and timeouts
- Classify responses
- Extract outbound links from HTML bodies

Fetch Semantics

- Only successful HTML (or XML, for sitemaps) responses are processed
- Non-HTML/XML content is discarded
- Every attempt, successful or not, is logged with metadata
- A fetch is never retried: a failure here is resolved by the crawl
  worker dropping the item, not by fetching again

The fetcher never interprets content beyond its Content-Type; extraction
of article text happens downstream in the extractor package.
*/

type HTMLFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
}

func NewHTMLFetcher(metadataSink metadata.MetadataSink, timeout time.Duration) *HTMLFetcher {
	return &HTMLFetcher{
		metadataSink: metadataSink,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (h *HTMLFetcher) Fetch(ctx context.Context, crawlDepth int, fetchParam FetchParam) (FetchResult, failure.ClassifiedError) {
	start := time.Now()
	result, fetchErr := h.performFetch(ctx, fetchParam.fetchURL, fetchParam.userAgent)
	duration := time.Since(start)

	statusCode := 0
	contentType := ""
	if fetchErr == nil {
		statusCode = result.Code()
		contentType = result.ContentType()
	}

	h.metadataSink.RecordFetch(
		metadata.NewFetchEvent(fetchParam.fetchURL.String(), statusCode, duration, contentType, crawlDepth),
	)

	if fetchErr != nil {
		fe := fetchErr
		h.metadataSink.RecordError("fetcher", "Fetch", mapFetchErrorToMetadataCause(fe), fetchErr,
			metadata.NewAttr(metadata.AttrURL, fetchParam.fetchURL.String()),
			metadata.NewAttr(metadata.AttrDepth, fmt.Sprintf("%d", crawlDepth)),
		)
		return FetchResult{}, fetchErr
	}

	return result, nil
}

func (h *HTMLFetcher) performFetch(ctx context.Context, fetchURL url.URL, userAgent string) (FetchResult, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{Message: err.Error(), Retryable: false, Cause: ErrCauseNetworkFailure}
	}
	for key, value := range requestHeaders(userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, &FetchError{Message: err.Error(), Retryable: true, Cause: ErrCauseNetworkFailure}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return FetchResult{}, &FetchError{Message: fmt.Sprintf("server error: %d", resp.StatusCode), Retryable: true, Cause: ErrCauseRequest5xx}
	case resp.StatusCode == 429:
		return FetchResult{}, &FetchError{Message: "rate limited", Retryable: true, Cause: ErrCauseRequestTooMany}
	case resp.StatusCode == 403:
		return FetchResult{}, &FetchError{Message: "access forbidden", Retryable: false, Cause: ErrCauseRequestPageForbidden}
	case resp.StatusCode >= 400:
		return FetchResult{}, &FetchError{Message: fmt.Sprintf("client error: %d", resp.StatusCode), Retryable: false, Cause: ErrCauseRequestPageForbidden}
	case resp.StatusCode >= 300:
		return FetchResult{}, &FetchError{Message: fmt.Sprintf("unresolved redirect: %d", resp.StatusCode), Retryable: false, Cause: ErrCauseRedirectLimitExceeded}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isAcceptableContent(contentType) {
		return FetchResult{}, &FetchError{Message: fmt.Sprintf("unsupported content type: %s", contentType), Retryable: false, Cause: ErrCauseContentTypeInvalid}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return FetchResult{}, &FetchError{Message: err.Error(), Retryable: true, Cause: ErrCauseReadResponseBodyError}
	}

	responseHeaders := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	finalURL := *resp.Request.URL

	return FetchResult{
		url:       finalURL,
		body:      body,
		fetchedAt: time.Now(),
		meta: ResponseMeta{
			statusCode:      resp.StatusCode,
			responseHeaders: responseHeaders,
		},
	}, nil
}

func isAcceptableContent(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") ||
		strings.Contains(ct, "application/xhtml") ||
		strings.Contains(ct, "xml")
}

// ExtractLinks resolves every <a href> in body against responseURL,
// normalizing and deduplicating the result.
func ExtractLinks(responseURL url.URL, body []byte) ([]url.URL, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []url.URL

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		parsed, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved, ok := urlutil.Resolve(responseURL, *parsed)
		if !ok {
			return
		}
		key := resolved.String()
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, resolved)
	})

	return out, nil
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	}
}
