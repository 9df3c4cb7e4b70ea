package robots

import (
	"math"
	"time"

	"github.com/temoto/robotstxt"
)

// Rules is the per-domain decision surface derived from one robots.txt
// fetch: can_fetch/crawl_delay for a given user agent, plus the
// request-rate-derived spacing the standard parser doesn't model.
type Rules struct {
	Domain       string
	CrawlDelayS  float64
	RequestRateS float64
	Allowed      bool
	FetchedAt    time.Time
	Text         string

	data *robotstxt.RobotsData
}

// CanFetch reports whether userAgent may fetch path under these rules.
// A nil parsed document (e.g. an empty or unreachable robots.txt) allows
// everything, matching the "missing robots.txt means no restriction"
// convention most crawlers follow.
func (r Rules) CanFetch(userAgent, path string) bool {
	if r.data == nil {
		return true
	}
	group := r.data.FindGroup(userAgent)
	if group == nil {
		return true
	}
	return group.Test(path)
}

// EffectiveDelay is the minimum spacing required between two fetches to
// this domain: max(crawl_delay_s, request_rate_s).
func (r Rules) EffectiveDelay(defaultDelay time.Duration) time.Duration {
	seconds := math.Max(r.CrawlDelayS, r.RequestRateS)
	if seconds <= 0 {
		return defaultDelay
	}
	return time.Duration(seconds * float64(time.Second))
}
