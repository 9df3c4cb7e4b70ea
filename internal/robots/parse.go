package robots

import (
	"bufio"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/temoto/robotstxt"
)

// Parse turns raw robots.txt bytes into Rules for userAgent, using the
// standard temoto/robotstxt parser for Allow/Disallow/Crawl-delay and a
// dedicated scan for the non-standard Request-rate directive that the
// standard parser does not model.
func Parse(domain, userAgent string, body []byte, fetchedAt time.Time) (Rules, error) {
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return Rules{}, &RobotsError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseParseFailure,
		}
	}

	group := data.FindGroup(userAgent)
	allowed := true
	var crawlDelayS float64
	if group != nil {
		allowed = group.Test("/")
		crawlDelayS = group.CrawlDelay.Seconds()
	}

	return Rules{
		Domain:       domain,
		CrawlDelayS:  crawlDelayS,
		RequestRateS: scanRequestRate(string(body), userAgent),
		Allowed:      allowed,
		FetchedAt:    fetchedAt,
		Text:         string(body),
		data:         data,
	}, nil
}

// Unrestricted builds the Rules used when a domain has no robots.txt
// (HTTP 4xx): every path is fetchable and no request-rate applies.
func Unrestricted(domain string, fetchedAt time.Time) Rules {
	return Rules{Domain: domain, Allowed: true, FetchedAt: fetchedAt}
}

// scanRequestRate finds the strongest matching "Request-rate: N/T[unit]"
// directive for userAgent (an exact user-agent match beats the wildcard
// group) and returns ceil(window_seconds / N), or 0 if none is present.
//
// This directive isn't part of the RFC the standard parser implements,
// so it's tracked independently by walking user-agent groups the same
// way robots.txt itself delimits them: a run of "User-agent:" lines
// followed by the directives that apply to all of them.
func scanRequestRate(body, userAgent string) float64 {
	var currentAgents []string
	var startingGroup bool

	var wildcardRate, exactRate float64
	haveWildcard, haveExact := false, false
	uaLower := strings.ToLower(userAgent)

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			startingGroup = false
			continue
		}
		colon := strings.Index(line, ":")
		if colon == -1 {
			continue
		}
		field := strings.ToLower(strings.TrimSpace(line[:colon]))
		value := strings.TrimSpace(line[colon+1:])

		switch field {
		case "user-agent":
			if !startingGroup {
				currentAgents = nil
				startingGroup = true
			}
			currentAgents = append(currentAgents, value)
		case "request-rate":
			startingGroup = false
			rate, ok := parseRequestRate(value)
			if !ok {
				continue
			}
			for _, ua := range currentAgents {
				if ua == "*" {
					wildcardRate, haveWildcard = rate, true
				} else if strings.EqualFold(ua, userAgent) || strings.HasPrefix(uaLower, strings.ToLower(ua)) {
					exactRate, haveExact = rate, true
				}
			}
		default:
			startingGroup = false
		}
	}

	if haveExact {
		return exactRate
	}
	if haveWildcard {
		return wildcardRate
	}
	return 0
}

// parseRequestRate parses "N/T[unit]" into ceil(T_seconds / N).
func parseRequestRate(value string) (float64, bool) {
	parts := strings.SplitN(value, "/", 2)
	if len(parts) != 2 {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || n <= 0 {
		return 0, false
	}

	window := strings.TrimSpace(parts[1])
	unit := time.Second
	switch {
	case strings.HasSuffix(window, "m"):
		unit, window = time.Minute, strings.TrimSuffix(window, "m")
	case strings.HasSuffix(window, "h"):
		unit, window = time.Hour, strings.TrimSuffix(window, "h")
	case strings.HasSuffix(window, "d"):
		unit, window = 24*time.Hour, strings.TrimSuffix(window, "d")
	case strings.HasSuffix(window, "s"):
		window = strings.TrimSuffix(window, "s")
	}

	t, err := strconv.ParseFloat(strings.TrimSpace(window), 64)
	if err != nil || t <= 0 {
		t = 1
	}

	seconds := t * (unit.Seconds())
	return math.Ceil(seconds / n), true
}
