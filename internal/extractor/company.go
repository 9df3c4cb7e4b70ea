package extractor

import "strings"

// companyByHost maps well-known engineering-blog hosts to the company
// name readers expect in search results. Hosts not in this table fall
// back to the bare host itself.
var companyByHost = map[string]string{
	"engineering.fb.com":         "Meta",
	"fb.com":                     "Meta",
	"ai.meta.com":                "Meta",
	"netflixtechblog.com":        "Netflix",
	"netflixtechblog.medium.com": "Netflix",
	"eng.uber.com":               "Uber",
	"engineering.atspotify.com":  "Spotify",
	"github.blog":                "GitHub",
	"aws.amazon.com":             "Amazon",
	"slack.engineering":          "Slack",
	"engineering.linkedin.com":   "LinkedIn",
	"stackoverflow.blog":         "Stack Overflow",
	"cloud.google.com":           "Google",
	"developers.googleblog.com":  "Google",
	"engineering.grab.com":       "Grab",
	"shopify.engineering":        "Shopify",
	"blog.cloudflare.com":        "Cloudflare",
	"engineering.tumblr.com":     "Tumblr",
	"medium.engineering":         "Medium",
}

// CompanyForHost derives the display company name for a host, per the
// fixed lookup table above, falling back to the host itself (minus a
// leading "www.") when no entry matches.
func CompanyForHost(host string) string {
	host = strings.ToLower(host)
	if name, ok := companyByHost[host]; ok {
		return name
	}
	return strings.TrimPrefix(host, "www.")
}
