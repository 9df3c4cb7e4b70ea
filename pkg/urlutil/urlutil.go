package urlutil

import (
	"net/url"
	"strings"
)

// Normalize applies a deterministic normalization to a URL, producing a canonical
// form and a boolean reporting whether the input was a valid, crawlable absolute
// HTTP(S) URL.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Non-HTTP(S) schemes or an empty host are rejected
//   - Path is cleaned (trailing slashes removed, except for root "/")
//   - Fragments are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Normalize(Normalize(u)) == Normalize(u)
//   - Context-free: does not depend on crawl history
func Normalize(sourceUrl url.URL) (url.URL, bool) {
	canonical := sourceUrl

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	if canonical.Scheme != "http" && canonical.Scheme != "https" {
		return url.URL{}, false
	}
	if canonical.Hostname() == "" {
		return url.URL{}, false
	}

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	if canonical.Path == "" {
		canonical.Path = "/"
	} else if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""

	return canonical, true
}

// Resolve turns a (possibly relative) discovered URL into an absolute URL against
// the page it was found on, then normalizes the result.
func Resolve(base url.URL, discovered url.URL) (url.URL, bool) {
	resolved := base.ResolveReference(&discovered)
	return Normalize(*resolved)
}

// SameDomain reports whether two hosts are identical (case-insensitively).
func SameDomain(a, b string) bool {
	return strings.EqualFold(a, b)
}

// lowerASCII converts ASCII characters to lowercase without allocating
// when the input is already lowercase.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// stripTrailingSlash removes trailing slashes from a path, keeping root "/" intact.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
