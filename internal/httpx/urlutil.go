package httpx

import (
	"fmt"
	"net/url"
	"strings"
)

// Query parameters stripped from extracted links.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid", "mc_cid", "mc_eid",
}

// NormalizeURL resolves href against base and strips tracking parameters.
// Protocol-relative and root-relative hrefs are supported; an empty href is
// an error.
func NormalizeURL(href, base string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("empty href")
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", base, err)
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid href %s: %w", href, err)
	}

	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q in %s", resolved.Scheme, href)
	}

	query := resolved.Query()
	for _, p := range trackingParams {
		query.Del(p)
	}
	resolved.RawQuery = query.Encode()
	resolved.Fragment = ""

	return resolved.String(), nil
}

// Domain returns the host of rawURL, or empty for unparseable input.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
