package validation

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

// localhostDenylist blocks hostnames that lexically resolve to the local
// machine even without DNS.
var localhostDenylist = []string{"localhost", "127.0.0.1", "0.0.0.0", "::1"}

// URL validates a user-supplied URL against an allowlist of schemes and
// rejects targets that point at private, loopback or link-local addresses.
// This is the guard against server-side request forgery for any feature
// that fetches a caller-provided URL.
func URL(rawURL string, allowedSchemes []string) (string, *Error) {
	if rawURL == "" {
		return "", newError("url", "URL is required")
	}
	if len(allowedSchemes) == 0 {
		allowedSchemes = []string{"http", "https"}
	}
	if len(rawURL) > 2048 {
		return "", newError("url", "Input exceeds maximum length of 2048")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", newError("url", "Invalid URL format")
	}

	schemeOK := false
	for _, scheme := range allowedSchemes {
		if parsed.Scheme == scheme {
			schemeOK = true
			break
		}
	}
	if !schemeOK {
		return "", newError("url", fmt.Sprintf("URL scheme must be one of: %s", strings.Join(allowedSchemes, ", ")))
	}

	host := parsed.Hostname()
	if host == "" {
		return "", newError("url", "URL must have a valid domain")
	}

	for _, denied := range localhostDenylist {
		if strings.EqualFold(host, denied) {
			return "", newError("url", "URLs pointing to local addresses are not allowed")
		}
	}

	// An IP-literal host must not be private, loopback or link-local.
	// Hostnames that are not IP literals pass; DNS resolution is out of scope.
	if addr, err := netip.ParseAddr(host); err == nil {
		if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
			return "", newError("url", "URLs pointing to private/local addresses are not allowed")
		}
	}

	return rawURL, nil
}
