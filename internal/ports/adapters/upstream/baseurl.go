package upstream

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateBaseURL enforces the upstream-service URL policy: absolute https
// URL with a host from the allow list. Loopback hosts may use plain http so
// locally co-located services work without TLS.
func ValidateBaseURL(name, baseURL string, allowedHosts []string) error {
	baseURL = NormalizeBaseURL(baseURL)
	if baseURL == "" {
		return fmt.Errorf("%s base URL is required", name)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid %s base URL: %w", name, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid %s base URL %q: absolute URL with host is required", name, baseURL)
	}
	if u.User != nil {
		return fmt.Errorf("invalid %s base URL %q: userinfo is not allowed", name, baseURL)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid %s base URL %q: query and fragment are not allowed", name, baseURL)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("invalid %s base URL %q: host is required", name, baseURL)
	}

	switch strings.ToLower(u.Scheme) {
	case "https":
	case "http":
		if !isLoopback(host) {
			return fmt.Errorf("invalid %s base URL %q: https is required for non-loopback hosts", name, baseURL)
		}
	default:
		return fmt.Errorf("invalid %s base URL %q: http(s) is required", name, baseURL)
	}

	if len(allowedHosts) == 0 || isLoopback(host) {
		return nil
	}
	for _, h := range allowedHosts {
		if normalizeHost(h) == host {
			return nil
		}
	}
	return fmt.Errorf("invalid %s base URL %q: host %q is not in the allowed hosts", name, baseURL, host)
}

func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

func normalizeHost(h string) string {
	v := strings.ToLower(strings.TrimSpace(h))
	v = strings.TrimPrefix(v, "http://")
	v = strings.TrimPrefix(v, "https://")
	v = strings.Trim(v, "/")
	if i := strings.Index(v, ":"); i >= 0 {
		v = v[:i]
	}
	return v
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
