package service

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
)

var (
	errInvalidHost   = errors.New("invalid host")
	errInvalidOrigin = errors.New("invalid origin")
)

// validateLocalRequest checks Host and Origin headers against the allowlist so
// that a remote page cannot reach a local server through DNS rebinding.
func (t *HTTPTransport) validateLocalRequest(r *http.Request) error {
	if !t.isAllowedHost(r.Host) {
		return errInvalidHost
	}

	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return nil
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return errInvalidOrigin
	}
	if !t.isAllowedHost(parsed.Host) {
		return errInvalidOrigin
	}
	return nil
}

// isAllowedHost reports whether a Host/Origin header value is loopback or
// explicitly allowed.
func (t *HTTPTransport) isAllowedHost(host string) bool {
	resolved, ok := normalizeHost(host)
	if !ok {
		return false
	}
	if isLoopbackHost(resolved) {
		return true
	}
	_, ok = t.allowedHosts[strings.ToLower(resolved)]
	return ok
}

// isLoopbackHost accepts "localhost" and any loopback IP literal.
func isLoopbackHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func parseAllowedHosts(hosts []string) map[string]struct{} {
	result := make(map[string]struct{}, len(hosts))
	for _, entry := range hosts {
		trimmed := strings.ToLower(strings.TrimSpace(entry))
		if trimmed != "" {
			result[trimmed] = struct{}{}
		}
	}
	return result
}

// normalizeHost strips the port and IPv6 brackets from a header value.
func normalizeHost(host string) (string, bool) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", false
	}
	if splitHost, _, err := net.SplitHostPort(host); err == nil {
		return splitHost, true
	}
	if strings.HasPrefix(host, "[") {
		if strings.HasSuffix(host, "]") {
			return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]"), true
		}
		return "", false
	}
	return host, true
}
