// Package transport builds the outbound HTTP clients shared by the API
// clients and the poster downloader.
package transport

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// NewHTTPClient returns a client with the given timeout. When verifyTLS is
// false both certificate and hostname checks are skipped and a warning is
// logged naming the consumer.
func NewHTTPClient(name string, timeout time.Duration, verifyTLS bool, log *slog.Logger) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if !verifyTLS {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via [tls] verify = false
		if log != nil {
			log.Warn("TLS verification disabled", "client", name)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: tr,
	}
}

// NormalizeBaseURL prepends http:// when no scheme is present and strips
// trailing slashes.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	return strings.TrimRight(raw, "/")
}
