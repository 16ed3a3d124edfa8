package middleware

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"aidtrack/pkg/requestcontext"
)

// ClientMetadata extracts the client IP and a human-readable station
// description from the request and stores both in context. The station
// string ("Chrome 120 on Windows", "Firefox on Android") ends up on audit
// records so reviewers can tell a field tablet from the office desktop.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(),
			clientIPFromRequest(r),
			stationFromUserAgent(r.Header.Get("User-Agent")),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// stationFromUserAgent condenses a raw User-Agent header into a short
// browser-on-platform description.
func stationFromUserAgent(raw string) string {
	if raw == "" {
		return "unknown station"
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return "unknown station"
	}
	desc := name
	if version != "" {
		if idx := strings.Index(version, "."); idx != -1 {
			version = version[:idx]
		}
		desc += " " + version
	}
	if platform := ua.OS(); platform != "" {
		desc += " on " + platform
	}
	return desc
}

// clientIPFromRequest extracts the real client IP, handling proxies and
// load balancers.
func clientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs; the first is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	// RemoteAddr is "ip:port" ("[::1]:port" for IPv6); strip the port.
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return ""
}
