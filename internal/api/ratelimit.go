package api

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/promptkeepapp/promptkeep-server/internal/ratelimit"
)

// codeRateLimited is the wire error code for throttled requests.
const codeRateLimited = "RATE_LIMITED"

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a rate limiter allowing ratePerMinute requests
// per minute with the given burst.
func NewRateLimiter(ratePerMinute, burst int) *RateLimiter {
	rps := float64(ratePerMinute) / time.Minute.Seconds()
	return ratelimit.New(rps, burst)
}

// WriteRateLimitMiddleware throttles mutating requests. Every caller is
// the same person on localhost, so buckets are keyed by resource group
// rather than client address: a burst of saves cannot starve a category
// rename. Reads pass through untouched.
func WriteRateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
				key := writeKey(r.URL.Path)
				if !limiter.Allow(key) {
					logger.Warn("write rate limit exceeded",
						"key", key,
						"path", r.URL.Path,
					)
					writeRateLimited(w)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeKey buckets a request path by its first segment under /api/v1,
// e.g. "prompts", "versions", "categories". Paths outside the API share
// one bucket.
func writeKey(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/v1/")
	if !ok {
		return "other"
	}
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		rest = rest[:idx]
	}
	if rest == "" {
		return "other"
	}
	return rest
}

// writeRateLimited writes a 429 in the standard envelope. This runs
// before huma, so the envelope is produced by hand.
func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	body, err := json.Marshal(APIErrorEnvelope{
		Version: EnvelopeVersion,
		Code:    codeRateLimited,
		Message: "Too many requests. Please try again later.",
	})
	if err != nil {
		return
	}
	_, _ = w.Write(body)
}
