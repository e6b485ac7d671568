package service

import (
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithRateLimit caps /mcp requests to perSecond with the given burst. A
// non-positive perSecond disables limiting.
func WithRateLimit(perSecond float64, burst int) HTTPOption {
	return func(t *HTTPTransport) {
		if perSecond <= 0 {
			t.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// rateLimited rejects requests with 429 once the token bucket is empty.
func (t *HTTPTransport) rateLimited(next http.Handler) http.Handler {
	if t.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.limiter.Allow() {
			// Reserve and cancel so the delay estimate does not consume a token.
			reservation := t.limiter.Reserve()
			delay := reservation.Delay()
			reservation.Cancel()

			retryAfter := int(math.Ceil(delay.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
