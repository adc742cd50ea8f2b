package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/evyataryagoni/ipenrich/internal/limiter"
	"github.com/evyataryagoni/ipenrich/internal/models"
)

// MsgRateLimitExceeded is the body of an inbound 429
const MsgRateLimitExceeded = "Rate limit exceeded. Please try again later."

// RateLimitMiddleware charges every request to its client address and answers 429 when the budget is spent
// Mount after chi's RealIP so RemoteAddr already reflects proxy headers.
func RateLimitMiddleware(lim limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := lim.Allow(r.Context(), clientKey(r))

			if !decision.Allowed {
				if decision.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(models.ErrorResponse{Error: MsgRateLimitExceeded})
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey strips the port so all connections from one host share a budget
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
