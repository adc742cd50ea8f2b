package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/evyataryagoni/ipenrich/internal/limiter"
	"github.com/evyataryagoni/ipenrich/internal/models"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// TestRateLimitMiddleware_Allowed tests request allowed
func TestRateLimitMiddleware_Allowed(t *testing.T) {
	mockLimiter := limiter.NewMockLimiter(true)

	nextCalled := false
	handler := RateLimitMiddleware(mockLimiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/lookup", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !nextCalled {
		t.Error("expected next handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "success" {
		t.Errorf("expected body 'success', got '%s'", rec.Body.String())
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("expected remaining header, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

// TestRateLimitMiddleware_RateLimited tests request blocked
func TestRateLimitMiddleware_RateLimited(t *testing.T) {
	mockLimiter := limiter.NewMockLimiter(false)
	mockLimiter.RetryAfter = 1500 * time.Millisecond

	nextCalled := false
	handler := RateLimitMiddleware(mockLimiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/lookup", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if nextCalled {
		t.Error("expected next handler NOT to be called")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("Retry-After") != "2" {
		t.Errorf("expected Retry-After 2, got %q", rec.Header().Get("Retry-After"))
	}

	var errResp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if errResp.Error != MsgRateLimitExceeded {
		t.Errorf("unexpected error message: %s", errResp.Error)
	}
}

// TestRateLimitMiddleware_NoRetryAfter tests that a zero wait sends no header
func TestRateLimitMiddleware_NoRetryAfter(t *testing.T) {
	handler := RateLimitMiddleware(limiter.NewMockLimiter(false))(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, ok := rec.Header()["Retry-After"]; ok {
		t.Error("expected no Retry-After header")
	}
}

// TestRateLimitMiddleware_ClientKey tests key extraction
func TestRateLimitMiddleware_ClientKey(t *testing.T) {
	tests := []struct {
		name        string
		remoteAddr  string
		xRealIP     string
		xForwarded  string
		expectedKey string
	}{
		{
			name:        "RemoteAddr with port",
			remoteAddr:  "192.168.1.1:12345",
			expectedKey: "192.168.1.1",
		},
		{
			name:        "IPv6 RemoteAddr",
			remoteAddr:  "[2001:db8::1]:8080",
			expectedKey: "2001:db8::1",
		},
		{
			name:        "RemoteAddr without port",
			remoteAddr:  "192.168.1.1",
			expectedKey: "192.168.1.1",
		},
		{
			name:        "X-Real-IP through RealIP",
			remoteAddr:  "192.168.1.1:12345",
			xRealIP:     "10.0.0.1",
			expectedKey: "10.0.0.1",
		},
		{
			name:        "X-Forwarded-For through RealIP",
			remoteAddr:  "192.168.1.1:12345",
			xForwarded:  "10.0.0.3, 10.0.0.4",
			expectedKey: "10.0.0.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLimiter := limiter.NewMockLimiter(true)
			handler := chimiddleware.RealIP(RateLimitMiddleware(mockLimiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}
			if tt.xForwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwarded)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			if len(mockLimiter.AllowCalls) != 1 {
				t.Fatalf("expected 1 limiter call, got %d", len(mockLimiter.AllowCalls))
			}
			if mockLimiter.AllowCalls[0] != tt.expectedKey {
				t.Errorf("expected key %s, limiter called with %s", tt.expectedKey, mockLimiter.AllowCalls[0])
			}
		})
	}
}

// TestRateLimitMiddleware_MemoryLimiter tests the middleware against a real limiter
func TestRateLimitMiddleware_MemoryLimiter(t *testing.T) {
	handler := RateLimitMiddleware(limiter.NewMemoryLimiter(2))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/lookup", nil)
		req.RemoteAddr = "192.168.1.1:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected first two requests allowed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected third request limited, got %d", codes[2])
	}
}

// TestRateLimitMiddleware_PreservesNextHandlerResponse tests that allowed requests preserve response
func TestRateLimitMiddleware_PreservesNextHandlerResponse(t *testing.T) {
	handler := RateLimitMiddleware(limiter.NewMockLimiter(true))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom-Header", "test-value")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("custom response"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if rec.Header().Get("X-Custom-Header") != "test-value" {
		t.Errorf("expected custom header to be preserved")
	}
	if rec.Body.String() != "custom response" {
		t.Errorf("expected custom response body to be preserved")
	}
}
