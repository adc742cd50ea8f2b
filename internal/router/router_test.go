package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evyataryagoni/ipenrich/internal/handler"
	"github.com/evyataryagoni/ipenrich/internal/limiter"
	"github.com/evyataryagoni/ipenrich/internal/logger"
	"github.com/evyataryagoni/ipenrich/internal/metrics"
	"github.com/evyataryagoni/ipenrich/internal/provider"
	"github.com/evyataryagoni/ipenrich/internal/service"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestServer(t *testing.T, lim limiter.Limiter) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	svc := service.NewLookupService(service.Config{
		Fetcher: provider.NewMockFetcher(),
		Metrics: m,
		Logger:  logger.Nop(),
	})

	server := httptest.NewServer(SetupRouter(Options{
		Handler:  handler.NewLookupHandler(svc, "token", logger.Nop()),
		Limiter:  lim,
		Metrics:  m,
		Logger:   logger.Nop(),
		Gatherer: reg,
	}))
	t.Cleanup(server.Close)
	return server
}

// TestRouter_Health tests the health endpoint
func TestRouter_Health(t *testing.T) {
	server := newTestServer(t, limiter.NewMockLimiter(false))

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "OK" {
		t.Errorf("expected 200 OK, got %d %q", resp.StatusCode, body)
	}
}

// TestRouter_Lookup tests the lookup route end to end
func TestRouter_Lookup(t *testing.T) {
	server := newTestServer(t, limiter.NewMockLimiter(true))

	resp, err := http.Post(server.URL+"/v1/lookup", "application/json",
		strings.NewReader(`{"entities":[{"value":"8.8.8.8"}]}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-RateLimit-Remaining") == "" {
		t.Error("expected rate limit header on API responses")
	}
}

// TestRouter_RateLimitOnlyOnAPI tests that /health and /metrics bypass the limiter
func TestRouter_RateLimitOnlyOnAPI(t *testing.T) {
	mockLimiter := limiter.NewMockLimiter(false)
	server := newTestServer(t, mockLimiter)

	resp, err := http.Post(server.URL+"/v1/validate-options", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429 on API, got %d", resp.StatusCode)
	}

	for _, path := range []string{"/health", "/metrics"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}

	if len(mockLimiter.AllowCalls) != 1 {
		t.Errorf("expected limiter to see only the API call, got %d", len(mockLimiter.AllowCalls))
	}
}

// TestRouter_Metrics tests that lookup metrics are exposed
func TestRouter_Metrics(t *testing.T) {
	server := newTestServer(t, limiter.NewMockLimiter(true))

	resp, err := http.Post(server.URL+"/v1/lookup", "application/json",
		strings.NewReader(`{"entities":[{"value":"8.8.8.8"}]}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	for _, name := range []string{"enrich_lookups_total", "http_requests_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %s in /metrics output", name)
		}
	}
}

// TestRouter_MethodNotAllowed tests that lookup only accepts POST
func TestRouter_MethodNotAllowed(t *testing.T) {
	server := newTestServer(t, limiter.NewMockLimiter(true))

	resp, err := http.Get(server.URL + "/v1/lookup")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}
