package provider

import (
	"context"
	"sync"
	"time"

	"github.com/evyataryagoni/ipenrich/internal/models"
)

// MockFetcher is a test double for the Fetcher interface
// It is safe for concurrent use and records peak concurrency
type MockFetcher struct {
	// Outcomes keyed by identifier value; missing keys get DefaultOutcome
	Outcomes       map[string]models.Outcome
	DefaultOutcome models.Outcome

	// Delay is applied to every call before returning
	Delay time.Duration

	mu          sync.Mutex
	calls       []string
	tokens      []string
	inFlight    int
	maxInFlight int
}

// NewMockFetcher creates a mock that answers every lookup with a rich body
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Outcomes: map[string]models.Outcome{},
		DefaultOutcome: models.Outcome{
			Kind:       models.OutcomeSuccess,
			StatusCode: 200,
			Body: map[string]any{
				"ip":      "0.0.0.0",
				"org":     "AS15169 Google LLC",
				"city":    "Mountain View",
				"region":  "California",
				"country": "US",
			},
		},
	}
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context, entity models.Identifier, token string) models.Outcome {
	m.mu.Lock()
	m.calls = append(m.calls, entity.Value)
	m.tokens = append(m.tokens, token)
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	outcome, ok := m.Outcomes[entity.Value]
	if !ok {
		outcome = m.DefaultOutcome
	}
	m.mu.Unlock()

	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}

	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()

	outcome.Identifier = entity
	return outcome
}

// Calls returns the identifier values Fetch was called with
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Tokens returns the access tokens Fetch was called with
func (m *MockFetcher) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}

// MaxInFlight returns the highest number of concurrent Fetch calls observed
func (m *MockFetcher) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}
