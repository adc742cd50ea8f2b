package limiter

import (
	"context"
	"time"
)

// MockLimiter is a test double for the Limiter interface
type MockLimiter struct {
	AllowResult bool
	RetryAfter  time.Duration // reported on denial

	// Keys Allow was called with
	AllowCalls  []string
	CloseCalled bool

	CloseError error
}

// NewMockLimiter creates a mock that allows (true) or denies (false) everything
func NewMockLimiter(allowResult bool) *MockLimiter {
	return &MockLimiter{
		AllowResult: allowResult,
		AllowCalls:  []string{},
	}
}

// Allow implements the Limiter interface
func (m *MockLimiter) Allow(_ context.Context, key string) Decision {
	m.AllowCalls = append(m.AllowCalls, key)
	if !m.AllowResult {
		return Decision{RetryAfter: m.RetryAfter}
	}
	return Decision{Allowed: true}
}

// Close implements the Limiter interface
func (m *MockLimiter) Close() error {
	m.CloseCalled = true
	return m.CloseError
}
