package store

import "context"

// MockStore is a test double for the Store interface
// It allows tests to control behavior and verify interactions
type MockStore struct {
	Addresses []string

	// Track method calls for verification in tests
	IgnoredAddressesCalls int
	CloseCalled           bool

	// Control behavior for error scenarios
	IgnoredAddressesError error
	CloseError            error
}

// NewMockStore creates a mock store with a couple of ignored addresses
func NewMockStore() *MockStore {
	return &MockStore{
		Addresses: []string{"203.0.113.7", "198.51.100.1"},
	}
}

// IgnoredAddresses implements the Store interface
func (m *MockStore) IgnoredAddresses(_ context.Context) ([]string, error) {
	m.IgnoredAddressesCalls++
	if m.IgnoredAddressesError != nil {
		return nil, m.IgnoredAddressesError
	}
	return append([]string(nil), m.Addresses...), nil
}

// Close implements the Store interface
func (m *MockStore) Close() error {
	m.CloseCalled = true
	return m.CloseError
}
