package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
)

// CSVStore implements Store using a CSV file loaded into memory
type CSVStore struct {
	// reasons maps an ignored address to the operator's note
	reasons map[string]string
}

// NewCSVStore creates a new CSV store by reading a CSV file
//
// CSV Format: ip,reason
// Example: 203.0.113.7,internal scanner
func NewCSVStore(filePath string) (*CSVStore, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	store := &CSVStore{
		reasons: make(map[string]string),
	}

	// Skip header row
	for _, record := range records[1:] {
		if len(record) != 2 {
			continue
		}

		ip := strings.TrimSpace(record[0])
		if ip == "" {
			continue
		}
		store.reasons[ip] = strings.TrimSpace(record[1])
	}

	return store, nil
}

// IgnoredAddresses returns the loaded addresses in sorted order
func (s *CSVStore) IgnoredAddresses(_ context.Context) ([]string, error) {
	addresses := make([]string, 0, len(s.reasons))
	for ip := range s.reasons {
		addresses = append(addresses, ip)
	}
	sort.Strings(addresses)
	return addresses, nil
}

// Reason returns the operator's note for an ignored address
func (s *CSVStore) Reason(ip string) (string, bool) {
	reason, ok := s.reasons[ip]
	return reason, ok
}

// Close is a no-op; all data is in memory
func (s *CSVStore) Close() error {
	return nil
}
