// Package eligibility decides which identifiers are worth a provider lookup
package eligibility

import (
	"strings"

	"github.com/evyataryagoni/ipenrich/internal/models"
	"github.com/go-playground/validator/v10"
)

// staticIgnored holds addresses that never carry geolocation data
var staticIgnored = map[string]struct{}{
	"127.0.0.1":       {},
	"255.255.255.255": {},
	"0.0.0.0":         {},
}

// ignoredPrefixes cover the whole loopback and link-local blocks textually
var ignoredPrefixes = []string{"127", "169"}

// Filter is an immutable eligibility check
// The extra ignore set is copied at construction and never changes afterwards
type Filter struct {
	ignored   map[string]struct{}
	validator *validator.Validate
}

// NewFilter creates a filter with an optional operator-supplied ignore list
func NewFilter(extraIgnored []string) *Filter {
	ignored := make(map[string]struct{}, len(extraIgnored))
	for _, ip := range extraIgnored {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			ignored[ip] = struct{}{}
		}
	}
	return &Filter{
		ignored:   ignored,
		validator: validator.New(),
	}
}

// IsEligible reports whether a lookup should be attempted for the identifier
//
// Rules, applied in order (any match makes it ineligible):
//  1. the value is blank
//  2. the caller flagged it private
//  3. it is a static or operator-ignored address, or starts with 127 / 169
//  4. it claims to be IPv6 and fails IPv6 syntax validation
func (f *Filter) IsEligible(entity models.Identifier) bool {
	if strings.TrimSpace(entity.Value) == "" {
		return false
	}
	if entity.IsPrivateIP {
		return false
	}
	if f.isIgnored(entity.Value) {
		return false
	}
	if entity.IsIPv6 && !f.isValidIPv6(entity.Value) {
		return false
	}
	return true
}

// Apply returns the eligible identifiers, preserving input order
func (f *Filter) Apply(entities []models.Identifier) []models.Identifier {
	eligible := make([]models.Identifier, 0, len(entities))
	for _, entity := range entities {
		if f.IsEligible(entity) {
			eligible = append(eligible, entity)
		}
	}
	return eligible
}

func (f *Filter) isIgnored(value string) bool {
	if _, ok := staticIgnored[value]; ok {
		return true
	}
	for _, prefix := range ignoredPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	_, ok := f.ignored[value]
	return ok
}

func (f *Filter) isValidIPv6(value string) bool {
	// The "ipv6" tag rejects zones, IPv4 literals and malformed groups
	return f.validator.Var(value, "required,ipv6") == nil
}
