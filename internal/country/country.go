// Package country resolves ISO-3166 alpha-2 codes to English country names
package country

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Resolver maps a 2-letter country code to a display name
type Resolver interface {
	// Name returns the full country name and true, or "" and false
	// when the code cannot be resolved
	Name(code string) (string, bool)
}

// DisplayResolver resolves codes using CLDR data from golang.org/x/text
type DisplayResolver struct {
	namer display.Namer
}

// NewDisplayResolver creates a resolver that returns English names
func NewDisplayResolver() *DisplayResolver {
	return &DisplayResolver{namer: display.English.Regions()}
}

// Name implements Resolver
func (r *DisplayResolver) Name(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if len(code) != 2 {
		return "", false
	}

	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return "", false
	}

	name := r.namer.Name(region)
	if name == "" {
		return "", false
	}
	return name, true
}

// StaticResolver is a fixed code -> name table, handy for tests and overrides
type StaticResolver map[string]string

// Name implements Resolver
func (s StaticResolver) Name(code string) (string, bool) {
	name, ok := s[strings.ToUpper(code)]
	return name, ok && name != ""
}
