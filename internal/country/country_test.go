package country

import "testing"

// TestDisplayResolver_Name tests resolution of common and invalid codes
func TestDisplayResolver_Name(t *testing.T) {
	tests := []struct {
		code     string
		expected string
		ok       bool
	}{
		{"US", "United States", true},
		{"us", "United States", true},
		{"DE", "Germany", true},
		{"AU", "Australia", true},
		{"", "", false},
		{"USA", "", false},
		{"1", "", false},
		{"Q1", "", false},
	}

	resolver := NewDisplayResolver()
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			name, ok := resolver.Name(tt.code)
			if ok != tt.ok {
				t.Fatalf("Name(%q) ok = %v, expected %v", tt.code, ok, tt.ok)
			}
			if name != tt.expected {
				t.Errorf("Name(%q) = %q, expected %q", tt.code, name, tt.expected)
			}
		})
	}
}

// TestStaticResolver_Name tests the table resolver
func TestStaticResolver_Name(t *testing.T) {
	resolver := StaticResolver{"US": "United States", "XX": ""}

	if name, ok := resolver.Name("us"); !ok || name != "United States" {
		t.Errorf("expected United States, got %q (%v)", name, ok)
	}
	if _, ok := resolver.Name("XX"); ok {
		t.Error("expected empty name to be treated as unresolved")
	}
	if _, ok := resolver.Name("FR"); ok {
		t.Error("expected unknown code to be unresolved")
	}
}
