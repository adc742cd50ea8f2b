package reducer

import "strings"

// profile is the canonical shape every provider body is decoded into
// before any tag is derived. Plans differ: the free tier sends a combined
// "org" string ("AS15169 Google LLC"), paid tiers send an "asn" object
// and a "privacy" object.
type profile struct {
	privacy    *privacyFlags
	orgName    string // organization without the ASN token
	hasOrgLine bool   // body carried an "org" field at all
	asnName    string
	city       string
	region     string
	country    string
}

type privacyFlags struct {
	vpn     bool
	proxy   bool
	tor     bool
	hosting bool
}

// normalize reads the loosely typed body once; fields with the wrong type
// are treated as absent
func normalize(body map[string]any) profile {
	var p profile

	if raw, ok := body["privacy"].(map[string]any); ok {
		p.privacy = &privacyFlags{
			vpn:     truthy(raw["vpn"]),
			proxy:   truthy(raw["proxy"]),
			tor:     truthy(raw["tor"]),
			hosting: truthy(raw["hosting"]),
		}
	}

	if org, ok := body["org"].(string); ok && org != "" {
		p.hasOrgLine = true
		if _, name, found := strings.Cut(org, " "); found {
			p.orgName = name
		}
	}

	if asn, ok := body["asn"].(map[string]any); ok {
		p.asnName = stringField(asn, "name")
	}

	p.city = stringField(body, "city")
	p.region = stringField(body, "region")
	p.country = stringField(body, "country")

	return p
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
