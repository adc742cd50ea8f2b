// Package reducer turns one provider response body into summary tags and details
package reducer

import (
	"maps"
	"strings"

	"github.com/evyataryagoni/ipenrich/internal/country"
	"github.com/evyataryagoni/ipenrich/internal/models"
)

// FullCountryNameField is the side field added to details when the
// country code resolves
const FullCountryNameField = "_fullCountryName"

// Reducer derives SummaryRecords; it holds no mutable state
type Reducer struct {
	countries country.Resolver
}

// New creates a reducer; a nil resolver falls back to the CLDR resolver
func New(countries country.Resolver) *Reducer {
	if countries == nil {
		countries = country.NewDisplayResolver()
	}
	return &Reducer{countries: countries}
}

// Reduce maps a decoded response body to its SummaryRecord
//
// Tag order: privacy flags (VPN, Proxy, Tor, Hosting), organization,
// then one combined "city, region, country" tag. Steps without data are
// skipped. The input map is never modified.
func (r *Reducer) Reduce(body map[string]any) models.SummaryRecord {
	p := normalize(body)
	details := maps.Clone(body)

	countryName, resolved := "", false
	if p.country != "" {
		countryName, resolved = r.countries.Name(p.country)
		if resolved {
			if details == nil {
				details = map[string]any{}
			}
			details[FullCountryNameField] = countryName
		} else {
			countryName = p.country
		}
	}

	tags := privacyTags(p.privacy)
	if org := organization(p); org != "" {
		tags = append(tags, org)
	}
	if geo := joinNonEmpty(p.city, p.region, countryName); geo != "" {
		tags = append(tags, geo)
	}

	return models.SummaryRecord{
		Summary: tags,
		Details: details,
	}
}

func privacyTags(flags *privacyFlags) []string {
	tags := []string{}
	if flags == nil {
		return tags
	}
	if flags.vpn {
		tags = append(tags, "VPN")
	}
	if flags.proxy {
		tags = append(tags, "Proxy")
	}
	if flags.tor {
		tags = append(tags, "Tor")
	}
	if flags.hosting {
		tags = append(tags, "Hosting")
	}
	return tags
}

// organization prefers the free-plan org line and only falls back to
// the asn object when no org line was sent
func organization(p profile) string {
	name := p.asnName
	if p.hasOrgLine {
		name = p.orgName
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	// ALL-CAPS registry names read badly in a tag
	if name == strings.ToUpper(name) {
		return strings.ToLower(name)
	}
	return name
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ", ")
}
