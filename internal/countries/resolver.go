// Package countries resolves free-text country names to ISO codes. Resolution
// is an external concern; the engine only depends on the Resolver interface
// and tolerates unresolved names (empty codes) without failing.
package countries

import "strings"

type Resolver interface {
	// ISO2 and ISO3 return "" for names they cannot resolve.
	ISO2(name string) string
	ISO3(name string) string
}

type NopResolver struct{}

func (NopResolver) ISO2(name string) string { _ = name; return "" }
func (NopResolver) ISO3(name string) string { _ = name; return "" }

type entry struct {
	iso2 string
	iso3 string
}

// StaticResolver resolves from a built-in table covering the jurisdictions the
// ESRB notification tables report on. Matching is case-insensitive on the
// trimmed name.
type StaticResolver struct {
	byName map[string]entry
}

func NewStaticResolver() *StaticResolver {
	table := map[string]entry{
		"austria":        {"AT", "AUT"},
		"belgium":        {"BE", "BEL"},
		"bulgaria":       {"BG", "BGR"},
		"croatia":        {"HR", "HRV"},
		"cyprus":         {"CY", "CYP"},
		"czech republic": {"CZ", "CZE"},
		"czechia":        {"CZ", "CZE"},
		"denmark":        {"DK", "DNK"},
		"estonia":        {"EE", "EST"},
		"finland":        {"FI", "FIN"},
		"france":         {"FR", "FRA"},
		"germany":        {"DE", "DEU"},
		"greece":         {"GR", "GRC"},
		"hungary":        {"HU", "HUN"},
		"iceland":        {"IS", "ISL"},
		"ireland":        {"IE", "IRL"},
		"italy":          {"IT", "ITA"},
		"latvia":         {"LV", "LVA"},
		"liechtenstein":  {"LI", "LIE"},
		"lithuania":      {"LT", "LTU"},
		"luxembourg":     {"LU", "LUX"},
		"malta":          {"MT", "MLT"},
		"netherlands":    {"NL", "NLD"},
		"norway":         {"NO", "NOR"},
		"poland":         {"PL", "POL"},
		"portugal":       {"PT", "PRT"},
		"romania":        {"RO", "ROU"},
		"slovakia":       {"SK", "SVK"},
		"slovenia":       {"SI", "SVN"},
		"spain":          {"ES", "ESP"},
		"sweden":         {"SE", "SWE"},
		"united kingdom": {"GB", "GBR"},
	}
	return &StaticResolver{byName: table}
}

func (r *StaticResolver) lookup(name string) (entry, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "the ")
	found, ok := r.byName[key]
	return found, ok
}

func (r *StaticResolver) ISO2(name string) string {
	found, ok := r.lookup(name)
	if !ok {
		return ""
	}
	return found.iso2
}

func (r *StaticResolver) ISO3(name string) string {
	found, ok := r.lookup(name)
	if !ok {
		return ""
	}
	return found.iso3
}

var _ Resolver = (*StaticResolver)(nil)
var _ Resolver = NopResolver{}
