// Package snapshot selects the most recent record per grouping key, the
// "current state" view of each country's measures. It operates on the latest
// known rows only; no timeline reconstruction happens here.
package snapshot

import (
	"sort"
	"strings"
	"time"

	"policyhub/internal/model"
)

// Latest keeps, per key, the item with the greatest date. Among equal dates
// the later item in input order wins. Output is ordered by key ascending.
func Latest[T any](items []T, key func(T) string, date func(T) time.Time) []T {
	type pick struct {
		item  T
		date  time.Time
		index int
	}
	picked := make(map[string]pick)
	keys := make([]string, 0)
	for i, item := range items {
		k := key(item)
		current, ok := picked[k]
		if !ok {
			keys = append(keys, k)
		}
		if !ok || !date(item).Before(current.date) {
			picked[k] = pick{item: item, date: date(item), index: i}
		}
	}
	sort.Strings(keys)

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, picked[k].item)
	}
	return out
}

// LatestByCountry is the per-country snapshot over an event list.
func LatestByCountry(events []model.Event) []model.Event {
	return Latest(events,
		func(e model.Event) string { return e.Country },
		func(e model.Event) time.Time { return e.EffectiveDate },
	)
}

// ActiveSyRB builds the "currently active" table: one row per (iso2,
// exposure), restricted to rows whose status reads applicable/active (or
// whose effective date is still in the future) and is not deactivated or
// revoked, and whose rate is positive.
func ActiveSyRB(events []model.Event, today time.Time) []model.Event {
	kept := make([]model.Event, 0, len(events))
	for _, event := range events {
		status := strings.ToLower(event.StatusText)
		applies := strings.Contains(status, "applicable") ||
			strings.Contains(status, "active") ||
			event.EffectiveDate.After(today)
		dropped := strings.Contains(status, "deactivated") ||
			strings.Contains(status, "revoked") ||
			strings.Contains(status, "no longer")
		if applies && !dropped {
			kept = append(kept, event)
		}
	}

	latest := Latest(kept,
		func(e model.Event) string { return e.ISO2 + "\x00" + string(e.Exposure) },
		func(e model.Event) time.Time { return e.EffectiveDate },
	)

	active := make([]model.Event, 0, len(latest))
	for _, event := range latest {
		if event.Rate > 0 {
			active = append(active, event)
		}
	}
	return active
}

// bbmInactiveMarkers are the status fragments that read as a withdrawn
// borrower-based measure.
var bbmInactiveMarkers = []string{"deactivated", "revoked", "expired"}

// CheckActiveBBM applies the direct status rule for borrower-based measures:
// active unless the status carries a deactivation marker or the stated
// revocation date has already passed relative to today.
func CheckActiveBBM(record model.MeasureRecord, today time.Time) model.ActiveStatus {
	status := strings.ToLower(record.StatusText)
	for _, marker := range bbmInactiveMarkers {
		if strings.Contains(status, marker) {
			return model.StatusInactive
		}
	}
	if !record.RevocationDate.IsZero() && !record.RevocationDate.After(today) {
		return model.StatusInactive
	}
	return model.StatusActive
}

// ActiveBBM filters records whose ActiveStatus was resolved to Active.
func ActiveBBM(records []model.MeasureRecord) []model.MeasureRecord {
	active := make([]model.MeasureRecord, 0, len(records))
	for _, record := range records {
		if record.ActiveStatus == model.StatusActive {
			active = append(active, record)
		}
	}
	return active
}

// measureAbbreviations shortens borrower-based measure types for the compact
// snapshot table.
var measureAbbreviations = map[string]string{
	"Loan-to-value (LTV)":            "LTV",
	"Debt-service-to-income (DSTI)":  "DSTI",
	"Loan-to-income (LTI)":           "LTI",
	"DTI":                            "DTI",
	"Loan maturity":                  "Maturity",
	"Loan amortisation":              "Amort.",
	"Flexibility quota":              "Flex.",
	"Stress test / sensitivity test": "Stress T.",
}

// AbbreviateMeasure maps a BBM measure type to its table abbreviation,
// passing unknown types through unchanged.
func AbbreviateMeasure(measureType string) string {
	if short, ok := measureAbbreviations[measureType]; ok {
		return short
	}
	return measureType
}
