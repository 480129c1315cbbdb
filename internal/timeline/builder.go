// Package timeline reconstructs chronological event sequences per (country,
// instrument) group, synthesizing the revocation events the source tables
// leave implicit.
package timeline

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"policyhub/internal/model"
)

// GroupKey identifies a reconciliation group for a record. Groups are
// processed independently; a bad group never affects its neighbors.
type GroupKey func(model.MeasureRecord) string

// ByCountry groups on the country name alone.
func ByCountry(record model.MeasureRecord) string {
	return record.Country
}

// ByCountrySyRBType groups on (country, general/sectoral), the granularity at
// which systemic risk buffers are tracked.
func ByCountrySyRBType(record model.MeasureRecord) string {
	return record.Country + "\x00" + string(record.SyRBType)
}

type Builder struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{log: log}
}

// Build expands records into an ordered event list. Per group, sorted by
// effective date ascending:
//   - every record emits one activation event;
//   - the last record of a group whose status reads as inactive and which has
//     no stated revocation date has its rate forced to 0 (the regulator's
//     last word was that the measure lapsed, end date unrecorded);
//   - any record carrying a revocation date additionally emits a synthetic
//     revocation event at that date with rate 0 and status "Revoked";
//   - a final pass forces rate 0 on every event whose status contains
//     "revoked", as a backstop against upstream nonzero rates.
//
// Records without an effective date are skipped. Chronological order is
// trusted as-is: a reactivation after an inferred deactivation is a new
// independent event, not a correction.
func (b *Builder) Build(records []model.MeasureRecord, key GroupKey) []model.Event {
	groups := make(map[string][]model.MeasureRecord)
	keys := make([]string, 0)
	for _, record := range records {
		if record.EffectiveDate.IsZero() {
			continue
		}
		k := key(record)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], record)
	}
	sort.Strings(keys)

	events := make([]model.Event, 0, len(records))
	for _, k := range keys {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].EffectiveDate.Before(group[j].EffectiveDate)
		})

		for i, record := range group {
			isLast := i == len(group)-1
			event := model.Event{MeasureRecord: record}
			if isLast && indicatesInactive(record.StatusText) && record.RevocationDate.IsZero() {
				event.Rate = 0
			}
			events = append(events, event)

			if record.RevocationDate.IsZero() {
				continue
			}
			if record.RevocationDate.Before(record.EffectiveDate) {
				b.log.Warn("revocation date precedes effective date",
					zap.String("country", record.Country),
					zap.String("instrument", string(record.Instrument)),
					zap.Time("effective", record.EffectiveDate),
					zap.Time("revocation", record.RevocationDate),
				)
			}
			revocation := model.Event{MeasureRecord: record, Synthetic: true}
			revocation.EffectiveDate = record.RevocationDate
			revocation.Rate = 0
			revocation.StatusText = model.StatusRevoked
			events = append(events, revocation)
		}
	}

	// Backstop: a revoked status never carries a nonzero rate.
	for i := range events {
		if strings.Contains(strings.ToLower(events[i].StatusText), "revoked") {
			events[i].Rate = 0
		}
	}

	sortEvents(events, key)
	return events
}

func sortEvents(events []model.Event, key GroupKey) {
	sort.SliceStable(events, func(i, j int) bool {
		ki, kj := key(events[i].MeasureRecord), key(events[j].MeasureRecord)
		if ki != kj {
			return ki < kj
		}
		return events[i].EffectiveDate.Before(events[j].EffectiveDate)
	})
}

func indicatesInactive(status string) bool {
	return strings.Contains(strings.ToLower(status), "not active")
}
