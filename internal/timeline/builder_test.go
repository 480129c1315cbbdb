package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyhub/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func record(country string, effective time.Time, rate float64) model.MeasureRecord {
	return model.MeasureRecord{
		Instrument:    model.InstrumentSyRBGeneral,
		Country:       country,
		EffectiveDate: effective,
		Rate:          rate,
	}
}

func TestBuildLapsedMeasure(t *testing.T) {
	// Three French records; the last reads "not active" with no revocation
	// date, so its rate is zeroed in place.
	purchase := record("France", day(2019, time.July, 1), 0.5)
	raise := record("France", day(2020, time.April, 2), 1)
	lapse := record("France", day(2021, time.August, 1), 1)
	lapse.StatusText = "Not active anymore"

	events := New(nil).Build([]model.MeasureRecord{raise, lapse, purchase}, ByCountry)
	require.Len(t, events, 3)

	assert.Equal(t, day(2019, time.July, 1), events[0].EffectiveDate)
	assert.Equal(t, 0.5, events[0].Rate)
	assert.Equal(t, 1.0, events[1].Rate)
	assert.Equal(t, 0.0, events[2].Rate)
	assert.Equal(t, "Not active anymore", events[2].StatusText)
	assert.False(t, events[2].Synthetic)
}

func TestBuildInactiveStatusNotLast(t *testing.T) {
	// The lapse inference only applies to a group's final record.
	first := record("Austria", day(2019, time.January, 1), 1)
	first.StatusText = "not active"
	second := record("Austria", day(2020, time.January, 1), 2)

	events := New(nil).Build([]model.MeasureRecord{first, second}, ByCountry)
	require.Len(t, events, 2)
	assert.Equal(t, 1.0, events[0].Rate)
	assert.Equal(t, 2.0, events[1].Rate)
}

func TestBuildSyntheticRevocation(t *testing.T) {
	activation := record("Belgium", day(2020, time.May, 1), 2)
	activation.RevocationDate = day(2022, time.May, 1)
	activation.StatusText = "Active"

	events := New(nil).Build([]model.MeasureRecord{activation}, ByCountry)
	require.Len(t, events, 2)

	assert.Equal(t, day(2020, time.May, 1), events[0].EffectiveDate)
	assert.Equal(t, 2.0, events[0].Rate)
	assert.False(t, events[0].Synthetic)

	assert.Equal(t, day(2022, time.May, 1), events[1].EffectiveDate)
	assert.Equal(t, 0.0, events[1].Rate)
	assert.Equal(t, model.StatusRevoked, events[1].StatusText)
	assert.True(t, events[1].Synthetic)
	assert.Equal(t, "Belgium", events[1].Country)
}

func TestBuildRevokedStatusBackstop(t *testing.T) {
	rec := record("Italy", day(2020, time.May, 1), 3)
	rec.StatusText = "Measure revoked"

	events := New(nil).Build([]model.MeasureRecord{rec}, ByCountry)
	require.Len(t, events, 1)
	assert.Equal(t, 0.0, events[0].Rate)
}

func TestBuildReactivationTrusted(t *testing.T) {
	// A record dated after an inferred lapse stands on its own.
	old := record("Estonia", day(2016, time.August, 1), 1)
	old.StatusText = "Not active"
	old.RevocationDate = day(2020, time.May, 1)
	fresh := record("Estonia", day(2022, time.December, 16), 1)
	fresh.StatusText = "Active"

	events := New(nil).Build([]model.MeasureRecord{old, fresh}, ByCountry)
	require.Len(t, events, 3)
	assert.Equal(t, 1.0, events[0].Rate)
	assert.Equal(t, 0.0, events[1].Rate)
	assert.True(t, events[1].Synthetic)
	assert.Equal(t, 1.0, events[2].Rate)
}

func TestBuildSkipsUndatedRecords(t *testing.T) {
	undated := record("Spain", time.Time{}, 1)
	dated := record("Spain", day(2021, time.January, 1), 1)

	events := New(nil).Build([]model.MeasureRecord{undated, dated}, ByCountry)
	require.Len(t, events, 1)
	assert.Equal(t, day(2021, time.January, 1), events[0].EffectiveDate)
}

func TestBuildGroupsIndependent(t *testing.T) {
	general := record("Austria", day(2020, time.January, 1), 1)
	general.SyRBType = model.SyRBGeneral
	general.StatusText = "Not active"
	sectoral := record("Austria", day(2019, time.January, 1), 2)
	sectoral.SyRBType = model.SyRBSectoral
	sectoral.StatusText = "Active"

	events := New(nil).Build([]model.MeasureRecord{general, sectoral}, ByCountrySyRBType)
	require.Len(t, events, 2)

	// The general lapse must not zero the sectoral group's only record.
	assert.Equal(t, model.SyRBGeneral, events[0].SyRBType)
	assert.Equal(t, 0.0, events[0].Rate)
	assert.Equal(t, model.SyRBSectoral, events[1].SyRBType)
	assert.Equal(t, 2.0, events[1].Rate)
}

func TestBuildOrdering(t *testing.T) {
	events := New(nil).Build([]model.MeasureRecord{
		record("Belgium", day(2021, time.March, 1), 1),
		record("Austria", day(2022, time.March, 1), 1),
		record("Austria", day(2020, time.March, 1), 1),
	}, ByCountry)
	require.Len(t, events, 3)

	assert.Equal(t, "Austria", events[0].Country)
	assert.Equal(t, day(2020, time.March, 1), events[0].EffectiveDate)
	assert.Equal(t, "Austria", events[1].Country)
	assert.Equal(t, "Belgium", events[2].Country)
}
