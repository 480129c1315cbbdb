package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyhub/internal/tabular"
)

func sheet(rows ...[]string) tabular.Sheet {
	return tabular.Sheet{Name: "test", Rows: rows}
}

func TestMapSyRB(t *testing.T) {
	s := sheet(
		[]string{"Systemic risk buffer overview"},
		[]string{"", "last updated 2024"},
		[]string{"Country", "Reference of measure", "Description of\nmeasure", "Type of exposures applied to", "Present status of measure", "SyRB rate", "Measure becomes active on", "Date of revocation"},
		[]string{"Austria", "AT-2021-1", "General buffer of 1%", "All exposures", "Active", "1%", "2021-05-10", ""},
		[]string{"Belgium", "BE-2022-3", "Sectoral buffer", "Residential real estate", "Active", "", "2022-04-01", ""},
	)

	table, err := Map(s, SyRB())
	require.NoError(t, err)

	assert.Equal(t, 2, table.HeaderRow())
	assert.Equal(t, 2, table.NumRows())
	assert.Equal(t, "Austria", table.Get(0, FieldCountry))
	assert.Equal(t, "AT-2021-1", table.Get(0, FieldReference))
	assert.Equal(t, "General buffer of 1%", table.Get(0, FieldDescription))
	assert.Equal(t, "2021-05-10", table.Get(0, FieldEffectiveDate))
	assert.Equal(t, "Residential real estate", table.Get(1, FieldExposureType))
	assert.True(t, table.Has(FieldRateCell))
	assert.Equal(t, "", table.Get(1, FieldRateCell))
}

func TestMapHeaderNewlines(t *testing.T) {
	s := sheet(
		[]string{"Country", "Measure\nbecomes  active\non"},
		[]string{"France", "2023-01-01"},
	)

	table, err := Map(s, SyRB())
	require.NoError(t, err)
	assert.Equal(t, "2023-01-01", table.Get(0, FieldEffectiveDate))
}

func TestMapLaterColumnWins(t *testing.T) {
	// The sources repeat labels; the rightmost occurrence carries the data.
	s := sheet(
		[]string{"Country", "SyRB rate", "Current SyRB rate"},
		[]string{"Austria", "old", "2%"},
	)

	table, err := Map(s, SyRB())
	require.NoError(t, err)
	assert.Equal(t, "2%", table.Get(0, FieldRateCell))
}

func TestMapRateExcludesGuide(t *testing.T) {
	s := sheet(
		[]string{"Country", "Buffer guide rate", "CCyB rate"},
		[]string{"Austria", "9", "1.5"},
	)

	table, err := Map(s, CCyB())
	require.NoError(t, err)
	assert.Equal(t, "1.5", table.Get(0, FieldRateCell))
}

func TestMapDateFallbackScan(t *testing.T) {
	// No "measure becomes active on" label; any column mentioning "date"
	// serves as the effective date.
	s := sheet(
		[]string{"Country", "Activation date", "Status"},
		[]string{"Austria", "2021-05-10", "Active"},
	)

	table, err := Map(s, SyRB())
	require.NoError(t, err)
	assert.Equal(t, "2021-05-10", table.Get(0, FieldEffectiveDate))
}

func TestMapCCyBDecisionDateFallback(t *testing.T) {
	s := sheet(
		[]string{"Country", "Decision on the rate", "CCyB rate"},
		[]string{"Austria", "2021-05-10", "0.5"},
	)

	table, err := Map(s, CCyB())
	require.NoError(t, err)
	assert.True(t, table.Has(FieldDecisionDate))
	assert.Equal(t, "2021-05-10", table.Get(0, FieldEffectiveDate))
}

func TestMapUnusable(t *testing.T) {
	s := sheet(
		[]string{"Country", "Comment"},
		[]string{"Austria", "x"},
	)

	_, err := Map(s, CCyB())
	assert.ErrorIs(t, err, ErrUnusable)
}

func TestMapHeaderScanLimit(t *testing.T) {
	rows := make([][]string, 0, 25)
	for i := 0; i < 22; i++ {
		rows = append(rows, []string{"preamble"})
	}
	rows = append(rows, []string{"Country", "CCyB rate"})
	rows = append(rows, []string{"Austria", "1"})

	// CCyB scans only the first 20 rows, so the real header is never found
	// and the default row 0 lacks the required columns.
	_, err := Map(sheet(rows...), CCyB())
	assert.ErrorIs(t, err, ErrUnusable)
}

func TestMapRaggedRows(t *testing.T) {
	s := sheet(
		[]string{"Country", "Description of measure", "Measure becomes active on"},
		[]string{"Austria"},
	)

	table, err := Map(s, SyRB())
	require.NoError(t, err)
	assert.Equal(t, "Austria", table.Get(0, FieldCountry))
	assert.Equal(t, "", table.Get(0, FieldDescription))
}
