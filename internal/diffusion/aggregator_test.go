package diffusion

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyhub/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDailyCountsForwardFill(t *testing.T) {
	observations := []Observation{
		{Date: day(2021, time.May, 10), Country: "Austria", Rate: 1},
		{Date: day(2021, time.May, 13), Country: "Austria", Rate: 0},
	}
	points := DailyCounts(observations, day(2021, time.May, 15))
	require.Len(t, points, 6)

	counts := make([]int, 0, len(points))
	for _, point := range points {
		counts = append(counts, point.Count)
	}
	assert.Equal(t, []int{1, 1, 1, 0, 0, 0}, counts)
	assert.Equal(t, day(2021, time.May, 10), points[0].Date)
	assert.Equal(t, day(2021, time.May, 15), points[5].Date)
}

func TestDailyCountsMultipleCountries(t *testing.T) {
	observations := []Observation{
		{Date: day(2021, time.January, 1), Country: "Austria", Rate: 0.5},
		{Date: day(2021, time.January, 3), Country: "Belgium", Rate: 1},
		{Date: day(2021, time.January, 5), Country: "Austria", Rate: 0},
	}
	points := DailyCounts(observations, day(2021, time.January, 6))
	require.Len(t, points, 6)

	counts := make([]int, 0, len(points))
	for _, point := range points {
		counts = append(counts, point.Count)
	}
	// Belgium joins on the 3rd, Austria drops out on the 5th.
	assert.Equal(t, []int{1, 1, 2, 2, 1, 1}, counts)
}

func TestDailyCountsSameDayLastWins(t *testing.T) {
	observations := []Observation{
		{Date: day(2021, time.May, 10), Country: "Austria", Rate: 1},
		{Date: day(2021, time.May, 10), Country: "Austria", Rate: 0},
	}
	points := DailyCounts(observations, day(2021, time.May, 10))
	require.Len(t, points, 1)
	assert.Equal(t, 0, points[0].Count)
}

func TestDailyCountsEpsilon(t *testing.T) {
	observations := []Observation{
		{Date: day(2021, time.May, 10), Country: "Austria", Rate: 1e-5},
	}
	points := DailyCounts(observations, day(2021, time.May, 10))
	require.Len(t, points, 1)
	assert.Equal(t, 0, points[0].Count)
}

func TestDailyCountsBeforeEarliest(t *testing.T) {
	observations := []Observation{
		{Date: day(2021, time.May, 10), Country: "Austria", Rate: 1},
	}
	assert.Nil(t, DailyCounts(observations, day(2020, time.January, 1)))
	assert.Nil(t, DailyCounts(nil, day(2021, time.May, 10)))
}

func TestDailyCountsIdempotent(t *testing.T) {
	observations := []Observation{
		{Date: day(2021, time.May, 10), Country: "Austria", Rate: 1},
		{Date: day(2021, time.June, 1), Country: "Belgium", Rate: 2},
		{Date: day(2021, time.July, 1), Country: "Austria", Rate: 0},
	}
	today := day(2021, time.August, 1)

	first := DailyCounts(observations, today)
	second := DailyCounts(observations, today)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("reruns differ (-first +second):\n%s", diff)
	}
}

func TestDailyCountsBounded(t *testing.T) {
	observations := []Observation{
		{Date: day(2021, time.January, 1), Country: "Austria", Rate: 1},
		{Date: day(2021, time.January, 2), Country: "Belgium", Rate: 1},
		{Date: day(2021, time.January, 3), Country: "Croatia", Rate: 1},
	}
	for _, point := range DailyCounts(observations, day(2021, time.February, 1)) {
		assert.GreaterOrEqual(t, point.Count, 0)
		assert.LessOrEqual(t, point.Count, 3)
	}
}

func TestActiveCountryCounts(t *testing.T) {
	changes := []Change{
		{Date: day(2021, time.January, 1), Country: "Austria", Delta: 1},
		{Date: day(2021, time.January, 2), Country: "Austria", Delta: 1},
		{Date: day(2021, time.January, 4), Country: "Austria", Delta: -1},
		{Date: day(2021, time.January, 6), Country: "Austria", Delta: -1},
	}
	points := ActiveCountryCounts(changes, day(2021, time.January, 7))
	require.Len(t, points, 7)

	counts := make([]int, 0, len(points))
	for _, point := range points {
		counts = append(counts, point.Count)
	}
	// Two overlapping measures still count the country once; it only drops
	// out when the last one ends.
	assert.Equal(t, []int{1, 1, 1, 1, 1, 0, 0}, counts)
}

func TestActiveCountryCountsEmpty(t *testing.T) {
	assert.Nil(t, ActiveCountryCounts(nil, day(2021, time.January, 1)))
}

func TestMerge(t *testing.T) {
	general := []model.TrendPoint{
		{Date: day(2021, time.January, 1), Count: 1},
		{Date: day(2021, time.January, 2), Count: 2},
	}
	sectoral := []model.TrendPoint{
		{Date: day(2021, time.January, 2), Count: 1},
		{Date: day(2021, time.January, 4), Count: 3},
	}

	table := Merge([]string{"General SyRB", "Sectoral SyRB"}, general, sectoral)
	require.Equal(t, []string{"General SyRB", "Sectoral SyRB"}, table.Columns)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, day(2021, time.January, 1), table.Rows[0].Date)
	assert.Equal(t, []int{1, 0}, table.Rows[0].Counts)
	assert.Equal(t, []int{2, 1}, table.Rows[1].Counts)
	// January 4 carries the general column forward over the gap.
	assert.Equal(t, day(2021, time.January, 4), table.Rows[2].Date)
	assert.Equal(t, []int{2, 3}, table.Rows[2].Counts)
}

func TestMergeEmptySeries(t *testing.T) {
	table := Merge([]string{"a", "b"}, nil, nil)
	assert.Equal(t, []string{"a", "b"}, table.Columns)
	assert.Empty(t, table.Rows)
}
