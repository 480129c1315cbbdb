// Package diffusion converts event timelines into dense daily series and
// counts, per calendar day, how many countries have an active measure. All
// functions are pure over their inputs; rerunning them on the same event list
// yields identical output.
package diffusion

import (
	"sort"
	"time"

	"policyhub/internal/model"
)

// ActiveEpsilon guards the rate > 0 test against floating-point noise at the
// zero boundary.
const ActiveEpsilon = 1e-4

// Observation is one dated rate decision for a country. Callers adapt events
// or records into observations; the aggregator does not care which.
type Observation struct {
	Date    time.Time
	Country string
	Rate    float64
}

// DailyCounts builds, for every calendar day from the earliest observation
// through today, the number of countries whose forward-filled rate exceeds
// ActiveEpsilon. Same-day multiplicity per country is a same-day correction:
// the last observation in input order wins. Days before a country's first
// observation count it as 0 (not yet adopted).
func DailyCounts(observations []Observation, today time.Time) []model.TrendPoint {
	today = model.Day(today)

	// (date, country) -> rate, last write wins.
	byCountry := make(map[string]map[time.Time]float64)
	var earliest time.Time
	for _, observation := range observations {
		if observation.Date.IsZero() {
			continue
		}
		day := model.Day(observation.Date)
		if earliest.IsZero() || day.Before(earliest) {
			earliest = day
		}
		if byCountry[observation.Country] == nil {
			byCountry[observation.Country] = make(map[time.Time]float64)
		}
		byCountry[observation.Country][day] = observation.Rate
	}
	if earliest.IsZero() || today.Before(earliest) {
		return nil
	}

	days := int(today.Sub(earliest).Hours()/24) + 1
	counts := make([]int, days)

	for _, decisions := range byCountry {
		dates := make([]time.Time, 0, len(decisions))
		for date := range decisions {
			dates = append(dates, date)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		next := 0
		value := 0.0
		for i := 0; i < days; i++ {
			day := earliest.AddDate(0, 0, i)
			for next < len(dates) && !dates[next].After(day) {
				value = decisions[dates[next]]
				next++
			}
			if value > ActiveEpsilon {
				counts[i]++
			}
		}
	}

	points := make([]model.TrendPoint, days)
	for i := 0; i < days; i++ {
		points[i] = model.TrendPoint{Date: earliest.AddDate(0, 0, i), Count: counts[i]}
	}
	return points
}

// Change is a +1/-1 adoption delta for a country, used for measures whose
// activity is a count of concurrently in-force instruments rather than a rate.
type Change struct {
	Date    time.Time
	Country string
	Delta   int
}

// ActiveCountryCounts counts, per day from the earliest change through today,
// the countries whose cumulative delta is positive (at least one measure in
// force).
func ActiveCountryCounts(changes []Change, today time.Time) []model.TrendPoint {
	today = model.Day(today)

	byCountry := make(map[string]map[time.Time]int)
	var earliest time.Time
	for _, change := range changes {
		if change.Date.IsZero() {
			continue
		}
		day := model.Day(change.Date)
		if earliest.IsZero() || day.Before(earliest) {
			earliest = day
		}
		if byCountry[change.Country] == nil {
			byCountry[change.Country] = make(map[time.Time]int)
		}
		byCountry[change.Country][day] += change.Delta
	}
	if earliest.IsZero() || today.Before(earliest) {
		return nil
	}

	days := int(today.Sub(earliest).Hours()/24) + 1
	counts := make([]int, days)

	for _, deltas := range byCountry {
		dates := make([]time.Time, 0, len(deltas))
		for date := range deltas {
			dates = append(dates, date)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		next := 0
		running := 0
		for i := 0; i < days; i++ {
			day := earliest.AddDate(0, 0, i)
			for next < len(dates) && !dates[next].After(day) {
				running += deltas[dates[next]]
				next++
			}
			if running > 0 {
				counts[i]++
			}
		}
	}

	points := make([]model.TrendPoint, days)
	for i := 0; i < days; i++ {
		points[i] = model.TrendPoint{Date: earliest.AddDate(0, 0, i), Count: counts[i]}
	}
	return points
}

// Merge joins several daily series into one table over the union of their
// calendars. Each column is forward-filled across the union and 0 before its
// own first date. Series that are entirely empty still get a column.
func Merge(columns []string, series ...[]model.TrendPoint) model.TrendTable {
	table := model.TrendTable{Columns: columns}

	dateSet := make(map[time.Time]struct{})
	for _, points := range series {
		for _, point := range points {
			dateSet[model.Day(point.Date)] = struct{}{}
		}
	}
	if len(dateSet) == 0 {
		return table
	}
	dates := make([]time.Time, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	lookups := make([]map[time.Time]int, len(series))
	for i, points := range series {
		lookups[i] = make(map[time.Time]int, len(points))
		for _, point := range points {
			lookups[i][model.Day(point.Date)] = point.Count
		}
	}

	carried := make([]int, len(series))
	for _, date := range dates {
		row := model.TrendRow{Date: date, Counts: make([]int, len(series))}
		for i := range series {
			if count, ok := lookups[i][date]; ok {
				carried[i] = count
			}
			row.Counts[i] = carried[i]
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
