package etl

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts covers the formats the notification tables have been observed
// to use. Parsing is best-effort: anything unrecognized coerces to the zero
// time and the row is dropped from date-dependent processing.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02.01.2006",
	"2.1.2006",
	"02-01-2006",
	"2006/01/02",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"02 Jan 2006",
}

// excelEpoch is day zero of the 1900 date system as spreadsheets serialize it.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseDate coerces a cell to a day-resolution UTC timestamp. Serial numbers
// in the plausible spreadsheet range (1954-2064) are treated as Excel dates.
func parseDate(cell string) time.Time {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil && serial >= 20000 && serial <= 60000 {
		return excelEpoch.AddDate(0, 0, int(serial))
	}
	return time.Time{}
}

// parseFloat coerces a numeric-ish cell to a float, 0 on failure.
func parseFloat(cell string) float64 {
	trimmed := strings.ReplaceAll(strings.TrimSpace(cell), ",", ".")
	if trimmed == "" {
		return 0
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return value
}
