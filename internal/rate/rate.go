// Package rate derives a single numeric percentage from messy source fields:
// a dedicated rate cell when it parses, free-text prose otherwise.
package rate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	rateOfPattern  = regexp.MustCompile(`(?i)rate\s*(?:of|is)\s*(\d+(?:\.\d+)?)`)
	numberPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)`)
)

// FromText scans prose for "<number>%" matches, falling back to
// "rate of/is <number>" phrasing, and returns the maximum value that is
// plausible as a percentage (<= 100). Decimal commas are tolerated.
func FromText(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	text = strings.ReplaceAll(text, ",", ".")

	matches := percentPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		matches = rateOfPattern.FindAllStringSubmatch(text, -1)
	}

	best := 0.0
	found := false
	for _, match := range matches {
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil || value > 100 {
			continue
		}
		if !found || value > best {
			best = value
			found = true
		}
	}
	if !found {
		return 0
	}
	return best
}

// FromCell parses a rate cell that may carry stray text. Every number in the
// cell is considered, excluding values that read as four-digit years
// (1990-2030) and anything above 50; the guard keeps dates and amounts from
// being misread as rates even when the cell parses cleanly as a number.
func FromCell(cell string) float64 {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return 0
	}
	trimmed = strings.ToLower(trimmed)
	trimmed = strings.ReplaceAll(trimmed, ",", ".")

	best := 0.0
	found := false
	for _, match := range numberPattern.FindAllStringSubmatch(trimmed, -1) {
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		if isYear(value) || value > 50 {
			continue
		}
		if !found || value > best {
			best = value
			found = true
		}
	}
	if !found {
		return 0
	}
	return best
}

// ForRecord applies the column-over-text preference: a parseable dedicated
// rate cell wins, an empty or unparseable cell falls back to the description.
func ForRecord(cell, description string) float64 {
	trimmed := strings.TrimSpace(cell)
	if trimmed != "" {
		normalized := strings.TrimSuffix(strings.ReplaceAll(trimmed, ",", "."), "%")
		if value, err := strconv.ParseFloat(strings.TrimSpace(normalized), 64); err == nil && value >= 0 {
			return value
		}
	}
	return FromText(description)
}

// Text renders the display form used by the report tables.
func Text(value float64) string {
	if value > 0 {
		return strconv.FormatFloat(value, 'f', -1, 64) + "%"
	}
	return "0% / Inactive"
}

func isYear(value float64) bool {
	return value == float64(int64(value)) && value >= 1990 && value <= 2030
}
