// Package schema locates the header row of an irregular sheet and maps its
// inconsistently named columns onto a canonical field set. Mapping rules are
// per source dialect and applied in priority order, so specific labels
// ("present status of measure") win over generic ones (bare "date").
package schema

import (
	"errors"
	"strings"

	"policyhub/internal/tabular"
)

// ErrUnusable signals that a sheet lacks the columns the dialect requires.
// Callers treat it as "no data", never as a run failure.
var ErrUnusable = errors.New("schema: required columns missing")

type Field string

const (
	FieldCountry        Field = "country"
	FieldEffectiveDate  Field = "effective_date"
	FieldDecisionDate   Field = "decision_date"
	FieldRevocationDate Field = "revocation_date"
	FieldStatus         Field = "status"
	FieldDescription    Field = "description"
	FieldExposureType   Field = "exposure_type"
	FieldRateCell       Field = "rate"
	FieldReference      Field = "reference"
	FieldMeasureType    Field = "measure_type"
	FieldJustification  Field = "justification"
	FieldCreditGap      Field = "credit_gap"
)

// Rule maps any header containing Contains (and none of Excludes) to Field.
// All matching is case-insensitive substring.
type Rule struct {
	Field    Field
	Contains string
	Excludes []string
}

// Dialect describes one source table layout.
type Dialect struct {
	Name         string
	SheetHints   []string
	ScanRows     int
	HeaderTokens []string
	Rules        []Rule
	Required     []Field
	// DateFallbackScan maps any remaining column containing "date" to the
	// effective date when no rule matched one.
	DateFallbackScan bool
	// DecisionDateFallback reuses the decision-date column as the effective
	// date when the dialect's effective-date label is absent.
	DecisionDateFallback bool
}

// SyRB is the systemic risk buffer overview dialect.
func SyRB() Dialect {
	return Dialect{
		Name:         "syrb",
		SheetHints:   []string{"SRB", "Systemic"},
		ScanRows:     30,
		HeaderTokens: []string{"reference of measure", "country"},
		Rules: []Rule{
			{Field: FieldCountry, Contains: "country"},
			{Field: FieldEffectiveDate, Contains: "measure becomes active on"},
			{Field: FieldDescription, Contains: "description of measure"},
			{Field: FieldExposureType, Contains: "type of exposures applied to"},
			{Field: FieldStatus, Contains: "present status of measure"},
			{Field: FieldRateCell, Contains: "rate", Excludes: []string{"guide"}},
			{Field: FieldRevocationDate, Contains: "date of revocation"},
			{Field: FieldReference, Contains: "reference of measure"},
		},
		Required:         []Field{FieldCountry},
		DateFallbackScan: true,
	}
}

// BBM is the borrower-based measures dialect.
func BBM() Dialect {
	return Dialect{
		Name:         "bbm",
		SheetHints:   []string{"BoBM"},
		ScanRows:     30,
		HeaderTokens: []string{"country"},
		Rules: []Rule{
			{Field: FieldCountry, Contains: "country"},
			{Field: FieldEffectiveDate, Contains: "measure becomes active on"},
			{Field: FieldMeasureType, Contains: "type of measure"},
			{Field: FieldStatus, Contains: "present status of measure"},
			{Field: FieldDescription, Contains: "description of measure"},
			{Field: FieldRevocationDate, Contains: "date of revocation"},
		},
		Required: []Field{FieldCountry},
	}
}

// CCyB is the countercyclical buffer dialect. The source publishes it as the
// first sheet of its own workbook.
func CCyB() Dialect {
	return Dialect{
		Name:         "ccyb",
		ScanRows:     20,
		HeaderTokens: []string{"country"},
		Rules: []Rule{
			{Field: FieldCountry, Contains: "country"},
			{Field: FieldEffectiveDate, Contains: "application"},
			{Field: FieldDecisionDate, Contains: "decision on"},
			{Field: FieldRateCell, Contains: "ccyb rate"},
			{Field: FieldRateCell, Contains: "rate", Excludes: []string{"guide"}},
			{Field: FieldJustification, Contains: "justification", Excludes: []string{"exceptional"}},
			{Field: FieldStatus, Contains: "type of setting"},
			{Field: FieldCreditGap, Contains: "gap", Excludes: []string{"additional"}},
		},
		Required:             []Field{FieldCountry, FieldRateCell},
		DecisionDateFallback: true,
	}
}

// Table is a sheet re-read against its detected header row, with canonical
// field names resolved to column indexes.
type Table struct {
	sheet     tabular.Sheet
	headerRow int
	columns   map[Field]int
}

// Map locates the header row and resolves the dialect's canonical fields.
// Missing required columns yield ErrUnusable.
func Map(sheet tabular.Sheet, dialect Dialect) (*Table, error) {
	headerRow := findHeaderRow(sheet, dialect.ScanRows, dialect.HeaderTokens)

	header := make([]string, 0, sheet.Width())
	for col := 0; col < sheet.Width(); col++ {
		header = append(header, cleanHeader(sheet.Cell(headerRow, col)))
	}

	columns := make(map[Field]int)
	for col, label := range header {
		lowered := strings.ToLower(strings.TrimSpace(label))
		if lowered == "" {
			continue
		}
		for _, rule := range dialect.Rules {
			if !rule.matches(lowered) {
				continue
			}
			// Later columns overwrite earlier ones for the same field,
			// matching how the source tables repeat labels.
			columns[rule.Field] = col
			break
		}
	}

	if _, ok := columns[FieldEffectiveDate]; !ok {
		if dialect.DecisionDateFallback {
			if col, ok := columns[FieldDecisionDate]; ok {
				columns[FieldEffectiveDate] = col
			}
		}
		if _, ok := columns[FieldEffectiveDate]; !ok && dialect.DateFallbackScan {
			for col, label := range header {
				if strings.Contains(strings.ToLower(label), "date") {
					columns[FieldEffectiveDate] = col
					break
				}
			}
		}
	}

	for _, required := range dialect.Required {
		if _, ok := columns[required]; !ok {
			return nil, ErrUnusable
		}
	}

	return &Table{sheet: sheet, headerRow: headerRow, columns: columns}, nil
}

func (r Rule) matches(label string) bool {
	if !strings.Contains(label, r.Contains) {
		return false
	}
	for _, excluded := range r.Excludes {
		if strings.Contains(label, excluded) {
			return false
		}
	}
	return true
}

// NumRows reports the number of data rows below the header.
func (t *Table) NumRows() int {
	n := len(t.sheet.Rows) - t.headerRow - 1
	if n < 0 {
		return 0
	}
	return n
}

// Get returns the trimmed cell of data row i for a canonical field, or ""
// when the field is unmapped or the row is ragged.
func (t *Table) Get(i int, field Field) string {
	col, ok := t.columns[field]
	if !ok {
		return ""
	}
	return t.sheet.Cell(t.headerRow+1+i, col)
}

// Has reports whether the dialect resolved the field to a source column.
func (t *Table) Has(field Field) bool {
	_, ok := t.columns[field]
	return ok
}

// HeaderRow reports the detected header row index, mostly for logging.
func (t *Table) HeaderRow() int {
	return t.headerRow
}

func findHeaderRow(sheet tabular.Sheet, scanRows int, tokens []string) int {
	limit := scanRows
	if limit > len(sheet.Rows) {
		limit = len(sheet.Rows)
	}
	for i := 0; i < limit; i++ {
		joined := strings.ToLower(strings.Join(sheet.Rows[i], " "))
		for _, token := range tokens {
			if strings.Contains(joined, strings.ToLower(token)) {
				return i
			}
		}
	}
	return 0
}

func cleanHeader(label string) string {
	label = strings.ReplaceAll(label, "\n", " ")
	for strings.Contains(label, "  ") {
		label = strings.ReplaceAll(label, "  ", " ")
	}
	return strings.TrimSpace(label)
}
