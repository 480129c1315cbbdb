// Package tabular is the boundary to the spreadsheet-parsing collaborator.
// The engine only ever sees a Sheet: named rows of string cells with no
// guaranteed header position. Workbooks rendered to CSV (one file per sheet)
// are the offline interchange format.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrNoSheet = errors.New("tabular: no matching sheet")

type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is an ordered collection of named sheets.
type Workbook struct {
	Sheets []Sheet
}

// Select returns the first sheet whose name contains any of the given
// substrings (case-insensitive). An empty hint list selects the first sheet.
func (w *Workbook) Select(hints ...string) (Sheet, error) {
	if len(w.Sheets) == 0 {
		return Sheet{}, ErrNoSheet
	}
	if len(hints) == 0 {
		return w.Sheets[0], nil
	}
	for _, sheet := range w.Sheets {
		name := strings.ToLower(sheet.Name)
		for _, hint := range hints {
			if hint == "" {
				continue
			}
			if strings.Contains(name, strings.ToLower(hint)) {
				return sheet, nil
			}
		}
	}
	return Sheet{}, ErrNoSheet
}

// Cell returns the trimmed cell at (row, col), or "" when out of range.
// Ragged rows are common in rendered sheets and must not panic.
func (s Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	cells := s.Rows[row]
	if col < 0 || col >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col])
}

// Width returns the widest row length.
func (s Sheet) Width() int {
	width := 0
	for _, row := range s.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// LoadCSV reads a single CSV file as one sheet named after the file base name.
func LoadCSV(path string) (Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return Sheet{}, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return Sheet{}, fmt.Errorf("tabular: read %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Sheet{Name: name, Rows: rows}, nil
}

// LoadWorkbookDir builds a workbook from every .csv file in dir, sheet names
// taken from file base names, ordered lexically for a stable sheet order.
func LoadWorkbookDir(dir string) (*Workbook, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("tabular: no csv sheets in %s", dir)
	}

	workbook := &Workbook{}
	for _, name := range names {
		sheet, err := LoadCSV(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		workbook.Sheets = append(workbook.Sheets, sheet)
	}
	return workbook, nil
}
