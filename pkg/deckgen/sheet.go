package deckgen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetData holds one sheet of a tabular source as raw string cells.
// Indices are 1-based throughout. Rows may be ragged in the source; cells
// beyond a row's own length but within the sheet extent read as empty.
type SheetData struct {
	// File is the source path the sheet was read from, used in errors and
	// diagnostics.
	File string

	cells [][]string
	cols  int
}

// NewSheetData wraps a cell grid. The column extent is the widest row.
func NewSheetData(file string, cells [][]string) *SheetData {
	cols := 0
	for _, row := range cells {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return &SheetData{File: file, cells: cells, cols: cols}
}

// NumRows returns the row extent of the sheet.
func (s *SheetData) NumRows() int { return len(s.cells) }

// NumCols returns the column extent of the sheet (its widest row).
func (s *SheetData) NumCols() int { return s.cols }

// Cell returns the cell at (row, col), 1-based. The second return is false
// when the position lies outside the sheet extent.
func (s *SheetData) Cell(row, col int) (string, bool) {
	if row < 1 || row > s.NumRows() || col < 1 || col > s.NumCols() {
		return "", false
	}
	r := s.cells[row-1]
	if col > len(r) {
		return "", true
	}
	return r[col-1], true
}

// SheetOpener loads one sheet of a tabular source file. The sheet name
// selects the worksheet for XLSX sources and is ignored for CSV.
type SheetOpener func(path, sheet string) (*SheetData, error)

// OpenSheet reads a tabular source with the adapter for its file extension.
// Supported extensions are .csv and .xlsx (case-insensitive); anything else
// is an error.
func OpenSheet(path, sheet string) (*SheetData, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return openCSVSheet(path)
	case ".xlsx":
		return openXLSXSheet(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported import source %q: unknown extension %q", path, filepath.Ext(path))
	}
}

// openCSVSheet reads a whole CSV file as one sheet. Records may have varying
// field counts.
func openCSVSheet(path string) (*SheetData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return NewSheetData(path, records), nil
}

// openXLSXSheet reads one worksheet of an XLSX workbook. An empty sheet name
// selects the first worksheet.
func openXLSXSheet(path, sheet string) (*SheetData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import source: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
	}
	return NewSheetData(path, rows), nil
}
