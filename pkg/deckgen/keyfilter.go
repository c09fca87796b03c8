package deckgen

import (
	"regexp"
	"strings"
)

// KeyFilter narrows one dimension of an import selection by scanning cell
// contents in the opposite dimension: a row filter keeps the candidate rows
// with a matching cell in one of the scanned columns, a column filter keeps
// the candidate columns with a matching cell in one of the scanned rows.
type KeyFilter struct {
	// Pattern is a literal substring, or a regular expression when Regex is
	// set.
	Pattern string
	Regex   bool

	// Scan restricts which opposite-dimension indices are examined. Nil
	// scans the full extent. Indices beyond the sheet simply never match.
	Scan []int

	re *regexp.Regexp
}

// NewKeyFilter builds a filter, compiling the pattern when regex is set.
func NewKeyFilter(pattern string, regex bool, scan []int) (*KeyFilter, error) {
	f := &KeyFilter{Pattern: pattern, Regex: regex, Scan: scan}
	if regex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		f.re = re
	}
	return f, nil
}

// matches reports whether one cell satisfies the filter.
func (f *KeyFilter) matches(cell string) bool {
	if f.Regex {
		return f.re.MatchString(cell)
	}
	return strings.Contains(cell, f.Pattern)
}

// KeepRows returns the candidate rows that contain a match in a scanned
// column. The scan short-circuits on the first matching cell per row.
func (f *KeyFilter) KeepRows(sheet *SheetData, rows []int) []int {
	scan := f.Scan
	if scan == nil {
		scan = fullExtent(sheet.NumCols())
	}
	var kept []int
	for _, r := range rows {
		for _, c := range scan {
			if cell, ok := sheet.Cell(r, c); ok && f.matches(cell) {
				kept = append(kept, r)
				break
			}
		}
	}
	return kept
}

// KeepCols returns the candidate columns that contain a match in a scanned
// row.
func (f *KeyFilter) KeepCols(sheet *SheetData, cols []int) []int {
	scan := f.Scan
	if scan == nil {
		scan = fullExtent(sheet.NumRows())
	}
	var kept []int
	for _, c := range cols {
		for _, r := range scan {
			if cell, ok := sheet.Cell(r, c); ok && f.matches(cell) {
				kept = append(kept, c)
				break
			}
		}
	}
	return kept
}

// fullExtent lists 1..n.
func fullExtent(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
