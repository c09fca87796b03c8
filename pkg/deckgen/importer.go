package deckgen

import (
	"fmt"
	"strconv"
	"strings"
)

// notAvailable fills grid positions that the source selection could not
// cover.
const notAvailable = "N/A"

// ImportGrid is the rectangular result of one import block. Every position
// holds a cell Entry, so imported and literal table cells are handled
// uniformly downstream.
type ImportGrid struct {
	rows [][]*Entry
}

// NumRows returns the grid height.
func (g *ImportGrid) NumRows() int { return len(g.rows) }

// NumCols returns the grid width.
func (g *ImportGrid) NumCols() int {
	if len(g.rows) == 0 {
		return 0
	}
	return len(g.rows[0])
}

// Cell returns the Entry at (row, col), 1-based, or nil outside the grid.
func (g *ImportGrid) Cell(row, col int) *Entry {
	if row < 1 || row > g.NumRows() || col < 1 || col > g.NumCols() {
		return nil
	}
	return g.rows[row-1][col-1]
}

// Strings flattens the grid back to raw cell text.
func (g *ImportGrid) Strings() [][]string {
	out := make([][]string, len(g.rows))
	for i, row := range g.rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = cell.Text()
		}
	}
	return out
}

// JoinedString renders the grid as a single string: cells joined by ", ",
// rows separated by newlines. Text placeholders import in this form.
func (g *ImportGrid) JoinedString() string {
	lines := make([]string, len(g.rows))
	for i, row := range g.rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cell.Text()
		}
		lines[i] = strings.Join(cells, ", ")
	}
	return strings.Join(lines, "\n")
}

// importSpec is one parsed import block.
type importSpec struct {
	path  string
	sheet string

	rows []int // nil means full extent
	cols []int

	rowFilters []*KeyFilter
	colFilters []*KeyFilter

	numRows int // 0 means no explicit override
	numCols int

	file string
	line int
}

// parseImportSpec reads an import element into an importSpec. The source
// path is the element's text; selection options are attributes or child
// elements.
func parseImportSpec(entry *Entry, file string) (*importSpec, error) {
	spec := &importSpec{file: file, line: entry.Line}

	for _, child := range entry.ChildEntries("") {
		switch child.Tag {
		case "row":
			indices, err := ParseRangeSpec(child.Text())
			if err != nil {
				return nil, err
			}
			spec.rows = indices
		case "col":
			indices, err := ParseRangeSpec(child.Text())
			if err != nil {
				return nil, err
			}
			spec.cols = indices
		case "row_key":
			f, err := parseKeyFilter(child, "row key", file)
			if err != nil {
				return nil, err
			}
			spec.rowFilters = append(spec.rowFilters, f)
		case "col_key":
			f, err := parseKeyFilter(child, "column key", file)
			if err != nil {
				return nil, err
			}
			spec.colFilters = append(spec.colFilters, f)
		case "num_row":
			n, err := parseImportCount(child.Text(), "num_row")
			if err != nil {
				return nil, err
			}
			spec.numRows = n
		case "num_col":
			n, err := parseImportCount(child.Text(), "num_col")
			if err != nil {
				return nil, err
			}
			spec.numCols = n
		case "sheet":
			spec.sheet = child.Text()
		default:
			return nil, NewStructureError(
				fmt.Sprintf("unknown import option %q", child.Tag), file, child.Line)
		}
	}

	spec.path = strings.TrimSpace(entry.Text())
	if spec.path == "" {
		return nil, NewStructureError("import source path missing", file, entry.Line)
	}
	return spec, nil
}

// parseKeyFilter reads one row_key/col_key entry. Attribute form gives a
// literal full-extent filter; element form may add regex="true" and
// scan="<range-spec>" options.
func parseKeyFilter(entry *Entry, dimension, file string) (*KeyFilter, error) {
	regex := false
	if v := entry.ChildTexts("regex"); len(v) > 0 {
		regex = v[len(v)-1] == "true"
	}
	var scan []int
	if v := entry.ChildTexts("scan"); len(v) > 0 {
		indices, err := ParseRangeSpec(v[len(v)-1])
		if err != nil {
			return nil, err
		}
		scan = indices
	}
	pattern := entry.Text()
	f, err := NewKeyFilter(pattern, regex, scan)
	if err != nil {
		return nil, NewKeyFilterError(dimension, pattern, fmt.Sprintf("invalid pattern: %v", err), file, entry.Line)
	}
	return f, nil
}

func parseImportCount(s, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: want a positive integer", name, s)
	}
	return n, nil
}

// runImport executes one import block against a loaded sheet.
//
// Candidate rows and columns default to the sheet's full extent unless the
// block gave explicit range specs. Key filters then narrow each dimension
// independently. Target counts follow the override > filtered > default
// chain; naturalDefault switches the no-override default from a single cell
// to the filtered extent, which is how text placeholders consume imports.
// The output grid is built at exactly target size, padding uncovered
// positions with the not-available sentinel. Addressing a filtered index
// beyond the sheet's actual bounds is a hard error; a mere mismatch between
// the filtered extent and the target size records a diagnostic against the
// source file (promoted to an error in strict mode).
func runImport(spec *importSpec, sheet *SheetData, diags *Diagnostics, strict, naturalDefault bool) (*ImportGrid, error) {
	rows := spec.rows
	if rows == nil {
		rows = fullExtent(sheet.NumRows())
	}
	cols := spec.cols
	if cols == nil {
		cols = fullExtent(sheet.NumCols())
	}

	for _, f := range spec.rowFilters {
		rows = f.KeepRows(sheet, rows)
		if len(rows) == 0 {
			return nil, NewKeyFilterError("row key", f.Pattern, "no rows match", spec.file, spec.line)
		}
	}
	for _, f := range spec.colFilters {
		cols = f.KeepCols(sheet, cols)
		if len(cols) == 0 {
			return nil, NewKeyFilterError("column key", f.Pattern, "no columns match", spec.file, spec.line)
		}
	}

	filtered := len(spec.rowFilters)+len(spec.colFilters) > 0
	targetRows := targetCount(spec.numRows, len(rows), filtered || naturalDefault)
	targetCols := targetCount(spec.numCols, len(cols), filtered || naturalDefault)

	grid := &ImportGrid{rows: make([][]*Entry, targetRows)}
	for i := 0; i < targetRows; i++ {
		grid.rows[i] = make([]*Entry, targetCols)
		for j := 0; j < targetCols; j++ {
			if i >= len(rows) || j >= len(cols) {
				grid.rows[i][j] = newCellEntry(notAvailable)
				continue
			}
			r, c := rows[i], cols[j]
			cell, ok := sheet.Cell(r, c)
			if !ok {
				return nil, NewBoundsError(sheet.File, r, c, sheet.NumRows(), sheet.NumCols())
			}
			grid.rows[i][j] = newCellEntry(cell)
		}
	}

	if err := noteSizeMismatch(spec, sheet.File, "row", len(rows), targetRows, diags, strict); err != nil {
		return nil, err
	}
	if err := noteSizeMismatch(spec, sheet.File, "column", len(cols), targetCols, diags, strict); err != nil {
		return nil, err
	}
	GetLogger().DebugImport(spec.path, targetRows, targetCols)
	return grid, nil
}

// targetCount resolves one dimension's target size: an explicit override
// wins, then the filtered candidate count when filters (or the natural
// default) apply, then a single cell. Never below 1.
func targetCount(override, filtered int, useFiltered bool) int {
	switch {
	case override > 0:
		return override
	case useFiltered:
		if filtered < 1 {
			return 1
		}
		return filtered
	default:
		return 1
	}
}

// noteSizeMismatch records the soft diagnostic for a dimension whose
// filtered extent differs from the target size.
func noteSizeMismatch(spec *importSpec, sourceFile, dim string, natural, target int, diags *Diagnostics, strict bool) error {
	if natural == target {
		return nil
	}
	msg := fmt.Sprintf("import at %s:%d: %s count %d does not match requested %d",
		spec.file, spec.line, dim, natural, target)
	if strict {
		return fmt.Errorf("size mismatch in '%s': %s", sourceFile, msg)
	}
	if diags != nil {
		diags.Add(sourceFile, msg)
	}
	return nil
}

// newCellEntry wraps raw cell text as a cell Entry.
func newCellEntry(content string) *Entry {
	e := &Entry{Tag: "cell"}
	e.AddValue(content)
	return e
}
