package deckgen

import "fmt"

// TableContent is the materialized table for one placeholder: a rectangular
// view over a sparse grid. Gaps stay empty and report ok=false, so renderers
// can skip them instead of drawing empty cells.
type TableContent struct {
	grid [][]*Entry
	cols int
}

// Rows returns the number of table rows.
func (t *TableContent) Rows() int { return len(t.grid) }

// Cols returns the number of table columns (the widest assembled row).
func (t *TableContent) Cols() int { return t.cols }

// Cell returns the text at (row, col), 1-based. The second return is false
// for gaps and positions outside the grid.
func (t *TableContent) Cell(row, col int) (string, bool) {
	if row < 1 || row > len(t.grid) {
		return "", false
	}
	r := t.grid[row-1]
	if col < 1 || col > len(r) || r[col-1] == nil {
		return "", false
	}
	return r[col-1].Text(), true
}

// importResolver executes one parsed import block. The deck builder wires
// this to sheet loading so the assembler stays independent of file access.
type importResolver func(spec *importSpec) (*ImportGrid, error)

// assembleTable merges the literal rows and imports of a table placeholder
// into a TableContent.
//
// Row-level children are row elements and import blocks: a literal row
// occupies the current row cursor, a row-level import injects each grid row
// from column 0 and advances the cursor past them. Within a row, literal
// cells and cell-level imports share a first-fit column cursor: a position
// beyond the row's length appends, an empty slot left by an earlier
// multi-row import is filled, an occupied slot is skipped. A cell-level
// import places its first grid row at the cursor and spills any further
// grid rows into the rows below at the same columns.
func assembleTable(ph *Entry, file string, resolve importResolver) (*TableContent, error) {
	a := &tableAssembler{file: file, resolve: resolve}

	for _, n := range ph.Children() {
		child, ok := n.(*Entry)
		if !ok {
			return nil, NewStructureError("table placeholder cannot contain loose text", file, ph.Line)
		}
		if child.IsAttribute || child.Tag == "type" {
			continue
		}
		switch child.Tag {
		case "row":
			if err := a.addRow(child); err != nil {
				return nil, err
			}
		case "import":
			if err := a.addImportRows(child); err != nil {
				return nil, err
			}
		default:
			return nil, NewStructureError(
				fmt.Sprintf("unexpected %q element in table placeholder", child.Tag), file, child.Line)
		}
	}

	return a.content(), nil
}

// tableAssembler accumulates the sparse grid behind assembleTable.
type tableAssembler struct {
	file    string
	resolve importResolver

	grid      [][]*Entry
	rowCursor int
}

// addRow assembles one literal row element at the current row cursor.
func (a *tableAssembler) addRow(row *Entry) error {
	r := a.rowCursor
	a.ensureRow(r)
	cursor := 0

	for _, n := range row.Children() {
		child, ok := n.(*Entry)
		if !ok {
			return NewStructureError("row cannot contain loose text outside cells", a.file, row.Line)
		}
		if child.IsAttribute {
			continue
		}
		switch child.Tag {
		case "cell":
			cursor = a.placeCell(r, cursor, child) + 1
		case "import":
			next, err := a.placeImportCells(r, cursor, child)
			if err != nil {
				return err
			}
			cursor = next
		default:
			return NewStructureError(
				fmt.Sprintf("unexpected %q element in table row", child.Tag), a.file, child.Line)
		}
	}

	a.rowCursor = r + 1
	return nil
}

// addImportRows runs a row-level import and injects each grid row from
// column 0, advancing the row cursor per injected row.
func (a *tableAssembler) addImportRows(imp *Entry) error {
	grid, err := a.runImportBlock(imp)
	if err != nil {
		return err
	}
	for i := 1; i <= grid.NumRows(); i++ {
		r := a.rowCursor
		a.ensureRow(r)
		for j := 1; j <= grid.NumCols(); j++ {
			a.setCell(r, j-1, grid.Cell(i, j))
		}
		a.rowCursor = r + 1
	}
	return nil
}

// placeImportCells runs a cell-level import inside a row. The first grid row
// interleaves with literal cells through the shared column cursor; further
// grid rows spill into the rows below at the columns the first row landed
// on. Returns the advanced column cursor.
func (a *tableAssembler) placeImportCells(r, cursor int, imp *Entry) (int, error) {
	grid, err := a.runImportBlock(imp)
	if err != nil {
		return cursor, err
	}

	cols := make([]int, grid.NumCols())
	for j := 1; j <= grid.NumCols(); j++ {
		c := a.placeCell(r, cursor, grid.Cell(1, j))
		cols[j-1] = c
		cursor = c + 1
	}
	for i := 2; i <= grid.NumRows(); i++ {
		a.ensureRow(r + i - 1)
		for j := 1; j <= grid.NumCols(); j++ {
			a.setCell(r+i-1, cols[j-1], grid.Cell(i, j))
		}
	}
	return cursor, nil
}

func (a *tableAssembler) runImportBlock(imp *Entry) (*ImportGrid, error) {
	spec, err := parseImportSpec(imp, a.file)
	if err != nil {
		return nil, err
	}
	return a.resolve(spec)
}

// placeCell stores a cell by first-fit search from the column cursor:
// append when the cursor is past the row's length, fill the first empty
// slot, otherwise keep advancing. Returns the column used.
func (a *tableAssembler) placeCell(r, cursor int, cell *Entry) int {
	row := a.grid[r]
	for c := cursor; c < len(row); c++ {
		if row[c] == nil {
			row[c] = cell
			return c
		}
	}
	a.grid[r] = append(row, cell)
	return len(a.grid[r]) - 1
}

// setCell stores a cell at an absolute column, extending the row with gaps
// as needed. An occupied slot is overwritten.
func (a *tableAssembler) setCell(r, c int, cell *Entry) {
	for len(a.grid[r]) <= c {
		a.grid[r] = append(a.grid[r], nil)
	}
	if a.grid[r][c] != nil {
		Debug("table cell (%d,%d) overwritten by later import", r+1, c+1)
	}
	a.grid[r][c] = cell
}

// ensureRow extends the grid down to row index r.
func (a *tableAssembler) ensureRow(r int) {
	for len(a.grid) <= r {
		a.grid = append(a.grid, nil)
	}
}

// content finalizes the grid into a TableContent.
func (a *tableAssembler) content() *TableContent {
	cols := 0
	for _, row := range a.grid {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return &TableContent{grid: a.grid, cols: cols}
}
