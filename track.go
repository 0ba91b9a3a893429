package xltrack

import "fmt"

// Kind is the shape of region a Track addresses.
type Kind int

const (
	KindRow   Kind = iota // one whole row
	KindRows              // a contiguous block of whole rows
	KindRange             // a rectangle of cells
	KindCell              // a single cell
)

func (k Kind) String() string {
	switch k {
	case KindRow:
		return "row"
	case KindRows:
		return "rows"
	case KindRange:
		return "range"
	case KindCell:
		return "cell"
	default:
		return "unknown"
	}
}

// Track is a handle on a region of a sheet. Row handles leave the column
// bounds of their rectangle at zero.
type Track struct {
	sheet *Sheet
	kind  Kind
	rect  Rect
}

// Kind returns the region shape.
func (t Track) Kind() Kind { return t.kind }

// Rect returns the addressed region.
func (t Track) Rect() Rect { return t.rect }

// Sheet returns the owning sheet handle.
func (t Track) Sheet() *Sheet { return t.sheet }

// RowNumber returns the first row of the region.
func (t Track) RowNumber() int { return t.rect.StartRow }

// ColumnNumber returns the first column of the region (0 for row handles).
func (t Track) ColumnNumber() int { return t.rect.StartCol }

// RowCount returns the number of rows spanned.
func (t Track) RowCount() int { return t.rect.Rows() }

// Ref returns the top-left cell.
func (t Track) Ref() CellRef { return t.rect.Start() }

func (t Track) String() string {
	switch t.kind {
	case KindRow:
		return fmt.Sprintf("%s!row %d", t.sheet.name, t.rect.StartRow)
	case KindRows:
		return fmt.Sprintf("%s!rows %d:%d", t.sheet.name, t.rect.StartRow, t.rect.EndRow)
	case KindCell:
		return t.sheet.name + "!" + t.rect.Start().String()
	}
	return t.sheet.name + "!" + t.rect.String()
}

// RowAt returns the i-th row (1-based) of a rows handle.
func (t Track) RowAt(i int) (Track, error) {
	if t.kind != KindRows && t.kind != KindRow {
		return Track{}, fmt.Errorf("RowAt on %s handle", t.kind)
	}
	if i < 1 || i > t.RowCount() {
		return Track{}, fmt.Errorf("row number %d with rows count %d: %w", i, t.RowCount(), ErrRowOutOfRange)
	}
	return t.sheet.Row(t.rect.StartRow + i - 1), nil
}

// Row returns the row containing the handle's first cell.
func (t Track) Row() Track {
	return t.sheet.Row(t.rect.StartRow)
}

// Column returns the cell at col on a row handle.
func (t Track) Column(col int) Track {
	return t.sheet.Cell(t.rect.StartRow, col)
}

// ColumnByName returns the cell at the lettered column on a row handle.
func (t Track) ColumnByName(name string) (Track, error) {
	return t.sheet.CellInColumn(t.rect.StartRow, name)
}

// Move returns a handle of the same shape shifted by the given offsets.
// Row offsets only apply to row and rows handles.
func (t Track) Move(dRow, dCol int) Track {
	moved := t
	if t.kind == KindRow || t.kind == KindRows {
		dCol = 0
	}
	moved.rect = t.rect.Translate(dRow, dCol)
	return moved
}

// CellFromStart returns the cell offset from the region's top-left corner.
func (t Track) CellFromStart(dRow, dCol int) Track {
	ref := t.rect.Start().Move(dRow, dCol)
	return t.sheet.Cell(ref.Row, ref.Col)
}

// CellFromEnd returns the cell offset from the region's bottom-right corner.
func (t Track) CellFromEnd(dRow, dCol int) Track {
	ref := t.rect.End().Move(dRow, dCol)
	return t.sheet.Cell(ref.Row, ref.Col)
}

// Value returns the typed value of the handle's first cell.
func (t Track) Value() (any, error) {
	cd, err := t.sheet.grid.GetCell(t.sheet.name, t.cellRef())
	if err != nil {
		return nil, err
	}
	return cd.Value, nil
}

// SetValue writes value into the handle's first cell, keeping its style.
func (t Track) SetValue(value any) error {
	return t.sheet.grid.SetCellValue(t.sheet.name, t.cellRef(), value)
}

// WidthPixels returns the pixel width of the handle's first column.
func (t Track) WidthPixels() (float64, error) {
	w, err := t.sheet.grid.ColumnWidth(t.sheet.name, t.cellRef().Col)
	if err != nil {
		return 0, err
	}
	return WidthToPixels(w), nil
}

// HeightPixels returns the pixel height of the handle's first row.
func (t Track) HeightPixels() (float64, error) {
	h, err := t.sheet.grid.RowHeight(t.sheet.name, t.rect.StartRow)
	if err != nil {
		return 0, err
	}
	return HeightToPixels(h), nil
}

// CopyTo copies a row or rows handle according to opt and returns the target handle.
func (t Track) CopyTo(opt CopyRowOption) (Track, error) {
	switch t.kind {
	case KindRow:
		return t.sheet.CopyRow(t.rect.StartRow, opt)
	case KindRows:
		return t.sheet.CopyRows(t.rect.StartRow, t.rect.EndRow, opt)
	}
	return Track{}, fmt.Errorf("CopyTo on %s handle: use CopyRangeTo", t.kind)
}

// CopyRangeTo copies a range or cell handle so its top-left lands on dest.
func (t Track) CopyRangeTo(dest CellRef) (Track, error) {
	if t.kind != KindRange && t.kind != KindCell {
		return Track{}, fmt.Errorf("CopyRangeTo on %s handle: use CopyTo", t.kind)
	}
	return t.sheet.CopyRange(t.rect, dest)
}

// SetImage places an image in the handle's first cell.
func (t Track) SetImage(data []byte) (Placement, error) {
	return t.sheet.SetImage(t.cellRef(), data)
}

// Delete removes the rows of a row or rows handle.
func (t Track) Delete() error {
	if t.kind != KindRow && t.kind != KindRows {
		return fmt.Errorf("Delete on %s handle", t.kind)
	}
	return t.sheet.grid.RemoveRows(t.sheet.name, t.rect.StartRow, t.RowCount())
}

// cellRef returns the first cell, treating row handles as starting in column 1.
func (t Track) cellRef() CellRef {
	ref := t.rect.Start()
	if ref.Col == 0 {
		ref.Col = 1
	}
	return ref
}
