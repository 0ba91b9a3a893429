package xltrack

import (
	"fmt"
	"strings"
)

// Sheet is a handle on one worksheet. It is not safe for concurrent use;
// callers serialize access to the workbook.
//
// Construction scans the sheet for binding tokens once. WriteBindings applies
// that scan; structural edits made afterwards are not rescanned.
type Sheet struct {
	report   *Report
	grid     Grid
	name     string
	opts     *Options
	store    any
	bindings *BindingSet
}

func newSheet(r *Report, name string) (*Sheet, error) {
	s := &Sheet{
		report: r,
		grid:   r.grid,
		name:   name,
		opts:   r.opts,
	}
	bs, err := ScanBindings(r.grid, name)
	if err != nil {
		return nil, fmt.Errorf("scan bindings on sheet %q: %w", name, err)
	}
	s.bindings = bs
	return s, nil
}

// Name returns the worksheet name.
func (s *Sheet) Name() string { return s.name }

// Grid returns the document store the sheet lives in.
func (s *Sheet) Grid() Grid { return s.grid }

// PrintArea returns the sheet's print area rectangles, or ErrNoPrintArea.
func (s *Sheet) PrintArea() ([]Rect, error) {
	areas, err := s.grid.PrintArea(s.name)
	if err != nil {
		return nil, fmt.Errorf("read print area of sheet %q: %w", s.name, err)
	}
	if len(areas) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", s.name, ErrNoPrintArea)
	}
	return areas, nil
}

// WithStore attaches the data object bindings resolve against.
func (s *Sheet) WithStore(store any) *Sheet {
	s.store = store
	return s
}

// Store returns the attached data object.
func (s *Sheet) Store() any { return s.store }

// Bindings returns the bindings found when the handle was created.
func (s *Sheet) Bindings() *BindingSet { return s.bindings }

// WriteBindings resolves every binding against the store and writes the results.
func (s *Sheet) WriteBindings() error {
	return s.bindings.Write(s)
}

// Row returns a handle on row n.
func (s *Sheet) Row(n int) Track {
	return Track{sheet: s, kind: KindRow, rect: Rect{StartRow: n, EndRow: n}}
}

// Rows returns a handle on rows start..end inclusive.
func (s *Sheet) Rows(start, end int) Track {
	if start > end {
		start, end = end, start
	}
	return Track{sheet: s, kind: KindRows, rect: Rect{StartRow: start, EndRow: end}}
}

// Cell returns a handle on a single cell.
func (s *Sheet) Cell(row, col int) Track {
	return Track{sheet: s, kind: KindCell, rect: NewRect(NewCellRef(row, col), NewCellRef(row, col))}
}

// CellInColumn returns a handle on the cell in row at the lettered column.
func (s *Sheet) CellInColumn(row int, column string) (Track, error) {
	col, err := ColumnNumber(column)
	if err != nil {
		return Track{}, err
	}
	return s.Cell(row, col), nil
}

// CellAt returns a handle on the cell at an address like "B7".
func (s *Sheet) CellAt(addr string) (Track, error) {
	ref, err := ParseCellRef(addr)
	if err != nil {
		return Track{}, err
	}
	return s.Cell(ref.Row, ref.Col), nil
}

// Range returns a handle on the rectangle between two addresses.
func (s *Sheet) Range(startAddr, endAddr string) (Track, error) {
	r, err := ParseRect(strings.TrimSpace(startAddr) + ":" + strings.TrimSpace(endAddr))
	if err != nil {
		return Track{}, err
	}
	return s.RangeRect(r), nil
}

// RangeRect returns a handle on rect.
func (s *Sheet) RangeRect(rect Rect) Track {
	return Track{sheet: s, kind: KindRange, rect: NewRect(rect.Start(), rect.End())}
}
