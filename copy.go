package xltrack

import (
	"fmt"

	"go.alis.build/alog"
)

// PasteType selects how copied rows are placed.
type PasteType int

const (
	PasteOverwrite    PasteType = iota // replace cells at the target, no structural change
	PasteInsertBefore                  // insert new rows above the target row
	PasteInsertAfter                   // insert new rows below the target row
)

func (p PasteType) String() string {
	switch p {
	case PasteOverwrite:
		return "overwrite"
	case PasteInsertBefore:
		return "insert-before"
	case PasteInsertAfter:
		return "insert-after"
	default:
		return "unknown"
	}
}

// PositionType selects how CopyRowOption.TargetRow is interpreted.
type PositionType int

const (
	PositionAssign PositionType = iota // TargetRow is an absolute row number
	PositionMove                       // TargetRow is an offset from the source
)

// CopyRowOption configures CopyRow and CopyRows.
type CopyRowOption struct {
	PasteType    PasteType
	PositionType PositionType
	TargetRow    int
}

// rowSnapshot is the in-memory copy of one source row taken before any write.
type rowSnapshot struct {
	row      int
	height   float64
	firstCol int
	cells    []CellData // indexed from firstCol
}

// CopyRow copies row src across the print-area column span and re-creates
// the merges that lie within it. It returns a handle on the target row.
func (s *Sheet) CopyRow(src int, opt CopyRowOption) (Track, error) {
	if src < 1 {
		return Track{}, fmt.Errorf("copy row %d: invalid source row", src)
	}
	first, last, err := s.printColumns()
	if err != nil {
		return Track{}, err
	}

	anchor := opt.TargetRow
	if opt.PositionType == PositionMove {
		anchor = src + opt.TargetRow
	}
	if anchor < 1 {
		return Track{}, fmt.Errorf("copy row %d: target row %d is before the first row", src, anchor)
	}

	snap, err := s.snapshotRow(src, first, last)
	if err != nil {
		return Track{}, err
	}
	target, src, err := s.placeRows(anchor, 1, opt.PasteType, src)
	if err != nil {
		return Track{}, err
	}
	if err := s.writeRow(snap, target, 0); err != nil {
		return Track{}, err
	}
	if _, err := s.CopyMerge(CopyMergeOption{StartRow: src, EndRow: src, TargetRow: target}); err != nil {
		return Track{}, err
	}

	alog.Debugf(s.opts.logCtx, "sheet %q: copied row %d to %d (%s)", s.name, src, target, opt.PasteType)
	return s.Row(target), nil
}

// CopyRows copies rows start..end to a block of the same height. With
// PositionMove a negative offset is taken from start and a non-negative one
// from end. Merges are remapped once for the whole block.
func (s *Sheet) CopyRows(start, end int, opt CopyRowOption) (Track, error) {
	if start > end {
		start, end = end, start
	}
	if start < 1 {
		return Track{}, fmt.Errorf("copy rows %d:%d: invalid source rows", start, end)
	}
	first, last, err := s.printColumns()
	if err != nil {
		return Track{}, err
	}
	n := end - start + 1

	anchor := opt.TargetRow
	if opt.PositionType == PositionMove {
		if opt.TargetRow < 0 {
			anchor = start + opt.TargetRow
		} else {
			anchor = end + opt.TargetRow
		}
	}
	if anchor < 1 {
		return Track{}, fmt.Errorf("copy rows %d:%d: target row %d is before the first row", start, end, anchor)
	}

	snaps := make([]rowSnapshot, 0, n)
	for row := start; row <= end; row++ {
		snap, err := s.snapshotRow(row, first, last)
		if err != nil {
			return Track{}, err
		}
		snaps = append(snaps, snap)
	}

	target, start, err := s.placeRows(anchor, n, opt.PasteType, start)
	if err != nil {
		return Track{}, err
	}
	for i, snap := range snaps {
		if err := s.writeRow(snap, target+i, 0); err != nil {
			return Track{}, err
		}
	}
	if _, err := s.CopyMerge(CopyMergeOption{StartRow: start, EndRow: start + n - 1, TargetRow: target}); err != nil {
		return Track{}, err
	}

	alog.Debugf(s.opts.logCtx, "sheet %q: copied rows %d:%d to %d (%s)", s.name, start, start+n-1, target, opt.PasteType)
	return s.Rows(target, target+n-1), nil
}

// CopyRange copies the cells of src so that its top-left lands on dest,
// then re-creates the merges contained in src. Rows grow downward from dest.
func (s *Sheet) CopyRange(src Rect, dest CellRef) (Track, error) {
	src = NewRect(src.Start(), src.End())
	if src.StartRow < 1 || src.StartCol < 1 {
		return Track{}, fmt.Errorf("copy range %s: invalid source", src)
	}
	if dest.Row < 1 || dest.Col < 1 {
		return Track{}, fmt.Errorf("copy range %s: invalid destination %s", src, dest)
	}

	snaps := make([]rowSnapshot, 0, src.Rows())
	for row := src.StartRow; row <= src.EndRow; row++ {
		snap, err := s.snapshotRow(row, src.StartCol, src.EndCol)
		if err != nil {
			return Track{}, err
		}
		snaps = append(snaps, snap)
	}
	dCol := dest.Col - src.StartCol
	for i, snap := range snaps {
		if err := s.writeRow(snap, dest.Row+i, dCol); err != nil {
			return Track{}, err
		}
	}
	if _, err := s.CopyMerge(CopyMergeOption{
		StartRow:  src.StartRow,
		StartCol:  src.StartCol,
		EndRow:    src.EndRow,
		EndCol:    src.EndCol,
		TargetRow: dest.Row,
		TargetCol: dest.Col,
	}); err != nil {
		return Track{}, err
	}

	alog.Debugf(s.opts.logCtx, "sheet %q: copied range %s to %s", s.name, src, dest)
	return s.RangeRect(Rect{
		StartRow: dest.Row,
		StartCol: dest.Col,
		EndRow:   dest.Row + src.Rows() - 1,
		EndCol:   dest.Col + src.Cols() - 1,
	}), nil
}

// printColumns returns the column span of the first print area rectangle.
// A whole-row print area spans column 1 to the last used column.
func (s *Sheet) printColumns() (int, int, error) {
	areas, err := s.PrintArea()
	if err != nil {
		return 0, 0, err
	}
	first, last := areas[0].StartCol, areas[0].EndCol
	if first == 0 {
		first = 1
	}
	if last == 0 {
		refs, err := s.grid.UsedCells(s.name)
		if err != nil {
			return 0, 0, err
		}
		last = first
		for _, ref := range refs {
			last = max(last, ref.Col)
		}
	}
	return first, last, nil
}

// placeRows makes room for n rows at anchor according to paste and returns
// the first target row and the source row adjusted for any insertion.
func (s *Sheet) placeRows(anchor, n int, paste PasteType, src int) (int, int, error) {
	insertAt := 0
	switch paste {
	case PasteOverwrite:
		return anchor, src, nil
	case PasteInsertBefore:
		insertAt = anchor
	case PasteInsertAfter:
		insertAt = anchor + 1
	default:
		return 0, 0, fmt.Errorf("unknown paste type %d", paste)
	}
	if err := s.grid.InsertRows(s.name, insertAt, n); err != nil {
		return 0, 0, fmt.Errorf("insert %d rows at %d: %w", n, insertAt, err)
	}
	if src >= insertAt {
		src += n
	}
	return insertAt, src, nil
}

func (s *Sheet) snapshotRow(row, firstCol, lastCol int) (rowSnapshot, error) {
	snap := rowSnapshot{row: row, firstCol: firstCol, cells: make([]CellData, 0, lastCol-firstCol+1)}
	h, err := s.grid.RowHeight(s.name, row)
	if err != nil {
		return snap, fmt.Errorf("read height of row %d: %w", row, err)
	}
	snap.height = h
	cells, err := s.grid.GetCells(s.name, row, firstCol, lastCol)
	if err != nil {
		return snap, fmt.Errorf("read row %d: %w", row, err)
	}
	snap.cells = append(snap.cells, cells...)
	return snap, nil
}

// writeRow writes snap into row target, shifting every column by dCol.
func (s *Sheet) writeRow(snap rowSnapshot, target, dCol int) error {
	if snap.height > 0 {
		if err := s.grid.SetRowHeight(s.name, target, snap.height); err != nil {
			return fmt.Errorf("set height of row %d: %w", target, err)
		}
	}
	if snap.firstCol+dCol < 1 {
		return fmt.Errorf("column %d shifted by %d is before the first column", snap.firstCol, dCol)
	}
	for i, cd := range snap.cells {
		col := snap.firstCol + i
		src := NewCellRef(snap.row, col)
		dst := NewCellRef(target, col+dCol)
		if !s.beforeCopy(src, dst) {
			continue
		}
		if err := s.grid.SetCell(s.name, dst, cd); err != nil {
			return err
		}
		s.afterCopy(src, dst)
	}
	return nil
}

func (s *Sheet) beforeCopy(src, dst CellRef) bool {
	proceed := true
	for _, l := range s.opts.listeners {
		if !l.BeforeCopyCell(s.name, src, dst, s.grid) {
			proceed = false
		}
	}
	return proceed
}

func (s *Sheet) afterCopy(src, dst CellRef) {
	for _, l := range s.opts.listeners {
		l.AfterCopyCell(s.name, src, dst, s.grid)
	}
}
