package xltrack

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellRef is a 1-based grid coordinate.
type CellRef struct {
	Row int // 1-based row number
	Col int // 1-based column number
}

// NewCellRef creates a CellRef from 1-based row and column numbers.
func NewCellRef(row, col int) CellRef {
	return CellRef{Row: row, Col: col}
}

// ParseCellRef parses an address like "B7" or "$B$7". A sheet prefix ("Sheet1!B7") is ignored.
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}
	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.ReplaceAll(s, "$", "")
	col, row, err := excelize.CellNameToCoordinates(s)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return CellRef{Row: row, Col: col}, nil
}

// String formats the reference as "A1".
func (c CellRef) String() string {
	return ColumnName(c.Col) + strconv.Itoa(c.Row)
}

// Move returns the reference shifted by the given row and column offsets.
func (c CellRef) Move(dRow, dCol int) CellRef {
	return CellRef{Row: c.Row + dRow, Col: c.Col + dCol}
}

// ColumnName converts a 1-based column number to its letter code.
// 1→"A", 26→"Z", 27→"AA"
func ColumnName(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// ColumnNumber converts a column letter code to its 1-based number.
// "A"→1, "Z"→26, "AA"→27
func ColumnNumber(name string) (int, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	n := 0
	for _, ch := range name {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name: %q", name)
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n, nil
}

// Rect is an inclusive rectangle of cells. A zero bound means unconstrained.
type Rect struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// NewRect creates a Rect from two corners, normalizing their order.
func NewRect(a, b CellRef) Rect {
	return Rect{
		StartRow: min(a.Row, b.Row),
		StartCol: min(a.Col, b.Col),
		EndRow:   max(a.Row, b.Row),
		EndCol:   max(a.Col, b.Col),
	}
}

// ParseRect parses "A1:C3". A single cell address yields a one-cell rectangle.
// Whole columns ("A:D") and whole rows ("1:5") leave the other bounds at zero.
func ParseRect(s string) (Rect, error) {
	s = strings.ReplaceAll(s, "$", "")
	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		s = s[idx+1:]
	}
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		c, err := ParseCellRef(parts[0])
		if err != nil {
			return Rect{}, err
		}
		return NewRect(c, c), nil
	case 2:
		if r, ok := parseLineRange(parts[0], parts[1]); ok {
			return r, nil
		}
		a, err := ParseCellRef(parts[0])
		if err != nil {
			return Rect{}, err
		}
		b, err := ParseCellRef(parts[1])
		if err != nil {
			return Rect{}, err
		}
		return NewRect(a, b), nil
	}
	return Rect{}, fmt.Errorf("invalid range %q", s)
}

// parseLineRange parses "A:D" or "1:5". Both ends must be the same kind.
func parseLineRange(a, b string) (Rect, bool) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if ra, err := strconv.Atoi(a); err == nil {
		rb, err := strconv.Atoi(b)
		if err != nil || ra < 1 || rb < 1 {
			return Rect{}, false
		}
		return Rect{StartRow: min(ra, rb), EndRow: max(ra, rb)}, true
	}
	ca, err := ColumnNumber(a)
	if err != nil {
		return Rect{}, false
	}
	cb, err := ColumnNumber(b)
	if err != nil {
		return Rect{}, false
	}
	return Rect{StartCol: min(ca, cb), EndCol: max(ca, cb)}, true
}

// Start returns the top-left corner.
func (r Rect) Start() CellRef { return CellRef{Row: r.StartRow, Col: r.StartCol} }

// End returns the bottom-right corner.
func (r Rect) End() CellRef { return CellRef{Row: r.EndRow, Col: r.EndCol} }

// Rows returns the number of rows spanned.
func (r Rect) Rows() int { return r.EndRow - r.StartRow + 1 }

// Cols returns the number of columns spanned.
func (r Rect) Cols() int { return r.EndCol - r.StartCol + 1 }

// Contains reports whether other lies entirely inside r's non-zero bounds.
func (r Rect) Contains(other Rect) bool {
	if r.StartRow != 0 && other.StartRow < r.StartRow {
		return false
	}
	if r.StartCol != 0 && other.StartCol < r.StartCol {
		return false
	}
	if r.EndRow != 0 && other.EndRow > r.EndRow {
		return false
	}
	if r.EndCol != 0 && other.EndCol > r.EndCol {
		return false
	}
	return true
}

// ContainsCell reports whether the cell lies inside r.
func (r Rect) ContainsCell(c CellRef) bool {
	return r.Contains(Rect{StartRow: c.Row, StartCol: c.Col, EndRow: c.Row, EndCol: c.Col})
}

// Translate shifts every bound by the given offsets.
func (r Rect) Translate(dRow, dCol int) Rect {
	return Rect{
		StartRow: r.StartRow + dRow,
		StartCol: r.StartCol + dCol,
		EndRow:   r.EndRow + dRow,
		EndCol:   r.EndCol + dCol,
	}
}

// String formats the rectangle as "A1:C3", "A:D" for whole columns or "1:5" for whole rows.
func (r Rect) String() string {
	if r.StartRow == 0 && r.EndRow == 0 {
		return ColumnName(r.StartCol) + ":" + ColumnName(r.EndCol)
	}
	return r.Start().String() + ":" + r.End().String()
}
