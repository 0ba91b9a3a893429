package xltrack

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Grid abstracts the spreadsheet document store. Rows and columns are 1-based.
type Grid interface {
	// Sheets
	SheetNames() []string
	PrintArea(sheet string) ([]Rect, error)

	// Cells
	GetCell(sheet string, ref CellRef) (CellData, error)
	GetCells(sheet string, row, firstCol, lastCol int) ([]CellData, error)
	SetCell(sheet string, ref CellRef, cd CellData) error
	SetCellValue(sheet string, ref CellRef, value any) error
	CellText(sheet string, ref CellRef) (string, error)
	SetHyperlink(sheet string, ref CellRef, url, text string) error
	UsedCells(sheet string) ([]CellRef, error)

	// Rows and columns
	RowHeight(sheet string, row int) (float64, error)
	SetRowHeight(sheet string, row int, height float64) error
	ColumnWidth(sheet string, col int) (float64, error)
	InsertRows(sheet string, before, n int) error
	RemoveRows(sheet string, start, n int) error

	// Merges
	MergedRegions(sheet string) ([]Rect, error)
	Merge(sheet string, r Rect) error
	SetHorizontalAlignment(sheet string, r Rect, align string) error

	// Drawing layer
	AddPicture(sheet string, ref CellRef, pic Picture) error

	// I/O
	SaveAs(path string) error
	Write(w io.Writer) error
	Close() error
}

// CellData is a snapshot of one cell: its typed value and style.
// Formula cells are captured by value.
type CellData struct {
	Value   any
	StyleID int
}

// Picture is an image ready to be anchored on the drawing layer.
type Picture struct {
	Data      []byte
	Extension string // ".png", ".jpg", ...
	OffsetX   int
	OffsetY   int
	ScaleX    float64
	ScaleY    float64
}

// excelizeGrid implements Grid on top of an excelize workbook.
type excelizeGrid struct {
	file *excelize.File
}

// NewExcelizeGrid wraps an excelize file as a Grid.
func NewExcelizeGrid(f *excelize.File) Grid {
	return &excelizeGrid{file: f}
}

func (g *excelizeGrid) SheetNames() []string {
	return g.file.GetSheetList()
}

// PrintArea returns the rectangles of the sheet's _xlnm.Print_Area defined name, in order.
func (g *excelizeGrid) PrintArea(sheet string) ([]Rect, error) {
	var areas []Rect
	for _, dn := range g.file.GetDefinedName() {
		if !strings.EqualFold(dn.Name, "_xlnm.Print_Area") {
			continue
		}
		for _, part := range strings.Split(dn.RefersTo, ",") {
			part = strings.TrimSpace(part)
			idx := strings.LastIndex(part, "!")
			if idx < 0 {
				continue
			}
			if strings.Trim(part[:idx], "'") != sheet {
				continue
			}
			r, err := ParseRect(part[idx+1:])
			if err != nil {
				return nil, fmt.Errorf("parse print area %q: %w", dn.RefersTo, err)
			}
			areas = append(areas, r)
		}
	}
	return areas, nil
}

func (g *excelizeGrid) GetCell(sheet string, ref CellRef) (CellData, error) {
	cells, err := g.GetCells(sheet, ref.Row, ref.Col, ref.Col)
	if err != nil {
		return CellData{}, err
	}
	return cells[0], nil
}

// GetCells snapshots columns firstCol..lastCol of row. A cell covered by a
// merge but not its top-left reads as empty, and a formula cell reads as its
// computed value.
func (g *excelizeGrid) GetCells(sheet string, row, firstCol, lastCol int) ([]CellData, error) {
	merges, err := g.MergedRegions(sheet)
	if err != nil {
		return nil, err
	}
	cells := make([]CellData, 0, lastCol-firstCol+1)
	for col := firstCol; col <= lastCol; col++ {
		ref := CellRef{Row: row, Col: col}
		cd, err := g.readCell(sheet, ref, hiddenByMerge(merges, ref))
		if err != nil {
			return nil, err
		}
		cells = append(cells, cd)
	}
	return cells, nil
}

func hiddenByMerge(merges []Rect, ref CellRef) bool {
	for _, m := range merges {
		if m.ContainsCell(ref) && m.Start() != ref {
			return true
		}
	}
	return false
}

func (g *excelizeGrid) readCell(sheet string, ref CellRef, hidden bool) (CellData, error) {
	cell := ref.String()
	var cd CellData

	styleID, err := g.file.GetCellStyle(sheet, cell)
	if err != nil {
		return cd, fmt.Errorf("read style %s: %w", cell, err)
	}
	cd.StyleID = styleID
	if hidden {
		return cd, nil
	}

	formula, err := g.file.GetCellFormula(sheet, cell)
	if err != nil {
		return cd, fmt.Errorf("read formula %s: %w", cell, err)
	}
	raw, err := g.file.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return cd, fmt.Errorf("read value %s: %w", cell, err)
	}
	if formula != "" && raw == "" {
		// no cached result in the workbook
		raw, err = g.file.CalcCellValue(sheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return cd, fmt.Errorf("calculate %s: %w", cell, err)
		}
		if raw != "" {
			cd.Value = typedValue(raw, excelize.CellTypeUnset)
		}
		return cd, nil
	}
	if raw == "" {
		return cd, nil
	}
	cellType, err := g.file.GetCellType(sheet, cell)
	if err != nil {
		return cd, fmt.Errorf("read type %s: %w", cell, err)
	}
	cd.Value = typedValue(raw, cellType)
	return cd, nil
}

// typedValue converts a raw cell string back to the Go type excelize wrote it from.
func typedValue(raw string, cellType excelize.CellType) any {
	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

// SetCell writes value and style, replacing any formula. A nil value clears the cell.
// A cell hidden under a merge only takes the style; excelize would route the
// value to the merge's top-left cell.
func (g *excelizeGrid) SetCell(sheet string, ref CellRef, cd CellData) error {
	cell := ref.String()
	merges, err := g.MergedRegions(sheet)
	if err != nil {
		return err
	}
	if !hiddenByMerge(merges, ref) {
		value := cd.Value
		if value == nil {
			value = ""
		}
		if err := g.file.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("write value %s: %w", cell, err)
		}
	}
	if err := g.file.SetCellStyle(sheet, cell, cell, cd.StyleID); err != nil {
		return fmt.Errorf("write style %s: %w", cell, err)
	}
	return nil
}

// SetCellValue sets a value, preserving the cell's style.
func (g *excelizeGrid) SetCellValue(sheet string, ref CellRef, value any) error {
	cell := ref.String()
	styleID, _ := g.file.GetCellStyle(sheet, cell)
	if err := g.file.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("write value %s: %w", cell, err)
	}
	if styleID > 0 {
		return g.file.SetCellStyle(sheet, cell, cell, styleID)
	}
	return nil
}

// CellText returns the cell's raw text.
func (g *excelizeGrid) CellText(sheet string, ref CellRef) (string, error) {
	return g.file.GetCellValue(sheet, ref.String(), excelize.Options{RawCellValue: true})
}

// SetHyperlink writes text into the cell and links it to an external url.
func (g *excelizeGrid) SetHyperlink(sheet string, ref CellRef, url, text string) error {
	if err := g.SetCellValue(sheet, ref, text); err != nil {
		return err
	}
	cell := ref.String()
	if err := g.file.SetCellHyperLink(sheet, cell, url, "External", excelize.HyperlinkOpts{Display: &text}); err != nil {
		return fmt.Errorf("write hyperlink %s: %w", cell, err)
	}
	return nil
}

// UsedCells returns every non-empty cell in row-major order.
func (g *excelizeGrid) UsedCells(sheet string) ([]CellRef, error) {
	rows, err := g.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %q: %w", sheet, err)
	}
	var refs []CellRef
	for r, row := range rows {
		for c, val := range row {
			if val != "" {
				refs = append(refs, CellRef{Row: r + 1, Col: c + 1})
			}
		}
	}
	return refs, nil
}

func (g *excelizeGrid) RowHeight(sheet string, row int) (float64, error) {
	return g.file.GetRowHeight(sheet, row)
}

func (g *excelizeGrid) SetRowHeight(sheet string, row int, height float64) error {
	return g.file.SetRowHeight(sheet, row, height)
}

func (g *excelizeGrid) ColumnWidth(sheet string, col int) (float64, error) {
	return g.file.GetColWidth(sheet, ColumnName(col))
}

// InsertRows inserts n blank rows so that the first new row has number before.
func (g *excelizeGrid) InsertRows(sheet string, before, n int) error {
	if n <= 0 {
		return nil
	}
	return g.file.InsertRows(sheet, before, n)
}

func (g *excelizeGrid) RemoveRows(sheet string, start, n int) error {
	for i := 0; i < n; i++ {
		if err := g.file.RemoveRow(sheet, start); err != nil {
			return fmt.Errorf("remove row %d: %w", start, err)
		}
	}
	return nil
}

func (g *excelizeGrid) MergedRegions(sheet string) ([]Rect, error) {
	merges, err := g.file.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("read merged cells from sheet %q: %w", sheet, err)
	}
	regions := make([]Rect, 0, len(merges))
	for _, m := range merges {
		r, err := ParseRect(m.GetStartAxis() + ":" + m.GetEndAxis())
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, nil
}

func (g *excelizeGrid) Merge(sheet string, r Rect) error {
	return g.file.MergeCell(sheet, r.Start().String(), r.End().String())
}

// SetHorizontalAlignment rewrites the style of every cell in r with the given horizontal alignment.
func (g *excelizeGrid) SetHorizontalAlignment(sheet string, r Rect, align string) error {
	for row := r.StartRow; row <= r.EndRow; row++ {
		for col := r.StartCol; col <= r.EndCol; col++ {
			cell := CellRef{Row: row, Col: col}.String()
			styleID, err := g.file.GetCellStyle(sheet, cell)
			if err != nil {
				return fmt.Errorf("read style %s: %w", cell, err)
			}
			style, err := g.file.GetStyle(styleID)
			if err != nil {
				return fmt.Errorf("load style %d: %w", styleID, err)
			}
			if style.Alignment == nil {
				style.Alignment = &excelize.Alignment{}
			}
			style.Alignment.Horizontal = align
			newID, err := g.file.NewStyle(style)
			if err != nil {
				return fmt.Errorf("create style: %w", err)
			}
			if err := g.file.SetCellStyle(sheet, cell, cell, newID); err != nil {
				return fmt.Errorf("write style %s: %w", cell, err)
			}
		}
	}
	return nil
}

func (g *excelizeGrid) AddPicture(sheet string, ref CellRef, pic Picture) error {
	return g.file.AddPictureFromBytes(sheet, ref.String(), &excelize.Picture{
		Extension: pic.Extension,
		File:      pic.Data,
		Format: &excelize.GraphicOptions{
			OffsetX:     pic.OffsetX,
			OffsetY:     pic.OffsetY,
			ScaleX:      pic.ScaleX,
			ScaleY:      pic.ScaleY,
			Positioning: "oneCell",
		},
	})
}

func (g *excelizeGrid) SaveAs(path string) error {
	return g.file.SaveAs(path)
}

func (g *excelizeGrid) Write(w io.Writer) error {
	return g.file.Write(w)
}

func (g *excelizeGrid) Close() error {
	return g.file.Close()
}
