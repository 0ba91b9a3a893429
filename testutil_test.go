package xltrack

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testSheet = "Sheet1"

// newTestFile creates a workbook whose Sheet1 print area is A1:D30.
func newTestFile(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })
	setPrintArea(t, f, testSheet, "$A$1:$D$30")
	return f
}

func setPrintArea(t *testing.T, f *excelize.File, sheet, area string) {
	t.Helper()
	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{
		Name:     "_xlnm.Print_Area",
		RefersTo: sheet + "!" + area,
		Scope:    sheet,
	}))
}

// openTestSheet wraps f in a Report and returns a handle on Sheet1.
func openTestSheet(t *testing.T, f *excelize.File, opts ...Option) *Sheet {
	t.Helper()
	r := New(f, opts...)
	s, err := r.Sheet(testSheet)
	require.NoError(t, err)
	return s
}

// fillRow writes values into consecutive columns of row starting at column A.
func fillRow(t *testing.T, f *excelize.File, row int, values ...any) {
	t.Helper()
	for i, v := range values {
		require.NoError(t, f.SetCellValue(testSheet, NewCellRef(row, i+1).String(), v))
	}
}

func cellText(t *testing.T, f *excelize.File, addr string) string {
	t.Helper()
	v, err := f.GetCellValue(testSheet, addr)
	require.NoError(t, err)
	return v
}

func rowTexts(t *testing.T, f *excelize.File, row int) []string {
	t.Helper()
	out := make([]string, 0, 4)
	for col := 1; col <= 4; col++ {
		out = append(out, cellText(t, f, NewCellRef(row, col).String()))
	}
	return out
}

func mergeRanges(t *testing.T, f *excelize.File) []string {
	t.Helper()
	merges, err := f.GetMergeCells(testSheet)
	require.NoError(t, err)
	out := make([]string, 0, len(merges))
	for _, m := range merges {
		out = append(out, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	return out
}

// pngBytes encodes a solid w×h PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
