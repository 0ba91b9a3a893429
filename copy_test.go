package xltrack

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// createRowsFixture fills rows 1..5 with "R<n>" in column A and n*10 in column B,
// and makes row 2 bold with a 30pt height.
func createRowsFixture(t *testing.T) (*excelize.File, int) {
	t.Helper()
	f := newTestFile(t)
	for row := 1; row <= 5; row++ {
		fillRow(t, f, row, "R"+string(rune('0'+row)), row*10)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(testSheet, "A2", "B2", bold))
	require.NoError(t, f.SetRowHeight(testSheet, 2, 30))
	return f, bold
}

func TestCopyRow_Overwrite(t *testing.T) {
	f, bold := createRowsFixture(t)
	s := openTestSheet(t, f)

	target, err := s.CopyRow(2, CopyRowOption{TargetRow: 4})
	require.NoError(t, err)
	assert.Equal(t, KindRow, target.Kind())
	assert.Equal(t, 4, target.RowNumber())

	assert.Equal(t, []string{"R2", "20", "", ""}, rowTexts(t, f, 4))
	assert.Equal(t, []string{"R2", "20", "", ""}, rowTexts(t, f, 2), "source unchanged")
	assert.Equal(t, []string{"R5", "50", "", ""}, rowTexts(t, f, 5))

	style, err := f.GetCellStyle(testSheet, "A4")
	require.NoError(t, err)
	assert.Equal(t, bold, style)
	h, err := f.GetRowHeight(testSheet, 4)
	require.NoError(t, err)
	assert.Equal(t, 30.0, h)
}

func TestCopyRow_OverwriteKeepsNumbers(t *testing.T) {
	f, _ := createRowsFixture(t)
	s := openTestSheet(t, f)

	_, err := s.CopyRow(3, CopyRowOption{TargetRow: 8})
	require.NoError(t, err)

	v, err := s.Cell(8, 2).Value()
	require.NoError(t, err)
	assert.Equal(t, 30.0, v)
}

func TestCopyRow_InsertBefore(t *testing.T) {
	f, _ := createRowsFixture(t)
	s := openTestSheet(t, f)

	target, err := s.CopyRow(4, CopyRowOption{PasteType: PasteInsertBefore, TargetRow: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, target.RowNumber())

	assert.Equal(t, "R1", cellText(t, f, "A1"))
	assert.Equal(t, "R4", cellText(t, f, "A2"), "new row equals source")
	assert.Equal(t, "R2", cellText(t, f, "A3"), "old row 2 shifted down")
	assert.Equal(t, "R3", cellText(t, f, "A4"))
	assert.Equal(t, "R4", cellText(t, f, "A5"), "source shifted down with the rest")
	assert.Equal(t, "R5", cellText(t, f, "A6"))
}

func TestCopyRow_InsertAfter(t *testing.T) {
	f, _ := createRowsFixture(t)
	s := openTestSheet(t, f)

	target, err := s.CopyRow(1, CopyRowOption{PasteType: PasteInsertAfter, TargetRow: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, target.RowNumber())

	assert.Equal(t, "R3", cellText(t, f, "A3"))
	assert.Equal(t, "R1", cellText(t, f, "A4"))
	assert.Equal(t, "R4", cellText(t, f, "A5"))
}

func TestCopyRow_MoveOffset(t *testing.T) {
	f, _ := createRowsFixture(t)
	s := openTestSheet(t, f)

	target, err := s.Row(2).CopyTo(CopyRowOption{PositionType: PositionMove, TargetRow: 5})
	require.NoError(t, err)
	assert.Equal(t, 7, target.RowNumber())
	assert.Equal(t, "R2", cellText(t, f, "A7"))

	_, err = s.CopyRow(2, CopyRowOption{PositionType: PositionMove, TargetRow: -5})
	assert.Error(t, err)
}

func TestCopyRow_PrintAreaColumnsOnly(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	setPrintArea(t, f, testSheet, "$A$1:$B$10")
	fillRow(t, f, 1, "a", "b", "c")
	s := openTestSheet(t, f)

	_, err := s.CopyRow(1, CopyRowOption{TargetRow: 3})
	require.NoError(t, err)
	assert.Equal(t, "a", cellText(t, f, "A3"))
	assert.Equal(t, "b", cellText(t, f, "B3"))
	assert.Equal(t, "", cellText(t, f, "C3"), "outside the print area")
}

func TestCopyRow_CopiesMerges(t *testing.T) {
	f, _ := createRowsFixture(t)
	require.NoError(t, f.MergeCell(testSheet, "C2", "D2"))
	s := openTestSheet(t, f)

	_, err := s.CopyRow(2, CopyRowOption{PasteType: PasteInsertBefore, TargetRow: 1})
	require.NoError(t, err)
	// C2:D2 moved to C3:D3 by the insert; the copy landed on row 1.
	assert.ElementsMatch(t, []string{"C1:D1", "C3:D3"}, mergeRanges(t, f))
}

func TestCopyRow_NoPrintArea(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	fillRow(t, f, 1, "a")
	s := openTestSheet(t, f)

	_, err := s.CopyRow(1, CopyRowOption{TargetRow: 2})
	assert.True(t, errors.Is(err, ErrNoPrintArea))
	assert.Equal(t, "", cellText(t, f, "A2"))
}

func TestCopyRows_Order(t *testing.T) {
	f, _ := createRowsFixture(t)
	s := openTestSheet(t, f)

	target, err := s.Rows(1, 3).CopyTo(CopyRowOption{TargetRow: 10})
	require.NoError(t, err)
	assert.Equal(t, KindRows, target.Kind())
	assert.Equal(t, Rect{StartRow: 10, EndRow: 12}, target.Rect())

	assert.Equal(t, "R1", cellText(t, f, "A10"))
	assert.Equal(t, "R2", cellText(t, f, "A11"))
	assert.Equal(t, "R3", cellText(t, f, "A12"))
	h, err := f.GetRowHeight(testSheet, 11)
	require.NoError(t, err)
	assert.Equal(t, 30.0, h)
}

func TestCopyRows_MergesRemappedOnce(t *testing.T) {
	f, _ := createRowsFixture(t)
	require.NoError(t, f.MergeCell(testSheet, "C1", "C3")) // spans the block
	require.NoError(t, f.MergeCell(testSheet, "A2", "B2")) // single row
	s := openTestSheet(t, f)

	_, err := s.CopyRows(1, 3, CopyRowOption{TargetRow: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"C1:C3", "A2:B2", "C10:C12", "A11:B11"}, mergeRanges(t, f))
}

func TestCopyRows_InsertBefore(t *testing.T) {
	f, _ := createRowsFixture(t)
	s := openTestSheet(t, f)

	target, err := s.CopyRows(4, 5, CopyRowOption{PasteType: PasteInsertBefore, TargetRow: 1})
	require.NoError(t, err)
	assert.Equal(t, Rect{StartRow: 1, EndRow: 2}, target.Rect())

	var got []string
	for row := 1; row <= 7; row++ {
		got = append(got, cellText(t, f, NewCellRef(row, 1).String()))
	}
	assert.Equal(t, []string{"R4", "R5", "R1", "R2", "R3", "R4", "R5"}, got)
}

func TestCopyRows_MoveAnchors(t *testing.T) {
	t.Run("negative offset anchors to start", func(t *testing.T) {
		f, _ := createRowsFixture(t)
		s := openTestSheet(t, f)
		target, err := s.CopyRows(3, 4, CopyRowOption{
			PasteType:    PasteInsertBefore,
			PositionType: PositionMove,
			TargetRow:    -1,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, target.RowNumber())
		assert.Equal(t, "R3", cellText(t, f, "A2"))
		assert.Equal(t, "R4", cellText(t, f, "A3"))
		assert.Equal(t, "R2", cellText(t, f, "A4"))
	})

	t.Run("non-negative offset anchors to end", func(t *testing.T) {
		f, _ := createRowsFixture(t)
		s := openTestSheet(t, f)
		target, err := s.CopyRows(1, 2, CopyRowOption{
			PasteType:    PasteInsertAfter,
			PositionType: PositionMove,
			TargetRow:    0,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, target.RowNumber())
		var got []string
		for row := 1; row <= 5; row++ {
			got = append(got, cellText(t, f, NewCellRef(row, 1).String()))
		}
		assert.Equal(t, []string{"R1", "R2", "R1", "R2", "R3"}, got)
	})
}

func TestCopyRows_OverlappingOverwrite(t *testing.T) {
	f, _ := createRowsFixture(t)
	s := openTestSheet(t, f)

	_, err := s.CopyRows(1, 3, CopyRowOption{TargetRow: 2})
	require.NoError(t, err)
	var got []string
	for row := 1; row <= 5; row++ {
		got = append(got, cellText(t, f, NewCellRef(row, 1).String()))
	}
	assert.Equal(t, []string{"R1", "R1", "R2", "R3", "R5"}, got)
}

func TestRowAt_OutOfRange(t *testing.T) {
	f, _ := createRowsFixture(t)
	s := openTestSheet(t, f)
	rows := s.Rows(2, 4)

	r, err := rows.RowAt(3)
	require.NoError(t, err)
	assert.Equal(t, 4, r.RowNumber())

	_, err = rows.RowAt(4)
	assert.True(t, errors.Is(err, ErrRowOutOfRange))
	_, err = rows.RowAt(0)
	assert.True(t, errors.Is(err, ErrRowOutOfRange))
	assert.Equal(t, "R4", cellText(t, f, "A4"))
}

func TestCopyRange(t *testing.T) {
	f := newTestFile(t)
	fillRow(t, f, 1, "a1", "b1", "c1")
	fillRow(t, f, 2, "a2", "b2")
	require.NoError(t, f.MergeCell(testSheet, "B2", "C2"))
	require.NoError(t, f.MergeCell(testSheet, "A2", "A3")) // leaves the source
	require.NoError(t, f.SetRowHeight(testSheet, 2, 24))
	s := openTestSheet(t, f)

	src, err := s.Range("B1", "C2")
	require.NoError(t, err)
	target, err := src.CopyRangeTo(NewCellRef(6, 3))
	require.NoError(t, err)
	assert.Equal(t, Rect{StartRow: 6, StartCol: 3, EndRow: 7, EndCol: 4}, target.Rect())

	assert.Equal(t, "b1", cellText(t, f, "C6"))
	assert.Equal(t, "c1", cellText(t, f, "D6"))
	assert.Equal(t, "b2", cellText(t, f, "C7"))
	assert.Equal(t, "", cellText(t, f, "D7"))
	assert.Equal(t, "", cellText(t, f, "B6"))
	h, err := f.GetRowHeight(testSheet, 7)
	require.NoError(t, err)
	assert.Equal(t, 24.0, h)

	assert.ElementsMatch(t, []string{"B2:C2", "A2:A3", "C7:D7"}, mergeRanges(t, f))
}

type recordingListener struct {
	skip   CellRef
	copied []CellRef
}

func (l *recordingListener) BeforeCopyCell(_ string, src, _ CellRef, _ Grid) bool {
	return src != l.skip
}

func (l *recordingListener) AfterCopyCell(_ string, _, target CellRef, _ Grid) {
	l.copied = append(l.copied, target)
}

func TestCopyListener(t *testing.T) {
	f, _ := createRowsFixture(t)
	l := &recordingListener{skip: NewCellRef(1, 2)}
	s := openTestSheet(t, f, WithCopyListener(l))

	_, err := s.CopyRow(1, CopyRowOption{TargetRow: 9})
	require.NoError(t, err)
	assert.Equal(t, "R1", cellText(t, f, "A9"))
	assert.Equal(t, "", cellText(t, f, "B9"), "listener skipped B")
	assert.Equal(t, []CellRef{{Row: 9, Col: 1}, {Row: 9, Col: 3}, {Row: 9, Col: 4}}, l.copied)
}

func TestTrackDelete(t *testing.T) {
	f, _ := createRowsFixture(t)
	s := openTestSheet(t, f)

	require.NoError(t, s.Rows(2, 3).Delete())
	assert.Equal(t, "R4", cellText(t, f, "A2"))
	assert.Error(t, s.Cell(1, 1).Delete())
}

func TestCopyRow_StoredContents(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T, f *excelize.File)
		src    int
		target int
		want   map[string]string
		merges []string
	}{
		{
			name: "lower row of a merge copies empty",
			setup: func(t *testing.T, f *excelize.File) {
				fillRow(t, f, 1, "title")
				fillRow(t, f, 2, nil, "b2")
				require.NoError(t, f.MergeCell(testSheet, "A1", "A2"))
			},
			src:    2,
			target: 5,
			want:   map[string]string{"A5": "", "B5": "b2"},
			merges: []string{"A1:A2"},
		},
		{
			name: "top row of a partial merge keeps its own value",
			setup: func(t *testing.T, f *excelize.File) {
				fillRow(t, f, 1, "title", "b1")
				require.NoError(t, f.MergeCell(testSheet, "A1", "A2"))
			},
			src:    1,
			target: 5,
			want:   map[string]string{"A5": "title", "B5": "b1"},
			merges: []string{"A1:A2"},
		},
		{
			name: "target merge keeps its top-left value",
			setup: func(t *testing.T, f *excelize.File) {
				fillRow(t, f, 2, nil, nil, "c2")
				require.NoError(t, f.MergeCell(testSheet, "C6", "D6"))
			},
			src:    2,
			target: 6,
			want:   map[string]string{"C6": "c2", "D6": "c2"},
			merges: []string{"C6:D6"},
		},
		{
			name: "formula copies its computed value",
			setup: func(t *testing.T, f *excelize.File) {
				fillRow(t, f, 1, 21)
				require.NoError(t, f.SetCellFormula(testSheet, "B1", "A1*2"))
			},
			src:    1,
			target: 3,
			want:   map[string]string{"A3": "21", "B3": "42"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFile(t)
			tt.setup(t, f)
			s := openTestSheet(t, f)

			_, err := s.CopyRow(tt.src, CopyRowOption{TargetRow: tt.target})
			require.NoError(t, err)
			for addr, want := range tt.want {
				assert.Equal(t, want, cellText(t, f, addr), addr)
				formula, err := f.GetCellFormula(testSheet, addr)
				require.NoError(t, err)
				assert.Empty(t, formula, addr)
			}
			if tt.merges != nil {
				assert.ElementsMatch(t, tt.merges, mergeRanges(t, f))
			}
		})
	}
}

func TestCopyRows_LowerMergeRowsCopyEmpty(t *testing.T) {
	f := newTestFile(t)
	fillRow(t, f, 1, "title", "b1")
	fillRow(t, f, 2, nil, "b2")
	fillRow(t, f, 3, nil, "b3")
	require.NoError(t, f.MergeCell(testSheet, "A1", "A3"))
	s := openTestSheet(t, f)

	_, err := s.CopyRows(2, 3, CopyRowOption{TargetRow: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "b2", "", ""}, rowTexts(t, f, 10))
	assert.Equal(t, []string{"", "b3", "", ""}, rowTexts(t, f, 11))
	assert.Equal(t, []string{"A1:A3"}, mergeRanges(t, f))
}

func TestCopyRange_StoredContents(t *testing.T) {
	f := newTestFile(t)
	fillRow(t, f, 1, 5, "top")
	fillRow(t, f, 2, 7)
	require.NoError(t, f.MergeCell(testSheet, "B1", "B2"))
	require.NoError(t, f.SetCellFormula(testSheet, "C2", "A2+A1"))
	s := openTestSheet(t, f)

	src, err := s.Range("A2", "C2")
	require.NoError(t, err)
	_, err = src.CopyRangeTo(NewCellRef(8, 2))
	require.NoError(t, err)

	assert.Equal(t, "7", cellText(t, f, "B8"))
	assert.Equal(t, "", cellText(t, f, "C8"), "hidden merge cell")
	assert.Equal(t, "12", cellText(t, f, "D8"))
	formula, err := f.GetCellFormula(testSheet, "D8")
	require.NoError(t, err)
	assert.Empty(t, formula)

	hidden, err := s.Cell(2, 2).Value()
	require.NoError(t, err)
	assert.Nil(t, hidden)
}

func TestCopyRow_WholeLinePrintAreas(t *testing.T) {
	t.Run("whole columns", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		setPrintArea(t, f, testSheet, "$A:$B")
		fillRow(t, f, 1, "a", "b", "c")
		s := openTestSheet(t, f)

		_, err := s.CopyRow(1, CopyRowOption{TargetRow: 4})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "", ""}, rowTexts(t, f, 4))
	})

	t.Run("whole rows", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		setPrintArea(t, f, testSheet, "$1:$10")
		fillRow(t, f, 1, "a", "b", "c", "d", "e")
		s := openTestSheet(t, f)

		_, err := s.CopyRow(1, CopyRowOption{TargetRow: 4})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, rowTexts(t, f, 4))
		assert.Equal(t, "e", cellText(t, f, "E4"))
	})
}
