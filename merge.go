package xltrack

import (
	"fmt"

	"go.alis.build/alog"
)

// CopyMergeOption selects the merges to copy and where to put them.
// Zero source bounds are unconstrained.
type CopyMergeOption struct {
	StartRow  int
	StartCol  int
	EndRow    int
	EndCol    int
	TargetRow int
	TargetCol int
}

// Source returns the source rectangle.
func (o CopyMergeOption) Source() Rect {
	return Rect{StartRow: o.StartRow, StartCol: o.StartCol, EndRow: o.EndRow, EndCol: o.EndCol}
}

// RemapMerges returns the merges of existing that lie entirely inside the
// option's source, translated to the target. Partially overlapping merges are
// never split and never returned.
func RemapMerges(existing []Rect, opt CopyMergeOption) []Rect {
	src := opt.Source()
	dRow := opt.TargetRow - opt.StartRow
	dCol := opt.TargetCol - opt.StartCol

	var out []Rect
	for _, m := range existing {
		if !src.Contains(m) {
			continue
		}
		out = append(out, m.Translate(dRow, dCol))
	}
	return out
}

// CopyMerge re-creates every merge inside the option's source at the target.
// Source merges are left in place. It returns the number of merges created.
func (s *Sheet) CopyMerge(opt CopyMergeOption) (int, error) {
	existing, err := s.grid.MergedRegions(s.name)
	if err != nil {
		return 0, err
	}
	present := make(map[Rect]bool, len(existing))
	for _, m := range existing {
		present[m] = true
	}

	created := 0
	for _, m := range RemapMerges(existing, opt) {
		if present[m] {
			continue
		}
		if m.StartRow < 1 || m.StartCol < 1 {
			return created, fmt.Errorf("merge %s lands outside the sheet", m)
		}
		if err := s.grid.Merge(s.name, m); err != nil {
			return created, fmt.Errorf("merge %s: %w", m, err)
		}
		present[m] = true
		created++
	}
	if created > 0 {
		alog.Debugf(s.opts.logCtx, "sheet %q: remapped %d merges from %s", s.name, created, opt.Source())
	}
	return created, nil
}

// mergeContaining returns the merged region that contains ref, if any.
func (s *Sheet) mergeContaining(ref CellRef) (Rect, bool, error) {
	merges, err := s.grid.MergedRegions(s.name)
	if err != nil {
		return Rect{}, false, err
	}
	for _, m := range merges {
		if m.ContainsCell(ref) {
			return m, true, nil
		}
	}
	return Rect{}, false, nil
}
