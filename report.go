package xltrack

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.alis.build/alog"
)

// Report owns an open workbook and hands out sheet handles for it.
type Report struct {
	grid Grid
	opts *Options
}

// Open opens an xlsx template from path.
func Open(path string, opts ...Option) (*Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open template %q: %w", path, err)
	}
	return New(f, opts...), nil
}

// OpenReader opens an xlsx template from r.
func OpenReader(r io.Reader, opts ...Option) (*Report, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open template reader: %w", err)
	}
	return New(f, opts...), nil
}

// New wraps an already opened excelize workbook.
func New(f *excelize.File, opts ...Option) *Report {
	return NewWithGrid(NewExcelizeGrid(f), opts...)
}

// NewWithGrid creates a Report over any Grid implementation.
func NewWithGrid(g Grid, opts ...Option) *Report {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.logLevel != nil {
		alog.SetLevel(*o.logLevel)
	}
	return &Report{grid: g, opts: o}
}

// Grid returns the underlying document store.
func (r *Report) Grid() Grid {
	return r.grid
}

// Sheet returns a new handle for the named sheet. Bindings are scanned once here;
// call Sheet again to observe structural edits made through an earlier handle.
func (r *Report) Sheet(name string) (*Sheet, error) {
	if !slices.Contains(r.grid.SheetNames(), name) {
		return nil, fmt.Errorf("sheet %q: %w", name, ErrSheetNotFound)
	}
	return newSheet(r, name)
}

// UsingSheet opens the named sheet, checks it has a print area and passes it to fn.
func (r *Report) UsingSheet(name string, fn func(*Sheet) error) error {
	s, err := r.Sheet(name)
	if err != nil {
		return err
	}
	if _, err := s.PrintArea(); err != nil {
		return err
	}
	if fn == nil {
		return nil
	}
	return fn(s)
}

// SaveAs writes the workbook to name inside the export path, appending ".xlsx" if missing.
// It returns the full path written.
func (r *Report) SaveAs(name string) (string, error) {
	fullName, err := verifyFileName(name, "xlsx")
	if err != nil {
		return "", err
	}
	if r.opts.exportPath != "" {
		fullName = filepath.Join(r.opts.exportPath, fullName)
	}
	if err := r.runPreSave(); err != nil {
		return "", err
	}
	if err := r.grid.SaveAs(fullName); err != nil {
		return "", fmt.Errorf("save %q: %w", fullName, err)
	}
	alog.Debugf(r.opts.logCtx, "saved workbook to %s", fullName)
	return fullName, nil
}

// Write writes the workbook to w.
func (r *Report) Write(w io.Writer) error {
	if err := r.runPreSave(); err != nil {
		return err
	}
	return r.grid.Write(w)
}

// Close releases the workbook.
func (r *Report) Close() error {
	return r.grid.Close()
}

func (r *Report) runPreSave() error {
	if r.opts.preSave == nil {
		return nil
	}
	if err := r.opts.preSave(r.grid); err != nil {
		return fmt.Errorf("pre-save callback: %w", err)
	}
	return nil
}

func verifyFileName(name, ext string) (string, error) {
	if name == "" {
		return "", ErrNoOutputName
	}
	if !strings.HasSuffix(strings.ToLower(name), "."+strings.ToLower(ext)) {
		name += "." + ext
	}
	return name, nil
}
