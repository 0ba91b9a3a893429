package xltrack

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.alis.build/alog"
)

var (
	bindingLinePattern = regexp.MustCompile(`\$\[.+?\]|\$\{.+?\}`)
	valueTokenPattern  = regexp.MustCompile(`\$\{([^}]+)\}`)
	commandPattern     = regexp.MustCompile(`\$\[([^\]]+)\]`)
)

// Directive commands recognized inside $[...] tokens.
const (
	CommandForRow = "for-row"
	CommandItem   = "item"
)

// Binding is one discovered token and the write it performs.
type Binding interface {
	// Cell is the cell the token was found in.
	Cell() CellRef
	// Line is the full text of that cell at scan time.
	Line() string
	// Write resolves the binding against the sheet's store and writes the result.
	Write(s *Sheet) error
}

// ValueBinding replaces its cell's text with the value found at Path.
type ValueBinding struct {
	Ref  CellRef
	Text string
	Path string
}

func (b *ValueBinding) Cell() CellRef { return b.Ref }
func (b *ValueBinding) Line() string  { return b.Text }

// Write sets the cell to the resolved value's display form, or to a
// diagnostic naming the path when resolution fails. The token never survives.
func (b *ValueBinding) Write(s *Sheet) error {
	val, err := s.opts.resolver.Resolve(b.Path, s.store)
	if err != nil {
		alog.Warnf(s.opts.logCtx, "sheet %q: binding %s at %s: %v", s.name, b.Path, b.Ref, err)
		return s.grid.SetCellValue(s.name, b.Ref, Diagnostic(b.Path, err))
	}
	if link, ok := linkOf(val); ok {
		return s.grid.SetHyperlink(s.name, b.Ref, link.URL, link.String())
	}
	return s.grid.SetCellValue(s.name, b.Ref, DisplayString(val))
}

// ForRowBinding marks a $[for-row] directive. Row iteration is not implemented;
// Write leaves the sheet untouched.
type ForRowBinding struct {
	Ref  CellRef
	Text string
}

func (b *ForRowBinding) Cell() CellRef      { return b.Ref }
func (b *ForRowBinding) Line() string       { return b.Text }
func (b *ForRowBinding) Write(*Sheet) error { return nil }

// Diagnostic is the text written in place of a binding that failed to resolve.
func Diagnostic(path string, err error) string {
	reason := "binding error"
	if errors.Is(err, ErrNotFound) {
		reason = "binding error: not found"
	}
	return fmt.Sprintf("[ValueBinding]: path [%s] %s", path, reason)
}

// DisplayString formats a resolved value for a cell.
func DisplayString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprintf("%v", v)
}

// IsBindingLine reports whether text contains a ${...} or $[...] token.
func IsBindingLine(text string) bool {
	return bindingLinePattern.MatchString(text)
}

// ParseBindingLine turns the text of one cell into bindings. Whitespace is
// removed and the text split on ";". Every ${path} yields a ValueBinding,
// $[for-row] a ForRowBinding; $[item] and unknown commands yield nothing.
func ParseBindingLine(ref CellRef, text string) []Binding {
	var out []Binding
	compact := strings.Join(strings.Fields(text), "")
	for _, token := range strings.Split(compact, ";") {
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, "${") {
			for _, m := range valueTokenPattern.FindAllStringSubmatch(token, -1) {
				out = append(out, &ValueBinding{Ref: ref, Text: text, Path: m[1]})
			}
			continue
		}
		m := commandPattern.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		switch strings.ToLower(m[1]) {
		case CommandForRow:
			out = append(out, &ForRowBinding{Ref: ref, Text: text})
		case CommandItem:
			// recognized, produces no binding
		}
	}
	return out
}

// BindingSet holds the bindings of one sheet, found by a single scan.
type BindingSet struct {
	sheet    string
	bindings []Binding
}

// ScanBindings reads every non-empty cell of sheet once and collects its bindings.
func ScanBindings(g Grid, sheet string) (*BindingSet, error) {
	refs, err := g.UsedCells(sheet)
	if err != nil {
		return nil, err
	}
	bs := &BindingSet{sheet: sheet}
	for _, ref := range refs {
		text, err := g.CellText(sheet, ref)
		if err != nil {
			return nil, fmt.Errorf("read cell %s: %w", ref, err)
		}
		if !IsBindingLine(text) {
			continue
		}
		bs.bindings = append(bs.bindings, ParseBindingLine(ref, text)...)
	}
	return bs, nil
}

// All returns the bindings in scan order.
func (bs *BindingSet) All() []Binding {
	return bs.bindings
}

// Len returns the number of bindings.
func (bs *BindingSet) Len() int {
	return len(bs.bindings)
}

// Write applies every binding in scan order. Resolution failures become
// in-cell diagnostics; only grid write errors stop the pass.
func (bs *BindingSet) Write(s *Sheet) error {
	for _, b := range bs.bindings {
		if err := b.Write(s); err != nil {
			return fmt.Errorf("write binding at %s: %w", b.Cell(), err)
		}
	}
	return nil
}

// Describe returns a human-readable listing of the bindings.
func (bs *BindingSet) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sheet: %s (%d bindings)\n", bs.sheet, len(bs.bindings))
	for _, bind := range bs.bindings {
		switch x := bind.(type) {
		case *ValueBinding:
			fmt.Fprintf(&b, "  %s value %s\n", x.Ref, x.Path)
		case *ForRowBinding:
			fmt.Fprintf(&b, "  %s %s\n", x.Ref, CommandForRow)
		default:
			fmt.Fprintf(&b, "  %s %T\n", bind.Cell(), bind)
		}
	}
	return b.String()
}

// BindingIssue is a value binding that would not resolve against the current store.
type BindingIssue struct {
	Cell CellRef
	Path string
	Err  error
}

// String formats the issue as "A2: Child.Missing: <error>".
func (i BindingIssue) String() string {
	return fmt.Sprintf("%s: %s: %v", i.Cell, i.Path, i.Err)
}

// CheckBindings resolves every value binding without writing anything.
func (s *Sheet) CheckBindings() []BindingIssue {
	var issues []BindingIssue
	for _, b := range s.bindings.bindings {
		vb, ok := b.(*ValueBinding)
		if !ok {
			continue
		}
		if _, err := s.opts.resolver.Resolve(vb.Path, s.store); err != nil {
			issues = append(issues, BindingIssue{Cell: vb.Ref, Path: vb.Path, Err: err})
		}
	}
	return issues
}
