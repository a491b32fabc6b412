package csrc

import (
	"fmt"
	"io"
	"strings"
)

// -----------------------------------------------------------------------------

// Pos attributes a line of preprocessed output back to the source position
// recorded by the most recent linemarker, so diagnostics match what the
// delegate emitted rather than the raw input.
type Pos struct {
	File string
	Line int
}

type LineKind int

const (
	KindText      LineKind = iota
	KindMarker             // linemarker: # <line> "<file>" [flags...]
	KindDirective          // any other '#' line, kept verbatim
)

type Line struct {
	Kind LineKind
	Text string // verbatim, without the trailing newline
	Pos  Pos
}

// File is the in-memory form of one preprocessed translation unit. Passes
// mutate it in place; the driver serializes it at the very end.
type File struct {
	Path  string // the scratch file this was read from
	Lines []*Line
}

// WriteTo serializes the representation back to preprocessed text.
func (f *File) WriteTo(w io.Writer) (n int64, err error) {
	for _, line := range f.Lines {
		m, e := io.WriteString(w, line.Text)
		n += int64(m)
		if e != nil {
			return n, e
		}
		m, e = io.WriteString(w, "\n")
		n += int64(m)
		if e != nil {
			return n, e
		}
	}
	return
}

// -----------------------------------------------------------------------------

// Check verifies the structural invariants of a representation: no nil
// lines, no embedded newlines, and position attribution that only moves
// forward between two linemarkers. Passes are free to edit text but must
// keep the representation well-formed; the orchestrator may call Check
// after each pass.
func Check(f *File) error {
	if f == nil {
		return fmt.Errorf("csrc.Check: nil file")
	}
	last := Pos{}
	for i, line := range f.Lines {
		if line == nil {
			return fmt.Errorf("csrc.Check: %s: nil line at index %d", f.Path, i)
		}
		if strings.ContainsRune(line.Text, '\n') {
			return fmt.Errorf("csrc.Check: %s: embedded newline at index %d", f.Path, i)
		}
		switch line.Kind {
		case KindMarker:
			last = Pos{}
		case KindText:
			if line.Pos.Line <= 0 {
				return fmt.Errorf("csrc.Check: %s: unattributed text line at index %d", f.Path, i)
			}
			if line.Pos.File == last.File && line.Pos.Line < last.Line {
				return fmt.Errorf("csrc.Check: %s: attribution goes backwards at index %d", f.Path, i)
			}
			last = line.Pos
		}
	}
	return nil
}
