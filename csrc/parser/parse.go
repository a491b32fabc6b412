package parser

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/cppdrv/cppdrv/csrc"
)

type Mode uint

// -----------------------------------------------------------------------------

type ParseError struct {
	Err  error
	Path string
}

func (p *ParseError) Error() string {
	if p.Path != "" {
		return p.Path + ": " + p.Err.Error()
	}
	return p.Err.Error()
}

func (p *ParseError) Unwrap() error {
	return p.Err
}

// -----------------------------------------------------------------------------

// ParseFile reads preprocessed output into a csrc.File. Line attribution
// follows the linemarkers the delegate emitted, so positions refer to the
// original sources while indexes refer to the post-preprocessing text.
func ParseFile(filename string, mode Mode) (file *csrc.File, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &ParseError{Err: err, Path: filename}
	}
	defer f.Close()

	file = &csrc.File{Path: filename}
	cur := csrc.Pos{File: filename, Line: 1}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		text := scanner.Text()
		line := &csrc.Line{Text: text, Pos: cur}
		switch {
		case isMarker(text):
			line.Kind = csrc.KindMarker
			if n, name, ok := parseMarker(text); ok {
				cur = csrc.Pos{File: name, Line: n}
			}
			line.Pos = csrc.Pos{}
		case strings.HasPrefix(strings.TrimLeft(text, " \t"), "#"):
			line.Kind = csrc.KindDirective
			cur.Line++
		default:
			line.Kind = csrc.KindText
			cur.Line++
		}
		file.Lines = append(file.Lines, line)
	}
	if err = scanner.Err(); err != nil {
		return nil, &ParseError{Err: err, Path: filename}
	}
	return file, nil
}

// isMarker reports whether text is a linemarker: `# <digits> ...`.
func isMarker(text string) bool {
	if !strings.HasPrefix(text, "# ") {
		return false
	}
	rest := text[2:]
	return len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9'
}

func parseMarker(text string) (line int, file string, ok bool) {
	fields := strings.SplitN(text[2:], " ", 3)
	line, err := strconv.Atoi(fields[0])
	if err != nil || line <= 0 {
		return 0, "", false
	}
	if len(fields) > 1 {
		file = strings.Trim(fields[1], `"`)
	}
	return line, file, true
}
