package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cppdrv/cppdrv/csrc"
)

const sample = `# 1 "foo.c"
# 1 "<built-in>"
# 1 "foo.c"
int a;

# 10 "bar.h" 1
typedef int T;
#pragma once
int b;
`

func parse(t *testing.T, src string) *csrc.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.i")
	if err := os.WriteFile(path, []byte(src), 0666); err != nil {
		t.Fatal("WriteFile:", err)
	}
	f, err := ParseFile(path, 0)
	if err != nil {
		t.Fatal("ParseFile:", err)
	}
	return f
}

func TestParseFile(t *testing.T) {
	f := parse(t, sample)
	if n := len(f.Lines); n != 9 {
		t.Fatal("line count:", n)
	}
	kinds := []csrc.LineKind{
		csrc.KindMarker, csrc.KindMarker, csrc.KindMarker,
		csrc.KindText, csrc.KindText,
		csrc.KindMarker,
		csrc.KindText, csrc.KindDirective, csrc.KindText,
	}
	for i, k := range kinds {
		if f.Lines[i].Kind != k {
			t.Fatalf("line %d kind %v, want %v", i, f.Lines[i].Kind, k)
		}
	}
	// attribution follows the linemarkers
	if pos := f.Lines[3].Pos; pos != (csrc.Pos{File: "foo.c", Line: 1}) {
		t.Fatalf("line 3 pos %+v", pos)
	}
	if pos := f.Lines[4].Pos; pos != (csrc.Pos{File: "foo.c", Line: 2}) {
		t.Fatalf("line 4 pos %+v", pos)
	}
	if pos := f.Lines[6].Pos; pos != (csrc.Pos{File: "bar.h", Line: 10}) {
		t.Fatalf("line 6 pos %+v", pos)
	}
	if pos := f.Lines[8].Pos; pos != (csrc.Pos{File: "bar.h", Line: 12}) {
		t.Fatalf("line 8 pos %+v", pos)
	}
	if err := csrc.Check(f); err != nil {
		t.Fatal("Check:", err)
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile("/nonexistent/sample.i", 0); err == nil {
		t.Fatal("ParseFile missing: no error?")
	}
}

func TestParseNoMarkers(t *testing.T) {
	f := parse(t, "int a;\nint b;\n")
	for i, want := range []int{1, 2} {
		line := f.Lines[i]
		if line.Kind != csrc.KindText || line.Pos.Line != want {
			t.Fatalf("line %d: %+v", i, line)
		}
	}
}
