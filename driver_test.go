package cppdrv

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cppdrv/cppdrv/csrc"
	"github.com/cppdrv/cppdrv/pass"
)

// fakeCPP builds a delegate stand-in: it finds -o and the input file on its
// command line, then writes a linemarker plus the input verbatim to the
// output, like a real preprocessor would for include-free input.
const fakeCPP = `#!/bin/sh
out=""; in=""
while [ $# -gt 0 ]; do
	case "$1" in
	-o) out="$2"; shift 2 ;;
	-*) shift ;;
	*) in="$1"; shift ;;
	esac
done
printf '# 1 "%s"\n' "$in" > "$out"
cat "$in" >> "$out"
`

func writeFakeCPP(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakecpp")
	if err := os.WriteFile(path, []byte(fakeCPP), 0755); err != nil {
		t.Fatal("WriteFile:", err)
	}
	return path
}

func writeSource(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "foo.c")
	if err := os.WriteFile(path, []byte(text), 0666); err != nil {
		t.Fatal("WriteFile:", err)
	}
	return path
}

// -----------------------------------------------------------------------------

func TestRunScenario(t *testing.T) {
	cpp := writeFakeCPP(t)
	dir := t.TempDir()
	src := writeSource(t, dir, "int a;\nint b;\n")
	out := filepath.Join(dir, "foo.i")

	args := []string{"cc", "-E", src, "-o", out, "-realcpp", cpp}
	if code := Run(args, 0, &Config{Registry: pass.NewRegistry()}); code != 0 {
		t.Fatal("Run:", code)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal("ReadFile:", err)
	}
	want := "# 1 \"" + src + "\"\nint a;\nint b;\n"
	if string(b) != want {
		t.Fatalf("output %q, want %q", b, want)
	}
}

func TestRunToStdout(t *testing.T) {
	cpp := writeFakeCPP(t)
	src := writeSource(t, t.TempDir(), "int a;\n")

	var stdout bytes.Buffer
	args := []string{"cc", "-E", src, "-realcpp", cpp}
	if code := Run(args, 0, &Config{Registry: pass.NewRegistry(), Stdout: &stdout}); code != 0 {
		t.Fatal("Run:", code)
	}
	want := "# 1 \"" + src + "\"\nint a;\n"
	if stdout.String() != want {
		t.Fatalf("stdout %q, want %q", stdout.String(), want)
	}
}

func TestRunEnabledPassRunsOnce(t *testing.T) {
	cpp := writeFakeCPP(t)
	dir := t.TempDir()
	src := writeSource(t, dir, "int a;\n")
	out := filepath.Join(dir, "foo.i")

	ran := 0
	reg := pass.NewRegistry()
	reg.Register(&pass.Descriptor{
		Name: "rewriteFoo",
		Run: func(f *csrc.File) error {
			ran++
			return nil
		},
	})
	args := []string{"cc", src, "-o", out, "-fpass-rewriteFoo", "-realcpp", cpp}
	if code := Run(args, 0, &Config{Registry: reg}); code != 0 {
		t.Fatal("Run:", code)
	}
	if ran != 1 {
		t.Fatal("pass ran", ran, "times")
	}
}

func TestRunDanglingPluginIsDropped(t *testing.T) {
	cpp := writeFakeCPP(t)
	dir := t.TempDir()
	src := writeSource(t, dir, "int a;\n")
	out := filepath.Join(dir, "foo.i")

	// a trailing -plugin has no value to capture and is silently ignored
	args := []string{"cc", src, "-o", out, "-realcpp", cpp, "-plugin"}
	if code := Run(args, 0, &Config{Registry: pass.NewRegistry()}); code != 0 {
		t.Fatal("Run:", code)
	}
}

func TestRunUnloadablePluginAborts(t *testing.T) {
	cpp := writeFakeCPP(t)
	dir := t.TempDir()
	src := writeSource(t, dir, "int a;\n")
	out := filepath.Join(dir, "foo.i")

	args := []string{"cc", src, "-o", out, "-plugin", "nosuchplugin", "-realcpp", cpp}
	if code := Run(args, 0, &Config{Registry: pass.NewRegistry()}); code != 2 {
		t.Fatal("Run:", code)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("output written despite plugin failure")
	}
}

func TestRunNotFoundPassAborts(t *testing.T) {
	cpp := writeFakeCPP(t)
	dir := t.TempDir()
	src := writeSource(t, dir, "int a;\n")
	out := filepath.Join(dir, "foo.i")

	reg := pass.NewRegistry()
	reg.Register(&pass.Descriptor{
		Name: "failing",
		Run: func(f *csrc.File) error {
			return pass.ErrNotFound
		},
	})
	args := []string{"cc", src, "-o", out, "-fpass-failing", "-realcpp", cpp}
	if code := Run(args, 0, &Config{Registry: reg}); code != 2 {
		t.Fatal("Run:", code)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("output written despite pass failure")
	}
}

func TestRunDelegateFailureAborts(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "int a;\n")
	out := filepath.Join(dir, "foo.i")

	args := []string{"cc", src, "-o", out, "-realcpp", "false"}
	if code := Run(args, 0, &Config{Registry: pass.NewRegistry()}); code != 2 {
		t.Fatal("Run:", code)
	}
}

func TestRunCheckModes(t *testing.T) {
	breaker := func() *pass.Registry {
		reg := pass.NewRegistry()
		reg.Register(&pass.Descriptor{
			Name:      "breakRep",
			Checkable: true,
			Run: func(f *csrc.File) error {
				for _, line := range f.Lines {
					if line.Kind == csrc.KindText {
						line.Text += "\nint y;"
						break
					}
				}
				return nil
			},
		})
		return reg
	}
	cpp := writeFakeCPP(t)
	dir := t.TempDir()
	src := writeSource(t, dir, "int a;\n")

	run := func(flags int) int {
		out := filepath.Join(t.TempDir(), "foo.i")
		args := []string{"cc", src, "-o", out, "-fpass-breakRep", "-realcpp", cpp}
		return Run(args, flags, &Config{Registry: breaker()})
	}
	if code := run(FlagCheck); code != 1 {
		t.Fatal("non-strict check:", code)
	}
	if code := run(FlagCheck | FlagStrictCheck); code != 2 {
		t.Fatal("strict check:", code)
	}
}

func TestRunSaveTempsIdempotent(t *testing.T) {
	cpp := writeFakeCPP(t)
	dir := t.TempDir()
	src := writeSource(t, dir, "int a;\nint b;\n")

	outputs := make([][]byte, 2)
	for i := range outputs {
		out := filepath.Join(t.TempDir(), "foo.i")
		args := []string{"cc", src, "-o", out, "-save-temps", "-realcpp", cpp}
		if code := Run(args, 0, &Config{Registry: pass.NewRegistry()}); code != 0 {
			t.Fatal("Run:", code)
		}
		b, err := os.ReadFile(out)
		if err != nil {
			t.Fatal("ReadFile:", err)
		}
		outputs[i] = b
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Fatal("outputs differ between identical runs")
	}
}

func TestRunPassthrough(t *testing.T) {
	args := []string{"cpp", "--version", "-realcpp", "true"}
	if code := Run(args, 0, &Config{Registry: pass.NewRegistry()}); code != 0 {
		t.Fatal("Run:", code)
	}
}
