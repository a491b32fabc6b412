// Package builtin registers the passes shipped with the driver. Importing
// it for side effects populates pass.Std; plugins append after these, so
// built-ins always run first.
package builtin

import (
	"strings"

	"github.com/cppdrv/cppdrv/csrc"
	"github.com/cppdrv/cppdrv/pass"
)

func init() {
	pass.Std.Register(&pass.Descriptor{
		Name:      "trimTrailingSpace",
		Doc:       "strip trailing whitespace from text lines",
		Checkable: true,
		Run:       trimTrailingSpace,
	})
	pass.Std.Register(&pass.Descriptor{
		Name:      "squeezeBlanks",
		Doc:       "collapse runs of blank lines into one",
		Checkable: true,
		Run:       squeezeBlanks,
	})
	pass.Std.Register(&pass.Descriptor{
		Name: "stripMarkers",
		Doc:  "drop linemarker lines from the output",
		// removing markers discards the attribution context the checker
		// relies on, so this pass is not check-eligible
		Checkable: false,
		Run:       stripMarkers,
	})
}

func trimTrailingSpace(f *csrc.File) error {
	for _, line := range f.Lines {
		if line.Kind == csrc.KindText {
			line.Text = strings.TrimRight(line.Text, " \t")
		}
	}
	return nil
}

func isBlank(line *csrc.Line) bool {
	return line.Kind == csrc.KindText && strings.TrimSpace(line.Text) == ""
}

func squeezeBlanks(f *csrc.File) error {
	out := f.Lines[:0]
	inRun := false
	for _, line := range f.Lines {
		if isBlank(line) {
			if inRun {
				continue
			}
			inRun = true
		} else {
			inRun = false
		}
		out = append(out, line)
	}
	f.Lines = out
	return nil
}

func stripMarkers(f *csrc.File) error {
	out := f.Lines[:0]
	for _, line := range f.Lines {
		if line.Kind == csrc.KindMarker {
			continue
		}
		out = append(out, line)
	}
	f.Lines = out
	return nil
}
