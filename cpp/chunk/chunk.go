package chunk

import (
	"strings"

	"github.com/qiniu/x/errors"
)

var (
	ErrMalformed = errors.New("option requires a following value, not a grouped chunk")
)

// -----------------------------------------------------------------------------

// A Chunk is a group of command-line tokens that must travel together (an
// option and, if it takes one, its value). A chunk consumed by the driver
// becomes empty; it is never removed, so the chunk list stays parallel to
// the original argument positions.
type Chunk []string

func (c Chunk) Empty() bool {
	return len(c) == 0
}

// Options holds the driver-private state extracted during classification.
type Options struct {
	SaveTemps bool
	RealCPP   string   // explicit delegate binary, "" if none
	Plugins   []string // in command-line order
	Passes    []string // in command-line order
}

// Result is the outcome of one classification: one chunk per original
// argument position, plus the accumulated private options.
type Result struct {
	Chunks  []Chunk
	Options Options
}

// -----------------------------------------------------------------------------

const passPrefix = "-fpass-"

// private options that take the next chunk as their value
func wantsValue(tok string) bool {
	return tok == "-realcpp" || tok == "-plugin"
}

// Classify walks args left to right and splits them into passthrough chunks
// and driver-private options. args is the full original command line,
// argv[0] included.
func Classify(args []string) (ret Result, err error) {
	chunks := make([]Chunk, len(args))
	for i, arg := range args {
		chunks[i] = Chunk{arg}
	}
	return ClassifyChunks(chunks)
}

// ClassifyChunks is Classify over pre-grouped chunks. A pre-grouped
// multi-token chunk can't satisfy an option that expects a single following
// value; that is a malformed input and fails with ErrMalformed.
func ClassifyChunks(in []Chunk) (ret Result, err error) {
	out := make([]Chunk, len(in))
	pending := "" // private option waiting for its value
	for i, c := range in {
		if pending != "" {
			if len(c) != 1 {
				err = errors.NewWith(ErrMalformed, `ClassifyChunks(in)`, -2, "chunk.ClassifyChunks", pending, c)
				return
			}
			switch pending {
			case "-realcpp":
				ret.Options.RealCPP = c[0]
			case "-plugin":
				ret.Options.Plugins = append(ret.Options.Plugins, c[0])
			}
			pending = ""
			out[i] = Chunk{}
			continue
		}
		if len(c) == 1 {
			switch tok := c[0]; {
			case tok == "-save-temps":
				ret.Options.SaveTemps = true
				out[i] = Chunk{}
				continue
			case wantsValue(tok):
				pending = tok
				out[i] = Chunk{}
				continue
			case strings.HasPrefix(tok, passPrefix) && len(tok) > len(passPrefix):
				ret.Options.Passes = append(ret.Options.Passes, tok[len(passPrefix):])
				out[i] = Chunk{}
				continue
			}
		}
		out[i] = c
	}
	// a dangling -realcpp/-plugin at the end of the line has no value to
	// capture; it was consumed above and is dropped silently.
	ret.Chunks = out
	return
}

// Flatten joins chunks back into a flat argument list, skipping the ones
// the driver consumed.
func Flatten(chunks []Chunk) []string {
	n := 0
	for _, c := range chunks {
		n += len(c)
	}
	args := make([]string, 0, n)
	for _, c := range chunks {
		args = append(args, c...)
	}
	return args
}
