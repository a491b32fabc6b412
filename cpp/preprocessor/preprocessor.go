package preprocessor

import (
	"log"
	"os"
	"os/exec"

	"github.com/cppdrv/cppdrv/cpp/chunk"
	"github.com/cppdrv/cppdrv/cpp/resolve"
	"github.com/qiniu/x/errors"
)

const (
	DbgFlagExecCmd = 1 << iota
	DbgFlagAll     = DbgFlagExecCmd
)

var (
	debugExecCmd bool
)

func SetDebug(flags int) {
	debugExecCmd = (flags & DbgFlagExecCmd) != 0
}

// -----------------------------------------------------------------------------

// Result bundles everything the rest of the driver needs once the delegate
// has run. It is produced once and consumed once.
type Result struct {
	TempFile  string
	OutFile   string // original intended destination, "" means stdout
	SaveTemps bool
	Plugins   []string // in command-line order
	Passes    []string // in command-line order
}

// Rewrite flattens the classified chunks into the delegate argument list.
// Every `-o <file>` chunk is retargeted at tempfile; if none exists, one is
// appended. The first chunk (the program-name position) is dropped: the
// caller prepends the resolved delegate prefix instead. outfile is the
// original destination, "" if the command line named none.
func Rewrite(chunks []chunk.Chunk, tempfile string) (args []string, outfile string) {
	args = make([]string, 0, len(chunks)+2)
	pendingOut := false
	seenOut := false
	for i, c := range chunks {
		if i == 0 || c.Empty() {
			continue
		}
		if pendingOut {
			outfile = c[0]
			args = append(args, tempfile)
			args = append(args, c[1:]...)
			pendingOut = false
			continue
		}
		if c[0] == "-o" {
			seenOut = true
			args = append(args, "-o")
			if len(c) > 1 {
				outfile = c[1]
				args = append(args, tempfile)
				args = append(args, c[2:]...)
			} else {
				pendingOut = true
			}
			continue
		}
		args = append(args, c...)
	}
	if !seenOut {
		args = append(args, "-o", tempfile)
	}
	return
}

// Do rewrites the classified chunks against tempfile and runs the delegate,
// waiting for it to finish. A spawn failure or non-zero exit is returned as
// an error; no partial output is considered valid.
func Do(res chunk.Result, cmd resolve.Cmd, tempfile string) (ret Result, err error) {
	args, outfile := Rewrite(res.Chunks, tempfile)
	argv := append(append([]string(nil), cmd.Prefix...), args...)
	if debugExecCmd {
		log.Println("==> runCmd:", argv)
	}
	c := exec.Command(argv[0], argv[1:]...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err = c.Run(); err != nil {
		err = errors.NewWith(err, `c.Run()`, -2, "(*exec.Cmd).Run", argv)
		return
	}
	ret = Result{
		TempFile:  tempfile,
		OutFile:   outfile,
		SaveTemps: res.Options.SaveTemps,
		Plugins:   res.Options.Plugins,
		Passes:    res.Options.Passes,
	}
	return
}
