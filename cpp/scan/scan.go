package scan

// Info summarizes what is already known about the surrounding invocation
// before any rewriting happens. It is produced once, up front, and only
// read by the rest of the driver.
type Info struct {
	HasOutput bool // an explicit -o was given
	OutPos    int  // argument position of -o, -1 if none
	NoOutput  bool // the invocation emits no preprocessed text at all
}

// Scan inspects the original command line. args includes argv[0].
//
// NoOutput covers dependency-rule-only invocations (-M/-MM without a side
// file) and version/help requests: in those modes the delegate writes no
// preprocessed output and the driver is a pure passthrough.
func Scan(args []string) (ret Info) {
	ret.OutPos = -1
	depsOnly, sideDeps, verhelp := false, false, false
	for i, arg := range args {
		if i == 0 {
			continue
		}
		switch arg {
		case "-o":
			if ret.OutPos < 0 {
				ret.HasOutput = true
				ret.OutPos = i
			}
		case "-M", "-MM":
			depsOnly = true
		case "-MD", "-MMD":
			sideDeps = true
		case "--version", "-version", "--help", "-help":
			verhelp = true
		}
	}
	ret.NoOutput = verhelp || (depsOnly && !sideDeps)
	return
}
