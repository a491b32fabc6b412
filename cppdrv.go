/*
 * Copyright (c) 2023 The cppdrv Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cppdrv

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"

	"github.com/cppdrv/cppdrv/cpp/chunk"
	"github.com/cppdrv/cppdrv/cpp/preprocessor"
	"github.com/cppdrv/cppdrv/cpp/resolve"
	"github.com/cppdrv/cppdrv/cpp/scan"
	"github.com/cppdrv/cppdrv/cpp/tempfile"
	"github.com/cppdrv/cppdrv/csrc"
	"github.com/cppdrv/cppdrv/csrc/parser"
	"github.com/cppdrv/cppdrv/pass"
	"github.com/cppdrv/cppdrv/pass/plugin"
)

const (
	FlagCheck = 1 << iota // run the consistency check after checkable passes
	FlagStrictCheck       // escalate check failures to fatal errors
	FlagVerbose           // log delegate/pass execution, print pass timings
)

// Config tweaks a driver run; the zero value is what cmd/cppdrv uses.
type Config struct {
	Registry *pass.Registry // nil means pass.Std
	Stdout   io.Writer      // destination when no -o was given; nil means os.Stdout
}

// Run drives one whole invocation: classify the command line, run the
// delegate preprocessor into a scratch file, run the enabled passes over the
// parsed result and emit it to the intended destination. args is the full
// original command line, argv[0] included. The returned code is the process
// exit status: 0 on success, 1 if any error was recorded during pass
// execution or emission, 2 on a fatal abort.
func Run(args []string, flags int, conf *Config) (exitCode int) {
	defer func() {
		if e := recover(); e != nil {
			exitCode = 2
		}
	}()
	if conf == nil {
		conf = new(Config)
	}
	reg := conf.Registry
	if reg == nil {
		reg = pass.Std
	}
	stdout := conf.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	if len(args) == 0 {
		fatal(errors.New("empty command line"))
	}

	fconf := loadFileConf()
	doCheck := (flags&FlagCheck) != 0 || fconf.Check
	strict := (flags&FlagStrictCheck) != 0 || fconf.Strict
	verbose := (flags&FlagVerbose) != 0 || fconf.Verbose
	if verbose {
		preprocessor.SetDebug(preprocessor.DbgFlagAll)
		pass.SetDebug(pass.DbgFlagAll)
	}

	ret, err := chunk.Classify(args)
	check(err)

	info := scan.Scan(args)
	realcpp := ret.Options.RealCPP
	if realcpp == "" {
		realcpp = fconf.RealCPP
	}
	cmd, err := resolve.Resolve(realcpp, args)
	check(err)

	if info.NoOutput {
		// nothing to transform: hand the rewritten command line to the
		// delegate and mirror its exit status.
		return passthrough(cmd, ret.Chunks)
	}

	suffix := fconf.Suffix
	if suffix == "" {
		suffix, err = resolve.Suffix(cmd.Lang)
		check(err)
	}
	tmpfile, f, err := tempfile.Create(suffix)
	check(err)
	f.Close()

	saveTemps := ret.Options.SaveTemps
	defer func() {
		if !saveTemps {
			os.Remove(tmpfile)
		}
	}()

	res, err := preprocessor.Do(ret, cmd, tmpfile)
	check(err)

	doc, err := parser.ParseFile(res.TempFile, 0)
	check(err)

	plugins := append(append([]string(nil), fconf.Plugins...), res.Plugins...)
	err = plugin.LoadAll(reg, plugins)
	check(err)

	passes := append(append([]string(nil), fconf.Passes...), res.Passes...)
	for _, name := range passes {
		check(reg.Enable(name))
	}

	var timings pass.Timings
	nwarn, err := reg.RunAll(doc, &pass.Options{
		DoCheck: doCheck,
		Strict:  strict,
		Timings: &timings,
	})
	check(err)
	if verbose {
		timings.Report(os.Stderr)
	}

	errSeen := nwarn > 0
	if err = emit(doc, res.OutFile, stdout); err != nil {
		fmt.Fprintln(os.Stderr, "cppdrv:", err)
		errSeen = true
	}
	if errSeen {
		return 1
	}
	return 0
}

// emit serializes doc to outfile, or to stdout when no destination was
// named. The destination is only ever opened here, at the very end, so a
// fatal abort never leaves partial output behind.
func emit(doc *csrc.File, outfile string, stdout io.Writer) (err error) {
	w := stdout
	if outfile != "" {
		f, e := os.Create(outfile)
		if e != nil {
			return e
		}
		defer func() {
			if e := f.Close(); err == nil {
				err = e
			}
		}()
		w = f
	}
	_, err = doc.WriteTo(w)
	return
}

func passthrough(cmd resolve.Cmd, chunks []chunk.Chunk) int {
	args := chunk.Flatten(chunks[1:])
	argv := append(append([]string(nil), cmd.Prefix...), args...)
	c := exec.Command(argv[0], argv[1:]...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return ee.ExitCode()
		}
		fatal(err)
	}
	return 0
}

func check(err error) {
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	log.Panicln(err)
}
