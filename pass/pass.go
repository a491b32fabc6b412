package pass

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/cppdrv/cppdrv/csrc"
	"github.com/qiniu/x/errors"
)

const (
	DbgFlagRunPass = 1 << iota
	DbgFlagAll     = DbgFlagRunPass
)

var (
	debugRunPass bool
)

func SetDebug(flags int) {
	debugRunPass = (flags & DbgFlagRunPass) != 0
}

var (
	// ErrNotFound is the pass-internal "not found" signal. A pass returning
	// it (or wrapping it) always aborts the run; the orchestrator logs the
	// pass name first.
	ErrNotFound = errors.New("not found")
)

// -----------------------------------------------------------------------------

// A Descriptor names one transformation over the program representation.
// Descriptors are registered once, at process start or during plugin
// loading; after that only the Enabled flag changes.
type Descriptor struct {
	Name      string
	Doc       string
	Enabled   bool
	Checkable bool // eligible for the post-pass consistency check
	Run       func(*csrc.File) error
}

// A Registry is an ordered list of pass descriptors. Passes always execute
// in registration order, never in enable order, so pass authors can rely on
// relative ordering by registering in dependency order.
type Registry struct {
	list   []*Descriptor
	byName map[string]*Descriptor
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Descriptor)}
}

// Std is the process-wide registry that built-in passes and loaded plugins
// register into.
var Std = NewRegistry()

// Register appends a descriptor. Registering a duplicate name or appending
// after Freeze is a programming error.
func (r *Registry) Register(d *Descriptor) {
	if r.frozen {
		log.Panicln("pass: Register after Freeze:", d.Name)
	}
	if _, dup := r.byName[d.Name]; dup {
		log.Panicln("pass: duplicate pass name:", d.Name)
	}
	r.list = append(r.list, d)
	r.byName[d.Name] = d
}

// Freeze closes the registry for registration. Plugin loading appends its
// descriptors before the registry is frozen.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Enable marks a named pass as enabled.
func (r *Registry) Enable(name string) error {
	d, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("pass %s: %w", name, ErrNotFound)
	}
	d.Enabled = true
	return nil
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	for err != nil {
		if err == ErrNotFound {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Lookup returns the descriptor registered under name, or nil.
func (r *Registry) Lookup(name string) *Descriptor {
	return r.byName[name]
}

// All returns the descriptors in registration order.
func (r *Registry) All() []*Descriptor {
	return r.list
}

// -----------------------------------------------------------------------------

// Timings holds per-pass elapsed times, keyed by pass name, in run order.
type Timings struct {
	passes map[string]time.Duration
	order  []string
}

func (t *Timings) Set(name string, dur time.Duration) {
	if t == nil {
		return
	}
	if t.passes == nil {
		t.passes = make(map[string]time.Duration)
	}
	if _, ok := t.passes[name]; !ok {
		t.order = append(t.order, name)
	}
	t.passes[name] = dur
}

func (t Timings) Has(name string) bool {
	_, ok := t.passes[name]
	return ok
}

func (t Timings) Duration(name string) time.Duration {
	return t.passes[name]
}

func (t Timings) Total() (total time.Duration) {
	for _, d := range t.passes {
		total += d
	}
	return
}

// Report writes one line per executed pass, in run order.
func (t Timings) Report(w io.Writer) {
	for _, name := range t.order {
		fmt.Fprintf(w, "%s %.1f ms\n", name, float64(t.passes[name])/float64(time.Millisecond))
	}
}

// -----------------------------------------------------------------------------

// Options configures one orchestration run.
type Options struct {
	DoCheck bool                   // run the consistency check after checkable passes
	Strict  bool                   // escalate check failures to fatal errors
	Check   func(*csrc.File) error // nil means csrc.Check
	Timings *Timings               // nil means don't record
}

// RunAll executes every enabled pass over file, in registration order,
// timing each one under its name. nwarn counts non-fatal consistency
// warnings; any returned error is fatal and attributed to the offending
// pass.
func (r *Registry) RunAll(file *csrc.File, o *Options) (nwarn int, err error) {
	if o == nil {
		o = &Options{}
	}
	check := o.Check
	if check == nil {
		check = csrc.Check
	}
	r.Freeze()
	for _, d := range r.list {
		if !d.Enabled {
			continue
		}
		if debugRunPass {
			log.Println("==> runPass:", d.Name)
		}
		start := time.Now()
		err = d.Run(file)
		o.Timings.Set(d.Name, time.Since(start))
		if err != nil {
			if IsNotFound(err) {
				fmt.Fprintf(os.Stderr, "cppdrv: pass %s: %v\n", d.Name, err)
			}
			err = fmt.Errorf("pass %s: %w", d.Name, err)
			return
		}
		if d.Checkable && o.DoCheck {
			if e := check(file); e != nil {
				if o.Strict {
					err = fmt.Errorf("consistency check failed after pass %s: %w", d.Name, e)
					return
				}
				fmt.Fprintf(os.Stderr, "cppdrv: warning: consistency check failed after pass %s: %v\n", d.Name, e)
				nwarn++
			}
		}
	}
	return
}
