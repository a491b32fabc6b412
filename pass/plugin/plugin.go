package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	goplugin "plugin"

	"github.com/cppdrv/cppdrv/pass"
	"github.com/goplus/mod/gopmod"
	"github.com/qiniu/x/errors"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrPluginNotFound = errors.New("plugin not found")
	ErrBadInitSymbol  = errors.New("plugin init symbol has wrong type")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// InitSymbol is the exported symbol a shared-object plugin must provide:
//
//	func CppdrvInit(reg *pass.Registry) error
//
// It registers the plugin's passes, in dependency order.
const InitSymbol = "CppdrvInit"

// -----------------------------------------------------------------------------

// Builtin plugins are linked into the binary and register through a factory
// instead of a shared object. Tests and embedded pass bundles use this.
var builtins = make(map[string]func(*pass.Registry) error)

func RegisterBuiltin(name string, init func(*pass.Registry) error) {
	builtins[name] = init
}

// -----------------------------------------------------------------------------

// manifest is the cppdrv.plugin file found in a plugin package directory.
type manifest struct {
	Object string   `json:"object"` // shared object, relative to the package dir
	Passes []string `json:"passes"` // pass names provided, informational
}

// Load resolves one plugin name and registers its passes into reg. A name
// is tried as, in order: a builtin plugin, a shared-object path on disk, a
// package path resolved through go.mod to a directory carrying a
// cppdrv.plugin manifest.
func Load(reg *pass.Registry, name string) (err error) {
	if init, ok := builtins[name]; ok {
		return init(reg)
	}
	if isFile(name) {
		return open(reg, name)
	}
	dir, err := lookupDir(name)
	if err != nil {
		return
	}
	obj, err := readManifest(dir)
	if err != nil {
		return
	}
	return open(reg, obj)
}

// LoadAll loads the named plugins in order; the first failure aborts.
func LoadAll(reg *pass.Registry, names []string) (err error) {
	for _, name := range names {
		if err = Load(reg, name); err != nil {
			err = fmt.Errorf("plugin %s: %w", name, err)
			return
		}
	}
	return
}

// -----------------------------------------------------------------------------

func lookupDir(pkgPath string) (dir string, err error) {
	mod, err := gopmod.Load(".")
	if err != nil {
		err = errors.NewWith(err, `gopmod.Load(".")`, -2, "gopmod.Load", ".")
		return
	}
	pkg, err := mod.Lookup(pkgPath)
	if err != nil {
		err = errors.NewWith(ErrPluginNotFound, `mod.Lookup(pkgPath)`, -2, "(*gopmod.Module).Lookup", pkgPath)
		return
	}
	return filepath.Abs(pkg.Dir)
}

func readManifest(dir string) (obj string, err error) {
	file := filepath.Join(dir, "cppdrv.plugin")
	b, err := os.ReadFile(file)
	if err != nil {
		err = errors.NewWith(err, `os.ReadFile(file)`, -2, "os.ReadFile", file)
		return
	}
	var conf manifest
	if err = json.Unmarshal(b, &conf); err != nil {
		err = errors.NewWith(err, `json.Unmarshal(b, &conf)`, -2, "json.Unmarshal", file)
		return
	}
	if conf.Object == "" {
		err = errors.NewWith(ErrPluginNotFound, `conf.Object == ""`, -2, "plugin.readManifest", file)
		return
	}
	return canonical(dir, conf.Object), nil
}

func open(reg *pass.Registry, object string) (err error) {
	p, err := goplugin.Open(object)
	if err != nil {
		err = errors.NewWith(err, `goplugin.Open(object)`, -2, "plugin.Open", object)
		return
	}
	sym, err := p.Lookup(InitSymbol)
	if err != nil {
		err = errors.NewWith(err, `p.Lookup(InitSymbol)`, -2, "(*plugin.Plugin).Lookup", object, InitSymbol)
		return
	}
	init, ok := sym.(func(*pass.Registry) error)
	if !ok {
		err = errors.NewWith(ErrBadInitSymbol, `sym.(func(*pass.Registry) error)`, -2, "plugin.open", object)
		return
	}
	return init(reg)
}

func isFile(name string) bool {
	if fi, err := os.Lstat(name); err == nil {
		return !fi.IsDir()
	}
	return false
}

func canonical(baseDir string, uri string) string {
	if filepath.IsAbs(uri) {
		return filepath.Clean(uri)
	}
	return filepath.Join(baseDir, uri)
}
