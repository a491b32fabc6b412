package tempfile

import (
	"os"

	"github.com/qiniu/x/errors"
)

// Create atomically makes a new, uniquely named scratch file with the given
// suffix (without the dot) and returns its path and an open handle. The name
// is guaranteed unused: creation is atomic, not check-then-create. The file
// stays on disk until the caller removes it.
func Create(suffix string) (path string, f *os.File, err error) {
	f, err = os.CreateTemp("", "cppdrv-*."+suffix)
	if err != nil {
		err = errors.NewWith(err, `os.CreateTemp("", pattern)`, -2, "os.CreateTemp", suffix)
		return
	}
	return f.Name(), f, nil
}
