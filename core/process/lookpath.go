package process

import (
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

func findExecutable(fsys afero.Fs, file string) error {
	d, err := fsys.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

func resolve(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// LookPath searches for an executable named file in the directories named by
// pathEnv. If file contains a slash, it is tried directly and the PATH is not
// consulted. Relative paths are checked against dir but returned relative so
// they can be used as exec.Cmd.Path together with exec.Cmd.Dir.
//
// Unlike exec.LookPath, results found through a relative PATH entry are
// returned rather than rejected.
func LookPath(fsys afero.Fs, dir, pathEnv, file string) (string, error) {
	if strings.Contains(file, "/") {
		if err := findExecutable(fsys, resolve(dir, file)); err != nil {
			return "", err
		}
		return file, nil
	}

	for _, d := range filepath.SplitList(pathEnv) {
		if d == "" {
			// Unix shell semantics: path element "" means "."
			d = "."
		}
		path := filepath.Join(d, file)
		if err := findExecutable(fsys, resolve(dir, path)); err == nil {
			if !strings.Contains(path, "/") {
				path = "./" + path
			}
			return path, nil
		}
	}
	return "", ErrNotFound
}
