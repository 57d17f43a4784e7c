// Package history persists accepted command lines.
package history

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Store is an append-only history file holding one line per entry.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore creates a store for the file at path.
func NewStore(fsys afero.Fs, path string) *Store {
	return &Store{fs: fsys, path: path}
}

// Path is the location of the history file.
func (s *Store) Path() string {
	return s.path
}

// Load reads every entry in file order. A missing file is an empty history.
func (s *Store) Load() ([]string, error) {
	fd, err := s.fs.Open(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, err
	}
	defer fd.Close()

	var out []string
	scanner := bufio.NewScanner(fd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out, scanner.Err()
}

// Append adds line to the end of the file, creating it and its directory if
// needed.
func (s *Store) Append(line string) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}

	fd, err := s.fs.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	if _, err := fd.Write([]byte(line + "\n")); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}
