package editor

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/josephlewis42/shesh/core/shell"
	"github.com/spf13/afero"
)

// Completer produces tab completion candidates from PATH and the
// filesystem.
type Completer struct {
	Fs afero.Fs
	// Dir is the directory relative paths are completed in, "." if empty.
	Dir    string
	Getenv shell.Getenv
	// Builtins are offered alongside PATH executables.
	Builtins []string
}

// NewCompleter creates a completer over the real filesystem and environment.
func NewCompleter(builtins []string) *Completer {
	return &Completer{
		Fs:       afero.NewOsFs(),
		Dir:      ".",
		Getenv:   os.Getenv,
		Builtins: builtins,
	}
}

func (c *Completer) getenv(key string) string {
	if c.Getenv == nil {
		return os.Getenv(key)
	}
	return c.Getenv(key)
}

func (c *Completer) fs() afero.Fs {
	if c.Fs == nil {
		return afero.NewOsFs()
	}
	return c.Fs
}

// Complete picks candidates based on where the buffer ends:
//
//   - after whitespace, entries of the working directory
//   - inside the first word, command names starting with it
//   - inside a later word, paths starting with it
//
// Candidates starting with $HOME are shortened to start with ~.
func (c *Completer) Complete(input string) []string {
	fields := strings.Fields(input)

	var candidates []string
	switch {
	case strings.HasSuffix(input, " ") || strings.HasSuffix(input, "\t"):
		candidates = c.Paths("")
	case len(fields) == 0:
		return nil
	case len(fields) == 1:
		candidates = c.Commands(fields[0])
	default:
		candidates = c.Paths(fields[len(fields)-1])
	}

	home := c.getenv(shell.EnvHome)
	if home == "" || home == "/" {
		return candidates
	}
	for i, candidate := range candidates {
		if strings.HasPrefix(candidate, home) {
			candidates[i] = "~" + strings.TrimPrefix(candidate, home)
		}
	}
	return candidates
}

// Commands lists the builtins and the files in each PATH directory whose
// names start with prefix, sorted and without duplicates.
func (c *Completer) Commands(prefix string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for _, name := range c.Builtins {
		add(name)
	}

	for _, dir := range filepath.SplitList(c.getenv("PATH")) {
		if dir == "" {
			dir = "."
		}
		if !filepath.IsAbs(dir) && c.Dir != "" {
			dir = filepath.Join(c.Dir, dir)
		}
		entries, err := afero.ReadDir(c.fs(), dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				add(entry.Name())
			}
		}
	}

	sort.Strings(out)
	return out
}

// Paths lists the entries matching a partial path. The directory part of
// prefix is kept as typed (after tilde expansion) and directories get a
// trailing slash. Hidden entries are only listed if the partial name starts
// with a dot.
func (c *Completer) Paths(prefix string) []string {
	expanded := shell.ExpandTilde(prefix, c.getenv)

	dirPart, base := "", expanded
	if i := strings.LastIndex(expanded, "/"); i >= 0 {
		dirPart, base = expanded[:i+1], expanded[i+1:]
	}

	listDir := dirPart
	if listDir == "" {
		listDir = "."
	}
	if !filepath.IsAbs(listDir) && c.Dir != "" {
		listDir = filepath.Join(c.Dir, listDir)
	}

	entries, err := afero.ReadDir(c.fs(), listDir)
	if err != nil {
		return nil
	}

	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}

		candidate := dirPart + name
		if entry.IsDir() {
			candidate += "/"
		}
		out = append(out, candidate)
	}
	return out
}
