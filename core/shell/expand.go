package shell

import (
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/afero"
)

// EnvHome is the variable used for tilde expansion.
const EnvHome = "HOME"

// Getenv looks up an environment variable, os.Getenv satisfies it.
type Getenv func(key string) string

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ExpandVars replaces every $NAME with the value of the variable NAME, or
// the empty string if it's unset. NAME is the longest run of letters, digits
// and underscores after the $. A $ that isn't followed by a name is kept.
func ExpandVars(input string, getenv Getenv) string {
	var out strings.Builder
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		if runes[i] != '$' {
			out.WriteRune(runes[i])
			continue
		}

		end := i + 1
		for end < len(runes) && isNameRune(runes[end]) {
			end++
		}
		if end == i+1 {
			out.WriteRune('$')
			continue
		}

		out.WriteString(getenv(string(runes[i+1 : end])))
		i = end - 1
	}

	return out.String()
}

// ExpandTilde replaces a leading "~" or "~/" with $HOME, or "." if HOME
// isn't set. Other inputs are returned unchanged.
func ExpandTilde(path string, getenv Getenv) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home := getenv(EnvHome)
	if home == "" {
		home = "."
	}
	return home + path[1:]
}

// ExpandBraces expands {a,b} alternatives into the cartesian product of
// their items, left to right and outer to inner.
//
// Items are trimmed and empty items are dropped, so "x{}" expands to
// nothing. Unmatched braces are tolerated.
func ExpandBraces(input string) []string {
	var stack [][]string
	current := []string{""}

	for _, r := range input {
		switch r {
		case '{':
			stack = append(stack, current)
			current = []string{""}

		case '}':
			var items []string
			for _, partial := range current {
				for _, item := range strings.Split(partial, ",") {
					if item = strings.TrimSpace(item); item != "" {
						items = append(items, item)
					}
				}
			}

			prefixes := []string{""}
			if n := len(stack); n > 0 {
				prefixes = stack[n-1]
				stack = stack[:n-1]
			}

			next := make([]string, 0, len(prefixes)*len(items))
			for _, prefix := range prefixes {
				for _, item := range items {
					next = append(next, prefix+item)
				}
			}
			current = next

		default:
			for i := range current {
				current[i] += string(r)
			}
		}
	}

	return current
}

// WildcardMatch reports whether name matches pattern. Only four pattern
// shapes are supported: "*", "*suffix", "prefix*" and an exact literal.
func WildcardMatch(name, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	switch {
	case pattern == "*":
		return true
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(name, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	default:
		return name == pattern
	}
}

// Expander runs the expansion pipeline against an environment and a
// working directory.
type Expander struct {
	// Fs is the filesystem used for wildcard matching.
	Fs afero.Fs
	// Dir is the directory wildcards are matched in, "." if empty.
	Dir string
	// Getenv resolves variables, os.Getenv if nil.
	Getenv Getenv
}

// NewOSExpander creates an expander over the real environment and the
// process working directory.
func NewOSExpander() *Expander {
	return &Expander{
		Fs:     afero.NewOsFs(),
		Dir:    ".",
		Getenv: os.Getenv,
	}
}

func (e *Expander) getenv(key string) string {
	if e.Getenv == nil {
		return os.Getenv(key)
	}
	return e.Getenv(key)
}

// ExpandWildcard returns the sorted names of the entries in the working
// directory that match pattern. Matching is not recursive. A pattern with no
// matches, or an unreadable directory, yields nothing.
func (e *Expander) ExpandWildcard(pattern string) []string {
	dir := e.Dir
	if dir == "" {
		dir = "."
	}
	fs := e.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil
	}

	var out []string
	for _, entry := range entries {
		if WildcardMatch(entry.Name(), pattern) {
			out = append(out, entry.Name())
		}
	}
	sort.Strings(out)
	return out
}

// Expand turns a segment of raw text into its final argument list: variable
// expansion, tilde expansion, tokenization, then brace and wildcard
// expansion of each token.
//
// Tokens containing a * that match nothing are dropped.
func (e *Expander) Expand(segment string) []string {
	line := ExpandVars(segment, e.getenv)
	line = ExpandTilde(line, e.getenv)

	var out []string
	for _, token := range Tokenize(line) {
		for _, braced := range ExpandBraces(token) {
			if strings.Contains(braced, "*") {
				out = append(out, e.ExpandWildcard(braced)...)
				continue
			}
			out = append(out, braced)
		}
	}
	return out
}
