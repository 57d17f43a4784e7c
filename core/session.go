package core

import (
	"strings"
	"sync"
	"unicode"
)

// Alias is a named replacement for the first word of a line.
type Alias struct {
	Name  string
	Value string
}

// Session holds the state builtins share: the alias table and the directory
// cd - returns to. It's safe for concurrent use.
type Session struct {
	mu          sync.Mutex
	aliases     []Alias
	previousDir string
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// SetAlias defines or replaces an alias. New aliases are listed after
// existing ones.
func (s *Session) SetAlias(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.aliases {
		if s.aliases[i].Name == name {
			s.aliases[i].Value = value
			return
		}
	}
	s.aliases = append(s.aliases, Alias{Name: name, Value: value})
}

// LookupAlias returns the replacement for name.
func (s *Session) LookupAlias(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, alias := range s.aliases {
		if alias.Name == name {
			return alias.Value, true
		}
	}
	return "", false
}

// Aliases returns a copy of the alias table in definition order.
func (s *Session) Aliases() []Alias {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Alias, len(s.aliases))
	copy(out, s.aliases)
	return out
}

// PreviousDir returns the directory recorded by the last successful cd.
func (s *Session) PreviousDir() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.previousDir, s.previousDir != ""
}

// SetPreviousDir records dir for cd -.
func (s *Session) SetPreviousDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.previousDir = dir
}

// ExpandAlias replaces the first word of line if it names an alias. The
// replacement isn't expanded again.
func ExpandAlias(line string, lookup func(name string) (string, bool)) string {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)

	end := strings.IndexFunc(trimmed, unicode.IsSpace)
	if end < 0 {
		end = len(trimmed)
	}
	if end == 0 {
		return line
	}

	value, ok := lookup(trimmed[:end])
	if !ok {
		return line
	}
	return value + trimmed[end:]
}
