// Package shell turns raw command lines into executable structures.
//
// A line is processed in phases:
//
// 1. The line is broken into segments on the sequencing operators ;, && and &
// (see SplitCommands).
//
// 2. Each segment has variables, a leading tilde, quotes, braces and
// wildcards expanded into a list of arguments (see Expander.Expand).
//
// 3. Arguments are split into pipeline stages on | (see ParsePipeline) and
// redirection operators and their operands are removed from each stage's
// argument list (see ParseRedirects).
//
// 4. The caller executes a builtin or external program for each stage.
package shell

import (
	"strings"
)

// Separator is the operator that ended a segment. It decides how the next
// segment is sequenced.
type Separator int

const (
	// SepNone marks the last segment of a line.
	SepNone Separator = iota
	// SepSequential is ";", the next segment always runs.
	SepSequential
	// SepAndAnd is "&&", the next segment runs only if this one succeeded.
	SepAndAnd
	// SepBackground is "&", this segment runs in the background.
	SepBackground
)

func (s Separator) String() string {
	switch s {
	case SepSequential:
		return ";"
	case SepAndAnd:
		return "&&"
	case SepBackground:
		return "&"
	default:
		return ""
	}
}

// Segment is one command string between sequencing operators.
type Segment struct {
	Text      string
	Separator Separator
}

// SplitCommands splits input on unquoted ;, && and &. Quotes and escapes
// are kept in the segment text so the segment can be tokenized later. A
// trailing segment is only returned if it's non-blank.
func SplitCommands(input string) []Segment {
	var (
		segments []Segment
		current  strings.Builder
		inQuote  = noQuote
		escape   bool
	)

	emit := func(sep Separator) {
		segments = append(segments, Segment{
			Text:      strings.TrimSpace(current.String()),
			Separator: sep,
		})
		current.Reset()
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case escape:
			current.WriteRune(r)
			escape = false
		case r == '\\':
			current.WriteRune(r)
			escape = true
		case r == '"' || r == '\'':
			if inQuote == r {
				inQuote = noQuote
			} else if inQuote == noQuote {
				inQuote = r
			}
			current.WriteRune(r)
		case r == ';' && inQuote == noQuote:
			emit(SepSequential)
		case r == '&' && inQuote == noQuote:
			if i+1 < len(runes) && runes[i+1] == '&' {
				i++
				emit(SepAndAnd)
			} else {
				emit(SepBackground)
			}
		default:
			current.WriteRune(r)
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		emit(SepNone)
	}

	return segments
}

// ParsePipeline splits input on | into stages of whitespace separated
// arguments.
//
// Splitting is not quote aware: a | inside quotes still separates stages and
// quoted whitespace separates arguments.
func ParsePipeline(input string) [][]string {
	var stages [][]string
	for _, part := range strings.Split(input, "|") {
		stages = append(stages, strings.Fields(part))
	}
	return stages
}

// RedirectKind is the stream a redirect replaces and how the target is
// opened.
type RedirectKind int

const (
	// RedirectOutput truncates or creates the target and binds it to stdout.
	RedirectOutput RedirectKind = iota
	// RedirectAppend appends to or creates the target and binds it to stdout.
	RedirectAppend
	// RedirectInput opens the target for reading and binds it to stdin.
	RedirectInput
)

// Operator returns the shell operator for the kind.
func (k RedirectKind) Operator() string {
	switch k {
	case RedirectAppend:
		return ">>"
	case RedirectInput:
		return "<"
	default:
		return ">"
	}
}

// Redirect is a file based override of a standard stream.
type Redirect struct {
	Kind RedirectKind
	Path string
}

func (r Redirect) String() string {
	return r.Kind.Operator() + " " + r.Path
}

// ParsedCommand is a command with its redirects removed from the arguments.
type ParsedCommand struct {
	// Cmd holds the program followed by its arguments.
	Cmd []string
	// Redirects are in the order they appeared, later redirects of the same
	// direction win.
	Redirects []Redirect
}

func redirectKind(token string) (RedirectKind, bool) {
	switch token {
	case ">":
		return RedirectOutput, true
	case ">>":
		return RedirectAppend, true
	case "<":
		return RedirectInput, true
	default:
		return 0, false
	}
}

// IsRedirectOperator reports whether token is >, >> or <.
func IsRedirectOperator(token string) bool {
	_, ok := redirectKind(token)
	return ok
}

// ParseRedirects removes >, >> and < and the filename following each from
// tokens. Every other token is kept in order. An operator without a filename
// is an InvalidInput error.
func ParseRedirects(tokens []string) (*ParsedCommand, error) {
	out := &ParsedCommand{}

	for i := 0; i < len(tokens); i++ {
		kind, ok := redirectKind(tokens[i])
		if !ok {
			out.Cmd = append(out.Cmd, tokens[i])
			continue
		}

		if i+1 >= len(tokens) {
			return nil, InvalidInputf("syntax error: %s requires a file", tokens[i])
		}
		i++
		out.Redirects = append(out.Redirects, Redirect{Kind: kind, Path: tokens[i]})
	}

	return out, nil
}
