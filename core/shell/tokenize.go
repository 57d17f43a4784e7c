package shell

import (
	"strings"
)

const noQuote = rune(0)

func isBlank(r rune) bool {
	return r == ' ' || r == '\t'
}

// Tokenize splits input into arguments on unquoted whitespace.
//
// Single and double quotes toggle a quote mode and are removed from the
// output; a quote of the other kind inside a quote is literal text. A
// backslash escapes the next character verbatim, including inside quotes.
// A quoted empty string produces an empty token.
func Tokenize(input string) []string {
	var (
		tokens  []string
		buf     strings.Builder
		inQuote = noQuote
		escape  bool
		// quoted is set when the current token contains a quoted section, so
		// "" yields an empty token rather than nothing.
		quoted bool
	)

	flush := func() {
		if buf.Len() > 0 || quoted {
			tokens = append(tokens, buf.String())
		}
		buf.Reset()
		quoted = false
	}

	for _, r := range input {
		switch {
		case escape:
			buf.WriteRune(r)
			escape = false
		case r == '\\':
			escape = true
		case r == '"' || r == '\'':
			switch inQuote {
			case r:
				inQuote = noQuote
			case noQuote:
				inQuote = r
				quoted = true
			default:
				buf.WriteRune(r)
			}
		case isBlank(r) && inQuote == noQuote:
			flush()
		default:
			buf.WriteRune(r)
		}
	}
	flush()

	return tokens
}

// Quote renders a token so Tokenize reads it back unchanged.
func Quote(token string) string {
	if token != "" && !strings.ContainsAny(token, " \t\"'\\") {
		return token
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range token {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}

// Join renders tokens as a single line using Quote.
func Join(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = Quote(tok)
	}
	return strings.Join(quoted, " ")
}

// StripComment removes an unquoted comment: a # at the start of a word and
// everything after it.
func StripComment(line string) string {
	inQuote := noQuote
	escape := false
	wordStart := true

	for i, r := range line {
		switch {
		case escape:
			escape = false
		case r == '\\':
			escape = true
		case r == '"' || r == '\'':
			if inQuote == r {
				inQuote = noQuote
			} else if inQuote == noQuote {
				inQuote = r
			}
		case r == '#' && inQuote == noQuote && wordStart:
			return line[:i]
		}
		wordStart = isBlank(r) && inQuote == noQuote
	}

	return line
}
