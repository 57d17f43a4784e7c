package shell

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleTokenize() {
	fmt.Printf("%q\n", Tokenize(`"a b" c`))
	fmt.Printf("%q\n", Tokenize(`echo 'it"s' \"x\"`))

	// Output: ["a b" "c"]
	// ["echo" "it\"s" "\"x\""]
}

func TestTokenize(t *testing.T) {
	cases := map[string]struct {
		input    string
		expected []string
	}{
		"empty":              {"", nil},
		"blank":              {"   \t ", nil},
		"simple":             {"ls -l /tmp", []string{"ls", "-l", "/tmp"}},
		"repeated-spaces":    {"a    b", []string{"a", "b"}},
		"tabs":               {"a\tb", []string{"a", "b"}},
		"double-quoted":      {`"a b" c`, []string{"a b", "c"}},
		"single-quoted":      {`'a  b'`, []string{"a  b"}},
		"other-quote-inside": {`"it's"`, []string{"it's"}},
		"adjacent-quotes":    {`a"b c"d`, []string{"ab cd"}},
		"escaped-space":      {`a\ b`, []string{"a b"}},
		"escape-in-quotes":   {`"a\"b"`, []string{`a"b`}},
		"escape-in-single":   {`'a\'b'`, []string{"a'b"}},
		"escaped-backslash":  {`a\\b`, []string{`a\b`}},
		"trailing-backslash": {`a\`, []string{"a"}},
		"empty-quoted":       {`echo ""`, []string{"echo", ""}},
		"unterminated":       {`echo "a b`, []string{"echo", "a b"}},
		"utf8":               {"echo héllo wörld", []string{"echo", "héllo", "wörld"}},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, Tokenize(tc.input))
		})
	}
}

func TestJoin_roundTrip(t *testing.T) {
	cases := [][]string{
		{"a b", "c"},
		{"echo", ""},
		{`back\slash`, `"quoted"`, "it's"},
		{"tab\there", "ünïcode"},
		{"plain", "words", "only"},
	}

	for _, tokens := range cases {
		t.Run(Join(tokens), func(t *testing.T) {
			rendered := Join(tokens)
			assert.Equal(t, tokens, Tokenize(rendered))

			// Rendering again is stable.
			assert.Equal(t, rendered, Join(Tokenize(rendered)))
		})
	}
}

func TestQuote(t *testing.T) {
	cases := map[string]string{
		"plain":  "plain",
		"a b":    `"a b"`,
		"":       `""`,
		`a"b`:    `"a\"b"`,
		`a\b`:    `"a\\b"`,
		"it's":   `"it's"`,
		"x=1,2":  "x=1,2",
		"~/path": "~/path",
	}

	for input, expected := range cases {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, Quote(input))
		})
	}
}

func TestStripComment(t *testing.T) {
	cases := map[string]struct {
		input    string
		expected string
	}{
		"no-comment":     {"echo hi", "echo hi"},
		"whole-line":     {"# just a comment", ""},
		"trailing":       {"echo hi # comment", "echo hi "},
		"inside-word":    {"echo a#b", "echo a#b"},
		"double-quoted":  {`echo "# not"`, `echo "# not"`},
		"single-quoted":  {`echo '# not' # yes`, `echo '# not' `},
		"escaped":        {`echo \# not`, `echo \# not`},
		"after-operator": {"ls;# comment", "ls;# comment"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, StripComment(tc.input))
		})
	}
}
