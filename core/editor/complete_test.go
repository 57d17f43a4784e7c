package editor

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompleter(t *testing.T) *Completer {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, path := range []string{
		"/bin/cat",
		"/bin/cal",
		"/usr/bin/cargo",
		"/usr/bin/cat",
		"/home/user/notes.txt",
		"/home/user/.profile",
		"/home/user/src/main.go",
		"/work/readme.md",
		"/work/run.sh",
		"/work/.hidden",
	} {
		require.NoError(t, afero.WriteFile(fs, path, nil, 0755))
	}
	require.NoError(t, fs.MkdirAll("/work/reports", 0755))

	env := map[string]string{
		"PATH": "/bin:/usr/bin:/missing",
		"HOME": "/home/user",
	}
	return &Completer{
		Fs:       fs,
		Dir:      "/work",
		Getenv:   func(key string) string { return env[key] },
		Builtins: []string{"cd", "alias"},
	}
}

func TestCompleter_Complete(t *testing.T) {
	c := newTestCompleter(t)

	cases := map[string]struct {
		input    string
		expected []string
	}{
		"empty":           {"", nil},
		"command":         {"ca", []string{"cal", "cargo", "cat"}},
		"builtin":         {"c", []string{"cal", "cargo", "cat", "cd"}},
		"trailing-space":  {"cat ", []string{"readme.md", "reports/", "run.sh"}},
		"argument":        {"cat re", []string{"readme.md", "reports/"}},
		"hidden":          {"cat .h", []string{".hidden"}},
		"tilde":           {"cat ~/", []string{"~/notes.txt", "~/src/"}},
		"home-absolute":   {"cat /home/user/s", []string{"~/src/"}},
		"absolute":        {"ls /work/ru", []string{"/work/run.sh"}},
		"nested-relative": {"ls reports/", nil},
		"missing-dir":     {"ls /nope/x", nil},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.Complete(tc.input))
		})
	}
}

func TestCompleter_Paths_hiddenHome(t *testing.T) {
	c := newTestCompleter(t)

	assert.Equal(t, []string{"/home/user/.profile"}, c.Paths("~/.p"))
}

func TestCompleter_Commands_relativePath(t *testing.T) {
	c := newTestCompleter(t)
	require.NoError(t, afero.WriteFile(c.Fs, "/work/tools/rebuild", nil, 0755))
	c.Getenv = func(key string) string {
		if key == "PATH" {
			return "tools:/bin"
		}
		return ""
	}

	assert.Equal(t, []string{"rebuild"}, c.Commands("reb"))
	assert.Equal(t, []string{"cal", "cat"}, c.Commands("ca"))
}
