package history

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/home/user/.local/share/shesh/history")

	lines, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, lines)

	require.NoError(t, store.Append("ls -l"))
	require.NoError(t, store.Append(`echo "a b"`))
	require.NoError(t, store.Append("ls -l"))

	lines, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"ls -l", `echo "a b"`, "ls -l"}, lines)

	raw, err := afero.ReadFile(fs, store.Path())
	require.NoError(t, err)
	assert.Equal(t, "ls -l\necho \"a b\"\nls -l\n", string(raw))
}

func TestStore_Load_skipsBlankLines(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/history", []byte("one\n\n  \ntwo"), 0600))

	lines, err := NewStore(fs, "/history").Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)
}
