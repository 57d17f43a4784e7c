package process

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephlewis42/shesh/core/shell"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEngine struct {
	*Engine
	dir    string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	te := &testEngine{
		dir:    t.TempDir(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	te.Engine = &Engine{
		Stdin:  strings.NewReader(""),
		Stdout: te.stdout,
		Stderr: te.stderr,
		Dir:    te.dir,
		Fs:     afero.NewOsFs(),
		Getenv: os.Getenv,
		Log:    zerolog.Nop(),
	}
	return te
}

func (te *testEngine) readFile(t *testing.T, name string) string {
	t.Helper()

	content, err := os.ReadFile(filepath.Join(te.dir, name))
	require.NoError(t, err)
	return string(content)
}

func TestEngine_Execute(t *testing.T) {
	te := newTestEngine(t)

	require.NoError(t, te.Execute(context.Background(), "echo", []string{"hello", "world"}))
	assert.Equal(t, "hello world\n", te.stdout.String())
}

func TestEngine_Execute_notFound(t *testing.T) {
	te := newTestEngine(t)

	err := te.Execute(context.Background(), "shesh-no-such-command", nil)
	require.Error(t, err)
	assert.Equal(t, shell.NotFound, shell.KindOf(err))
	assert.Equal(t, "command not found: shesh-no-such-command", err.Error())
}

func TestEngine_Execute_exitStatus(t *testing.T) {
	te := newTestEngine(t)

	err := te.Execute(context.Background(), "sh", []string{"-c", "echo oops >&2; exit 3"})
	require.Error(t, err)
	assert.True(t, IsExitStatus(err))
	assert.Equal(t, shell.Other, shell.KindOf(err))
	assert.Equal(t, "oops\n", te.stderr.String())
}

func TestEngine_Execute_notExecutable(t *testing.T) {
	te := newTestEngine(t)
	require.NoError(t, os.WriteFile(filepath.Join(te.dir, "script.sh"), []byte("echo hi\n"), 0644))

	err := te.Execute(context.Background(), "./script.sh", nil)
	require.Error(t, err)
	assert.Equal(t, shell.Other, shell.KindOf(err))
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, fs.ErrPermission.Error(), err.Error())
}

func TestEngine_Execute_workingDir(t *testing.T) {
	te := newTestEngine(t)

	require.NoError(t, te.Execute(context.Background(), "pwd", nil))
	actual, err := filepath.EvalSymlinks(strings.TrimSpace(te.stdout.String()))
	require.NoError(t, err)
	expected, err := filepath.EvalSymlinks(te.dir)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func TestEngine_ExecuteWithRedirect(t *testing.T) {
	ctx := context.Background()

	t.Run("output-truncates", func(t *testing.T) {
		te := newTestEngine(t)
		out := []shell.Redirect{{Kind: shell.RedirectOutput, Path: "out"}}

		require.NoError(t, te.ExecuteWithRedirect(ctx, []string{"echo", "first"}, out))
		require.NoError(t, te.ExecuteWithRedirect(ctx, []string{"echo", "second"}, out))

		assert.Equal(t, "second\n", te.readFile(t, "out"))
		assert.Empty(t, te.stdout.String())
	})

	t.Run("append-concatenates", func(t *testing.T) {
		te := newTestEngine(t)
		out := []shell.Redirect{{Kind: shell.RedirectAppend, Path: "out"}}

		require.NoError(t, te.ExecuteWithRedirect(ctx, []string{"echo", "first"}, out))
		require.NoError(t, te.ExecuteWithRedirect(ctx, []string{"echo", "second"}, out))

		assert.Equal(t, "first\nsecond\n", te.readFile(t, "out"))
	})

	t.Run("input", func(t *testing.T) {
		te := newTestEngine(t)
		require.NoError(t, os.WriteFile(filepath.Join(te.dir, "in"), []byte("from file\n"), 0644))

		err := te.ExecuteWithRedirect(ctx, []string{"cat"}, []shell.Redirect{
			{Kind: shell.RedirectInput, Path: "in"},
		})
		require.NoError(t, err)
		assert.Equal(t, "from file\n", te.stdout.String())
	})

	t.Run("last-output-wins", func(t *testing.T) {
		te := newTestEngine(t)

		err := te.ExecuteWithRedirect(ctx, []string{"echo", "hi"}, []shell.Redirect{
			{Kind: shell.RedirectOutput, Path: "a"},
			{Kind: shell.RedirectOutput, Path: "b"},
		})
		require.NoError(t, err)
		assert.Equal(t, "", te.readFile(t, "a"))
		assert.Equal(t, "hi\n", te.readFile(t, "b"))
	})

	t.Run("missing-input", func(t *testing.T) {
		te := newTestEngine(t)

		err := te.ExecuteWithRedirect(ctx, []string{"cat"}, []shell.Redirect{
			{Kind: shell.RedirectInput, Path: "missing"},
		})
		require.Error(t, err)
		assert.Equal(t, shell.NotFound, shell.KindOf(err))
	})

	t.Run("missing-command", func(t *testing.T) {
		te := newTestEngine(t)

		err := te.ExecuteWithRedirect(ctx, nil, []shell.Redirect{
			{Kind: shell.RedirectOutput, Path: "out"},
		})
		require.Error(t, err)
		assert.Equal(t, shell.InvalidInput, shell.KindOf(err))

		_, statErr := os.Stat(filepath.Join(te.dir, "out"))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestEngine_ExecutePipeline(t *testing.T) {
	ctx := context.Background()

	t.Run("echo-cat", func(t *testing.T) {
		te := newTestEngine(t)

		err := te.ExecutePipeline(ctx, shell.ParsePipeline("echo hi | cat"))
		require.NoError(t, err)
		assert.Equal(t, "hi\n", te.stdout.String())
	})

	t.Run("three-stages", func(t *testing.T) {
		te := newTestEngine(t)

		err := te.ExecutePipeline(ctx, [][]string{
			{"printf", `b\na\nc\n`},
			{"sort"},
			{"head", "-n", "2"},
		})
		require.NoError(t, err)
		assert.Equal(t, "a\nb\n", te.stdout.String())
	})

	t.Run("stage-redirects", func(t *testing.T) {
		te := newTestEngine(t)
		require.NoError(t, os.WriteFile(filepath.Join(te.dir, "in"), []byte("piped\n"), 0644))

		err := te.ExecutePipeline(ctx, shell.ParsePipeline("cat < in | cat > out"))
		require.NoError(t, err)
		assert.Equal(t, "piped\n", te.readFile(t, "out"))
		assert.Empty(t, te.stdout.String())
	})

	t.Run("final-stage-status", func(t *testing.T) {
		te := newTestEngine(t)

		assert.NoError(t, te.ExecutePipeline(ctx, [][]string{{"false"}, {"true"}}))

		err := te.ExecutePipeline(ctx, [][]string{{"true"}, {"false"}})
		assert.True(t, IsExitStatus(err))
	})

	t.Run("empty-stage", func(t *testing.T) {
		te := newTestEngine(t)

		err := te.ExecutePipeline(ctx, shell.ParsePipeline("echo hi | | cat"))
		require.Error(t, err)
		assert.Equal(t, shell.InvalidInput, shell.KindOf(err))
		assert.Empty(t, te.stdout.String())
	})

	t.Run("missing-redirect-target", func(t *testing.T) {
		te := newTestEngine(t)

		err := te.ExecutePipeline(ctx, shell.ParsePipeline("echo hi | cat >"))
		require.Error(t, err)
		assert.Equal(t, shell.InvalidInput, shell.KindOf(err))
	})

	t.Run("stage-not-found", func(t *testing.T) {
		te := newTestEngine(t)

		err := te.ExecutePipeline(ctx, shell.ParsePipeline("echo hi | shesh-no-such-command | cat"))
		require.Error(t, err)
		assert.Equal(t, shell.NotFound, shell.KindOf(err))
	})
}

func TestEngine_background(t *testing.T) {
	t.Run("command", func(t *testing.T) {
		te := newTestEngine(t)

		job := te.ExecuteBackground("sh", []string{"-c", "echo quiet"})
		require.NoError(t, job.Wait())

		// Unredirected streams go to the null device.
		assert.Empty(t, te.stdout.String())
		assert.Equal(t, `sh -c "echo quiet"`, job.Command)
	})

	t.Run("redirect", func(t *testing.T) {
		te := newTestEngine(t)

		job := te.ExecuteBackgroundWithRedirect([]string{"echo", "bg"}, []shell.Redirect{
			{Kind: shell.RedirectOutput, Path: "out"},
		})
		require.NoError(t, job.Wait())
		assert.Equal(t, "bg\n", te.readFile(t, "out"))
		assert.Equal(t, "echo bg > out", job.Command)
	})

	t.Run("pipeline", func(t *testing.T) {
		te := newTestEngine(t)

		job := te.ExecuteBackgroundPipeline(shell.ParsePipeline("echo piped | cat > out"))
		require.NoError(t, job.Wait())
		assert.Equal(t, "piped\n", te.readFile(t, "out"))
		assert.Equal(t, "echo piped | cat > out", job.Command)
	})

	t.Run("dir-fixed-at-start", func(t *testing.T) {
		te := newTestEngine(t)
		sub := filepath.Join(te.dir, "sub")
		require.NoError(t, os.Mkdir(sub, 0755))

		job := te.ExecuteBackgroundWithRedirect([]string{"sh", "-c", "sleep 0.1; pwd"}, []shell.Redirect{
			{Kind: shell.RedirectOutput, Path: "out"},
		})
		te.Dir = sub
		require.NoError(t, job.Wait())

		want, err := filepath.EvalSymlinks(te.dir)
		require.NoError(t, err)
		assert.Equal(t, want+"\n", te.readFile(t, "out"))
		assert.NoFileExists(t, filepath.Join(sub, "out"))
	})

	t.Run("tracked", func(t *testing.T) {
		te := newTestEngine(t)

		first := te.ExecuteBackground("true", nil)
		second := te.ExecuteBackground("false", nil)

		// The result is the last job's.
		assert.True(t, IsExitStatus(te.Jobs.Wait()))
		assert.NoError(t, first.Err())
		assert.True(t, IsExitStatus(second.Err()))
		assert.Len(t, te.Jobs.List(), 2)
	})
}
