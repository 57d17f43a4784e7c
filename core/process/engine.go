// Package process maps parsed commands onto OS processes: plain commands,
// commands with redirected streams, pipelines and background jobs.
package process

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"

	"github.com/josephlewis42/shesh/core/shell"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// EnvPath is the variable holding the command search path.
const EnvPath = "PATH"

// Engine spawns external programs.
//
// Foreground entry points block until every process they started has exited.
// Background entry points return a Job immediately and connect standard
// streams that aren't redirected to the null device.
type Engine struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Dir is the working directory for children, the shell's if empty.
	Dir string
	// Fs is used to resolve executables and open redirect targets.
	Fs afero.Fs
	// Getenv resolves PATH.
	Getenv shell.Getenv
	// Jobs records background work.
	Jobs *Jobs

	Log zerolog.Logger
}

// NewEngine creates an engine attached to the process's standard streams.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Fs:     afero.NewOsFs(),
		Getenv: os.Getenv,
		Jobs:   NewJobs(log),
		Log:    log,
	}
}

func (e *Engine) fs() afero.Fs {
	if e.Fs == nil {
		return afero.NewOsFs()
	}
	return e.Fs
}

func (e *Engine) getenv(key string) string {
	if e.Getenv == nil {
		return os.Getenv(key)
	}
	return e.Getenv(key)
}

func (e *Engine) jobs() *Jobs {
	if e.Jobs == nil {
		e.Jobs = NewJobs(e.Log)
	}
	return e.Jobs
}

// spawnEnv is the part of the engine a spawn depends on, captured when work
// starts so a later cd doesn't affect running jobs.
type spawnEnv struct {
	dir     string
	fs      afero.Fs
	pathEnv string
}

func (e *Engine) env() spawnEnv {
	return spawnEnv{
		dir:     e.Dir,
		fs:      e.fs(),
		pathEnv: e.getenv(EnvPath),
	}
}

func (e *Engine) foreground() Streams {
	return Streams{
		Stdin:  e.Stdin,
		Stdout: e.Stdout,
		Stderr: e.Stderr,
	}
}

// IsExitStatus reports whether err only signals that a child exited
// unsuccessfully. The child has already reported the problem itself.
func IsExitStatus(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

func startError(name string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return shell.NotFoundf("command not found: %s", name)
	default:
		return shell.Wrap(shell.Other, err)
	}
}

func (e *Engine) command(ctx context.Context, env spawnEnv, argv []string, streams *Streams) (*exec.Cmd, error) {
	if len(argv) == 0 {
		return nil, shell.InvalidInputf("syntax error: missing command")
	}

	path, err := LookPath(env.fs, env.dir, env.pathEnv, argv[0])
	if err != nil {
		return nil, startError(argv[0], err)
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Dir = env.dir
	cmd.Stdin = streams.Stdin
	cmd.Stdout = streams.Stdout
	cmd.Stderr = streams.Stderr
	return cmd, nil
}

func (e *Engine) run(ctx context.Context, env spawnEnv, base Streams, argv []string, redirects []shell.Redirect) error {
	if len(argv) == 0 {
		return shell.InvalidInputf("syntax error: missing command")
	}

	streams, err := OpenRedirects(env.fs, env.dir, base, redirects)
	if err != nil {
		return err
	}
	defer streams.Close()

	cmd, err := e.command(ctx, env, argv, streams)
	if err != nil {
		return err
	}

	e.Log.Debug().Strs("argv", argv).Msg("spawning")
	if err := cmd.Start(); err != nil {
		return startError(argv[0], err)
	}
	return shell.Wrap(shell.Other, cmd.Wait())
}

// Execute runs program with args on the engine's streams and waits for it.
// A missing executable is reported as a NotFound "command not found" error,
// an unsuccessful exit as an Other error wrapping *exec.ExitError.
func (e *Engine) Execute(ctx context.Context, program string, args []string) error {
	return e.run(ctx, e.env(), e.foreground(), append([]string{program}, args...), nil)
}

// ExecuteWithRedirect opens every redirect target, binds them to the child's
// streams, then runs cmd and waits for it.
func (e *Engine) ExecuteWithRedirect(ctx context.Context, cmd []string, redirects []shell.Redirect) error {
	return e.run(ctx, e.env(), e.foreground(), cmd, redirects)
}

// ExecutePipeline connects the stdout of each stage to the stdin of the next,
// starts every stage, then waits for all of them. Each stage may carry its
// own redirects which replace its pipe ends. The result is the result of the
// final stage.
//
// Stages are checked before anything is spawned: an empty stage or a
// malformed redirect is an InvalidInput error.
func (e *Engine) ExecutePipeline(ctx context.Context, stages [][]string) error {
	return e.runPipeline(ctx, e.env(), e.foreground(), stages)
}

// ParsePipelineStages parses the redirects of every stage. An empty pipeline,
// an empty stage or a malformed redirect is an InvalidInput error.
func ParsePipelineStages(stages [][]string) ([]*shell.ParsedCommand, error) {
	if len(stages) == 0 {
		return nil, shell.InvalidInputf("syntax error: empty pipeline")
	}

	parsed := make([]*shell.ParsedCommand, len(stages))
	for i, stage := range stages {
		p, err := shell.ParseRedirects(stage)
		if err != nil {
			return nil, err
		}
		if len(p.Cmd) == 0 {
			return nil, shell.InvalidInputf("syntax error near unexpected token `|'")
		}
		parsed[i] = p
	}
	return parsed, nil
}

func (e *Engine) runPipeline(ctx context.Context, env spawnEnv, base Streams, stages [][]string) error {
	parsed, err := ParsePipelineStages(stages)
	if err != nil {
		return err
	}

	var (
		started []*exec.Cmd
		// The shell's copies of the pipe ends are closed once every stage
		// has been started so readers see EOF when writers exit.
		pipeEnds []*os.File
		opened   []*Streams
	)
	cleanup := func() {
		for _, f := range pipeEnds {
			f.Close()
		}
		pipeEnds = nil
		for _, s := range opened {
			s.Close()
		}
		opened = nil
	}
	defer cleanup()

	waitAll := func() []error {
		errs := make([]error, len(started))
		for i, cmd := range started {
			errs[i] = cmd.Wait()
		}
		return errs
	}

	var prevRead *os.File
	for i, p := range parsed {
		stageBase := base
		if prevRead != nil {
			stageBase.Stdin = prevRead
		}

		var nextRead *os.File
		if i < len(parsed)-1 {
			r, w, err := os.Pipe()
			if err != nil {
				cleanup()
				waitAll()
				return shell.Wrap(shell.Other, err)
			}
			pipeEnds = append(pipeEnds, r, w)
			stageBase.Stdout = w
			nextRead = r
		}

		streams, err := OpenRedirects(env.fs, env.dir, stageBase, p.Redirects)
		if err == nil {
			opened = append(opened, streams)
			var cmd *exec.Cmd
			if cmd, err = e.command(ctx, env, p.Cmd, streams); err == nil {
				e.Log.Debug().Strs("argv", p.Cmd).Int("stage", i).Msg("spawning")
				if err = cmd.Start(); err != nil {
					err = startError(p.Cmd[0], err)
				} else {
					started = append(started, cmd)
				}
			}
		}
		if err != nil {
			cleanup()
			waitAll()
			return err
		}

		prevRead = nextRead
	}

	cleanup()
	errs := waitAll()
	for i, err := range errs[:len(errs)-1] {
		if err != nil {
			e.Log.Debug().Err(err).Int("stage", i).Msg("pipeline stage failed")
		}
	}
	return shell.Wrap(shell.Other, errs[len(errs)-1])
}

// ExecuteBackground runs program with args as a job. The working directory,
// filesystem and PATH are fixed when the job starts.
func (e *Engine) ExecuteBackground(program string, args []string) *Job {
	argv := append([]string{program}, args...)
	env := e.env()
	return e.jobs().Start(shell.Join(argv), func() error {
		return e.run(context.Background(), env, Streams{}, argv, nil)
	})
}

// ExecuteBackgroundWithRedirect runs cmd with its redirects as a job.
func (e *Engine) ExecuteBackgroundWithRedirect(cmd []string, redirects []shell.Redirect) *Job {
	description := shell.Join(cmd)
	for _, r := range redirects {
		description += " " + r.String()
	}

	env := e.env()
	return e.jobs().Start(description, func() error {
		return e.run(context.Background(), env, Streams{}, cmd, redirects)
	})
}

// ExecuteBackgroundPipeline runs stages as a single job.
func (e *Engine) ExecuteBackgroundPipeline(stages [][]string) *Job {
	var description string
	for i, stage := range stages {
		if i > 0 {
			description += " | "
		}
		description += shell.Join(stage)
	}

	env := e.env()
	return e.jobs().Start(description, func() error {
		return e.runPipeline(context.Background(), env, Streams{}, stages)
	})
}
