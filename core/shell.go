// Package core is the interactive loop: it reads lines, expands aliases,
// sequences segments and dispatches them to builtins or the process engine.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/josephlewis42/shesh/core/config"
	"github.com/josephlewis42/shesh/core/editor"
	"github.com/josephlewis42/shesh/core/history"
	"github.com/josephlewis42/shesh/core/logger"
	"github.com/josephlewis42/shesh/core/process"
	"github.com/josephlewis42/shesh/core/shell"
	"github.com/rs/zerolog"
)

const (
	// interactivePrefix labels errors from lines typed at the prompt.
	interactivePrefix = "shesh"
	// startupPrefix labels errors from startup commands.
	startupPrefix = "startup"
)

// LineReader produces one line of input per call. It returns io.EOF when no
// more input is available.
type LineReader interface {
	ReadLine(prompt string, history []string) (string, error)
}

// Shell is a single interactive session.
type Shell struct {
	Session   *Session
	Engine    *process.Engine
	Expander  *shell.Expander
	Completer *editor.Completer

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Prompt string
	// History holds accepted lines, oldest first.
	History []string
	// HistoryStore persists accepted lines if set.
	HistoryStore *history.Store

	Log zerolog.Logger

	// Quit is set by exit, the loop stops before the next segment.
	Quit bool

	errColor *color.Color
	dir      string
}

// NewShell creates a shell in the process's working directory.
func NewShell(stdin io.Reader, stdout, stderr io.Writer, log zerolog.Logger) (*Shell, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	engine := process.NewEngine(log)
	engine.Stdin = stdin
	engine.Stdout = stdout
	engine.Stderr = stderr

	s := &Shell{
		Session:   NewSession(),
		Engine:    engine,
		Expander:  shell.NewOSExpander(),
		Completer: editor.NewCompleter(BuiltinNames()),
		Stdin:     stdin,
		Stdout:    stdout,
		Stderr:    stderr,
		Prompt:    config.DefaultPrompt,
		Log:       log,
		errColor:  color.New(color.FgRed),
	}
	s.setDir(dir)
	s.SetColor(false)

	return s, nil
}

// SetColor turns colored error messages on or off.
func (s *Shell) SetColor(enabled bool) {
	if enabled {
		s.errColor.EnableColor()
	} else {
		s.errColor.DisableColor()
	}
}

// Getenv reads the environment commands run with.
func (s *Shell) Getenv(key string) string {
	return os.Getenv(key)
}

// Dir is the shell's working directory.
func (s *Shell) Dir() string {
	return s.dir
}

func (s *Shell) setDir(dir string) {
	s.dir = dir
	s.Engine.Dir = dir
	s.Expander.Dir = dir
	s.Completer.Dir = dir
}

// Chdir changes the working directory and remembers the old one for cd -.
func (s *Shell) Chdir(target string) error {
	path := target
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}

	info, err := s.Engine.Fs.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return shell.NotFoundf("cd: no such file or directory: %s", target)
	case err != nil:
		return shell.Wrap(shell.Other, err)
	case !info.IsDir():
		return shell.InvalidInputf("cd: not a directory: %s", target)
	}

	previous := s.dir
	s.setDir(filepath.Clean(path))
	s.Session.SetPreviousDir(previous)

	s.Log.Debug().Str("from", previous).Str("to", s.dir).Msg("changed directory")
	return nil
}

// LoadHistory replaces the in-memory history with the stored one.
func (s *Shell) LoadHistory() error {
	if s.HistoryStore == nil {
		return nil
	}

	lines, err := s.HistoryStore.Load()
	if err != nil {
		return err
	}
	s.History = lines
	return nil
}

// AddHistory records an accepted line. Failing to persist it isn't fatal.
func (s *Shell) AddHistory(line string) {
	s.History = append(s.History, line)

	if s.HistoryStore == nil {
		return
	}
	if err := s.HistoryStore.Append(line); err != nil {
		s.Log.Warn().Err(err).Str("path", s.HistoryStore.Path()).Msg("couldn't save history")
	}
}

// Complete returns tab completion candidates for input.
func (s *Shell) Complete(input string) []string {
	return s.Completer.Complete(input)
}

// RunLine records and runs one line of input. It returns the result of the
// last segment that ran.
func (s *Shell) RunLine(ctx context.Context, line string) error {
	return s.runLine(ctx, line, true, interactivePrefix)
}

// RunStartup runs commands without recording them in the history.
func (s *Shell) RunStartup(ctx context.Context, commands []string) {
	for _, command := range commands {
		if s.Quit {
			return
		}
		if err := s.runLine(ctx, command, false, startupPrefix); err != nil {
			s.Log.Warn().Err(err).Str("command", command).Msg(logger.MsgStartupFailed)
		}
	}
}

func (s *Shell) runLine(ctx context.Context, line string, record bool, prefix string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	if record {
		s.AddHistory(line)
	}
	s.Log.Info().Str("line", line).Msg(logger.MsgLineAccepted)

	expanded := ExpandAlias(shell.StripComment(line), s.Session.LookupAlias)

	var lastErr error
	skip := false
	for _, segment := range shell.SplitCommands(expanded) {
		if s.Quit {
			break
		}

		// A failure before && skips every segment up to the next ; or &.
		if skip {
			skip = segment.Separator == shell.SepAndAnd
			continue
		}

		err := s.runSegment(ctx, segment.Text, segment.Separator == shell.SepBackground)
		s.report(prefix, segment.Text, err)

		lastErr = err
		skip = err != nil && segment.Separator == shell.SepAndAnd
	}

	return lastErr
}

func (s *Shell) report(prefix, segment string, err error) {
	if err == nil {
		return
	}

	s.Log.Warn().Err(err).
		Str("segment", segment).
		Stringer("kind", shell.KindOf(err)).
		Msg(logger.MsgSegmentFailed)

	// The child already reported its own failure.
	if process.IsExitStatus(err) {
		return
	}
	fmt.Fprintln(s.Stderr, s.errColor.Sprintf("%s: %v", prefix, err))
}

// notifyJobs reports background jobs that finished since the last prompt.
func (s *Shell) notifyJobs() {
	for _, job := range s.Engine.Jobs.Reap() {
		fmt.Fprintf(s.Stderr, "[%d]  %-8s%s\n", job.ID, job.Status(), job.Command)
	}
}

// Run reads and executes lines until input ends or exit is called.
func (s *Shell) Run(ctx context.Context, reader LineReader) error {
	for !s.Quit {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.notifyJobs()

		line, err := reader.ReadLine(s.Prompt, s.History)
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		s.RunLine(ctx, line)
	}

	return nil
}
