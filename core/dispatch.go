package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/josephlewis42/shesh/core/process"
	"github.com/josephlewis42/shesh/core/shell"
)

// TargetKind is what the first word of a segment refers to.
type TargetKind int

const (
	// TargetExternal is a program run by the process engine.
	TargetExternal TargetKind = iota
	// TargetBuiltin is a command implemented by the shell.
	TargetBuiltin
	// TargetSymbol is a redirect or pipe operator.
	TargetSymbol
	// TargetDirectory is a directory the shell changes into.
	TargetDirectory
)

func (k TargetKind) String() string {
	switch k {
	case TargetBuiltin:
		return "builtin"
	case TargetSymbol:
		return "symbol"
	case TargetDirectory:
		return "directory"
	default:
		return "external"
	}
}

// Target is the resolved meaning of a command name.
type Target struct {
	Kind TargetKind
	Name string

	// Builtin is set for TargetBuiltin.
	Builtin ShellBuiltin
	// Path is the resolved executable for TargetExternal, empty if it
	// wasn't found.
	Path string
}

func isSymbol(name string) bool {
	return name == "|" || shell.IsRedirectOperator(name)
}

// Resolve looks up name as a symbol, builtin, directory and finally an
// executable on PATH. Directories are only chosen when no executable has the
// same name.
func (s *Shell) Resolve(name string) Target {
	if isSymbol(name) {
		return Target{Kind: TargetSymbol, Name: name}
	}

	if builtin, ok := AllBuiltins[name]; ok {
		return Target{Kind: TargetBuiltin, Name: name, Builtin: builtin}
	}

	path, err := process.LookPath(s.Engine.Fs, s.dir, s.Getenv(process.EnvPath), name)
	if err == nil {
		return Target{Kind: TargetExternal, Name: name, Path: path}
	}

	if s.isDir(name) {
		return Target{Kind: TargetDirectory, Name: name}
	}

	return Target{Kind: TargetExternal, Name: name}
}

func (s *Shell) isDir(name string) bool {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}
	info, err := s.Engine.Fs.Stat(path)
	return err == nil && info.IsDir()
}

// runSegment expands and executes one segment. Backgrounded builtins run in
// the foreground.
func (s *Shell) runSegment(ctx context.Context, text string, background bool) error {
	args := s.Expander.Expand(text)
	if len(args) == 0 {
		return nil
	}

	s.Log.Debug().
		Strs("args", args).
		Bool("background", background).
		Msg("dispatching segment")

	if hasPipe(args) {
		return s.runPipeline(ctx, args, background)
	}

	parsed, err := shell.ParseRedirects(args)
	if err != nil {
		return err
	}
	if len(parsed.Cmd) == 0 {
		return shell.InvalidInputf("syntax error: missing command")
	}

	target := s.Resolve(parsed.Cmd[0])
	switch target.Kind {
	case TargetBuiltin:
		return s.runBuiltin(target.Builtin, parsed)

	case TargetDirectory:
		if len(parsed.Cmd) > 1 || len(parsed.Redirects) > 0 {
			return shell.InvalidInputf("%s: is a directory", target.Name)
		}
		return s.Chdir(target.Name)

	default:
		if background {
			s.announce(s.Engine.ExecuteBackgroundWithRedirect(parsed.Cmd, parsed.Redirects))
			return nil
		}
		return s.Engine.ExecuteWithRedirect(ctx, parsed.Cmd, parsed.Redirects)
	}
}

func hasPipe(args []string) bool {
	for _, arg := range args {
		if strings.Contains(arg, "|") {
			return true
		}
	}
	return false
}

// runPipeline re-splits the expanded arguments on |. Splitting is on
// whitespace so quoted arguments containing spaces or pipes are broken up.
func (s *Shell) runPipeline(ctx context.Context, args []string, background bool) error {
	stages := shell.ParsePipeline(strings.Join(args, " "))

	if background {
		if _, err := process.ParsePipelineStages(stages); err != nil {
			return err
		}
		s.announce(s.Engine.ExecuteBackgroundPipeline(stages))
		return nil
	}
	return s.Engine.ExecutePipeline(ctx, stages)
}

func (s *Shell) runBuiltin(builtin ShellBuiltin, parsed *shell.ParsedCommand) error {
	streams, err := process.OpenRedirects(s.Engine.Fs, s.dir, process.Streams{
		Stdin:  s.Stdin,
		Stdout: s.Stdout,
		Stderr: s.Stderr,
	}, parsed.Redirects)
	if err != nil {
		return err
	}
	defer streams.Close()

	return builtin.Main(s, streams.Stdout, parsed.Cmd)
}

func (s *Shell) announce(job *process.Job) {
	fmt.Fprintf(s.Stderr, "[%d] %s\n", job.ID, job.Command)
}
