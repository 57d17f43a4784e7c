package core

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/josephlewis42/shesh/core/shell"
	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

// BuiltinUsage holds a one line synopsis for every builtin.
var BuiltinUsage = make(map[string]string)

// ShellBuiltin is a command implemented inside the shell. Output goes to
// stdout, which may be redirected, and failures are returned.
type ShellBuiltin interface {
	Main(s *Shell, stdout io.Writer, args []string) error
}

type ShellBuiltinFunc func(s *Shell, stdout io.Writer, args []string) error

func (f ShellBuiltinFunc) Main(s *Shell, stdout io.Writer, args []string) error {
	return f(s, stdout, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// BuiltinNames returns the sorted names of all builtins.
func BuiltinNames() []string {
	var names []string
	for name := range AllBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Cd is the cd shell builtin
func Cd(s *Shell, stdout io.Writer, args []string) error {
	var target string
	switch len(args) {
	case 1:
		target = "~"
	case 2:
		target = args[1]
	default:
		return shell.InvalidInputf("%s: too many arguments", args[0])
	}

	if target == "-" {
		previous, ok := s.Session.PreviousDir()
		if !ok {
			return shell.NotFoundf("%s: no previous directory", args[0])
		}
		target = previous
	}

	return s.Chdir(shell.ExpandTilde(target, s.Getenv))
}

// AliasCmd lists or defines aliases.
func AliasCmd(s *Shell, stdout io.Writer, args []string) error {
	var name, value string
	switch len(args) {
	case 1:
		for _, alias := range s.Session.Aliases() {
			fmt.Fprintf(stdout, "alias %s=\"%s\"\n", alias.Name, alias.Value)
		}
		return nil

	case 2:
		var ok bool
		name, value, ok = strings.Cut(args[1], "=")
		if !ok {
			existing, found := s.Session.LookupAlias(args[1])
			if !found {
				return shell.NotFoundf("%s: %s: not found", args[0], args[1])
			}
			fmt.Fprintf(stdout, "alias %s=\"%s\"\n", args[1], existing)
			return nil
		}

	case 3:
		name, value = args[1], args[2]

	default:
		return shell.InvalidInputf("Usage: %s", BuiltinUsage["alias"])
	}

	if name == "" {
		return shell.InvalidInputf("Usage: %s", BuiltinUsage["alias"])
	}

	s.Session.SetAlias(name, strings.Trim(value, `"`))
	return nil
}

// Export acknowledges a variable assignment. The environment isn't changed.
func Export(s *Shell, stdout io.Writer, args []string) error {
	if len(args) != 2 || !strings.Contains(args[1], "=") || strings.HasPrefix(args[1], "=") {
		return shell.InvalidInputf("Usage: %s", BuiltinUsage["export"])
	}

	fmt.Fprintf(stdout, "export %s\n", args[1])
	return nil
}

// Exit quits the shell
func Exit(s *Shell, stdout io.Writer, args []string) error {
	s.Quit = true
	return nil
}

func History(s *Shell, stdout io.Writer, args []string) error {
	opts := getopt.New()
	clearOpt := opts.Bool('c', "clear the history by deleting all entries")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		fmt.Fprintln(stdout, "Display or manipulate the history list.")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Options:")
		opts.PrintOptions(stdout)
		if err != nil {
			return shell.Wrap(shell.InvalidInput, err)
		}
		return nil
	}

	if *clearOpt {
		s.History = nil
		return nil
	}

	for i, line := range s.History {
		fmt.Fprintf(stdout, "% 5d  %s\n", i+1, line)
	}
	return nil
}

// Jobs lists background jobs and forgets the finished ones.
func Jobs(s *Shell, stdout io.Writer, args []string) error {
	opts := getopt.New()
	long := opts.Bool('l', "include the start time")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		fmt.Fprintln(stdout, "Display status of jobs.")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Options:")
		opts.PrintOptions(stdout)
		if err != nil {
			return shell.Wrap(shell.InvalidInput, err)
		}
		return nil
	}

	for _, job := range s.Engine.Jobs.List() {
		if *long {
			fmt.Fprintf(stdout, "[%d]  %s  %-8s%s\n", job.ID, job.Started.Format(time.Kitchen), job.Status(), job.Command)
		} else {
			fmt.Fprintf(stdout, "[%d]  %-8s%s\n", job.ID, job.Status(), job.Command)
		}
	}
	s.Engine.Jobs.Reap()
	return nil
}

// Wait blocks until the given jobs, or all of them, finish.
func Wait(s *Shell, stdout io.Writer, args []string) error {
	var ids []int
	for _, arg := range args[1:] {
		id, err := strconv.Atoi(strings.TrimPrefix(arg, "%"))
		if err != nil {
			return shell.InvalidInputf("%s: not a job id: %s", args[0], arg)
		}
		ids = append(ids, id)
	}

	err := s.Engine.Jobs.Wait(ids...)
	s.Engine.Jobs.Reap()
	return err
}

// Type describes how each name would be run.
func Type(s *Shell, stdout io.Writer, args []string) error {
	var lastErr error
	for _, name := range args[1:] {
		target := s.Resolve(name)
		switch {
		case target.Kind == TargetBuiltin:
			fmt.Fprintf(stdout, "%s is a shell builtin\n", name)
		case target.Kind == TargetSymbol:
			fmt.Fprintf(stdout, "%s is a shell operator\n", name)
		case target.Kind == TargetDirectory:
			fmt.Fprintf(stdout, "%s is a directory\n", name)
		case target.Path != "":
			fmt.Fprintf(stdout, "%s is %s\n", name, target.Path)
		default:
			lastErr = shell.NotFoundf("%s: %s: not found", args[0], name)
		}
	}
	return lastErr
}

func Help(s *Shell, stdout io.Writer, args []string) error {
	fmt.Fprintln(stdout, "shesh, a small interactive shell.")
	fmt.Fprintln(stdout, "These shell commands are defined internally.")
	fmt.Fprintln(stdout)

	for _, name := range BuiltinNames() {
		fmt.Fprintf(stdout, "  %s\n", BuiltinUsage[name])
	}

	return nil
}

func register(name, usage string, builtin ShellBuiltinFunc) {
	AllBuiltins[name] = builtin
	BuiltinUsage[name] = usage
}

func init() {
	register("cd", "cd [dir|-]", Cd)
	register("alias", "alias [name=value | name value]", AliasCmd)
	register("export", "export VAR=value", Export)
	register("exit", "exit", Exit)
	register("history", "history [-c]", History)
	register("jobs", "jobs [-l]", Jobs)
	register("wait", "wait [ID...]", Wait)
	register("type", "type NAME...", Type)
	register("help", "help", Help)
}
