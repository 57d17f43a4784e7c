package core

import (
	"io"

	"github.com/abiosoft/readline"
)

// PlainReader reads lines from a stream that isn't a terminal, like a pipe
// or a script.
type PlainReader struct {
	rl *readline.Instance
}

var _ LineReader = (*PlainReader)(nil)

// NewPlainReader creates a line reader that doesn't echo or edit.
func NewPlainReader(stdin io.Reader, stdout, stderr io.Writer) (*PlainReader, error) {
	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(stdin),
		Stdout: stdout,
		Stderr: stderr,

		FuncIsTerminal: func() bool {
			return false
		},
		DisableAutoSaveHistory: true,
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	return &PlainReader{rl: rl}, nil
}

// ReadLine reads the next line. History is ignored because lines can't be
// edited.
func (r *PlainReader) ReadLine(prompt string, history []string) (string, error) {
	r.rl.SetPrompt(prompt)

	line, err := r.rl.Readline()
	if err == readline.ErrInterrupt {
		return "", nil
	}
	return line, err
}

func (r *PlainReader) Close() error {
	return r.rl.Close()
}
