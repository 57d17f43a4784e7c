package editor

import (
	"bufio"
	"io"

	"golang.org/x/term"
)

// Editor reads lines from a terminal.
type Editor struct {
	// Fd is the terminal put into raw mode while a line is read, negative
	// if In isn't a terminal.
	Fd int

	Renderer *Renderer
	Complete CompleteFunc

	in  *bufio.Reader
	out io.Writer
}

// New creates an editor reading key presses from in and drawing to out. fd
// is the terminal file descriptor backing in.
func New(fd int, in io.Reader, out io.Writer, renderer *Renderer, complete CompleteFunc) *Editor {
	return &Editor{
		Fd:       fd,
		Renderer: renderer,
		Complete: complete,
		in:       bufio.NewReader(in),
		out:      out,
	}
}

// ReadLine puts the terminal in raw mode and edits one line. It returns an
// empty line if editing was cancelled with Ctrl-C and io.EOF on Ctrl-D at an
// empty buffer or when input ends.
func (e *Editor) ReadLine(prompt string, history []string) (string, error) {
	if e.Fd >= 0 && term.IsTerminal(e.Fd) {
		oldState, err := term.MakeRaw(e.Fd)
		if err != nil {
			return "", err
		}
		defer term.Restore(e.Fd, oldState)

		if width, _, err := term.GetSize(e.Fd); err == nil {
			e.Renderer.Width = width
		}
	}

	return e.Edit(prompt, history)
}

// Edit runs the edit loop without touching terminal modes.
func (e *Editor) Edit(prompt string, history []string) (string, error) {
	state := NewState(prompt, history)

	for {
		if err := e.Renderer.Render(e.out, &state); err != nil {
			return "", err
		}

		ev, err := ReadKey(e.in)
		if err != nil {
			return "", err
		}

		var result Result
		state, result = Reduce(state, ev, e.Complete)

		switch result {
		case Submit:
			// Redraw without the hint before leaving the line.
			if err := e.Renderer.Render(e.out, &state); err != nil {
				return "", err
			}
			_, err := io.WriteString(e.out, newline)
			return state.Input, err

		case Cancel:
			_, err := io.WriteString(e.out, newline)
			return "", err

		case EOF:
			io.WriteString(e.out, newline)
			return "", io.EOF
		}
	}
}
