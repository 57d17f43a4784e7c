package process

import (
	"io"
	"os"

	"github.com/josephlewis42/shesh/core/shell"
	"github.com/spf13/afero"
)

// Streams are the standard streams handed to a command. A nil stream is
// connected to the null device.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	closers []io.Closer
}

// Close closes every file opened by OpenRedirects.
func (s *Streams) Close() error {
	var lastErr error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			lastErr = err
		}
	}
	s.closers = nil
	return lastErr
}

func openFlags(kind shell.RedirectKind) int {
	switch kind {
	case shell.RedirectAppend:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case shell.RedirectInput:
		return os.O_RDONLY
	default:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
}

// OpenRedirects opens the redirect targets in order and binds each on top of
// base. Every target is opened, so an overridden output target is still
// created or truncated, but the last redirect of each direction wins.
//
// Relative targets are resolved against dir. On error every file opened so
// far is closed.
func OpenRedirects(fsys afero.Fs, dir string, base Streams, redirects []shell.Redirect) (*Streams, error) {
	out := &Streams{
		Stdin:  base.Stdin,
		Stdout: base.Stdout,
		Stderr: base.Stderr,
	}

	for _, r := range redirects {
		fd, err := fsys.OpenFile(resolve(dir, r.Path), openFlags(r.Kind), 0644)
		if err != nil {
			out.Close()
			return nil, shell.Wrap(shell.KindOf(err), err)
		}
		out.closers = append(out.closers, fd)

		if r.Kind == shell.RedirectInput {
			out.Stdin = fd
		} else {
			out.Stdout = fd
		}
	}

	return out, nil
}
