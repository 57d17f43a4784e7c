package editor

import (
	"bufio"
	"unicode"
	"unicode/utf8"
)

// Key identifies a decoded terminal key press.
type Key int

const (
	KeyUnknown Key = iota
	KeyRune
	KeyEnter
	KeyTab
	KeyBackspace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyCtrlC
	KeyCtrlD
)

func (k Key) String() string {
	switch k {
	case KeyRune:
		return "rune"
	case KeyEnter:
		return "enter"
	case KeyTab:
		return "tab"
	case KeyBackspace:
		return "backspace"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyCtrlC:
		return "ctrl-c"
	case KeyCtrlD:
		return "ctrl-d"
	default:
		return "unknown"
	}
}

// Event is a single key press. Rune is only set for KeyRune.
type Event struct {
	Key  Key
	Rune rune
}

const (
	asciiETX  = 0x03
	asciiEOT  = 0x04
	asciiBS   = 0x08
	asciiESC  = 0x1b
	asciiDEL  = 0x7f
	csiPrefix = '['
	ss3Prefix = 'O'
)

// ReadKey decodes the next key press from a raw mode terminal.
//
// Arrow keys arrive as ESC [ X or ESC O X. Other escape sequences are
// consumed whole and reported as KeyUnknown, as is a lone ESC.
func ReadKey(r *bufio.Reader) (Event, error) {
	ch, size, err := r.ReadRune()
	if err != nil {
		return Event{}, err
	}

	switch {
	case ch == utf8.RuneError && size == 1:
		return Event{Key: KeyUnknown}, nil
	case ch == '\r' || ch == '\n':
		return Event{Key: KeyEnter}, nil
	case ch == '\t':
		return Event{Key: KeyTab}, nil
	case ch == asciiDEL || ch == asciiBS:
		return Event{Key: KeyBackspace}, nil
	case ch == asciiETX:
		return Event{Key: KeyCtrlC}, nil
	case ch == asciiEOT:
		return Event{Key: KeyCtrlD}, nil
	case ch == asciiESC:
		return readEscape(r)
	case unicode.IsControl(ch):
		return Event{Key: KeyUnknown}, nil
	default:
		return Event{Key: KeyRune, Rune: ch}, nil
	}
}

func readEscape(r *bufio.Reader) (Event, error) {
	// A bare ESC key press isn't followed by anything already buffered.
	if r.Buffered() == 0 {
		return Event{Key: KeyUnknown}, nil
	}

	prefix, err := r.ReadByte()
	if err != nil {
		return Event{}, err
	}
	if prefix != csiPrefix && prefix != ss3Prefix {
		return Event{Key: KeyUnknown}, nil
	}

	// Parameters and intermediates are 0x20-0x3f, the final byte 0x40-0x7e.
	for {
		b, err := r.ReadByte()
		if err != nil {
			return Event{}, err
		}
		if b < 0x40 || b > 0x7e {
			continue
		}

		switch b {
		case 'A':
			return Event{Key: KeyUp}, nil
		case 'B':
			return Event{Key: KeyDown}, nil
		case 'C':
			return Event{Key: KeyRight}, nil
		case 'D':
			return Event{Key: KeyLeft}, nil
		default:
			return Event{Key: KeyUnknown}, nil
		}
	}
}
