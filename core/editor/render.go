package editor

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

const (
	// DefaultWidth is used when the terminal width is unknown.
	DefaultWidth = 80
	// DefaultMaxCompletions caps the completion grid.
	DefaultMaxCompletions = 100

	clearLine = "\x1b[2K"
	newline   = "\r\n"
	// columnGap separates completion grid columns.
	columnGap = 2
)

// Renderer draws editor frames.
type Renderer struct {
	// Width is the terminal width in columns, DefaultWidth if unset.
	Width int
	// MaxCompletions caps the number of candidates shown.
	MaxCompletions int

	hint     *color.Color
	matched  *color.Color
	selected *color.Color
}

// NewRenderer creates a renderer. colorEnabled overrides fatih/color's
// terminal detection.
func NewRenderer(colorEnabled bool) *Renderer {
	r := &Renderer{
		Width:          DefaultWidth,
		MaxCompletions: DefaultMaxCompletions,
		hint:           color.New(color.FgHiBlack),
		matched:        color.New(color.FgGreen),
		selected:       color.New(color.FgGreen),
	}

	for _, c := range []*color.Color{r.hint, r.matched, r.selected} {
		if colorEnabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *Renderer) width() int {
	if r.Width <= 0 {
		return DefaultWidth
	}
	return r.Width
}

func (r *Renderer) maxCompletions() int {
	if r.MaxCompletions <= 0 {
		return DefaultMaxCompletions
	}
	return r.MaxCompletions
}

// Render writes one frame for s to w in a single write.
//
// The frame redraws the current line: prompt, buffer and, while completions
// aren't shown, the hint suffix. Shown completions are laid out in a grid
// below it followed by a fresh copy of the line. The cursor is left at its
// column within the buffer.
func (r *Renderer) Render(w io.Writer, s *State) error {
	var frame bytes.Buffer

	frame.WriteString("\r" + clearLine + s.Prompt + s.Input)

	showGrid := s.ShowCompletions && len(s.Completions) > 0
	if !showGrid {
		if hint, ok := s.Hint(); ok {
			style := r.hint
			if s.MatchedHint {
				style = r.matched
			}
			frame.WriteString(style.Sprint(hint[len(s.Input):]))
		}
	}

	if showGrid {
		frame.WriteString(newline)
		r.renderGrid(&frame, s)
		frame.WriteString(newline + clearLine + s.Prompt + s.Input)
	}

	column := utf8.RuneCountInString(s.Prompt) + utf8.RuneCountInString(s.Input[:s.Cursor])
	frame.WriteString("\r")
	if column > 0 {
		fmt.Fprintf(&frame, "\x1b[%dC", column)
	}

	_, err := w.Write(frame.Bytes())
	return err
}

func (r *Renderer) renderGrid(frame *bytes.Buffer, s *State) {
	items := s.Completions
	if limit := r.maxCompletions(); len(items) > limit {
		items = items[:limit]
	}

	cellWidth := 0
	for _, item := range items {
		if n := utf8.RuneCountInString(item); n > cellWidth {
			cellWidth = n
		}
	}
	cellWidth += columnGap

	perRow := r.width() / cellWidth
	if perRow < 1 {
		perRow = 1
	}

	for i, item := range items {
		if i == s.CompletionIndex {
			frame.WriteString(r.selected.Sprint(item))
		} else {
			frame.WriteString(item)
		}
		frame.WriteString(strings.Repeat(" ", cellWidth-utf8.RuneCountInString(item)))

		if (i+1)%perRow == 0 {
			frame.WriteString(newline)
		}
	}
}
