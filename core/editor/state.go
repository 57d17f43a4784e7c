// Package editor is a raw terminal line editor with history recall, history
// hints and tab completion.
//
// Editing is a reducer: every key press is applied to a State by Reduce and
// the result is redrawn by a Renderer. The Editor type drives the loop
// against a terminal.
package editor

import (
	"strings"
	"unicode/utf8"
)

// noHistory is the HistoryIndex while no history entry is selected.
const noHistory = -1

// State is everything the editor knows about the line being edited.
type State struct {
	Prompt string
	// Input is the edit buffer.
	Input string
	// Cursor is a byte offset into Input, always on a UTF-8 boundary.
	Cursor int

	History []string
	// HistoryIndex is the selected history entry or -1.
	HistoryIndex int
	// TempInput holds the buffer from before history browsing started.
	TempInput string
	// MatchedHint is set after a hint was accepted with the right arrow.
	MatchedHint bool

	Completions     []string
	CompletionIndex int
	ShowCompletions bool

	// Finished is set once the line was submitted or cancelled.
	Finished bool
}

// NewState creates a blank line.
func NewState(prompt string, history []string) State {
	return State{
		Prompt:       prompt,
		History:      history,
		HistoryIndex: noHistory,
	}
}

// Hint is the newest history entry that extends the buffer. There's never a
// hint for an empty buffer or a finished line.
func (s *State) Hint() (string, bool) {
	if s.Input == "" || s.Finished {
		return "", false
	}

	for i := len(s.History) - 1; i >= 0; i-- {
		entry := s.History[i]
		if strings.HasPrefix(entry, s.Input) && entry != s.Input {
			return entry, true
		}
	}
	return "", false
}

// Result is what the caller should do after a key press was applied.
type Result int

const (
	// Continue editing.
	Continue Result = iota
	// Submit the buffer as the finished line.
	Submit
	// Cancel the line, the buffer is empty.
	Cancel
	// EOF signals the end of input.
	EOF
)

// CompleteFunc lists the completion candidates for a buffer.
type CompleteFunc func(input string) []string

func (s *State) prevBoundary() int {
	if s.Cursor <= 0 {
		return 0
	}
	_, size := utf8.DecodeLastRuneInString(s.Input[:s.Cursor])
	return s.Cursor - size
}

func (s *State) nextBoundary() int {
	if s.Cursor >= len(s.Input) {
		return len(s.Input)
	}
	_, size := utf8.DecodeRuneInString(s.Input[s.Cursor:])
	return s.Cursor + size
}

func (s *State) replaceInput(input string) {
	s.Input = input
	s.Cursor = len(input)
	s.MatchedHint = false
}

// Reduce applies one key press to s. complete is only consulted on Tab and
// may be nil.
func Reduce(s State, ev Event, complete CompleteFunc) (State, Result) {
	switch ev.Key {
	case KeyRune:
		// Invalid runes are inserted as U+FFFD.
		r := string(ev.Rune)
		s.Input = s.Input[:s.Cursor] + r + s.Input[s.Cursor:]
		s.Cursor += len(r)
		s.MatchedHint = false
		s.ShowCompletions = false

	case KeyBackspace:
		if s.Cursor > 0 {
			prev := s.prevBoundary()
			s.Input = s.Input[:prev] + s.Input[s.Cursor:]
			s.Cursor = prev
			s.MatchedHint = false
			s.ShowCompletions = false
		}

	case KeyLeft:
		s.Cursor = s.prevBoundary()
		s.MatchedHint = false
		s.ShowCompletions = false

	case KeyRight:
		if s.Cursor < len(s.Input) {
			s.Cursor = s.nextBoundary()
		} else if hint, ok := s.Hint(); ok {
			s.Input = hint
			s.Cursor = len(hint)
			s.MatchedHint = true
		}
		s.ShowCompletions = false

	case KeyUp:
		s.ShowCompletions = false
		if len(s.History) == 0 {
			break
		}
		if s.HistoryIndex == noHistory {
			s.TempInput = s.Input
			s.HistoryIndex = len(s.History) - 1
		} else if s.HistoryIndex > 0 {
			s.HistoryIndex--
		}
		s.replaceInput(s.History[s.HistoryIndex])

	case KeyDown:
		s.ShowCompletions = false
		if s.HistoryIndex == noHistory {
			break
		}
		if s.HistoryIndex+1 < len(s.History) {
			s.HistoryIndex++
			s.replaceInput(s.History[s.HistoryIndex])
		} else {
			s.HistoryIndex = noHistory
			s.replaceInput(s.TempInput)
		}

	case KeyTab:
		switch {
		case !s.ShowCompletions:
			s.Completions = nil
			if complete != nil {
				s.Completions = complete(s.Input)
			}
			s.CompletionIndex = 0
			s.ShowCompletions = len(s.Completions) > 0
		case len(s.Completions) > 0:
			s.CompletionIndex = (s.CompletionIndex + 1) % len(s.Completions)
		}

	case KeyEnter:
		s.ShowCompletions = false
		s.Completions = nil
		s.Finished = true
		return s, Submit

	case KeyCtrlC:
		s.ShowCompletions = false
		s.Completions = nil
		s.Input = ""
		s.Cursor = 0
		s.Finished = true
		return s, Cancel

	case KeyCtrlD:
		if s.Input == "" {
			s.Finished = true
			return s, EOF
		}
	}

	return s, Continue
}
