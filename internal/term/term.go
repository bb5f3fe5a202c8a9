// Package term owns raw-mode terminal control for the interactive menu.
//
// Raw mode is a single scoped acquisition: AcquireRaw captures the previous
// terminal state and the returned session's Restore puts it back. Callers
// defer Restore at the boundary of the menu session so every exit path —
// normal selection, cancel, interrupt — releases the terminal exactly once.
//
// While raw mode is held, keystrokes arrive one read burst at a time and are
// decoded into logical key events by ReadEvent. Ctrl-C arrives as a plain
// byte (0x03) rather than a signal and is surfaced as KeyInterrupt.
package term

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Key is the logical key class of one decoded event.
type Key int

const (
	KeyNone Key = iota
	KeyPrintable
	KeyDigit
	KeyBackspace
	KeyEnter
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyInterrupt
)

// Event is one decoded keystroke. Ch is set for KeyPrintable and KeyDigit.
type Event struct {
	Key Key
	Ch  byte
}

// Interactive reports whether stdin is attached to a terminal. When it is
// not, the menu must use its line-based fallback mode.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Size returns the terminal dimensions, falling back to 80x24 when the
// query is unavailable (pipes, dumb terminals).
func Size() (cols, rows int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return 80, 24
	}
	return cols, rows
}

// RawSession holds exclusive raw-mode control of the terminal.
type RawSession struct {
	fd   int
	prev *term.State
	in   io.Reader
}

// AcquireRaw switches the terminal into raw mode. It fails when stdin is not
// a terminal or the platform probe fails; callers treat that as "fall back
// to line mode", not as a user-visible error.
func AcquireRaw() (*RawSession, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}
	prev, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	return &RawSession{fd: fd, prev: prev, in: os.Stdin}, nil
}

// Restore returns the terminal to its prior state. Safe to call more than
// once; only the first call has an effect.
func (s *RawSession) Restore() {
	if s.prev == nil {
		return
	}
	_ = term.Restore(s.fd, s.prev)
	s.prev = nil
}

// ReadEvent blocks for the next keystroke and decodes it. A multi-byte
// escape sequence arrives within one read burst in raw mode, so a lone ESC
// byte means the Escape key while ESC '[' A/B/C/D means an arrow.
func (s *RawSession) ReadEvent() (Event, error) {
	var buf [8]byte
	n, err := s.in.Read(buf[:])
	if err != nil {
		return Event{}, err
	}
	return decodeBurst(buf[:n]), nil
}

func decodeBurst(b []byte) Event {
	if len(b) == 0 {
		return Event{Key: KeyNone}
	}
	switch b[0] {
	case 0x03:
		return Event{Key: KeyInterrupt}
	case '\r', '\n':
		return Event{Key: KeyEnter}
	case 0x7f, 0x08:
		return Event{Key: KeyBackspace}
	case 0x1b:
		if len(b) >= 3 && b[1] == '[' {
			switch b[2] {
			case 'A':
				return Event{Key: KeyUp}
			case 'B':
				return Event{Key: KeyDown}
			case 'C':
				return Event{Key: KeyRight}
			case 'D':
				return Event{Key: KeyLeft}
			}
		}
		return Event{Key: KeyEscape}
	}
	c := b[0]
	if c >= '0' && c <= '9' {
		return Event{Key: KeyDigit, Ch: c}
	}
	if c >= 0x20 && c < 0x7f {
		return Event{Key: KeyPrintable, Ch: c}
	}
	return Event{Key: KeyNone}
}
