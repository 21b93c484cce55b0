package terminal

import "unicode/utf8"

// Log is a fixed number of lines that scrolls up on every append.
type Log struct {
	lines []string
	width int
}

// NewLog creates a log of n lines holding at most width-1 characters each.
func NewLog(n, width int) *Log {
	return &Log{lines: make([]string, n), width: width}
}

// Append scrolls the log up by one line and returns the stored text.
func (l *Log) Append(text string) string {
	text = truncate(text, l.width-1)
	copy(l.lines, l.lines[1:])
	l.lines[len(l.lines)-1] = text
	return text
}

// Last returns the bottom line.
func (l *Log) Last() string { return l.lines[len(l.lines)-1] }

// Lines returns a copy of all lines, oldest first. Unused lines are empty.
func (l *Log) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Clear empties every line.
func (l *Log) Clear() {
	clear(l.lines)
}

// Storage is a set of slots overwritten in circular order.
type Storage struct {
	slots []string
	next  int
	width int
}

// Entry is an occupied storage slot.
type Entry struct {
	Slot int
	Text string
}

// NewStorage creates n slots holding at most width-1 characters each.
func NewStorage(n, width int) *Storage {
	return &Storage{slots: make([]string, n), width: width}
}

// Add stores text in the next slot, overwriting the oldest one when full.
func (s *Storage) Add(text string) {
	if s.next >= len(s.slots) {
		s.next = 0
	}
	s.slots[s.next] = truncate(text, s.width-1)
	s.next++
}

// Entries returns the occupied slots in slot order.
func (s *Storage) Entries() []Entry {
	var out []Entry
	for i, text := range s.slots {
		if text != "" {
			out = append(out, Entry{Slot: i, Text: text})
		}
	}
	return out
}

// Clear empties every slot and restarts at slot 0.
func (s *Storage) Clear() {
	clear(s.slots)
	s.next = 0
}

// Input is the line being typed.
type Input struct {
	buf []byte
	max int
}

// NewInput creates an input line holding at most length-1 characters.
func NewInput(length int) *Input {
	return &Input{buf: make([]byte, 0, length-1), max: length - 1}
}

// Type appends c and reports whether it fit.
func (in *Input) Type(c byte) bool {
	if len(in.buf) >= in.max {
		return false
	}
	in.buf = append(in.buf, c)
	return true
}

// Backspace removes the last character and reports whether there was one.
func (in *Input) Backspace() bool {
	if len(in.buf) == 0 {
		return false
	}
	in.buf = in.buf[:len(in.buf)-1]
	return true
}

// Reset clears the line.
func (in *Input) Reset() { in.buf = in.buf[:0] }

// Len returns the number of typed characters.
func (in *Input) Len() int { return len(in.buf) }

func (in *Input) String() string { return string(in.buf) }

// Bytes returns a copy of the line.
func (in *Input) Bytes() []byte { return append([]byte(nil), in.buf...) }

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
