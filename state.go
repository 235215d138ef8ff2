package vimgolf

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is the editing mode of an editor state.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeReplace
	ModeVisual
	ModeVisualLine
	ModeCommandLine
)

var modeNames = [...]string{
	ModeNormal:      "normal",
	ModeInsert:      "insert",
	ModeReplace:     "replace",
	ModeVisual:      "visual",
	ModeVisualLine:  "visual-line",
	ModeCommandLine: "command-line",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
	return modeNames[m]
}

// ParseMode accepts the long names returned by Mode.String as well as the
// single-letter mode codes ("n", "i", "R", "v", "V", "c").
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "n", "normal":
		return ModeNormal, nil
	case "i", "insert":
		return ModeInsert, nil
	case "R", "replace":
		return ModeReplace, nil
	case "v", "visual":
		return ModeVisual, nil
	case "V", "visual-line":
		return ModeVisualLine, nil
	case "c", "command-line":
		return ModeCommandLine, nil
	}
	return ModeNormal, fmt.Errorf("unknown mode %q", s)
}

// Cursor is a zero-based (row, column) position in the buffer.
type Cursor struct {
	Row int
	Col int
}

func (c Cursor) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// EditorState is an immutable snapshot of buffer, cursor and mode. Equality is
// structural over all three fields and is exposed through Key.
type EditorState struct {
	lines  []string
	cursor Cursor
	mode   Mode
	key    string
}

// NewEditorState copies lines so later mutation by the caller cannot leak in.
// A nil or empty buffer is normalised to a single empty line.
func NewEditorState(lines []string, cursor Cursor, mode Mode) EditorState {
	if len(lines) == 0 {
		lines = []string{""}
	}
	owned := make([]string, len(lines))
	copy(owned, lines)

	var b strings.Builder
	b.WriteString(strconv.Itoa(cursor.Row))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(cursor.Col))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(int(mode)))
	for _, l := range owned {
		b.WriteByte(0)
		b.WriteString(l)
	}

	return EditorState{lines: owned, cursor: cursor, mode: mode, key: b.String()}
}

// Lines returns a copy of the buffer.
func (s EditorState) Lines() []string {
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s EditorState) LineCount() int    { return len(s.lines) }
func (s EditorState) Line(i int) string { return s.lines[i] }
func (s EditorState) Cursor() Cursor    { return s.cursor }
func (s EditorState) Mode() Mode        { return s.mode }
func (s EditorState) Key() string       { return s.key }
func (s EditorState) Text() string      { return strings.Join(s.lines, "\n") }
func (s EditorState) IsZero() bool      { return s.key == "" }

// Equal compares buffer, cursor and mode.
func (s EditorState) Equal(o EditorState) bool { return s.key == o.key }

// SameBuffer reports whether both states hold identical text.
func (s EditorState) SameBuffer(o EditorState) bool {
	if len(s.lines) != len(o.lines) {
		return false
	}
	for i := range s.lines {
		if s.lines[i] != o.lines[i] {
			return false
		}
	}
	return true
}

func (s EditorState) String() string {
	return fmt.Sprintf("%q cursor=%s mode=%s", s.lines, s.cursor, s.mode)
}
