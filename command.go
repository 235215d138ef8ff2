package vimgolf

import (
	"fmt"
	"strings"
)

// Command is one atomic input token: a single printable character or a named
// key such as "<Esc>".
type Command string

const (
	KeyEscape    Command = "<Esc>"
	KeyEnter     Command = "<CR>"
	KeyBackspace Command = "<BS>"
	KeyTab       Command = "<Tab>"
)

var namedKeys = map[string]Command{
	"esc":    KeyEscape,
	"escape": KeyEscape,
	"cr":     KeyEnter,
	"enter":  KeyEnter,
	"return": KeyEnter,
	"bs":     KeyBackspace,
	"tab":    KeyTab,
	"lt":     "<",
	"space":  " ",
}

// IsNamed reports whether c is a named key rather than a literal character.
func (c Command) IsNamed() bool {
	return len(c) > 2 && c[0] == '<' && c[len(c)-1] == '>'
}

func (c Command) String() string {
	if c == "<" {
		return "<lt>"
	}
	return string(c)
}

// Path is an ordered sequence of commands. Paths are treated as values: Append
// never shares the backing array with its receiver.
type Path []Command

// Append returns a new path with cmds added at the end.
func (p Path) Append(cmds ...Command) Path {
	out := make(Path, len(p), len(p)+len(cmds))
	copy(out, p)
	return append(out, cmds...)
}

// HasPrefix reports whether prefix is a leading subsequence of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// String renders the path in the notation accepted by ParseKeys.
func (p Path) String() string {
	var b strings.Builder
	for _, c := range p {
		b.WriteString(c.String())
	}
	return b.String()
}

// ParseKeys splits a key string such as "3x$p<Esc>" into commands. Named keys
// are written in angle brackets and matched case-insensitively; "<lt>" is a
// literal '<'.
func ParseKeys(keys string) (Path, error) {
	var path Path
	runes := []rune(keys)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '<' {
			path = append(path, Command(string(r)))
			continue
		}
		end := -1
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == '>' {
				end = j
				break
			}
		}
		if end < 0 {
			return nil, fmt.Errorf("unterminated key name at offset %d in %q", i, keys)
		}
		name := strings.ToLower(string(runes[i+1 : end]))
		cmd, ok := namedKeys[name]
		if !ok {
			return nil, fmt.Errorf("unknown key name <%s>", string(runes[i+1:end]))
		}
		path = append(path, cmd)
		i = end
	}
	return path, nil
}

// MustParseKeys is ParseKeys for literals known to be valid.
func MustParseKeys(keys string) Path {
	p, err := ParseKeys(keys)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultAlphabet is every printable ASCII character plus escape, enter and
// backspace.
func DefaultAlphabet() []Command {
	out := make([]Command, 0, 95+3)
	for c := byte(' '); c <= '~'; c++ {
		out = append(out, Command(string(c)))
	}
	return append(out, KeyEscape, KeyEnter, KeyBackspace)
}
