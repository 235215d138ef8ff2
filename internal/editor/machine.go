package editor

import (
	"fmt"
	"strings"

	"github.com/pdrpinto/vimgolf"
)

// maxCount caps numeric prefixes so a typed "9999p" cannot blow up the buffer.
const maxCount = 1000

// machine is a small vim interpreter. It is mutated by feed; sessions clone it
// before replaying so stored snapshots stay untouched.
type machine struct {
	lines []string
	row   int
	col   int
	mode  vimgolf.Mode

	// pending holds an incomplete normal-mode sequence: an operator ("d", "c",
	// "y") or a prefix ("g", "r").
	pending  string
	count    int
	opCount  int
	register string
	linewise bool
}

func newMachine(s vimgolf.EditorState) *machine {
	c := s.Cursor()
	m := &machine{lines: s.Lines(), row: c.Row, col: c.Col, mode: s.Mode()}
	if m.mode != vimgolf.ModeInsert && m.mode != vimgolf.ModeReplace {
		m.mode = vimgolf.ModeNormal
	}
	m.clampRow()
	if m.mode == vimgolf.ModeNormal {
		m.clampNormal()
	} else {
		m.clampInsert()
	}
	return m
}

func (m *machine) clone() *machine {
	c := *m
	c.lines = make([]string, len(m.lines))
	copy(c.lines, m.lines)
	return &c
}

func (m *machine) state() vimgolf.EditorState {
	return vimgolf.NewEditorState(m.lines, vimgolf.Cursor{Row: m.row, Col: m.col}, m.mode)
}

// fingerprint extends the state key with everything state leaves out. With
// nothing pending and an empty register it is exactly the state key.
func (m *machine) fingerprint() string {
	st := m.state()
	if m.pending == "" && m.count == 0 && m.opCount == 0 && m.register == "" {
		return st.Key()
	}
	return fmt.Sprintf("%s\x01%s\x01%d\x01%d\x01%t\x01%s",
		st.Key(), m.pending, m.count, m.opCount, m.linewise, m.register)
}

func (m *machine) feed(cmd vimgolf.Command) error {
	key, err := decode(cmd)
	if err != nil {
		return err
	}
	switch m.mode {
	case vimgolf.ModeInsert:
		m.insertKey(key)
	case vimgolf.ModeReplace:
		m.replaceKey(key)
	default:
		m.normalKey(key)
	}
	return nil
}

// key is a decoded command: either a printable byte or one of the named keys.
type key struct {
	ch    byte
	named vimgolf.Command
}

func decode(cmd vimgolf.Command) (key, error) {
	switch cmd {
	case vimgolf.KeyEscape, vimgolf.KeyEnter, vimgolf.KeyBackspace, vimgolf.KeyTab:
		return key{named: cmd}, nil
	}
	if len(cmd) == 1 && cmd[0] >= ' ' && cmd[0] <= '~' {
		return key{ch: cmd[0]}, nil
	}
	return key{}, fmt.Errorf("unsupported key %q", string(cmd))
}

// ── Cursor helpers ──────────────────────────────────────────────────────────

func (m *machine) line() string { return m.lines[m.row] }

func (m *machine) clampRow() {
	if m.row < 0 {
		m.row = 0
	}
	if m.row >= len(m.lines) {
		m.row = len(m.lines) - 1
	}
}

// clampNormal keeps col on a character; an empty line allows only column 0.
func (m *machine) clampNormal() {
	m.clampRow()
	last := len(m.line()) - 1
	if last < 0 {
		last = 0
	}
	if m.col > last {
		m.col = last
	}
	if m.col < 0 {
		m.col = 0
	}
}

// clampInsert allows one position past the end of the line.
func (m *machine) clampInsert() {
	m.clampRow()
	if m.col > len(m.line()) {
		m.col = len(m.line())
	}
	if m.col < 0 {
		m.col = 0
	}
}

func firstNonBlank(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return i
		}
	}
	if len(s) == 0 {
		return 0
	}
	return len(s) - 1
}

func (m *machine) takeCount() int {
	n := m.count
	m.count = 0
	if n == 0 {
		return 1
	}
	return n
}

func (m *machine) reset() {
	m.pending = ""
	m.count = 0
	m.opCount = 0
}

// ── Normal mode ─────────────────────────────────────────────────────────────

func (m *machine) normalKey(k key) {
	if m.pending != "" {
		m.pendingKey(k)
		return
	}
	if k.named != "" {
		switch k.named {
		case vimgolf.KeyEscape:
			m.reset()
		case vimgolf.KeyBackspace:
			m.moveLeftWrap(m.takeCount())
		case vimgolf.KeyEnter:
			m.row += m.takeCount()
			m.clampRow()
			m.col = firstNonBlank(m.line())
			m.clampNormal()
		default:
			m.reset()
		}
		return
	}

	ch := k.ch
	if ch >= '1' && ch <= '9' || ch == '0' && m.count > 0 {
		m.count = m.count*10 + int(ch-'0')
		if m.count > maxCount {
			m.count = maxCount
		}
		return
	}

	switch ch {
	// motions
	case 'h', 'l', ' ', 'j', 'k', '0', '^', '$', 'w', 'b', 'e':
		m.row, m.col = m.motion(ch, m.takeCount())
		m.clampNormal()
	case 'G':
		m.row, m.col = m.motion(ch, m.count)
		m.count = 0
		m.clampNormal()

	// operators and prefixes
	case 'd', 'c', 'y':
		m.pending = string(ch)
		m.opCount = m.count
		m.count = 0
	case 'g', 'r':
		m.pending = string(ch)

	// edits
	case 'x':
		m.deleteChars(m.col, m.col+m.takeCount())
	case 'X':
		n := m.takeCount()
		if m.col > 0 {
			m.deleteChars(m.col-n, m.col)
		}
	case 'D':
		m.count = 0
		m.deleteChars(m.col, len(m.line()))
	case 'C':
		m.count = 0
		m.cutChars(m.col, len(m.line()))
		m.col = len(m.line())
		m.mode = vimgolf.ModeInsert
	case 's':
		m.cutChars(m.col, m.col+m.takeCount())
		m.mode = vimgolf.ModeInsert
		m.clampInsert()
	case 'S':
		m.changeLines(m.row, m.row+m.takeCount()-1)
	case 'J':
		m.join(m.takeCount())
	case '~':
		m.toggleCase(m.takeCount())
	case 'p':
		m.put(true, m.takeCount())
	case 'P':
		m.put(false, m.takeCount())

	// insert and replace
	case 'i':
		m.enterInsert(m.col)
	case 'a':
		col := m.col
		if len(m.line()) > 0 {
			col++
		}
		m.enterInsert(col)
	case 'I':
		m.enterInsert(firstNonBlank(m.line()))
		if strings.TrimLeft(m.line(), " \t") == "" {
			m.col = len(m.line())
		}
	case 'A':
		m.enterInsert(len(m.line()))
	case 'o':
		m.openLine(m.row + 1)
	case 'O':
		m.openLine(m.row)
	case 'R':
		m.count = 0
		m.mode = vimgolf.ModeReplace

	default:
		// Keys without a simulated meaning leave the buffer alone.
		m.count = 0
	}
}

func (m *machine) pendingKey(k key) {
	pending := m.pending
	m.pending = ""
	if k.named == vimgolf.KeyEscape {
		m.reset()
		return
	}
	switch pending {
	case "g":
		if k.ch == 'g' {
			n := m.takeCount()
			m.row = n - 1
			m.clampRow()
			m.col = firstNonBlank(m.line())
			m.clampNormal()
		}
		m.count = 0
	case "r":
		n := m.takeCount()
		ch := k.ch
		if k.named == vimgolf.KeyTab {
			ch = '\t'
		}
		if ch == 0 || m.col+n > len(m.line()) {
			return
		}
		l := m.line()
		m.lines[m.row] = l[:m.col] + strings.Repeat(string(ch), n) + l[m.col+n:]
		m.col += n - 1
	case "d", "c", "y":
		m.operator(pending[0], k)
	}
}

// operator applies d, c or y over the motion given by k.
func (m *machine) operator(op byte, k key) {
	if k.named != "" {
		m.reset()
		return
	}
	// a count typed after the operator multiplies the one typed before it
	if k.ch >= '1' && k.ch <= '9' || k.ch == '0' && m.count > 0 {
		m.pending = string(op)
		m.count = m.count*10 + int(k.ch-'0')
		if m.count > maxCount {
			m.count = maxCount
		}
		return
	}
	// explicit is zero when no count was typed at all, which matters for G
	explicit := 0
	if m.opCount > 0 || m.count > 0 {
		explicit = max(m.opCount, 1) * max(m.count, 1)
	}
	m.opCount = 0
	m.count = 0
	n := min(max(explicit, 1), maxCount)

	switch k.ch {
	case op: // dd, cc, yy
		last := min(m.row+n-1, len(m.lines)-1)
		m.linewiseOp(op, m.row, last)
	case 'G':
		toRow, _ := m.motion('G', explicit)
		from, to := min(m.row, toRow), max(m.row, toRow)
		m.linewiseOp(op, from, to)
	case 'j', 'k':
		toRow, _ := m.motion(k.ch, n)
		if k.ch == 'j' && m.row+n >= len(m.lines) || k.ch == 'k' && m.row-n < 0 {
			return
		}
		from, to := m.row, toRow
		if from > to {
			from, to = to, from
		}
		m.linewiseOp(op, from, to)
	case 'h', 'l', ' ', '0', '^', '$', 'w', 'b', 'e':
		m.charwiseOp(op, k.ch, n)
	}
}

func (m *machine) charwiseOp(op, motion byte, n int) {
	startCol := m.col
	if op == 'c' && motion == 'w' {
		// cw on a non-blank behaves like ce
		if l := m.line(); startCol < len(l) && !isBlank(l[startCol]) {
			motion = 'e'
		}
	}
	row, col := m.motion(motion, n)
	l := m.line()
	var from, to int
	switch {
	case row > m.row:
		from, to = startCol, len(l)
	case row < m.row:
		from, to = 0, startCol
	case col >= startCol:
		from, to = startCol, col
		if motion == 'e' || motion == '$' {
			to++
		}
		if motion == 'l' || motion == ' ' {
			to = startCol + n
		}
	default:
		from, to = col, startCol
	}
	if to > len(l) {
		to = len(l)
	}
	if from >= to && !(op == 'c' && from == to) {
		return
	}

	switch op {
	case 'd':
		m.deleteChars(from, to)
	case 'c':
		m.cutChars(from, to)
		m.col = from
		m.mode = vimgolf.ModeInsert
		m.clampInsert()
	case 'y':
		m.register = l[from:to]
		m.linewise = false
		m.col = from
		m.clampNormal()
	}
}

func (m *machine) linewiseOp(op byte, from, to int) {
	m.register = strings.Join(m.lines[from:to+1], "\n")
	m.linewise = true
	switch op {
	case 'd':
		m.lines = append(m.lines[:from], m.lines[to+1:]...)
		if len(m.lines) == 0 {
			m.lines = []string{""}
		}
		m.row = from
		m.clampRow()
		m.col = firstNonBlank(m.line())
		m.clampNormal()
	case 'c':
		m.changeLines(from, to)
	case 'y':
		m.row = from
		m.clampNormal()
	}
}

// motion computes where a motion repeated n times lands, without moving.
func (m *machine) motion(ch byte, n int) (int, int) {
	row, col := m.row, m.col
	switch ch {
	case 'h':
		col -= n
		if col < 0 {
			col = 0
		}
	case 'l', ' ':
		col += n
		if last := len(m.lines[row]) - 1; col > last {
			col = last
		}
	case 'j':
		row += n
	case 'k':
		row -= n
	case '0':
		col = 0
	case '^':
		col = firstNonBlank(m.lines[row])
	case '$':
		row += n - 1
		if row >= len(m.lines) {
			row = len(m.lines) - 1
		}
		col = len(m.lines[row]) - 1
	case 'G':
		// n == 0 means no count was given
		if n > 0 {
			row = n - 1
		} else {
			row = len(m.lines) - 1
		}
		if row >= len(m.lines) {
			row = len(m.lines) - 1
		}
		col = firstNonBlank(m.lines[row])
	case 'w':
		for i := 0; i < n; i++ {
			row, col = m.wordForward(row, col)
		}
	case 'b':
		for i := 0; i < n; i++ {
			row, col = m.wordBack(row, col)
		}
	case 'e':
		for i := 0; i < n; i++ {
			row, col = m.wordEnd(row, col)
		}
	}
	if row < 0 {
		row = 0
	}
	if row >= len(m.lines) {
		row = len(m.lines) - 1
	}
	if col < 0 {
		col = 0
	}
	return row, col
}

func (m *machine) moveLeftWrap(n int) {
	for i := 0; i < n; i++ {
		if m.col > 0 {
			m.col--
			continue
		}
		if m.row == 0 {
			break
		}
		m.row--
		m.col = len(m.line()) - 1
	}
	m.clampNormal()
}

// ── Word motions ────────────────────────────────────────────────────────────

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

func isWord(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

// class groups characters the way vim's small-word motions do: blanks,
// keyword characters, and other punctuation.
func class(b byte) int {
	switch {
	case isBlank(b):
		return 0
	case isWord(b):
		return 1
	}
	return 2
}

// wordForward returns the start of the next word. At the end of the buffer it
// returns one past the last character of the last line.
func (m *machine) wordForward(row, col int) (int, int) {
	l := m.lines[row]
	if col < len(l) {
		c := class(l[col])
		if c != 0 {
			for col < len(l) && class(l[col]) == c {
				col++
			}
		}
		for col < len(l) && isBlank(l[col]) {
			col++
		}
		if col < len(l) {
			return row, col
		}
	}
	for r := row + 1; r < len(m.lines); r++ {
		next := m.lines[r]
		c := 0
		for c < len(next) && isBlank(next[c]) {
			c++
		}
		if c < len(next) || len(next) == 0 {
			return r, c
		}
	}
	return row, len(l)
}

func (m *machine) wordEnd(row, col int) (int, int) {
	col++
	for {
		l := m.lines[row]
		if col >= len(l) {
			if row+1 >= len(m.lines) {
				return row, len(l) - 1
			}
			row++
			col = 0
			continue
		}
		if isBlank(l[col]) {
			col++
			continue
		}
		break
	}
	l := m.lines[row]
	c := class(l[col])
	for col+1 < len(l) && class(l[col+1]) == c {
		col++
	}
	return row, col
}

func (m *machine) wordBack(row, col int) (int, int) {
	col--
	for {
		if col < 0 {
			if row == 0 {
				return 0, 0
			}
			row--
			col = len(m.lines[row]) - 1
			if col < 0 {
				return row, 0
			}
			continue
		}
		if isBlank(m.lines[row][col]) {
			col--
			continue
		}
		break
	}
	l := m.lines[row]
	c := class(l[col])
	for col > 0 && class(l[col-1]) == c {
		col--
	}
	return row, col
}

// ── Edits ───────────────────────────────────────────────────────────────────

// cutChars removes [from, to) on the current line into the register.
func (m *machine) cutChars(from, to int) {
	l := m.line()
	if from < 0 {
		from = 0
	}
	if to > len(l) {
		to = len(l)
	}
	if from >= to {
		return
	}
	m.register = l[from:to]
	m.linewise = false
	m.lines[m.row] = l[:from] + l[to:]
	m.col = from
}

func (m *machine) deleteChars(from, to int) {
	m.cutChars(from, to)
	m.clampNormal()
}

func (m *machine) changeLines(from, to int) {
	if to >= len(m.lines) {
		to = len(m.lines) - 1
	}
	m.register = strings.Join(m.lines[from:to+1], "\n")
	m.linewise = true
	rest := append([]string{""}, m.lines[to+1:]...)
	m.lines = append(m.lines[:from], rest...)
	m.row, m.col = from, 0
	m.mode = vimgolf.ModeInsert
}

func (m *machine) join(n int) {
	if n < 2 {
		n = 2
	}
	for i := 1; i < n && m.row+1 < len(m.lines); i++ {
		cur := strings.TrimRight(m.line(), " \t")
		next := strings.TrimLeft(m.lines[m.row+1], " \t")
		sep := " "
		if next == "" || cur == "" {
			sep = ""
		}
		m.col = len(cur)
		if sep == "" && m.col > 0 {
			m.col--
		}
		m.lines[m.row] = cur + sep + next
		m.lines = append(m.lines[:m.row+1], m.lines[m.row+2:]...)
	}
	m.clampNormal()
}

func (m *machine) toggleCase(n int) {
	l := []byte(m.line())
	if len(l) == 0 {
		return
	}
	end := m.col + n
	if end > len(l) {
		end = len(l)
	}
	for i := m.col; i < end; i++ {
		switch b := l[i]; {
		case b >= 'a' && b <= 'z':
			l[i] = b - 32
		case b >= 'A' && b <= 'Z':
			l[i] = b + 32
		}
	}
	m.lines[m.row] = string(l)
	m.col = end
	m.clampNormal()
}

func (m *machine) put(after bool, n int) {
	if m.register == "" && !m.linewise {
		return
	}
	if m.linewise {
		block := strings.Split(m.register, "\n")
		var inserted []string
		for i := 0; i < n; i++ {
			inserted = append(inserted, block...)
		}
		at := m.row
		if after {
			at++
		}
		tail := append(inserted, m.lines[at:]...)
		m.lines = append(m.lines[:at:at], tail...)
		m.row = at
		m.col = firstNonBlank(m.line())
		m.clampNormal()
		return
	}

	text := strings.Repeat(m.register, n)
	l := m.line()
	at := m.col
	if after && len(l) > 0 {
		at++
	}
	m.lines[m.row] = l[:at] + text + l[at:]
	m.col = at + len(text) - 1
	m.clampNormal()
}

func (m *machine) enterInsert(col int) {
	m.count = 0
	m.col = col
	m.mode = vimgolf.ModeInsert
	m.clampInsert()
}

func (m *machine) openLine(at int) {
	m.count = 0
	tail := append([]string{""}, m.lines[at:]...)
	m.lines = append(m.lines[:at:at], tail...)
	m.row, m.col = at, 0
	m.mode = vimgolf.ModeInsert
}

// ── Insert and replace modes ────────────────────────────────────────────────

func (m *machine) insertKey(k key) {
	switch k.named {
	case vimgolf.KeyEscape:
		m.leaveInsert()
	case vimgolf.KeyEnter:
		m.splitLine()
	case vimgolf.KeyBackspace:
		m.backspace()
	case vimgolf.KeyTab:
		m.insertText("\t")
	default:
		m.insertText(string(k.ch))
	}
}

func (m *machine) replaceKey(k key) {
	switch k.named {
	case vimgolf.KeyEscape:
		m.leaveInsert()
	case vimgolf.KeyEnter:
		m.splitLine()
	case vimgolf.KeyBackspace:
		if m.col > 0 {
			m.col--
		}
	case vimgolf.KeyTab:
		m.overwrite('\t')
	default:
		m.overwrite(k.ch)
	}
}

func (m *machine) leaveInsert() {
	m.mode = vimgolf.ModeNormal
	if m.col > 0 {
		m.col--
	}
	m.clampNormal()
}

func (m *machine) insertText(s string) {
	l := m.line()
	m.lines[m.row] = l[:m.col] + s + l[m.col:]
	m.col += len(s)
}

func (m *machine) overwrite(b byte) {
	l := m.line()
	if m.col < len(l) {
		m.lines[m.row] = l[:m.col] + string(b) + l[m.col+1:]
	} else {
		m.lines[m.row] = l + string(b)
	}
	m.col++
}

func (m *machine) splitLine() {
	l := m.line()
	before, after := l[:m.col], l[m.col:]
	m.lines[m.row] = before
	tail := append([]string{after}, m.lines[m.row+1:]...)
	m.lines = append(m.lines[:m.row+1:m.row+1], tail...)
	m.row++
	m.col = 0
}

func (m *machine) backspace() {
	if m.col > 0 {
		l := m.line()
		m.lines[m.row] = l[:m.col-1] + l[m.col:]
		m.col--
		return
	}
	if m.row == 0 {
		return
	}
	prev := m.lines[m.row-1]
	m.lines[m.row-1] = prev + m.line()
	m.lines = append(m.lines[:m.row], m.lines[m.row+1:]...)
	m.row--
	m.col = len(prev)
}
