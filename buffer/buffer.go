package buffer

import "strings"

type Options struct {
	HistoryLimit int // default: 1000
}

type selectionState struct {
	active bool
	anchor Pos
	end    Pos
}

// Buffer is the pure document state: text, line handles, cursor, and selection.
type Buffer struct {
	lines  [][]rune
	ids    []LineID
	nextID LineID

	// version bumps on any observable change (text, cursor, selection);
	// textVersion only when the text itself changes.
	version     uint64
	textVersion uint64

	cursor Pos
	sel    selectionState

	opt  Options
	hist historyState

	lastChange    Change
	hasLastChange bool
}

func New(text string, opt Options) *Buffer {
	if opt.HistoryLimit == 0 {
		opt.HistoryLimit = 1000
	}
	b := &Buffer{
		lines: splitLines(text),
		opt:   opt,
	}
	b.ids = b.freshIDs(len(b.lines))
	return b
}

func (b *Buffer) Text() string {
	var sb strings.Builder
	for i, line := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(line))
	}
	return sb.String()
}

// Len returns the document length in runes, counting each line break as one.
func (b *Buffer) Len() int {
	n := len(b.lines) - 1
	for _, line := range b.lines {
		n += len(line)
	}
	return max(n, 0)
}

func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns the text of row, or "" when row is out of range.
func (b *Buffer) Line(row int) string {
	if row < 0 || row >= len(b.lines) {
		return ""
	}
	return string(b.lines[row])
}

// LineRunes returns a copy of the runes of row.
func (b *Buffer) LineRunes(row int) []rune {
	if row < 0 || row >= len(b.lines) {
		return nil
	}
	return append([]rune(nil), b.lines[row]...)
}

func (b *Buffer) LineLen(row int) int { return b.lineLen(row) }

// LineID returns the stable handle of row, or 0 when row is out of range.
func (b *Buffer) LineID(row int) LineID {
	if row < 0 || row >= len(b.ids) {
		return 0
	}
	return b.ids[row]
}

// RowForID returns the current row of the line identified by id.
func (b *Buffer) RowForID(id LineID) (int, bool) {
	if id == 0 {
		return 0, false
	}
	for row, cur := range b.ids {
		if cur == id {
			return row, true
		}
	}
	return 0, false
}

// HasLineID reports whether id still names a live line.
func (b *Buffer) HasLineID(id LineID) bool {
	_, ok := b.RowForID(id)
	return ok
}

func (b *Buffer) Version() uint64 { return b.version }

func (b *Buffer) TextVersion() uint64 { return b.textVersion }

func (b *Buffer) Cursor() Pos { return b.cursor }

func (b *Buffer) SetCursor(p Pos) {
	next := b.clampPos(p)
	if next == b.cursor {
		return
	}
	change := b.beginChange(ChangeSourceLocal)
	b.cursor = next
	b.version++
	b.commitChange(change)
}

func (b *Buffer) Selection() (Range, bool) {
	if !b.sel.active {
		return Range{}, false
	}
	r := NormalizeRange(Range{Start: b.sel.anchor, End: b.sel.end})
	if r.IsEmpty() {
		return Range{}, false
	}
	return r, true
}

// SelectionRaw returns the raw selection anchor/end without normalization.
//
// UI layers use it to keep the selection direction on shift+click.
func (b *Buffer) SelectionRaw() (Range, bool) {
	if !b.sel.active || b.sel.anchor == b.sel.end {
		return Range{}, false
	}
	return Range{Start: b.sel.anchor, End: b.sel.end}, true
}

func (b *Buffer) SetSelection(r Range) {
	clamped := ClampRange(r, len(b.lines), b.lineLen)
	next := selectionState{active: true, anchor: clamped.Start, end: clamped.End}
	if NormalizeRange(clamped).IsEmpty() {
		next = selectionState{}
	}
	if selectionStateEqual(b.sel, next) {
		return
	}
	change := b.beginChange(ChangeSourceLocal)
	prevRange, prevOK := b.Selection()
	b.sel = next
	nextRange, nextOK := b.Selection()
	if prevOK == nextOK && (!prevOK || prevRange == nextRange) {
		return
	}
	b.version++
	b.commitChange(change)
}

func (b *Buffer) ClearSelection() {
	if !b.sel.active {
		return
	}
	change := b.beginChange(ChangeSourceLocal)
	_, had := b.Selection()
	b.sel = selectionState{}
	if had {
		b.version++
		b.commitChange(change)
	}
}

// TextInRange returns the document text covered by r.
func (b *Buffer) TextInRange(r Range) string {
	return textForLinesRange(b.lines, NormalizeRange(ClampRange(r, len(b.lines), b.lineLen)))
}

func (b *Buffer) lineLen(row int) int {
	if row < 0 || row >= len(b.lines) {
		return 0
	}
	return len(b.lines[row])
}

func (b *Buffer) clampPos(p Pos) Pos {
	return ClampPos(p, len(b.lines), b.lineLen)
}

func (b *Buffer) freshIDs(n int) []LineID {
	ids := make([]LineID, n)
	for i := range ids {
		b.nextID++
		ids[i] = b.nextID
	}
	return ids
}

func splitLines(text string) [][]rune {
	parts := strings.Split(text, "\n")
	lines := make([][]rune, 0, len(parts))
	for _, s := range parts {
		lines = append(lines, []rune(s))
	}
	if len(lines) == 0 {
		lines = append(lines, nil)
	}
	return lines
}

func selectionStateEqual(a, b selectionState) bool {
	if !a.active && !b.active {
		return true
	}
	return a.active == b.active && a.anchor == b.anchor && a.end == b.end
}
