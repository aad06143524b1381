package decor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/iw2rmb/bunmark/buffer"
	"github.com/iw2rmb/bunmark/markdown"
)

var (
	ErrOverlap    = errors.New("decor: mark overlaps an existing mark")
	ErrEmptyRange = errors.New("decor: empty mark range")
	ErrLineRange  = errors.New("decor: line out of range")
)

type Kind uint8

const (
	// Hidden removes the covered text from the rendering.
	Hidden Kind = iota
	// Replaced draws Widget instead of the covered text.
	Replaced
	// Styled keeps the text and applies Class to it.
	Styled
)

func (k Kind) String() string {
	switch k {
	case Hidden:
		return "hidden"
	case Replaced:
		return "replaced"
	case Styled:
		return "styled"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

type Decoration struct {
	Kind   Kind
	Widget Widget
	Class  string
}

// Mark is a decoration applied to a rune range of one line.
type Mark struct {
	Line  int
	Range markdown.Range
	Decoration
}

// Handle names a mark inside its Ledger. Handles are never reused; a handle
// of a cleared mark no longer resolves.
type Handle uint64

type entry struct {
	handle Handle
	mark   Mark
}

// Ledger is the arena of marks and line classes of one editor.
//
// The zero value is ready to use.
type Ledger struct {
	lines   map[int][]entry
	index   map[Handle]int // handle -> line
	classes map[int][]string
	lists   map[buffer.LineID]bool

	next Handle
	open bool
}

func (l *Ledger) init() {
	if l.lines == nil {
		l.lines = make(map[int][]entry)
		l.index = make(map[Handle]int)
		l.classes = make(map[int][]string)
		l.lists = make(map[buffer.LineID]bool)
	}
}

// Begin opens a transaction for a full rebuild: every mark and line class is
// cleared.
func (l *Ledger) Begin() {
	l.ClearAll()
	l.open = true
}

// BeginLines opens a transaction rebuilding rows from..to inclusive. When the
// previous transaction never committed, nothing it left can be trusted: the
// whole ledger is cleared instead and BeginLines reports false.
func (l *Ledger) BeginLines(from, to int) bool {
	if l.open {
		l.Begin()
		return false
	}
	l.init()
	for line := range l.lines {
		if line >= from && line <= to {
			l.ClearForLine(line)
		}
	}
	for line := range l.classes {
		if line >= from && line <= to {
			delete(l.classes, line)
		}
	}
	l.open = true
	return true
}

// Commit closes the current transaction.
func (l *Ledger) Commit() { l.open = false }

// Open reports whether a transaction is in progress.
func (l *Ledger) Open() bool { return l.open }

// Add records a mark. Ranges that overlap a mark already on the line are
// rejected with ErrOverlap.
func (l *Ledger) Add(line int, r markdown.Range, d Decoration) (Handle, error) {
	if line < 0 {
		return 0, fmt.Errorf("%w: %d", ErrLineRange, line)
	}
	if r.Start < 0 || r.Empty() {
		return 0, fmt.Errorf("%w: %d:[%d,%d)", ErrEmptyRange, line, r.Start, r.End)
	}
	l.init()
	for _, e := range l.lines[line] {
		if e.mark.Range.Overlaps(r) {
			return 0, fmt.Errorf("%w: %d:[%d,%d) with [%d,%d)", ErrOverlap, line, r.Start, r.End, e.mark.Range.Start, e.mark.Range.End)
		}
	}
	l.next++
	h := l.next
	l.lines[line] = append(l.lines[line], entry{handle: h, mark: Mark{Line: line, Range: r, Decoration: d}})
	l.index[h] = line
	return h, nil
}

// Lookup returns the mark named by h.
func (l *Ledger) Lookup(h Handle) (Mark, bool) {
	line, ok := l.index[h]
	if !ok {
		return Mark{}, false
	}
	for _, e := range l.lines[line] {
		if e.handle == h {
			return e.mark, true
		}
	}
	return Mark{}, false
}

// Update swaps the widget of a live mark.
func (l *Ledger) Update(h Handle, w Widget) bool {
	line, ok := l.index[h]
	if !ok {
		return false
	}
	entries := l.lines[line]
	for i := range entries {
		if entries[i].handle == h {
			entries[i].mark.Widget = w
			return true
		}
	}
	return false
}

// Remove clears one mark.
func (l *Ledger) Remove(h Handle) bool {
	line, ok := l.index[h]
	if !ok {
		return false
	}
	delete(l.index, h)
	entries := l.lines[line]
	for i := range entries {
		if entries[i].handle == h {
			entries = slices.Delete(entries, i, i+1)
			break
		}
	}
	if len(entries) == 0 {
		delete(l.lines, line)
	} else {
		l.lines[line] = entries
	}
	return true
}

// ClearAll removes every mark and line class. List flags survive.
func (l *Ledger) ClearAll() {
	l.init()
	clear(l.lines)
	clear(l.index)
	clear(l.classes)
}

// Truncate removes marks and classes of rows at or after n, as when the
// document shrank.
func (l *Ledger) Truncate(n int) {
	for line := range l.lines {
		if line >= n {
			l.ClearForLine(line)
		}
	}
	for line := range l.classes {
		if line >= n {
			delete(l.classes, line)
		}
	}
}

// ClearForLine removes the marks of one line.
func (l *Ledger) ClearForLine(line int) {
	for _, e := range l.lines[line] {
		delete(l.index, e.handle)
	}
	delete(l.lines, line)
}

// ResetLine removes the marks and classes of one line.
func (l *Ledger) ResetLine(line int) {
	l.ClearForLine(line)
	delete(l.classes, line)
}

// Len returns the number of live marks.
func (l *Ledger) Len() int { return len(l.index) }

// Marks returns the marks of line ordered by start offset.
func (l *Ledger) Marks(line int) []Mark {
	entries := l.lines[line]
	if len(entries) == 0 {
		return nil
	}
	out := make([]Mark, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.mark)
	}
	slices.SortFunc(out, func(a, b Mark) int { return a.Range.Start - b.Range.Start })
	return out
}

// All returns every mark ordered by line, then start offset.
func (l *Ledger) All() []Mark {
	var out []Mark
	for _, line := range l.markLines() {
		out = append(out, l.Marks(line)...)
	}
	return out
}

// Lines returns the rows that carry marks or classes, ascending.
func (l *Ledger) Lines() []int {
	seen := make(map[int]struct{}, len(l.lines)+len(l.classes))
	for line := range l.lines {
		seen[line] = struct{}{}
	}
	for line := range l.classes {
		seen[line] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for line := range seen {
		out = append(out, line)
	}
	slices.Sort(out)
	return out
}

func (l *Ledger) markLines() []int {
	out := make([]int, 0, len(l.lines))
	for line := range l.lines {
		out = append(out, line)
	}
	slices.Sort(out)
	return out
}

// AddLineClass tags a line; adding a class twice is a no-op.
func (l *Ledger) AddLineClass(line int, class string) {
	if line < 0 || class == "" {
		return
	}
	l.init()
	if slices.Contains(l.classes[line], class) {
		return
	}
	l.classes[line] = append(l.classes[line], class)
}

func (l *Ledger) LineClasses(line int) []string {
	return slices.Clone(l.classes[line])
}

// ClassLines returns the rows tagged with class, ascending.
func (l *Ledger) ClassLines(class string) []int {
	var out []int
	for line, classes := range l.classes {
		if slices.Contains(classes, class) {
			out = append(out, line)
		}
	}
	slices.Sort(out)
	return out
}

func (l *Ledger) HasLineClass(line int, class string) bool {
	return slices.Contains(l.classes[line], class)
}

// ShiftLines moves marks and classes of rows after row by delta. With a
// negative delta, rows row+1..row-delta were removed and lose theirs.
func (l *Ledger) ShiftLines(row, delta int) {
	if delta == 0 || l.lines == nil {
		return
	}
	lines := make(map[int][]entry, len(l.lines))
	for line, entries := range l.lines {
		next, ok := shiftRow(line, row, delta)
		if !ok {
			for _, e := range entries {
				delete(l.index, e.handle)
			}
			continue
		}
		for i := range entries {
			entries[i].mark.Line = next
			l.index[entries[i].handle] = next
		}
		lines[next] = entries
	}
	l.lines = lines

	classes := make(map[int][]string, len(l.classes))
	for line, cs := range l.classes {
		if next, ok := shiftRow(line, row, delta); ok {
			classes[next] = cs
		}
	}
	l.classes = classes
}

func shiftRow(line, row, delta int) (int, bool) {
	if line <= row {
		return line, true
	}
	if delta < 0 && line <= row-delta {
		return 0, false
	}
	return line + delta, true
}

// ConfirmList records whether the line with id was last seen as a list item.
// The flag follows the line, not its row.
func (l *Ledger) ConfirmList(id buffer.LineID, on bool) {
	if id == 0 {
		return
	}
	l.init()
	if on {
		l.lists[id] = true
		return
	}
	delete(l.lists, id)
}

func (l *Ledger) IsConfirmedList(id buffer.LineID) bool { return l.lists[id] }

// PruneListFlags drops flags of lines for which live reports false and
// returns how many were dropped.
func (l *Ledger) PruneListFlags(live func(buffer.LineID) bool) int {
	n := 0
	for id := range l.lists {
		if !live(id) {
			delete(l.lists, id)
			n++
		}
	}
	return n
}
