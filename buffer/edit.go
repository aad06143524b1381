package buffer

import "strings"

// InsertText inserts text at the cursor, or replaces the active selection.
func (b *Buffer) InsertText(s string) {
	if s == "" {
		b.DeleteSelection()
		return
	}
	r, ok := b.Selection()
	if !ok {
		r = Range{Start: b.cursor, End: b.cursor}
	}
	b.editRange(r, s, ChangeSourceLocal)
}

// InsertRune inserts a single rune at the cursor, or replaces the active selection.
func (b *Buffer) InsertRune(r rune) {
	b.InsertText(string(r))
}

// InsertNewline inserts a line break at the cursor, or replaces the active
// selection.
func (b *Buffer) InsertNewline() {
	b.InsertText("\n")
}

// DeleteBackward applies backspace semantics.
func (b *Buffer) DeleteBackward() {
	if _, ok := b.Selection(); ok {
		b.DeleteSelection()
		return
	}
	row, col := b.cursor.Row, b.cursor.Col
	switch {
	case row == 0 && col == 0:
		return
	case col > 0:
		start := prevGraphemeBoundary(b.lines[row], col)
		b.editRange(Range{Start: Pos{Row: row, Col: start}, End: b.cursor}, "", ChangeSourceLocal)
	default:
		// Join with previous line (delete the newline).
		prev := row - 1
		b.editRange(Range{Start: Pos{Row: prev, Col: len(b.lines[prev])}, End: b.cursor}, "", ChangeSourceLocal)
	}
}

// DeleteForward applies delete-key semantics.
func (b *Buffer) DeleteForward() {
	if _, ok := b.Selection(); ok {
		b.DeleteSelection()
		return
	}
	row, col := b.cursor.Row, b.cursor.Col
	lastRow := len(b.lines) - 1
	switch {
	case row == lastRow && col == len(b.lines[lastRow]):
		return
	case col < len(b.lines[row]):
		end := nextGraphemeBoundary(b.lines[row], col)
		b.editRange(Range{Start: b.cursor, End: Pos{Row: row, Col: end}}, "", ChangeSourceLocal)
	default:
		b.editRange(Range{Start: b.cursor, End: Pos{Row: row + 1, Col: 0}}, "", ChangeSourceLocal)
	}
}

// DeleteSelection deletes the active selection, if any.
func (b *Buffer) DeleteSelection() {
	r, ok := b.Selection()
	if !ok {
		return
	}
	b.editRange(r, "", ChangeSourceLocal)
}

// SetText replaces the whole document, as when a file is reloaded from disk.
// The replacement is one undoable step and the cursor is clamped in place.
func (b *Buffer) SetText(text string) {
	lastRow := len(b.lines) - 1
	full := Range{End: Pos{Row: lastRow, Col: len(b.lines[lastRow])}}

	prev := b.snapshot()
	change := b.beginChange(ChangeSourceRemote)
	cursor := b.cursor
	_, applied, changed := b.replaceRange(full, text)
	if !changed {
		return
	}
	b.cursor = b.clampPos(cursor)
	b.sel = selectionState{}
	b.version++
	b.textVersion++
	b.recordUndo(prev)
	change.addAppliedEdit(applied)
	b.commitChange(change)
}

func (b *Buffer) editRange(r Range, text string, src ChangeSource) {
	prev := b.snapshot()
	change := b.beginChange(src)
	nextCursor, applied, changed := b.replaceRange(r, text)
	if !changed {
		return
	}
	b.cursor = nextCursor
	b.sel = selectionState{}
	b.version++
	b.textVersion++
	b.recordUndo(prev)
	change.addAppliedEdit(applied)
	b.commitChange(change)
}

func (b *Buffer) replaceRange(r Range, text string) (nextCursor Pos, applied AppliedEdit, changed bool) {
	r = NormalizeRange(ClampRange(r, len(b.lines), b.lineLen))
	if r.IsEmpty() && text == "" {
		return b.cursor, AppliedEdit{}, false
	}

	startRow, startCol := r.Start.Row, r.Start.Col
	endRow, endCol := r.End.Row, r.End.Col
	deletedText := textForLinesRange(b.lines, r)
	if deletedText == text {
		return b.cursor, AppliedEdit{}, false
	}

	prefix := append([]rune(nil), b.lines[startRow][:startCol]...)
	suffix := append([]rune(nil), b.lines[endRow][endCol:]...)

	parts := strings.Split(text, "\n")
	repl := make([][]rune, 0, len(parts))
	for i, p := range parts {
		line := []rune(p)
		if i == 0 {
			line = append(prefix, line...)
		}
		if i == len(parts)-1 {
			nextCursor = Pos{Row: startRow + i, Col: len(line)}
			line = append(line, suffix...)
		}
		repl = append(repl, line)
	}

	replIDs := b.freshIDs(len(repl))
	keep := 0
	// A pure insertion of whole lines at column 0 pushes the original line
	// down; its identity follows the content.
	if startCol == 0 && r.IsEmpty() && len(repl) > 1 && len(suffix) > 0 {
		keep = len(repl) - 1
	}
	replIDs[keep] = b.ids[startRow]

	lines := make([][]rune, 0, len(b.lines)-(endRow-startRow+1)+len(repl))
	lines = append(lines, b.lines[:startRow]...)
	lines = append(lines, repl...)
	lines = append(lines, b.lines[endRow+1:]...)

	ids := make([]LineID, 0, len(lines))
	ids = append(ids, b.ids[:startRow]...)
	ids = append(ids, replIDs...)
	ids = append(ids, b.ids[endRow+1:]...)

	b.lines = lines
	b.ids = ids
	applied = AppliedEdit{
		RangeBefore: r,
		RangeAfter:  Range{Start: r.Start, End: nextCursor},
		InsertText:  text,
		DeletedText: deletedText,
		LinesBefore: endRow - startRow + 1,
		LinesAfter:  len(repl),
	}
	return nextCursor, applied, true
}

func textForLinesRange(lines [][]rune, r Range) string {
	if r.IsEmpty() {
		return ""
	}
	if r.Start.Row == r.End.Row {
		return string(lines[r.Start.Row][r.Start.Col:r.End.Col])
	}

	var sb strings.Builder
	for row := r.Start.Row; row <= r.End.Row; row++ {
		if row > r.Start.Row {
			sb.WriteByte('\n')
		}
		from, to := 0, len(lines[row])
		if row == r.Start.Row {
			from = r.Start.Col
		}
		if row == r.End.Row {
			to = r.End.Col
		}
		sb.WriteString(string(lines[row][from:to]))
	}
	return sb.String()
}
