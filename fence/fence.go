// Package fence caches which lines of a document sit inside fenced code
// blocks.
package fence

import (
	"strings"

	"github.com/iw2rmb/bunmark/buffer"
	"github.com/iw2rmb/bunmark/markdown"
)

// Lines is the read view of a document the tracker scans.
type Lines interface {
	LineCount() int
	Line(row int) string
}

// State describes one line relative to fenced blocks.
type State struct {
	// Inside marks interior lines of a block, delimiters excluded.
	Inside bool
	// Delimiter marks any fence-looking line met while scanning. Inside a
	// block a run of the other fence character is a Delimiter that neither
	// opens nor closes.
	Delimiter bool
	Open      bool
	Close     bool

	Char rune
	Info string
	// Start is the row of the opening delimiter of the enclosing block, or -1.
	Start int
}

// Tracker holds the per-line fence cache. The cache is rebuilt lazily on the
// first query after an invalidation.
type Tracker struct {
	states   []State
	valid    bool
	rebuilds int
}

func (t *Tracker) Invalidate() { t.valid = false }

func (t *Tracker) Valid() bool { return t.valid }

// Rebuilds counts full passes, for tests and debug logging.
func (t *Tracker) Rebuilds() int { return t.rebuilds }

// At returns the fence state of row.
func (t *Tracker) At(doc Lines, row int) State {
	if !t.valid || len(t.states) != doc.LineCount() {
		t.Rebuild(doc)
	}
	if row < 0 || row >= len(t.states) {
		return State{Start: -1}
	}
	return t.states[row]
}

// IsLineInFence reports whether row is an interior line of a code block.
func (t *Tracker) IsLineInFence(doc Lines, row int) bool {
	return t.At(doc, row).Inside
}

// Rebuild recomputes every line with one forward pass. A block closes on the
// next fence of the same character; an unclosed block runs to the end.
func (t *Tracker) Rebuild(doc Lines) {
	n := doc.LineCount()
	if cap(t.states) >= n {
		t.states = t.states[:n]
	} else {
		t.states = make([]State, n)
	}

	var (
		in    bool
		char  rune
		info  string
		start = -1
	)
	for row := 0; row < n; row++ {
		l := markdown.Classify(doc.Line(row))
		st := State{Start: -1}
		switch {
		case l.Kind == markdown.KindFence && !in:
			in, char, info, start = true, l.FenceChar, l.Info, row
			st = State{Delimiter: true, Open: true, Char: char, Info: info, Start: start}
		case l.Kind == markdown.KindFence && l.FenceChar == char:
			st = State{Delimiter: true, Close: true, Char: char, Info: info, Start: start}
			in, char, info, start = false, 0, "", -1
		case l.Kind == markdown.KindFence:
			st = State{Delimiter: true, Inside: true, Char: char, Info: info, Start: start}
		case in:
			st = State{Inside: true, Char: char, Info: info, Start: start}
		}
		t.states[row] = st
	}
	t.valid = true
	t.rebuilds++
}

// NoteChange invalidates the cache when ch can move a block boundary: the
// line count changed, or an edited line was or now is a fence delimiter.
// It reports whether the cache was invalidated.
func (t *Tracker) NoteChange(doc Lines, ch buffer.Change) bool {
	if !t.valid {
		return true
	}
	if ch.LineCountChanged() || len(t.states) != doc.LineCount() {
		t.valid = false
		return true
	}
	for _, e := range ch.AppliedEdits {
		if hasFenceRun(e.InsertText) || hasFenceRun(e.DeletedText) {
			t.valid = false
			return true
		}
		for row := e.RangeBefore.Start.Row; row <= e.RangeBefore.End.Row; row++ {
			if row < len(t.states) && t.states[row].Delimiter {
				t.valid = false
				return true
			}
		}
		for row := e.RangeAfter.Start.Row; row <= e.RangeAfter.End.Row; row++ {
			if markdown.Classify(doc.Line(row)).Kind == markdown.KindFence {
				t.valid = false
				return true
			}
		}
	}
	return false
}

func hasFenceRun(s string) bool {
	return strings.Contains(s, "```") || strings.Contains(s, "~~~")
}
