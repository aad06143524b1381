// Package input rewrites keystrokes before they reach the buffer: list
// continuation on space and Enter, auto-pairs, list indentation, checkbox
// toggles and the formatting commands.
//
// Rules are pure functions of the document and cursor. A rule that applies
// returns the edits to run in place of the keystroke; edits apply in order,
// each in the coordinates left by the previous one.
package input

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/iw2rmb/bunmark/buffer"
	"github.com/iw2rmb/bunmark/markdown"
)

// Doc is the read view of the buffer.
type Doc interface {
	LineCount() int
	Line(row int) string
}

type Result struct {
	Edits  []buffer.TextEdit
	Cursor buffer.Pos
	// Selection, when set, is selected after the edits.
	Selection *buffer.Range
	// Clear lists rows whose confirmed list flag is dropped.
	Clear []int
}

const indentUnit = "    "

var (
	bareDashRE    = regexp.MustCompile(`^(\s*)([-+*])$`)
	spaceMarkerRE = regexp.MustCompile(`^(\s*)([-+*]|\d+[.)])\s$`)
	spaceTaskRE   = regexp.MustCompile(`^(\s*)([-+*]|\d+[.)])\s+\[[ xX]\]\s$`)
	numberedRE    = regexp.MustCompile(`^(\s*)(\d+)([.)])(?:\s+(.*))?$`)
	numberRE      = regexp.MustCompile(`^(\s*)(\d+)([.)])\s+`)
	taskRE        = regexp.MustCompile(`^(\s*)([-+*]|\d+[.)])\s+\[([ xX])\]\s*(.*)$`)
	unorderedRE   = regexp.MustCompile(`^(\s*)([-+*])\s+(.*)$`)
	quoteRE       = regexp.MustCompile(`^(\s*)>\s?(.*)$`)
	listRE        = regexp.MustCompile(`^(\s*)([-+*]|\d+[.)])\s+`)
	orderedRE     = regexp.MustCompile(`^(\s*)\d+([.)])(\s+)`)
)

func insertAt(p buffer.Pos, text string) buffer.TextEdit {
	return buffer.TextEdit{Range: buffer.Range{Start: p, End: p}, Text: text}
}

func replaceLine(doc Doc, row int, text string) buffer.TextEdit {
	return buffer.TextEdit{
		Range: buffer.Range{Start: buffer.Pos{Row: row}, End: buffer.Pos{Row: row, Col: runeLen(doc.Line(row))}},
		Text:  text,
	}
}

func runeLen(s string) int { return len([]rune(s)) }

// Space handles a space typed at the end of a line holding only a list
// marker and one space, under a list item with content: the new item moves
// one level deeper, keeping the task box when the line is a task.
//
// A space typed right after a bare "-" reports the row in Clear and leaves
// the insertion alone.
func Space(doc Doc, cursor buffer.Pos) (Result, bool) {
	text := doc.Line(cursor.Row)
	rs := []rune(text)
	if cursor.Col != len(rs) {
		return Result{}, false
	}
	if bareDashRE.MatchString(text) {
		return Result{Clear: []int{cursor.Row}}, false
	}

	var m []string
	task := false
	if m = spaceTaskRE.FindStringSubmatch(text); m != nil {
		task = true
	} else if m = spaceMarkerRE.FindStringSubmatch(text); m == nil {
		return Result{}, false
	}
	if cursor.Row == 0 || !hasListContent(doc.Line(cursor.Row-1)) {
		return Result{}, false
	}

	marker := m[2]
	if d := marker[len(marker)-1]; d == '.' || d == ')' {
		marker = "1" + string(d)
	}
	prefix := m[1] + indentUnit + marker + " "
	if task {
		prefix += "[ ] "
	}
	prev := cursor.Row - 1
	return Result{
		Edits: []buffer.TextEdit{{
			Range: buffer.Range{
				Start: buffer.Pos{Row: prev, Col: runeLen(doc.Line(prev))},
				End:   buffer.Pos{Row: cursor.Row, Col: len(rs)},
			},
			Text: "\n" + prefix,
		}},
		Cursor: buffer.Pos{Row: cursor.Row, Col: runeLen(prefix)},
	}, true
}

func hasListContent(text string) bool {
	cl := markdown.Classify(text)
	if !cl.IsList() {
		return false
	}
	rs := []rune(text)
	return cl.ContentStart < len(rs) && strings.TrimSpace(string(rs[cl.ContentStart:])) != ""
}

var pairs = map[rune]string{
	'*': "**",
	'`': "``",
	'[': "[]",
	'(': "()",
	'"': `""`,
}

// Pair inserts the closing counterpart of r unless it already follows the
// cursor. A '*' next to another '*' types through, so "**" can be typed.
func Pair(doc Doc, cursor buffer.Pos, r rune) (Result, bool) {
	pair, ok := pairs[r]
	if !ok {
		return Result{}, false
	}
	rs := []rune(doc.Line(cursor.Row))
	col := min(max(cursor.Col, 0), len(rs))
	var before, after rune
	if col > 0 {
		before = rs[col-1]
	}
	if col < len(rs) {
		after = rs[col]
	}
	closing := []rune(pair)[1]
	if after == closing || (r == '*' && before == '*') {
		return Result{}, false
	}
	p := buffer.Pos{Row: cursor.Row, Col: col}
	return Result{
		Edits:  []buffer.TextEdit{insertAt(p, pair)},
		Cursor: buffer.Pos{Row: cursor.Row, Col: col + 1},
	}, true
}

// Enter splits the line at the cursor, continuing lists and quotes.
func Enter(doc Doc, cursor buffer.Pos) Result {
	row := cursor.Row
	text := doc.Line(row)

	newline := func(prefix string) Result {
		return Result{
			Edits:  []buffer.TextEdit{insertAt(cursor, "\n"+prefix)},
			Cursor: buffer.Pos{Row: row + 1, Col: runeLen(prefix)},
		}
	}
	clearLine := func() Result {
		return Result{
			Edits:  []buffer.TextEdit{replaceLine(doc, row, "")},
			Cursor: buffer.Pos{Row: row},
			Clear:  []int{row},
		}
	}

	if m := taskRE.FindStringSubmatch(text); m != nil {
		if strings.TrimSpace(m[4]) == "" {
			return newline(m[1])
		}
		marker := m[2]
		if d := marker[len(marker)-1]; d == '.' || d == ')' {
			marker = strconv.Itoa(nextNumber(doc, row, markdown.IndentWidth(m[1]))) + string(d)
		}
		return newline(m[1] + marker + " [ ] ")
	}

	if m := numberedRE.FindStringSubmatch(text); m != nil {
		indent, delim := m[1], m[3]
		width := markdown.IndentWidth(indent)
		rest := strings.TrimSpace(m[4])
		switch {
		case rest == "" && width >= markdown.IndentUnit:
			next := outdent(indent)
			n := nextNumber(doc, row-1, markdown.IndentWidth(next))
			repl := next + strconv.Itoa(n) + delim + " "
			return Result{
				Edits:  []buffer.TextEdit{replaceLine(doc, row, repl)},
				Cursor: buffer.Pos{Row: row, Col: runeLen(repl)},
			}
		case rest != "":
			return newline(indent + strconv.Itoa(nextNumber(doc, row, width)) + delim + " ")
		default:
			return clearLine()
		}
	}

	if m := unorderedRE.FindStringSubmatch(text); m != nil && markdown.Classify(text).Kind == markdown.KindUnordered {
		if strings.TrimSpace(m[3]) == "" {
			return clearLine()
		}
		return newline(m[1] + m[2] + " ")
	}

	if m := quoteRE.FindStringSubmatch(text); m != nil {
		if strings.TrimSpace(m[2]) == "" {
			return clearLine()
		}
		return newline(m[1] + "> ")
	}

	return newline(leadingWhitespace(text))
}

// nextNumber scans upward from row for the ordered item at indent width and
// returns its successor. A shallower item or the document start yields 1.
func nextNumber(doc Doc, row, width int) int {
	for i := row; i >= 0; i-- {
		m := numberRE.FindStringSubmatch(doc.Line(i))
		if m == nil {
			continue
		}
		w := markdown.IndentWidth(m[1])
		if w == width {
			if n, err := strconv.Atoi(m[2]); err == nil {
				return n + 1
			}
		}
		if w < width {
			return 1
		}
	}
	return 1
}

// outdent removes one indentation unit from the end of indent.
func outdent(indent string) string {
	if strings.HasSuffix(indent, "\t") {
		return indent[:len(indent)-1]
	}
	n := 0
	for n < len(indentUnit) && strings.HasSuffix(indent[:len(indent)-n], " ") {
		n++
	}
	return indent[:len(indent)-n]
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// Tab indents or, with shift, outdents a list line by one unit. Indenting an
// ordered item restarts its number at 1. Non-list lines are not handled.
func Tab(doc Doc, cursor buffer.Pos, shift bool) (Result, bool) {
	row := cursor.Row
	text := doc.Line(row)
	if !listRE.MatchString(text) {
		return Result{}, false
	}

	if shift {
		var next string
		switch {
		case strings.HasPrefix(text, indentUnit):
			next = text[len(indentUnit):]
		case strings.HasPrefix(text, "\t"):
			next = text[1:]
		default:
			return Result{Cursor: cursor}, true
		}
		delta := runeLen(text) - runeLen(next)
		return Result{
			Edits:  []buffer.TextEdit{replaceLine(doc, row, next)},
			Cursor: buffer.Pos{Row: row, Col: max(0, cursor.Col-delta)},
		}, true
	}

	next := indentUnit + text
	if m := orderedRE.FindStringSubmatchIndex(next); m != nil {
		next = next[:m[3]] + "1" + next[m[4]:]
	}
	col := cursor.Col + len(indentUnit)
	if cursor.Col > runeLen(leadingWhitespace(text)) {
		col = cursor.Col + runeLen(next) - runeLen(text)
	}
	return Result{
		Edits:  []buffer.TextEdit{replaceLine(doc, row, next)},
		Cursor: buffer.Pos{Row: row, Col: max(0, col)},
	}, true
}

var toggleRE = regexp.MustCompile(`^(\s*)([-+*]|\d+[.)])\s+\[([ xX])\]`)

// ToggleTask flips the checkbox of the task on row. The cursor stays where
// it was.
func ToggleTask(doc Doc, row int, cursor buffer.Pos) (Result, bool) {
	text := doc.Line(row)
	m := toggleRE.FindStringSubmatchIndex(text)
	if m == nil {
		return Result{}, false
	}
	mark := "x"
	if text[m[6]] != ' ' {
		mark = " "
	}
	col := runeLen(text[:m[6]])
	return Result{
		Edits: []buffer.TextEdit{{
			Range: buffer.Range{Start: buffer.Pos{Row: row, Col: col}, End: buffer.Pos{Row: row, Col: col + 1}},
			Text:  mark,
		}},
		Cursor: cursor,
	}, true
}
