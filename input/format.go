package input

import (
	"regexp"
	"strings"

	"github.com/iw2rmb/bunmark/buffer"
)

// Inline markers for Wrap.
const (
	Bold   = "**"
	Italic = "*"
	Strike = "~~"
	Code   = "`"
)

// Wrap surrounds sel with left and right and keeps the wrapped text
// selected. An empty sel inserts both markers and puts the cursor between
// them.
func Wrap(sel buffer.Range, left, right string) Result {
	sel = buffer.NormalizeRange(sel)
	n := runeLen(left)
	if sel.IsEmpty() {
		return Result{
			Edits:  []buffer.TextEdit{insertAt(sel.Start, left+right)},
			Cursor: buffer.Pos{Row: sel.Start.Row, Col: sel.Start.Col + n},
		}
	}
	end := sel.End
	if end.Row == sel.Start.Row {
		end.Col += n
	}
	inner := buffer.Range{Start: buffer.Pos{Row: sel.Start.Row, Col: sel.Start.Col + n}, End: end}
	return Result{
		Edits: []buffer.TextEdit{
			insertAt(sel.End, right),
			insertAt(sel.Start, left),
		},
		Cursor:    end,
		Selection: &inner,
	}
}

type Prefix uint8

const (
	PrefixBullet Prefix = iota
	PrefixNumber
	PrefixTask
	PrefixQuote
)

var (
	bulletPrefixRE = regexp.MustCompile(`^(\s*)[-+*]\s+`)
	numberPrefixRE = regexp.MustCompile(`^(\s*)\d+[.)]\s+`)
	taskPrefixRE   = regexp.MustCompile(`^(\s*)[-+*]\s+\[[ xX]\]\s+`)
	quotePrefixRE  = regexp.MustCompile(`^(\s*)>\s+`)
)

// ToggleLinePrefix adds or removes a line prefix on rows from..to. Bullet,
// number and quote prefixes toggle; the task prefix turns a bullet into a
// task and a task back into a bullet.
func ToggleLinePrefix(doc Doc, from, to int, p Prefix) Result {
	if to < from {
		from, to = to, from
	}
	var res Result
	last := ""
	for row := from; row <= to; row++ {
		text := doc.Line(row)
		next := togglePrefix(text, p)
		last = next
		if next == text {
			continue
		}
		res.Edits = append(res.Edits, replaceLine(doc, row, next))
	}
	res.Cursor = buffer.Pos{Row: to, Col: runeLen(last)}
	return res
}

func togglePrefix(text string, p Prefix) string {
	switch p {
	case PrefixBullet:
		if bulletPrefixRE.MatchString(text) {
			return bulletPrefixRE.ReplaceAllString(text, "$1")
		}
		return "- " + text
	case PrefixNumber:
		if numberPrefixRE.MatchString(text) {
			return numberPrefixRE.ReplaceAllString(text, "$1")
		}
		return "1. " + text
	case PrefixTask:
		switch {
		case taskPrefixRE.MatchString(text):
			return taskPrefixRE.ReplaceAllString(text, "$1- ")
		case bulletPrefixRE.MatchString(text):
			return bulletPrefixRE.ReplaceAllString(text, "$1- [ ] ")
		case strings.TrimSpace(text) == "":
			return "- [ ] "
		default:
			return "- [ ] " + text
		}
	case PrefixQuote:
		if quotePrefixRE.MatchString(text) {
			return quotePrefixRE.ReplaceAllString(text, "$1")
		}
		return "> " + text
	}
	return text
}

// InsertCodeBlock wraps sel in a fenced block, or opens an empty block at
// the cursor when sel is empty.
func InsertCodeBlock(doc Doc, sel buffer.Range) Result {
	sel = buffer.NormalizeRange(sel)
	if sel.IsEmpty() {
		return Result{
			Edits:  []buffer.TextEdit{insertAt(sel.Start, "\n```\n\n```\n")},
			Cursor: buffer.Pos{Row: sel.Start.Row + 2},
		}
	}
	text := textIn(doc, sel)
	lines := strings.Split(text, "\n")
	start := buffer.Pos{Row: sel.Start.Row + 2}
	end := buffer.Pos{Row: start.Row + len(lines) - 1, Col: runeLen(lines[len(lines)-1])}
	return Result{
		Edits:     []buffer.TextEdit{{Range: sel, Text: "\n```\n" + text + "\n```\n"}},
		Cursor:    end,
		Selection: &buffer.Range{Start: start, End: end},
	}
}

func textIn(doc Doc, r buffer.Range) string {
	var sb strings.Builder
	for row := r.Start.Row; row <= r.End.Row; row++ {
		rs := []rune(doc.Line(row))
		from, to := 0, len(rs)
		if row == r.Start.Row {
			from = min(r.Start.Col, len(rs))
		}
		if row == r.End.Row {
			to = min(r.End.Col, len(rs))
		}
		if row > r.Start.Row {
			sb.WriteByte('\n')
		}
		if from < to {
			sb.WriteString(string(rs[from:to]))
		}
	}
	return sb.String()
}
