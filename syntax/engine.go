// Package syntax hides markdown syntax on the lines the cursor is not on.
//
// Each scan clears the ledger window it is about to rebuild, walks the lines
// top to bottom and issues hide, replace and style marks. The cursor's line
// keeps its markers visible, except list markers during the input grace
// windows and inline markers away from the cursor.
package syntax

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/iw2rmb/bunmark/buffer"
	"github.com/iw2rmb/bunmark/decor"
	"github.com/iw2rmb/bunmark/fence"
	"github.com/iw2rmb/bunmark/markdown"
	"github.com/iw2rmb/bunmark/session"
)

// Doc is the read view of the buffer a scan walks.
type Doc interface {
	LineCount() int
	Line(row int) string
	LineID(row int) buffer.LineID
	HasLineID(id buffer.LineID) bool
}

// Line classes.
const (
	ClassActive         = "active-line"
	ClassList           = "list-line"
	ClassTask           = "task-line"
	ClassTaskChecked    = "task-checked-line"
	ClassQuote          = "blockquote-line"
	ClassRule           = "hr-line"
	ClassFence          = "code-fence-line"
	ClassCodeBlock      = "code-block-line"
	ClassCodeBlockStart = "code-block-start"
	ClassCodeBlockEnd   = "code-block-end"
	ClassCommand        = "file-command-line"
)

// Inline style classes.
const (
	StyleEm         = "em"
	StyleStrong     = "strong"
	StyleStrongEm   = "strong-em"
	StyleStrike     = "strike"
	StyleInlineCode = "inline-code"
	StyleLink       = "link"
)

// HeadingClass returns "heading-N".
func HeadingClass(level int) string { return "heading-" + strconv.Itoa(level) }

// IndentClass returns "list-indent-N".
func IndentClass(depth int) string { return "list-indent-" + strconv.Itoa(depth) }

type Options struct {
	Ledger *decor.Ledger
	Fences *fence.Tracker
	Logger *slog.Logger
	// Margin is the number of rows scanned above and below the viewport.
	Margin int
}

type Engine struct {
	ledger *decor.Ledger
	fences *fence.Tracker
	log    *slog.Logger
	margin int
}

func New(opt Options) *Engine {
	e := &Engine{
		ledger: opt.Ledger,
		fences: opt.Fences,
		log:    opt.Logger,
		margin: opt.Margin,
	}
	if e.ledger == nil {
		e.ledger = &decor.Ledger{}
	}
	if e.fences == nil {
		e.fences = &fence.Tracker{}
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	if e.margin < 0 {
		e.margin = 0
	}
	return e
}

func (e *Engine) Ledger() *decor.Ledger  { return e.ledger }
func (e *Engine) Fences() *fence.Tracker { return e.fences }

// Pass describes one scan.
type Pass struct {
	Cursor  buffer.Pos
	Now     time.Time
	Focused bool
	// From and To are the first and last visible rows. A negative From
	// requests a full scan.
	From int
	To   int
}

// FullPass returns a pass over the whole document.
func FullPass(cursor buffer.Pos, now time.Time, focused bool) Pass {
	return Pass{Cursor: cursor, Now: now, Focused: focused, From: -1, To: -1}
}

type Result struct {
	Full     bool
	From, To int
	Lines    int
	Marks    int
	Skipped  int
}

// Scan rebuilds the decorations of the pass window. A nil st behaves as a
// session with no recent input.
func (e *Engine) Scan(doc Doc, st *session.State, p Pass) Result {
	if st == nil {
		st = session.New(session.ModeSidebar, session.DefaultTiming())
	}
	n := doc.LineCount()
	res := Result{Full: p.From < 0, From: 0, To: n - 1}
	if !res.Full {
		res.From = max(0, p.From-e.margin)
		res.To = min(n-1, max(p.From, p.To)+e.margin)
		if !e.ledger.BeginLines(res.From, res.To) {
			res.Full, res.From, res.To = true, 0, n-1
		}
		e.ledger.Truncate(n)
	}
	if res.Full {
		e.ledger.Begin()
		e.ledger.PruneListFlags(doc.HasLineID)
	}
	defer e.ledger.Commit()

	g := grace{
		typing:     st.Typing(p.Now),
		suppressed: st.Suppressed(p.Now),
		checkbox:   st.RecentCheckbox(p.Now),
	}
	active := -1
	if p.Focused {
		active = p.Cursor.Row
	}
	for row := res.From; row <= res.To; row++ {
		e.scanLine(doc, row, row == active, p.Cursor.Col, g, &res)
	}
	// A windowed pass also rebuilds the row that was active before the
	// cursor left the window, so only one line stays active.
	if !res.Full {
		for _, row := range e.ledger.ClassLines(ClassActive) {
			if row >= res.From && row <= res.To || row >= n {
				continue
			}
			e.ledger.ResetLine(row)
			e.scanLine(doc, row, row == active, p.Cursor.Col, g, &res)
		}
	}
	res.Marks = e.ledger.Len()
	e.log.Debug("syntax scan",
		"full", res.Full, "from", res.From, "to", res.To,
		"marks", res.Marks, "skipped", res.Skipped)
	return res
}

type grace struct {
	typing     bool
	suppressed bool
	checkbox   bool
}

type style struct {
	r     markdown.Range
	class string
}

// line is the scan state of one row.
type line struct {
	e      *Engine
	row    int
	text   string
	id     buffer.LineID
	active bool
	col    int
	grace  grace
	res    *Result

	claimed markdown.Ranges
	styles  []style
}

// scanLine decorates one row. A panic while reading or decorating the row
// skips it and the pass goes on.
func (e *Engine) scanLine(doc Doc, row int, active bool, col int, g grace, res *Result) {
	res.Lines++
	defer func() {
		if r := recover(); r != nil {
			res.Skipped++
			e.log.Warn("syntax: line aborted", "line", row, "panic", fmt.Sprint(r))
		}
	}()
	ln := &line{
		e:      e,
		row:    row,
		text:   doc.Line(row),
		id:     doc.LineID(row),
		active: active,
		col:    col,
		grace:  g,
		res:    res,
	}
	ln.scan(doc)
}

func (ln *line) scan(doc Doc) {
	ledger := ln.e.ledger
	if ln.active {
		ledger.AddLineClass(ln.row, ClassActive)
	}

	fs := ln.e.fences.At(doc, ln.row)
	switch {
	case fs.Inside:
		ledger.AddLineClass(ln.row, ClassCodeBlock)
		return
	case fs.Delimiter:
		ledger.AddLineClass(ln.row, ClassCodeBlock)
		ledger.AddLineClass(ln.row, ClassFence)
		if fs.Open {
			ledger.AddLineClass(ln.row, ClassCodeBlockStart)
		} else {
			ledger.AddLineClass(ln.row, ClassCodeBlockEnd)
		}
		if !ln.active {
			ln.hide(markdown.Range{End: ln.runes()})
		}
		return
	}

	cl := markdown.Classify(ln.text)
	ln.confirmList(cl)

	switch cl.Kind {
	case markdown.KindHeading:
		ledger.AddLineClass(ln.row, HeadingClass(cl.Level))
		if !ln.active {
			ln.hide(cl.MarkerRange())
		}
		ln.claimed.Add(cl.MarkerRange())
	case markdown.KindRule:
		ledger.AddLineClass(ln.row, ClassRule)
		if !ln.active {
			ln.hide(markdown.Range{End: ln.runes()})
		}
		return
	case markdown.KindQuote:
		ledger.AddLineClass(ln.row, ClassQuote)
		if !ln.active || !markdown.Near(ln.col, cl.MarkerStart, cl.MarkerEnd) {
			ln.hide(cl.MarkerRange())
		}
		ln.claimed.Add(cl.MarkerRange())
	case markdown.KindCommand:
		ledger.AddLineClass(ln.row, ClassCommand)
		if !ln.active || !markdown.Near(ln.col, cl.MarkerStart, cl.MarkerEnd) {
			ln.hide(cl.MarkerRange())
		}
		ln.claimed.Add(cl.MarkerRange())
	case markdown.KindUnordered, markdown.KindOrdered, markdown.KindTask:
		ln.list(cl)
	case markdown.KindPlain:
		ln.bareMarker()
	}

	ln.inline(cl.ContentStart)
	ln.applyStyles()
}

func (ln *line) runes() int { return utf8.RuneCountInString(ln.text) }

// confirmList keeps the list flag of the line in step with its text. A bare
// marker left after trailing whitespace was trimmed keeps its flag.
func (ln *line) confirmList(cl markdown.Line) {
	switch {
	case cl.IsList():
		ln.e.ledger.ConfirmList(ln.id, true)
	case markdown.IsBareMarker(ln.text) && ln.e.ledger.IsConfirmedList(ln.id):
	default:
		ln.e.ledger.ConfirmList(ln.id, false)
	}
}

// collapsed reports whether the list markers of the line render as widgets.
func (ln *line) collapsed(cl markdown.Line) bool {
	if !ln.active {
		return true
	}
	g := ln.grace
	if g.typing || g.suppressed || g.checkbox {
		return true
	}
	end := cl.MarkerEnd
	if cl.IsTask {
		end = max(end, cl.BoxRange().End)
	}
	return !markdown.Near(ln.col, cl.MarkerStart, end)
}

func (ln *line) list(cl markdown.Line) {
	ledger := ln.e.ledger
	ledger.AddLineClass(ln.row, ClassList)
	ledger.AddLineClass(ln.row, IndentClass(cl.Depth))
	if cl.IsTask {
		ledger.AddLineClass(ln.row, ClassTask)
		if cl.Checked {
			ledger.AddLineClass(ln.row, ClassTaskChecked)
		}
	}

	marker := cl.MarkerRange()
	if !ln.collapsed(cl) {
		ln.claimed.Add(marker)
		if cl.IsTask {
			ln.claimed.Add(cl.BoxRange())
		}
		return
	}

	switch {
	case cl.IsTask:
		ln.replace(cl.BoxRange(), decor.Checkbox{Checked: cl.Checked, Row: ln.row})
		if !cl.Ordered {
			ln.hide(markdown.Range{Start: cl.MarkerStart, End: cl.BoxStart})
		} else {
			ln.claimed.Add(marker)
		}
	case cl.Ordered:
		ln.replace(marker, decor.OrderedMarker{Marker: cl.Marker})
	default:
		ln.replace(marker, decor.Bullet{})
	}
}

func (ln *line) bareMarker() {
	if !ln.e.ledger.IsConfirmedList(ln.id) {
		return
	}
	r, ok := markdown.BareMarker(ln.text)
	if !ok {
		return
	}
	ln.e.ledger.AddLineClass(ln.row, ClassList)
	ln.e.ledger.AddLineClass(ln.row, IndentClass(markdown.IndentWidth(ln.text)/markdown.IndentUnit))
	if ln.active {
		ln.claimed.Add(r)
		return
	}
	marker := string([]rune(ln.text)[r.Start:r.End])
	switch marker {
	case "-", "+", "*":
		ln.replace(r, decor.Bullet{})
	default:
		ln.replace(r, decor.OrderedMarker{Marker: marker})
	}
}

// inline hides emphasis, strikethrough, code and link syntax, in that order,
// each kind skipping ranges an earlier one claimed. Image spans are claimed
// first and left to the image layer.
func (ln *line) inline(from int) {
	in := markdown.ScanInline(ln.text, from)

	for _, s := range in.Images {
		if !ln.claimed.Overlaps(s.Full()) {
			ln.claimed.Add(s.Full())
		}
	}

	// The cursor's line keeps every inline marker while the user is typing.
	if ln.active && (ln.grace.typing || ln.grace.suppressed) {
		return
	}

	for _, s := range in.Emphasis {
		ln.span(s, emphasisStyle(s.Open.Len()))
	}
	for _, s := range in.Strike {
		ln.span(s, StyleStrike)
	}
	for _, s := range in.Code {
		if ln.span(s, StyleInlineCode) {
			ln.claimed.Add(s.Inner)
		}
	}
	for _, s := range in.Links {
		ln.span(s, StyleLink)
	}
}

// span hides the delimiters of s unless the cursor is near it, and queues
// the style of its content. It reports whether s was taken.
func (ln *line) span(s markdown.Span, class string) bool {
	delims := s.Delimiters()
	for _, d := range delims {
		if ln.claimed.Overlaps(d) {
			return false
		}
	}
	if !ln.revealed(s) {
		for _, d := range delims {
			ln.hide(d)
		}
	}
	ln.claimed.Add(delims...)
	ln.styles = append(ln.styles, style{r: s.Inner, class: class})
	return true
}

func (ln *line) revealed(s markdown.Span) bool {
	if !ln.active {
		return false
	}
	c := ln.col
	if c >= s.Inner.Start && c <= s.Inner.End {
		return true
	}
	for _, d := range s.Delimiters() {
		if markdown.Near(c, d.Start, d.End) {
			return true
		}
	}
	return false
}

func emphasisStyle(run int) string {
	switch run {
	case 1:
		return StyleEm
	case 2:
		return StyleStrong
	default:
		return StyleStrongEm
	}
}

// applyStyles adds the queued content styles in the parts of their ranges
// no mark covers yet. Earlier styles win over later ones.
func (ln *line) applyStyles() {
	for _, st := range ln.styles {
		for _, r := range subtract(st.r, ln.e.ledger.Marks(ln.row)) {
			ln.add(r, decor.Decoration{Kind: decor.Styled, Class: st.class})
		}
	}
}

func subtract(r markdown.Range, marks []decor.Mark) []markdown.Range {
	out := []markdown.Range{r}
	for _, m := range marks {
		var next []markdown.Range
		for _, piece := range out {
			if !piece.Overlaps(m.Range) {
				next = append(next, piece)
				continue
			}
			if piece.Start < m.Range.Start {
				next = append(next, markdown.Range{Start: piece.Start, End: m.Range.Start})
			}
			if m.Range.End < piece.End {
				next = append(next, markdown.Range{Start: m.Range.End, End: piece.End})
			}
		}
		out = next
	}
	return out
}

func (ln *line) hide(r markdown.Range) {
	ln.add(r, decor.Decoration{Kind: decor.Hidden})
	ln.claimed.Add(r)
}

func (ln *line) replace(r markdown.Range, w decor.Widget) {
	ln.add(r, decor.Decoration{Kind: decor.Replaced, Widget: w})
	ln.claimed.Add(r)
}

func (ln *line) add(r markdown.Range, d decor.Decoration) {
	if r.Empty() {
		return
	}
	if _, err := ln.e.ledger.Add(ln.row, r, d); err != nil {
		ln.res.Skipped++
		ln.e.log.Debug("syntax: mark skipped",
			"line", ln.row, "start", r.Start, "end", r.End, "kind", d.Kind.String(), "err", err)
	}
}
