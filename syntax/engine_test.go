package syntax

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/iw2rmb/bunmark/buffer"
	"github.com/iw2rmb/bunmark/decor"
	"github.com/iw2rmb/bunmark/fence"
	"github.com/iw2rmb/bunmark/internal/clock"
	"github.com/iw2rmb/bunmark/markdown"
	"github.com/iw2rmb/bunmark/session"
)

func r(start, end int) markdown.Range { return markdown.Range{Start: start, End: end} }

func hidden(line, start, end int) decor.Mark {
	return decor.Mark{Line: line, Range: r(start, end), Decoration: decor.Decoration{Kind: decor.Hidden}}
}

func styled(line, start, end int, class string) decor.Mark {
	return decor.Mark{Line: line, Range: r(start, end), Decoration: decor.Decoration{Kind: decor.Styled, Class: class}}
}

func replaced(line, start, end int, w decor.Widget) decor.Mark {
	return decor.Mark{Line: line, Range: r(start, end), Decoration: decor.Decoration{Kind: decor.Replaced, Widget: w}}
}

func newEngine() *Engine { return New(Options{}) }

func scanAt(e *Engine, doc *buffer.Buffer, st *session.State, cursor buffer.Pos, now time.Time) Result {
	return e.Scan(doc, st, FullPass(cursor, now, true))
}

func TestScan_HeadingHideAndReveal(t *testing.T) {
	doc := buffer.New("## Title\nbody", buffer.Options{})
	e := newEngine()
	now := clock.NewTest().Now()

	scanAt(e, doc, nil, buffer.Pos{Row: 1}, now)
	if diff := cmp.Diff([]decor.Mark{hidden(0, 0, 3)}, e.Ledger().Marks(0)); diff != "" {
		t.Fatalf("inactive heading (-want +got):\n%s", diff)
	}
	if !e.Ledger().HasLineClass(0, "heading-2") {
		t.Fatalf("classes=%v", e.Ledger().LineClasses(0))
	}

	scanAt(e, doc, nil, buffer.Pos{Row: 0, Col: 5}, now)
	if got := e.Ledger().Marks(0); len(got) != 0 {
		t.Fatalf("active heading must show its marker, got %v", got)
	}
	if !e.Ledger().HasLineClass(0, ClassActive) {
		t.Fatalf("active line not classed")
	}
}

func TestScan_ListWidgets(t *testing.T) {
	doc := buffer.New("- a\n1. b\n- [x] c\n    * d", buffer.Options{})
	e := newEngine()
	e.Scan(doc, nil, FullPass(buffer.Pos{}, time.Time{}, false))

	want := []decor.Mark{
		replaced(0, 0, 1, decor.Bullet{}),
		replaced(1, 0, 2, decor.OrderedMarker{Marker: "1."}),
		hidden(2, 0, 2),
		replaced(2, 2, 5, decor.Checkbox{Checked: true, Row: 2}),
		replaced(3, 4, 5, decor.Bullet{}),
	}
	if diff := cmp.Diff(want, e.Ledger().All()); diff != "" {
		t.Fatalf("list marks (-want +got):\n%s", diff)
	}
	wantClasses := []string{ClassList, "list-indent-0", ClassTask, ClassTaskChecked}
	if diff := cmp.Diff(wantClasses, e.Ledger().LineClasses(2)); diff != "" {
		t.Fatalf("task classes (-want +got):\n%s", diff)
	}
	if !e.Ledger().HasLineClass(3, "list-indent-1") {
		t.Fatalf("nested depth class missing: %v", e.Ledger().LineClasses(3))
	}
}

func TestScan_ActiveListLine(t *testing.T) {
	clk := clock.NewTest()
	doc := buffer.New("- item", buffer.Options{})
	st := session.New(session.ModeSidebar, session.DefaultTiming())
	e := newEngine()

	scanAt(e, doc, st, buffer.Pos{Col: 0}, clk.Now())
	if got := e.Ledger().Marks(0); len(got) != 0 {
		t.Fatalf("cursor on the marker must reveal it, got %v", got)
	}

	scanAt(e, doc, st, buffer.Pos{Col: 5}, clk.Now())
	if got := e.Ledger().Marks(0); len(got) != 1 || got[0].Widget != (decor.Bullet{}) {
		t.Fatalf("cursor away from the marker collapses it, got %v", got)
	}

	st.NoteTyping(clk.Now())
	scanAt(e, doc, st, buffer.Pos{Col: 1}, clk.FastForward(100*time.Millisecond))
	if got := e.Ledger().Marks(0); len(got) != 1 {
		t.Fatalf("typing grace keeps the marker collapsed, got %v", got)
	}

	scanAt(e, doc, st, buffer.Pos{Col: 1}, clk.FastForward(time.Second))
	if got := e.Ledger().Marks(0); len(got) != 0 {
		t.Fatalf("after the grace window the marker is visible again, got %v", got)
	}
}

func TestScan_CheckboxSuppression(t *testing.T) {
	clk := clock.NewTest()
	doc := buffer.New("- [x] buy milk", buffer.Options{})
	st := session.New(session.ModeSidebar, session.DefaultTiming())
	e := newEngine()

	st.NoteCheckboxToggle(clk.Now())
	scanAt(e, doc, st, buffer.Pos{Col: 3}, clk.FastForward(10*time.Millisecond))
	want := []decor.Mark{
		hidden(0, 0, 2),
		replaced(0, 2, 5, decor.Checkbox{Checked: true}),
	}
	if diff := cmp.Diff(want, e.Ledger().Marks(0)); diff != "" {
		t.Fatalf("suppressed active task (-want +got):\n%s", diff)
	}

	scanAt(e, doc, st, buffer.Pos{Col: 3}, clk.FastForward(2*time.Second))
	if got := e.Ledger().Marks(0); len(got) != 0 {
		t.Fatalf("after suppression the active task shows its syntax, got %v", got)
	}
}

func TestScan_InlineNearCursor(t *testing.T) {
	doc := buffer.New("**a** and **b**", buffer.Options{})
	e := newEngine()

	scanAt(e, doc, nil, buffer.Pos{Col: 1}, time.Time{})
	want := []decor.Mark{
		styled(0, 2, 3, StyleStrong),
		hidden(0, 10, 12),
		styled(0, 12, 13, StyleStrong),
		hidden(0, 13, 15),
	}
	if diff := cmp.Diff(want, e.Ledger().All()); diff != "" {
		t.Fatalf("active inline (-want +got):\n%s", diff)
	}
}

func TestScan_LinksCodeAndImages(t *testing.T) {
	doc := buffer.New("see [docs](http://x)\n![a](b.png) *x*\nuse `[a](b)` here", buffer.Options{})
	e := newEngine()
	e.Scan(doc, nil, FullPass(buffer.Pos{}, time.Time{}, false))

	want := []decor.Mark{
		hidden(0, 4, 5),
		styled(0, 5, 9, StyleLink),
		hidden(0, 9, 10),
		hidden(0, 10, 20),
		hidden(1, 12, 13),
		styled(1, 13, 14, StyleEm),
		hidden(1, 14, 15),
		hidden(2, 4, 5),
		styled(2, 5, 11, StyleInlineCode),
		hidden(2, 11, 12),
	}
	if diff := cmp.Diff(want, e.Ledger().All()); diff != "" {
		t.Fatalf("inline marks (-want +got):\n%s", diff)
	}
}

func TestScan_QuoteProximity(t *testing.T) {
	doc := buffer.New("> quote", buffer.Options{})
	e := newEngine()

	scanAt(e, doc, nil, buffer.Pos{Col: 5}, time.Time{})
	if diff := cmp.Diff([]decor.Mark{hidden(0, 0, 2)}, e.Ledger().Marks(0)); diff != "" {
		t.Fatalf("far cursor (-want +got):\n%s", diff)
	}
	scanAt(e, doc, nil, buffer.Pos{Col: 1}, time.Time{})
	if got := e.Ledger().Marks(0); len(got) != 0 {
		t.Fatalf("near cursor must reveal the quote marker, got %v", got)
	}
}

func TestScan_RuleAndCommand(t *testing.T) {
	doc := buffer.New("---\n#file:notes/a.md\nx", buffer.Options{})
	e := newEngine()
	scanAt(e, doc, nil, buffer.Pos{Row: 2}, time.Time{})

	want := []decor.Mark{hidden(0, 0, 3), hidden(1, 0, 6)}
	if diff := cmp.Diff(want, e.Ledger().All()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if !e.Ledger().HasLineClass(0, ClassRule) || !e.Ledger().HasLineClass(1, ClassCommand) {
		t.Fatalf("classes missing")
	}
}

func TestScan_FenceContainment(t *testing.T) {
	doc := buffer.New("```go\n**a**\n# h\n```\n**b**", buffer.Options{})
	e := newEngine()
	e.Scan(doc, nil, FullPass(buffer.Pos{}, time.Time{}, false))

	l := e.Ledger()
	for _, row := range []int{1, 2} {
		if got := l.Marks(row); len(got) != 0 {
			t.Fatalf("row %d inside the fence got marks %v", row, got)
		}
		if diff := cmp.Diff([]string{ClassCodeBlock}, l.LineClasses(row)); diff != "" {
			t.Fatalf("row %d classes (-want +got):\n%s", row, diff)
		}
	}
	if diff := cmp.Diff([]decor.Mark{hidden(0, 0, 5)}, l.Marks(0)); diff != "" {
		t.Fatalf("opening fence (-want +got):\n%s", diff)
	}
	if !l.HasLineClass(0, ClassCodeBlockStart) || !l.HasLineClass(3, ClassCodeBlockEnd) {
		t.Fatalf("fence classes missing")
	}
	if got := l.Marks(4); len(got) != 3 {
		t.Fatalf("line after the fence is formatted again, got %v", got)
	}
}

func TestScan_ActiveFenceLineStaysVisible(t *testing.T) {
	doc := buffer.New("```\ncode\n```", buffer.Options{})
	e := newEngine()
	scanAt(e, doc, nil, buffer.Pos{Row: 2}, time.Time{})
	if got := e.Ledger().Marks(2); len(got) != 0 {
		t.Fatalf("active fence line hidden: %v", got)
	}
	if got := e.Ledger().Marks(0); len(got) != 1 {
		t.Fatalf("inactive fence line visible: %v", got)
	}
}

const richDoc = `# Title
Some **bold**, *em*, ~~gone~~ and ` + "`code`" + ` with [a link](http://x).
- item with **bold**
- [ ] task
1. first
> quote *em*
---
![img](pic.png) trailing *x*
` + "```" + `
**not bold**
` + "```" + `
#file:notes/a.md
plain`

func TestScan_Idempotent(t *testing.T) {
	doc := buffer.New(richDoc, buffer.Options{})
	e := newEngine()
	cursor := buffer.Pos{Row: 1, Col: 8}

	scanAt(e, doc, nil, cursor, time.Time{})
	first := e.Ledger().All()
	firstLines := e.Ledger().Lines()

	e.Ledger().ClearAll()
	scanAt(e, doc, nil, cursor, time.Time{})
	if diff := cmp.Diff(first, e.Ledger().All()); diff != "" {
		t.Fatalf("second scan differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(firstLines, e.Ledger().Lines()); diff != "" {
		t.Fatalf("line set differs (-first +second):\n%s", diff)
	}
}

func TestScan_NoOverlappingMarks(t *testing.T) {
	doc := buffer.New(richDoc, buffer.Options{})
	e := newEngine()
	for row := 0; row < doc.LineCount(); row++ {
		res := scanAt(e, doc, nil, buffer.Pos{Row: row, Col: 3}, time.Time{})
		if res.Skipped != 0 {
			t.Fatalf("cursor row %d: %d marks skipped", row, res.Skipped)
		}
		marks := e.Ledger().All()
		for i := 1; i < len(marks); i++ {
			a, b := marks[i-1], marks[i]
			if a.Line == b.Line && a.Range.Overlaps(b.Range) {
				t.Fatalf("cursor row %d: overlapping marks %v and %v", row, a, b)
			}
		}
	}
}

func TestScan_ExactlyOneActiveLine(t *testing.T) {
	doc := buffer.New("# a\n# b\n# c\n# d", buffer.Options{})
	e := newEngine()
	for cur := 0; cur < 4; cur++ {
		scanAt(e, doc, nil, buffer.Pos{Row: cur, Col: 2}, time.Time{})
		for row := 0; row < 4; row++ {
			hasMarker := len(e.Ledger().Marks(row)) > 0
			if row == cur && hasMarker {
				t.Fatalf("cursor row %d hid its marker", row)
			}
			if row != cur && !hasMarker {
				t.Fatalf("cursor row %d: row %d kept its marker", cur, row)
			}
		}
	}

	e.Scan(doc, nil, FullPass(buffer.Pos{Row: 1}, time.Time{}, false))
	if len(e.Ledger().Marks(1)) == 0 {
		t.Fatalf("an unfocused editor has no active line")
	}
}

func TestScan_Window(t *testing.T) {
	text := "# h"
	for i := 1; i < 100; i++ {
		text += "\n# h"
	}
	doc := buffer.New(text, buffer.Options{})
	e := New(Options{Margin: 5})

	res := e.Scan(doc, nil, Pass{Focused: false, From: 50, To: 60})
	if res.Full || res.From != 45 || res.To != 65 || res.Lines != 21 {
		t.Fatalf("window=%+v", res)
	}
	lines := e.Ledger().Lines()
	if lines[0] != 45 || lines[len(lines)-1] != 65 {
		t.Fatalf("marked rows %v", lines)
	}

	res = e.Scan(doc, nil, Pass{From: 95, To: 120})
	if res.To != 99 {
		t.Fatalf("window not clamped: %+v", res)
	}
	if !e.Ledger().HasLineClass(45, "heading-1") {
		t.Fatalf("rows outside the window must be kept")
	}
}

func TestScan_WindowRebuildsPreviousActiveRow(t *testing.T) {
	text := "# h"
	for i := 1; i < 100; i++ {
		text += "\n# h"
	}
	doc := buffer.New(text, buffer.Options{})
	e := New(Options{Margin: 2})

	e.Scan(doc, nil, FullPass(buffer.Pos{Row: 0}, time.Time{}, true))
	if len(e.Ledger().Marks(0)) != 0 || !e.Ledger().HasLineClass(0, ClassActive) {
		t.Fatalf("row 0 must be active after the full scan")
	}

	res := e.Scan(doc, nil, Pass{Cursor: buffer.Pos{Row: 95}, Focused: true, From: 90, To: 99})
	if res.Full {
		t.Fatalf("windowed pass went full: %+v", res)
	}
	if got, want := e.Ledger().ClassLines(ClassActive), []int{95}; !cmp.Equal(got, want) {
		t.Fatalf("active rows=%v, want %v", got, want)
	}
	if len(e.Ledger().Marks(0)) != 1 || !e.Ledger().HasLineClass(0, "heading-1") {
		t.Fatalf("row 0 marks=%v classes=%v", e.Ledger().Marks(0), e.Ledger().LineClasses(0))
	}
	if res.Lines != 13 {
		t.Fatalf("lines=%d, want the window plus the old active row", res.Lines)
	}
}

func TestScan_WindowAfterAbortedScanGoesFull(t *testing.T) {
	doc := buffer.New("# a\n# b", buffer.Options{})
	e := newEngine()
	e.Ledger().Begin()
	e.Ledger().Add(7, r(0, 1), decor.Decoration{Kind: decor.Hidden})

	res := e.Scan(doc, nil, Pass{From: 0, To: 0})
	if !res.Full || res.Lines != 2 {
		t.Fatalf("res=%+v", res)
	}
	if len(e.Ledger().Marks(7)) != 0 {
		t.Fatalf("stale mark survived")
	}
}

func TestScan_ConfirmedBareMarker(t *testing.T) {
	doc := buffer.New("x\n- \n-", buffer.Options{})
	e := newEngine()
	scanAt(e, doc, nil, buffer.Pos{}, time.Time{})

	doc.SetCursor(buffer.Pos{Row: 1, Col: 2})
	doc.DeleteBackward()
	e.Scan(doc, nil, FullPass(buffer.Pos{}, time.Time{}, false))

	if diff := cmp.Diff([]decor.Mark{replaced(1, 0, 1, decor.Bullet{})}, e.Ledger().Marks(1)); diff != "" {
		t.Fatalf("trimmed list line (-want +got):\n%s", diff)
	}
	if got := e.Ledger().Marks(2); len(got) != 0 {
		t.Fatalf("never-confirmed bare marker rendered: %v", got)
	}
}

type panicDoc struct {
	*buffer.Buffer
	row int
}

func (d panicDoc) Line(row int) string {
	if row == d.row {
		panic("bad line")
	}
	return d.Buffer.Line(row)
}

func TestScan_BadLineDoesNotAbortPass(t *testing.T) {
	buf := buffer.New("# a\n# b\n# c", buffer.Options{})
	doc := panicDoc{Buffer: buf, row: 1}
	fences := &fence.Tracker{}
	fences.Rebuild(buf)
	e := New(Options{Fences: fences})
	res := e.Scan(doc, nil, FullPass(buffer.Pos{}, time.Time{}, false))
	if res.Skipped != 1 {
		t.Fatalf("skipped=%d, want 1", res.Skipped)
	}
	if len(e.Ledger().Marks(0)) != 1 || len(e.Ledger().Marks(2)) != 1 {
		t.Fatalf("rows around the bad line lost their marks: %v", e.Ledger().All())
	}
	if e.Ledger().Open() {
		t.Fatalf("transaction left open")
	}
}

func TestSubtract(t *testing.T) {
	marks := []decor.Mark{{Range: r(2, 4)}, {Range: r(6, 7)}}
	got := subtract(r(0, 10), marks)
	want := []markdown.Range{r(0, 2), r(4, 6), r(7, 10)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}
