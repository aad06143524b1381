package editor

import (
	"sort"
	"strings"

	"github.com/iw2rmb/bunmark/decor"
)

type VirtualRole int

const (
	// VirtualRoleWidget draws a replaced mark's widget.
	VirtualRoleWidget VirtualRole = iota
	// VirtualRoleOverlay is generic inserted text.
	VirtualRoleOverlay
)

// VirtualDeletion hides a half-open rune range [StartCol, EndCol) within a
// single logical line.
//
// Columns are rune indices in the raw buffer line (before any deletions).
type VirtualDeletion struct {
	StartCol int
	EndCol   int
}

// VirtualInsertion inserts view-only text at a rune column within a single
// logical line.
//
// Col is a rune index in the raw buffer line (before any deletions). Widget,
// when set, is the widget the text draws; clicks on the insertion report it.
type VirtualInsertion struct {
	Col    int
	Text   string
	Role   VirtualRole
	Widget decor.Widget
	// Mark is the raw range the widget stands for.
	MarkStart, MarkEnd int
}

// ClassSpan applies an inline style class to raw columns [StartCol, EndCol).
type ClassSpan struct {
	StartCol int
	EndCol   int
	Class    string
}

type VirtualText struct {
	Insertions []VirtualInsertion
	Deletions  []VirtualDeletion
	Spans      []ClassSpan
}

// virtualTextForMarks turns ledger marks into virtual text: hidden marks
// become deletions, replaced marks a deletion plus the widget insertion and
// styled marks class spans.
func virtualTextForMarks(marks ...[]decor.Mark) VirtualText {
	var vt VirtualText
	for _, ms := range marks {
		for _, mk := range ms {
			r := mk.Range
			switch mk.Kind {
			case decor.Hidden:
				vt.Deletions = append(vt.Deletions, VirtualDeletion{StartCol: r.Start, EndCol: r.End})
			case decor.Replaced:
				vt.Deletions = append(vt.Deletions, VirtualDeletion{StartCol: r.Start, EndCol: r.End})
				if mk.Widget == nil {
					continue
				}
				vt.Insertions = append(vt.Insertions, VirtualInsertion{
					Col:       r.Start,
					Text:      mk.Widget.Text(),
					Role:      VirtualRoleWidget,
					Widget:    mk.Widget,
					MarkStart: r.Start,
					MarkEnd:   r.End,
				})
			case decor.Styled:
				vt.Spans = append(vt.Spans, ClassSpan{StartCol: r.Start, EndCol: r.End, Class: mk.Class})
			}
		}
	}
	return vt
}

func normalizeVirtualText(vt VirtualText, rawLineLen int) VirtualText {
	rawLineLen = max(rawLineLen, 0)

	// Deletions: clamp, drop empty, sort, merge.
	if len(vt.Deletions) > 0 {
		dels := make([]VirtualDeletion, 0, len(vt.Deletions))
		for _, d := range vt.Deletions {
			start := clampInt(d.StartCol, 0, rawLineLen)
			end := clampInt(d.EndCol, 0, rawLineLen)
			if end < start {
				start, end = end, start
			}
			if start == end {
				continue
			}
			dels = append(dels, VirtualDeletion{StartCol: start, EndCol: end})
		}
		sort.Slice(dels, func(i, j int) bool {
			if dels[i].StartCol != dels[j].StartCol {
				return dels[i].StartCol < dels[j].StartCol
			}
			return dels[i].EndCol < dels[j].EndCol
		})
		merged := make([]VirtualDeletion, 0, len(dels))
		for _, d := range dels {
			if len(merged) > 0 {
				last := &merged[len(merged)-1]
				if d.StartCol <= last.EndCol {
					last.EndCol = max(last.EndCol, d.EndCol)
					continue
				}
			}
			merged = append(merged, d)
		}
		vt.Deletions = merged
	}

	// Insertions: clamp cols, enforce single-line, stable sort by col.
	if len(vt.Insertions) > 0 {
		ins := make([]VirtualInsertion, 0, len(vt.Insertions))
		for _, in := range vt.Insertions {
			in.Col = clampInt(in.Col, 0, rawLineLen)
			in.Text = sanitizeSingleLine(in.Text)
			if in.Text == "" {
				continue
			}
			// An anchor inside a deleted range moves to the range start.
			for _, d := range vt.Deletions {
				if in.Col > d.StartCol && in.Col < d.EndCol {
					in.Col = d.StartCol
					break
				}
			}
			ins = append(ins, in)
		}
		sort.SliceStable(ins, func(i, j int) bool { return ins[i].Col < ins[j].Col })
		vt.Insertions = ins
	}

	if len(vt.Spans) > 0 {
		spans := make([]ClassSpan, 0, len(vt.Spans))
		for _, sp := range vt.Spans {
			sp.StartCol = clampInt(sp.StartCol, 0, rawLineLen)
			sp.EndCol = clampInt(sp.EndCol, 0, rawLineLen)
			if sp.StartCol < sp.EndCol && sp.Class != "" {
				spans = append(spans, sp)
			}
		}
		sort.SliceStable(spans, func(i, j int) bool { return spans[i].StartCol < spans[j].StartCol })
		vt.Spans = spans
	}

	return vt
}

// classAt returns the class of the span covering col.
func (vt VirtualText) classAt(col int) string {
	for _, sp := range vt.Spans {
		if col >= sp.StartCol && col < sp.EndCol {
			return sp.Class
		}
	}
	return ""
}

func sanitizeSingleLine(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.ReplaceAll(s, "\t", " ")
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
