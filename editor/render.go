package editor

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iw2rmb/bunmark/buffer"
	"github.com/iw2rmb/bunmark/internal/grapheme"
	"github.com/iw2rmb/bunmark/syntax"
)

func (m *Model) renderContent() string {
	layout := m.ensureLayoutCache()

	cursor := m.buf.Cursor()
	sel, selOK := m.buf.Selection()
	digitCount := 0
	if m.cfg.ShowLineNums {
		digitCount = gutterDigits(len(layout.lines))
	}
	contentWidth := m.contentWidth()
	leftNoWrap := max(m.xOffset, 0)
	rightNoWrap := math.MaxInt
	if m.cfg.WrapMode == WrapNone && contentWidth > 0 {
		rightNoWrap = leftNoWrap + contentWidth
	}

	highlights := make(map[int][]HighlightSpan)
	out := make([]string, 0, len(layout.rows))
	for _, ref := range layout.rows {
		row := ref.logicalRow
		line := layout.lines[row]
		seg := line.segments[ref.segmentIndex]

		var sb strings.Builder
		if m.cfg.ShowLineNums {
			numStyle := m.cfg.Style.LineNum
			if m.focused && row == cursor.Row && ref.segmentIndex == 0 {
				numStyle = m.cfg.Style.LineNumActive
			}
			num := fmt.Sprintf("%*s", digitCount, "")
			if ref.segmentIndex == 0 {
				num = fmt.Sprintf("%*d", digitCount, row+1)
			}
			sb.WriteString(numStyle.Render(num))
			sb.WriteString(m.cfg.Style.Gutter.Render(" "))
		}

		base := m.cfg.Style.LineStyle(line.classes)
		if m.isHiddenRule(line, row, cursor) {
			sb.WriteString(m.renderRule(base, contentWidth))
			out = append(out, sb.String())
			continue
		}

		hl, seen := highlights[row]
		if !seen {
			hl = m.codeHighlights(row, line)
			highlights[row] = hl
		}

		left, right := leftNoWrap, rightNoWrap
		if m.cfg.WrapMode != WrapNone {
			left, right = seg.startCell, seg.endCell
			if seg.Cells == 0 {
				right = left + 1
			}
		}
		sb.WriteString(renderVisualLine(m.cfg.Style, base, line.visual, row, cursor, m.focused, sel, selOK, hl, left, right))
		out = append(out, sb.String())
	}
	return strings.Join(out, "\n")
}

// isHiddenRule reports whether row is a horizontal rule drawn as a line.
func (m *Model) isHiddenRule(line wrapLayoutLine, row int, cursor buffer.Pos) bool {
	if m.cfg.Style.RuleChar == "" || !slices.Contains(line.classes, syntax.ClassRule) {
		return false
	}
	if m.focused && row == cursor.Row {
		return false
	}
	return line.visual.VisualLen() == 0
}

func (m *Model) renderRule(base lipgloss.Style, width int) string {
	if width <= 0 {
		width = 3
	}
	n := max(width/max(grapheme.StringWidth(m.cfg.Style.RuleChar), 1), 1)
	return base.Render(strings.Repeat(m.cfg.Style.RuleChar, n))
}

// codeHighlights colors interior lines of fenced blocks.
func (m *Model) codeHighlights(row int, line wrapLayoutLine) []HighlightSpan {
	if m.code == nil || !slices.Contains(line.classes, syntax.ClassCodeBlock) {
		return nil
	}
	fs := m.fences.At(m.buf, row)
	if !fs.Inside || fs.Delimiter {
		return nil
	}
	return normalizeHighlightSpans(m.code.HighlightLine(fs.Info, line.rawLine), line.visual.RawLen)
}

func selectionColsForRow(sel buffer.Range, ok bool, row, rawLen int) (start, end int, has bool) {
	if !ok || row < sel.Start.Row || row > sel.End.Row {
		return 0, 0, false
	}
	start, end = 0, rawLen
	if row == sel.Start.Row {
		start = clampInt(sel.Start.Col, 0, rawLen)
	}
	if row == sel.End.Row {
		end = clampInt(sel.End.Col, 0, rawLen)
	}
	// A selected line break shows as a selected EOL cell.
	if row < sel.End.Row {
		end = rawLen + 1
	}
	return start, end, start < end
}

func renderVisualLine(
	st Style,
	base lipgloss.Style,
	vl VisualLine,
	row int,
	cursor buffer.Pos,
	focused bool,
	sel buffer.Range,
	selOK bool,
	highlights []HighlightSpan,
	left, right int,
) string {
	rawLen := vl.RawLen

	hasCursor := row == cursor.Row && focused
	cursorCol := -1
	if hasCursor {
		cursorCol = clampInt(cursor.Col, 0, rawLen)
	}
	selStartCol, selEndCol, hasSel := selectionColsForRow(sel, selOK, row, rawLen)

	cursorTokenIdx := -1
	if hasCursor && cursorCol < rawLen {
		for i, tok := range vl.Tokens {
			if tok.Kind == VisualTokenDoc && cursorCol >= tok.DocStartCol && cursorCol < tok.DocEndCol {
				cursorTokenIdx = i
				break
			}
		}
		if cursorTokenIdx == -1 {
			// Cursor inside a deleted range snaps to the next visible doc token.
			target := vl.VisualCellForDocCol(cursorCol)
			for i, tok := range vl.Tokens {
				if tok.Kind == VisualTokenDoc && tok.StartCell == target {
					cursorTokenIdx = i
					break
				}
			}
		}
	}

	// A cursor past the last visible doc token renders as a 1-cell
	// placeholder space.
	renderEOLCursor := hasCursor && cursorTokenIdx == -1
	eolCursorCell := -1
	if renderEOLCursor {
		eolCursorCell = vl.VisualCellForDocCol(cursorCol)
	}
	eolBoundaryCursorTokenIdx := -1
	if renderEOLCursor && eolCursorCell == right && right > left {
		// The EOL cell falls outside a fully used wrapped row: draw the
		// cursor on the row's last doc token instead.
		for i := len(vl.Tokens) - 1; i >= 0; i-- {
			tok := vl.Tokens[i]
			if tok.Kind == VisualTokenDoc && max(tok.StartCell, left) < min(tok.StartCell+tok.CellWidth, right) {
				eolBoundaryCursorTokenIdx = i
				break
			}
		}
	}

	left = max(left, 0)
	right = max(right, left)

	renderSpan := func(style lipgloss.Style, text string, tokWidth, spanStart, spanWidth int, splittable bool) string {
		if spanWidth <= 0 {
			return ""
		}
		if spanStart == 0 && spanWidth == tokWidth {
			return style.Render(text)
		}
		if splittable {
			return style.Render(strings.Repeat(" ", spanWidth))
		}
		// Partial wide grapheme or widget: keep alignment with blanks.
		return base.Render(strings.Repeat(" ", spanWidth))
	}

	var sb strings.Builder
	writeEOLCursor := func() {
		if max(eolCursorCell, left) < min(eolCursorCell+1, right) {
			sb.WriteString(st.Cursor.Inherit(base).Render(" "))
		}
	}
	for i, tok := range vl.Tokens {
		if renderEOLCursor && eolCursorCell == tok.StartCell {
			writeEOLCursor()
		}

		segL := tok.StartCell
		segR := tok.StartCell + tok.CellWidth
		spanL := max(segL, left)
		spanR := min(segR, right)
		if spanL >= spanR {
			continue
		}
		spanStart := spanL - segL
		spanWidth := spanR - spanL
		splittable := tokenIsSplittableSpaces(tok)

		style := base
		switch tok.Kind {
		case VisualTokenVirtual:
			style = st.WidgetStyle(tok.Widget).Inherit(base)
		case VisualTokenDoc:
			if sp, ok := st.SpanStyle(tok.Class); ok {
				style = sp.Inherit(base)
			} else if hl, ok := highlightAt(highlights, tok.DocStartCol); ok {
				style = hl.Inherit(base)
			}
			selected := hasSel && tok.DocStartCol < selEndCol && tok.DocEndCol > selStartCol
			switch {
			case hasCursor && (i == cursorTokenIdx || i == eolBoundaryCursorTokenIdx):
				text := tok.Text
				if strings.TrimSpace(text) == "" {
					// Terminals may elide trailing spaces; keep the cursor visible.
					text = strings.ReplaceAll(text, " ", "\u00a0")
				}
				sb.WriteString(renderSpan(st.Cursor.Inherit(style), text, tok.CellWidth, spanStart, spanWidth, splittable))
				continue
			case selected:
				style = st.Selection.Inherit(style)
			}
		}
		sb.WriteString(renderSpan(style, tok.Text, tok.CellWidth, spanStart, spanWidth, splittable))
	}
	if renderEOLCursor && eolCursorCell == vl.VisualLen() {
		writeEOLCursor()
	}
	if hasSel && selEndCol > rawLen && vl.VisualLen() >= left && vl.VisualLen() < right && !renderEOLCursor {
		sb.WriteString(st.Selection.Inherit(base).Render(" "))
	}
	return sb.String()
}
