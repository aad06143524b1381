package editor

import "github.com/iw2rmb/bunmark/buffer"

// hit is the result of mapping a screen cell into the document.
type hit struct {
	Pos buffer.Pos
	// Token is the visual token under the cell, when there is one.
	Token    VisualToken
	HasToken bool
}

// screenToDocPos maps viewport-local mouse coordinates to a document position.
//
// Coordinates are in terminal cells relative to the editor's viewport: (0,0)
// is the top-left of the visible content region. Gutter clicks map to column
// 0; coordinates are clamped into document bounds.
func (m *Model) screenToDocPos(x, y int) buffer.Pos {
	return m.hitTest(x, y).Pos
}

func (m *Model) hitTest(x, y int) hit {
	layout := m.ensureLayoutCache()
	row, line, seg, _, ok := layout.lineAndSegmentAt(m.viewport.YOffset + y)
	if !ok {
		return hit{}
	}

	gw := m.gutterWidth()
	if x < gw {
		return hit{Pos: buffer.Pos{Row: row}}
	}
	visualX := x - gw
	if m.cfg.WrapMode == WrapNone {
		visualX += max(m.xOffset, 0)
	} else {
		if visualX >= seg.Cells {
			return hit{Pos: buffer.Pos{Row: row, Col: seg.EndCol}}
		}
		visualX += seg.startCell
	}

	h := hit{Pos: buffer.Pos{Row: row, Col: line.visual.DocColForVisualCell(visualX)}}
	if m.cfg.WrapMode != WrapNone {
		h.Pos.Col = clampInt(h.Pos.Col, seg.StartCol, seg.EndCol)
	}
	h.Token, h.HasToken = line.visual.TokenAt(visualX)
	return h
}

// docToScreenPos maps a document position to viewport-local coordinates.
//
// ok is false when the mapped coordinate is outside the visible viewport.
func (m *Model) docToScreenPos(pos buffer.Pos) (x int, y int, ok bool) {
	layout := m.ensureLayoutCache()
	if len(layout.lines) == 0 {
		return 0, 0, false
	}

	line := layout.lines[clampInt(pos.Row, 0, len(layout.lines)-1)]
	cell := cursorCellForVisualLine(line.visual, pos.Col)
	segIdx := line.segmentForCell(cell)
	seg := line.segments[segIdx]

	y = line.firstVisualRow + segIdx - m.viewport.YOffset
	if m.cfg.WrapMode == WrapNone {
		x = cell - m.xOffset
	} else {
		x = cell - seg.startCell
	}
	x += m.gutterWidth()

	if y < 0 || y >= m.visibleRowCount() || x < 0 || x >= m.viewport.Width {
		return x, y, false
	}
	return x, y, true
}
