package editor

import "github.com/iw2rmb/bunmark/buffer"

// ViewportState is a host-facing snapshot of the editor camera.
type ViewportState struct {
	// TopVisualRow is the visual row index rendered at viewport screen row 0.
	TopVisualRow int
	// VisibleRows is the number of content rows available for rendering.
	VisibleRows int
	// FirstRow and LastRow are the logical rows on screen.
	FirstRow, LastRow int
	// LeftCellOffset is the horizontal cell offset in WrapNone mode.
	LeftCellOffset int
	WrapMode       WrapMode
}

func (m Model) ViewportState() ViewportState {
	left := 0
	if m.cfg.WrapMode == WrapNone {
		left = max(m.xOffset, 0)
	}
	from, to, _ := (&m).visibleRows()
	return ViewportState{
		TopVisualRow:   max(m.viewport.YOffset, 0),
		VisibleRows:    m.visibleRowCount(),
		FirstRow:       from,
		LastRow:        to,
		LeftCellOffset: left,
		WrapMode:       m.cfg.WrapMode,
	}
}

// ScreenToDoc maps viewport-local screen coordinates to a document position.
func (m Model) ScreenToDoc(x, y int) buffer.Pos {
	return (&m).screenToDocPos(x, y)
}

// DocToScreen maps a document position to viewport-local screen coordinates.
// ok is false when the position is outside the visible viewport content.
func (m Model) DocToScreen(pos buffer.Pos) (x int, y int, ok bool) {
	return (&m).docToScreenPos(pos)
}

func (m Model) visibleRowCount() int {
	return max(m.viewport.Height-m.viewport.Style.GetVerticalFrameSize(), 0)
}
