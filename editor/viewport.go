package editor

import "github.com/iw2rmb/bunmark/buffer"

type wrapLayoutCacheKey struct {
	bufVersion   uint64
	decorVersion uint64
	marks        int
	imageMarks   int

	wrapMode     WrapMode
	tabWidth     int
	contentWidth int
	focused      bool
}

type wrapLayoutRow struct {
	logicalRow   int
	segmentIndex int
}

type wrapLayoutLine struct {
	rawLine string
	classes []string
	vt      VirtualText
	visual  VisualLine

	segments       []wrappedSegment
	firstVisualRow int
}

type wrapLayoutCache struct {
	valid bool
	key   wrapLayoutCacheKey

	lines []wrapLayoutLine
	rows  []wrapLayoutRow
}

func (m *Model) layoutKey() wrapLayoutCacheKey {
	return wrapLayoutCacheKey{
		bufVersion:   m.buf.Version(),
		decorVersion: m.decorVersion,
		marks:        m.engine.Ledger().Len(),
		imageMarks:   m.images.Ledger().Len(),
		wrapMode:     m.cfg.WrapMode,
		tabWidth:     m.cfg.TabWidth,
		contentWidth: m.contentWidth(),
		focused:      m.focused,
	}
}

// virtualTextForRow merges the syntax and image marks of row.
func (m *Model) virtualTextForRow(row int) VirtualText {
	return virtualTextForMarks(m.engine.Ledger().Marks(row), m.images.Ledger().Marks(row))
}

func (m *Model) ensureLayoutCache() *wrapLayoutCache {
	key := m.layoutKey()
	if m.layout.valid && m.layout.key == key {
		return m.layout
	}

	n := m.buf.LineCount()
	cache := wrapLayoutCache{
		valid: true,
		key:   key,
		lines: make([]wrapLayoutLine, 0, n),
		rows:  make([]wrapLayoutRow, 0, n),
	}
	for row := range n {
		rawLine := m.buf.Line(row)
		vt := m.virtualTextForRow(row)
		visual := BuildVisualLine(rawLine, vt, m.cfg.TabWidth)
		segments := wrapSegmentsForVisualLine(visual, m.cfg.WrapMode, key.contentWidth)
		if len(segments) == 0 {
			segments = []wrappedSegment{{EndCol: visual.RawLen, Cells: visual.VisualLen(), endCell: visual.VisualLen()}}
		}

		firstVisualRow := len(cache.rows)
		cache.lines = append(cache.lines, wrapLayoutLine{
			rawLine:        rawLine,
			classes:        m.engine.Ledger().LineClasses(row),
			vt:             vt,
			visual:         visual,
			segments:       segments,
			firstVisualRow: firstVisualRow,
		})
		for segIdx := range segments {
			cache.rows = append(cache.rows, wrapLayoutRow{logicalRow: row, segmentIndex: segIdx})
		}
	}

	*m.layout = cache
	return m.layout
}

func (c *wrapLayoutCache) clampVisualRow(row int) int {
	if len(c.rows) == 0 {
		return 0
	}
	return clampInt(row, 0, len(c.rows)-1)
}

func (c *wrapLayoutCache) lineAndSegmentAt(visualRow int) (lineIdx int, line wrapLayoutLine, seg wrappedSegment, segIdx int, ok bool) {
	if len(c.rows) == 0 {
		return 0, wrapLayoutLine{}, wrappedSegment{}, 0, false
	}
	ref := c.rows[c.clampVisualRow(visualRow)]
	if ref.logicalRow < 0 || ref.logicalRow >= len(c.lines) {
		return 0, wrapLayoutLine{}, wrappedSegment{}, 0, false
	}
	line = c.lines[ref.logicalRow]
	if ref.segmentIndex < 0 || ref.segmentIndex >= len(line.segments) {
		return 0, wrapLayoutLine{}, wrappedSegment{}, 0, false
	}
	return ref.logicalRow, line, line.segments[ref.segmentIndex], ref.segmentIndex, true
}

// segmentForCell returns the index of the segment of line that draws cell.
func (l wrapLayoutLine) segmentForCell(cell int) int {
	for i, seg := range l.segments {
		if seg.Cells == 0 && cell == seg.startCell {
			return i
		}
		if cell < seg.endCell {
			return i
		}
	}
	return len(l.segments) - 1
}

func (c *wrapLayoutCache) cursorVisualPosition(cursor buffer.Pos) (visualRow int, visualCol int, ok bool) {
	if len(c.lines) == 0 {
		return 0, 0, false
	}
	line := c.lines[clampInt(cursor.Row, 0, len(c.lines)-1)]
	if len(line.segments) == 0 {
		return line.firstVisualRow, 0, true
	}

	cell := cursorCellForVisualLine(line.visual, cursor.Col)
	segIdx := line.segmentForCell(cell)
	seg := line.segments[segIdx]
	col := max(cell-seg.startCell, 0)
	if seg.Cells == 0 {
		col = 0
	}
	if c.key.wrapMode == WrapNone {
		col = cell
	}
	return line.firstVisualRow + segIdx, col, true
}

// visibleRows returns the first and last logical rows on screen. ok is false
// before the editor has a size.
func (m *Model) visibleRows() (from, to int, ok bool) {
	h := m.visibleRowCount()
	if h <= 0 {
		return 0, 0, false
	}
	layout := m.ensureLayoutCache()
	if len(layout.rows) == 0 {
		return 0, 0, false
	}
	top := layout.clampVisualRow(m.viewport.YOffset)
	bottom := layout.clampVisualRow(m.viewport.YOffset + h - 1)
	return layout.rows[top].logicalRow, layout.rows[bottom].logicalRow, true
}

func (m *Model) contentWidth() int {
	return max(m.viewport.Width-m.gutterWidth(), 0)
}

func (m *Model) gutterWidth() int {
	if !m.cfg.ShowLineNums {
		return 0
	}
	return gutterDigits(m.buf.LineCount()) + 1
}

func gutterDigits(lines int) int {
	d := 1
	for n := max(lines, 1); n >= 10; n /= 10 {
		d++
	}
	return d
}
