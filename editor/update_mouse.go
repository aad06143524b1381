package editor

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/bunmark/buffer"
	"github.com/iw2rmb/bunmark/decor"
	"github.com/iw2rmb/bunmark/input"
	"github.com/iw2rmb/bunmark/schedule"
)

func (m Model) updateMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if isWheelMouse(msg) {
		top := m.viewport.YOffset
		m.viewport, cmd = m.viewport.Update(msg)
		// Heavy documents are scanned around the viewport only, so rows
		// scrolled into view need a pass of their own.
		if chars := m.buf.Len(); m.viewport.YOffset != top && m.sched.TierFor(chars) != schedule.Normal {
			cmd = tea.Batch(cmd, m.arm(m.sched.Cursor(chars)), m.arm(m.sched.Image(chars)))
		}
		return m, cmd
	}

	if !m.focused {
		return m, nil
	}

	// Only handle selection/cursor changes for left button interactions.
	switch msg.Action { //nolint:exhaustive
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !m.mouseInBounds(msg.X, msg.Y) {
			return m, nil
		}

		h := m.hitTest(msg.X, msg.Y)
		if !msg.Shift && h.HasToken && m.pressWidget(h) {
			break
		}
		p := h.Pos
		if msg.Shift {
			anchor := m.buf.Cursor()
			if raw, ok := m.buf.SelectionRaw(); ok {
				anchor = raw.Start
			}
			m.mouseAnchor = anchor
			m.buf.SetCursor(p)
			m.buf.SetSelection(buffer.Range{Start: anchor, End: p})
		} else {
			m.mouseAnchor = p
			m.buf.SetCursor(p)
			m.buf.ClearSelection()
		}
		m.mouseDragging = true

	case tea.MouseActionMotion:
		if !m.mouseDragging {
			return m, nil
		}

		x, y := m.clampMouseToBounds(msg.X, msg.Y)
		p := m.screenToDocPos(x, y)
		m.buf.SetCursor(p)
		m.buf.SetSelection(buffer.Range{Start: m.mouseAnchor, End: p})

	case tea.MouseActionRelease:
		m.mouseDragging = false
		return m, nil
	}

	return m.afterInput(nil)
}

// pressWidget handles a click on a checkbox or image widget. It reports
// whether the click was consumed.
func (m *Model) pressWidget(h hit) bool {
	switch w := h.Token.Widget.(type) {
	case decor.Checkbox:
		res, ok := input.ToggleTask(m.buf, w.Row, m.buf.Cursor())
		if !ok {
			return false
		}
		m.applyResult(res)
		m.checkbox = true
		return true
	case decor.Image:
		p, ok := m.images.Reveal(h.Pos.Row, h.Token.MarkStart)
		if !ok {
			return false
		}
		m.buf.ClearSelection()
		m.buf.SetCursor(p)
		m.force = true
		m.decorVersion++
		return true
	}
	return false
}

func isWheelMouse(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress &&
		(msg.Button == tea.MouseButtonWheelUp ||
			msg.Button == tea.MouseButtonWheelDown ||
			msg.Button == tea.MouseButtonWheelLeft ||
			msg.Button == tea.MouseButtonWheelRight)
}

func (m Model) mouseInBounds(x, y int) bool {
	if m.viewport.Width <= 0 || m.viewport.Height <= 0 {
		return false
	}
	return x >= 0 && x < m.viewport.Width && y >= 0 && y < m.viewport.Height
}

func (m Model) clampMouseToBounds(x, y int) (int, int) {
	if m.viewport.Width > 0 {
		x = clampInt(x, 0, m.viewport.Width-1)
	}
	if m.viewport.Height > 0 {
		y = clampInt(y, 0, m.viewport.Height-1)
	}
	return x, y
}
