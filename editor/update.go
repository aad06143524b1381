package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/bunmark/buffer"
	"github.com/iw2rmb/bunmark/input"
)

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil
	case tickMsg:
		return m.handleTick(msg)
	case ImageResolvedMsg:
		m.resolveImage(msg)
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	// Paste events should always insert literal text and never trigger shortcuts.
	if msg.Type == tea.KeyRunes && msg.Paste && len(msg.Runes) > 0 {
		m.mutate(func() { m.buf.InsertText(normalizeNewlines(string(msg.Runes))) })
		return m.afterInput(nil)
	}

	km := m.cfg.KeyMap
	switch {
	case key.Matches(msg, km.Left):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirLeft})
	case key.Matches(msg, km.Right):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirRight})
	case key.Matches(msg, km.Up):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirUp})
	case key.Matches(msg, km.Down):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirDown})

	case key.Matches(msg, km.ShiftLeft):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirLeft, Extend: true})
	case key.Matches(msg, km.ShiftRight):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirRight, Extend: true})
	case key.Matches(msg, km.ShiftUp):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirUp, Extend: true})
	case key.Matches(msg, km.ShiftDown):
		m.buf.Move(buffer.Move{Unit: buffer.MoveGrapheme, Dir: buffer.DirDown, Extend: true})

	case key.Matches(msg, km.WordLeft):
		m.buf.Move(buffer.Move{Unit: buffer.MoveWord, Dir: buffer.DirLeft})
	case key.Matches(msg, km.WordRight):
		m.buf.Move(buffer.Move{Unit: buffer.MoveWord, Dir: buffer.DirRight})

	case key.Matches(msg, km.Home):
		m.buf.Move(buffer.Move{Unit: buffer.MoveLine, Dir: buffer.DirHome})
	case key.Matches(msg, km.End):
		m.buf.Move(buffer.Move{Unit: buffer.MoveLine, Dir: buffer.DirEnd})
	case key.Matches(msg, km.DocStart):
		m.buf.Move(buffer.Move{Unit: buffer.MoveDoc, Dir: buffer.DirHome})
	case key.Matches(msg, km.DocEnd):
		m.buf.Move(buffer.Move{Unit: buffer.MoveDoc, Dir: buffer.DirEnd})

	case key.Matches(msg, km.Backspace):
		m.mutate(m.buf.DeleteBackward)
	case key.Matches(msg, km.Delete):
		m.mutate(m.buf.DeleteForward)
	case key.Matches(msg, km.Enter):
		m.mutate(m.buf.DeleteSelection)
		m.applyResult(input.Enter(m.buf, m.buf.Cursor()))
	case key.Matches(msg, km.Indent):
		if !m.tab(false) {
			m.mutate(func() { m.buf.InsertRune('\t') })
		}
	case key.Matches(msg, km.Outdent):
		m.tab(true)

	case key.Matches(msg, km.Undo):
		m.mutate(func() { m.buf.Undo() })
		m.force = true
	case key.Matches(msg, km.Redo):
		m.mutate(func() { m.buf.Redo() })
		m.force = true

	case key.Matches(msg, km.Copy):
		m.copySelection()
	case key.Matches(msg, km.Cut):
		m.cutSelection()
	case key.Matches(msg, km.Paste):
		m.pasteClipboard()

	case key.Matches(msg, km.Bold):
		m.applyResult(input.Wrap(m.selectionOrCursor(), input.Bold, input.Bold))
	case key.Matches(msg, km.Italic):
		m.applyResult(input.Wrap(m.selectionOrCursor(), input.Italic, input.Italic))
	case key.Matches(msg, km.Strike):
		m.applyResult(input.Wrap(m.selectionOrCursor(), input.Strike, input.Strike))
	case key.Matches(msg, km.Code):
		m.applyResult(input.Wrap(m.selectionOrCursor(), input.Code, input.Code))
	case key.Matches(msg, km.Bullet):
		m.togglePrefix(input.PrefixBullet)
	case key.Matches(msg, km.Numbered):
		m.togglePrefix(input.PrefixNumber)
	case key.Matches(msg, km.Task):
		m.togglePrefix(input.PrefixTask)
	case key.Matches(msg, km.Quote):
		m.togglePrefix(input.PrefixQuote)
	case key.Matches(msg, km.CodeBlock):
		m.applyResult(input.InsertCodeBlock(m.buf, m.selectionOrCursor()))
	case key.Matches(msg, km.ToggleTask):
		cur := m.buf.Cursor()
		if res, ok := input.ToggleTask(m.buf, cur.Row, cur); ok {
			m.applyResult(res)
			m.checkbox = true
		}

	default:
		if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 && !msg.Alt {
			m.typeRunes(msg.Runes)
		} else if msg.Type == tea.KeySpace {
			m.typeRunes([]rune{' '})
		}
	}

	return m.afterInput(nil)
}

// typeRunes inserts typed text, running the list and pairing rules on single
// keystrokes.
func (m *Model) typeRunes(rs []rune) {
	if len(rs) != 1 {
		m.mutate(func() { m.buf.InsertText(string(rs)) })
		return
	}
	r := rs[0]
	_, hasSel := m.buf.Selection()
	cur := m.buf.Cursor()
	switch {
	case r == ' ' && !hasSel:
		res, ok := input.Space(m.buf, cur)
		if ok {
			m.applyResult(res)
			return
		}
		m.clearListFlags(res.Clear)
	case !hasSel:
		if res, ok := input.Pair(m.buf, cur, r); ok {
			m.applyResult(res)
			return
		}
	}
	m.mutate(func() { m.buf.InsertRune(r) })
}

func (m *Model) tab(shift bool) bool {
	res, ok := input.Tab(m.buf, m.buf.Cursor(), shift)
	if ok {
		m.applyResult(res)
	}
	return ok
}

func (m *Model) togglePrefix(p input.Prefix) {
	from, to := m.buf.Cursor().Row, m.buf.Cursor().Row
	if sel, ok := m.buf.Selection(); ok {
		from, to = sel.Start.Row, sel.End.Row
		if to > from && sel.End.Col == 0 {
			to--
		}
	}
	m.applyResult(input.ToggleLinePrefix(m.buf, from, to, p))
}

func (m *Model) selectionOrCursor() buffer.Range {
	if sel, ok := m.buf.Selection(); ok {
		return sel
	}
	cur := m.buf.Cursor()
	return buffer.Range{Start: cur, End: cur}
}

// mutate runs f and records the buffer change it made, if any.
func (m *Model) mutate(f func()) {
	v := m.buf.TextVersion()
	f()
	if m.buf.TextVersion() == v {
		return
	}
	if ch, ok := m.buf.LastChange(); ok {
		m.changes = append(m.changes, ch)
	}
}

// applyResult applies the edits of an input rule as one undo step and places
// the cursor and selection it asks for.
func (m *Model) applyResult(res input.Result) {
	applied := false
	if len(res.Edits) > 0 {
		m.mutate(func() { applied = m.buf.ApplyAt(res.Cursor, res.Edits...) })
	}
	if !applied {
		m.buf.SetCursor(res.Cursor)
	}
	if res.Selection != nil {
		m.buf.SetSelection(*res.Selection)
	}
	m.clearListFlags(res.Clear)
}

func (m *Model) clearListFlags(rows []int) {
	for _, row := range rows {
		if row >= 0 && row < m.buf.LineCount() {
			m.engine.Ledger().ConfirmList(m.buf.LineID(row), false)
		}
	}
}

func (m *Model) copySelection() {
	if m.cfg.Clipboard == nil {
		return
	}
	r, ok := m.buf.Selection()
	if !ok {
		return
	}
	if s := m.buf.TextInRange(r); s != "" {
		_ = m.cfg.Clipboard.WriteText(s)
	}
}

func (m *Model) cutSelection() {
	if m.cfg.Clipboard == nil {
		return
	}
	r, ok := m.buf.Selection()
	if !ok {
		return
	}
	if s := m.buf.TextInRange(r); s != "" {
		_ = m.cfg.Clipboard.WriteText(s)
	}
	m.mutate(m.buf.DeleteSelection)
}

func (m *Model) pasteClipboard() {
	if m.cfg.Clipboard == nil {
		return
	}
	s, err := m.cfg.Clipboard.ReadText()
	if err != nil || s == "" {
		return
	}
	m.mutate(func() { m.buf.InsertText(normalizeNewlines(s)) })
}

// normalizeNewlines folds newlines from external sources into "\n".
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
