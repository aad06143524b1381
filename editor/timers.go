package editor

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/bunmark/buffer"
	"github.com/iw2rmb/bunmark/images"
	"github.com/iw2rmb/bunmark/markdown"
	"github.com/iw2rmb/bunmark/schedule"
	"github.com/iw2rmb/bunmark/syntax"
)

// arm turns a scheduler timer into a tick command.
func (m Model) arm(t schedule.Timer) tea.Cmd {
	id := m.id
	return tea.Tick(t.Delay, func(time.Time) tea.Msg {
		return tickMsg{id: id, slot: t.Slot, gen: t.Gen}
	})
}

func (m Model) handleTick(msg tickMsg) (Model, tea.Cmd) {
	if msg.id != m.id {
		return m, nil
	}
	f := m.sched.Fire(msg.slot, msg.gen)
	if !f.Run {
		return m, nil
	}
	switch msg.slot {
	case schedule.Syntax:
		now := m.clk.Now()
		if !f.Forced {
			if t, ok := m.sched.Defer(m.st.IdleFor(now), m.buf.Len()); ok {
				return m, m.arm(t)
			}
		}
		m.scan(f.Forced, now)
		return m, nil
	case schedule.Image:
		return m.updateImages()
	case schedule.Fence:
		m.fences.Rebuild(m.buf)
		return m, m.arm(m.sched.Change(m.buf.Len()))
	case schedule.Autosave:
		return m, m.save(true)
	}
	return m, nil
}

// scan rebuilds the syntax marks. Forced runs and normal-tier documents are
// scanned in full; heavier documents only around the viewport.
func (m *Model) scan(forced bool, now time.Time) syntax.Result {
	pass := syntax.FullPass(m.buf.Cursor(), now, m.focused)
	if !forced && m.sched.TierFor(m.buf.Len()) != schedule.Normal {
		if from, to, ok := m.visibleRows(); ok {
			pass.From, pass.To = from, to
		}
	}
	res := m.engine.Scan(m.buf, m.st, pass)
	m.decorVersion++
	m.rebuildContent()
	return res
}

func (m Model) updateImages() (Model, tea.Cmd) {
	p := images.Pass{Active: -1, From: -1, To: -1}
	if m.focused {
		p.Active = m.buf.Cursor().Row
	}
	dirtyFrom, dirtyTo, dirty := m.images.TakeDirty()
	if m.sched.TierFor(m.buf.Len()) != schedule.Normal {
		if from, to, ok := (&m).visibleRows(); ok {
			p.From, p.To = from, to
			if dirty {
				p.From, p.To = min(p.From, dirtyFrom), max(p.To, dirtyTo)
			}
		}
	}
	reqs := m.images.Update(m.buf, p)
	m.decorVersion++
	m.rebuildContent()
	if len(reqs) == 0 {
		return m, nil
	}
	msg := ImageRequestMsg{Editor: m.id, File: m.st.CurrentFile, Requests: reqs}
	return m, func() tea.Msg { return msg }
}

func (m *Model) resolveImage(msg ImageResolvedMsg) {
	meta := images.Meta{Width: msg.Width, Height: msg.Height}
	if !m.images.Resolve(msg.ID, msg.URI, meta) {
		m.log.Debug("editor: stale image reply", "id", msg.ID)
		return
	}
	m.decorVersion++
	m.rebuildContent()
}

// Save returns a command requesting an explicit save of the current note.
func (m Model) Save() tea.Cmd { return m.save(false) }

// save requests a save of the current note. Autosaves are skipped when the
// content matches what was last saved.
func (m Model) save(auto bool) tea.Cmd {
	name := m.st.CurrentFile
	if name == "" {
		return nil
	}
	content := m.buf.Text()
	if auto && !m.st.Dirty(name, content) {
		return nil
	}
	m.st.SetContent(name, content)
	msg := SaveMsg{Editor: m.id, File: name, Content: content, Auto: auto}
	return func() tea.Msg { return msg }
}

// afterInput follows the buffer changes and cursor moves of one update with
// ledger maintenance and timers.
func (m Model) afterInput(cmds []tea.Cmd) (Model, tea.Cmd) {
	now := m.clk.Now()
	chars := m.buf.Len()

	textChanged := m.buf.TextVersion() != m.lastTextVersion
	if textChanged {
		if m.checkbox {
			m.st.NoteCheckboxToggle(now)
		} else {
			m.st.NoteTyping(now)
		}
		forced, fences := m.checkbox || m.force, false
		for _, ch := range m.changes {
			f, fc := m.noteChange(ch)
			forced = forced || f
			fences = fences || fc
		}
		if forced {
			cmds = append(cmds, m.arm(m.sched.Force()))
		} else {
			cmds = append(cmds, m.arm(m.sched.Change(chars)))
			if fences {
				cmds = append(cmds, m.arm(m.sched.Fence(chars)))
			}
		}
		cmds = append(cmds, m.arm(m.sched.Image(chars)))
		if m.st.CurrentFile != "" {
			m.st.SetContent(m.st.CurrentFile, m.buf.Text())
			cmds = append(cmds, m.arm(m.sched.Autosave()))
		}
		m.lastTextVersion = m.buf.TextVersion()
	} else if m.force {
		cmds = append(cmds, m.arm(m.sched.Force()), m.arm(m.sched.Image(chars)))
	}

	if cur := m.buf.Cursor(); cur != m.lastCursor {
		if !textChanged {
			cmds = append(cmds, m.arm(m.sched.Cursor(chars)))
		}
		if cur.Row != m.lastCursor.Row {
			m.images.CursorMoved(cur.Row)
			m.images.MarkDirty(m.lastCursor.Row, m.lastCursor.Row)
			if !textChanged {
				cmds = append(cmds, m.arm(m.sched.Image(chars)))
			}
		}
		m.lastCursor = cur
	}

	m.changes = nil
	m.checkbox, m.force = false, false
	m.rebuildContent()
	m.followCursorWithForce(false)
	return m, tea.Batch(cmds...)
}

// noteChange shifts line-indexed state after an edit. forced reports an edit
// of a fence or rule line, which must render at once; fences reports an
// invalidated fence cache.
func (m *Model) noteChange(ch buffer.Change) (forced, fences bool) {
	n := m.buf.LineCount()
	marks := m.engine.Ledger()
	for _, e := range ch.AppliedEdits {
		for row := e.RangeBefore.Start.Row; row <= e.RangeBefore.End.Row; row++ {
			if marks.HasLineClass(row, syntax.ClassRule) || marks.HasLineClass(row, syntax.ClassFence) {
				forced = true
			}
		}
		if d := e.LineDelta(); d != 0 {
			marks.ShiftLines(e.RangeBefore.Start.Row, d)
			m.images.ShiftLines(e.RangeBefore.Start.Row, d)
		}
		from, to := e.RangeAfter.Start.Row, min(e.RangeAfter.End.Row, n-1)
		m.images.Invalidate(from, to)
		for row := from; row <= to; row++ {
			if blockLine(m.buf.Line(row)) {
				forced = true
			}
		}
		for _, line := range strings.Split(e.DeletedText, "\n") {
			if blockLine(line) {
				forced = true
			}
		}
	}
	fences = m.fences.NoteChange(m.buf, ch)
	return forced, fences
}

func blockLine(text string) bool {
	switch markdown.Classify(text).Kind {
	case markdown.KindFence, markdown.KindRule:
		return true
	}
	return false
}
