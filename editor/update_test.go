package editor

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/iw2rmb/bunmark/buffer"
	"github.com/iw2rmb/bunmark/schedule"
)

type memClipboard struct {
	s string
}

func (c *memClipboard) ReadText() (string, error) { return c.s, nil }
func (c *memClipboard) WriteText(s string) error  { c.s = s; return nil }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func alt(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true} }

func TestUpdate_TypingMovementAndDelete(t *testing.T) {
	m := New(Config{Text: "ab"})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(runes("X"))
	if got := m.buf.Text(); got != "aXb" {
		t.Fatalf("text after insert: got %q, want %q", got, "aXb")
	}
	if got := m.buf.Cursor(); got != (buffer.Pos{Row: 0, Col: 2}) {
		t.Fatalf("cursor after insert: got %v, want %v", got, buffer.Pos{Row: 0, Col: 2})
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.buf.Text(); got != "ab" {
		t.Fatalf("text after backspace: got %q, want %q", got, "ab")
	}
	if got := m.buf.Cursor(); got != (buffer.Pos{Row: 0, Col: 1}) {
		t.Fatalf("cursor after backspace: got %v, want %v", got, buffer.Pos{Row: 0, Col: 1})
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDelete})
	if got := m.buf.Text(); got != "a" {
		t.Fatalf("text after delete: got %q, want %q", got, "a")
	}
}

func TestUpdate_UndoRedo(t *testing.T) {
	m := New(Config{Text: ""})
	m, _ = m.Update(runes("a"))
	m, _ = m.Update(runes("b"))
	if got := m.buf.Text(); got != "ab" {
		t.Fatalf("text after typing: got %q, want %q", got, "ab")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlZ})
	if got := m.buf.Text(); got != "a" {
		t.Fatalf("text after undo: got %q, want %q", got, "a")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if got := m.buf.Text(); got != "ab" {
		t.Fatalf("text after redo: got %q, want %q", got, "ab")
	}
}

func TestUpdate_Blurred_IgnoresKeys(t *testing.T) {
	m := New(Config{Text: "ab"})
	m, _ = m.Blur()
	m, _ = m.Update(runes("X"))
	if got := m.buf.Text(); got != "ab" {
		t.Fatalf("text: got %q, want %q", got, "ab")
	}
}

func TestUpdate_EnterContinuesList(t *testing.T) {
	m := New(Config{Text: "- a"})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Equal(t, "- a\n- ", m.buf.Text())
	require.Equal(t, buffer.Pos{Row: 1, Col: 2}, m.buf.Cursor())

	// Enter on the empty item ends the list.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "- a\n", m.buf.Text())
	require.False(t, m.Marks().IsConfirmedList(m.buf.LineID(1)))
}

func TestUpdate_EnterIsOneUndoStep(t *testing.T) {
	m := New(Config{Text: "- a"})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.Equal(t, "- a", m.buf.Text())
}

func TestUpdate_SpaceNestsEmptyItem(t *testing.T) {
	m := New(Config{Text: "- item\n- "})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlEnd})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})

	require.Equal(t, "- item\n    - ", m.buf.Text())
	require.Equal(t, buffer.Pos{Row: 1, Col: 6}, m.buf.Cursor())
}

func TestUpdate_PairsBrackets(t *testing.T) {
	m := New(Config{Text: ""})
	m, _ = m.Update(runes("("))
	require.Equal(t, "()", m.buf.Text())
	require.Equal(t, buffer.Pos{Col: 1}, m.buf.Cursor())

	// A selection is replaced, not paired.
	m.buf.SetSelection(buffer.Range{End: buffer.Pos{Col: 2}})
	m, _ = m.Update(runes("["))
	require.Equal(t, "[", m.buf.Text())
}

func TestUpdate_FormattingWrapsSelection(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want string
	}{
		{"bold", tea.KeyMsg{Type: tea.KeyCtrlB}, "hello **world**"},
		{"italic", alt('i'), "hello *world*"},
		{"strike", alt('s'), "hello ~~world~~"},
		{"code", alt('c'), "hello `world`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Config{Text: "hello world"})
			m.buf.SetSelection(buffer.Range{Start: buffer.Pos{Col: 6}, End: buffer.Pos{Col: 11}})
			m, _ = m.Update(tt.msg)
			require.Equal(t, tt.want, m.buf.Text())
			sel, ok := m.buf.Selection()
			require.True(t, ok, "selection kept on the wrapped text")
			require.Equal(t, "world", m.buf.TextInRange(sel))
		})
	}
}

func TestUpdate_LinePrefixes(t *testing.T) {
	m := New(Config{Text: "a\nb"})
	m.buf.SetSelection(buffer.Range{End: buffer.Pos{Row: 1, Col: 1}})
	m, _ = m.Update(alt('l'))
	require.Equal(t, "- a\n- b", m.buf.Text())

	m = New(Config{Text: "quote me"})
	m, _ = m.Update(alt('q'))
	require.Equal(t, "> quote me", m.buf.Text())
}

func TestUpdate_ToggleTaskKey(t *testing.T) {
	m, clk := newTestModel(t, "- [ ] a")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})

	require.Equal(t, "- [x] a", m.buf.Text())
	require.Equal(t, clk.Now(), m.st.LastCheckbox)
	require.True(t, m.st.Suppressed(clk.Now()))
	require.True(t, m.sched.Pending(schedule.Syntax))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	require.Equal(t, "- [ ] a", m.buf.Text())
}

func TestUpdate_TabIndentsListItem(t *testing.T) {
	m := New(Config{Text: "- a"})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, "    - a", m.buf.Text())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, "- a", m.buf.Text())

	plain := New(Config{Text: "x"})
	plain, _ = plain.Update(tea.KeyMsg{Type: tea.KeyEnd})
	plain, _ = plain.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, "x\t", plain.buf.Text())
}

func TestUpdate_UndoRuleRestoresCursor(t *testing.T) {
	m := New(Config{Text: "- a"})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, buffer.Pos{Col: 7}, m.buf.Cursor())
	ch, ok := m.buf.LastChange()
	require.True(t, ok)
	require.Equal(t, buffer.Pos{Col: 7}, ch.CursorAfter)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.Equal(t, "- a", m.buf.Text())
	require.Equal(t, buffer.Pos{Col: 3}, m.buf.Cursor())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, "- a", m.buf.Text())
	require.Equal(t, buffer.Pos{Col: 3}, m.buf.Cursor())
}

func TestUpdate_ClipboardCopyCutPaste(t *testing.T) {
	cb := &memClipboard{}
	m := New(Config{Text: "hello", Clipboard: cb})

	m.buf.SetSelection(buffer.Range{Start: buffer.Pos{Col: 1}, End: buffer.Pos{Col: 4}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.Equal(t, "ell", cb.s)
	require.Equal(t, "hello", m.buf.Text())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	require.Equal(t, "ho", m.buf.Text())

	cb.s = "a\r\nb"
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	require.Equal(t, "ha\nbo", m.buf.Text())
}

type brokenClipboard struct{}

func (brokenClipboard) ReadText() (string, error) { return "", errors.New("clipboard unavailable") }
func (brokenClipboard) WriteText(string) error    { return errors.New("clipboard unavailable") }

func TestUpdate_ClipboardKeepsMarkdownMarkers(t *testing.T) {
	cb := &memClipboard{}
	m := New(Config{Text: "**bold** x\n- a", Clipboard: cb})

	m.buf.SetSelection(buffer.Range{End: buffer.Pos{Col: 8}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.Equal(t, "**bold**", cb.s)

	m.buf.SetCursor(buffer.Pos{Row: 1, Col: 3})
	cb.s = "b\r\nc"
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	require.Equal(t, "**bold** x\n- ab\nc", m.buf.Text())
	require.Equal(t, buffer.Pos{Row: 2, Col: 1}, m.buf.Cursor())
}

func TestUpdate_BrokenClipboardLeavesNote(t *testing.T) {
	m := New(Config{Text: "- a", Clipboard: brokenClipboard{}})
	v := m.buf.TextVersion()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	m.buf.SetSelection(buffer.Range{End: buffer.Pos{Col: 3}})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.Equal(t, "- a", m.buf.Text())
	require.Equal(t, v, m.buf.TextVersion())
}

func TestUpdate_PasteEventInsertsLiteralText(t *testing.T) {
	m := New(Config{Text: ""})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("(x)\r\ny"), Paste: true})
	require.Equal(t, "(x)\ny", m.buf.Text())
}

func TestUpdate_TypingArmsTimers(t *testing.T) {
	m, clk := newTestModel(t, "abc")
	m, cmd := m.Update(runes("x"))
	require.NotNil(t, cmd)
	require.True(t, m.sched.Pending(schedule.Syntax))
	require.True(t, m.sched.Pending(schedule.Image))
	require.False(t, m.sched.Pending(schedule.Autosave), "no note is open")
	require.Equal(t, clk.Now(), m.st.LastTyping)
}

func TestUpdate_CursorMoveArmsScanOnly(t *testing.T) {
	m, _ := newTestModel(t, "abc")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.True(t, m.sched.Pending(schedule.Syntax))
	require.False(t, m.sched.Pending(schedule.Image), "same row")
	require.True(t, m.st.LastTyping.IsZero())
}
