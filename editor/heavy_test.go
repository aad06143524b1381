package editor

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/bunmark/internal/clock"
	"github.com/iw2rmb/bunmark/schedule"
	"github.com/iw2rmb/bunmark/syntax"
)

// newHeavyModel returns a model whose document is in the heavy tier, so
// unforced scans only cover the viewport and its margin.
func newHeavyModel(t *testing.T, rows int) Model {
	t.Helper()
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = fmt.Sprintf("## Heading %d", i)
	}
	m := New(Config{
		Text:     strings.Join(lines, "\n"),
		Clock:    clock.NewTest(),
		Margin:   2,
		Schedule: schedule.Options{HeavyChars: 100, VeryHeavyChars: 1 << 20},
	})
	if tier := m.sched.TierFor(m.buf.Len()); tier != schedule.Heavy {
		t.Fatalf("tier=%v, want heavy", tier)
	}
	m = m.SetSize(40, 5)
	return settle(m)
}

func TestHeavyDocument_CursorJumpLeavesOneActiveLine(t *testing.T) {
	m := newHeavyModel(t, 200)
	if got := m.Marks().ClassLines(syntax.ClassActive); len(got) != 1 || got[0] != 0 {
		t.Fatalf("active rows after settle: %v", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlEnd})
	m, _ = fire(m, m.sched.Cursor(m.buf.Len()))

	if got := m.Marks().ClassLines(syntax.ClassActive); len(got) != 1 || got[0] != 199 {
		t.Fatalf("active rows after the jump: %v, want [199]", got)
	}
	if marks := m.Marks().Marks(0); len(marks) != 1 {
		t.Fatalf("row 0 must hide its marker again, marks=%v", marks)
	}
	if marks := m.Marks().Marks(199); len(marks) != 0 {
		t.Fatalf("cursor row hid its marker: %v", marks)
	}
}

func TestHeavyDocument_WheelArmsScan(t *testing.T) {
	m := newHeavyModel(t, 200)
	if m.sched.Pending(schedule.Syntax) {
		t.Fatalf("syntax slot armed before scrolling")
	}

	m, cmd := m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	if m.ViewportState().TopVisualRow == 0 {
		t.Fatalf("wheel must scroll the viewport")
	}
	if cmd == nil || !m.sched.Pending(schedule.Syntax) || !m.sched.Pending(schedule.Image) {
		t.Fatalf("scrolling a heavy document must arm syntax and image passes")
	}
}

func TestNormalDocument_WheelDoesNotArmScan(t *testing.T) {
	m := New(Config{Text: numberedLines(10)})
	m = settle(m.SetSize(10, 3))

	m, _ = m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	if m.sched.Pending(schedule.Syntax) {
		t.Fatalf("fully scanned documents need no pass on scroll")
	}
}
