package editor

import (
	"log/slog"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/bunmark/buffer"
	"github.com/iw2rmb/bunmark/decor"
	"github.com/iw2rmb/bunmark/fence"
	"github.com/iw2rmb/bunmark/images"
	"github.com/iw2rmb/bunmark/internal/clock"
	"github.com/iw2rmb/bunmark/schedule"
	"github.com/iw2rmb/bunmark/session"
	"github.com/iw2rmb/bunmark/syntax"
)

var lastID atomic.Int64

// Model is a Bubble Tea component that edits one markdown note with live
// preview.
//
// Model is a value; copies share the buffer, ledgers and scheduler.
type Model struct {
	id  int
	cfg Config
	buf *buffer.Buffer
	st  *session.State
	clk clock.Clock
	log *slog.Logger

	fences *fence.Tracker
	engine *syntax.Engine
	images *images.Layer
	sched  *schedule.Scheduler
	code   *codeHighlighter

	focused bool

	viewport viewport.Model
	xOffset  int
	layout   *wrapLayoutCache
	// decorVersion bumps whenever a ledger changed outside a buffer edit.
	decorVersion uint64

	lastTextVersion uint64
	lastCursor      buffer.Pos
	// changes collects buffer changes of the current update.
	changes []buffer.Change
	// checkbox marks the current update's edit as a checkbox toggle.
	checkbox bool
	// force requests an immediate rescan after the current update.
	force bool

	mouseDragging bool
	mouseAnchor   buffer.Pos
}

func New(cfg Config) Model {
	cfg = cfg.withDefaults()
	opt := cfg.Schedule
	opt.Mode = cfg.Session.Mode
	if opt.Autosave <= 0 {
		opt.Autosave = cfg.Session.Timing.Autosave
	}
	if opt.ImageDelay <= 0 {
		opt.ImageDelay = cfg.Session.Timing.ImageUpdate
	}

	fences := &fence.Tracker{}
	m := Model{
		id:     int(lastID.Add(1)),
		cfg:    cfg,
		buf:    buffer.New(cfg.Text, buffer.Options{HistoryLimit: cfg.HistoryLimit}),
		st:     cfg.Session,
		clk:    cfg.Clock,
		log:    cfg.Logger,
		fences: fences,
		engine: syntax.New(syntax.Options{
			Ledger: &decor.Ledger{},
			Fences: fences,
			Logger: cfg.Logger,
			Margin: cfg.Margin,
		}),
		images: images.New(images.Options{
			Ledger: &decor.Ledger{},
			Fences: fences,
			Logger: cfg.Logger,
		}),
		sched:    schedule.New(opt),
		code:     newCodeHighlighter(cfg.HighlightStyle),
		focused:  true,
		viewport: viewport.New(0, 0),
		layout:   &wrapLayoutCache{},
	}
	m.lastTextVersion = m.buf.TextVersion()
	m.lastCursor = m.buf.Cursor()
	m.rebuildContent()
	return m
}

// ID identifies the editor in its timer messages.
func (m Model) ID() int { return m.id }

func (m Model) Buffer() *buffer.Buffer { return m.buf }

func (m Model) Session() *session.State { return m.st }

// Marks returns the ledger of the syntax engine.
func (m Model) Marks() *decor.Ledger { return m.engine.Ledger() }

// Images returns the image layer.
func (m Model) Images() *images.Layer { return m.images }

func (m Model) Scheduler() *schedule.Scheduler { return m.sched }

func (m Model) Text() string { return m.buf.Text() }

// Init runs the first decoration pass.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.arm(m.sched.Force()), m.arm(m.sched.Image(m.buf.Len())))
}

// Load replaces the document with text as a fresh note: history, ledgers
// and image state start over.
func (m Model) Load(text string) (Model, tea.Cmd) {
	m.buf = buffer.New(text, buffer.Options{HistoryLimit: m.cfg.HistoryLimit})
	m.engine.Ledger().ClearAll()
	m.engine.Ledger().PruneListFlags(func(buffer.LineID) bool { return false })
	m.images.Reset()
	m.fences.Invalidate()
	m.sched.Cancel(schedule.Autosave)
	m.lastTextVersion = m.buf.TextVersion()
	m.lastCursor = m.buf.Cursor()
	m.xOffset = 0
	m.viewport.SetYOffset(0)
	m.decorVersion++
	m.rebuildContent()
	return m, m.Init()
}

// Replace swaps the text of the current note, as when the file changed on
// disk. The replacement is one undo step and the cursor is kept in bounds.
func (m Model) Replace(text string) (Model, tea.Cmd) {
	if text == m.buf.Text() {
		return m, nil
	}
	cur := m.buf.Cursor()
	m.buf.SetText(text)
	m.buf.SetCursor(cur)
	m.resetDecorations()
	m.lastTextVersion = m.buf.TextVersion()
	m.lastCursor = m.buf.Cursor()
	m.rebuildContent()
	return m, tea.Batch(m.arm(m.sched.Force()), m.arm(m.sched.Image(m.buf.Len())))
}

func (m Model) SetSize(width, height int) Model {
	m.viewport.Width = max(width, 0)
	m.viewport.Height = max(height, 0)
	m.rebuildContent()
	m.followCursorWithForce(true)
	return m
}

func (m Model) Width() int  { return m.viewport.Width }
func (m Model) Height() int { return m.viewport.Height }

// Focus gives the editor an active line. Blur removes it and forces an
// immediate rescan.
func (m Model) Focus() (Model, tea.Cmd) {
	if m.focused {
		return m, nil
	}
	m.focused = true
	m.rebuildContent()
	m.followCursorWithForce(true)
	return m, m.arm(m.sched.Force())
}

func (m Model) Blur() (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	m.focused = false
	m.mouseDragging = false
	m.rebuildContent()
	return m, m.arm(m.sched.Force())
}

func (m Model) Focused() bool { return m.focused }

// SetMode switches the delay table between sidebar and main-window timing.
func (m Model) SetMode(mode session.Mode) Model {
	m.st.Mode = mode
	m.sched.SetMode(mode)
	return m
}

func (m Model) View() string { return m.viewport.View() }

func (m *Model) rebuildContent() {
	m.viewport.SetContent(m.renderContent())
}

// resetDecorations drops cached state that cannot follow a whole-document
// change.
func (m *Model) resetDecorations() {
	m.images.Reset()
	m.fences.Invalidate()
	m.decorVersion++
}

func (m *Model) followCursorWithForce(force bool) {
	h := m.visibleRowCount()
	if h <= 0 {
		return
	}
	layout := m.ensureLayoutCache()
	row, col, ok := layout.cursorVisualPosition(m.buf.Cursor())
	if !ok {
		return
	}

	y := m.viewport.YOffset
	switch {
	case row < y:
		m.viewport.SetYOffset(row)
	case row >= y+h:
		m.viewport.SetYOffset(row - h + 1)
	}

	if m.cfg.WrapMode != WrapNone {
		m.xOffset = 0
		return
	}
	w := m.contentWidth()
	if w <= 0 {
		return
	}
	prev := m.xOffset
	switch {
	case col < m.xOffset:
		m.xOffset = col
	case col >= m.xOffset+w:
		m.xOffset = col - w + 1
	}
	if force || prev != m.xOffset {
		m.rebuildContent()
	}
}
