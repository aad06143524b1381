// Package app is the bunmark workspace: a file list, tabs of open notes, the
// live-preview editor, a title editor, quick open and notifications, talking
// to a host over protocol messages.
package app

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/bunmark/editor"
	"github.com/iw2rmb/bunmark/internal/clock"
	"github.com/iw2rmb/bunmark/locale"
	"github.com/iw2rmb/bunmark/protocol"
	"github.com/iw2rmb/bunmark/session"
)

type Options struct {
	Host Host
	// Notices delivers unsolicited host messages, as from host.Server.Watch.
	Notices <-chan []protocol.Message

	// Session is shared with the editor. Nil gets a main-window session with
	// default timing.
	Session *session.State
	// Editor is the template for the editor; Text and Session are ignored.
	Editor editor.Config

	Locale *locale.Catalog
	Clock  clock.Clock
	Logger *slog.Logger

	KeyMap    KeyMap
	Style     Style
	NoticeTTL time.Duration
	// FindLimit caps quick-open results.
	FindLimit int
	// SidebarWidth is the file list width; the list takes at most a third
	// of the screen.
	SidebarWidth int
}

type focusArea int

const (
	focusEditor focusArea = iota
	focusFiles
	focusPrompt
)

type promptKind int

const (
	promptNone promptKind = iota
	promptTitle
	promptQuickOpen
	promptNewNote
	promptNewFolder
	promptRenameItem
	promptMoveItem
)

type Model struct {
	opt   Options
	host  Host
	st    *session.State
	text  *locale.Catalog
	clk   clock.Clock
	log   *slog.Logger
	keys  KeyMap
	style Style

	router *protocol.Router
	// queued collects the commands of reply handlers during dispatch.
	queued []tea.Cmd

	editor editor.Model
	files  fileList

	focus focusArea

	prompt promptKind
	// target is the list item a rename or move prompt acts on.
	target item
	input  textinput.Model
	found  []protocol.FileEntry
	pick   int

	notices    []notice
	lastNotice uint64

	// pendingSaves holds the content of in-flight saves by note.
	pendingSaves map[string]string
	// reloading marks notes whose loadFile answers a fileChanged notice.
	reloading map[string]bool

	width, height int
}

func New(opt Options) *Model {
	if opt.Session == nil {
		opt.Session = session.New(session.ModeMain, session.DefaultTiming())
	}
	if opt.Locale == nil {
		opt.Locale = locale.New("en")
	}
	opt.Clock = clock.OrSystem(opt.Clock)
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.DiscardHandler)
	}
	if len(opt.KeyMap.Quit.Keys()) == 0 {
		opt.KeyMap = DefaultKeyMap()
	}
	if opt.NoticeTTL <= 0 {
		opt.NoticeTTL = DefaultNoticeTTL
	}
	if opt.FindLimit <= 0 {
		opt.FindLimit = 20
	}
	if opt.SidebarWidth <= 0 {
		opt.SidebarWidth = 28
	}

	ecfg := opt.Editor
	ecfg.Text = ""
	ecfg.Session = opt.Session
	ecfg.Clock = opt.Clock
	if ecfg.Logger == nil {
		ecfg.Logger = opt.Logger
	}

	input := textinput.New()
	input.CharLimit = 255

	m := &Model{
		opt:          opt,
		host:         opt.Host,
		st:           opt.Session,
		text:         opt.Locale,
		clk:          opt.Clock,
		log:          opt.Logger,
		keys:         opt.KeyMap,
		style:        opt.Style,
		editor:       editor.New(ecfg),
		input:        input,
		pendingSaves: make(map[string]string),
		reloading:    make(map[string]bool),
	}
	m.routes()
	return m
}

// Init asks the host for the vault listing and subscribes to its notices.
// It may run more than once.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.editor.Init(),
		m.call(protocol.GetVault{}),
		waitNotices(m.opt.Notices),
	)
}

// Session returns the shared session state.
func (m *Model) Session() *session.State { return m.st }

// Editor returns the editor component.
func (m *Model) Editor() editor.Model { return m.editor }

// Open opens name, loading it from the host unless it is already open.
func (m *Model) Open(name string) tea.Cmd {
	if name == "" {
		return nil
	}
	if m.st.IsOpen(name) {
		return m.switchTo(name)
	}
	return m.call(protocol.LoadFile{FileName: name})
}

// switchTo makes the open note name current and shows its last in-memory
// content.
func (m *Model) switchTo(name string) tea.Cmd {
	if name == m.st.CurrentFile {
		return nil
	}
	flush := m.flush()
	if !m.st.Switch(name) {
		return flush
	}
	t, _ := m.st.Tab(name)
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Load(t.Content)
	m.files.selectPath(name)
	m.st.CancelTitleEdit()
	return tea.Batch(flush, cmd)
}

// flush autosaves the current note when it has unsaved changes.
func (m *Model) flush() tea.Cmd { return m.call(m.flushMsgs()...) }

func (m *Model) flushMsgs() []protocol.Message {
	name := m.st.CurrentFile
	if name == "" {
		return nil
	}
	content := m.editor.Text()
	m.st.SetContent(name, content)
	if !m.st.Dirty(name, content) {
		return nil
	}
	return []protocol.Message{m.saveMsg(name, content, true)}
}

// saveMsg builds a save request and records it as in flight.
func (m *Model) saveMsg(name, content string, auto bool) protocol.SaveFile {
	m.pendingSaves[name] = content
	m.st.LastLocalSave[name] = m.clk.Now()
	return protocol.SaveFile{FileName: name, Content: content, IsAutoSave: auto}
}

// closeTab closes the current note after flushing it and shows the next
// open one.
func (m *Model) closeTab() tea.Cmd {
	name := m.st.CurrentFile
	if name == "" {
		return nil
	}
	flush := m.flush()
	m.st.Close(name)
	cmd := m.showCurrent()
	return tea.Batch(flush, cmd, m.notify(protocol.LevelInfo, m.text.Translate("closed", session.FormatTitle(name))))
}

// showCurrent loads the session's current note into the editor, or an
// empty document when nothing is open.
func (m *Model) showCurrent() tea.Cmd {
	content := ""
	if t, ok := m.st.Tab(m.st.CurrentFile); ok {
		content = t.Content
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Load(content)
	m.st.CancelTitleEdit()
	return cmd
}

// cycleTab moves to the next or previous open note.
func (m *Model) cycleTab(delta int) tea.Cmd {
	tabs := m.st.Tabs()
	if len(tabs) < 2 {
		return nil
	}
	cur := 0
	for i, t := range tabs {
		if t.Name == m.st.CurrentFile {
			cur = i
		}
	}
	next := (cur + delta + len(tabs)) % len(tabs)
	return m.switchTo(tabs[next].Name)
}

// setFocus moves keyboard focus, blurring or focusing the editor.
func (m *Model) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	var cmd tea.Cmd
	if f == focusEditor {
		m.editor, cmd = m.editor.Focus()
	} else {
		m.editor, cmd = m.editor.Blur()
	}
	return cmd
}

// quit flushes the current note before the program exits.
func (m *Model) quit() tea.Cmd {
	if flush := m.flush(); flush != nil {
		return tea.Sequence(flush, tea.Quit)
	}
	return tea.Quit
}
