package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/iw2rmb/bunmark/protocol"
	"github.com/iw2rmb/bunmark/session"
)

// headerRows are the tab bar and the title line above the editor.
const headerRows = 2

const statusRows = 1

// sidebarWidth is the width of the file list including its separator, or 0
// when the screen is too narrow for one.
func (m *Model) sidebarWidth() int {
	if m.width < 40 {
		return 0
	}
	return min(m.opt.SidebarWidth, m.width/3)
}

// layout sizes the editor to the space left by the sidebar and the header
// and status rows.
func (m *Model) layout() {
	w := max(m.width-m.sidebarWidth(), 0)
	h := max(m.height-headerRows-statusRows, 0)
	m.input.Width = max(w-lipgloss.Width(m.input.Prompt)-1, 1)
	m.editor = m.editor.SetSize(w, h)
}

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	w := max(m.width-m.sidebarWidth(), 0)
	h := max(m.height-headerRows-statusRows, 0)

	body := m.editor.View()
	if m.prompt == promptQuickOpen {
		body = m.viewFound(w, h)
	}
	main := lipgloss.JoinVertical(lipgloss.Left, m.viewTabs(w), m.viewTitle(w), body, m.viewStatus(w))
	if sw := m.sidebarWidth(); sw > 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top, m.viewFiles(sw), main)
	}
	return main
}

// fit truncates or pads s to exactly w cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

func displayName(it item) string {
	if it.Folder {
		return it.Name
	}
	return session.FormatTitle(it.Name)
}

func (m *Model) viewFiles(sw int) string {
	inner := sw - 1
	sep := m.style.Sidebar.Render("│")
	rows := make([]string, 0, m.height)
	rows = append(rows, m.style.SidebarTitle.Render(fit(m.text.Translate("files"), inner))+sep)

	listH := m.height - 1
	top := m.files.scroll(listH)
	for i := top; i < len(m.files.items) && len(rows) < m.height; i++ {
		it := m.files.items[i]
		label := strings.Repeat("  ", it.Depth) + displayName(it)
		st := m.style.File
		if it.Folder {
			label += "/"
			st = m.style.Folder
		}
		if it.Path == m.st.CurrentFile {
			st = st.Inherit(m.style.Current)
		}
		if i == m.files.cursor && m.focus == focusFiles {
			st = m.style.Selected
		}
		rows = append(rows, st.Render(fit(label, inner))+sep)
	}
	if len(m.files.items) == 0 && len(rows) < m.height {
		rows = append(rows, m.style.Status.Render(fit(m.text.Translate("noFiles"), inner))+sep)
	}
	for len(rows) < m.height {
		rows = append(rows, fit("", inner)+sep)
	}
	return strings.Join(rows, "\n")
}

func (m *Model) viewTabs(w int) string {
	var parts []string
	used := 0
	for _, t := range m.st.Tabs() {
		label := session.FormatTitle(t.Name)
		st := m.style.Tab
		if t.Name == m.st.CurrentFile {
			st = m.style.ActiveTab
		}
		part := st.Render(label)
		pw := lipgloss.Width(part)
		if used+pw > w {
			break
		}
		parts = append(parts, part)
		used += pw
	}
	return strings.Join(parts, "") + strings.Repeat(" ", max(w-used, 0))
}

func (m *Model) viewTitle(w int) string {
	if m.prompt != promptNone {
		return m.input.View()
	}
	if m.st.CurrentFile == "" {
		return fit("", w)
	}
	title := m.st.Title.Value
	if title == "" {
		title = session.FormatTitle(m.st.CurrentFile)
	}
	state, st := m.text.Translate("saved"), m.style.Status
	if m.st.Dirty(m.st.CurrentFile, m.editor.Text()) {
		state, st = m.text.Translate("modified"), m.style.Dirty
	}
	suffix := " · " + state
	tw := max(w-runewidth.StringWidth(suffix), 0)
	return m.style.Title.Render(runewidth.Truncate(title, tw, "…")) + st.Render(fit(suffix, w-min(runewidth.StringWidth(title), tw)))
}

func (m *Model) viewFound(w, h int) string {
	rows := make([]string, 0, h)
	for i, f := range m.found {
		if len(rows) >= h {
			break
		}
		line := fit(f.Path, w)
		if i == m.pick {
			line = m.style.Selector.Render(line)
		} else {
			line = m.style.Match.Render(line)
		}
		rows = append(rows, line)
	}
	for len(rows) < h {
		rows = append(rows, fit("", w))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) viewStatus(w int) string {
	if n, ok := m.currentNotice(); ok {
		st := m.style.Info
		if n.level == protocol.LevelError {
			st = m.style.Error
		}
		return st.Render(fit(n.text, w))
	}
	help := m.text.Translate("help")
	if m.focus == focusFiles {
		help = m.text.Translate("fileHelp")
	}
	return m.style.Status.Render(fit(help, w))
}
