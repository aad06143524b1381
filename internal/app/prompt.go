package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/bunmark/protocol"
)

// openPrompt shows the one-line input for kind, prefilled with value.
func (m *Model) openPrompt(kind promptKind, value string) tea.Cmd {
	m.prompt = kind
	m.input.Prompt = m.promptLabel(kind) + ": "
	m.input.Placeholder = ""
	if kind == promptQuickOpen {
		m.input.Placeholder = m.text.Translate("quickOpenPlaceholder")
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.layout()
	m.found, m.pick = nil, 0
	blur := m.setFocus(focusPrompt)
	cmds := []tea.Cmd{blur, m.input.Focus()}
	if kind == promptQuickOpen {
		cmds = append(cmds, m.find())
	}
	return tea.Batch(cmds...)
}

func (m *Model) promptLabel(kind promptKind) string {
	switch kind {
	case promptTitle:
		return m.text.Translate("renameTitle")
	case promptQuickOpen:
		return m.text.Translate("quickOpen")
	case promptNewNote:
		return m.text.Translate("newNoteTitle")
	case promptNewFolder:
		return m.text.Translate("newFolder")
	case promptRenameItem:
		return m.text.Translate("renameItem")
	case promptMoveItem:
		return m.text.Translate("moveTo")
	}
	return ""
}

// closePrompt hides the input and returns focus to where it came from.
func (m *Model) closePrompt() tea.Cmd {
	kind := m.prompt
	m.prompt = promptNone
	m.input.Blur()
	m.found, m.pick = nil, 0
	if kind == promptTitle || kind == promptQuickOpen {
		return m.setFocus(focusEditor)
	}
	return m.setFocus(focusFiles)
}

// startTitleEdit opens the title editor on the current note.
func (m *Model) startTitleEdit() tea.Cmd {
	if !m.st.StartTitleEdit() {
		return nil
	}
	return m.openPrompt(promptTitle, m.st.Title.Value)
}

func (m *Model) find() tea.Cmd {
	return m.call(protocol.FindFiles{Query: m.input.Value(), Limit: m.opt.FindLimit})
}

func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.prompt == promptTitle {
			m.st.CancelTitleEdit()
		}
		return m.closePrompt()
	case key.Matches(msg, m.keys.Confirm):
		return m.confirmPrompt()
	case m.prompt == promptQuickOpen && key.Matches(msg, m.keys.PickPrevious):
		m.pick = max(m.pick-1, 0)
		return nil
	case m.prompt == promptQuickOpen && key.Matches(msg, m.keys.PickNext):
		m.pick = max(min(m.pick+1, len(m.found)-1), 0)
		return nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.prompt == promptTitle {
		m.st.Title.Value = m.input.Value()
	}
	if m.prompt == promptQuickOpen && m.input.Value() != before {
		return tea.Batch(cmd, m.find())
	}
	return cmd
}

// confirmPrompt sends the request the open prompt stands for.
func (m *Model) confirmPrompt() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())
	kind := m.prompt

	var req protocol.Message
	switch kind {
	case promptTitle:
		if rename, ok := m.st.CommitTitle(m.input.Value()); ok {
			req = rename
		}
	case promptQuickOpen:
		if m.pick < len(m.found) {
			path := m.found[m.pick].Path
			closed := m.closePrompt()
			return tea.Batch(closed, m.Open(path))
		}
	case promptNewNote:
		req = protocol.CreateNote{Title: value, Folder: m.files.selectedFolder()}
	case promptNewFolder:
		if value != "" {
			req = protocol.CreateFolder{ParentFolder: m.files.selectedFolder(), Name: value}
		}
	case promptRenameItem:
		if value != "" {
			if m.target.Folder {
				req = protocol.RenameFolder{FolderPath: m.target.Path, NewName: value}
			} else {
				req = protocol.RequestRename{FileName: m.target.Path, NewName: value, Source: protocol.SourceContextMenu}
			}
		}
	case promptMoveItem:
		folder := strings.Trim(value, "/")
		if m.target.Folder {
			req = protocol.MoveFolder{FolderPath: m.target.Path, TargetFolder: folder}
		} else {
			req = protocol.MoveFile{FileName: m.target.Path, TargetFolder: folder}
		}
	}
	m.target = item{}
	cmd := m.closePrompt()
	if req == nil {
		return cmd
	}
	// Unsaved content goes first so the rename moves it.
	if kind == promptTitle {
		return tea.Batch(cmd, m.call(append(m.flushMsgs(), req)...))
	}
	return tea.Batch(cmd, m.call(req))
}
