package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/bunmark/editor"
	"github.com/iw2rmb/bunmark/protocol"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case repliesMsg:
		return m, m.dispatch(msg.replies)

	case noticesMsg:
		if msg.closed {
			return m, nil
		}
		return m, tea.Batch(m.dispatch(msg.replies), waitNotices(m.opt.Notices))

	case noticeExpiredMsg:
		m.expire(msg.id)
		return m, nil

	case editor.SaveMsg:
		if msg.Editor != m.editor.ID() || msg.File == "" {
			return m, nil
		}
		return m, m.call(m.saveMsg(msg.File, msg.Content, msg.Auto))

	case editor.ImageRequestMsg:
		if msg.Editor != m.editor.ID() {
			return m, nil
		}
		reqs := make([]protocol.Message, 0, len(msg.Requests))
		for _, r := range msg.Requests {
			reqs = append(reqs, protocol.ResolveImage{
				RequestID: r.ID,
				ImagePath: r.Path,
				FileName:  msg.File,
				FilePath:  m.st.CurrentPath,
			})
		}
		return m, m.call(reqs...)

	case tea.KeyMsg:
		return m, m.updateKey(msg)

	case tea.MouseMsg:
		return m, m.updateMouse(msg)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) updateKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}
	if m.focus == focusPrompt {
		return m.updatePrompt(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Save):
		return m.editor.Save()
	case key.Matches(msg, m.keys.NewNote):
		return m.call(protocol.CreateNote{Folder: m.files.selectedFolder()})
	case key.Matches(msg, m.keys.QuickOpen):
		return m.openPrompt(promptQuickOpen, "")
	case key.Matches(msg, m.keys.Rename):
		return m.startTitleEdit()
	case key.Matches(msg, m.keys.CloseTab):
		return m.closeTab()
	case key.Matches(msg, m.keys.NextTab):
		return m.cycleTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.cycleTab(-1)
	case key.Matches(msg, m.keys.Files):
		if m.focus == focusFiles {
			return m.setFocus(focusEditor)
		}
		return m.setFocus(focusFiles)
	}

	if m.focus == focusFiles {
		return m.updateFiles(msg)
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

func (m *Model) updateFiles(msg tea.KeyMsg) tea.Cmd {
	it, ok := m.files.selected()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.files.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.files.move(1)
	case key.Matches(msg, m.keys.Back):
		return m.setFocus(focusEditor)
	case key.Matches(msg, m.keys.Open):
		if ok && !it.Folder {
			return m.Open(it.Path)
		}
	case key.Matches(msg, m.keys.NewIn):
		return m.openPrompt(promptNewNote, "")
	case key.Matches(msg, m.keys.NewFolder):
		return m.openPrompt(promptNewFolder, "")
	case key.Matches(msg, m.keys.RenameItem):
		if ok {
			m.target = it
			return m.openPrompt(promptRenameItem, displayName(it))
		}
	case key.Matches(msg, m.keys.MoveItem):
		if ok {
			m.target = it
			dir, _ := splitItem(it)
			return m.openPrompt(promptMoveItem, dir)
		}
	case key.Matches(msg, m.keys.Duplicate):
		if ok && !it.Folder {
			return m.call(protocol.DuplicateFile{FileName: it.Path})
		}
	case key.Matches(msg, m.keys.Trash):
		if !ok {
			return nil
		}
		if it.Folder {
			return m.call(protocol.DeleteFolder{FolderPath: it.Path})
		}
		return m.call(protocol.DeleteFile{FileName: it.Path})
	}
	return nil
}

func (m *Model) updateMouse(msg tea.MouseMsg) tea.Cmd {
	side := m.sidebarWidth()
	if msg.X < side {
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return nil
		}
		row := msg.Y - 1 + m.files.top
		if row < 0 || row >= len(m.files.items) {
			return nil
		}
		m.files.cursor = row
		focus := m.setFocus(focusFiles)
		if it := m.files.items[row]; !it.Folder {
			return tea.Batch(focus, m.Open(it.Path))
		}
		return focus
	}

	var cmds []tea.Cmd
	if m.prompt == promptNone && m.focus != focusEditor && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		cmds = append(cmds, m.setFocus(focusEditor))
	}
	msg.X -= side
	msg.Y -= headerRows
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return tea.Batch(append(cmds, cmd)...)
}
