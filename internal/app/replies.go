package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iw2rmb/bunmark/editor"
	"github.com/iw2rmb/bunmark/protocol"
	"github.com/iw2rmb/bunmark/session"
)

// routes registers a handler for every host to core message.
func (m *Model) routes() {
	r := protocol.NewRouter()
	protocol.Handle(r, m.fileLoaded)
	protocol.Handle(r, m.resolvedImage)
	protocol.Handle(r, m.renameResult)
	protocol.Handle(r, m.folderMoveResult)
	protocol.Handle(r, m.vaultStatus)
	protocol.Handle(r, m.fileChanged)
	protocol.Handle(r, m.saveResult)
	protocol.Handle(r, m.noteCreated)
	protocol.Handle(r, m.fileDeleted)
	protocol.Handle(r, m.showMessage)
	protocol.Handle(r, m.foundFiles)
	m.router = r
}

func (m *Model) fileLoaded(r protocol.FileLoaded) error {
	if m.reloading[r.FileName] && m.st.IsOpen(r.FileName) {
		delete(m.reloading, r.FileName)
		return m.reloaded(r)
	}
	delete(m.reloading, r.FileName)

	m.queue(m.flush())
	m.st.Loaded(r.FileName, r.FilePath, r.Content)
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Load(r.Content)
	m.queue(cmd)
	m.files.selectPath(r.FileName)
	m.st.CancelTitleEdit()
	if m.st.PendingTitleEdit == r.FileName {
		m.st.PendingTitleEdit = ""
		m.queue(m.startTitleEdit())
	} else if m.focus != focusPrompt {
		m.queue(m.setFocus(focusEditor))
	}
	return nil
}

// reloaded applies content that changed on disk. The current note is
// replaced as one undoable edit; other open notes only update their tab.
func (m *Model) reloaded(r protocol.FileLoaded) error {
	if r.FileName != m.st.CurrentFile {
		current, path := m.st.CurrentFile, m.st.CurrentPath
		m.st.Loaded(r.FileName, r.FilePath, r.Content)
		m.st.CurrentFile, m.st.CurrentPath = current, path
		return nil
	}
	m.st.Loaded(r.FileName, r.FilePath, r.Content)
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Replace(r.Content)
	m.queue(cmd)
	m.queue(m.notify(protocol.LevelInfo, m.text.Translate("reloaded", session.FormatTitle(r.FileName))))
	return nil
}

func (m *Model) resolvedImage(r protocol.ResolvedImage) error {
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(editor.ImageResolvedMsg{ID: r.RequestID, URI: r.URI, Width: r.Width, Height: r.Height})
	m.queue(cmd)
	return nil
}

func (m *Model) renameResult(r protocol.RenameResult) error {
	if !r.Success {
		m.queue(m.notify(protocol.LevelError, m.text.Translate(r.Error)))
		// A failed title rename re-opens the title editor on the original
		// name.
		m.st.ApplyRename(r)
		if m.st.Title.Editing {
			m.queue(m.openPrompt(promptTitle, m.st.Title.Value))
		}
		return nil
	}
	if c, ok := m.pendingSaves[r.OldName]; ok {
		delete(m.pendingSaves, r.OldName)
		m.pendingSaves[r.NewName] = c
	}
	m.st.ApplyRename(r)
	m.st.Title.Value = session.FormatTitle(m.st.CurrentFile)
	m.files.selectPath(r.NewName)
	return nil
}

func (m *Model) folderMoveResult(r protocol.FolderMoveResult) error {
	if !r.Success {
		m.queue(m.notify(protocol.LevelError, m.text.Translate(r.Error)))
		return nil
	}
	m.st.ApplyFolderMove(r)
	m.st.Title.Value = session.FormatTitle(m.st.CurrentFile)
	m.queue(m.notify(protocol.LevelInfo, m.text.Translate("folderRenamed", r.NewPath)))
	return nil
}

func (m *Model) vaultStatus(r protocol.VaultStatus) error {
	m.files.setListing(r)
	if m.st.CurrentFile != "" {
		m.files.selectPath(m.st.CurrentFile)
	}
	return nil
}

// fileChanged reloads an open note changed by someone else. Echoes of our
// own saves are ignored.
func (m *Model) fileChanged(r protocol.FileChanged) error {
	if m.st.IgnoreFileChanged(r.FileName, m.clk.Now()) {
		m.log.Debug("app: own save echo", "name", r.FileName)
		return nil
	}
	if !m.st.IsOpen(r.FileName) {
		return nil
	}
	m.reloading[r.FileName] = true
	m.queue(m.call(protocol.LoadFile{FileName: r.FileName}))
	return nil
}

func (m *Model) saveResult(r protocol.SaveResult) error {
	content, ok := m.pendingSaves[r.FileName]
	delete(m.pendingSaves, r.FileName)
	if !r.Success {
		m.st.ForgetSaved(r.FileName)
		return nil
	}
	if !ok {
		return nil
	}
	m.st.MarkSaved(r.FileName, content, m.clk.Now())
	if r.FileName == m.st.CurrentFile {
		m.st.SetContent(r.FileName, m.editor.Text())
	}
	return nil
}

func (m *Model) noteCreated(r protocol.NoteCreated) error {
	m.st.PendingTitleEdit = r.FileName
	m.queue(m.notify(protocol.LevelInfo, m.text.Translate("noteCreated", r.FileName)))
	m.queue(m.call(protocol.LoadFile{FileName: r.FileName}))
	return nil
}

func (m *Model) fileDeleted(r protocol.FileDeleted) error {
	wasCurrent := r.FileName == m.st.CurrentFile
	m.st.Close(r.FileName)
	delete(m.pendingSaves, r.FileName)
	if wasCurrent {
		m.queue(m.showCurrent())
	}
	return nil
}

func (m *Model) showMessage(r protocol.ShowMessage) error {
	m.queue(m.notify(r.Level, r.Text))
	return nil
}

func (m *Model) foundFiles(r protocol.FoundFiles) error {
	if m.prompt != promptQuickOpen || r.Query != m.input.Value() {
		return nil
	}
	m.found = r.Files
	m.pick = 0
	return nil
}
