package host

import (
	"path/filepath"

	"github.com/iw2rmb/bunmark/protocol"
	"github.com/iw2rmb/bunmark/vault"
)

func (s *Server) routes() {
	r := s.router
	protocol.Handle(r, s.loadFile)
	protocol.Handle(r, s.saveFile)
	protocol.Handle(r, s.saveContent)
	protocol.Handle(r, s.resolveImage)
	protocol.Handle(r, s.renameFile)
	protocol.Handle(r, s.requestRename)
	protocol.Handle(r, s.getVault)
	protocol.Handle(r, s.createNote)
	protocol.Handle(r, s.deleteFile)
	protocol.Handle(r, s.duplicateFile)
	protocol.Handle(r, s.moveFile)
	protocol.Handle(r, s.createFolder)
	protocol.Handle(r, s.renameFolder)
	protocol.Handle(r, s.deleteFolder)
	protocol.Handle(r, s.moveFolder)
	protocol.Handle(r, s.findFiles)
}

func (s *Server) loadFile(m protocol.LoadFile) error {
	v, err := s.need()
	if err != nil {
		return err
	}
	content, err := v.Read(m.FileName)
	if err != nil {
		s.notice(protocol.LevelError, s.text.Translate("loadFailed", s.errorText(err)))
		return err
	}
	name, _ := v.Name(m.FileName)
	s.current = name
	s.reply(protocol.FileLoaded{
		FileName: m.FileName,
		FilePath: filepath.Join(v.Root(), filepath.FromSlash(name)),
		Content:  content,
	})
	return nil
}

func (s *Server) saveFile(m protocol.SaveFile) error {
	return s.save(m.FileName, m.Content, m.IsAutoSave)
}

func (s *Server) saveContent(m protocol.SaveContent) error {
	if s.current == "" {
		s.reply(protocol.SaveResult{IsAutoSave: m.IsAutoSave, Error: vault.ErrNotFound.Error()})
		return vault.ErrNotFound
	}
	return s.save(s.current, m.Content, m.IsAutoSave)
}

func (s *Server) save(name, content string, auto bool) error {
	res := protocol.SaveResult{FileName: name, IsAutoSave: auto}
	v, err := s.need()
	if err == nil {
		_, err = v.Save(name, content)
	}
	if err != nil {
		res.Error = s.errorText(err)
		s.reply(res)
		s.notice(protocol.LevelError, s.text.Translate("saveFailed", res.Error))
		return err
	}
	res.Success = true
	s.reply(res)
	if !auto {
		s.info("noteSaved", name)
		s.status()
	}
	return nil
}

func (s *Server) resolveImage(m protocol.ResolveImage) error {
	res := protocol.ResolvedImage{RequestID: m.RequestID}
	v, err := s.need()
	if err == nil {
		var img vault.Image
		if img, err = v.ResolveImage(m.ImagePath, m.FileName); err == nil {
			res.URI = &img.URI
			res.Width, res.Height = img.Width, img.Height
		}
	}
	if err != nil {
		s.log.Debug("host: image unresolved", "path", m.ImagePath, "file", m.FileName, "err", err)
	}
	s.reply(res)
	return nil
}

func (s *Server) renameFile(m protocol.RenameFile) error {
	return s.rename(m.Source, func(v *vault.Vault) (string, string, error) {
		return v.Rename(m.OldName, m.NewName)
	})
}

func (s *Server) requestRename(m protocol.RequestRename) error {
	return s.rename(m.Source, func(v *vault.Vault) (string, string, error) {
		return v.RenameTitle(m.FileName, m.NewName)
	})
}

func (s *Server) rename(source string, do func(*vault.Vault) (string, string, error)) error {
	v, err := s.need()
	var from, to string
	if err == nil {
		from, to, err = do(v)
	}
	if err != nil {
		s.log.Warn("host: rename", "source", source, "err", err)
		s.reply(protocol.RenameResult{Error: s.errorText(err), Source: source})
		return nil
	}
	if s.current == from {
		s.current = to
	}
	s.reply(protocol.RenameResult{Success: true, OldName: from, NewName: to, Source: source})
	if from != to {
		s.status()
	}
	return nil
}

// getVault replies with the cached listing first when one exists for this
// vault, then with a fresh one.
func (s *Server) getVault(protocol.GetVault) error {
	if s.vault == nil {
		s.reply(protocol.VaultStatus{Files: []protocol.FileEntry{}, Folders: []string{}})
		return nil
	}
	if cached, ok, err := s.vault.ReadIndex(); err != nil {
		s.log.Debug("host: index", "err", err)
	} else if ok && cached.Root == s.vault.Root() {
		s.reply(statusOf(cached))
	}
	return s.status()
}

// status lists the vault, refreshes the index cache and replies.
func (s *Server) status() error {
	l, err := s.vault.List()
	if err != nil {
		return err
	}
	l.UpdatedAt = s.clock.Now()
	if err := s.vault.WriteIndex(l); err != nil {
		s.log.Debug("host: write index", "err", err)
	}
	s.reply(statusOf(l))
	return nil
}

func statusOf(l vault.Listing) protocol.VaultStatus {
	return protocol.VaultStatus{VaultPath: l.Root, Files: entries(l.Files), Folders: append([]string{}, l.Folders...)}
}

func entries(in []vault.Entry) []protocol.FileEntry {
	out := make([]protocol.FileEntry, 0, len(in))
	for _, e := range in {
		out = append(out, protocol.FileEntry{Name: e.Name, Path: e.Path})
	}
	return out
}

func (s *Server) createNote(m protocol.CreateNote) error {
	v, err := s.need()
	if err != nil {
		return err
	}
	name, err := v.Create(m.Title, m.Folder)
	if err != nil {
		return err
	}
	s.reply(protocol.NoteCreated{FileName: name})
	return s.status()
}

func (s *Server) deleteFile(m protocol.DeleteFile) error {
	v, err := s.need()
	if err != nil {
		return err
	}
	rel, _ := v.Name(m.FileName)
	if _, err := v.Delete(m.FileName); err != nil {
		return err
	}
	if s.current == rel {
		s.current = ""
	}
	s.reply(protocol.FileDeleted{FileName: m.FileName})
	s.info("noteTrashed", m.FileName)
	return s.status()
}

func (s *Server) duplicateFile(m protocol.DuplicateFile) error {
	v, err := s.need()
	if err != nil {
		return err
	}
	name, err := v.Duplicate(m.FileName)
	if err != nil {
		return err
	}
	s.info("noteDuplicated", name)
	return s.status()
}

func (s *Server) moveFile(m protocol.MoveFile) error {
	return s.rename(protocol.SourceMove, func(v *vault.Vault) (string, string, error) {
		return v.MoveFile(m.FileName, m.TargetFolder)
	})
}

func (s *Server) createFolder(m protocol.CreateFolder) error {
	v, err := s.need()
	if err != nil {
		return err
	}
	rel, err := v.CreateFolder(m.ParentFolder, m.Name)
	if err != nil {
		return err
	}
	s.info("folderCreated", rel)
	return s.status()
}

func (s *Server) renameFolder(m protocol.RenameFolder) error {
	return s.folderMove(func(v *vault.Vault) (string, string, error) {
		return v.RenameFolder(m.FolderPath, m.NewName)
	})
}

func (s *Server) moveFolder(m protocol.MoveFolder) error {
	return s.folderMove(func(v *vault.Vault) (string, string, error) {
		return v.MoveFolder(m.FolderPath, m.TargetFolder)
	})
}

func (s *Server) folderMove(do func(*vault.Vault) (string, string, error)) error {
	v, err := s.need()
	var from, to string
	if err == nil {
		from, to, err = do(v)
	}
	if err != nil {
		s.log.Warn("host: folder move", "err", err)
		s.reply(protocol.FolderMoveResult{Error: s.errorText(err)})
		return nil
	}
	if next, ok := underPrefix(s.current, from, to); ok {
		s.current = next
	}
	s.reply(protocol.FolderMoveResult{Success: true, OldPath: from, NewPath: to})
	if from != to {
		return s.status()
	}
	return nil
}

func underPrefix(name, from, to string) (string, bool) {
	if name == "" || from == "" {
		return name, false
	}
	if name == from {
		return to, true
	}
	if len(name) > len(from) && name[:len(from)] == from && name[len(from)] == '/' {
		return to + name[len(from):], true
	}
	return name, false
}

func (s *Server) deleteFolder(m protocol.DeleteFolder) error {
	v, err := s.need()
	if err != nil {
		return err
	}
	folder, _ := v.Name(m.FolderPath)
	rel, err := v.DeleteFolder(m.FolderPath)
	if err != nil {
		return err
	}
	if _, ok := underPrefix(s.current, folder, rel); ok {
		s.current = ""
	}
	s.info("folderTrashed", m.FolderPath)
	return s.status()
}

func (s *Server) findFiles(m protocol.FindFiles) error {
	v, err := s.need()
	if err != nil {
		return err
	}
	limit := m.Limit
	if limit <= 0 {
		limit = s.limit
	}
	found, err := v.Find(m.Query, limit)
	if err != nil {
		return err
	}
	s.reply(protocol.FoundFiles{Query: m.Query, Files: entries(found)})
	return nil
}
