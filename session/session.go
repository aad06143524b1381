// Package session holds the mutable state of one editor surface: the open
// notes, what was last saved, the input grace windows and the title editor.
//
// The state is passed explicitly to the syntax engine, the scheduler and the
// input rules; nothing here reads the clock on its own.
package session

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/iw2rmb/bunmark/protocol"
)

// Mode is the embedding of the editor.
type Mode uint8

const (
	// ModeSidebar is the narrow panel embedding.
	ModeSidebar Mode = iota
	// ModeMain is the full-window editor embedding.
	ModeMain
)

func (m Mode) String() string {
	if m == ModeMain {
		return "main"
	}
	return "sidebar"
}

// ParseMode accepts "sidebar" and "main" (also "custom", the host's name for
// the full-window editor).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sidebar":
		return ModeSidebar, nil
	case "main", "custom":
		return ModeMain, nil
	default:
		return ModeSidebar, fmt.Errorf("session: unknown mode %q", s)
	}
}

// Timing holds the tunable grace windows and delays.
type Timing struct {
	TypingGrace      time.Duration
	CheckboxGrace    time.Duration
	SuppressMarkers  time.Duration
	FileChangedGrace time.Duration
	Autosave         time.Duration
	ImageUpdate      time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		TypingGrace:      500 * time.Millisecond,
		CheckboxGrace:    1500 * time.Millisecond,
		SuppressMarkers:  800 * time.Millisecond,
		FileChangedGrace: time.Second,
		Autosave:         750 * time.Millisecond,
		ImageUpdate:      250 * time.Millisecond,
	}
}

// Tab is one open note.
type Tab struct {
	Name    string // vault-relative path
	Path    string // absolute path, when the host reported one
	Content string
}

type Title struct {
	Editing  bool
	Original string
	Value    string
}

type State struct {
	Mode   Mode
	Timing Timing

	CurrentFile string
	CurrentPath string

	tabs  []Tab
	saved map[string]string

	LastLocalSave map[string]time.Time

	LastTyping    time.Time
	LastCheckbox  time.Time
	SuppressUntil time.Time

	Title Title
	// PendingTitleEdit names a created note whose title editor opens once
	// the note is loaded.
	PendingTitleEdit string
}

func New(mode Mode, timing Timing) *State {
	return &State{
		Mode:          mode,
		Timing:        timing,
		saved:         make(map[string]string),
		LastLocalSave: make(map[string]time.Time),
	}
}

// NoteTyping records a keystroke that changed the buffer.
func (s *State) NoteTyping(now time.Time) { s.LastTyping = now }

// NoteCheckboxToggle records a checkbox click. It counts as typing, opens the
// checkbox grace window and forces collapsed markers for SuppressMarkers.
func (s *State) NoteCheckboxToggle(now time.Time) {
	s.LastTyping = now
	s.LastCheckbox = now
	s.SuppressUntil = now.Add(s.Timing.SuppressMarkers)
}

// Typing reports whether now is inside the typing or checkbox grace window.
func (s *State) Typing(now time.Time) bool {
	return within(s.LastTyping, now, s.Timing.TypingGrace) || s.RecentCheckbox(now)
}

func (s *State) RecentCheckbox(now time.Time) bool {
	return within(s.LastCheckbox, now, s.Timing.CheckboxGrace)
}

func (s *State) Suppressed(now time.Time) bool {
	return now.Before(s.SuppressUntil)
}

// IdleFor returns how long ago the last keystroke was, or a very large
// duration when nothing was typed yet.
func (s *State) IdleFor(now time.Time) time.Duration {
	if s.LastTyping.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(s.LastTyping)
}

func within(at, now time.Time, d time.Duration) bool {
	return !at.IsZero() && now.Sub(at) < d
}

// Tabs returns the open notes in opening order.
func (s *State) Tabs() []Tab { return slices.Clone(s.tabs) }

func (s *State) IsOpen(name string) bool { return s.tabIndex(name) >= 0 }

func (s *State) Tab(name string) (Tab, bool) {
	i := s.tabIndex(name)
	if i < 0 {
		return Tab{}, false
	}
	return s.tabs[i], true
}

func (s *State) tabIndex(name string) int {
	return slices.IndexFunc(s.tabs, func(t Tab) bool { return t.Name == name })
}

// Loaded records content delivered by the host for name and makes it the
// current note. The content counts as saved.
func (s *State) Loaded(name, path, content string) {
	if i := s.tabIndex(name); i >= 0 {
		s.tabs[i].Content = content
		if path != "" {
			s.tabs[i].Path = path
		}
	} else {
		s.tabs = append(s.tabs, Tab{Name: name, Path: path, Content: content})
	}
	s.saved[name] = content
	s.CurrentFile = name
	s.CurrentPath = path
}

// Switch makes an already open note current. It reports false when name is
// not open, in which case the caller must ask the host to load it.
func (s *State) Switch(name string) bool {
	t, ok := s.Tab(name)
	if !ok {
		return false
	}
	s.CurrentFile = t.Name
	s.CurrentPath = t.Path
	return true
}

// Close drops a tab and its saved content. When it was current the first
// remaining tab becomes current.
func (s *State) Close(name string) {
	i := s.tabIndex(name)
	if i < 0 {
		return
	}
	s.tabs = slices.Delete(s.tabs, i, i+1)
	delete(s.saved, name)
	if s.CurrentFile != name {
		return
	}
	s.CurrentFile, s.CurrentPath = "", ""
	if len(s.tabs) > 0 {
		s.CurrentFile = s.tabs[0].Name
		s.CurrentPath = s.tabs[0].Path
	}
}

// SetContent stores the in-memory content of an open note.
func (s *State) SetContent(name, content string) {
	if i := s.tabIndex(name); i >= 0 {
		s.tabs[i].Content = content
	}
}

// Dirty reports whether content differs from what was last saved for name.
func (s *State) Dirty(name, content string) bool {
	saved, ok := s.saved[name]
	return !ok || saved != content
}

// MarkSaved records a local save of content.
func (s *State) MarkSaved(name, content string, now time.Time) {
	s.saved[name] = content
	s.LastLocalSave[name] = now
	s.SetContent(name, content)
}

// ForgetSaved drops the saved snapshot of name so the next autosave writes
// again, as after a failed save.
func (s *State) ForgetSaved(name string) { delete(s.saved, name) }

// IgnoreFileChanged reports whether a fileChanged notice for name is the
// echo of our own recent save.
func (s *State) IgnoreFileChanged(name string, now time.Time) bool {
	at, ok := s.LastLocalSave[name]
	return ok && within(at, now, s.Timing.FileChangedGrace)
}

// ApplyRename moves tab and saved-content keys after a successful rename.
// A failed rename started from the title editor re-opens it with the
// original name. It reports whether the current note was renamed.
func (s *State) ApplyRename(r protocol.RenameResult) bool {
	if !r.Success {
		if r.Source == protocol.SourceEditorTitle {
			s.StartTitleEdit()
		}
		return false
	}
	if r.OldName == "" || r.NewName == "" || r.OldName == r.NewName {
		return false
	}
	s.renameKey(r.OldName, r.NewName)
	if s.CurrentFile == r.OldName {
		s.CurrentFile = r.NewName
		return true
	}
	return false
}

// ApplyFolderMove rewrites every open name under the moved folder.
func (s *State) ApplyFolderMove(r protocol.FolderMoveResult) bool {
	if !r.Success || r.OldPath == "" || r.NewPath == "" {
		return false
	}
	changed := false
	for _, t := range s.Tabs() {
		next, ok := rewritePrefix(t.Name, r.OldPath, r.NewPath)
		if !ok {
			continue
		}
		changed = true
		wasCurrent := s.CurrentFile == t.Name
		s.renameKey(t.Name, next)
		if wasCurrent {
			s.CurrentFile = next
		}
	}
	return changed
}

func (s *State) renameKey(oldName, newName string) {
	if i := s.tabIndex(oldName); i >= 0 {
		s.tabs[i].Name = newName
		if s.tabs[i].Path != "" {
			s.tabs[i].Path = strings.TrimSuffix(s.tabs[i].Path, oldName) + newName
		}
	}
	if c, ok := s.saved[oldName]; ok {
		s.saved[newName] = c
		delete(s.saved, oldName)
	}
	if at, ok := s.LastLocalSave[oldName]; ok {
		s.LastLocalSave[newName] = at
		delete(s.LastLocalSave, oldName)
	}
	if s.CurrentFile == oldName && s.CurrentPath != "" {
		s.CurrentPath = strings.TrimSuffix(s.CurrentPath, oldName) + newName
	}
}

func rewritePrefix(name, oldPrefix, newPrefix string) (string, bool) {
	if name == oldPrefix {
		return newPrefix, true
	}
	if strings.HasPrefix(name, oldPrefix+"/") {
		return newPrefix + name[len(oldPrefix):], true
	}
	return name, false
}
