package session

import (
	"regexp"
	"strings"

	"github.com/iw2rmb/bunmark/protocol"
)

// DefaultTitle is shown for a note without a usable name.
const DefaultTitle = "Untitled"

// StartTitleEdit opens the title editor on the current note.
func (s *State) StartTitleEdit() bool {
	if s.CurrentFile == "" || s.Title.Editing {
		return false
	}
	title := FormatTitle(s.CurrentFile)
	s.Title = Title{Editing: true, Original: title, Value: title}
	return true
}

// CancelTitleEdit closes the title editor and restores the current title.
func (s *State) CancelTitleEdit() {
	s.Title = Title{Value: FormatTitle(s.CurrentFile)}
}

// CommitTitle closes the title editor. It returns the rename to send when
// value names a different file.
func (s *State) CommitTitle(value string) (protocol.RenameFile, bool) {
	if !s.Title.Editing {
		return protocol.RenameFile{}, false
	}
	s.Title.Editing = false
	if s.CurrentFile != "" {
		next, ok := BuildRelPath(value, s.CurrentFile)
		if ok && next != s.CurrentFile {
			s.Title.Value = value
			return protocol.RenameFile{
				OldName: s.CurrentFile,
				NewName: next,
				Source:  protocol.SourceEditorTitle,
			}, true
		}
	}
	s.Title.Value = FormatTitle(s.CurrentFile)
	return protocol.RenameFile{}, false
}

var (
	separatorsRE = regexp.MustCompile(`[\\/]+`)
	forbiddenRE  = regexp.MustCompile(`[:*?"<>|]+`)
	mdExtRE      = regexp.MustCompile(`(?i)\.md$`)
)

// BuildRelPath turns a typed title into a note path in the folder of current.
// Separators become "-", the characters : * ? " < > | are dropped and ".md"
// is appended when missing.
func BuildRelPath(title, current string) (string, bool) {
	if current == "" {
		return "", false
	}
	base := strings.TrimSpace(title)
	if base == "" {
		return "", false
	}
	if !strings.HasSuffix(strings.ToLower(base), ".md") {
		base += ".md"
	}
	base = strings.TrimSpace(forbiddenRE.ReplaceAllString(separatorsRE.ReplaceAllString(base, "-"), ""))
	if base == "" || strings.EqualFold(base, ".md") {
		return "", false
	}
	if i := strings.LastIndex(current, "/"); i >= 0 {
		return current[:i+1] + base, true
	}
	return base, true
}

// FormatTitle returns the display title of a note path: its base name
// without ".md".
func FormatTitle(name string) string {
	if name == "" {
		return DefaultTitle
	}
	base := name
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		base = name[i+1:]
	}
	if base == "" {
		base = name
	}
	if t := mdExtRE.ReplaceAllString(base, ""); t != "" {
		return t
	}
	return DefaultTitle
}
