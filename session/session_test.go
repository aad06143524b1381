package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iw2rmb/bunmark/internal/clock"
	"github.com/iw2rmb/bunmark/protocol"
)

func TestGraceWindows(t *testing.T) {
	clk := clock.NewTest()
	s := New(ModeSidebar, DefaultTiming())
	now := clk.Now()

	require.False(t, s.Typing(now), "nothing typed yet")

	s.NoteTyping(now)
	require.True(t, s.Typing(now.Add(499*time.Millisecond)))
	require.False(t, s.Typing(now.Add(500*time.Millisecond)))

	clk.FastForward(2 * time.Second)
	now = clk.Now()
	s.NoteCheckboxToggle(now)
	require.True(t, s.Suppressed(now.Add(799*time.Millisecond)))
	require.False(t, s.Suppressed(now.Add(800*time.Millisecond)))
	require.True(t, s.RecentCheckbox(now.Add(time.Second)))
	require.True(t, s.Typing(now.Add(time.Second)), "checkbox grace counts as typing")
	require.False(t, s.Typing(now.Add(1500*time.Millisecond)))
	require.Equal(t, 300*time.Millisecond, s.IdleFor(now.Add(300*time.Millisecond)))
}

func TestTabsAndSavedContent(t *testing.T) {
	clk := clock.NewTest()
	s := New(ModeMain, DefaultTiming())

	s.Loaded("a.md", "/v/a.md", "A")
	s.Loaded("notes/b.md", "/v/notes/b.md", "B")
	require.Equal(t, "notes/b.md", s.CurrentFile)
	require.False(t, s.Dirty("notes/b.md", "B"))
	require.True(t, s.Dirty("notes/b.md", "B!"))

	require.True(t, s.Switch("a.md"))
	require.Equal(t, "/v/a.md", s.CurrentPath)
	require.False(t, s.Switch("missing.md"))

	s.MarkSaved("a.md", "A2", clk.Now())
	require.False(t, s.Dirty("a.md", "A2"))
	require.True(t, s.IgnoreFileChanged("a.md", clk.Now().Add(900*time.Millisecond)))
	require.False(t, s.IgnoreFileChanged("a.md", clk.Now().Add(time.Second)))
	require.False(t, s.IgnoreFileChanged("notes/b.md", clk.Now()))

	s.Close("a.md")
	require.Equal(t, "notes/b.md", s.CurrentFile)
	require.Len(t, s.Tabs(), 1)
	require.True(t, s.Dirty("a.md", "A2"), "closed note forgets its saved content")

	s.Close("notes/b.md")
	require.Empty(t, s.CurrentFile)
}

func TestApplyRename(t *testing.T) {
	s := New(ModeSidebar, DefaultTiming())
	s.Loaded("notes/old.md", "/v/notes/old.md", "x")

	changed := s.ApplyRename(protocol.RenameResult{Success: true, OldName: "notes/old.md", NewName: "notes/new.md"})
	require.True(t, changed)
	require.Equal(t, "notes/new.md", s.CurrentFile)
	require.Equal(t, "/v/notes/new.md", s.CurrentPath)
	require.True(t, s.IsOpen("notes/new.md"))
	require.False(t, s.IsOpen("notes/old.md"))
	require.False(t, s.Dirty("notes/new.md", "x"), "saved content follows the rename")
}

func TestRenameCollisionFromTitleRestoresEditing(t *testing.T) {
	s := New(ModeSidebar, DefaultTiming())
	s.Loaded("notes/draft.md", "", "")

	require.True(t, s.StartTitleEdit())
	require.Equal(t, "draft", s.Title.Value)

	req, ok := s.CommitTitle("taken")
	require.True(t, ok)
	require.Equal(t, protocol.RenameFile{OldName: "notes/draft.md", NewName: "notes/taken.md", Source: protocol.SourceEditorTitle}, req)
	require.False(t, s.Title.Editing)

	s.ApplyRename(protocol.RenameResult{Success: false, Error: "A note with that name already exists", Source: protocol.SourceEditorTitle})
	require.True(t, s.Title.Editing)
	require.Equal(t, "draft", s.Title.Value)
	require.Equal(t, "draft", s.Title.Original)
	require.Equal(t, "notes/draft.md", s.CurrentFile)
}

func TestRenameFailureFromContextMenuLeavesTitle(t *testing.T) {
	s := New(ModeSidebar, DefaultTiming())
	s.Loaded("a.md", "", "")
	s.ApplyRename(protocol.RenameResult{Success: false, Source: protocol.SourceContextMenu})
	require.False(t, s.Title.Editing)
}

func TestCommitTitleUnchanged(t *testing.T) {
	s := New(ModeSidebar, DefaultTiming())
	s.Loaded("a.md", "", "")
	s.StartTitleEdit()
	_, ok := s.CommitTitle("  a ")
	require.False(t, ok)
	require.Equal(t, "a", s.Title.Value)

	_, ok = s.CommitTitle("b")
	require.False(t, ok, "commit without an open editor")
}

func TestApplyFolderMove(t *testing.T) {
	s := New(ModeSidebar, DefaultTiming())
	s.Loaded("work/a.md", "", "a")
	s.Loaded("work/sub/b.md", "", "b")
	s.Loaded("workshop/c.md", "", "c")
	s.Switch("work/sub/b.md")

	require.True(t, s.ApplyFolderMove(protocol.FolderMoveResult{Success: true, OldPath: "work", NewPath: "archive/work"}))

	var names []string
	for _, tab := range s.Tabs() {
		names = append(names, tab.Name)
	}
	require.Equal(t, []string{"archive/work/a.md", "archive/work/sub/b.md", "workshop/c.md"}, names)
	require.Equal(t, "archive/work/sub/b.md", s.CurrentFile)
	require.False(t, s.Dirty("archive/work/a.md", "a"))

	require.False(t, s.ApplyFolderMove(protocol.FolderMoveResult{Success: false, Error: "boom"}))
}

func TestBuildRelPath(t *testing.T) {
	cases := []struct {
		title, current, want string
		ok                   bool
	}{
		{"New Title", "notes/old.md", "notes/New Title.md", true},
		{"a/b", "old.md", "a-b.md", true},
		{`what: "now"?`, "x.md", "what now.md", true},
		{"Done.MD", "x.md", "Done.MD", true},
		{"   ", "x.md", "", false},
		{"t", "", "", false},
		{"***", "x.md", "", false},
	}
	for _, tc := range cases {
		got, ok := BuildRelPath(tc.title, tc.current)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("BuildRelPath(%q,%q)=%q,%v want %q,%v", tc.title, tc.current, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFormatTitle(t *testing.T) {
	cases := map[string]string{
		"":             "Untitled",
		"notes/a.md":   "a",
		`dir\b.MD`:     "b",
		"plain":        "plain",
		"folder/.md":   "Untitled",
		"folder/x.txt": "x.txt",
	}
	for in, want := range cases {
		if got := FormatTitle(in); got != want {
			t.Fatalf("FormatTitle(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("custom")
	require.NoError(t, err)
	require.Equal(t, ModeMain, m)
	_, err = ParseMode("floating")
	require.Error(t, err)
}
