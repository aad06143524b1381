package vault

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const root = "/vault"

func newVault(t *testing.T, files map[string]string) *Vault {
	t.Helper()
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll(root, 0o755))
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, mem.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(mem, p, []byte(content), 0o644))
	}
	v, err := Open(mem, root, Options{})
	require.NoError(t, err)
	return v
}

// newDiskVault backs the vault with a temp dir where folder renames move
// their content.
func newDiskVault(t *testing.T, files map[string]string) *Vault {
	t.Helper()
	dir := t.TempDir()
	osfs := afero.NewOsFs()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, osfs.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(osfs, p, []byte(content), 0o644))
	}
	v, err := Open(osfs, dir, Options{})
	require.NoError(t, err)
	return v
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"  note.md ":               "note.md",
		"file:///notes/a.md":       "notes/a.md",
		"FILE://a.md":              "a.md",
		"vscode-resource://x/a.md": "x/a.md",
		"a\x00b\x1f\x7f.md":        "ab.md",
		`dir\sub\a.md`:             "dir/sub/a.md",
		"cafe\u0301.md":            "caf\u00e9.md",
	}
	for in, want := range tests {
		require.Equal(t, want, SanitizeFileName(in), "input %q", in)
	}
}

func TestCleanDisplayName(t *testing.T) {
	require.Equal(t, "a-b.md", CleanDisplayName("a/b"))
	require.Equal(t, "a-b.md", CleanDisplayName(`a\\b`))
	require.Equal(t, "what.md", CleanDisplayName(` wh:a*t?"<>| `))
	require.Equal(t, "Note.MD", CleanDisplayName("Note.MD"))
	require.Equal(t, "", CleanDisplayName(" :*? "))
}

func TestOpen(t *testing.T) {
	_, err := Open(afero.NewMemMapFs(), "", Options{})
	require.ErrorIs(t, err, ErrNoVault)
	_, err = Open(afero.NewMemMapFs(), "/missing", Options{})
	require.ErrorIs(t, err, ErrNoVault)
}

func TestReadSave(t *testing.T) {
	v := newVault(t, nil)

	name, err := v.Save("todo", "- [ ] a")
	require.NoError(t, err)
	require.Equal(t, "todo.md", name)

	name, err = v.Save("deep/folder/n", "x")
	require.NoError(t, err)
	require.Equal(t, "deep/folder/n", name, "names with a folder keep their extension as is")

	got, err := v.Read("todo.md")
	require.NoError(t, err)
	require.Equal(t, "- [ ] a", got)

	_, err = v.Read("nope.md")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = v.Read("   ")
	require.ErrorIs(t, err, ErrInvalidName)
}

func TestNamesStayInsideRoot(t *testing.T) {
	v := newVault(t, nil)
	name, err := v.Save("../../etc/passwd", "x")
	require.NoError(t, err)
	require.Equal(t, "etc/passwd", name)
	ok, err := afero.Exists(v.Fs(), "/vault/etc/passwd")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRename(t *testing.T) {
	v := newVault(t, map[string]string{"a.md": "A", "b.md": "B"})

	_, _, err := v.Rename("a.md", "b.md")
	require.EqualError(t, err, "A note with that name already exists")

	_, _, err = v.Rename("missing.md", "c.md")
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = v.Rename("", "c.md")
	require.ErrorIs(t, err, ErrInvalidName)

	from, to, err := v.Rename("a.md", "a.md")
	require.NoError(t, err)
	require.Equal(t, "a.md", from)
	require.Equal(t, "a.md", to)

	_, to, err = v.Rename("a.md", "sub/c.md")
	require.NoError(t, err)
	require.Equal(t, "sub/c.md", to)
	got, err := v.Read("sub/c.md")
	require.NoError(t, err)
	require.Equal(t, "A", got)
}

func TestRenameTitle(t *testing.T) {
	v := newVault(t, map[string]string{"work/old.md": "x"})
	from, to, err := v.RenameTitle("work/old.md", "New: plan/v2")
	require.NoError(t, err)
	require.Equal(t, "work/old.md", from)
	require.Equal(t, "work/New plan-v2.md", to)

	_, _, err = v.RenameTitle("work/New plan-v2.md", "???")
	require.ErrorIs(t, err, ErrInvalidName)
}

func TestCreateUnique(t *testing.T) {
	v := newVault(t, map[string]string{"Untitled.md": ""})

	name, err := v.Create("", "")
	require.NoError(t, err)
	require.Equal(t, "Untitled 1.md", name)

	name, err = v.Create("  ", "")
	require.NoError(t, err)
	require.Equal(t, "Untitled 2.md", name)

	name, err = v.Create("Plan", "projects")
	require.NoError(t, err)
	require.Equal(t, "projects/Plan.md", name)
}

func TestDuplicate(t *testing.T) {
	v := newVault(t, map[string]string{"dir/n.md": "body"})

	name, err := v.Duplicate("dir/n.md")
	require.NoError(t, err)
	require.Equal(t, "dir/n copy.md", name)

	name, err = v.Duplicate("dir/n.md")
	require.NoError(t, err)
	require.Equal(t, "dir/n copy 2.md", name)

	got, err := v.Read(name)
	require.NoError(t, err)
	require.Equal(t, "body", got)
}

func TestDeleteMovesToTrash(t *testing.T) {
	v := newVault(t, map[string]string{"a.md": "1", ".trash/a.md": "old"})

	trashed, err := v.Delete("a.md")
	require.NoError(t, err)
	require.Equal(t, ".trash/a 1.md", trashed)
	require.False(t, v.exists("a.md"))

	_, err = v.Delete("a.md")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMoveFile(t *testing.T) {
	v := newVault(t, map[string]string{"a.md": "1", "done/b.md": "2", "b.md": "3"})

	from, to, err := v.MoveFile("a.md", "done")
	require.NoError(t, err)
	require.Equal(t, "a.md", from)
	require.Equal(t, "done/a.md", to)

	_, _, err = v.MoveFile("b.md", "done")
	require.ErrorIs(t, err, ErrExists)

	_, to, err = v.MoveFile("done/a.md", "")
	require.NoError(t, err)
	require.Equal(t, "a.md", to)
}

func TestFolders(t *testing.T) {
	v := newDiskVault(t, map[string]string{"p/x.md": "x", "p/sub/y.md": "y", "q/z.md": "z"})

	rel, err := v.CreateFolder("p", "new/one")
	require.NoError(t, err)
	require.Equal(t, "p/new-one", rel)
	_, err = v.CreateFolder("", "q")
	require.ErrorIs(t, err, ErrFolderExists)
	_, err = v.CreateFolder("", " |")
	require.ErrorIs(t, err, ErrInvalidName)

	_, _, err = v.MoveFolder("p", "p/sub")
	require.EqualError(t, err, "Cannot move a folder into itself")
	_, _, err = v.MoveFolder("p", "p")
	require.ErrorIs(t, err, ErrMoveIntoSelf)

	from, to, err := v.MoveFolder("p", "q")
	require.NoError(t, err)
	require.Equal(t, "p", from)
	require.Equal(t, "q/p", to)
	got, err := v.Read("q/p/sub/y.md")
	require.NoError(t, err)
	require.Equal(t, "y", got)

	_, to, err = v.RenameFolder("q/p", "r")
	require.NoError(t, err)
	require.Equal(t, "q/r", to)
	_, _, err = v.RenameFolder("missing", "r")
	require.ErrorIs(t, err, ErrFolderNotFound)

	trashed, err := v.DeleteFolder("q/r")
	require.NoError(t, err)
	require.Equal(t, ".trash/q/r", trashed)
	require.False(t, v.dirExists("q/r"))
}

func TestListAndIndex(t *testing.T) {
	v := newVault(t, map[string]string{
		"b.md":          "",
		"notes/a.md":    "",
		"notes/img.png": "",
		".hidden/x.md":  "",
		".dot.md":       "",
		"z/deep/c.md":   "",
	})
	l, err := v.List()
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Name: "a.md", Path: "notes/a.md"},
		{Name: "b.md", Path: "b.md"},
		{Name: "c.md", Path: "z/deep/c.md"},
	}, l.Files)
	require.Equal(t, []string{"notes", "z", "z/deep"}, l.Folders)

	l.UpdatedAt = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, v.WriteIndex(l))
	cached, ok, err := v.ReadIndex()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, l.Files, cached.Files)
	require.True(t, l.UpdatedAt.Equal(cached.UpdatedAt))

	again, err := v.List()
	require.NoError(t, err)
	require.Equal(t, l.Files, again.Files, "the index folder is hidden")
}

func TestListIgnore(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/vault/archive", 0o755))
	require.NoError(t, afero.WriteFile(mem, "/vault/keep.md", nil, 0o644))
	require.NoError(t, afero.WriteFile(mem, "/vault/archive/old.md", nil, 0o644))
	v, err := Open(mem, root, Options{Ignore: []string{"archive"}})
	require.NoError(t, err)
	l, err := v.List()
	require.NoError(t, err)
	require.Equal(t, []Entry{{Name: "keep.md", Path: "keep.md"}}, l.Files)
	require.Empty(t, l.Folders)
}

func TestReadIndexMissing(t *testing.T) {
	_, ok, err := newVault(t, nil).ReadIndex()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFind(t *testing.T) {
	v := newVault(t, map[string]string{"meeting notes.md": "", "misc.md": "", "projects/roadmap.md": ""})
	got, err := v.Find("road", 10)
	require.NoError(t, err)
	require.Equal(t, []Entry{{Name: "roadmap.md", Path: "projects/roadmap.md"}}, got)

	got, err = v.Find("", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResolveImage(t *testing.T) {
	v := newVault(t, map[string]string{
		"notes/pics/cat.png": string(pngBytes(t, 3, 2)),
		"assets/dog.png":     "not a png",
		"my pic.png":         string(pngBytes(t, 1, 1)),
	})

	img, err := v.ResolveImage("pics/cat.png", "notes/today.md")
	require.NoError(t, err)
	require.Equal(t, Image{URI: "file:///vault/notes/pics/cat.png", Width: 3, Height: 2}, img)

	img, err = v.ResolveImage("assets/dog.png", "notes/today.md")
	require.NoError(t, err, "falls back to the root")
	require.Equal(t, "file:///vault/assets/dog.png", img.URI)
	require.Zero(t, img.Width)

	img, err = v.ResolveImage("/notes/pics/cat.png", "x.md")
	require.NoError(t, err)
	require.Equal(t, 3, img.Width)

	img, err = v.ResolveImage("my%20pic.png", "")
	require.NoError(t, err)
	require.Equal(t, "file:///vault/my%20pic.png", img.URI)

	_, err = v.ResolveImage("../../etc/passwd", "notes/today.md")
	require.ErrorIs(t, err, ErrOutsideRoot)

	_, err = v.ResolveImage("file:///etc/passwd", "")
	require.ErrorIs(t, err, ErrOutsideRoot)

	_, err = v.ResolveImage("missing.png", "")
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestWatch(t *testing.T) {
	v := newDiskVault(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := v.Watch(ctx)
	require.NoError(t, err)

	_, err = v.Save("n.md", "hello")
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Name == "n.md" {
				cancel()
				return
			}
		case <-deadline:
			t.Fatalf("no event for n.md")
		}
	}
}

func TestWatchNeedsOsFs(t *testing.T) {
	_, err := newVault(t, nil).Watch(context.Background())
	require.ErrorIs(t, err, ErrWatchUnsupported)
}
