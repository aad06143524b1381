package app

import (
	"path"
	"slices"
	"strings"

	"github.com/iw2rmb/bunmark/protocol"
)

// item is one row of the file list: a folder or a note.
type item struct {
	Path   string
	Name   string
	Folder bool
	Depth  int
}

// fileList is the sidebar tree built from vaultStatus listings.
type fileList struct {
	root   string
	items  []item
	files  []protocol.FileEntry
	cursor int
	top    int
}

// setListing rebuilds the rows and keeps the cursor on the same path when
// it still exists.
func (l *fileList) setListing(st protocol.VaultStatus) {
	selected := l.selectedPath()
	l.root = st.VaultPath
	l.files = slices.Clone(st.Files)

	items := make([]item, 0, len(st.Folders)+len(st.Files))
	for _, f := range st.Folders {
		items = append(items, item{Path: f, Name: path.Base(f), Folder: true, Depth: strings.Count(f, "/")})
	}
	for _, f := range st.Files {
		items = append(items, item{Path: f.Path, Name: f.Name, Depth: strings.Count(f.Path, "/")})
	}
	slices.SortFunc(items, compareItems)
	l.items = items

	l.cursor = 0
	if i := slices.IndexFunc(items, func(it item) bool { return it.Path == selected }); i >= 0 {
		l.cursor = i
	}
}

// compareItems orders a tree: each folder directly precedes its contents,
// and within a folder subfolders sort before notes.
func compareItems(a, b item) int {
	as, bs := strings.Split(a.Path, "/"), strings.Split(b.Path, "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		aLeaf := i == len(as)-1 && !a.Folder
		bLeaf := i == len(bs)-1 && !b.Folder
		if aLeaf != bLeaf {
			if aLeaf {
				return 1
			}
			return -1
		}
		return strings.Compare(as[i], bs[i])
	}
	return len(as) - len(bs)
}

func splitItem(it item) (dir, name string) {
	dir, name = path.Split(it.Path)
	return strings.TrimSuffix(dir, "/"), name
}

func (l *fileList) selected() (item, bool) {
	if l.cursor < 0 || l.cursor >= len(l.items) {
		return item{}, false
	}
	return l.items[l.cursor], true
}

func (l *fileList) selectedPath() string {
	it, _ := l.selected()
	return it.Path
}

// selectedFolder is the folder new notes and folders go to: the selected
// folder, or the parent folder of the selected note.
func (l *fileList) selectedFolder() string {
	it, ok := l.selected()
	if !ok {
		return ""
	}
	if it.Folder {
		return it.Path
	}
	dir, _ := splitItem(it)
	return dir
}

func (l *fileList) move(delta int) {
	if len(l.items) == 0 {
		l.cursor = 0
		return
	}
	l.cursor = min(max(l.cursor+delta, 0), len(l.items)-1)
}

// selectPath puts the cursor on p when it is listed.
func (l *fileList) selectPath(p string) {
	if i := slices.IndexFunc(l.items, func(it item) bool { return it.Path == p }); i >= 0 {
		l.cursor = i
	}
}

// scroll keeps the cursor within height rows and returns the first row.
func (l *fileList) scroll(height int) int {
	if height <= 0 {
		return 0
	}
	if l.cursor < l.top {
		l.top = l.cursor
	}
	if l.cursor >= l.top+height {
		l.top = l.cursor - height + 1
	}
	l.top = max(min(l.top, len(l.items)-height), 0)
	return l.top
}
