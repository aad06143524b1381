// Package vault is the note store behind the host: a folder of markdown
// files addressed by slash separated names relative to its root.
//
// Every name passes SanitizeFileName and must resolve inside the root. The
// Error text of the sentinel errors is the message shown to the user.
package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var (
	ErrNoVault        = errors.New("Vault not configured")
	ErrInvalidName    = errors.New("Invalid file name")
	ErrNotFound       = errors.New("Original note not found")
	ErrExists         = errors.New("A note with that name already exists")
	ErrFolderNotFound = errors.New("Folder not found")
	ErrFolderExists   = errors.New("A folder with that name already exists")
	ErrMoveIntoSelf   = errors.New("Cannot move a folder into itself")
	ErrOutsideRoot    = errors.New("Path is outside the vault")
)

// TrashDir holds deleted notes and folders.
const TrashDir = ".trash"

// DefaultTitle names notes created without a title.
const DefaultTitle = "Untitled"

type Options struct {
	Logger *slog.Logger
	// Ignore holds doublestar patterns of names left out of listings.
	Ignore []string
}

type Vault struct {
	fs     afero.Fs
	root   string
	log    *slog.Logger
	ignore []string
}

// Open returns the vault rooted at root on fsys. The root must be an
// existing directory.
func Open(fsys afero.Fs, root string, opt Options) (*Vault, error) {
	if strings.TrimSpace(root) == "" {
		return nil, ErrNoVault
	}
	root = filepath.Clean(root)
	ok, err := afero.DirExists(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("vault: stat %s: %w", root, err)
	}
	if !ok {
		return nil, fmt.Errorf("vault: %s: %w", root, ErrNoVault)
	}
	v := &Vault{fs: fsys, root: root, log: opt.Logger, ignore: opt.Ignore}
	if v.log == nil {
		v.log = slog.New(slog.DiscardHandler)
	}
	return v, nil
}

func (v *Vault) Root() string { return v.root }

func (v *Vault) Fs() afero.Fs { return v.fs }

// clean sanitizes name and returns it as a canonical relative name.
func (v *Vault) clean(name string) (string, error) {
	n := SanitizeFileName(name)
	if n == "" {
		return "", ErrInvalidName
	}
	n = path.Clean("/" + n)[1:]
	if n == "" {
		return "", ErrInvalidName
	}
	if _, err := v.abs(n); err != nil {
		return "", err
	}
	return n, nil
}

// Name returns the canonical vault name of name.
func (v *Vault) Name(name string) (string, error) { return v.clean(name) }

// abs maps a relative name to its path on the filesystem.
func (v *Vault) abs(rel string) (string, error) {
	p := filepath.Join(v.root, filepath.FromSlash(rel))
	if p != v.root && !strings.HasPrefix(p, v.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	return p, nil
}

// Rel returns the vault name of a filesystem path.
func (v *Vault) Rel(p string) (string, error) {
	rel, err := filepath.Rel(v.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	return filepath.ToSlash(rel), nil
}

func (v *Vault) exists(rel string) bool {
	p, err := v.abs(rel)
	if err != nil {
		return false
	}
	ok, _ := afero.Exists(v.fs, p)
	return ok
}

func (v *Vault) mkdirParent(p string) error {
	return v.fs.MkdirAll(filepath.Dir(p), 0o755)
}

// Read returns the content of note name.
func (v *Vault) Read(name string) (string, error) {
	rel, err := v.clean(name)
	if err != nil {
		return "", err
	}
	p, _ := v.abs(rel)
	data, err := afero.ReadFile(v.fs, p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("vault: read %s: %w", rel, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", rel, err)
	}
	return string(data), nil
}

// Save writes content under NoteName(name), creating folders as needed, and
// returns the name written.
func (v *Vault) Save(name, content string) (string, error) {
	rel, err := v.clean(name)
	if err != nil {
		return "", err
	}
	rel = NoteName(rel)
	p, err := v.abs(rel)
	if err != nil {
		return "", err
	}
	if err := v.mkdirParent(p); err != nil {
		return "", fmt.Errorf("vault: save %s: %w", rel, err)
	}
	if err := afero.WriteFile(v.fs, p, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("vault: save %s: %w", rel, err)
	}
	return rel, nil
}

// Rename moves note oldName to newName. Renaming a note to itself succeeds.
func (v *Vault) Rename(oldName, newName string) (string, string, error) {
	from, err := v.clean(oldName)
	if err != nil {
		return "", "", err
	}
	to, err := v.clean(newName)
	if err != nil {
		return "", "", err
	}
	if from == to {
		return from, to, nil
	}
	if !v.exists(from) {
		return "", "", ErrNotFound
	}
	if v.exists(to) {
		return "", "", ErrExists
	}
	if err := v.move(from, to); err != nil {
		return "", "", err
	}
	v.log.Info("vault: renamed", "from", from, "to", to)
	return from, to, nil
}

// RenameTitle renames fileName to the cleaned title, keeping its folder.
func (v *Vault) RenameTitle(fileName, title string) (string, string, error) {
	from, err := v.clean(fileName)
	if err != nil {
		return "", "", err
	}
	base := CleanDisplayName(title)
	if base == "" {
		return "", "", ErrInvalidName
	}
	return v.Rename(from, join(path.Dir(from), base))
}

func (v *Vault) move(from, to string) error {
	src, err := v.abs(from)
	if err != nil {
		return err
	}
	dst, err := v.abs(to)
	if err != nil {
		return err
	}
	if err := v.mkdirParent(dst); err != nil {
		return fmt.Errorf("vault: move %s: %w", from, err)
	}
	if err := v.fs.Rename(src, dst); err != nil {
		return fmt.Errorf("vault: move %s to %s: %w", from, to, err)
	}
	return nil
}

// Create writes an empty note named after title in folder, adding " 1",
// " 2", ... until the name is free.
func (v *Vault) Create(title, folder string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	dir := ""
	if strings.TrimSpace(folder) != "" {
		d, err := v.clean(folder)
		if err != nil {
			return "", err
		}
		dir = d
	}
	base := CleanName(title)
	if base == "" {
		return "", ErrInvalidName
	}
	return v.Save(unique(dir, base, ".md", " ", 1, v.exists), "")
}

// Duplicate copies note name to "name copy.md", "name copy 2.md", ...
func (v *Vault) Duplicate(name string) (string, error) {
	rel, err := v.clean(name)
	if err != nil {
		return "", err
	}
	content, err := v.Read(rel)
	if err != nil {
		return "", err
	}
	dir, base, ext := splitExt(rel)
	if ext == "" {
		ext = ".md"
	}
	target := unique(dir, base+" copy", ext, " ", 2, v.exists)
	return v.Save(target, content)
}

// Delete moves note name into the trash folder and returns its trash name.
func (v *Vault) Delete(name string) (string, error) {
	rel, err := v.clean(name)
	if err != nil {
		return "", err
	}
	if !v.exists(rel) {
		return "", ErrNotFound
	}
	return v.trash(rel)
}

func (v *Vault) trash(rel string) (string, error) {
	dir, base, ext := splitExt(join(TrashDir, rel))
	target := unique(dir, base, ext, " ", 1, v.exists)
	if err := v.move(rel, target); err != nil {
		return "", err
	}
	v.log.Info("vault: trashed", "name", rel, "trash", target)
	return target, nil
}

// MoveFile moves note name into folder targetFolder ("" is the root).
func (v *Vault) MoveFile(name, targetFolder string) (string, string, error) {
	from, err := v.clean(name)
	if err != nil {
		return "", "", err
	}
	to, err := v.target(targetFolder, path.Base(from))
	if err != nil {
		return "", "", err
	}
	if from == to {
		return from, to, nil
	}
	if !v.exists(from) {
		return "", "", ErrNotFound
	}
	if v.exists(to) {
		return "", "", ErrExists
	}
	if err := v.move(from, to); err != nil {
		return "", "", err
	}
	return from, to, nil
}

func (v *Vault) target(folder, base string) (string, error) {
	if strings.TrimSpace(folder) == "" {
		return v.clean(base)
	}
	dir, err := v.clean(folder)
	if err != nil {
		return "", err
	}
	return v.clean(path.Join(dir, base))
}
