package vault

import (
	"path"
	"strings"

	"github.com/spf13/afero"
)

func (v *Vault) dirExists(rel string) bool {
	p, err := v.abs(rel)
	if err != nil {
		return false
	}
	ok, _ := afero.DirExists(v.fs, p)
	return ok
}

// CreateFolder creates folder name inside parent ("" is the root).
func (v *Vault) CreateFolder(parent, name string) (string, error) {
	cleaned := CleanName(name)
	if cleaned == "" {
		return "", ErrInvalidName
	}
	rel, err := v.target(parent, cleaned)
	if err != nil {
		return "", err
	}
	if v.exists(rel) {
		return "", ErrFolderExists
	}
	p, _ := v.abs(rel)
	if err := v.fs.MkdirAll(p, 0o755); err != nil {
		return "", err
	}
	return rel, nil
}

// RenameFolder gives folder a new last segment.
func (v *Vault) RenameFolder(folder, newName string) (string, string, error) {
	from, err := v.clean(folder)
	if err != nil {
		return "", "", err
	}
	cleaned := CleanName(newName)
	if cleaned == "" {
		return "", "", ErrInvalidName
	}
	to, err := v.clean(join(path.Dir(from), cleaned))
	if err != nil {
		return "", "", err
	}
	if from == to {
		return from, to, nil
	}
	if !v.dirExists(from) {
		return "", "", ErrFolderNotFound
	}
	if v.exists(to) {
		return "", "", ErrFolderExists
	}
	if err := v.move(from, to); err != nil {
		return "", "", err
	}
	return from, to, nil
}

// DeleteFolder moves folder and its content into the trash.
func (v *Vault) DeleteFolder(folder string) (string, error) {
	rel, err := v.clean(folder)
	if err != nil {
		return "", err
	}
	if !v.dirExists(rel) {
		return "", ErrFolderNotFound
	}
	if rel == TrashDir || strings.HasPrefix(rel, TrashDir+"/") {
		return "", ErrInvalidName
	}
	return v.trash(rel)
}

// MoveFolder moves folder into targetFolder ("" is the root).
func (v *Vault) MoveFolder(folder, targetFolder string) (string, string, error) {
	from, err := v.clean(folder)
	if err != nil {
		return "", "", err
	}
	if t := SanitizeFileName(targetFolder); t != "" {
		t = path.Clean("/" + t)[1:]
		if t == from || strings.HasPrefix(t, from+"/") {
			return "", "", ErrMoveIntoSelf
		}
	}
	to, err := v.target(targetFolder, path.Base(from))
	if err != nil {
		return "", "", err
	}
	if from == to {
		return from, to, nil
	}
	if !v.dirExists(from) {
		return "", "", ErrFolderNotFound
	}
	if v.exists(to) {
		return "", "", ErrFolderExists
	}
	if err := v.move(from, to); err != nil {
		return "", "", err
	}
	return from, to, nil
}
