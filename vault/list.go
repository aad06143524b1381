package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// IndexFile caches the last listing, relative to the root.
const IndexFile = ".bunmark/index.yaml"

const notePattern = "**/*.md"

type Entry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type Listing struct {
	Root      string    `yaml:"vault_path"`
	Files     []Entry   `yaml:"files"`
	Folders   []string  `yaml:"folders"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// List walks the vault. Entries whose name starts with a dot are skipped;
// files are the notes sorted by base name, folders are sorted by path.
func (v *Vault) List() (Listing, error) {
	out := Listing{Root: v.root, Files: []Entry{}, Folders: []string{}}
	err := afero.Walk(v.fs, v.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			v.log.Debug("vault: walk", "path", p, "err", err)
			return nil
		}
		if p == v.root {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := v.Rel(p)
		if err != nil {
			return nil
		}
		if v.ignored(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			out.Folders = append(out.Folders, rel)
			return nil
		}
		if ok, _ := doublestar.Match(notePattern, rel); ok {
			out.Files = append(out.Files, Entry{Name: info.Name(), Path: rel})
		}
		return nil
	})
	if err != nil {
		return Listing{}, fmt.Errorf("vault: list: %w", err)
	}
	slices.SortFunc(out.Files, func(a, b Entry) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	slices.Sort(out.Folders)
	return out, nil
}

func (v *Vault) ignored(rel string) bool {
	for _, pattern := range v.ignore {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

type entries []Entry

func (e entries) String(i int) string { return e[i].Path }
func (e entries) Len() int            { return len(e) }

// Find returns up to limit notes whose path fuzzy matches query, best first.
// An empty query returns the listing order.
func (v *Vault) Find(query string, limit int) ([]Entry, error) {
	l, err := v.List()
	if err != nil {
		return nil, err
	}
	return FindIn(l.Files, query, limit), nil
}

// FindIn fuzzy matches query against files.
func FindIn(files []Entry, query string, limit int) []Entry {
	var out []Entry
	if strings.TrimSpace(query) == "" {
		out = slices.Clone(files)
	} else {
		for _, m := range fuzzy.FindFrom(query, entries(files)) {
			out = append(out, files[m.Index])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// WriteIndex stores l as the listing cache.
func (v *Vault) WriteIndex(l Listing) error {
	p, err := v.abs(IndexFile)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("vault: encode index: %w", err)
	}
	if err := v.mkdirParent(p); err != nil {
		return fmt.Errorf("vault: write index: %w", err)
	}
	if err := afero.WriteFile(v.fs, p, data, 0o644); err != nil {
		return fmt.Errorf("vault: write index: %w", err)
	}
	return nil
}

// ReadIndex loads the listing cache. A missing cache reports ok false.
func (v *Vault) ReadIndex() (l Listing, ok bool, err error) {
	p, err := v.abs(IndexFile)
	if err != nil {
		return Listing{}, false, err
	}
	data, err := afero.ReadFile(v.fs, p)
	if errors.Is(err, fs.ErrNotExist) {
		return Listing{}, false, nil
	}
	if err != nil {
		return Listing{}, false, fmt.Errorf("vault: read index: %w", err)
	}
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Listing{}, false, fmt.Errorf("vault: decode index: %w", err)
	}
	return l, true, nil
}
