package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

var ErrWatchUnsupported = errors.New("vault: filesystem cannot be watched")

type Op uint8

const (
	Changed Op = iota + 1
	Created
	Removed
)

func (o Op) String() string {
	switch o {
	case Changed:
		return "changed"
	case Created:
		return "created"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Event reports a change to a note.
type Event struct {
	Op   Op
	Name string
}

// Watch reports changes to notes until ctx is done. Folders created later
// are watched too. Only the OS filesystem can be watched.
func (v *Vault) Watch(ctx context.Context) (<-chan Event, error) {
	if _, ok := v.fs.(*afero.OsFs); !ok {
		return nil, ErrWatchUnsupported
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("vault: watch: %w", err)
	}
	if err := v.watchTree(w, v.root); err != nil {
		w.Close()
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				v.log.Warn("vault: watch", "err", err)
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				e, ok := v.event(w, ev)
				if !ok {
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (v *Vault) watchTree(w *fsnotify.Watcher, dir string) error {
	return afero.Walk(v.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}
		if p != v.root && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("vault: watch %s: %w", p, err)
		}
		return nil
	})
}

func (v *Vault) event(w *fsnotify.Watcher, ev fsnotify.Event) (Event, bool) {
	rel, err := v.Rel(ev.Name)
	if err != nil || hidden(rel) {
		return Event{}, false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := v.fs.Stat(ev.Name); err == nil && info.IsDir() {
			if err := v.watchTree(w, ev.Name); err != nil {
				v.log.Warn("vault: watch", "dir", rel, "err", err)
			}
			return Event{}, false
		}
	}
	if !strings.HasSuffix(rel, ".md") {
		return Event{}, false
	}
	switch {
	case ev.Has(fsnotify.Create):
		return Event{Op: Created, Name: rel}, true
	case ev.Has(fsnotify.Write):
		return Event{Op: Changed, Name: rel}, true
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Event{Op: Removed, Name: rel}, true
	}
	return Event{}, false
}

func hidden(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
