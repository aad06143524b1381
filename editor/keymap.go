package editor

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the editor key bindings.
//
// Bindings must be portable across terminals (ctrl/alt fallbacks). The
// workspace keeps ctrl+s, ctrl+n, ctrl+o, ctrl+p, ctrl+r, ctrl+w and ctrl+q for
// itself.
type KeyMap struct {
	Left, Right, Up, Down                     key.Binding
	ShiftLeft, ShiftRight, ShiftUp, ShiftDown key.Binding
	WordLeft, WordRight                       key.Binding
	Home, End                                 key.Binding
	DocStart, DocEnd                          key.Binding

	Backspace, Delete key.Binding
	Enter             key.Binding
	Indent, Outdent   key.Binding

	Undo, Redo       key.Binding
	Copy, Cut, Paste key.Binding

	Bold, Italic, Strike, Code key.Binding
	Bullet, Numbered, Task     key.Binding
	Quote, CodeBlock           key.Binding
	ToggleTask                 key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
		Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
		Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),

		ShiftLeft:  key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("shift+←", "select left")),
		ShiftRight: key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("shift+→", "select right")),
		ShiftUp:    key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("shift+↑", "select up")),
		ShiftDown:  key.NewBinding(key.WithKeys("shift+down"), key.WithHelp("shift+↓", "select down")),

		// Terminals vary between alt+arrows and ctrl+arrows.
		WordLeft:  key.NewBinding(key.WithKeys("alt+left", "ctrl+left"), key.WithHelp("alt/ctrl+←", "word left")),
		WordRight: key.NewBinding(key.WithKeys("alt+right", "ctrl+right"), key.WithHelp("alt/ctrl+→", "word right")),

		Home:     key.NewBinding(key.WithKeys("home", "ctrl+a"), key.WithHelp("home", "line start")),
		End:      key.NewBinding(key.WithKeys("end", "ctrl+e"), key.WithHelp("end", "line end")),
		DocStart: key.NewBinding(key.WithKeys("ctrl+home"), key.WithHelp("ctrl+home", "document start")),
		DocEnd:   key.NewBinding(key.WithKeys("ctrl+end"), key.WithHelp("ctrl+end", "document end")),

		Backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("backspace", "delete left")),
		Delete:    key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "delete right")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "newline")),
		Indent:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "indent item")),
		Outdent:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "outdent item")),

		Undo: key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		Redo: key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "redo")),

		Copy:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "copy")),
		Cut:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "cut")),
		Paste: key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste")),

		Bold:       key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "bold")),
		Italic:     key.NewBinding(key.WithKeys("alt+i"), key.WithHelp("alt+i", "italic")),
		Strike:     key.NewBinding(key.WithKeys("alt+s"), key.WithHelp("alt+s", "strikethrough")),
		Code:       key.NewBinding(key.WithKeys("alt+c"), key.WithHelp("alt+c", "inline code")),
		Bullet:     key.NewBinding(key.WithKeys("alt+l"), key.WithHelp("alt+l", "bullet list")),
		Numbered:   key.NewBinding(key.WithKeys("alt+n"), key.WithHelp("alt+n", "numbered list")),
		Task:       key.NewBinding(key.WithKeys("alt+t"), key.WithHelp("alt+t", "task list")),
		Quote:      key.NewBinding(key.WithKeys("alt+q"), key.WithHelp("alt+q", "quote")),
		CodeBlock:  key.NewBinding(key.WithKeys("alt+k"), key.WithHelp("alt+k", "code block")),
		ToggleTask: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "toggle task")),
	}
}

func (k KeyMap) isZero() bool { return len(k.Left.Keys()) == 0 }

// ShortHelp lists the formatting bindings.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Bold, k.Italic, k.Strike, k.Code, k.ToggleTask}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Bold, k.Italic, k.Strike, k.Code},
		{k.Bullet, k.Numbered, k.Task, k.Quote, k.CodeBlock},
		{k.ToggleTask, k.Indent, k.Outdent, k.Undo, k.Redo},
	}
}
