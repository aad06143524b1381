package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the workspace bindings. They are checked before the editor
// sees a key.
type KeyMap struct {
	Quit      key.Binding
	Save      key.Binding
	NewNote   key.Binding
	QuickOpen key.Binding
	Rename    key.Binding
	CloseTab  key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Files     key.Binding

	// File list.
	Up, Down     key.Binding
	Open         key.Binding
	NewIn        key.Binding
	NewFolder    key.Binding
	RenameItem   key.Binding
	MoveItem     key.Binding
	Duplicate    key.Binding
	Trash        key.Binding
	Back         key.Binding
	Confirm      key.Binding
	PickPrevious key.Binding
	PickNext     key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("ctrl+q", "quit")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		NewNote:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new note")),
		QuickOpen: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "open note")),
		Rename:    key.NewBinding(key.WithKeys("ctrl+r", "f2"), key.WithHelp("ctrl+r", "rename")),
		CloseTab:  key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "close tab")),
		NextTab:   key.NewBinding(key.WithKeys("ctrl+pgdown", "alt+]"), key.WithHelp("ctrl+pgdn", "next tab")),
		PrevTab:   key.NewBinding(key.WithKeys("ctrl+pgup", "alt+["), key.WithHelp("ctrl+pgup", "previous tab")),
		Files:     key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "files")),

		Up:         key.NewBinding(key.WithKeys("up", "k")),
		Down:       key.NewBinding(key.WithKeys("down", "j")),
		Open:       key.NewBinding(key.WithKeys("enter")),
		NewIn:      key.NewBinding(key.WithKeys("n")),
		NewFolder:  key.NewBinding(key.WithKeys("f")),
		RenameItem: key.NewBinding(key.WithKeys("r")),
		MoveItem:   key.NewBinding(key.WithKeys("m")),
		Duplicate:  key.NewBinding(key.WithKeys("c")),
		Trash:      key.NewBinding(key.WithKeys("d", "delete")),
		Back:       key.NewBinding(key.WithKeys("esc")),

		Confirm:      key.NewBinding(key.WithKeys("enter")),
		PickPrevious: key.NewBinding(key.WithKeys("up", "ctrl+k")),
		PickNext:     key.NewBinding(key.WithKeys("down", "ctrl+j")),
	}
}
