package editor

// Clipboard is the host clipboard. Copy and cut write the raw markdown of the
// selection with its markers; paste inserts text with newlines folded to "\n".
// A failed read or write leaves the note as it was.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(s string) error
}
