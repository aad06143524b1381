package editor

// WrapMode picks how long note lines are laid out. Hidden markers take no
// cells and a widget is never split across rows.
type WrapMode int

const (
	// WrapNone keeps one row per line and scrolls sideways with the cursor.
	WrapNone WrapMode = iota
	// WrapWord breaks after whitespace and falls back to graphemes for
	// tokens wider than the view, such as long links.
	WrapWord
	WrapGrapheme
)
