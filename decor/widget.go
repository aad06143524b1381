package decor

import (
	"fmt"
	"strings"
)

// Widget is the rendered replacement of a Replaced mark.
type Widget interface {
	// Text is the terminal rendering of the widget.
	Text() string
}

type Bullet struct{}

func (Bullet) Text() string { return "•" }

// OrderedMarker renders an ordered list marker such as "3." as styled text.
type OrderedMarker struct {
	Marker string
}

func (w OrderedMarker) Text() string { return w.Marker }

// Checkbox replaces the "[ ]" box of a task item. Row is the buffer row it
// toggles when clicked.
type Checkbox struct {
	Checked bool
	Row     int
}

func (w Checkbox) Text() string {
	if w.Checked {
		return "☑"
	}
	return "☐"
}

// Image is an inline preview of "![alt](url)".
//
// Placeholder stays true until the source is known: remote URLs are used as
// is, local paths wait for a resolveImage reply matched by RequestID.
type Image struct {
	Alt         string
	URL         string
	Src         string
	Title       string
	Placeholder bool
	RequestID   uint64
	Width       int
	Height      int
}

func (w Image) Text() string {
	label := strings.TrimSpace(w.Alt)
	if label == "" {
		label = w.URL
	}
	switch {
	case w.Placeholder:
		return "[image: " + label + "]"
	case w.Width > 0 && w.Height > 0:
		return fmt.Sprintf("[image: %s %dx%d]", label, w.Width, w.Height)
	default:
		return "[image: " + label + "]"
	}
}
