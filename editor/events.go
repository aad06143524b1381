package editor

import (
	"github.com/iw2rmb/bunmark/images"
	"github.com/iw2rmb/bunmark/schedule"
)

// tickMsg is a fired scheduler timer of the editor with id.
type tickMsg struct {
	id   int
	slot schedule.Slot
	gen  uint64
}

// ImageRequestMsg asks the host to resolve local image paths. Replies come
// back as ImageResolvedMsg.
type ImageRequestMsg struct {
	Editor   int
	File     string
	Requests []images.Request
}

// ImageResolvedMsg carries a host reply for one image request. A nil URI
// means the image could not be resolved.
type ImageResolvedMsg struct {
	ID     uint64
	URI    *string
	Width  int
	Height int
}

// SaveMsg asks the host to persist the note.
type SaveMsg struct {
	Editor  int
	File    string
	Content string
	Auto    bool
}
