package editor

import (
	"log/slog"

	"github.com/iw2rmb/bunmark/internal/clock"
	"github.com/iw2rmb/bunmark/schedule"
	"github.com/iw2rmb/bunmark/session"
)

// Config configures the editor Model.
type Config struct {
	// Initial text for the internal buffer.
	Text string

	// Session carries grace timestamps and the current note. A nil Session
	// gets a private one in sidebar mode with default timing.
	Session *session.State
	Clock   clock.Clock
	Logger  *slog.Logger

	Schedule schedule.Options
	// Margin is the number of rows scanned around the viewport in windowed
	// scans.
	Margin int

	Style    Style
	KeyMap   KeyMap
	WrapMode WrapMode
	TabWidth int

	ShowLineNums bool
	// HighlightStyle names the chroma style for code blocks; empty disables
	// code highlighting.
	HighlightStyle string

	Clipboard Clipboard

	// Forwarded to buffer.Options.
	HistoryLimit int
}

func (c Config) withDefaults() Config {
	if c.Session == nil {
		c.Session = session.New(session.ModeSidebar, session.DefaultTiming())
	}
	c.Clock = clock.OrSystem(c.Clock)
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.TabWidth <= 0 {
		c.TabWidth = 4
	}
	if c.Margin <= 0 {
		c.Margin = 20
	}
	if c.KeyMap.isZero() {
		c.KeyMap = DefaultKeyMap()
	}
	return c
}
