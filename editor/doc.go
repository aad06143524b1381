// Package editor provides the Bubble Tea live-preview editor: a buffer
// rendered through the decoration ledgers of the syntax engine and the
// image layer.
//
// Hidden marks are dropped from the rendering, replaced marks draw their
// widget in place of the covered text and styled marks color it. Rescans,
// image updates and autosaves run on scheduler timers delivered as tea
// messages; a timer whose generation was superseded is ignored.
package editor
