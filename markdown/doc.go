// Package markdown classifies single markdown lines and scans their inline
// spans. Everything here is pure: offsets are rune indices into the line and
// nothing is cached between calls.
package markdown
