// Package buffer implements the rune-accurate document model edited by bunmark.
//
// Coordinates are 0-based (Row, Col) in runes.
// Ranges are half-open selections in document coordinates: [Start, End).
//
// Every line carries a LineID that survives edits which shift line numbers,
// so caches keyed by line identity stay valid while rows move.
package buffer
