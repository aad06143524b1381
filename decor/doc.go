// Package decor owns the decoration marks laid over a buffer.
//
// A Ledger holds every mark and line class of the current render. Marks are
// created inside a transaction opened by Begin or BeginLines and closed by
// Commit; opening a transaction clears what it is about to rebuild, so a scan
// never patches on top of stale marks.
package decor
