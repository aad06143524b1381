// Package images replaces "![alt](url)" spans on inactive lines with preview
// widgets and tracks the host resolution of local image paths.
//
// Each line moves through Unrendered, Pending (a local image waits for a
// resolveImage reply), Resolved and Revealed (the user clicked the preview
// and edits the raw markdown). Marks live in a Ledger of their own so that
// syntax scans never clear them.
package images
