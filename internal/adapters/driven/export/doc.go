// Package export publishes snapshots outside the Config record.
//
// PasteExporter uploads a snapshot to a hastebin-style paste service and
// returns the document URL. FileExporter writes a snapshot to disk,
// zstd-compressed when the path ends in .zst.
package export
