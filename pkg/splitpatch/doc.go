// Package splitpatch splits a unified-diff file into smaller patch files.
//
// A patch is consumed line by line: each line is transcoded to UTF-8,
// classified as a section header, a hunk marker or body content, and routed to
// the output file that is currently open. Outputs are created either once per
// modified file or once per hunk. The package can write to the local filesystem
// or into an in-memory map, which makes it easy to preview a split or embed it
// in other tooling.
package splitpatch
