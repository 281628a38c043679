// Package pipeline orchestrates file discovery, per-file processing, and
// batch summary reporting.
//
// Each file passes through a fixed list of stages:
//
//	validate → inspect → plan → extract → enlarge → tag-language → remux → cleanup
//
// A stage either succeeds, skips the file (missing input, existing output)
// or fails it. A failure is wrapped in a *StageError, logged with any
// ffmpeg diagnostics, and counted; the batch then moves on to the next
// file. The context is checked between files and between stages.
package pipeline
