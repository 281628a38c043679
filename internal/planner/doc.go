// Package planner turns a stream inventory into a per-file processing plan:
// which subtitle tracks are rewritten, which input each output subtitle is
// read from, which video streams are carried, and the final subtitle
// dispositions.
package planner
