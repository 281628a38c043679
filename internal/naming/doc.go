// Package naming derives every path the tool writes from the input path:
// the extracted and rewritten subtitle intermediates next to the source,
// the "{stem} (enlarged subs).mkv" output, and in-batch collision handling.
package naming
