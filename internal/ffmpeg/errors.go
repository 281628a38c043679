package ffmpeg

import (
	"fmt"
	"regexp"
	"strings"
)

// ProcessError is a failed ffmpeg invocation: non-zero exit, failure to
// start, or cancellation.
type ProcessError struct {
	Step     string // "extract" or "remux".
	ExitCode int
	Stderr   string
	Err      error // Start or context error, if any.
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ffmpeg %s: %v", e.Step, e.Err)
	}
	msg := fmt.Sprintf("ffmpeg %s exited with status %d", e.Step, e.ExitCode)
	if last := LastLine(e.Stderr); last != "" {
		msg += ": " + last
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Hints returns Diagnose(e.Stderr).
func (e *ProcessError) Hints() []string { return Diagnose(e.Stderr) }

// Check converts a failed result into a *ProcessError. A cancelled ctx is
// reported through Err so callers can match context.Canceled.
func Check(step string, res ExecResult, ctxErr error) error {
	if !res.Failed() {
		return nil
	}
	err := res.StartErr
	if err == nil {
		err = ctxErr
	}
	return &ProcessError{Step: step, ExitCode: res.ExitCode, Stderr: res.Stderr, Err: err}
}

// LastLine returns the last non-empty line of ffmpeg output.
func LastLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

// Pre-compiled classifiers for ffmpeg stderr. Checked in order by
// [Diagnose]; every matching pattern contributes one hint.
var diagnostics = []struct {
	re   *regexp.Regexp
	hint string
}{
	{
		regexp.MustCompile(`Attachment stream \d+ has no (filename|mimetype) tag`),
		"an attachment has no filename or mimetype tag; fix the source's attachments",
	},
	{
		regexp.MustCompile(`(?i)Subtitle codec .* is not supported|` +
			`Could not find tag for codec .* in stream .*subtitle|` +
			`Error initializing output stream .*subtitle|` +
			`Error while opening encoder for output stream .*subtitle|` +
			`Subtitle encoding currently only possible from text to text or bitmap to bitmap|` +
			`Unknown encoder`),
		"a subtitle stream could not be converted to ASS",
	},
	{
		regexp.MustCompile(`Too many packets buffered for output stream`),
		"the source is badly interleaved (mux queue overflow)",
	},
	{
		regexp.MustCompile(`(?i)Non-monotonous DTS|non monotonically increasing dts|` +
			`DTS .*out of order|PTS .*out of order|pts has no value|missing PTS|Timestamps are unset`),
		"the source has broken timestamps",
	},
	{
		regexp.MustCompile(`(?i)Invalid data found when processing input|EBML header parsing failed`),
		"an input is not a valid media or subtitle file",
	},
	{
		regexp.MustCompile(`(?i)No such file or directory`),
		"an input file is missing",
	},
	{
		regexp.MustCompile(`(?i)No space left on device`),
		"the output disk is full",
	},
	{
		regexp.MustCompile(`(?i)Permission denied|Read-only file system`),
		"the output directory is not writable",
	},
}

// Diagnose classifies ffmpeg stderr into short human-readable hints. It
// returns nil when nothing is recognized.
func Diagnose(stderr string) []string {
	var hints []string
	for _, d := range diagnostics {
		if d.re.MatchString(stderr) {
			hints = append(hints, d.hint)
		}
	}
	return hints
}
