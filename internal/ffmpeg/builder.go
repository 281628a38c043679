package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/subenlarge/internal/config"
	"github.com/backmassage/subenlarge/internal/planner"
	"github.com/backmassage/subenlarge/internal/subtitle"
)

// BuildInspect returns the arguments that make ffmpeg print the stream
// listing of path. No loglevel is set: the listing is printed at info level.
func BuildInspect(path string) []string {
	return []string{"-hide_banner", "-nostdin", "-i", path}
}

// preamble returns the flags shared by the extract and remux commands.
func preamble(cfg *config.Config) []string {
	args := make([]string, 0, 48)
	args = append(args, "-hide_banner", "-nostdin", "-y")

	// Loglevel: info when verbose, otherwise error.
	if cfg.Verbose {
		args = append(args, "-loglevel", "info", "-stats")
	} else {
		args = append(args, "-loglevel", "error")
	}
	return args
}

// BuildExtract returns one invocation that writes every rewritable subtitle
// track to its own ASS file. ASS tracks are stream-copied; plain-text and
// legacy SSA tracks are converted by the ass encoder. It returns nil when there is nothing to
// extract, in which case no process should be started.
func BuildExtract(cfg *config.Config, plan *planner.FilePlan) []string {
	tracks := plan.RewrittenTracks()
	if len(tracks) == 0 {
		return nil
	}

	args := preamble(cfg)
	args = append(args, "-i", plan.InputPath)
	for _, t := range tracks {
		codec := "ass"
		if t.Capability == subtitle.StyleTableCapable && t.Codec == "ass" {
			codec = "copy"
		}
		args = append(args,
			"-map", "0:"+strconv.Itoa(t.StreamIndex),
			"-c:s", codec,
			t.ExtractedPath,
		)
	}
	return args
}

// BuildRemux returns the invocation that rebuilds the container: video,
// audio, attachments and chapters from the source, rewritten subtitles from
// their files, bitmap subtitles from the source, all stream-copied.
func BuildRemux(cfg *config.Config, plan *planner.FilePlan) []string {
	args := preamble(cfg)

	// --- Inputs: source first, then rewritten files in track order ---
	args = append(args, "-i", plan.InputPath)
	for _, t := range plan.RewrittenTracks() {
		args = append(args, "-i", t.EnlargedPath)
	}

	// --- Stream maps ---
	// Explicit video indices keep cover art out of the video slots.
	for _, idx := range plan.VideoIndices {
		args = append(args, "-map", "0:"+strconv.Itoa(idx))
	}
	args = append(args, "-map", "0:a?")
	args = appendSubtitleMaps(args, plan)
	args = append(args, "-map", "0:t?")

	args = append(args, "-c", "copy")

	// --- Metadata and chapters ---
	args = append(args, "-map_metadata", "0")
	args = appendStreamMetadata(args, plan)
	args = append(args, "-map_chapters", "0")

	// --- Stream dispositions ---
	args = append(args, plan.DispositionOpts...)

	// --- Output ---
	args = append(args, plan.OutputPath)
	return args
}

// appendSubtitleMaps maps each output subtitle from its input: stream 0 of
// a rewritten file, or the absolute source index for bitmap tracks.
func appendSubtitleMaps(args []string, plan *planner.FilePlan) []string {
	for _, s := range plan.Subtitles {
		if s.Rewritten() {
			args = append(args, "-map", fmt.Sprintf("%d:s:0", s.Input))
		} else {
			args = append(args, "-map", "0:"+strconv.Itoa(s.Track.StreamIndex))
		}
	}
	return args
}

// appendStreamMetadata copies per-stream tags (language, title, ...) from
// the source streams the outputs correspond to. Rewritten subtitle files
// carry no tags of their own.
func appendStreamMetadata(args []string, plan *planner.FilePlan) []string {
	for k, idx := range plan.VideoIndices {
		args = append(args, fmt.Sprintf("-map_metadata:s:v:%d", k), "0:s:"+strconv.Itoa(idx))
	}
	for i := 0; i < plan.AudioCount; i++ {
		args = append(args, fmt.Sprintf("-map_metadata:s:a:%d", i), fmt.Sprintf("0:s:a:%d", i))
	}
	for k, s := range plan.Subtitles {
		args = append(args, fmt.Sprintf("-map_metadata:s:s:%d", k), "0:s:"+strconv.Itoa(s.Track.StreamIndex))
		if s.Language != "" {
			args = append(args, fmt.Sprintf("-metadata:s:s:%d", k), "language="+s.Language)
		}
	}
	for i := 0; i < plan.AttachmentCount; i++ {
		args = append(args, fmt.Sprintf("-map_metadata:s:t:%d", i), fmt.Sprintf("0:s:t:%d", i))
	}
	return args
}

// CommandLine renders bin and args as a copy-pasteable shell command line.
func CommandLine(bin string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quote(bin))
	for _, a := range args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`!*?[](){}<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
