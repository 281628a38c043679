// Package probe builds the stream inventory of a source file from ffmpeg's
// diagnostic listing ("ffmpeg -i <file>" with no output).
//
// Each "Stream #0:N" line yields a [Stream]; subtitle streams additionally
// become [SubtitleTrack]s with their intermediate paths and rewrite
// [subtitle.Capability]. Cover art (a video stream flagged "attached pic")
// is kept out of the video indices so the remux never maps it as video.
package probe
