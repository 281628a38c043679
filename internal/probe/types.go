package probe

import (
	"golang.org/x/text/language"

	"github.com/backmassage/subenlarge/internal/subtitle"
)

// Kind is the stream type as printed by ffmpeg ("Video", "Audio", ...).
type Kind string

const (
	KindVideo      Kind = "Video"
	KindAudio      Kind = "Audio"
	KindSubtitle   Kind = "Subtitle"
	KindAttachment Kind = "Attachment"
	KindData       Kind = "Data"
)

// StreamCounts holds per-kind stream totals. Cover-art pictures are not
// counted under KindVideo.
type StreamCounts map[Kind]int

// Stream is one parsed "Stream #0:N" line of the listing.
type Stream struct {
	Index       int
	Kind        Kind
	Codec       string // Lower-cased codec name ("h264", "ass", "subrip").
	Language    string // Raw tag from the listing ("eng"); empty if absent.
	Title       string // From the stream's Metadata block, if printed.
	Default     bool
	Forced      bool
	AttachedPic bool // Embedded cover art reported as a video stream.
}

// SubtitleTrack is one subtitle stream of the source together with the
// intermediate files derived for it.
type SubtitleTrack struct {
	StreamIndex   int // Absolute stream index in the source.
	Codec         string
	RawLanguage   string
	Language      language.Tag // language.Und when untagged or unknown.
	Title         string
	Default       bool
	Forced        bool
	Capability    subtitle.Capability
	ExtractedPath string // {dir}/{stem}.{idx}.ass
	EnlargedPath  string // {dir}/{stem}.{idx}.large.ass
}

// Rewritable reports whether the track is extracted and restyled.
func (t *SubtitleTrack) Rewritable() bool { return t.Capability.Rewritable() }

// Inventory is the parsed stream listing of one source file.
type Inventory struct {
	Path         string
	Streams      []Stream
	Tracks       []SubtitleTrack
	Counts       StreamCounts
	VideoIndices []int    // Non-cover-art video streams, ascending.
	CoverArt     []int    // Attached-picture streams.
	Unparsed     []string // "Stream #" lines that did not match the grammar.
}

// RewritableTracks returns the tracks that are extracted and restyled.
func (inv *Inventory) RewritableTracks() []SubtitleTrack {
	var out []SubtitleTrack
	for _, t := range inv.Tracks {
		if t.Rewritable() {
			out = append(out, t)
		}
	}
	return out
}

// HasSubtitles reports whether any subtitle stream was found.
func (inv *Inventory) HasSubtitles() bool { return len(inv.Tracks) > 0 }
