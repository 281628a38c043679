package planner

import "github.com/backmassage/subenlarge/internal/probe"

// Action describes the per-file processing decision.
type Action int

const (
	// ActionEnlarge extracts, restyles and remuxes at least one text track.
	ActionEnlarge Action = iota
	// ActionCopy remuxes without extraction: the file has no text subtitles.
	ActionCopy
	// ActionSkip leaves the file alone (see SkipReason).
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionEnlarge:
		return "enlarge"
	case ActionCopy:
		return "copy"
	default:
		return "skip"
	}
}

// FilePlan holds every decision for one source file. It is produced by
// BuildPlan and consumed by the ffmpeg argument builders.
type FilePlan struct {
	Action     Action
	SkipReason string

	InputPath  string
	OutputPath string

	// Streams carried from the source.
	VideoIndices    []int // Non-cover-art video streams, mapped explicitly.
	AudioCount      int
	AttachmentCount int

	// Subtitles in output order (source order).
	Subtitles []SubtitlePlan

	// Extra arguments, already formatted.
	DispositionOpts []string
}

// SubtitlePlan describes one output subtitle stream.
type SubtitlePlan struct {
	Track probe.SubtitleTrack

	// Input is the ffmpeg input number the stream is read from: 0 for a
	// bitmap track carried from the source, 1.. for rewritten files.
	Input int

	// Language overrides the output language tag (ISO 639-2) when set.
	Language string

	Default bool
	Forced  bool
}

// Rewritten reports whether the stream comes from a rewritten file.
func (s *SubtitlePlan) Rewritten() bool { return s.Input > 0 }

// RewrittenTracks returns the tracks to extract and restyle, in input order.
func (p *FilePlan) RewrittenTracks() []probe.SubtitleTrack {
	var out []probe.SubtitleTrack
	for _, s := range p.Subtitles {
		if s.Rewritten() {
			out = append(out, s.Track)
		}
	}
	return out
}

// Intermediates lists the extracted and rewritten files of the plan.
func (p *FilePlan) Intermediates() []string {
	var out []string
	for _, t := range p.RewrittenTracks() {
		out = append(out, t.ExtractedPath, t.EnlargedPath)
	}
	return out
}
