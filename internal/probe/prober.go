package probe

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/backmassage/subenlarge/internal/naming"
	"github.com/backmassage/subenlarge/internal/subtitle"
)

// ErrNoInput means ffmpeg did not describe the file as an input (missing,
// unreadable, or not a media file).
var ErrNoInput = errors.New("ffmpeg could not open the input")

// Lister runs "ffmpeg -i <path>" and returns its diagnostic output. The
// non-zero exit ffmpeg gives without an output file is not an error; only a
// failure to run the binary is. ffmpeg.Executor satisfies it.
type Lister interface {
	Listing(ctx context.Context, path string) (string, error)
}

var (
	reStream = regexp.MustCompile(
		`Stream #(\d+):(\d+)(?:\[0x[0-9a-fA-F]+\])?(?:\(([^)]*)\))?: (Video|Audio|Subtitle|Attachment|Data): ([^\s,]+)(.*)$`)
	reInput = regexp.MustCompile(`^\s*Input #(\d+),`)
	reTitle = regexp.MustCompile(`(?i)^\s+title\s*:\s?(.*)$`)
)

// Inspect lists the streams of path and parses them into an Inventory.
func Inspect(ctx context.Context, l Lister, path string) (*Inventory, error) {
	listing, err := l.Listing(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("list streams of %q: %w", path, err)
	}
	inv := ParseListing(path, listing)
	if !hasInput(listing) {
		return inv, fmt.Errorf("%w: %s", ErrNoInput, lastLine(listing))
	}
	return inv, nil
}

// ParseListing parses ffmpeg's stream listing for input #0 of path. Lines
// that mention "Stream #" but do not match the grammar are kept in
// Unparsed and not counted. Pure: the same input gives the same result.
func ParseListing(path, listing string) *Inventory {
	inv := &Inventory{Path: path, Counts: StreamCounts{}}

	// -1 before any section header, -2 inside an Output section.
	input := -1
	var last *Stream
	for _, line := range strings.Split(strings.ReplaceAll(listing, "\r\n", "\n"), "\n") {
		if m := reInput.FindStringSubmatch(line); m != nil {
			input, _ = strconv.Atoi(m[1])
			last = nil
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "Output #") {
			input = -2
			last = nil
			continue
		}

		if !strings.Contains(line, "Stream #") {
			if last != nil {
				if m := reTitle.FindStringSubmatch(line); m != nil && last.Title == "" {
					last.Title = strings.TrimSpace(m[1])
				}
			}
			continue
		}

		st, inputNo, ok := parseStreamLine(line)
		if !ok {
			inv.Unparsed = append(inv.Unparsed, strings.TrimSpace(line))
			last = nil
			continue
		}
		if inputNo != 0 || (input != 0 && input != -1) {
			last = nil
			continue
		}
		inv.Streams = append(inv.Streams, st)
		last = &inv.Streams[len(inv.Streams)-1]
	}

	for _, st := range inv.Streams {
		switch {
		case st.Kind == KindVideo && st.AttachedPic:
			inv.CoverArt = append(inv.CoverArt, st.Index)
		case st.Kind == KindVideo:
			inv.Counts[KindVideo]++
			inv.VideoIndices = append(inv.VideoIndices, st.Index)
		case st.Kind == KindSubtitle:
			inv.Counts[KindSubtitle]++
			inv.Tracks = append(inv.Tracks, newTrack(path, st))
		default:
			inv.Counts[st.Kind]++
		}
	}
	return inv
}

func parseStreamLine(line string) (Stream, int, bool) {
	m := reStream.FindStringSubmatch(line)
	if m == nil {
		return Stream{}, 0, false
	}
	inputNo, err := strconv.Atoi(m[1])
	if err != nil {
		return Stream{}, 0, false
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return Stream{}, 0, false
	}
	rest := m[6]
	return Stream{
		Index:       idx,
		Kind:        Kind(m[4]),
		Codec:       strings.ToLower(m[5]),
		Language:    m[3],
		Default:     strings.Contains(rest, "(default)"),
		Forced:      strings.Contains(rest, "(forced)"),
		AttachedPic: strings.Contains(rest, "(attached pic)"),
	}, inputNo, true
}

func newTrack(path string, st Stream) SubtitleTrack {
	return SubtitleTrack{
		StreamIndex:   st.Index,
		Codec:         st.Codec,
		RawLanguage:   st.Language,
		Language:      subtitle.ParseLanguage(st.Language),
		Title:         st.Title,
		Default:       st.Default,
		Forced:        st.Forced,
		Capability:    subtitle.ClassifyCodec(st.Codec),
		ExtractedPath: naming.ExtractedPath(path, st.Index),
		EnlargedPath:  naming.EnlargedPath(path, st.Index),
	}
}

func hasInput(listing string) bool {
	for _, line := range strings.Split(listing, "\n") {
		if reInput.MatchString(line) {
			return true
		}
	}
	return false
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return "no output"
	}
	return strings.TrimSpace(s)
}
