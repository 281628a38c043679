package subtitle

import "strings"

// Capability decides how a subtitle track is rewritten.
type Capability int

const (
	// StyleTableCapable tracks (ASS/SSA) carry their own Style rows; Fontsize
	// and Outline are adjusted in place.
	StyleTableCapable Capability = iota
	// PlainTextOnly tracks (SRT, WebVTT, mov_text) get a generic style table
	// on conversion; every Style row is replaced with the configured row.
	PlainTextOnly
	// Bitmap tracks (PGS, VobSub, DVB) have no text to restyle and are carried
	// through unchanged.
	Bitmap
)

func (c Capability) String() string {
	switch c {
	case StyleTableCapable:
		return "styled"
	case PlainTextOnly:
		return "plain"
	case Bitmap:
		return "bitmap"
	default:
		return "unknown"
	}
}

// Rewritable reports whether the track is extracted and restyled.
func (c Capability) Rewritable() bool { return c != Bitmap }

var bitmapCodecs = map[string]bool{
	"hdmv_pgs_subtitle": true,
	"pgssub":            true,
	"dvd_subtitle":      true,
	"dvdsub":            true,
	"dvb_subtitle":      true,
	"dvbsub":            true,
	"xsub":              true,
}

// ClassifyCodec maps an ffmpeg subtitle codec name to its Capability.
// Unknown text codecs are treated as plain text since ffmpeg's ASS encoder
// gives them the generic style table.
func ClassifyCodec(codec string) Capability {
	c := strings.ToLower(strings.TrimSpace(codec))
	switch {
	case c == "ass" || c == "ssa":
		return StyleTableCapable
	case bitmapCodecs[c]:
		return Bitmap
	default:
		return PlainTextOnly
	}
}
