package planner

import "github.com/backmassage/subenlarge/internal/probe"

// BuildSubtitlePlans lays out the output subtitle streams in source order.
// Rewritable tracks are numbered as extra inputs 1..n; bitmap tracks stay on
// input 0 and are mapped by absolute index. The original text streams are
// never mapped.
func BuildSubtitlePlans(inv *probe.Inventory) []SubtitlePlan {
	plans := make([]SubtitlePlan, 0, len(inv.Tracks))
	next := 1
	for _, t := range inv.Tracks {
		sp := SubtitlePlan{Track: t, Default: t.Default, Forced: t.Forced}
		if t.Rewritable() {
			sp.Input = next
			next++
		}
		plans = append(plans, sp)
	}
	return plans
}

// SetLanguage records a language tag for the output subtitle carrying the
// given source stream. Returns false if the stream is not planned.
func (p *FilePlan) SetLanguage(streamIndex int, iso3 string) bool {
	for i := range p.Subtitles {
		if p.Subtitles[i].Track.StreamIndex == streamIndex {
			p.Subtitles[i].Language = iso3
			return true
		}
	}
	return false
}
