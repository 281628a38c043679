package planner

import (
	"github.com/backmassage/subenlarge/internal/config"
	"github.com/backmassage/subenlarge/internal/probe"
)

// BuildPlan produces the FilePlan for an inventoried file. outputPath is
// the already collision-resolved destination.
//
// Flow:
//  1. Decide action (enlarge when any text track exists, else copy)
//  2. Assign subtitle inputs: rewritten files are inputs 1..n in track order
//  3. Carry video (explicit non-cover indices), audio and attachments
//  4. Resolve subtitle dispositions
func BuildPlan(cfg *config.Config, inv *probe.Inventory, outputPath string) *FilePlan {
	plan := &FilePlan{
		InputPath:       inv.Path,
		OutputPath:      outputPath,
		VideoIndices:    append([]int(nil), inv.VideoIndices...),
		AudioCount:      inv.Counts[probe.KindAudio],
		AttachmentCount: inv.Counts[probe.KindAttachment],
	}

	plan.Subtitles = BuildSubtitlePlans(inv)

	plan.Action = ActionCopy
	for i := range plan.Subtitles {
		if plan.Subtitles[i].Rewritten() {
			plan.Action = ActionEnlarge
			break
		}
	}

	ResolveDispositions(plan.Subtitles)
	plan.DispositionOpts = BuildDispositions(plan.Subtitles)

	return plan
}

// Skip marks the plan as skipped with a reason.
func (p *FilePlan) Skip(reason string) {
	p.Action = ActionSkip
	p.SkipReason = reason
}
