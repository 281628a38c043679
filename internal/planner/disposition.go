package planner

import (
	"fmt"
	"strings"
)

// ResolveDispositions keeps the source default/forced flags and, when no
// subtitle is flagged default, marks the first one default so players show
// the enlarged track without user action.
func ResolveDispositions(subs []SubtitlePlan) {
	if len(subs) == 0 {
		return
	}
	for _, s := range subs {
		if s.Default {
			return
		}
	}
	subs[0].Default = true
}

// BuildDispositions produces one -disposition:s:<k> flag per output
// subtitle. Streams read from a rewritten file carry no flags of their own,
// so every stream is set explicitly ("0" clears).
func BuildDispositions(subs []SubtitlePlan) []string {
	var opts []string
	for k, s := range subs {
		var flags []string
		if s.Default {
			flags = append(flags, "default")
		}
		if s.Forced {
			flags = append(flags, "forced")
		}
		value := "0"
		if len(flags) > 0 {
			value = strings.Join(flags, "+")
		}
		opts = append(opts, fmt.Sprintf("-disposition:s:%d", k), value)
	}
	return opts
}
