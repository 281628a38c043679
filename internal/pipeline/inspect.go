package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	langdisplay "golang.org/x/text/language/display"

	"github.com/backmassage/subenlarge/internal/config"
	"github.com/backmassage/subenlarge/internal/display"
	"github.com/backmassage/subenlarge/internal/logging"
	"github.com/backmassage/subenlarge/internal/probe"
	"github.com/backmassage/subenlarge/internal/subtitle"
	"github.com/backmassage/subenlarge/internal/term"
)

// Inspect prints the subtitle tracks of each file as a table to w and
// writes nothing to disk. It shares the validate stage with Run, so the
// same files are skipped.
func Inspect(ctx context.Context, cfg *config.Config, log *logging.Logger, l probe.Lister, files []string, w io.Writer) RunStats {
	start := time.Now()
	stats := RunStats{RunID: uuid.NewString(), Total: len(files)}
	p := &processor{cfg: cfg, log: log, stats: &stats}

	for i, path := range files {
		stats.Current = i + 1
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			stats.Interrupted = true
			break
		}

		j := &job{path: path}
		if err := p.validate(ctx, j); err != nil {
			log.Warn("Skip %s: %v", filepath.Base(path), err)
			stats.Skipped++
			continue
		}
		inv, err := probe.Inspect(ctx, l, path)
		if err != nil {
			log.Error("%v", &StageError{Stage: StageInspect, Path: path, Err: err})
			stats.Failed++
			stats.Failures = append(stats.Failures, path)
			continue
		}

		printInventory(w, inv)
		stats.Processed++
	}

	stats.Elapsed = time.Since(start)
	log.Info("Inspected %d files (%d skipped, %d failed) in %s",
		stats.Processed, stats.Skipped, stats.Failed, display.FormatElapsed(stats.Elapsed))
	return stats
}

// printInventory writes one file's header line and track table.
func printInventory(w io.Writer, inv *probe.Inventory) {
	fmt.Fprintf(w, "%s%s%s\n", term.Cyan, filepath.Base(inv.Path), term.NC)
	fmt.Fprintf(w, "  %d video, %d audio, %d subtitle, %d attachment\n",
		inv.Counts[probe.KindVideo], inv.Counts[probe.KindAudio],
		inv.Counts[probe.KindSubtitle], inv.Counts[probe.KindAttachment])

	if !inv.HasSubtitles() {
		fmt.Fprintf(w, "  %s\n\n", term.Paint(term.Dim, "no subtitle tracks"))
		return
	}

	t := display.NewTable("Stream", "Codec", "Handling", "Language", "Flags", "Title")
	for _, tr := range inv.Tracks {
		t.Row(
			strconv.Itoa(tr.StreamIndex),
			tr.Codec,
			handlingLabel(tr.Capability),
			languageLabel(tr.RawLanguage, tr.Language),
			flagsLabel(tr.Default, tr.Forced),
			tr.Title,
		)
	}
	t.Render(w, "  ")
	fmt.Fprintln(w)
}

func handlingLabel(c subtitle.Capability) string {
	switch c {
	case subtitle.StyleTableCapable:
		return term.Paint(term.Green, "enlarge")
	case subtitle.PlainTextOnly:
		return term.Paint(term.Green, "enlarge (default style)")
	default:
		return term.Paint(term.Yellow, "copy (bitmap)")
	}
}

// languageLabel renders "English (eng)"; unknown tags show the raw value.
func languageLabel(raw string, tag language.Tag) string {
	if tag == language.Und {
		if raw == "" {
			return term.Paint(term.Dim, "untagged")
		}
		return raw
	}
	name := langdisplay.English.Languages().Name(tag)
	if name == "" {
		return raw
	}
	if raw == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, raw)
}

func flagsLabel(def, forced bool) string {
	var flags []string
	if def {
		flags = append(flags, "default")
	}
	if forced {
		flags = append(flags, "forced")
	}
	return strings.Join(flags, ",")
}
