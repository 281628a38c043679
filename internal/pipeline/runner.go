package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/backmassage/subenlarge/internal/config"
	"github.com/backmassage/subenlarge/internal/display"
	"github.com/backmassage/subenlarge/internal/ffmpeg"
	"github.com/backmassage/subenlarge/internal/logging"
	"github.com/backmassage/subenlarge/internal/naming"
	"github.com/backmassage/subenlarge/internal/planner"
	"github.com/backmassage/subenlarge/internal/probe"
	"github.com/backmassage/subenlarge/internal/subtitle"
)

// stderrTail is how many lines of ffmpeg output are shown for a failure.
const stderrTail = 20

// Toolchain runs ffmpeg and lists streams. *ffmpeg.Executor satisfies it.
type Toolchain interface {
	ffmpeg.Runner
	probe.Lister
}

type processor struct {
	cfg      *config.Config
	log      *logging.Logger
	tc       Toolchain
	resolver *naming.CollisionResolver
	stats    *RunStats
}

// Run is the top-level batch entry point. It processes files sequentially
// and returns aggregate stats. files should come from Discover.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, tc Toolchain, files []string) RunStats {
	start := time.Now()
	stats := RunStats{RunID: uuid.NewString(), Total: len(files)}
	p := &processor{
		cfg:      cfg,
		log:      log,
		tc:       tc,
		resolver: naming.NewCollisionResolver(),
		stats:    &stats,
	}

	logBatchHeader(cfg, log, &stats)

	for i, path := range files {
		stats.Current = i + 1

		if ctx.Err() != nil {
			log.Warn("Interrupted")
			stats.Interrupted = true
			break
		}

		p.processFile(ctx, path)
		if ctx.Err() != nil {
			stats.Interrupted = true
			break
		}
	}

	stats.Elapsed = time.Since(start)
	logSummary(cfg, log, &stats)
	return stats
}

// processFile runs the stage list for one file and records the outcome.
func (p *processor) processFile(ctx context.Context, path string) {
	log := p.log
	log.Info("[%d/%d] %s", p.stats.Current, p.stats.Total, filepath.Base(path))
	defer fmt.Println()

	j := &job{path: path}
	started := time.Now()
	for _, s := range p.stages() {
		if p.cfg.DryRun && s.writes {
			p.preview(j)
			p.stats.Processed++
			return
		}
		if err := ctx.Err(); err != nil {
			log.Warn("Interrupted before %s", s.name)
			p.keepNote(j)
			return
		}

		err := s.run(ctx, j)
		if err == nil {
			continue
		}

		var skip *skipError
		if errors.As(err, &skip) {
			log.Warn("Skip: %s", skip.reason)
			p.stats.Skipped++
			return
		}
		if ctx.Err() != nil {
			log.Warn("Interrupted during %s", s.name)
			p.keepNote(j)
			return
		}

		p.fail(j, &StageError{Stage: s.name, Path: path, Err: err})
		return
	}

	p.stats.Processed++
	p.stats.Tracks += j.tracks
	p.stats.InputBytes += j.size

	var outSize int64
	if fi, err := os.Stat(j.plan.OutputPath); err == nil {
		outSize = fi.Size()
	}
	p.stats.OutputBytes += outSize

	log.Success("Done in %s: %s (%s)",
		display.FormatElapsed(time.Since(started)),
		filepath.Base(j.plan.OutputPath),
		display.FormatBytes(outSize))
}

// fail logs a stage failure with any ffmpeg diagnostics and counts it.
func (p *processor) fail(j *job, err *StageError) {
	log := p.log
	log.Error("%v", err)

	var pe *ffmpeg.ProcessError
	if errors.As(err, &pe) {
		for _, h := range pe.Hints() {
			log.Warn("  Hint: %s", h)
		}
		if !log.Verbose() {
			logStderr(log, pe.Stderr)
		}
	}

	p.keepNote(j)
	p.stats.Failed++
	p.stats.Failures = append(p.stats.Failures, j.path)
}

// keepNote tells the user which intermediates were left on disk.
func (p *processor) keepNote(j *job) {
	if !j.wrote || j.plan == nil {
		return
	}
	var kept []string
	for _, f := range j.plan.Intermediates() {
		if _, err := os.Stat(f); err == nil {
			kept = append(kept, filepath.Base(f))
		}
	}
	if len(kept) > 0 {
		p.log.Info("  Intermediates kept: %s", strings.Join(kept, ", "))
	}
}

// --- Stages ---

func (p *processor) validate(_ context.Context, j *job) error {
	fi, err := os.Stat(j.path)
	if err != nil {
		return skipf("file not found: %s", j.path)
	}
	if fi.IsDir() {
		return skipf("%s is a directory", j.path)
	}
	if !naming.IsContainer(j.path) {
		return skipf("not an %s file", naming.ContainerExt)
	}
	if naming.IsOutputName(j.path, p.cfg.OutputSuffix) {
		return skipf("already an enlarged output")
	}
	j.size = fi.Size()
	return nil
}

func (p *processor) inspect(ctx context.Context, j *job) error {
	inv, err := probe.Inspect(ctx, p.tc, j.path)
	if err != nil {
		return err
	}
	for _, line := range inv.Unparsed {
		p.log.Debug("  Unrecognized stream line: %s", strings.TrimSpace(line))
	}
	p.log.Debug("  Streams: %d video, %d audio, %d subtitle, %d attachment",
		inv.Counts[probe.KindVideo], inv.Counts[probe.KindAudio],
		inv.Counts[probe.KindSubtitle], inv.Counts[probe.KindAttachment])
	if inv.HasSubtitles() && len(inv.RewritableTracks()) == 0 {
		p.log.Debug("  Only bitmap subtitles: nothing to restyle")
	}
	if len(inv.CoverArt) > 0 {
		p.log.Debug("  Cover art streams not mapped as video: %v", inv.CoverArt)
	}
	j.inv = inv
	return nil
}

func (p *processor) planFile(_ context.Context, j *job) error {
	requested := naming.OutputPath(j.path, p.cfg.OutputSuffix)
	out := p.resolver.Resolve(j.path, requested)
	if out != requested {
		if owner, ok := p.resolver.Owner(requested); ok {
			p.log.Warn("  %s is already the output of %s", filepath.Base(requested), owner)
		}
	}
	if !p.cfg.Force {
		if _, err := os.Stat(out); err == nil {
			return skipf("output exists: %s (use --force to overwrite)", filepath.Base(out))
		}
	}

	j.plan = planner.BuildPlan(p.cfg, j.inv, out)
	logTracks(p.log, j.plan)
	if j.plan.Action == planner.ActionCopy {
		p.log.Warn("  No text subtitles to enlarge; streams are copied as-is")
	}
	p.log.Info("  -> %s", filepath.Base(out))
	return nil
}

func (p *processor) extract(ctx context.Context, j *job) error {
	args := ffmpeg.BuildExtract(p.cfg, j.plan)
	if args == nil {
		return nil
	}
	j.wrote = true
	res := p.tc.Run(ctx, args)
	return ffmpeg.Check(string(StageExtract), res, ctx.Err())
}

func (p *processor) enlarge(ctx context.Context, j *job) error {
	for _, t := range j.plan.RewrittenTracks() {
		if err := ctx.Err(); err != nil {
			return err
		}
		opts, err := subtitle.NewOptions(t.Capability, p.cfg.FontSizeDelta, p.cfg.OutlineDelta, p.cfg.PlainTextStyle)
		if err != nil {
			return err
		}
		res, err := subtitle.EnlargeFile(t.ExtractedPath, t.EnlargedPath, opts)
		if err != nil {
			return fmt.Errorf("track %d: %w", t.StreamIndex, err)
		}

		verb := "enlarged"
		if t.Capability == subtitle.PlainTextOnly {
			verb = "replaced"
		}
		p.log.Info("  Track %d (%s): %d style rows %s", t.StreamIndex, t.Codec, res.StyleRows, verb)
		j.tracks++
	}
	return nil
}

// tagLanguage labels untagged rewritten tracks with the language detected
// from their dialogue. Detection problems are warnings, never failures.
func (p *processor) tagLanguage(_ context.Context, j *job) error {
	if !p.cfg.DetectLanguage {
		return nil
	}
	for _, t := range j.plan.RewrittenTracks() {
		if t.Language != language.Und {
			continue
		}
		tag, err := subtitle.DetectLanguageFile(t.EnlargedPath)
		if err != nil {
			p.log.Warn("  Track %d: language detection failed: %v", t.StreamIndex, err)
			continue
		}
		iso := subtitle.ISO3(tag)
		if iso == "" {
			p.log.Debug("  Track %d: language undetermined", t.StreamIndex)
			continue
		}
		j.plan.SetLanguage(t.StreamIndex, iso)
		p.log.Info("  Track %d: detected language %s", t.StreamIndex, iso)
	}
	return nil
}

func (p *processor) remux(ctx context.Context, j *job) error {
	res := p.tc.Run(ctx, ffmpeg.BuildRemux(p.cfg, j.plan))
	if err := ffmpeg.Check(string(StageRemux), res, ctx.Err()); err != nil {
		if rmErr := os.Remove(j.plan.OutputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			p.log.Warn("  Cannot remove partial output: %v", rmErr)
		}
		return err
	}
	return nil
}

// cleanup removes the intermediates of a successful file. Removal problems
// are reported but do not fail the file: the output is already complete.
func (p *processor) cleanup(_ context.Context, j *job) error {
	files := j.plan.Intermediates()
	if len(files) == 0 {
		return nil
	}
	if p.cfg.KeepIntermediates {
		p.keepNote(j)
		return nil
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			p.log.Warn("  Cannot remove %s: %v", filepath.Base(f), err)
		}
	}
	return nil
}

// preview logs the commands a real run would execute.
func (p *processor) preview(j *job) {
	bin := "ffmpeg"
	if e, ok := p.tc.(*ffmpeg.Executor); ok {
		bin = e.Bin
	}
	if args := ffmpeg.BuildExtract(p.cfg, j.plan); args != nil {
		p.log.Info("  [DRY] %s", ffmpeg.CommandLine(bin, args))
	}
	p.log.Info("  [DRY] %s", ffmpeg.CommandLine(bin, ffmpeg.BuildRemux(p.cfg, j.plan)))
	p.log.Success("[DRY] Would %s (%d text tracks)", j.plan.Action, len(j.plan.RewrittenTracks()))
}

// --- Logging helpers ---

func logTracks(log *logging.Logger, plan *planner.FilePlan) {
	var styled, plain, bitmap int
	for _, s := range plan.Subtitles {
		switch s.Track.Capability {
		case subtitle.StyleTableCapable:
			styled++
		case subtitle.PlainTextOnly:
			plain++
		default:
			bitmap++
		}
	}
	log.Info("  Subtitles: %d styled, %d plain text, %d bitmap (copied)", styled, plain, bitmap)
}

func logStderr(log *logging.Logger, stderr string) {
	if strings.TrimSpace(stderr) == "" {
		return
	}
	log.Error("Last ffmpeg output:")
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	start := 0
	if len(lines) > stderrTail {
		start = len(lines) - stderrTail
	}
	for _, l := range lines[start:] {
		log.Error("  %s", l)
	}
}

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Run %s: found %d files", stats.RunID, stats.Total)
	log.Info("Font size: %s, outline: %s", signed(cfg.FontSizeDelta), signed(cfg.OutlineDelta))
	log.Info("Output: {name}%s%s", cfg.OutputSuffix, naming.ContainerExt)
	if cfg.DetectLanguage {
		log.Info("Language: detect for untagged tracks")
	}
	if cfg.KeepIntermediates {
		log.Info("Intermediates: kept")
	}
	if cfg.Force {
		log.Info("Existing outputs: overwritten")
	}
	if cfg.DryRun {
		log.Warn("Dry run: nothing will be written")
	}
	fmt.Println()
}

// signed renders a delta with an explicit sign.
func signed(delta string) string {
	if strings.HasPrefix(delta, "-") || strings.HasPrefix(delta, "+") {
		return delta
	}
	return "+" + delta
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d processed, %d skipped, %d failed", stats.Processed, stats.Skipped, stats.Failed)
	log.Info("Summary report (run %s):", stats.RunID)
	log.Info("  Files seen: %d of %d", stats.Current, stats.Total)
	log.Info("  Elapsed: %s", display.FormatElapsed(stats.Elapsed))

	for _, f := range stats.Failures {
		log.Error("  Failed: %s", f)
	}
	if stats.Interrupted {
		log.Warn("  Interrupted before the batch finished")
	}

	if cfg.DryRun {
		log.Info("  Tracks enlarged: n/a (dry run)")
		return
	}
	log.Info("  Tracks enlarged: %d", stats.Tracks)
	if stats.Processed > 0 {
		log.Success("  Output written: %s (input %s)",
			display.FormatBytes(stats.OutputBytes),
			display.FormatBytes(stats.InputBytes))
	}
}
