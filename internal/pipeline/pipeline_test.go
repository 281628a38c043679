package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/subenlarge/internal/config"
	"github.com/backmassage/subenlarge/internal/ffmpeg"
	"github.com/backmassage/subenlarge/internal/logging"
	"github.com/backmassage/subenlarge/internal/subtitle"
)

// --- Fakes ---

const extractedASS = `[Script Info]
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,16,&Hffffff,&Hffffff,&H0,&H0,0,0,0,0,100,100,0,0,1,1,0,2,10,10,10,0

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,The weather is lovely today and we should walk to the river.
Dialogue: 0,0:00:03.00,0:00:04.00,Default,,0,0,0,,I have never seen anything like this in my whole life.
Dialogue: 0,0:00:05.00,0:00:06.00,Default,,0,0,0,,Please close the door when you leave the house tonight.
`

// fakeToolchain stands in for ffmpeg. Extraction writes doc to every
// requested .ass file; remux writes the output and records the contents of
// the rewritten inputs.
type fakeToolchain struct {
	listing   string
	doc       string
	remuxFail bool
	cancel    context.CancelFunc // Called when extraction runs.

	// extractFail fails extraction for sources whose base name is listed.
	extractFail map[string]bool

	calls    [][]string
	remuxed  map[string]string
	listings int
}

func (f *fakeToolchain) Listing(_ context.Context, path string) (string, error) {
	f.listings++
	return fmt.Sprintf(f.listing, path), nil
}

func (f *fakeToolchain) Run(_ context.Context, args []string) ffmpeg.ExecResult {
	f.calls = append(f.calls, args)
	if containsArg(args, "-c:s") {
		if f.cancel != nil {
			f.cancel()
		}
		if f.extractFail[filepath.Base(argAfter(args, "-i"))] {
			return ffmpeg.ExecResult{ExitCode: 1, Stderr: "[matroska @ 0x1] EBML header parsing failed\nInvalid data found when processing input\n"}
		}
		for i := 0; i+2 < len(args); i++ {
			if args[i] == "-c:s" && (args[i+1] == "ass" || args[i+1] == "copy") {
				if err := os.WriteFile(args[i+2], []byte(f.doc), 0o644); err != nil {
					return ffmpeg.ExecResult{ExitCode: 1, Stderr: err.Error()}
				}
			}
		}
		return ffmpeg.ExecResult{}
	}

	out := args[len(args)-1]
	f.remuxed = make(map[string]string)
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-i" && strings.HasSuffix(args[i+1], ".large.ass") {
			b, _ := os.ReadFile(args[i+1])
			f.remuxed[filepath.Base(args[i+1])] = string(b)
		}
	}
	if f.remuxFail {
		_ = os.WriteFile(out, []byte("partial"), 0o644)
		return ffmpeg.ExecResult{ExitCode: 1, Stderr: "[matroska @ 0x1] Attachment stream 9 has no filename tag.\nConversion failed!\n"}
	}
	_ = os.WriteFile(out, []byte("remuxed container"), 0o644)
	return ffmpeg.ExecResult{}
}

const mixedListing = `Input #0, matroska,webm, from '%s':
  Stream #0:0(jpn): Video: h264 (High), yuv420p, 1920x1080, 23.98 fps (default)
  Stream #0:1(jpn): Audio: aac (LC), 48000 Hz, stereo, fltp (default)
  Stream #0:2(eng): Subtitle: ass (ssa) (default)
  Stream #0:3: Subtitle: subrip (srt)
  Stream #0:4(eng): Subtitle: hdmv_pgs_subtitle (pgssub), 1920x1080
  Stream #0:5: Attachment: ttf
At least one output file must be specified
`

const videoOnlyListing = `Input #0, matroska,webm, from '%s':
  Stream #0:0: Video: h264 (High), yuv420p, 1280x720, 25 fps (default)
  Stream #0:1: Audio: opus, 48000 Hz, stereo, fltp (default)
At least one output file must be specified
`

func testSetup(t *testing.T) (config.Config, *logging.Logger, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	log, err := logging.NewLogger(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	var buf bytes.Buffer
	log.SetOutput(&buf, &buf)
	return cfg, log, &buf
}

func newSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("matroska bytes"), 0o644))
	return path
}

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func argAfter(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// --- Run tests ---

func TestRun_EnlargesAndCleansUp(t *testing.T) {
	cfg, log, buf := testSetup(t)
	cfg.DetectLanguage = true
	dir := t.TempDir()
	src := newSource(t, dir, "Show.mkv")
	fake := &fakeToolchain{listing: mixedListing, doc: extractedASS}

	stats := Run(context.Background(), &cfg, log, fake, []string{src})

	require.True(t, stats.OK(), buf.String())
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 2, stats.Tracks)
	assert.NotEmpty(t, stats.RunID)
	assert.Contains(t, buf.String(), stats.RunID)
	require.Len(t, fake.calls, 2, "one extract and one remux")

	extract := fake.calls[0]
	assert.Equal(t, "copy", argAfter(extract, "-c:s"), "styled track is stream-copied")
	assert.Contains(t, extract, filepath.Join(dir, "Show.2.ass"))
	assert.Contains(t, extract, filepath.Join(dir, "Show.3.ass"))
	assert.NotContains(t, extract, "0:4", "bitmap tracks are never extracted")

	remux := fake.calls[1]
	out := filepath.Join(dir, "Show (enlarged subs).mkv")
	assert.Equal(t, out, remux[len(remux)-1])
	assert.Equal(t, "language=eng", argAfter(remux, "-metadata:s:s:1"), "untagged srt track gets detected language")
	assert.Empty(t, argAfter(remux, "-metadata:s:s:0"), "tagged track keeps its source tag")

	styled := fake.remuxed["Show.2.large.ass"]
	assert.Contains(t, styled, "Style: Default,Arial,36,&Hffffff,&Hffffff,&H0,&H0,0,0,0,0,100,100,0,0,1,6,0,2,10,10,10,0")
	plain := fake.remuxed["Show.3.large.ass"]
	assert.Contains(t, plain, subtitle.DefaultPlainTextStyle+"\n")
	assert.Contains(t, plain, "Dialogue: 0,0:00:01.00", "events copied")

	assert.True(t, fileExists(out))
	for _, name := range []string{"Show.2.ass", "Show.2.large.ass", "Show.3.ass", "Show.3.large.ass"} {
		assert.False(t, fileExists(filepath.Join(dir, name)), "%s should be removed after success", name)
	}
	assert.True(t, fileExists(src), "source is never touched")
}

func TestRun_KeepIntermediates(t *testing.T) {
	cfg, log, _ := testSetup(t)
	cfg.KeepIntermediates = true
	dir := t.TempDir()
	src := newSource(t, dir, "Movie.mkv")
	fake := &fakeToolchain{listing: mixedListing, doc: extractedASS}

	stats := Run(context.Background(), &cfg, log, fake, []string{src})

	require.Equal(t, 1, stats.Processed)
	assert.True(t, fileExists(filepath.Join(dir, "Movie.2.ass")))
	assert.True(t, fileExists(filepath.Join(dir, "Movie.2.large.ass")))
}

func TestRun_RemuxFailure(t *testing.T) {
	cfg, log, buf := testSetup(t)
	dir := t.TempDir()
	src := newSource(t, dir, "Movie.mkv")
	fake := &fakeToolchain{listing: mixedListing, doc: extractedASS, remuxFail: true}

	stats := Run(context.Background(), &cfg, log, fake, []string{src})

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, []string{src}, stats.Failures)
	assert.False(t, stats.OK())
	assert.False(t, fileExists(filepath.Join(dir, "Movie (enlarged subs).mkv")), "partial output removed")
	assert.True(t, fileExists(filepath.Join(dir, "Movie.2.large.ass")), "intermediates kept for inspection")

	logged := buf.String()
	assert.Contains(t, logged, "remux Movie.mkv")
	assert.Contains(t, logged, "Hint:")
	assert.Contains(t, logged, "Conversion failed!")
}

func TestRun_FailedFileDoesNotAbortBatch(t *testing.T) {
	cfg, log, buf := testSetup(t)
	dir := t.TempDir()
	bad := newSource(t, dir, "Bad.mkv")
	good := newSource(t, dir, "Good.mkv")
	fake := &fakeToolchain{
		listing:     mixedListing,
		doc:         extractedASS,
		extractFail: map[string]bool{"Bad.mkv": true},
	}

	stats := Run(context.Background(), &cfg, log, fake, []string{bad, good})

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, []string{bad}, stats.Failures)
	assert.Equal(t, 2, stats.Current, "batch continues after the failure")

	require.Len(t, fake.calls, 3, "extract for Bad, extract and remux for Good")
	assert.Equal(t, bad, argAfter(fake.calls[0], "-i"))
	for _, call := range fake.calls[1:] {
		assert.Equal(t, good, argAfter(call, "-i"))
	}
	assert.False(t, fileExists(filepath.Join(dir, "Bad (enlarged subs).mkv")))
	assert.True(t, fileExists(filepath.Join(dir, "Good (enlarged subs).mkv")))

	logged := buf.String()
	assert.Contains(t, logged, "extract Bad.mkv")
	assert.Contains(t, logged, "Hint:")
}

func TestRun_TransformFailureStopsFile(t *testing.T) {
	cfg, log, buf := testSetup(t)
	dir := t.TempDir()
	src := newSource(t, dir, "Broken.mkv")
	fake := &fakeToolchain{listing: mixedListing, doc: "[Script Info]\nTitle: no styles\n"}

	stats := Run(context.Background(), &cfg, log, fake, []string{src})

	assert.Equal(t, 1, stats.Failed)
	assert.Len(t, fake.calls, 1, "remux never runs after a track fails")
	assert.Contains(t, buf.String(), "enlarge Broken.mkv")
	assert.Contains(t, buf.String(), "Intermediates kept")
}

func TestRun_Skips(t *testing.T) {
	cfg, log, _ := testSetup(t)
	dir := t.TempDir()
	done := newSource(t, dir, "Done.mkv")
	newSource(t, dir, "Done (enlarged subs).mkv")
	notMKV := newSource(t, dir, "clip.mp4")
	missing := filepath.Join(dir, "gone.mkv")
	fake := &fakeToolchain{listing: mixedListing, doc: extractedASS}

	stats := Run(context.Background(), &cfg, log, fake, []string{missing, notMKV, done})

	assert.Equal(t, 3, stats.Skipped)
	assert.Equal(t, 0, stats.Processed)
	assert.True(t, stats.OK())
	assert.Empty(t, fake.calls)
	assert.Equal(t, 1, fake.listings, "only the existing .mkv is inspected")
}

func TestRun_ForceOverwrites(t *testing.T) {
	cfg, log, _ := testSetup(t)
	cfg.Force = true
	dir := t.TempDir()
	src := newSource(t, dir, "Done.mkv")
	out := newSource(t, dir, "Done (enlarged subs).mkv")
	fake := &fakeToolchain{listing: mixedListing, doc: extractedASS}

	stats := Run(context.Background(), &cfg, log, fake, []string{src})

	assert.Equal(t, 1, stats.Processed)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "remuxed container", string(b))
}

func TestRun_NoSubtitlesStillRemuxes(t *testing.T) {
	cfg, log, _ := testSetup(t)
	dir := t.TempDir()
	src := newSource(t, dir, "Plain.mkv")
	fake := &fakeToolchain{listing: videoOnlyListing}

	stats := Run(context.Background(), &cfg, log, fake, []string{src})

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 0, stats.Tracks)
	require.Len(t, fake.calls, 1, "extraction is skipped")
	remux := fake.calls[0]
	assert.Contains(t, strings.Join(remux, " "), "-map 0:0 -map 0:a?")
	assert.Contains(t, remux, "0:t?")
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	cfg, log, buf := testSetup(t)
	cfg.DryRun = true
	dir := t.TempDir()
	src := newSource(t, dir, "Show.mkv")
	fake := &fakeToolchain{listing: mixedListing, doc: extractedASS}

	stats := Run(context.Background(), &cfg, log, fake, []string{src})

	assert.Equal(t, 1, stats.Processed)
	assert.Empty(t, fake.calls)
	assert.Contains(t, buf.String(), "[DRY] ffmpeg -hide_banner")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRun_CancelledBetweenStages(t *testing.T) {
	cfg, log, _ := testSetup(t)
	dir := t.TempDir()
	first := newSource(t, dir, "A.mkv")
	second := newSource(t, dir, "B.mkv")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake := &fakeToolchain{listing: mixedListing, doc: extractedASS, cancel: cancel}

	stats := Run(ctx, &cfg, log, fake, []string{first, second})

	assert.True(t, stats.Interrupted)
	assert.False(t, stats.OK())
	assert.Equal(t, 0, stats.Failed, "interruption is not a file failure")
	assert.Equal(t, 1, stats.Current, "second file never starts")
	require.Len(t, fake.calls, 1, "remux never starts after cancellation")
	assert.True(t, fileExists(filepath.Join(dir, "A.2.ass")), "intermediates stay on cancellation")
}

func TestRun_CollidingOutputs(t *testing.T) {
	cfg, log, _ := testSetup(t)
	dir := t.TempDir()
	sub := filepath.Join(dir, "again")
	require.NoError(t, os.Mkdir(sub, 0o755))
	src := newSource(t, dir, "Show.mkv")
	fake := &fakeToolchain{listing: videoOnlyListing}

	// The same file listed twice under different spellings.
	stats := Run(context.Background(), &cfg, log, fake, []string{src, filepath.Join(sub, "..", "Show.mkv")})

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Skipped, "second pass sees the first pass's output")
}

func TestRun_SameStemNumberedOutput(t *testing.T) {
	cfg, log, buf := testSetup(t)
	dir := t.TempDir()
	lower := newSource(t, dir, "Show.mkv")
	upper := newSource(t, dir, "Show.MKV")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	if len(entries) != 2 {
		t.Skip("case-insensitive filesystem")
	}
	fake := &fakeToolchain{listing: videoOnlyListing}

	stats := Run(context.Background(), &cfg, log, fake, []string{lower, upper})

	assert.Equal(t, 2, stats.Processed)
	assert.True(t, fileExists(filepath.Join(dir, "Show (enlarged subs).mkv")))
	assert.True(t, fileExists(filepath.Join(dir, "Show (enlarged subs) (2).mkv")))
	assert.Contains(t, buf.String(), "is already the output of "+lower)
}

// --- StageError ---

func TestStageError_Unwraps(t *testing.T) {
	pe := &ffmpeg.ProcessError{Step: "remux", ExitCode: 1, Err: context.Canceled}
	err := error(&StageError{Stage: StageRemux, Path: "/media/A.mkv", Err: pe})

	assert.Equal(t, "remux A.mkv: ffmpeg remux: context canceled", err.Error())
	assert.True(t, errors.Is(err, context.Canceled))

	var got *ffmpeg.ProcessError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 1, got.ExitCode)
}

// --- Inspect ---

func TestInspect_PrintsTrackTable(t *testing.T) {
	cfg, log, _ := testSetup(t)
	dir := t.TempDir()
	src := newSource(t, dir, "Show.mkv")
	fake := &fakeToolchain{listing: mixedListing}

	var out bytes.Buffer
	stats := Inspect(context.Background(), &cfg, log, fake, []string{src, filepath.Join(dir, "x.avi")}, &out)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
	text := out.String()
	assert.Contains(t, text, "Show.mkv")
	assert.Contains(t, text, "1 video, 1 audio, 3 subtitle, 1 attachment")
	assert.Contains(t, text, "English (eng)")
	assert.Contains(t, text, "untagged")
	assert.Contains(t, text, "copy (bitmap)")
	assert.Contains(t, text, "default")
	assert.Empty(t, fake.calls, "inspect never writes")
}

// --- Discover tests ---

func TestDiscover_WalksDirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.mkv")
	touch(t, dir, "a.MKV")
	touch(t, dir, "a (enlarged subs).mkv")
	touch(t, dir, "clip.mp4")
	touch(t, dir, "a.2.ass")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Season 01"), 0o755))
	touch(t, filepath.Join(dir, "Season 01"), "ep01.mkv")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".trash"), 0o755))
	touch(t, filepath.Join(dir, ".trash"), "old.mkv")

	files, err := Discover([]string{dir}, " (enlarged subs)")
	require.NoError(t, err)

	rel := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		rel[i] = filepath.ToSlash(r)
	}
	assert.Equal(t, []string{"Season 01/ep01.mkv", "a.MKV", "b.mkv"}, rel)
}

func TestDiscover_KeepsFilesAsGivenAndDedups(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "movie.mkv")
	movie := filepath.Join(dir, "movie.mkv")
	missing := filepath.Join(dir, "missing.mkv")
	other := filepath.Join(dir, "notes.txt")

	files, err := Discover([]string{movie, missing, other, dir, movie + string(filepath.Separator) + ".." + string(filepath.Separator) + "movie.mkv"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{movie, missing, other}, files)
}

func TestDiscover_EmptyDir(t *testing.T) {
	files, err := Discover([]string{t.TempDir()}, "")
	require.NoError(t, err)
	assert.Empty(t, files)
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte{}, 0o644), "touch %s", path)
}
