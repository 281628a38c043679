package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/subenlarge/internal/config"
	"github.com/backmassage/subenlarge/internal/ffmpeg"
)

type recordingLogger struct{ lines []string }

func (l *recordingLogger) add(level, format string, args ...interface{}) {
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Info(f string, a ...interface{})    { l.add("INFO", f, a...) }
func (l *recordingLogger) Success(f string, a ...interface{}) { l.add("SUCCESS", f, a...) }
func (l *recordingLogger) Warn(f string, a ...interface{})    { l.add("WARN", f, a...) }
func (l *recordingLogger) Error(f string, a ...interface{})   { l.add("ERROR", f, a...) }
func (l *recordingLogger) Debug(f string, a ...interface{})   { l.add("DEBUG", f, a...) }

func (l *recordingLogger) joined() string { return strings.Join(l.lines, "\n") }

type stubRunner struct{ stdout string }

func (s stubRunner) Run(_ context.Context, args []string) ffmpeg.ExecResult {
	return ffmpeg.ExecResult{Stdout: s.stdout}
}

func TestResolveFFmpeg_Explicit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec bit check is Unix-only")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg-custom")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))

	got, err := ResolveFFmpeg(bin)
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	_, err = ResolveFFmpeg(filepath.Join(dir, "absent"))
	assert.ErrorIs(t, err, ErrFfmpegNotFound)

	_, err = ResolveFFmpeg(dir)
	assert.ErrorIs(t, err, ErrFfmpegNotFound, "a directory is not a binary")
}

func TestResolveFFmpeg_PathFallback(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec bit check is Unix-only")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ffmpeg"), []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("PATH", dir)

	got, err := ResolveFFmpeg("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ffmpeg"), got)

	t.Setenv("PATH", t.TempDir())
	_, err = ResolveFFmpeg("")
	assert.ErrorIs(t, err, ErrFfmpegNotFound)
}

func TestHasASSEncoder(t *testing.T) {
	listing := `Encoders:
 V..... = Video
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (codec h264)
 S..... ssa                  ASS (Advanced SubStation Alpha) subtitle (codec ass)
 S..... ass                  ASS (Advanced SubStation Alpha) subtitle
 S..... srt                  SubRip subtitle (codec subrip)
`
	ok, err := hasASSEncoder(context.Background(), stubRunner{stdout: listing})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasASSEncoder(context.Background(), stubRunner{stdout: " S..... srt   SubRip subtitle\n"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckASSEncoder_Logs(t *testing.T) {
	log := &recordingLogger{}
	checkASSEncoder(context.Background(), stubRunner{stdout: " S..... ass  ASS subtitle\n"}, log)
	assert.Contains(t, log.joined(), "SUCCESS ASS subtitle encoder available")

	log = &recordingLogger{}
	checkASSEncoder(context.Background(), stubRunner{}, log)
	assert.Contains(t, log.joined(), "ERROR ASS subtitle encoder missing")
}

func TestRunCheck_RealFfmpeg(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := ResolveFFmpeg(""); err != nil {
		t.Skip("ffmpeg not installed")
	}
	log := &recordingLogger{}
	RunCheck(context.Background(), &cfg, log)
	assert.Contains(t, log.joined(), "SUCCESS ffmpeg: ffmpeg version")
}
