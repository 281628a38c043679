// Package check provides system diagnostics (--check mode) and the
// pre-pipeline dependency validation (CheckDeps) that resolves the ffmpeg
// binary and verifies it can write ASS subtitles.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/backmassage/subenlarge/internal/config"
	"github.com/backmassage/subenlarge/internal/ffmpeg"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFfmpegNotFound = errors.New("ffmpeg not found (next to the executable or on PATH)")
	ErrNoASSEncoder   = errors.New("ffmpeg has no ASS subtitle encoder")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// binaryName is the ffmpeg executable name on this OS.
func binaryName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

// ResolveFFmpeg finds the ffmpeg binary: the explicit path when given,
// else ffmpeg in the executable's directory, else ffmpeg on PATH.
func ResolveFFmpeg(explicit string) (string, error) {
	if explicit != "" {
		if isExecutableFile(explicit) {
			return explicit, nil
		}
		if p, err := exec.LookPath(explicit); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("%w: %s", ErrFfmpegNotFound, explicit)
	}

	if exe, err := os.Executable(); err == nil {
		beside := filepath.Join(filepath.Dir(exe), binaryName())
		if isExecutableFile(beside) {
			return beside, nil
		}
	}

	p, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", ErrFfmpegNotFound
	}
	return p, nil
}

func isExecutableFile(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return fi.Mode()&0o111 != 0
}

// CheckDeps is the pre-pipeline validation: it resolves ffmpeg and confirms
// the ASS encoder is compiled in. Returns the resolved binary path, or a
// sentinel error on failure.
func CheckDeps(ctx context.Context, cfg *config.Config) (string, error) {
	bin, err := ResolveFFmpeg(cfg.FFmpegPath)
	if err != nil {
		return "", err
	}
	ok, err := hasASSEncoder(ctx, ffmpeg.NewExecutor(bin, false))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFfmpegNotFound, err)
	}
	if !ok {
		return "", ErrNoASSEncoder
	}
	return bin, nil
}

// RunCheck runs the interactive --check flow: prints the resolved ffmpeg and
// its version, ASS encoder availability, an SRT-to-ASS test conversion, the
// loaded config file and clipboard support. Informational only; it does not
// stop on failure.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	if cfg.ConfigFile != "" {
		log.Info("Config file: %s", cfg.ConfigFile)
	} else {
		log.Info("Config file: none (defaults, environment and flags only)")
	}
	if clipboard.Unsupported {
		log.Warn("Clipboard: unsupported on this system (paths must be typed or passed as arguments)")
	} else {
		log.Info("Clipboard: available")
	}

	bin, err := ResolveFFmpeg(cfg.FFmpegPath)
	if err != nil {
		log.Error("%v", err)
		return
	}
	r := ffmpeg.NewExecutor(bin, false)
	checkVersion(ctx, r, bin, log)
	checkASSEncoder(ctx, r, log)
	checkConversion(ctx, r, log)
}

// checkVersion logs the first line of "ffmpeg -version".
func checkVersion(ctx context.Context, r ffmpeg.Runner, bin string, log Logger) {
	res := r.Run(ctx, []string{"-hide_banner", "-version"})
	if res.Failed() {
		log.Warn("ffmpeg found at %s but -version failed: %v", bin, ffmpeg.Check("version", res, ctx.Err()))
		return
	}
	firstLine := strings.TrimSpace(res.Stdout)
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("ffmpeg: %s (%s)", firstLine, bin)
}

// checkASSEncoder reports whether the ASS subtitle encoder is available.
func checkASSEncoder(ctx context.Context, r ffmpeg.Runner, log Logger) {
	ok, err := hasASSEncoder(ctx, r)
	switch {
	case err != nil:
		log.Warn("Could not list encoders: %v", err)
	case ok:
		log.Success("ASS subtitle encoder available")
	default:
		log.Error("ASS subtitle encoder missing; subtitles cannot be extracted")
	}
}

// checkConversion converts a one-cue SRT file to ASS, the same conversion
// extraction performs for plain-text tracks.
func checkConversion(ctx context.Context, r ffmpeg.Runner, log Logger) {
	log.Info("Testing SRT to ASS conversion...")
	dir, err := os.MkdirTemp("", "subenlarge-check-")
	if err != nil {
		log.Warn("Cannot create temp dir: %v", err)
		return
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "probe.srt")
	if err := os.WriteFile(src, []byte("1\n00:00:00,000 --> 00:00:01,000\nHello\n"), 0o644); err != nil {
		log.Warn("Cannot write test subtitle: %v", err)
		return
	}
	dst := filepath.Join(dir, "probe.ass")
	res := r.Run(ctx, []string{"-hide_banner", "-nostdin", "-y", "-loglevel", "error", "-i", src, "-c:s", "ass", dst})
	if err := ffmpeg.Check("conversion", res, ctx.Err()); err != nil {
		log.Error("SRT to ASS conversion failed: %v", err)
		return
	}
	b, err := os.ReadFile(dst)
	if err != nil || !strings.Contains(string(b), "[Events]") {
		log.Error("SRT to ASS conversion produced no event table")
		return
	}
	log.Success("SRT to ASS conversion works")
}

func hasASSEncoder(ctx context.Context, r ffmpeg.Runner) (bool, error) {
	res := r.Run(ctx, []string{"-hide_banner", "-encoders"})
	if err := ffmpeg.Check("encoders", res, ctx.Err()); err != nil {
		return false, err
	}
	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.Fields(line)
		// " S..... ass                  ASS (Advanced SubStation Alpha) subtitle"
		if len(fields) >= 2 && strings.HasPrefix(fields[0], "S") && fields[1] == "ass" {
			return true, nil
		}
	}
	return false, nil
}
