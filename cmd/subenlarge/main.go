// Command subenlarge makes the subtitles of MKV files easier to read.
//
// It parses flags, resolves ffmpeg, and either runs system diagnostics
// (--check), prints subtitle track tables (--inspect), or runs the
// extract/enlarge/remux pipeline over the given files and directories.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/subenlarge/internal/check"
	"github.com/backmassage/subenlarge/internal/config"
	"github.com/backmassage/subenlarge/internal/display"
	"github.com/backmassage/subenlarge/internal/ffmpeg"
	"github.com/backmassage/subenlarge/internal/intake"
	"github.com/backmassage/subenlarge/internal/logging"
	"github.com/backmassage/subenlarge/internal/pipeline"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "1.0.0"

// exitInterrupted follows the shell convention for SIGINT.
const exitInterrupted = 130

func main() {
	os.Exit(run())
}

func run() int {
	// Bootstrap: the logger doesn't exist yet, so errors go directly to
	// stderr via fmt.
	cfg, err := config.Load(os.Args[1:], version)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "subenlarge: %v\n", err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "subenlarge: %v\n", err)
		return 2
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "subenlarge: %v\n", err)
		return 1
	}
	defer log.Close()

	display.PrintBanner(os.Stdout, version)

	// Cancel on SIGINT/SIGTERM: the running ffmpeg is killed and the batch
	// stops before the next stage.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.CheckOnly {
		check.RunCheck(ctx, &cfg, log)
		return 0
	}

	// Fail fast if ffmpeg or its ASS encoder is unavailable.
	bin, err := check.CheckDeps(ctx, &cfg)
	if err != nil {
		log.Error("%v", err)
		if errors.Is(err, check.ErrFfmpegNotFound) {
			log.Error("Install ffmpeg, place it next to subenlarge, or pass --ffmpeg <path>")
		}
		return 1
	}
	log.Debug("Using %s", bin)

	paths := cfg.Paths
	if len(paths) == 0 {
		var src intake.Source
		paths, src, err = intake.Stdio().Paths(ctx, cfg.UseClipboard)
		if err != nil {
			if ctx.Err() != nil {
				return exitInterrupted
			}
			log.Error("%v", err)
			return 1
		}
		log.Debug("Paths from %s: %d", src, len(paths))
	}

	files, err := pipeline.Discover(paths, cfg.OutputSuffix)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return 1
	}
	if len(files) == 0 {
		log.Warn("No .mkv files found")
		return 1
	}

	ff := ffmpeg.NewExecutor(bin, cfg.Verbose)

	var stats pipeline.RunStats
	if cfg.Inspect {
		stats = pipeline.Inspect(ctx, &cfg, log, ff, files, os.Stdout)
	} else {
		stats = pipeline.Run(ctx, &cfg, log, ff, files)
	}

	switch {
	case stats.Interrupted:
		return exitInterrupted
	case stats.Failed > 0:
		return 1
	}
	return 0
}
