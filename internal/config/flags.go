package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into style, output, behavior, display, and utility.
// Negated flags (e.g. --no-clipboard) are applied after Parse so Config
// values from the defaults, config file and environment hold unless set.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Load builds the effective configuration from defaults, the YAML config
// file, the environment (.env in the working directory included), and args
// (without the program name), in increasing order of precedence.
func Load(args []string, version string) (Config, error) {
	cfg := DefaultConfig()

	path, explicit := configPathFromArgs(args)
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := LoadFile(&cfg, path, explicit); err != nil {
		return cfg, err
	}
	if err := LoadEnv(&cfg, ".env"); err != nil {
		return cfg, err
	}
	if err := ParseFlags(&cfg, args, version); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// configPathFromArgs finds --config before the full flag parse so the file
// can be loaded underneath the flags. Returns ("", false) when absent.
func configPathFromArgs(args []string) (string, bool) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		name := strings.TrimLeft(a, "-")
		if name == a {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v, true
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

// ParseFlags parses args into cfg. On --help or --version it prints and exits.
// On error it returns non-nil (e.g. unknown flag, invalid enum value).
func ParseFlags(cfg *Config, args []string, version string) error {
	fs := flag.NewFlagSet("subenlarge", flag.ContinueOnError)
	fs.Usage = func() { printUsage(version) }

	var negated negatedFlags

	defineStyleFlags(fs, cfg)
	defineOutputFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, &negated)

	if err := fs.Parse(args); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(version)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "subenlarge v"+version)
		os.Exit(0)
	}

	cfg.Paths = append(cfg.Paths[:0], fs.Args()...)
	return nil
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	noClipboard bool
	forceColor  bool
	noColor     bool
	configPath  string // consumed by Load; registered so Parse accepts it
	showVersion bool
	showHelp    bool
}

// defineStyleFlags registers --font-size-delta, --outline-delta, --plain-style.
func defineStyleFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.FontSizeDelta, "font-size-delta", cfg.FontSizeDelta, "Added to every Fontsize style field")
	fs.StringVar(&cfg.OutlineDelta, "outline-delta", cfg.OutlineDelta, "Added to every Outline style field")
	fs.StringVar(&cfg.PlainTextStyle, "plain-style", cfg.PlainTextStyle, "Style row used for subtitles without a style table")
}

// defineOutputFlags registers --ffmpeg, --suffix, --keep-temp, --detect-language.
func defineOutputFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.FFmpegPath, "ffmpeg", cfg.FFmpegPath, "Path to the ffmpeg executable")
	fs.StringVar(&cfg.OutputSuffix, "suffix", cfg.OutputSuffix, "Suffix appended to the output base name")
	fs.BoolVar(&cfg.KeepIntermediates, "keep-temp", cfg.KeepIntermediates, "Keep extracted and rewritten subtitle files")
	fs.BoolVar(&cfg.DetectLanguage, "detect-language", cfg.DetectLanguage, "Tag untagged subtitle tracks with a detected language")
}

// defineBehaviorFlags registers force, dry-run, inspect, clipboard.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.Force, "force", cfg.Force, "Overwrite existing output files")
	fs.BoolVar(&cfg.Force, "f", cfg.Force, "Same as --force")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Preview only; print ffmpeg commands without running them")
	fs.BoolVar(&cfg.DryRun, "d", cfg.DryRun, "Same as --dry-run")
	fs.BoolVar(&cfg.Inspect, "inspect", cfg.Inspect, "List subtitle tracks of each file and exit")
	fs.BoolVar(&n.noClipboard, "no-clipboard", false, "Do not read file paths from the clipboard")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log, --config.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", cfg.CheckOnly, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", cfg.CheckOnly, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "Same as --log")
	fs.StringVar(&n.configPath, "config", "", "YAML config file")
}

// defineUtilityFlags registers --version and --help (exit after printing).
func defineUtilityFlags(fs *flag.FlagSet, n *negatedFlags) {
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noClipboard {
		cfg.UseClipboard = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(version string) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "subenlarge v" + version + ": enlarge embedded subtitles in MKV files"},
		{"", ""},
		{"  subenlarge [OPTIONS] [file.mkv | dir ...]", ""},
		{"", ""},
		{"Style", ""},
		{"  --font-size-delta <n>", "Added to Fontsize (default: 20)"},
		{"  --outline-delta <n>", "Added to Outline (default: 5)"},
		{"  --plain-style <row>", "Style row for SRT-like subtitles"},
		{"", ""},
		{"Output", ""},
		{"  --ffmpeg <path>", "ffmpeg executable (default: beside binary, then PATH)"},
		{"  --suffix <text>", `Output name suffix (default: " (enlarged subs)")`},
		{"  --keep-temp", "Keep intermediate subtitle files"},
		{"  --detect-language", "Tag untagged subtitle tracks"},
		{"  -f, --force", "Overwrite existing output files"},
		{"", ""},
		{"Behavior", ""},
		{"  -d, --dry-run", "Print ffmpeg commands; write nothing"},
		{"  --inspect", "List subtitle tracks and exit"},
		{"  --no-clipboard", "Do not read paths from the clipboard"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  --config <path>", "YAML config (default: subenlarge.yaml beside binary)"},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "System diagnostics (ffmpeg, ASS encoder)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// flag.Value adapter so ColorMode can be parsed from the config file and env.

type colorModeValue struct{ p *ColorMode }

func (c *colorModeValue) String() string { return string(*c.p) }
func (c *colorModeValue) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		*c.p = ColorAuto
	case "always":
		*c.p = ColorAlways
	case "never":
		*c.p = ColorNever
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}
