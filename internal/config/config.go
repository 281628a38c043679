// Package config holds runtime configuration: defaults, the optional YAML
// config file, environment overrides, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/backmassage/subenlarge/internal/subtitle"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultPlainTextStyle replaces every Style row of subtitles that were
// converted from a codec without a style table (SRT and friends).
const DefaultPlainTextStyle = subtitle.DefaultPlainTextStyle

// DefaultOutputSuffix is appended to the source base name for the remuxed file.
const DefaultOutputSuffix = " (enlarged subs)"

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overlaid by [LoadFile] and [LoadEnv], then mutated by [ParseFlags] before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Inputs (positional args: files or directories).
	Paths []string

	// Toolchain.
	FFmpegPath string // Default: "" (resolve next to executable, then PATH).

	// Style rewrite.
	FontSizeDelta  string // Default: "20". Added to every Fontsize field.
	OutlineDelta   string // Default: "5". Added to every Outline field.
	PlainTextStyle string // Replacement Style row for plain-text codecs.

	// Output.
	OutputSuffix      string // Default: " (enlarged subs)".
	KeepIntermediates bool   // Keep extracted/rewritten .ass files even on success.
	Force             bool   // Overwrite an existing output file.
	DetectLanguage    bool   // Tag untagged subtitle tracks with a detected language.

	// Behavior flags.
	DryRun       bool
	Inspect      bool // Print the subtitle inventory of each file and exit.
	UseClipboard bool // Default: true. Offer clipboard paths when no args are given.

	// Display and logging.
	Verbose    bool
	ColorMode  ColorMode // Default: "auto".
	LogFile    string    // Optional log file path.
	CheckOnly  bool      // Run --check diagnostics and exit.
	ConfigFile string    // YAML file that was loaded, if any.
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// the config file, environment, and CLI flags apply overrides.
func DefaultConfig() Config {
	return Config{
		FontSizeDelta:  "20",
		OutlineDelta:   "5",
		PlainTextStyle: DefaultPlainTextStyle,
		OutputSuffix:   DefaultOutputSuffix,
		UseClipboard:   true,
		ColorMode:      ColorAuto,
	}
}

// Validate checks enum fields, the numeric deltas, the replacement style row
// and the output suffix.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if err := validateDecimal(c.FontSizeDelta, "font size delta"); err != nil {
		return err
	}
	if err := validateDecimal(c.OutlineDelta, "outline delta"); err != nil {
		return err
	}

	if !strings.HasPrefix(c.PlainTextStyle, "Style:") {
		return fmt.Errorf("plain-text style must start with %q (got %q)", "Style:", c.PlainTextStyle)
	}
	if strings.TrimSpace(c.OutputSuffix) == "" {
		return errors.New("output suffix must not be empty (output would overwrite the source)")
	}
	if strings.ContainsAny(c.OutputSuffix, `/\`) {
		return fmt.Errorf("output suffix must not contain path separators (got %q)", c.OutputSuffix)
	}
	return nil
}

// validateDecimal accepts an optionally signed decimal such as "20", "-3" or
// "0.5". Exponents and thousands separators are rejected.
func validateDecimal(s, name string) error {
	if _, err := subtitle.ParseDecimal(s); err != nil {
		return fmt.Errorf("%s must be a number (got %q)", name, s)
	}
	return nil
}
