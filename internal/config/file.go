package config

// This file implements the two overlay sources applied between the defaults
// and the CLI flags: an optional YAML file and the process environment
// (optionally seeded from a .env file).

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigName is looked up next to the executable when --config is not given.
const DefaultConfigName = "subenlarge.yaml"

// EnvPrefix prefixes every environment variable read by [LoadEnv].
const EnvPrefix = "SUBENLARGE_"

// fileConfig mirrors the YAML layout. Pointer fields distinguish "absent"
// from the zero value so that only keys present in the file override.
type fileConfig struct {
	FFmpegPath        *string `yaml:"ffmpeg_path"`
	FontSizeDelta     *string `yaml:"font_size_delta"`
	OutlineDelta      *string `yaml:"outline_delta"`
	PlainTextStyle    *string `yaml:"plain_text_style"`
	OutputSuffix      *string `yaml:"output_suffix"`
	KeepIntermediates *bool   `yaml:"keep_intermediates"`
	DetectLanguage    *bool   `yaml:"detect_language"`
	UseClipboard      *bool   `yaml:"use_clipboard"`
	Color             *string `yaml:"color"`
	LogFile           *string `yaml:"log_file"`
}

// LoadFile overlays the YAML file at path onto cfg. A missing file is an
// error only when required is true (i.e. the user named it with --config).
func LoadFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.FFmpegPath, fc.FFmpegPath)
	setString(&cfg.FontSizeDelta, fc.FontSizeDelta)
	setString(&cfg.OutlineDelta, fc.OutlineDelta)
	setString(&cfg.PlainTextStyle, fc.PlainTextStyle)
	if fc.OutputSuffix != nil {
		// Leading spaces are significant here; do not trim.
		cfg.OutputSuffix = *fc.OutputSuffix
	}
	setBool(&cfg.KeepIntermediates, fc.KeepIntermediates)
	setBool(&cfg.DetectLanguage, fc.DetectLanguage)
	setBool(&cfg.UseClipboard, fc.UseClipboard)
	if fc.Color != nil {
		if err := (&colorModeValue{&cfg.ColorMode}).Set(*fc.Color); err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
	}
	setString(&cfg.LogFile, fc.LogFile)

	cfg.ConfigFile = path
	return nil
}

// LoadEnv loads envFile (if it exists) into the process environment without
// overriding variables that are already set, then applies SUBENLARGE_*
// variables to cfg.
func LoadEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg.FFmpegPath = getEnvString("FFMPEG", cfg.FFmpegPath)
	cfg.FontSizeDelta = getEnvString("FONT_SIZE_DELTA", cfg.FontSizeDelta)
	cfg.OutlineDelta = getEnvString("OUTLINE_DELTA", cfg.OutlineDelta)
	cfg.PlainTextStyle = getEnvString("PLAIN_TEXT_STYLE", cfg.PlainTextStyle)
	if v, ok := os.LookupEnv(EnvPrefix + "OUTPUT_SUFFIX"); ok && v != "" {
		cfg.OutputSuffix = v
	}
	cfg.LogFile = getEnvString("LOG_FILE", cfg.LogFile)

	var err error
	if cfg.KeepIntermediates, err = getEnvBool("KEEP_INTERMEDIATES", cfg.KeepIntermediates); err != nil {
		return err
	}
	if cfg.DetectLanguage, err = getEnvBool("DETECT_LANGUAGE", cfg.DetectLanguage); err != nil {
		return err
	}
	if cfg.UseClipboard, err = getEnvBool("USE_CLIPBOARD", cfg.UseClipboard); err != nil {
		return err
	}
	if v := getEnvString("COLOR", ""); v != "" {
		if err := (&colorModeValue{&cfg.ColorMode}).Set(v); err != nil {
			return fmt.Errorf("%sCOLOR: %w", EnvPrefix, err)
		}
	}
	return nil
}

// DefaultConfigPath returns subenlarge.yaml beside the running executable,
// falling back to the working directory when the executable path is unknown.
func DefaultConfigPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultConfigName
	}
	return filepath.Join(filepath.Dir(exe), DefaultConfigName)
}

// getEnvString gets a SUBENLARGE_* string value with default.
func getEnvString(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(EnvPrefix + key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a SUBENLARGE_* boolean value with default.
func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s%s must be a boolean (got %q)", EnvPrefix, key, value)
	}
	return b, nil
}

func setString(dst *string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = strings.TrimSpace(*v)
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
