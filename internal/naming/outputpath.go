package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Extensions for inputs and intermediates.
const (
	ContainerExt  = ".mkv"
	ExtractedExt  = ".ass"
	EnlargedExt   = ".large.ass"
	defaultSuffix = " (enlarged subs)"
)

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsContainer reports whether path has the .mkv extension (any case).
func IsContainer(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ContainerExt)
}

// OutputPath returns {dir}/{stem}{suffix}.mkv next to the input. An empty
// suffix falls back to " (enlarged subs)".
func OutputPath(input, suffix string) string {
	if suffix == "" {
		suffix = defaultSuffix
	}
	return filepath.Join(filepath.Dir(input), Stem(input)+suffix+ContainerExt)
}

// ExtractedPath returns {dir}/{stem}.{index}.ass for a subtitle stream.
func ExtractedPath(input string, streamIndex int) string {
	return filepath.Join(filepath.Dir(input), fmt.Sprintf("%s.%d%s", Stem(input), streamIndex, ExtractedExt))
}

// EnlargedPath returns {dir}/{stem}.{index}.large.ass for a subtitle stream.
func EnlargedPath(input string, streamIndex int) string {
	return filepath.Join(filepath.Dir(input), fmt.Sprintf("%s.%d%s", Stem(input), streamIndex, EnlargedExt))
}

// IsOutputName reports whether path looks like a file this tool produced
// with suffix, so directory walks do not enlarge their own results.
func IsOutputName(path, suffix string) bool {
	if suffix == "" {
		suffix = defaultSuffix
	}
	return IsContainer(path) && strings.HasSuffix(Stem(path), suffix)
}
