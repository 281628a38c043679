package intake

import (
	"net/url"
	"os"
	"strings"
)

// ParseDropped splits a line produced by dragging files onto a terminal
// window. Each OS pastes paths differently:
//
//	darwin:  backslash-escaped, separated by unescaped spaces
//	windows: each path wrapped in double quotes
//	other:   each path wrapped in single quotes
//
// A line without the expected quoting is taken as a single typed path.
func ParseDropped(line, goos string) []string {
	line = strings.TrimRight(line, "\r\n")
	switch goos {
	case "darwin":
		return splitEscaped(line)
	case "windows":
		return splitQuoted(line, '"')
	default:
		return splitQuoted(line, '\'')
	}
}

// splitEscaped splits on spaces not preceded by a backslash and removes the
// escaping backslashes.
func splitEscaped(line string) []string {
	var out []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ' ' || r == '\t':
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// splitQuoted splits on the quote character and drops the blank gaps
// between quoted paths.
func splitQuoted(line string, quote rune) []string {
	var out []string
	for _, part := range strings.Split(line, string(quote)) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseClipboard extracts paths from clipboard text: one per line, optional
// surrounding quotes, and file:// URIs as copied by file managers. ok is
// false unless every entry exists, so arbitrary copied text is never
// mistaken for input.
func ParseClipboard(text string) (paths []string, ok bool) {
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		p := strings.TrimSpace(line)
		if p == "" {
			continue
		}
		p = strings.Trim(p, `"'`)
		if strings.HasPrefix(p, "file://") {
			u, err := url.Parse(p)
			if err != nil {
				return nil, false
			}
			p = u.Path
		}
		if _, err := os.Stat(p); err != nil {
			return nil, false
		}
		paths = append(paths, p)
	}
	return paths, len(paths) > 0
}
