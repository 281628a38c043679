package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// Dialogue rows have nine fields before the free-form Text field.
const dialogueFields = 10

// minVotes is the fewest classified lines needed to trust a detection.
const minVotes = 3

var overrideTag = regexp.MustCompile(`\{[^}]*\}`)

// ParseLanguage turns a container language tag ("eng", "fre", "pt-BR") into
// a language.Tag. Empty, "und" and unknown tags give language.Und.
func ParseLanguage(raw string) language.Tag {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "und") {
		return language.Und
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und
	}
	return tag
}

// ISO3 returns the three-letter code stored in Matroska language metadata,
// or "" when tag has no confident base language.
func ISO3(tag language.Tag) string {
	if tag == language.Und {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.ISO3()
}

// DetectLanguage guesses the language of an ASS document's dialogue by
// majority vote over its lines. It returns language.Und when too few lines
// could be classified.
func DetectLanguage(r io.Reader) (language.Tag, error) {
	votes := make(map[string]int)
	total := 0
	inEvents := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !inEvents {
			inEvents = line == eventsHeader
			continue
		}
		text, ok := dialogueText(line)
		if !ok {
			continue
		}
		lang := whatlanggo.DetectLang(text).Iso6391()
		if lang == "" {
			continue
		}
		votes[lang]++
		total++
	}
	if err := sc.Err(); err != nil {
		return language.Und, fmt.Errorf("scan dialogue: %w", err)
	}
	if total < minVotes {
		return language.Und, nil
	}

	var top string
	var topCount int
	for lang, n := range votes {
		if n > topCount || (n == topCount && lang < top) {
			top, topCount = lang, n
		}
	}
	return language.All.Make(top), nil
}

// DetectLanguageFile runs DetectLanguage on a file.
func DetectLanguageFile(path string) (language.Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return language.Und, fmt.Errorf("open subtitle: %w", err)
	}
	defer f.Close()
	return DetectLanguage(f)
}

// dialogueText extracts the spoken text of a Dialogue row with override
// blocks and line-break escapes removed.
func dialogueText(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, "Dialogue:")
	if !ok {
		return "", false
	}
	parts := strings.SplitN(rest, ",", dialogueFields)
	if len(parts) < dialogueFields {
		return "", false
	}
	text := overrideTag.ReplaceAllString(parts[dialogueFields-1], "")
	text = strings.NewReplacer(`\N`, " ", `\n`, " ", `\h`, " ").Replace(text)
	text = strings.TrimSpace(text)
	return text, text != ""
}
