package extractors

import (
	"regexp"
	"strings"
)

var spaceRE = regexp.MustCompile(`\s+`)
var oneTimeCodeRE = regexp.MustCompile(`(?i)one-time code is:?\s*(\d+)`)
var sixDigitsRE = regexp.MustCompile(`\b\d{6}\b`)

// Cursor is a best-effort heuristic for one-time codes: it prefers
// digits following the phrase "one-time code is", and otherwise takes
// the first run of exactly six consecutive digits. It is not a
// guaranteed-correct parser.
func Cursor(text string) (string, bool) {
	text = strings.TrimSpace(spaceRE.ReplaceAllString(text, " "))
	if m := oneTimeCodeRE.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if m := sixDigitsRE.FindString(text); m != "" {
		return m, true
	}
	return "", false
}
