package extractors

import (
	"mvdan.cc/xurls/v2"
)

var urlRE = xurls.Relaxed()

// FirstLink returns the first URL found in the text. Useful for mails
// that carry a verification link instead of a numeric code.
func FirstLink(text string) (string, bool) {
	if m := urlRE.FindString(text); m != "" {
		return m, true
	}
	return "", false
}
