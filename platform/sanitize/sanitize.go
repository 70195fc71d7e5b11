// Package sanitize cleans user-provided text before it reaches a geocoder or
// is echoed back to a browser.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// StripHTML returns the text content of s with every tag removed and
// entities decoded.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// Text strips markup and control characters and collapses runs of
// whitespace to a single space.
func Text(s string) string {
	s = StripHTML(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
