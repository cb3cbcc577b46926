package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeCompat folds Unicode compatibility forms (NFKD), turning
// typographic spaces and composed glyphs into their plain equivalents,
// and trims surrounding whitespace.
func NormalizeCompat(s string) string {
	return strings.TrimSpace(norm.NFKD.String(s))
}

func CollapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// IsDigits reports whether s is non-empty and made of ASCII digits only.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
