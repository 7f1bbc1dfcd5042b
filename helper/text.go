package helper

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeUnicode folds compatibility characters (ligatures, full width forms) to NFKC
func NormalizeUnicode(text string) string {
	return norm.NFKC.String(text)
}

// ToASCII decomposes text and drops everything outside ASCII, so accented
// letters keep their base character.
func ToASCII(text string) string {
	decomposed := norm.NFKD.String(text)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}
