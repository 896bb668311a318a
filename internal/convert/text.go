package convert

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips diacritics, so "Peña" and "pena" compare
// equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// Slug turns s into a lower-case, accent-free, dash-separated name that is
// safe for folders and files. "Pérez vs. Acme, S.A." becomes
// "perez-vs-acme-s-a".
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range Fold(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// TitleCase collapses runs of whitespace and capitalizes each word using
// Spanish casing rules: "  maría  DE la o " becomes "María De La O".
func TitleCase(s string) string {
	return cases.Title(language.Spanish).String(strings.Join(strings.Fields(s), " "))
}
