package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var apostrophes = strings.NewReplacer("'", "", "’", "")

// Slug converts a display name to a kebab-case entity name:
// "Team Alpha" -> "team-alpha", "platformEngineering" -> "platform-engineering",
// "Équipe 2" -> "equipe-2". Slug(Slug(s)) == Slug(s).
func Slug(s string) string {
	var words = splitWords(apostrophes.Replace(deburr(s)))
	if len(words) == 0 {
		return ""
	}
	// Casers keep state, so one per call.
	return cases.Lower(language.Und).String(strings.Join(words, "-"))
}

func deburr(s string) string {
	var t = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	var result, _, err = transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// splitWords breaks s on separators, lower-to-upper transitions, the end of an
// acronym ("XMLHttp" -> XML, Http) and letter/digit transitions.
func splitWords(s string) (words []string) {
	var rs = []rune(s)
	var start = -1
	for i, r := range rs {
		if !isWordRune(r) {
			if start >= 0 {
				words = append(words, string(rs[start:i]))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		if isBoundary(rs, i) {
			words = append(words, string(rs[start:i]))
			start = i
		}
	}
	if start >= 0 {
		words = append(words, string(rs[start:]))
	}
	return
}

func isBoundary(rs []rune, i int) bool {
	var prev, cur = rs[i-1], rs[i]
	if unicode.IsDigit(prev) != unicode.IsDigit(cur) {
		return true
	}
	if unicode.IsLower(prev) && unicode.IsUpper(cur) {
		return true
	}
	if unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(rs) && unicode.IsLower(rs[i+1]) {
		return true
	}
	return false
}
