package outline

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	colonRunRe      = regexp.MustCompile(`(\p{L})\s*:{2,}`)
	whitespaceRunRe = regexp.MustCompile(`\s{2,}`)
)

// CleanText collapses encoding artifacts and whitespace:
//   - runs of 3+ identical letters become one ("AAAbstract" -> "Abstract")
//   - a letter followed by 2+ colons becomes "letter:"
//   - whitespace runs become one space, and the result is trimmed
func CleanText(s string) string {
	s = collapseLetterRuns(s)
	s = colonRunRe.ReplaceAllString(s, "$1:")
	s = whitespaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeTitle applies CleanText and then re-inserts a double space after
// the first token. Downstream consumers depend on that double space; do not
// drop it without checking them.
func NormalizeTitle(s string) string {
	s = CleanText(s)
	first, rest, ok := strings.Cut(s, " ")
	if !ok {
		return s
	}
	return first + "  " + rest
}

// collapseLetterRuns replaces every run of three or more identical letters with a single letter.
// RE2 has no backreferences, so this walks the runes directly.
func collapseLetterRuns(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); {
		j := i + 1
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		if unicode.IsLetter(runes[i]) && j-i >= 3 {
			b.WriteRune(runes[i])
		} else {
			b.WriteString(string(runes[i:j]))
		}
		i = j
	}
	return b.String()
}
