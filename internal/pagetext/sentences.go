package pagetext

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SplitSentences does basic sentence splitting on terminal punctuation followed by a space.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// CleanLine NFC-normalizes a line and trims surrounding whitespace.
// Decomposed accents from some PDF encoders otherwise break casing checks.
func CleanLine(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
