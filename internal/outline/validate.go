package outline

import "strings"

// maxHeadingRunes bounds heading text; longer entries are body text that slipped through.
const maxHeadingRunes = 300

// ValidateHeading checks a heading for validity, trimming its text in place.
// Returns true if valid.
func ValidateHeading(h *Heading) bool {
	if h == nil {
		return false
	}
	h.Text = strings.TrimSpace(h.Text)
	if h.Text == "" || len([]rune(h.Text)) > maxHeadingRunes {
		return false
	}
	if !h.Level.Valid() {
		return false
	}
	if h.Page < 0 {
		h.Page = 0
	}
	return true
}

// Filter returns the valid headings of o.
func Filter(o Outline) Outline {
	out := make(Outline, 0, len(o))
	for i := range o {
		h := o[i]
		if ValidateHeading(&h) {
			out = append(out, h)
		}
	}
	return out
}
