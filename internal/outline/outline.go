// Package outline defines the heading and result types produced by the
// extraction engine, plus the text normalization applied to titles.
package outline

import (
	"fmt"
	"sort"
	"strings"
)

// Level is the ordinal rank of a heading. Only H1..H3 are modeled.
type Level int

const (
	LevelUnknown Level = iota
	H1
	H2
	H3
)

// ClampLevel maps a depth (1-based) onto H1..H3.
func ClampLevel(depth int) Level {
	switch {
	case depth <= 1:
		return H1
	case depth == 2:
		return H2
	default:
		return H3
	}
}

func (l Level) String() string {
	switch l {
	case H1:
		return "H1"
	case H2:
		return "H2"
	case H3:
		return "H3"
	default:
		return "unknown"
	}
}

// Valid reports whether l is one of H1..H3.
func (l Level) Valid() bool {
	return l >= H1 && l <= H3
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid heading level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(b))) {
	case "H1":
		*l = H1
	case "H2":
		*l = H2
	case "H3":
		*l = H3
	default:
		return fmt.Errorf("invalid heading level %q", string(b))
	}
	return nil
}

// Heading is a single outline entry. Page is zero-based.
type Heading struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Outline is an ordered list of headings.
type Outline []Heading

// Result is the externally visible extraction result.
type Result struct {
	Title   string  `json:"title"`
	Outline Outline `json:"outline"`
}

// Sort orders headings by (page, text). The sort is stable so equal keys keep their input order.
func Sort(o Outline) {
	sort.SliceStable(o, func(i, j int) bool {
		if o[i].Page != o[j].Page {
			return o[i].Page < o[j].Page
		}
		return o[i].Text < o[j].Text
	})
}

// IsSorted reports whether o is non-decreasing by (page, text).
func IsSorted(o Outline) bool {
	for i := 1; i < len(o); i++ {
		a, b := o[i-1], o[i]
		if a.Page > b.Page || (a.Page == b.Page && a.Text > b.Text) {
			return false
		}
	}
	return true
}

// Clone returns a copy of o that shares no backing array with it.
func (o Outline) Clone() Outline {
	if o == nil {
		return nil
	}
	out := make(Outline, len(o))
	copy(out, o)
	return out
}

// WithLegacySpacing returns the result in the byte-compatible form existing
// consumers expect: every heading text carries one trailing space and a
// non-empty title carries two. The receiver is not modified.
func (r Result) WithLegacySpacing() Result {
	out := Result{Title: r.Title, Outline: make(Outline, len(r.Outline))}
	if out.Title != "" {
		out.Title += "  "
	}
	for i, h := range r.Outline {
		h.Text += " "
		out.Outline[i] = h
	}
	return out
}

// Trimmed undoes WithLegacySpacing.
func (r Result) Trimmed() Result {
	out := Result{Title: strings.TrimSpace(r.Title), Outline: make(Outline, len(r.Outline))}
	for i, h := range r.Outline {
		h.Text = strings.TrimSpace(h.Text)
		out.Outline[i] = h
	}
	return out
}
