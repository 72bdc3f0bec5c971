package pagetext

import (
	"math"
	"sort"
	"strings"
)

// DefaultLineTolerance is the vertical distance (in points) within which
// tokens are treated as sitting on the same line.
const DefaultLineTolerance = 3.0

// TokenLine is a group of word tokens sharing one visual line.
type TokenLine struct {
	Top   float64
	Words []WordToken
}

// Text joins the line's words in horizontal order.
func (l TokenLine) Text() string {
	words := make([]WordToken, len(l.Words))
	copy(words, l.Words)
	sort.SliceStable(words, func(i, j int) bool { return words[i].X0 < words[j].X0 })
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// MeanFontSize returns the average font size of the line's tokens.
func (l TokenLine) MeanFontSize() float64 {
	if len(l.Words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range l.Words {
		sum += w.FontSize
	}
	return sum / float64(len(l.Words))
}

// ClusterLines groups tokens into lines by vertical proximity. Tokens are visited
// top-to-bottom; a token within tolerance of the running line top joins that line,
// anything further starts a new one.
func ClusterLines(words []WordToken, tolerance float64) []TokenLine {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]WordToken, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var lines []TokenLine
	current := TokenLine{Top: sorted[0].Top}
	for _, w := range sorted {
		if len(current.Words) > 0 && math.Abs(w.Top-current.Top) > tolerance {
			lines = append(lines, current)
			current = TokenLine{Top: w.Top}
		}
		current.Words = append(current.Words, w)
	}
	lines = append(lines, current)
	return lines
}

// GroupByRoundedTop groups tokens whose Top rounds to the same tenth of a point,
// keeping groups in order of first appearance.
func GroupByRoundedTop(words []WordToken) []TokenLine {
	index := make(map[float64]int)
	var lines []TokenLine
	for _, w := range words {
		key := math.Round(w.Top*10) / 10
		i, ok := index[key]
		if !ok {
			i = len(lines)
			index[key] = i
			lines = append(lines, TokenLine{Top: key})
		}
		lines[i].Words = append(lines[i].Words, w)
	}
	return lines
}
