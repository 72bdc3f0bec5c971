package heading

import (
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pagetext"
)

func linesPage(index int, lines ...string) pagetext.Page {
	return pagetext.NewPage(index, lines, nil)
}

// wordLine lays out the words of text on one line at the given top and size.
func wordLine(text string, top, size float64) []pagetext.WordToken {
	var words []pagetext.WordToken
	x := 50.0
	for _, w := range strings.Fields(text) {
		words = append(words, pagetext.WordToken{Text: w, X0: x, Top: top, FontSize: size, FontName: "Helvetica"})
		x += float64(len(w))*size*0.5 + size*0.3
	}
	return words
}

func wordsPage(index int, groups ...[]pagetext.WordToken) pagetext.Page {
	var words []pagetext.WordToken
	for _, g := range groups {
		words = append(words, g...)
	}
	return pagetext.Page{Index: index, Words: words}
}

func TestTOCStrategy_PrintedPageMinusOne(t *testing.T) {
	pages := []pagetext.Page{linesPage(0,
		"Table of Contents",
		"Introduction ..... 3",
		"1.2 Methods ..... 3",
	)}
	got := TOCStrategy{}.Classify(pages)
	want := outline.Outline{
		{Level: outline.H2, Text: "1.2 Methods", Page: 2},
		{Level: outline.H1, Text: "Introduction", Page: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d headings, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("heading %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestTOCStrategy_Levels(t *testing.T) {
	tests := []struct {
		text string
		want outline.Level
	}{
		{"1. Overview", outline.H1},
		{"2.1 Intended Audience", outline.H2},
		{"2.1.4 Learning Objectives", outline.H3},
		{"2.1.4.1 Very Deep", outline.H3},
		{"References", outline.H1},
		{"Acknowledgements and thanks", outline.H2},
	}
	for _, tt := range tests {
		if got := tocLevel(tt.text); got != tt.want {
			t.Errorf("tocLevel(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestTOCStrategy_MergesWrappedLines(t *testing.T) {
	pages := []pagetext.Page{linesPage(1,
		"Contents",
		"3. Overview of the Foundation Level",
		"Extension Syllabus ..... 7",
	)}
	got := TOCStrategy{}.Classify(pages)
	if len(got) != 1 {
		t.Fatalf("expected 1 heading, got %+v", got)
	}
	if got[0].Text != "3. Overview of the Foundation Level Extension Syllabus" {
		t.Errorf("unexpected merged text %q", got[0].Text)
	}
	if got[0].Level != outline.H1 || got[0].Page != 6 {
		t.Errorf("unexpected heading %+v", got[0])
	}
}

func TestTOCStrategy_WrapBufferBounds(t *testing.T) {
	pages := []pagetext.Page{
		linesPage(0,
			"Alpha intro",
			"Beta part",
			"Gamma part",
			"Delta ..... 4",
			"Orphan words",
		),
		linesPage(1, "Entry ..... 5"),
	}
	got := TOCStrategy{}.Classify(pages)
	if len(got) != 2 {
		t.Fatalf("expected 2 headings, got %+v", got)
	}
	if got[0].Text != "Beta part Gamma part Delta" {
		t.Errorf("expected only two buffered lines to be joined, got %q", got[0].Text)
	}
	if got[1].Text != "Entry" || got[1].Page != 4 {
		t.Errorf("expected the buffer to reset at the page break, got %+v", got[1])
	}
}

func TestTOCStrategy_RejectsLongEntries(t *testing.T) {
	long := strings.Repeat("word ", 26) + "..... 4"
	got := TOCStrategy{}.Classify([]pagetext.Page{linesPage(0, long)})
	if len(got) != 0 {
		t.Errorf("expected long entry to be rejected, got %+v", got)
	}
}

func TestTOCStrategy_PageZeroClamped(t *testing.T) {
	got := TOCStrategy{}.Classify([]pagetext.Page{linesPage(0, "Cover ..... 0")})
	if len(got) != 1 || got[0].Page != 0 {
		t.Errorf("expected page clamped to 0, got %+v", got)
	}
}

func TestTOCStrategy_NoTOC(t *testing.T) {
	got := TOCStrategy{}.Classify([]pagetext.Page{linesPage(0, "Just some text", "More text here.")})
	if len(got) != 0 {
		t.Errorf("expected no headings, got %+v", got)
	}
}

func TestFontSizeStrategy_Brackets(t *testing.T) {
	page := wordsPage(4,
		wordLine("Big Title", 50, 22),
		wordLine("Section Heading", 100, 16),
		wordLine("Subsection", 150, 13),
		wordLine("Body text that is not a heading", 200, 10),
	)
	got := FontSizeStrategy{}.Classify([]pagetext.Page{page})
	want := outline.Outline{
		{Level: outline.H1, Text: "Big Title", Page: 4},
		{Level: outline.H2, Text: "Section Heading", Page: 4},
		{Level: outline.H3, Text: "Subsection", Page: 4},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d headings, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("heading %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestFontSizeStrategy_MeanOfTokens(t *testing.T) {
	words := []pagetext.WordToken{
		{Text: "Mixed", X0: 10, Top: 10, FontSize: 24},
		{Text: "Sizes", X0: 80, Top: 11, FontSize: 18},
	}
	got := FontSizeStrategy{}.Classify([]pagetext.Page{{Index: 0, Words: words}})
	if len(got) != 1 || got[0].Level != outline.H1 || got[0].Text != "Mixed Sizes" {
		t.Errorf("expected one H1 from mean size 21, got %+v", got)
	}
}

func TestFontSizeStrategy_RejectsLongLines(t *testing.T) {
	page := wordsPage(0, wordLine(strings.Repeat("abcd ", 50), 10, 24))
	if got := (FontSizeStrategy{}).Classify([]pagetext.Page{page}); len(got) != 0 {
		t.Errorf("expected long line to be dropped, got %+v", got)
	}
}

func TestFontSizeLevel(t *testing.T) {
	tests := []struct {
		size float64
		want outline.Level
		ok   bool
	}{
		{22, outline.H1, true},
		{20, outline.H2, true},
		{16, outline.H2, true},
		{15, outline.H3, true},
		{13, outline.H3, true},
		{12, outline.LevelUnknown, false},
		{10, outline.LevelUnknown, false},
	}
	for _, tt := range tests {
		got, ok := fontSizeLevel(tt.size)
		if got != tt.want || ok != tt.ok {
			t.Errorf("fontSizeLevel(%v) = (%v, %v), want (%v, %v)", tt.size, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCasingStrategy_Levels(t *testing.T) {
	pages := []pagetext.Page{linesPage(0,
		"PATHWAY OPTIONS",
		"Regular Pathway",
		"the quick brown fox",
		strings.Repeat("x", 100),
	)}
	got := CasingStrategy{}.Classify(pages)
	if len(got) != 3 {
		t.Fatalf("expected 3 headings, got %+v", got)
	}
	wantLevels := []outline.Level{outline.H1, outline.H2, outline.H3}
	for i, l := range wantLevels {
		if got[i].Level != l {
			t.Errorf("heading %d: expected %v, got %v", i, l, got[i].Level)
		}
	}
}

func TestCasingStrategy_ApproximatesPageFromLineIndex(t *testing.T) {
	var lines []string
	for i := 0; i < 120; i++ {
		lines = append(lines, "Line")
	}
	// All lines sit on page 0, but the approximation spreads them 50 per page.
	got := CasingStrategy{LinesPerPage: 50}.Classify([]pagetext.Page{linesPage(0, lines...)})
	if got[49].Page != 0 || got[50].Page != 1 || got[119].Page != 2 {
		t.Errorf("unexpected approximated pages: %d %d %d", got[49].Page, got[50].Page, got[119].Page)
	}
}

func TestCasingStrategy_BlankLinesNotCounted(t *testing.T) {
	lines := []string{"First"}
	for i := 0; i < 60; i++ {
		lines = append(lines, "")
	}
	lines = append(lines, "Second")
	got := CasingStrategy{LinesPerPage: 50}.Classify([]pagetext.Page{linesPage(0, lines...)})
	if len(got) != 2 {
		t.Fatalf("expected 2 headings, got %+v", got)
	}
	if got[1].Page != 0 {
		t.Errorf("blank lines should not advance the approximated page, got %d", got[1].Page)
	}
}

func TestCasingHelpers(t *testing.T) {
	if !isUpper("1.2 METHODS") || isUpper("1234") || isUpper("Methods") {
		t.Error("isUpper mismatch")
	}
	if !isTitleCase("1. Introduction To Testing") || isTitleCase("McDonald Farm") || isTitleCase("Hello world") {
		t.Error("isTitleCase mismatch")
	}
}

func TestStructuralStrategy_FirstBanner(t *testing.T) {
	pages := []pagetext.Page{
		wordsPage(0,
			wordLine("ADDRESS: 3735 PARKWAY", 40, 12),
			wordLine("PHONE 555-1234", 60, 12),
			wordLine("small print", 80, 8),
			wordLine("HOPE TO SEE YOU THERE", 200, 30),
			wordLine("SECOND BANNER", 300, 30),
		),
	}
	got := StructuralStrategy{}.Classify(pages)
	if len(got) != 1 {
		t.Fatalf("expected exactly one heading, got %+v", got)
	}
	want := outline.Heading{Level: outline.H1, Text: "HOPE TO SEE YOU THERE", Page: 0}
	if got[0] != want {
		t.Errorf("expected %+v, got %+v", want, got[0])
	}
}

func TestStructuralStrategy_OnlyFirstThreePages(t *testing.T) {
	var pages []pagetext.Page
	for i := 0; i < 3; i++ {
		pages = append(pages, wordsPage(i, wordLine("lower case only", 10, 12)))
	}
	pages = append(pages, wordsPage(3, wordLine("LATE BANNER", 10, 12)))
	if got := (StructuralStrategy{}).Classify(pages); len(got) != 0 {
		t.Errorf("expected no heading past page 3, got %+v", got)
	}
}

func TestStructuralStrategy_ShortLineIgnored(t *testing.T) {
	pages := []pagetext.Page{wordsPage(0, wordLine("RSVP", 10, 20))}
	if got := (StructuralStrategy{}).Classify(pages); len(got) != 0 {
		t.Errorf("expected short banner to be ignored, got %+v", got)
	}
}

func TestClassifier_FirstNonEmptyWins(t *testing.T) {
	pages := []pagetext.Page{{
		Index: 0,
		Lines: []pagetext.Line{{Text: "Introduction ..... 1", Page: 0}},
		Words: wordLine("Huge Heading", 10, 30),
	}}
	c, err := NewClassifier(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, name := c.Classify(pages)
	if name != NameTOC {
		t.Errorf("expected toc strategy to win, got %q", name)
	}
	if len(got) != 1 || got[0].Text != "Introduction" {
		t.Errorf("expected only TOC headings, got %+v", got)
	}
}

func TestClassifier_FallsThrough(t *testing.T) {
	pages := []pagetext.Page{{Index: 0, Words: wordLine("Huge Heading", 10, 30)}}
	c, _ := NewClassifier([]string{NameTOC, NameFontSize}, nil)
	got, name := c.Classify(pages)
	if name != NameFontSize || len(got) != 1 {
		t.Errorf("expected font_size result, got %q %+v", name, got)
	}
}

func TestClassifier_NothingFound(t *testing.T) {
	c, _ := NewClassifier([]string{NameTOC, NameStructural}, nil)
	got, name := c.Classify(nil)
	if name != "" || got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil outline, got %q %+v", name, got)
	}
}

func TestNewClassifier_UnknownStrategy(t *testing.T) {
	if _, err := NewClassifier([]string{"toc", "bogus"}, nil); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestClassifier_Strategies(t *testing.T) {
	c, _ := NewClassifier(nil, nil)
	got := c.Strategies()
	if strings.Join(got, ",") != "toc,font_size,casing,structural" {
		t.Errorf("unexpected default order %v", got)
	}
}
