package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules are the extraction rules read from RULES_PATH or sent with a request.
//
//	required_sections: [Revision History, Acknowledgements]
//	required_section_pages: 3
//	strategies: [toc, font_size, casing, structural]
//	drop_title_echoes: false
//
// A key that is absent keeps the built-in behavior. An explicitly empty
// required_sections list disables section injection.
type Rules struct {
	RequiredSections     []string `yaml:"required_sections"`
	RequiredSectionPages int      `yaml:"required_section_pages"`
	Strategies           []string `yaml:"strategies"`
	DropTitleEchoes      *bool    `yaml:"drop_title_echoes"`
}

// LoadRules reads a rules file. An empty path yields zero Rules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return Rules{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes a YAML rules document.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules: %w", err)
	}
	r.applyDefaults()
	return r, nil
}

func (r *Rules) applyDefaults() {
	if r.RequiredSections != nil {
		r.RequiredSections = CleanLabels(r.RequiredSections)
	}
	if r.RequiredSectionPages < 0 {
		r.RequiredSectionPages = 0
	}
	if r.Strategies != nil {
		names := make([]string, 0, len(r.Strategies))
		for _, s := range r.Strategies {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				names = append(names, s)
			}
		}
		r.Strategies = names
	}
}

// CleanLabels trims labels and drops blank ones. The result is never nil, so
// a list of only blanks still means "inject nothing".
func CleanLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// SplitLabels parses a comma-separated label list such as a form field.
func SplitLabels(s string) []string {
	return CleanLabels(strings.Split(s, ","))
}
