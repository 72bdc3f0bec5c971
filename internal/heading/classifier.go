// Package heading detects heading candidates. Each Strategy reads one input
// signal; a Classifier tries its strategies in order and returns the first
// non-empty result. Strategies are never merged with each other.
//
// Every strategy emits zero-based page indexes. How it gets there differs and
// is spelled out on each strategy: the TOC strategy converts printed page
// numbers, the font-size and structural strategies use the scanned page, and
// the casing strategy approximates the page from the line position.
package heading

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pagetext"
)

// Strategy names, as used in the rules file.
const (
	NameTOC        = "toc"
	NameFontSize   = "font_size"
	NameCasing     = "casing"
	NameStructural = "structural"
)

// Strategy produces heading candidates from pages. Implementations are pure.
type Strategy interface {
	Name() string
	Classify(pages []pagetext.Page) outline.Outline
}

// DefaultOrder is the strategy priority used when no order is configured.
var DefaultOrder = []string{NameTOC, NameFontSize, NameCasing, NameStructural}

// New returns the strategy registered under name.
func New(name string) (Strategy, error) {
	switch name {
	case NameTOC:
		return TOCStrategy{}, nil
	case NameFontSize:
		return FontSizeStrategy{Tolerance: pagetext.DefaultLineTolerance}, nil
	case NameCasing:
		return CasingStrategy{LinesPerPage: defaultLinesPerPage}, nil
	case NameStructural:
		return StructuralStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown heading strategy %q", name)
	}
}

// Classifier tries strategies in priority order.
type Classifier struct {
	strategies []Strategy
	log        *slog.Logger
}

// NewClassifier builds a classifier over the named strategies. An empty list
// selects DefaultOrder.
func NewClassifier(names []string, log *slog.Logger) (*Classifier, error) {
	if len(names) == 0 {
		names = DefaultOrder
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Classifier{log: log}
	for _, n := range names {
		s, err := New(n)
		if err != nil {
			return nil, err
		}
		c.strategies = append(c.strategies, s)
	}
	return c, nil
}

// NewClassifierWith builds a classifier over explicit strategy values.
func NewClassifierWith(log *slog.Logger, strategies ...Strategy) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{strategies: strategies, log: log}
}

// Strategies returns the configured strategy names in priority order.
func (c *Classifier) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Classify returns the first non-empty strategy result and the name of the
// strategy that produced it. An empty outline with an empty name means no
// strategy found anything, which is a valid result.
func (c *Classifier) Classify(pages []pagetext.Page) (outline.Outline, string) {
	for _, s := range c.strategies {
		out := outline.Filter(s.Classify(pages))
		if len(out) > 0 {
			c.log.Debug("heading strategy matched", "strategy", s.Name(), "headings", len(out))
			return out, s.Name()
		}
	}
	return outline.Outline{}, ""
}
