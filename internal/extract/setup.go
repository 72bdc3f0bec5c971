package extract

import (
	"log/slog"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/embed"
	"github.com/dgallion1/docoutline/internal/reconcile"
	"github.com/dgallion1/docoutline/internal/rescue"
)

// NewFromConfig wires an engine from process configuration and the rules
// file. Rescue is disabled, with a warning, when its tools are unavailable.
func NewFromConfig(cfg config.Config, rules config.Rules, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}

	emb := embed.NewService(embed.Config{
		BaseURL:   cfg.EmbeddingBaseURL,
		APIKey:    cfg.EmbeddingAPIKey,
		Model:     cfg.EmbeddingModel,
		Dimension: cfg.EmbeddingDimension,
		Timeout:   cfg.EmbeddingTimeout,
		Logger:    log,
	})
	rec := reconcile.New(reconcile.Config{
		RequiredSections: rules.RequiredSections,
		SectionPages:     rules.RequiredSectionPages,
		Threshold:        cfg.DedupThreshold,
	}, emb, log)

	var rescuer *rescue.Rescuer
	if cfg.RescueEnabled {
		rescuer = newRescuer(cfg, log)
	}

	dropEchoes := false
	if rules.DropTitleEchoes != nil {
		dropEchoes = *rules.DropTitleEchoes
	}
	return NewEngine(Config{
		Strategies:        rules.Strategies,
		DropTitleEchoes:   dropEchoes,
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
	}, rec, rescuer, NewLatencyStats(time.Hour), log)
}

func newRescuer(cfg config.Config, log *slog.Logger) *rescue.Rescuer {
	renderer, err := rescue.NewPopplerRenderer(cfg.RescueDPI)
	if err != nil {
		log.Warn("ocr rescue disabled", "reason", err)
		return nil
	}
	ocr, err := rescue.NewTesseract()
	if err != nil {
		log.Warn("ocr rescue disabled", "reason", err)
		return nil
	}
	return rescue.New(rescue.Config{
		Timeout:   cfg.RescueTimeout,
		Languages: cfg.OCRLanguages,
	}, renderer, ocr, log)
}
