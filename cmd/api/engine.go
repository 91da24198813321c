package main

import (
	"github.com/cockroachdb/errors"
	"github.com/sangkips/schoolfee-receipts/internal/config"
	"github.com/sangkips/schoolfee-receipts/pkg/logger"
	"github.com/sangkips/schoolfee-receipts/pkg/render"
)

// newEngine builds the configured document engine. A missing Chrome binary
// degrades to printable HTML; any other failure is fatal to startup.
func newEngine(cfg *config.RenderConfig, log *logger.Logger) (render.Engine, error) {
	engine, err := render.NewEngineFromConfig(cfg.Engine, cfg.ChromePath, cfg.Timeout)
	if errors.Is(err, render.ErrChromeNotFound) {
		log.Warnw("chrome not found, serving printable HTML", "engine", cfg.Engine, "error", err)
		return render.NewHTMLEngine(), nil
	}
	if err != nil {
		return nil, err
	}
	return engine, nil
}
