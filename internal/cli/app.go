package cli

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/schemeqa/internal/catalog"
	"github.com/ppiankov/schemeqa/internal/llm"
	"github.com/ppiankov/schemeqa/internal/logging"
	"github.com/ppiankov/schemeqa/internal/model"
	"github.com/ppiankov/schemeqa/internal/pipeline"
	"github.com/ppiankov/schemeqa/internal/worker"
)

// session holds what every command that talks to a provider needs
type session struct {
	cfg       *model.Config
	logger    *zap.Logger
	provider  llm.Provider
	completer llm.Completer
}

// app adds the catalog and the answer pipeline
type app struct {
	*session
	catalog  *catalog.Catalog
	pipeline *pipeline.Pipeline
}

func newSession() (*session, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if cfg.Output.Verbose && logging.ParseLevel(level) > logging.ParseLevel("info") {
		level = "info"
	}
	logger := logging.New(level, cfg.Log.Format)

	provider, err := llm.NewProvider(llm.ConfigFromModel(*cfg))
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}

	var completer llm.Completer = provider
	if cfg.RateLimiting.CompletionsPerSecond > 0 {
		limiter := worker.NewLimiter(cfg.RateLimiting.CompletionsPerSecond, cfg.RateLimiting.BurstSize)
		completer = worker.NewThrottledCompleter(provider, limiter, provider.Name())
	}

	logger.Debug("provider ready",
		zap.String("provider", provider.Name()),
		zap.String("model", cfg.LLM.Model),
	)

	return &session{cfg: cfg, logger: logger, provider: provider, completer: completer}, nil
}

func newApp() (*app, error) {
	rt, err := newSession()
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(rt.cfg, rt.logger)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(rt.completer, cat, rt.logger)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	return &app{session: rt, catalog: cat, pipeline: p}, nil
}

// loadCatalog loads the scheme table and warns about category entries that
// have no row in it
func loadCatalog(cfg *model.Config, logger *zap.Logger) (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	for _, name := range cat.Dangling() {
		logger.Warn("category references a scheme missing from the table", zap.String("scheme", name))
	}
	logger.Debug("catalog loaded",
		zap.Int("schemes", cat.Len()),
		zap.Int("categories", len(cat.Categories())),
	)
	return cat, nil
}

// loadCatalogOnly is for commands that never call a provider
func loadCatalogOnly() (*model.Config, *catalog.Catalog, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = logger.Sync() }()

	cat, err := loadCatalog(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cat, nil
}
