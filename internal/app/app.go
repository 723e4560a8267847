package app

import (
	"context"
	"fmt"
	"log/slog"

	"NewsCorroborator/internal/config"
	"NewsCorroborator/internal/confidence"
	"NewsCorroborator/internal/corroboration"
	"NewsCorroborator/internal/fusion"
	"NewsCorroborator/internal/infrastructure/embedding"
	"NewsCorroborator/internal/infrastructure/scheduler"
	"NewsCorroborator/internal/infrastructure/storage"
	"NewsCorroborator/internal/logging"
	"NewsCorroborator/internal/ports"
	"NewsCorroborator/internal/similarity"
	"NewsCorroborator/internal/usecase"
	"NewsCorroborator/internal/worker"
)

// Application wires configuration to use cases and lifecycle orchestration.
// Everything is constructed once here and passed by reference; there are no
// package-level singletons.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.PostgresStore
	analyzer *usecase.Analyzer
	batch    *usecase.BatchScheduler
}

// New builds the application. A store connectivity failure is returned to
// the caller and must stop the process.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	chain := buildSimilarityChain(cfg, baseLogger)
	matcher := corroboration.NewMatcher(
		chain,
		corroboration.NewPrefilter(),
		cfg.Corroboration.MaxCandidates,
		cfg.Corroboration.WindowDays,
		logging.ForComponent(baseLogger, "matcher"),
	)
	engine := fusion.NewEngine()

	analyzer := usecase.NewAnalyzer(usecase.AnalyzerDeps{
		Matcher:    matcher,
		Calculator: confidence.NewCalculator(),
		Engine:     engine,
		Evidence:   store,
		Priors:     store,
		Logger:     logging.ForComponent(baseLogger, "analyzer"),
	})

	batchWorker := worker.NewBatchWorker(store, engine, cfg.Worker.ClaimLimit,
		logging.ForComponent(baseLogger, "worker"))
	batch := usecase.NewBatchScheduler(
		scheduler.NewTickerScheduler(cfg.Worker.Interval.Std()),
		batchWorker,
		logging.ForComponent(baseLogger, "batch"),
	)

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		store:    store,
		analyzer: analyzer,
		batch:    batch,
	}, nil
}

// buildSimilarityChain assembles the fallback chain. The embedding stage is
// present only when a provider is configured; its handle is built lazily on
// first use.
func buildSimilarityChain(cfg config.Config, logger *slog.Logger) *similarity.Chain {
	backends := []similarity.Backend{}

	if cfg.Embedding.Provider != "" {
		embedder := embedding.NewLazy(func() ports.Embedder {
			switch cfg.Embedding.Provider {
			case "cohere":
				return embedding.NewCohereEmbedder(cfg.Embedding.APIKey, cfg.Embedding.Model)
			case "http":
				return embedding.NewHTTPEmbedder(cfg.Embedding.Endpoint, cfg.Embedding.APIKey, cfg.Embedding.Model)
			default:
				return nil
			}
		})
		backends = append(backends,
			similarity.NewEmbeddingBackend(embedder, cfg.Embedding.BatchSize, 0))
	}

	backends = append(backends, similarity.NewLexicalBackend(), similarity.NewFuzzyBackend())
	return similarity.NewChain(logging.ForComponent(logger, "similarity"), backends...)
}

// Analyzer exposes the request-time analysis usecase to outer surfaces.
func (a *Application) Analyzer() *usecase.Analyzer { return a.analyzer }

// Run starts the batch scheduler and blocks until the context is canceled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.batch.Start(ctx); err != nil {
		return fmt.Errorf("start batch scheduler: %w", err)
	}
	a.logger.Info("batch worker scheduled", "interval", a.cfg.Worker.Interval.Std())

	<-ctx.Done()
	return a.Shutdown(context.Background())
}

// Shutdown stops the scheduler and closes the store.
func (a *Application) Shutdown(ctx context.Context) error {
	if err := a.batch.Stop(ctx); err != nil {
		return fmt.Errorf("stop batch scheduler: %w", err)
	}
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
