package app

import (
	"context"
	"fmt"

	"github.com/thefledgedhurricane/journal-quality-analyzer/config"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/domain"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/infrastructure/cache"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/infrastructure/dataset"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/infrastructure/gemini"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/infrastructure/scopus"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/logging"
	"github.com/thefledgedhurricane/journal-quality-analyzer/internal/usecase"
)

// App is the wired engine shared by the HTTP server and the CLI
type App struct {
	Index      *usecase.CatalogIndex
	Matcher    *usecase.MatchingService
	Classifier *usecase.PredatoryClassifier
	Aggregator *usecase.AggregationService
	Builder    *usecase.ResultBuilder

	store cache.Store
}

// New loads the reference data and builds every service from cfg.
// Reference-data failures are returned as-is and are fatal to startup.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	public := dataset.NewPublicDataCache(&dataset.FileLoader{
		CatalogPath:    cfg.Dataset.CatalogPath,
		JournalsPath:   cfg.Dataset.JournalsPath,
		PublishersPath: cfg.Dataset.PublishersPath,
	})
	data, err := public.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	index, err := usecase.NewCatalogIndex(data.Entries)
	if err != nil {
		return nil, fmt.Errorf("build catalog index: %w", err)
	}
	if d := index.Duplicates(); d > 0 {
		logging.Warn("duplicate catalog titles dropped", "component", "app", "count", d)
	}

	classifier := usecase.NewPredatoryClassifier(data.PredatoryJournals, data.PredatoryPublishers)

	matcher := usecase.NewMatchingService(index, usecase.MatchConfig{
		Floor:              cfg.Matching.Floor,
		EditWeight:         cfg.Matching.EditWeight,
		TokenWeight:        cfg.Matching.TokenWeight,
		EnablePruning:      cfg.Matching.EnablePruning,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	store, err := cache.Open(ctx, cache.Options{
		Type:            cfg.Cache.Type,
		SQLitePath:      cfg.Cache.SQLitePath,
		PostgresURL:     cfg.Cache.PostgresURL,
		CleanupInterval: cfg.Cache.CleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("open evidence cache: %w", err)
	}
	var evidenceCache domain.CacheRepository
	if store != nil {
		evidenceCache = store
	}

	scopusClient := scopus.NewClient(scopus.Config{
		BaseURL:       cfg.Scopus.BaseURL,
		Timeout:       cfg.Scopus.Timeout,
		RatePerSecond: cfg.Scopus.RatePerSecond,
		Burst:         cfg.Scopus.Burst,
	})
	scopusClient.SetDebug(cfg.Scopus.Debug)

	geminiClient := gemini.NewClient(gemini.Config{
		BaseURL:       cfg.Gemini.BaseURL,
		Model:         cfg.Gemini.Model,
		Timeout:       cfg.Gemini.Timeout,
		RatePerSecond: cfg.Gemini.RatePerSecond,
		Burst:         cfg.Gemini.Burst,
	})
	geminiClient.SetDebug(cfg.Gemini.Debug)

	aggregator := usecase.NewAggregationService(matcher, classifier, scopusClient, geminiClient, evidenceCache,
		usecase.AggregationConfig{
			TopK:                  cfg.Matching.TopK,
			IndexingTimeout:       cfg.Aggregation.IndexingTimeout,
			ExtractionTimeout:     cfg.Aggregation.ExtractionTimeout,
			CacheTTL:              cfg.Cache.TTL,
			MaxConcurrentJournals: cfg.Aggregation.MaxConcurrentJournals,
		})

	journals, publishers := classifier.Sizes()
	logging.Info("engine ready",
		"component", "app",
		"catalog", index.Len(),
		"categories", len(index.Categories()),
		"predatory_journals", journals,
		"predatory_publishers", publishers,
		"cache", cfg.Cache.Type,
		"floor", matcher.Floor(),
	)

	return &App{
		Index:      index,
		Matcher:    matcher,
		Classifier: classifier,
		Aggregator: aggregator,
		Builder:    usecase.NewResultBuilder(),
		store:      store,
	}, nil
}

// Close releases the evidence cache
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	if err != nil {
		return fmt.Errorf("close evidence cache: %w", err)
	}
	return nil
}
