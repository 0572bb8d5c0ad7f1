package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"journalclub/internal/config"
	"journalclub/internal/digest"
	"journalclub/internal/events"
	"journalclub/internal/extract"
	"journalclub/internal/feeds"
	"journalclub/internal/logger"
	"journalclub/internal/metadata"
	"journalclub/internal/pipeline"
	"journalclub/internal/redisclient"
)

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logger.New(cfg.App.LogLevel, cfg.App.PrettyLog)
}

// newEngine wires a pipeline engine from configuration. Enrichment and
// the abstract summarizer are optional; everything else always runs.
func newEngine(cfg config.Config, log *zap.Logger) (*pipeline.Engine, error) {
	dicts := extract.Defaults()
	if cfg.Extract.DictionariesFile != "" {
		var err error
		dicts, err = extract.LoadFile(cfg.Extract.DictionariesFile)
		if err != nil {
			return nil, fmt.Errorf("load dictionaries: %w", err)
		}
	}
	extractor, err := extract.New(dicts)
	if err != nil {
		return nil, err
	}

	var enricher *metadata.Enricher
	if !cfg.Metadata.Disabled {
		enricher = metadata.NewEnricher(metadata.EnricherConfig{
			CrossrefBaseURL: cfg.Metadata.CrossrefBaseURL,
			OpenAlexBaseURL: cfg.Metadata.OpenAlexBaseURL,
			Mailto:          cfg.Metadata.Mailto,
			MinInterval:     cfg.MetaMinInterval(),
		}, openMetaCache(cfg), log)
	}

	var summarizer digest.Summarizer
	if s := digest.NewOpenAISummarizer(digest.SummarizerConfig{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
	}); s != nil {
		summarizer = s
	}

	return &pipeline.Engine{
		Config:    &cfg,
		Fetcher:   feeds.NewFetcher(cfg.FeedTimeout(), log),
		Enricher:  enricher,
		Extractor: extractor,
		Writer:    digest.NewWriter(cfg.Digest.OutboxDir, cfg.Digest.Title, summarizer, log),
		Sink:      events.NewJSONLSink(cfg.EventsPath()),
		Log:       log,
	}, nil
}

// openMetaCache picks the configured metadata cache backend.
func openMetaCache(cfg config.Config) metadata.Cache {
	if cfg.Metadata.CacheBackend == "redis" {
		return metadata.NewRedisCache(redisclient.New(cfg.Redis), cfg.MetaCacheTTL())
	}
	return metadata.OpenFileCache(cfg.MetaCachePath(), cfg.MetaCacheTTL())
}
