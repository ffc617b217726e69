package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"MarketLens/internal/collector"
	"MarketLens/internal/config"
	"MarketLens/internal/dashboard"
	"MarketLens/internal/forecast"
	"MarketLens/internal/recorder"
	"MarketLens/internal/session"

	"github.com/rs/zerolog/log"
)

func buildFetcher(cfg *config.Config) collector.Fetcher {
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "mock":
		fetcher = &collector.MockFetcher{Price: cfg.DataSource.MockPrice}
	default:
		fetcher = collector.NewYahooFetcher(collector.YahooOptions{
			BaseURL:        cfg.DataSource.BaseURL,
			ProxyURL:       cfg.Proxy,
			Timeout:        cfg.DataSource.Timeout,
			RequestsPerSec: cfg.DataSource.RequestsPerSec,
		})
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")
	return fetcher
}

// buildRecorder opens the configured run history store. A store that
// cannot be opened degrades to the noop recorder.
func buildRecorder(ctx context.Context, cfg *config.Config) recorder.Recorder {
	switch cfg.Database.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Database.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Warn().Err(err).Msg("create sqlite directory failed, using noop recorder")
				return recorder.NewNoopRecorder()
			}
		}
		r, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop recorder")
			return recorder.NewNoopRecorder()
		}
		return r
	case "postgres":
		r, err := recorder.NewPostgresRecorder(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			log.Warn().Err(err).Msg("init postgres recorder failed, using noop recorder")
			return recorder.NewNoopRecorder()
		}
		return r
	default:
		return recorder.NewNoopRecorder()
	}
}

func buildSessions(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.Session.Backend == "redis" {
		s, err := session.NewRedisStore(ctx, cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB, cfg.Session.TTL)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		return s, nil
	}
	return session.NewMemoryStore(cfg.Session.TTL), nil
}

func buildPipeline(cfg *config.Config, rec recorder.Recorder) *dashboard.Pipeline {
	fc := forecast.NewForecaster(forecast.AutoConfig{
		MaxP:      cfg.Forecast.MaxP,
		MaxQ:      cfg.Forecast.MaxQ,
		MaxD:      cfg.Forecast.MaxD,
		MaxModels: cfg.Forecast.MaxModels,
	})
	return dashboard.NewPipeline(collector.NewCollector(buildFetcher(cfg)), fc, rec)
}
