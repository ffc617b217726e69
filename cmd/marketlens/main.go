package main

import (
	"os"
	"time"

	"MarketLens/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "marketlens",
		Short:         "Stock price dashboard with a 7-day ARIMA forecast",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultPath, "path to the YAML config file")

	root.AddCommand(newServeCmd(), newForecastCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("marketlens failed")
		os.Exit(1)
	}
}

// loadConfig reads and validates the config, then configures the global
// logger from it.
func loadConfig() (*config.Config, error) {
	setupLogger("info")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	setupLogger(cfg.Log.Level)
	return cfg, nil
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}
