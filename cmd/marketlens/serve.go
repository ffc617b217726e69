package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"MarketLens/internal/scheduler"
	"MarketLens/internal/server"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info().Msg("MarketLens starting")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec := buildRecorder(ctx, cfg)
	defer rec.Close()

	sessions, err := buildSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer sessions.Close()

	sched := scheduler.NewScheduler(ctx, sessions, rec, time.Duration(cfg.Database.RetentionDays)*24*time.Hour)
	if err := sched.RegisterAll(cfg.Session.SweepCron, cfg.Database.PruneCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	handler := server.NewHandler(buildPipeline(cfg, rec), sessions, cfg.Server.DefaultSymbol)
	srv := server.NewServer(server.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, handler.Routes())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("MarketLens stopped")
	return nil
}
