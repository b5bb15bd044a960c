package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/lanterngame/internal/api"
	"github.com/mcoot/lanterngame/internal/config"
	"github.com/mcoot/lanterngame/internal/factory"
	"github.com/mcoot/lanterngame/internal/logger"
)

const sessionSweepInterval = 10 * time.Minute

func main() {
	if err := newServerCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lantern-server",
		Short:        "Lantern Network game server",
		SilenceUsage: true,
	}
	flags := config.BindFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flags)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return run(cfg)
	}
	return cmd
}

func run(cfg *config.Config) error {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, "server", level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Str("storage", cfg.Storage.Type).Msg("failed to create application")
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing application")
		}
	}()

	if cfg.Auth.AdminToken == "" {
		log.Warn().Msg("no admin token configured, admin routes are disabled")
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:             log,
		AdminToken:         cfg.Auth.AdminToken,
		AuthService:        app.AuthService,
		WalletService:      app.WalletService,
		StationService:     app.StationService,
		TeamService:        app.TeamService,
		ScoringService:     app.ScoringService,
		RoundService:       app.RoundService,
		CredentialService:  app.CredentialService,
		HackingEngine:      app.HackingEngine,
		CalibrationTracker: app.CalibrationTracker,
		Hub:                app.Hub,
	})

	server := api.NewServer(router, cfg.Server, log)

	go sweepSessions(ctx, app)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info().
		Str("addr", server.Addr()).
		Str("storage", cfg.Storage.Type).
		Msg("server started")

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server error")
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		// SSE streams only end once the hub is closed
		app.Hub.Close()
		if err := server.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("shutdown error")
			return err
		}
	}

	log.Info().Msg("server stopped")
	return nil
}

func sweepSessions(ctx context.Context, app *factory.App) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.AuthService.CleanExpiredSessions()
		}
	}
}
