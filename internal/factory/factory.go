package factory

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcoot/lanterngame/internal/config"
	"github.com/mcoot/lanterngame/internal/dependencies/clock"
	"github.com/mcoot/lanterngame/internal/dependencies/random"
	"github.com/mcoot/lanterngame/internal/events"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/services/auth"
	"github.com/mcoot/lanterngame/internal/services/calibration"
	"github.com/mcoot/lanterngame/internal/services/credentials"
	"github.com/mcoot/lanterngame/internal/services/hacking"
	"github.com/mcoot/lanterngame/internal/services/round"
	"github.com/mcoot/lanterngame/internal/services/scoring"
	"github.com/mcoot/lanterngame/internal/services/station"
	"github.com/mcoot/lanterngame/internal/services/team"
	"github.com/mcoot/lanterngame/internal/services/wallet"
	"github.com/mcoot/lanterngame/internal/sse"
	"github.com/mcoot/lanterngame/internal/storage"
	"github.com/mcoot/lanterngame/internal/storage/memory"
	"github.com/mcoot/lanterngame/internal/storage/postgres"
	redisstorage "github.com/mcoot/lanterngame/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Change feed
	Hub       *sse.Hub
	Publisher events.Publisher

	// Services
	AuthService        *auth.Service
	WalletService      *wallet.Service
	StationService     *station.Service
	TeamService        *team.Service
	RoundService       *round.Service
	CredentialService  *credentials.Service
	ScoringService     *scoring.Service
	HackingEngine      *hacking.Engine
	CalibrationTracker *calibration.Tracker
}

// New opens the configured storage, wires every service and bootstraps the
// singleton records. The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	store, err := openStorage(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	app := newWithDependencies(store, clock.New(), random.New(), cfg.Game, cfg.Auth, log)

	if err := app.RoundService.Bootstrap(ctx); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	go app.Hub.Run()
	return app, nil
}

func openStorage(ctx context.Context, cfg config.Storage, log *logger.Logger) (storage.Storage, error) {
	switch cfg.Type {
	case "", config.StorageMemory:
		return memory.New(), nil
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		if cfg.RedisPoolSize > 0 {
			redisCfg.PoolSize = cfg.RedisPoolSize
		}
		return redisstorage.New(redisCfg)
	case config.StoragePostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("postgres storage requires a DSN")
		}
		pgCfg := postgres.DefaultConfig()
		pgCfg.DSN = cfg.PostgresDSN
		pgCfg.Migrate = cfg.PostgresMigrate
		return postgres.Open(ctx, pgCfg, log.WithStr("component", "postgres"))
	default:
		return nil, fmt.Errorf("invalid storage type %q", cfg.Type)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	gameCfg config.Game,
	authCfg config.Auth,
	log *logger.Logger,
) *App {
	hub := sse.NewHub(log)
	publisher := sse.NewBroadcaster(hub, log)

	authService := auth.New(store, clk, authCfg, log)
	walletService := wallet.New(store, log)
	stationService := station.New(store, publisher, clk, gameCfg, log)
	teamService := team.New(store, publisher, clk, log)
	roundService := round.New(store, publisher, clk, log)
	credentialService := credentials.New(store, log)
	scoringService := scoring.New(store, publisher, clk, gameCfg, log)
	mixer := credentials.NewRandomMixer(store, rnd, gameCfg.HackingDecoyAmount)
	engine := hacking.NewEngine(store, stationService, roundService, mixer, authService, scoringService, clk, gameCfg, log)
	tracker := calibration.NewTracker(store, walletService, clk, rnd, gameCfg, log)

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		Hub:                hub,
		Publisher:          publisher,
		AuthService:        authService,
		WalletService:      walletService,
		StationService:     stationService,
		TeamService:        teamService,
		RoundService:       roundService,
		CredentialService:  credentialService,
		ScoringService:     scoringService,
		HackingEngine:      engine,
		CalibrationTracker: tracker,
	}
}

// Close stops the change feed and releases storage
func (a *App) Close() error {
	a.Hub.Close()
	return a.Storage.Close()
}
