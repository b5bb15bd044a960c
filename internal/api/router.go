package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/lanterngame/internal/api/handler"
	"github.com/mcoot/lanterngame/internal/api/middleware"
	"github.com/mcoot/lanterngame/internal/logger"
	basemw "github.com/mcoot/lanterngame/internal/middleware"
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
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *logger.Logger
	AdminToken         string
	AuthService        *auth.Service
	WalletService      *wallet.Service
	StationService     *station.Service
	TeamService        *team.Service
	ScoringService     *scoring.Service
	RoundService       *round.Service
	CredentialService  *credentials.Service
	HackingEngine      *hacking.Engine
	CalibrationTracker *calibration.Tracker
	Hub                *sse.Hub
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.WalletService)
	stationHandler := handler.NewStationHandler(cfg.StationService)
	teamHandler := handler.NewTeamHandler(cfg.TeamService, cfg.ScoringService)
	roundHandler := handler.NewRoundHandler(cfg.RoundService)
	credentialHandler := handler.NewCredentialHandler(cfg.CredentialService)
	hackHandler := handler.NewHackHandler(cfg.HackingEngine)
	calibrationHandler := handler.NewCalibrationHandler(cfg.CalibrationTracker)
	eventHandler := handler.NewEventHandler(cfg.Hub)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	adminMiddleware := middleware.Admin(cfg.AdminToken)

	authed := func(h http.HandlerFunc) http.Handler { return authMiddleware(h) }
	admin := func(h http.HandlerFunc) http.Handler { return adminMiddleware(h) }

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(basemw.Trace(cfg.Logger))
	api.Use(middleware.Recovery())
	api.Use(basemw.Logging())

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)
	api.Handle("/players/me", authed(playerHandler.GetMe)).Methods(http.MethodGet)
	api.Handle("/players/me/team", authed(playerHandler.JoinTeam)).Methods(http.MethodPost)
	api.Handle("/players/me/wallet", authed(playerHandler.GetWallet)).Methods(http.MethodGet)

	// Stations
	api.HandleFunc("/stations", stationHandler.List).Methods(http.MethodGet)
	api.Handle("/stations", admin(stationHandler.Create)).Methods(http.MethodPost)
	api.Handle("/stations/signals", admin(stationHandler.ResetSignals)).Methods(http.MethodPost)
	api.HandleFunc("/stations/{id:[0-9]+}", stationHandler.Get).Methods(http.MethodGet)
	api.Handle("/stations/{id:[0-9]+}", admin(stationHandler.Update)).Methods(http.MethodPatch)
	api.Handle("/stations/{id:[0-9]+}", admin(stationHandler.Delete)).Methods(http.MethodDelete)

	// Teams and scoreboard
	api.HandleFunc("/teams", teamHandler.List).Methods(http.MethodGet)
	api.Handle("/teams", admin(teamHandler.Create)).Methods(http.MethodPost)
	api.Handle("/teams/points/reset", admin(teamHandler.ResetPoints)).Methods(http.MethodPost)
	api.HandleFunc("/teams/{id:[0-9]+}", teamHandler.Get).Methods(http.MethodGet)
	api.Handle("/teams/{id:[0-9]+}", admin(teamHandler.Update)).Methods(http.MethodPatch)
	api.Handle("/teams/{id:[0-9]+}", admin(teamHandler.Delete)).Methods(http.MethodDelete)
	api.HandleFunc("/standings", teamHandler.Standings).Methods(http.MethodGet)

	// Round
	api.HandleFunc("/round", roundHandler.Get).Methods(http.MethodGet)
	api.Handle("/round", admin(roundHandler.Update)).Methods(http.MethodPatch)
	api.Handle("/round/start", admin(roundHandler.Start)).Methods(http.MethodPost)
	api.Handle("/round/stop", admin(roundHandler.Stop)).Methods(http.MethodPost)

	// Credential pool (admin only)
	api.Handle("/game-users", admin(credentialHandler.SeedGameUsers)).Methods(http.MethodPost)
	api.Handle("/game-users", admin(credentialHandler.ListGameUsers)).Methods(http.MethodGet)
	api.Handle("/fake-passwords", admin(credentialHandler.AddFakePasswords)).Methods(http.MethodPost)
	api.Handle("/fake-passwords", admin(credentialHandler.ListFakePasswords)).Methods(http.MethodGet)

	// Hacking
	api.Handle("/hacks", authed(hackHandler.Start)).Methods(http.MethodPost)
	api.Handle("/hacks/current", authed(hackHandler.Current)).Methods(http.MethodGet)
	api.Handle("/hacks/current/guess", authed(hackHandler.Guess)).Methods(http.MethodPost)
	api.Handle("/hacks/current/abort", authed(hackHandler.Abort)).Methods(http.MethodPost)

	// Calibration
	api.Handle("/calibrations", authed(calibrationHandler.Start)).Methods(http.MethodPost)
	api.Handle("/calibrations/active", authed(calibrationHandler.Active)).Methods(http.MethodGet)
	api.Handle("/calibrations/history", authed(calibrationHandler.History)).Methods(http.MethodGet)
	api.Handle("/calibrations/active/complete", authed(calibrationHandler.Complete)).Methods(http.MethodPost)
	api.Handle("/calibrations/active/cancel", authed(calibrationHandler.Cancel)).Methods(http.MethodPost)
	api.Handle("/admin/calibrations", admin(calibrationHandler.ListAll)).Methods(http.MethodGet)
	api.Handle("/admin/calibrations/{owner}", admin(calibrationHandler.Remove)).Methods(http.MethodDelete)

	// Change feed (spectators without accounts are allowed)
	api.Handle("/events", optionalAuthMiddleware(http.HandlerFunc(eventHandler.Stream))).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	return r
}
