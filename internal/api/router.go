package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamematch/internal/api/handler"
	"github.com/mcoot/gamematch/internal/api/middleware"
	"github.com/mcoot/gamematch/internal/api/response"
	"github.com/mcoot/gamematch/internal/services/history"
	"github.com/mcoot/gamematch/internal/services/lifecycle"
	"github.com/mcoot/gamematch/internal/services/match"
	"github.com/mcoot/gamematch/internal/services/player"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger              *slog.Logger
	PlayerService       *player.Service
	MatchService        *match.Service
	LifecycleController *lifecycle.Controller
	HistoryService      *history.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.PlayerService, cfg.Logger)
	matchHandler := handler.NewMatchHandler(cfg.MatchService, cfg.LifecycleController, cfg.HistoryService, cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	useCommonMiddleware(api, cfg.Logger)

	// Player routes
	players := api.PathPrefix("/players").Subrouter()
	players.HandleFunc("", playerHandler.List).Methods(http.MethodGet)
	players.HandleFunc("", playerHandler.Register).Methods(http.MethodPost)
	players.HandleFunc("/{id}", playerHandler.Get).Methods(http.MethodGet)
	players.HandleFunc("/{id}", playerHandler.Update).Methods(http.MethodPut, http.MethodPatch)
	players.HandleFunc("/{id}", playerHandler.Delete).Methods(http.MethodDelete)

	// Match routes; fixed segments are registered before /{matchId}
	matches := api.PathPrefix("/matches").Subrouter()
	matches.HandleFunc("", matchHandler.List).Methods(http.MethodGet)
	matches.HandleFunc("", matchHandler.Create).Methods(http.MethodPost)
	matches.HandleFunc("/open", matchHandler.ListOpen).Methods(http.MethodGet)
	matches.HandleFunc("/history/{playerId}", matchHandler.History).Methods(http.MethodGet)
	matches.HandleFunc("/{matchId}", matchHandler.Get).Methods(http.MethodGet)
	matches.HandleFunc("/{matchId}", matchHandler.Delete).Methods(http.MethodDelete)

	// Lifecycle routes
	matches.HandleFunc("/{matchId}/join/{playerId}", matchHandler.Join).Methods(http.MethodPost)
	matches.HandleFunc("/{matchId}/leave/{playerId}", matchHandler.Leave).Methods(http.MethodPost)
	matches.HandleFunc("/{matchId}/start", matchHandler.Start).Methods(http.MethodPost)
	matches.HandleFunc("/{matchId}/finish", matchHandler.Finish).Methods(http.MethodPost)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

// useCommonMiddleware installs the request chain. Logging wraps Recovery so
// requests that panic are still logged with their 500 status.
func useCommonMiddleware(r *mux.Router, logger *slog.Logger) {
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
