package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nlemma/numberguessr/internal/api/handler"
	"github.com/nlemma/numberguessr/internal/api/middleware"
	"github.com/nlemma/numberguessr/internal/api/response"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	LobbyLister       handler.LobbyLister
	LeaderboardReader handler.LeaderboardReader
	WSHandler         http.Handler
}

// NewRouter creates a new router with all routes configured
// Gameplay happens over the websocket endpoint; the REST surface is
// read-only (health, lobby listing, leaderboard)
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyLister)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardReader)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/lobbies", lobbyHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)

	// Websocket endpoint is mounted outside the API subrouter so that the
	// logging middleware does not wrap the hijacked connection
	r.Handle("/ws", cfg.WSHandler)

	return r
}

// healthHandler responds to health check requests
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
