package handler

import (
	"context"
	"net/http"

	"github.com/nlemma/numberguessr/internal/api/apierr"
	"github.com/nlemma/numberguessr/internal/api/response"
	"github.com/nlemma/numberguessr/internal/model"
)

// LeaderboardReader provides the global win/loss standings
type LeaderboardReader interface {
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	reader LeaderboardReader
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(reader LeaderboardReader) *LeaderboardHandler {
	return &LeaderboardHandler{reader: reader}
}

// Get handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	entries, err := h.reader.Leaderboard(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(entries))
}
