package handler

import (
	"net/http"

	"github.com/nlemma/numberguessr/internal/api/response"
	"github.com/nlemma/numberguessr/internal/model"
)

// LobbyLister provides the set of joinable public rooms
type LobbyLister interface {
	ListLobbies() []model.LobbySummary
}

// LobbyHandler handles lobby listing requests
type LobbyHandler struct {
	lister LobbyLister
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(lister LobbyLister) *LobbyHandler {
	return &LobbyHandler{lister: lister}
}

// List handles GET /api/v1/lobbies
func (h *LobbyHandler) List(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.LobbyListFromModel(h.lister.ListLobbies()))
}
