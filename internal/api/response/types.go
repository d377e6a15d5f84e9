package response

import (
	"github.com/nlemma/numberguessr/internal/model"
)

// Lobby represents a joinable public room in API responses
type Lobby struct {
	Code        string `json:"code"`
	PlayerCount int    `json:"player_count"`
	HostName    string `json:"host_name"`
}

// LobbyFromModel converts model.LobbySummary to a response Lobby
func LobbyFromModel(s model.LobbySummary) Lobby {
	return Lobby{
		Code:        string(s.Code),
		PlayerCount: s.PlayerCount,
		HostName:    s.HostName,
	}
}

// LobbyList is the response for the lobby listing endpoint
type LobbyList struct {
	Lobbies []Lobby `json:"lobbies"`
}

// LobbyListFromModel converts a slice of model.LobbySummary
func LobbyListFromModel(summaries []model.LobbySummary) LobbyList {
	lobbies := make([]Lobby, len(summaries))
	for i, s := range summaries {
		lobbies[i] = LobbyFromModel(s)
	}
	return LobbyList{Lobbies: lobbies}
}

// LeaderboardRow represents a single leaderboard entry in API responses
// Player identities are never exposed, only display names
type LeaderboardRow struct {
	DisplayName string `json:"display_name"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}

// Leaderboard is the response for the leaderboard endpoint
type Leaderboard struct {
	Entries []LeaderboardRow `json:"entries"`
}

// LeaderboardFromModel converts a slice of model.LeaderboardEntry
func LeaderboardFromModel(entries []model.LeaderboardEntry) Leaderboard {
	rows := make([]LeaderboardRow, len(entries))
	for i, e := range entries {
		rows[i] = LeaderboardRow{
			DisplayName: e.DisplayName,
			Wins:        e.Wins,
			Losses:      e.Losses,
		}
	}
	return Leaderboard{Entries: rows}
}
