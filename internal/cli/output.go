package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case LobbyList:
		o.printLobbyList(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// LobbyList response type (matches API)
type LobbyList struct {
	Lobbies []Lobby `json:"lobbies"`
}

// Lobby response type
type Lobby struct {
	Code        string `json:"code"`
	PlayerCount int    `json:"player_count"`
	HostName    string `json:"host_name"`
}

// Leaderboard response type
type Leaderboard struct {
	Entries []LeaderboardRow `json:"entries"`
}

// LeaderboardRow response type
type LeaderboardRow struct {
	DisplayName string `json:"display_name"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printLobbyList(l LobbyList) {
	if len(l.Lobbies) == 0 {
		fmt.Println("No open lobbies")
		return
	}
	fmt.Printf("Open lobbies (%d):\n", len(l.Lobbies))
	for _, lobby := range l.Lobbies {
		fmt.Printf("  %s - hosted by %s (%d/2 players)\n", lobby.Code, lobby.HostName, lobby.PlayerCount)
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Entries) == 0 {
		fmt.Println("Leaderboard is empty")
		return
	}
	fmt.Printf("%-4s %-24s %6s %8s\n", "#", "Player", "Wins", "Losses")
	for i, e := range l.Entries {
		fmt.Printf("%-4d %-24s %6d %8d\n", i+1, e.DisplayName, e.Wins, e.Losses)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
