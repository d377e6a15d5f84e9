package model

// LeaderboardEntry is one player's cumulative record. Totals only ever
// grow; DisplayName tracks the latest name seen for the identity.
type LeaderboardEntry struct {
	Identity    Identity
	DisplayName string
	Wins        int
	Losses      int
}

// LobbySummary is the matchmaking view of one public room still waiting
// for an opponent.
type LobbySummary struct {
	Code        RoomCode
	PlayerCount int
	HostName    string
}
