package model

// RoomSnapshot is the per-viewer wire view of a room. The viewer's own
// secret number is included; the opponent's is reduced to a has-picked
// flag so the number itself never crosses the wire.
type RoomSnapshot struct {
	Code     RoomCode         `json:"code"`
	IsPublic bool             `json:"is_public"`
	HostName string           `json:"host_name"`
	Settings SettingsSnapshot `json:"settings"`
	Players  []PlayerSnapshot `json:"players"`
	Status   RoomStatus       `json:"status"`
	Turn     ConnectionID     `json:"turn,omitempty"`
	Winner   string           `json:"winner,omitempty"`
}

// SettingsSnapshot mirrors Settings on the wire.
type SettingsSnapshot struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PlayerSnapshot is one seat as seen by a particular viewer.
type PlayerSnapshot struct {
	ConnectionID ConnectionID    `json:"connection_id"`
	DisplayName  string          `json:"display_name"`
	HasPicked    bool            `json:"has_picked"`
	SecretNumber *int            `json:"secret_number,omitempty"` // viewer's own seat only
	HasUsedLie   bool            `json:"has_used_lie"`
	Guesses      []GuessSnapshot `json:"guesses"`
}

// GuessSnapshot is one recorded guess on the wire.
type GuessSnapshot struct {
	Value     int          `json:"value"`
	Feedback  Feedback     `json:"feedback"`
	WasLie    bool         `json:"was_lie"`
	Timestamp int64        `json:"timestamp"` // unix milliseconds
	Author    ConnectionID `json:"author"`
}

// Snapshot builds the view of the room for one viewer. It is the single
// place the secrecy rule is enforced: every broadcast goes through here.
func (r *Room) Snapshot(viewer ConnectionID) RoomSnapshot {
	snap := RoomSnapshot{
		Code:     r.Code,
		IsPublic: r.IsPublic,
		HostName: r.HostName,
		Settings: SettingsSnapshot{Min: r.Settings.Min, Max: r.Settings.Max},
		Players:  make([]PlayerSnapshot, 0, len(r.Players)),
		Status:   r.Status,
	}
	if r.Status == RoomStatusPlaying {
		snap.Turn = r.TurnConnectionID
	}
	if r.Status == RoomStatusFinished {
		snap.Winner = r.WinnerName
	}

	for i := range r.Players {
		p := &r.Players[i]
		ps := PlayerSnapshot{
			ConnectionID: p.ConnectionID,
			DisplayName:  p.DisplayName,
			HasPicked:    p.HasPicked(),
			HasUsedLie:   p.HasUsedLie,
			Guesses:      make([]GuessSnapshot, 0, len(p.Guesses)),
		}
		if p.ConnectionID == viewer && p.SecretNumber != nil {
			n := *p.SecretNumber
			ps.SecretNumber = &n
		}
		for _, g := range p.Guesses {
			ps.Guesses = append(ps.Guesses, GuessSnapshot{
				Value:     g.Value,
				Feedback:  g.Feedback,
				WasLie:    g.WasLie,
				Timestamp: g.Time.UnixMilli(),
				Author:    g.Author,
			})
		}
		snap.Players = append(snap.Players, ps)
	}

	return snap
}
