package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var (
		joinCode string
		isPublic bool
		min      int
		max      int
	)

	cmd := &cobra.Command{
		Use:   "play <display-name>",
		Short: "Play a game interactively over the websocket",
		Long: `Connect to the server's websocket endpoint and play a game.

Without --join a new room is created and its code printed; share the code
with your opponent. With --join you take the second seat in an existing room.

In-session commands:
  pick <n>    choose your secret number
  guess <n>   guess the opponent's number
  lie <n>     guess and invert the feedback (once per game)
  lobbies     list joinable public rooms
  top         show the leaderboard
  quit        leave the game

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(args[0], joinCode, isPublic, min, max)
		},
	}

	cmd.Flags().StringVar(&joinCode, "join", "", "Join an existing room by code")
	cmd.Flags().BoolVar(&isPublic, "public", false, "List the new room in the public lobby")
	cmd.Flags().IntVar(&min, "min", 1, "Lower bound of the guessing range")
	cmd.Flags().IntVar(&max, "max", 100, "Upper bound of the guessing range")

	return cmd
}

// serverFrame is the union of everything the server can send
type serverFrame struct {
	Type         string           `json:"type"`
	ConnectionID string           `json:"connection_id,omitempty"`
	Identity     string           `json:"identity,omitempty"`
	Room         *roomView        `json:"room,omitempty"`
	Lobbies      []Lobby          `json:"lobbies,omitempty"`
	Entries      []LeaderboardRow `json:"entries,omitempty"`
	RoomCode     string           `json:"room_code,omitempty"`
	Error        *APIError        `json:"error,omitempty"`
}

// roomView mirrors the server's per-viewer room snapshot
type roomView struct {
	Code     string `json:"code"`
	IsPublic bool   `json:"is_public"`
	HostName string `json:"host_name"`
	Settings struct {
		Min int `json:"min"`
		Max int `json:"max"`
	} `json:"settings"`
	Players []struct {
		ConnectionID string `json:"connection_id"`
		DisplayName  string `json:"display_name"`
		HasPicked    bool   `json:"has_picked"`
		SecretNumber *int   `json:"secret_number,omitempty"`
		HasUsedLie   bool   `json:"has_used_lie"`
		Guesses      []struct {
			Value    int    `json:"value"`
			Feedback string `json:"feedback"`
			WasLie   bool   `json:"was_lie"`
			Author   string `json:"author"`
		} `json:"guesses"`
	} `json:"players"`
	Status string `json:"status"`
	Turn   string `json:"turn,omitempty"`
	Winner string `json:"winner,omitempty"`
}

// session holds the state of one interactive game
type session struct {
	conn         *websocket.Conn
	connectionID string
	roomCode     string
	lastStatus   string
}

func runPlay(displayName, joinCode string, isPublic bool, min, max int) error {
	token, err := cfg.EnsureToken()
	if err != nil {
		return fmt.Errorf("failed to set up identity token: %w", err)
	}

	wsURL, err := websocketURL(cfg.ServerURL, token)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	s := &session{conn: conn}

	// The server greets every connection before accepting commands
	var welcome serverFrame
	if err := conn.ReadJSON(&welcome); err != nil {
		return fmt.Errorf("failed to read welcome: %w", err)
	}
	if welcome.Type != "welcome" {
		return fmt.Errorf("unexpected first message: %s", welcome.Type)
	}
	s.connectionID = welcome.ConnectionID

	if joinCode != "" {
		err = s.send(map[string]any{
			"type":         "join_room",
			"display_name": displayName,
			"code":         strings.ToUpper(joinCode),
		})
	} else {
		err = s.send(map[string]any{
			"type":         "create_room",
			"display_name": displayName,
			"is_public":    isPublic,
			"settings":     map[string]int{"min": min, "max": max},
		})
	}
	if err != nil {
		return err
	}

	// Reader goroutine renders server messages as they arrive
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var frame serverFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				fmt.Printf("unreadable message from server: %s\n", err)
				continue
			}
			s.render(&frame)
		}
	}()

	// Ctrl+C closes the connection, which ends the reader goroutine
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			_ = conn.Close()
		case <-done:
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-done:
			fmt.Println("Disconnected.")
			return nil
		default:
		}

		if !scanner.Scan() {
			_ = conn.Close()
			<-done
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			_ = conn.Close()
			<-done
			return nil
		}
		if err := s.handleCommand(line); err != nil {
			fmt.Printf("Error: %s\n", err)
		}
	}
}

func (s *session) send(msg any) error {
	return s.conn.WriteJSON(msg)
}

func (s *session) handleCommand(line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "pick", "guess", "lie":
		if len(fields) != 2 {
			return fmt.Errorf("usage: %s <number>", fields[0])
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("%q is not a number", fields[1])
		}
		if s.roomCode == "" {
			return fmt.Errorf("not in a room yet")
		}
		if fields[0] == "pick" {
			return s.send(map[string]any{
				"type":      "pick_number",
				"room_code": s.roomCode,
				"number":    n,
			})
		}
		return s.send(map[string]any{
			"type":      "guess",
			"room_code": s.roomCode,
			"value":     n,
			"lie":       fields[0] == "lie",
		})
	case "lobbies":
		return s.send(map[string]any{"type": "list_lobbies"})
	case "top":
		return s.send(map[string]any{"type": "get_leaderboard"})
	default:
		return fmt.Errorf("unknown command %q (pick, guess, lie, lobbies, top, quit)", fields[0])
	}
}

func (s *session) render(frame *serverFrame) {
	switch frame.Type {
	case "room_update":
		if frame.Room != nil {
			s.renderRoom(frame.Room)
		}
	case "lobbies_update":
		if len(frame.Lobbies) == 0 {
			fmt.Println("No open lobbies")
			return
		}
		fmt.Printf("Open lobbies (%d):\n", len(frame.Lobbies))
		for _, l := range frame.Lobbies {
			fmt.Printf("  %s - hosted by %s (%d/2 players)\n", l.Code, l.HostName, l.PlayerCount)
		}
	case "leaderboard":
		if len(frame.Entries) == 0 {
			fmt.Println("Leaderboard is empty")
			return
		}
		for i, e := range frame.Entries {
			fmt.Printf("%d. %s - %d wins, %d losses\n", i+1, e.DisplayName, e.Wins, e.Losses)
		}
	case "opponent_left":
		fmt.Printf("Your opponent left room %s. The game is over.\n", frame.RoomCode)
	case "error":
		if frame.Error != nil {
			fmt.Printf("Server error: %s\n", frame.Error.String())
		}
	}
}

func (s *session) renderRoom(room *roomView) {
	s.roomCode = room.Code

	statusChanged := room.Status != s.lastStatus
	s.lastStatus = room.Status

	switch room.Status {
	case "waiting":
		fmt.Printf("Room %s created. Waiting for an opponent", room.Code)
		if room.IsPublic {
			fmt.Print(" (listed in the public lobby)")
		}
		fmt.Println(".")
		fmt.Printf("Share the code: %s\n", room.Code)
	case "picking":
		if statusChanged {
			fmt.Printf("Opponent found! Pick your secret number between %d and %d: pick <n>\n",
				room.Settings.Min, room.Settings.Max)
		} else {
			fmt.Println("Waiting for your opponent to pick...")
		}
	case "playing":
		s.renderGuesses(room)
		if room.Turn == s.connectionID {
			fmt.Println("Your turn: guess <n> (or lie <n> to invert the feedback once)")
		} else {
			fmt.Println("Opponent's turn...")
		}
	case "finished":
		s.renderGuesses(room)
		fmt.Printf("Game over! Winner: %s\n", room.Winner)
	}
}

func (s *session) renderGuesses(room *roomView) {
	for _, p := range room.Players {
		if len(p.Guesses) == 0 {
			continue
		}
		last := p.Guesses[len(p.Guesses)-1]
		who := p.DisplayName
		if p.ConnectionID == s.connectionID {
			who = "You"
		}
		fmt.Printf("%s guessed %d: %s\n", who, last.Value, last.Feedback)
	}
}

// websocketURL converts the configured HTTP server URL to the websocket
// endpoint, carrying the identity token as a query parameter
func websocketURL(serverURL, token string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()

	return u.String(), nil
}
