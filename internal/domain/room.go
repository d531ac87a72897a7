package domain

import (
	"encoding/json"
	"time"
)

// Player holds the per-connection game state inside a room. The ID is the
// owning connection id; a new connection always means a new Player.
type Player struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Position       int       `json:"position"`
	City           string    `json:"city"`
	Coins          int       `json:"coins"`
	CleaningPoints int       `json:"cleaningPoints"`
	Level          int       `json:"level"`
	CompletedTasks int       `json:"completedTasks"`
	Buildings      []any     `json:"buildings"`
	Color          string    `json:"color"`
	Connected      bool      `json:"connected"`
	JoinedAt       time.Time `json:"joinedAt"`
	LastSeen       time.Time `json:"lastSeen"`
	CurrentTask    any       `json:"currentTask"`
}

// NewPlayer constructs a freshly joined player on the first board cell.
func NewPlayer(connectionID, name, color string, now time.Time) *Player {
	return &Player{
		ID:        connectionID,
		Name:      name,
		Position:  StartingPosition,
		City:      FirstCity,
		Coins:     StartingCoins,
		Buildings: []any{},
		Color:     color,
		Connected: true,
		JoinedAt:  now,
		LastSeen:  now,
	}
}

// ApplyFields shallow-merges client-supplied fields onto the player record.
// Fields are trusted as submitted; keys outside the player schema are dropped
// by the typed unmarshal. The merge goes through JSON so the wire field names
// are the contract, not the Go names.
func (p *Player) ApplyFields(fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	base, err := json.Marshal(p)
	if err != nil {
		return err
	}

	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return err
	}
	for key, value := range fields {
		merged[key] = value
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return json.Unmarshal(out, p)
}

// ChatMessage is a single room chat entry.
type ChatMessage struct {
	PlayerName string    `json:"playerName"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Room is the authoritative aggregate for one game session.
type Room struct {
	ID           string
	Players      map[string]*Player // connection id -> player
	CityProgress map[string]int     // city key -> percentage
	ChatHistory  []ChatMessage
	CreatedAt    time.Time
}

// NewRoom constructs an empty room with zeroed progress for every city.
func NewRoom(id string, now time.Time) *Room {
	progress := make(map[string]int, len(CityZones))
	for _, zone := range CityZones {
		progress[zone.Key] = 0
	}
	return &Room{
		ID:           id,
		Players:      make(map[string]*Player),
		CityProgress: progress,
		CreatedAt:    now,
	}
}

// AppendChat adds a message to the history, evicting the oldest entry once
// the history exceeds limit.
func (r *Room) AppendChat(msg ChatMessage, limit int) {
	r.ChatHistory = append(r.ChatHistory, msg)
	if limit > 0 && len(r.ChatHistory) > limit {
		r.ChatHistory = r.ChatHistory[len(r.ChatHistory)-limit:]
	}
}

// ConnectionIDs returns the connection ids of every player in the room.
// A non-empty except id is left out of the result.
func (r *Room) ConnectionIDs(except string) []string {
	ids := make([]string, 0, len(r.Players))
	for id := range r.Players {
		if id == except {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
