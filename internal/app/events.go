package app

import (
	"time"

	"volga/internal/domain"
)

// EventKind identifies emitted coordinator events. The values are the wire
// event names of the client protocol.
type EventKind string

const (
	EventConnectionConfirmed EventKind = "connection_confirmed"
	EventRoomError           EventKind = "room-error"
	EventJoinSuccess         EventKind = "join-success"
	EventChatHistory         EventKind = "chat_history"
	EventPlayerJoined        EventKind = "player_joined"
	EventRoomState           EventKind = "room_state"
	EventNewChatMessage      EventKind = "new_chat_message"
	EventPlayerDiceRoll      EventKind = "player_dice_roll"
	EventProgressUpdated     EventKind = "progress_updated"
	EventPlayerLeft          EventKind = "player_left"
)

// Event is a coordinator event addressed to explicit connections. The hub
// match hosts many rooms at once, so an unaddressed broadcast has no meaning
// here: Recipients always lists the target connection ids.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string
}

type ConnectionConfirmedPayload struct {
	Message   string    `json:"message"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

type RoomErrorPayload struct {
	Message string `json:"message"`
}

// JoinSuccessPayload is the joining player's own record plus the room id,
// flattened into one object on the wire.
type JoinSuccessPayload struct {
	domain.Player
	RoomID string `json:"roomId"`
}

type PlayerJoinedPayload struct {
	ConnectionID string        `json:"connectionId"`
	Player       domain.Player `json:"player"`
}

// RoomStatePayload is the full room snapshot. Chat history travels separately
// on join, so it is not part of the snapshot.
type RoomStatePayload struct {
	RoomID       string                   `json:"roomId"`
	Players      map[string]domain.Player `json:"players"`
	CityProgress map[string]int           `json:"cityProgress"`
	CreatedAt    time.Time                `json:"createdAt"`
}

type NewChatMessagePayload struct {
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
}

type PlayerDiceRollPayload struct {
	ConnectionID string `json:"connectionId"`
	DiceValue    int    `json:"diceValue"`
	NewPosition  int    `json:"newPosition"`
	Task         any    `json:"task"`
}

type ProgressUpdatedPayload struct {
	CityKey  string `json:"cityKey"`
	Progress int    `json:"progress"`
}

type PlayerLeftPayload struct {
	ConnectionID string `json:"connectionId"`
	PlayerName   string `json:"playerName"`
}
