package app

import (
	"time"

	"volga/internal/domain"
)

// DefaultExpiryWindow is the grace period a disconnected player keeps their
// seat before the sweep purges them.
const DefaultExpiryWindow = 5 * time.Minute

// Error messages surfaced to clients as room-error events.
const (
	msgMissingJoinFields = "room id and player name are required"
	msgRoomNotFound      = "room does not exist"
	msgRoomFull          = "room is full"
	msgMoveRejected      = "move rejected"
)

// Settings carries coordinator limits. Zero values fall back to the protocol
// contract defaults.
type Settings struct {
	MaxPlayersPerRoom int
	ChatHistoryLimit  int
	ExpiryWindow      time.Duration
}

// Coordinator owns the Room Store and every mutation of room state. It is
// constructed once per hub match and must only be driven from the match loop:
// the loop's serialization is the coordinator's concurrency model.
type Coordinator struct {
	settings Settings
	policy   TrustPolicy
	rooms    map[string]*domain.Room
}

// NewCoordinator builds a coordinator with an empty Room Store. A nil policy
// means the permissive reference behavior.
func NewCoordinator(settings Settings, policy TrustPolicy) *Coordinator {
	if settings.MaxPlayersPerRoom <= 0 {
		settings.MaxPlayersPerRoom = domain.MaxPlayersPerRoom
	}
	if settings.ChatHistoryLimit <= 0 {
		settings.ChatHistoryLimit = domain.ChatHistoryLimit
	}
	if settings.ExpiryWindow <= 0 {
		settings.ExpiryWindow = DefaultExpiryWindow
	}
	if policy == nil {
		policy = PermissivePolicy{}
	}
	return &Coordinator{
		settings: settings,
		policy:   policy,
		rooms:    make(map[string]*domain.Room),
	}
}

/* ---- room store ---- */

// Room looks up a room by id.
func (c *Coordinator) Room(id string) (*domain.Room, bool) {
	room, ok := c.rooms[id]
	return room, ok
}

// RoomCount reports the number of live rooms.
func (c *Coordinator) RoomCount() int {
	return len(c.rooms)
}

// PlayerCount reports the number of players across all rooms, connected or
// not.
func (c *Coordinator) PlayerCount() int {
	count := 0
	for _, room := range c.rooms {
		count += len(room.Players)
	}
	return count
}

func (c *Coordinator) createRoom(id string, now time.Time) *domain.Room {
	room := domain.NewRoom(id, now)
	c.rooms[id] = room
	return room
}

func (c *Coordinator) deleteRoom(id string) {
	delete(c.rooms, id)
}

// findRoomContaining scans all rooms for the one holding the connection.
// Linear, which is fine at hub scale; a reverse index is the upgrade path if
// room counts ever grow.
func (c *Coordinator) findRoomContaining(connectionID string) *domain.Room {
	for _, room := range c.rooms {
		if _, ok := room.Players[connectionID]; ok {
			return room
		}
	}
	return nil
}

/* ---- event handlers ---- */

// HandleJoin admits a connection into a room, creating the room when the
// client asked for one. Validation failures produce a single room-error to
// the requester and leave all state untouched.
func (c *Coordinator) HandleJoin(connectionID, roomID, playerName string, isNewRoom bool, now time.Time) []Event {
	if roomID == "" || playerName == "" {
		return c.errorTo(connectionID, msgMissingJoinFields)
	}

	room, ok := c.rooms[roomID]
	if !ok {
		if !isNewRoom {
			return c.errorTo(connectionID, msgRoomNotFound)
		}
		room = c.createRoom(roomID, now)
	}

	if len(room.Players) >= c.settings.MaxPlayersPerRoom {
		return c.errorTo(connectionID, msgRoomFull)
	}

	color := domain.NextColor(room.Players)
	player := domain.NewPlayer(connectionID, playerName, color, now)
	room.Players[connectionID] = player

	events := []Event{{
		Kind:       EventJoinSuccess,
		Payload:    JoinSuccessPayload{Player: *player, RoomID: room.ID},
		Recipients: []string{connectionID},
	}}

	if len(room.ChatHistory) > 0 {
		history := append([]domain.ChatMessage(nil), room.ChatHistory...)
		events = append(events, Event{
			Kind:       EventChatHistory,
			Payload:    history,
			Recipients: []string{connectionID},
		})
	}

	if others := room.ConnectionIDs(connectionID); len(others) > 0 {
		events = append(events, Event{
			Kind:       EventPlayerJoined,
			Payload:    PlayerJoinedPayload{ConnectionID: connectionID, Player: *player},
			Recipients: others,
		})
	}

	return append(events, c.roomStateEvent(room, ""))
}

// HandleRoomState answers a snapshot query from a connection already in a
// room. Orphan queries are silent no-ops.
func (c *Coordinator) HandleRoomState(connectionID string) []Event {
	room := c.findRoomContaining(connectionID)
	if room == nil {
		return nil
	}
	return []Event{c.roomStateEvent(room, "", connectionID)}
}

// HandleChat appends a message to the room's bounded history and echoes it to
// the whole room, sender included.
func (c *Coordinator) HandleChat(connectionID, message string, now time.Time) []Event {
	room := c.findRoomContaining(connectionID)
	if room == nil {
		return nil
	}
	player := room.Players[connectionID]

	room.AppendChat(domain.ChatMessage{
		PlayerName: player.Name,
		Message:    message,
		Timestamp:  now,
	}, c.settings.ChatHistoryLimit)

	return []Event{{
		Kind:       EventNewChatMessage,
		Payload:    NewChatMessagePayload{PlayerName: player.Name, Message: message},
		Recipients: room.ConnectionIDs(""),
	}}
}

// HandleDiceRoll applies a client-computed move. The sender already applied
// the move locally, so the roll event goes to everyone else; the snapshot
// goes to everyone.
func (c *Coordinator) HandleDiceRoll(connectionID string, diceValue, newPosition int, task any) []Event {
	room := c.findRoomContaining(connectionID)
	if room == nil {
		return nil
	}
	player := room.Players[connectionID]

	if !c.policy.AllowDiceRoll(player, diceValue, newPosition) {
		return c.errorTo(connectionID, msgMoveRejected)
	}

	player.Position = newPosition
	player.CurrentTask = task
	if city, ok := domain.CityForPosition(newPosition); ok {
		player.City = city
	}

	var events []Event
	if others := room.ConnectionIDs(connectionID); len(others) > 0 {
		events = append(events, Event{
			Kind: EventPlayerDiceRoll,
			Payload: PlayerDiceRollPayload{
				ConnectionID: connectionID,
				DiceValue:    diceValue,
				NewPosition:  newPosition,
				Task:         task,
			},
			Recipients: others,
		})
	}
	return append(events, c.roomStateEvent(room, ""))
}

// HandleProgress overwrites one city's progress value. Unknown city keys are
// silently ignored; the coordinator never introduces new keys.
func (c *Coordinator) HandleProgress(connectionID, cityKey string, progress int) []Event {
	room := c.findRoomContaining(connectionID)
	if room == nil {
		return nil
	}
	if _, ok := room.CityProgress[cityKey]; !ok {
		return nil
	}
	room.CityProgress[cityKey] = progress

	everyone := room.ConnectionIDs("")
	return []Event{
		{
			Kind:       EventProgressUpdated,
			Payload:    ProgressUpdatedPayload{CityKey: cityKey, Progress: progress},
			Recipients: everyone,
		},
		c.roomStateEvent(room, ""),
	}
}

// HandlePlayerUpdate shallow-merges arbitrary client fields onto the player
// record through the trust policy, then broadcasts the snapshot. Merge
// failures on individual fields are swallowed: the update is trusted input,
// not a validated command.
func (c *Coordinator) HandlePlayerUpdate(connectionID string, fields map[string]any) []Event {
	room := c.findRoomContaining(connectionID)
	if room == nil {
		return nil
	}
	player := room.Players[connectionID]

	_ = player.ApplyFields(c.policy.FilterPlayerUpdate(player, fields))

	return []Event{c.roomStateEvent(room, "")}
}

// HandleDisconnect marks the player disconnected and notifies the room. The
// player entry survives until the expiry sweep so a rejoin window exists for
// the remaining state.
func (c *Coordinator) HandleDisconnect(connectionID string, now time.Time) []Event {
	room := c.findRoomContaining(connectionID)
	if room == nil {
		return nil
	}
	player := room.Players[connectionID]
	player.Connected = false
	player.LastSeen = now

	var events []Event
	if others := room.ConnectionIDs(connectionID); len(others) > 0 {
		events = append(events, Event{
			Kind:       EventPlayerLeft,
			Payload:    PlayerLeftPayload{ConnectionID: connectionID, PlayerName: player.Name},
			Recipients: others,
		})
	}
	return append(events, c.roomStateEvent(room, ""))
}

// Sweep purges players whose disconnect outlived the expiry window and
// deletes rooms that emptied out. It re-validates every condition at fire
// time, so a player who reconnected in the interim is left alone and repeated
// sweeps are no-ops.
func (c *Coordinator) Sweep(now time.Time) []Event {
	var events []Event
	for id, room := range c.rooms {
		removed := false
		for connectionID, player := range room.Players {
			if player.Connected {
				continue
			}
			if now.Sub(player.LastSeen) < c.settings.ExpiryWindow {
				continue
			}
			delete(room.Players, connectionID)
			removed = true
		}
		if !removed {
			continue
		}
		if len(room.Players) == 0 {
			c.deleteRoom(id)
			continue
		}
		events = append(events, c.roomStateEvent(room, ""))
	}
	return events
}

/* ---- helpers ---- */

func (c *Coordinator) errorTo(connectionID, message string) []Event {
	return []Event{{
		Kind:       EventRoomError,
		Payload:    RoomErrorPayload{Message: message},
		Recipients: []string{connectionID},
	}}
}

// roomStateEvent snapshots the room for the given recipients; with no
// explicit recipients it addresses every connection in the room except the
// one named by except.
func (c *Coordinator) roomStateEvent(room *domain.Room, except string, recipients ...string) Event {
	players := make(map[string]domain.Player, len(room.Players))
	for id, player := range room.Players {
		players[id] = *player
	}
	progress := make(map[string]int, len(room.CityProgress))
	for key, value := range room.CityProgress {
		progress[key] = value
	}
	if len(recipients) == 0 {
		recipients = room.ConnectionIDs(except)
	}
	return Event{
		Kind: EventRoomState,
		Payload: RoomStatePayload{
			RoomID:       room.ID,
			Players:      players,
			CityProgress: progress,
			CreatedAt:    room.CreatedAt,
		},
		Recipients: recipients,
	}
}
