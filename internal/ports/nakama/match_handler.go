package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"volga/internal/app"
	"volga/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// hubIdleGraceTicks keeps a freshly created hub alive long enough for the
// first socket join to arrive after the hub_match RPC returned.
const hubIdleGraceTicks = 60

// MatchState holds the authoritative runtime state for the hub match: the
// presence registry plus the room coordinator that owns every game room.
type MatchState struct {
	Presences       map[string]runtime.Presence `json:"-"` // connection id -> presence
	Coordinator     *app.Coordinator            `json:"-"`
	Identity        *app.IdentityService        `json:"-"`
	RequireIdentity bool                        `json:"require_identity"`
	Tick            int64                       `json:"tick"`
}

// Label is the hub match label advertised for discovery queries.
type Label struct {
	Game    string `json:"game"`
	Rooms   int    `json:"rooms"`
	Players int    `json:"players"`
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return newMatchHandler(), nil
}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit builds the coordinator and advertises an empty hub.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	settings := app.Settings{ExpiryWindow: config.ExpiryWindow()}
	if cfg := config.GetGameConfig(); cfg != nil {
		settings.MaxPlayersPerRoom = cfg.MaxPlayersPerRoom
		settings.ChatHistoryLimit = cfg.ChatHistoryLimit
	}

	state := &MatchState{
		Presences:   make(map[string]runtime.Presence),
		Coordinator: app.NewCoordinator(settings, nil),
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	state.Identity = app.NewIdentityService(env["volga_token_secret"], env["volga_token_issuer"], config.ExpiryWindow())
	state.RequireIdentity = env["volga_require_identity"] == "true"

	tickRate := 1 // expiry sweep resolution is one second
	return state, tickRate, buildLabel(state)
}

// MatchJoinAttempt admits every presence: capacity is a per-room rule
// enforced by the join-room event, not a hub-level one.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	if _, ok := state.(*MatchState); !ok {
		return state, false, "state not found"
	}
	return state, true, ""
}

// MatchJoin registers presences and confirms the connection to each one.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		connectionID := p.GetSessionId()
		s.Presences[connectionID] = p

		payload, err := json.Marshal(app.ConnectionConfirmedPayload{
			Message:   "connected to game server",
			ID:        connectionID,
			Timestamp: time.Now(),
		})
		if err != nil {
			logger.Error("MatchJoin: Failed to marshal confirmation: %v", err)
			continue
		}
		if err := dispatcher.BroadcastMessage(OpConnectionConfirmed, payload, []runtime.Presence{p}, nil, true); err != nil {
			logger.Error("MatchJoin: Failed to confirm connection %s: %v", connectionID, err)
		}
	}

	mh.updateLabel(s, dispatcher, logger)
	return s
}

// MatchLeave is the disconnect notification: the coordinator marks players
// and starts their expiry window.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	now := time.Now()
	for _, p := range presences {
		connectionID := p.GetSessionId()
		delete(s.Presences, connectionID)

		for _, ev := range s.Coordinator.HandleDisconnect(connectionID, now) {
			mh.dispatchEvent(s, dispatcher, logger, ev)
		}
	}

	if len(s.Presences) == 0 && s.Coordinator.RoomCount() == 0 {
		logger.Info("MatchLeave: Terminating empty hub.")
		return nil
	}

	mh.updateLabel(s, dispatcher, logger)
	return s
}

// MatchLoop demultiplexes protocol events to the coordinator and runs the
// expiry sweep once per tick.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	s, ok := state.(*MatchState)
	if !ok {
		return state
	}

	s.Tick = tick
	now := time.Now()

	for _, msg := range messages {
		connectionID := msg.GetSessionId()

		switch msg.GetOpCode() {
		case OpJoinRoom:
			mh.handleJoinRoom(s, dispatcher, logger, msg, now)
		case OpGetRoomState:
			for _, ev := range s.Coordinator.HandleRoomState(connectionID) {
				mh.dispatchEvent(s, dispatcher, logger, ev)
			}
		case OpChatMessage:
			var req struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(msg.GetData(), &req); err != nil {
				logger.Warn("MatchLoop: Invalid chat payload from %s: %v", connectionID, err)
				continue
			}
			for _, ev := range s.Coordinator.HandleChat(connectionID, req.Message, now) {
				mh.dispatchEvent(s, dispatcher, logger, ev)
			}
		case OpDiceRoll:
			var req struct {
				DiceValue   int `json:"diceValue"`
				NewPosition int `json:"newPosition"`
				Task        any `json:"task"`
			}
			if err := json.Unmarshal(msg.GetData(), &req); err != nil {
				logger.Warn("MatchLoop: Invalid dice roll payload from %s: %v", connectionID, err)
				continue
			}
			for _, ev := range s.Coordinator.HandleDiceRoll(connectionID, req.DiceValue, req.NewPosition, req.Task) {
				mh.dispatchEvent(s, dispatcher, logger, ev)
			}
		case OpUpdateProgress:
			var req struct {
				CityKey  string `json:"cityKey"`
				Progress int    `json:"progress"`
			}
			if err := json.Unmarshal(msg.GetData(), &req); err != nil {
				logger.Warn("MatchLoop: Invalid progress payload from %s: %v", connectionID, err)
				continue
			}
			for _, ev := range s.Coordinator.HandleProgress(connectionID, req.CityKey, req.Progress) {
				mh.dispatchEvent(s, dispatcher, logger, ev)
			}
		case OpPlayerUpdate:
			var fields map[string]any
			if err := json.Unmarshal(msg.GetData(), &fields); err != nil {
				logger.Warn("MatchLoop: Invalid player update payload from %s: %v", connectionID, err)
				continue
			}
			for _, ev := range s.Coordinator.HandlePlayerUpdate(connectionID, fields) {
				mh.dispatchEvent(s, dispatcher, logger, ev)
			}
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if events := s.Coordinator.Sweep(now); len(events) > 0 {
		for _, ev := range events {
			mh.dispatchEvent(s, dispatcher, logger, ev)
		}
		mh.updateLabel(s, dispatcher, logger)
	}

	if len(s.Presences) == 0 && s.Coordinator.RoomCount() == 0 && s.Tick > hubIdleGraceTicks {
		logger.Info("MatchLoop: Terminating idle hub.")
		return nil
	}

	return s
}

func (mh *matchHandler) handleJoinRoom(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, now time.Time) {
	connectionID := msg.GetSessionId()

	var req struct {
		RoomID        string `json:"roomId"`
		PlayerName    string `json:"playerName"`
		IsNewRoom     bool   `json:"isNewRoom"`
		IdentityToken string `json:"identityToken"`
	}
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handleJoinRoom: Invalid join payload from %s: %v", connectionID, err)
		mh.sendError(s, dispatcher, logger, connectionID, "invalid join payload")
		return
	}

	if s.RequireIdentity {
		identity, err := s.Identity.VerifyToken(req.IdentityToken)
		if err != nil {
			logger.Warn("handleJoinRoom: Identity verification failed for %s: %v", connectionID, err)
			mh.sendError(s, dispatcher, logger, connectionID, "identity token required")
			return
		}
		if identity.PlayerName != req.PlayerName {
			mh.sendError(s, dispatcher, logger, connectionID, "identity mismatch")
			return
		}
	}

	for _, ev := range s.Coordinator.HandleJoin(connectionID, req.RoomID, req.PlayerName, req.IsNewRoom, now) {
		mh.dispatchEvent(s, dispatcher, logger, ev)
	}
	mh.updateLabel(s, dispatcher, logger)
}

// dispatchEvent resolves a coordinator event's recipients to live presences
// and sends it. Recipients who disconnected mid-event are skipped; an event
// addressed only to departed connections is dropped rather than broadcast.
func (mh *matchHandler) dispatchEvent(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := opCodeForEvent(ev.Kind)
	if !ok {
		logger.Warn("dispatchEvent: Unknown event kind: %s", ev.Kind)
		return
	}

	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("dispatchEvent: Failed to marshal %s: %v", ev.Kind, err)
		return
	}

	recipients := make([]runtime.Presence, 0, len(ev.Recipients))
	for _, connectionID := range ev.Recipients {
		if p, ok := s.Presences[connectionID]; ok {
			recipients = append(recipients, p)
		}
	}
	if len(recipients) == 0 {
		return
	}

	if err := dispatcher.BroadcastMessage(opCode, payload, recipients, nil, true); err != nil {
		logger.Error("dispatchEvent: Failed to send %s: %v", ev.Kind, err)
	}
}

func (mh *matchHandler) sendError(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, connectionID, message string) {
	mh.dispatchEvent(s, dispatcher, logger, app.Event{
		Kind:       app.EventRoomError,
		Payload:    app.RoomErrorPayload{Message: message},
		Recipients: []string{connectionID},
	})
}

func opCodeForEvent(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventConnectionConfirmed:
		return OpConnectionConfirmed, true
	case app.EventRoomError:
		return OpRoomError, true
	case app.EventJoinSuccess:
		return OpJoinSuccess, true
	case app.EventChatHistory:
		return OpChatHistory, true
	case app.EventPlayerJoined:
		return OpPlayerJoined, true
	case app.EventRoomState:
		return OpRoomState, true
	case app.EventNewChatMessage:
		return OpNewChatMessage, true
	case app.EventPlayerDiceRoll:
		return OpPlayerDiceRoll, true
	case app.EventProgressUpdated:
		return OpProgressUpdated, true
	case app.EventPlayerLeft:
		return OpPlayerLeft, true
	default:
		return 0, false
	}
}

func buildLabel(s *MatchState) string {
	label := Label{
		Game:    LabelGameName,
		Rooms:   s.Coordinator.RoomCount(),
		Players: s.Coordinator.PlayerCount(),
	}
	b, _ := json.Marshal(label)
	return string(b)
}

func (mh *matchHandler) updateLabel(s *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if err := dispatcher.MatchLabelUpdate(buildLabel(s)); err != nil {
		logger.Error("updateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Hub terminated.")
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
