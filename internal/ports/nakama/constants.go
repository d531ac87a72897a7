package nakama

const (
	// RpcHubMatch is the Nakama RPC id clients call to find or create the hub
	// match hosting all game rooms.
	RpcHubMatch = "hub_match"

	// RpcRoomCode is the Nakama RPC id clients call to mint a shareable room
	// code before creating a room.
	RpcRoomCode = "room_code"

	// RpcReconnectToken is the Nakama RPC id clients call to obtain a signed
	// reconnect identity token.
	RpcReconnectToken = "reconnect_token"

	// MatchNameHub is the authoritative match handler name registered with
	// Nakama.
	MatchNameHub = "volga_hub"

	// LabelGameName identifies hub matches in label queries.
	LabelGameName = "volga"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpJoinRoom       int64 = 1
	OpGetRoomState   int64 = 2
	OpChatMessage    int64 = 3
	OpDiceRoll       int64 = 4
	OpUpdateProgress int64 = 5
	OpPlayerUpdate   int64 = 6

	// Server -> Client events
	OpConnectionConfirmed int64 = 100
	OpRoomError           int64 = 101
	OpJoinSuccess         int64 = 102
	OpChatHistory         int64 = 103
	OpPlayerJoined        int64 = 104
	OpRoomState           int64 = 105
	OpNewChatMessage      int64 = 106
	OpPlayerDiceRoll      int64 = 107
	OpProgressUpdated     int64 = 108
	OpPlayerLeft          int64 = 109
)
