package domain

const (
	// MaxPlayersPerRoom caps the player map of a room.
	MaxPlayersPerRoom = 6
	// ChatHistoryLimit bounds per-room chat history (FIFO eviction).
	ChatHistoryLimit = 100
	// StartingPosition is the board cell every new player occupies.
	StartingPosition = 1
	// StartingCoins is the coin balance granted on join.
	StartingCoins = 100
)
