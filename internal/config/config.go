package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// GameConfig tunes the room coordinator. Values left at zero fall back to
// the protocol contract defaults.
type GameConfig struct {
	MaxPlayersPerRoom int `json:"max_players_per_room"`
	ChatHistoryLimit  int `json:"chat_history_limit"`
	// ExpirySeconds is the grace period after a disconnect before a player
	// is purged from their room.
	ExpirySeconds  int `json:"expiry_seconds"`
	RoomCodeLength int `json:"room_code_length"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or nil if none loaded.
func GetGameConfig() *GameConfig {
	return cfg
}

// ExpiryWindow returns the configured disconnect grace period, or the
// 5-minute contract default.
func ExpiryWindow() time.Duration {
	if cfg == nil || cfg.ExpirySeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(cfg.ExpirySeconds) * time.Second
}

// RoomCodeLength returns the configured room code length, or the default of 6.
func RoomCodeLength() int {
	if cfg == nil || cfg.RoomCodeLength <= 0 {
		return 6
	}
	return cfg.RoomCodeLength
}
