package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"volga/internal/app"
	"volga/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const roomCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// HubMatchResponse is the payload returned to clients asking for the hub
// match.
type HubMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RoomCodeResponse carries a freshly minted room code.
type RoomCodeResponse struct {
	RoomID string `json:"roomId"`
}

// ReconnectTokenResponse carries a signed reconnect identity token.
type ReconnectTokenResponse struct {
	Token string `json:"token"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcHubMatch, rpcHubMatch); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcRoomCode, rpcRoomCode); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcReconnectToken, rpcReconnectToken)
}

// rpcHubMatch finds the running hub match or creates one. All rooms live in
// the hub, so clients always land on the same match.
func rpcHubMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	query := "+label.game:" + LabelGameName

	limit := 1
	authoritative := true

	matches, err := nk.MatchList(ctx, limit, authoritative, "", nil, nil, query)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := HubMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameHub, map[string]interface{}{})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := HubMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

// rpcRoomCode mints a shareable lowercase room code. The code only becomes a
// room when a client joins with it and the new-room flag set.
func rpcRoomCode(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	code, err := gonanoid.Generate(roomCodeAlphabet, config.RoomCodeLength())
	if err != nil {
		logger.Error("Failed to generate room code: %v", err)
		return "", runtime.NewError("Internal error", 13) // INTERNAL
	}

	b, _ := json.Marshal(RoomCodeResponse{RoomID: code})
	return string(b), nil
}

// rpcReconnectToken issues a signed identity token binding a player name to
// a room for the length of the expiry window. Only enforced on join when the
// stricter identity mode is enabled.
func rpcReconnectToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req struct {
		PlayerName string `json:"playerName"`
		RoomID     string `json:"roomId"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}
	if req.PlayerName == "" {
		return "", runtime.NewError("Player name required", 3)
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["volga_token_secret"]
	issuer := env["volga_token_issuer"]
	if secret == "" || issuer == "" {
		secret = "test-secret"
		issuer = "test-issuer"
		logger.Warn("Identity credentials missing from env, using test defaults.")
	}

	svc := app.NewIdentityService(secret, issuer, config.ExpiryWindow())
	token, err := svc.GenerateToken(req.PlayerName, req.RoomID)
	if err != nil {
		logger.Error("Failed to generate reconnect token: %v", err)
		return "", runtime.NewError("Internal error", 13)
	}

	b, _ := json.Marshal(ReconnectTokenResponse{Token: token})
	return string(b), nil
}
