package app

import "volga/internal/domain"

// TrustPolicy is the single choke point for client-authoritative state. The
// default policy trusts dice rolls and player updates outright; a stricter
// deployment can swap in its own policy without touching the protocol.
type TrustPolicy interface {
	// AllowDiceRoll reports whether a client-computed move is accepted.
	AllowDiceRoll(player *domain.Player, diceValue, newPosition int) bool

	// FilterPlayerUpdate returns the fields that may be merged onto the
	// player record.
	FilterPlayerUpdate(player *domain.Player, fields map[string]any) map[string]any
}

// PermissivePolicy reproduces the reference trust boundary: clients are
// authoritative over their own movement and score fields.
type PermissivePolicy struct{}

func (PermissivePolicy) AllowDiceRoll(*domain.Player, int, int) bool {
	return true
}

func (PermissivePolicy) FilterPlayerUpdate(_ *domain.Player, fields map[string]any) map[string]any {
	return fields
}

var _ TrustPolicy = PermissivePolicy{}
