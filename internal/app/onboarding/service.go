package onboarding

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"volga/internal/ports"
)

const (
	guestNamePrefix     = "Guest"
	guestSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	guestSuffixLength   = 6
)

// Service handles post-auth onboarding for new accounts: a fresh device
// authentication gets a generated guest display name so a player has a
// usable identity before picking their own.
type Service struct {
	accounts ports.AccountPort
}

// NewService constructs an onboarding service; accounts must be non-nil.
func NewService(accounts ports.AccountPort) *Service {
	return &Service{accounts: accounts}
}

// OnboardNewUser assigns a generated guest name to a newly created account
// and returns the name it applied.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (string, error) {
	if s.accounts == nil {
		return "", fmt.Errorf("onboarding service not configured")
	}

	suffix, err := gonanoid.Generate(guestSuffixAlphabet, guestSuffixLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate guest suffix: %w", err)
	}
	displayName := guestNamePrefix + "-" + suffix

	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		return "", fmt.Errorf("failed to update profile: %w", err)
	}
	return displayName, nil
}
