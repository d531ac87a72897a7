package onboarding

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type mockAccounts struct {
	userID      string
	username    string
	displayName string
	err         error
}

func (m *mockAccounts) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	m.userID = userID
	m.username = username
	m.displayName = displayName
	return m.err
}

func TestOnboardNewUserAssignsGuestName(t *testing.T) {
	accounts := &mockAccounts{}
	svc := NewService(accounts)

	name, err := svc.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("onboard error: %v", err)
	}

	if !strings.HasPrefix(name, guestNamePrefix+"-") {
		t.Fatalf("name = %q, want %q prefix", name, guestNamePrefix)
	}
	if len(name) != len(guestNamePrefix)+1+guestSuffixLength {
		t.Fatalf("name length = %d, want %d", len(name), len(guestNamePrefix)+1+guestSuffixLength)
	}
	if accounts.userID != "user-1" {
		t.Fatalf("profile updated for %q, want user-1", accounts.userID)
	}
	if accounts.displayName != name || accounts.username != name {
		t.Fatalf("profile %q/%q does not match returned name %q", accounts.username, accounts.displayName, name)
	}
}

func TestOnboardNewUserPropagatesProfileError(t *testing.T) {
	accounts := &mockAccounts{err: errors.New("boom")}
	svc := NewService(accounts)

	if _, err := svc.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error when profile update fails")
	}
}

func TestOnboardNewUserRequiresAccounts(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error for unconfigured service")
	}
}
