package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/logger"
	"github.com/dvloznov/kitab-khata/internal/persist"
)

// ErrSignedOut is returned by Current when nobody is signed in.
var ErrSignedOut = errors.New("not signed in")

// Sessions keeps the signed-in user in a persist.ProfileStore.
type Sessions struct {
	profiles persist.ProfileStore
	now      func() time.Time
}

// NewSessions creates a session manager backed by profiles.
func NewSessions(profiles persist.ProfileStore) *Sessions {
	return &Sessions{profiles: profiles, now: time.Now}
}

// Current returns the signed-in user.
func (s *Sessions) Current(ctx context.Context) (domain.User, error) {
	user, err := s.profiles.LoadUser(ctx)
	if errors.Is(err, persist.ErrNoData) {
		return domain.User{}, ErrSignedOut
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("Current: %w", err)
	}
	return user, nil
}

// LoginManual signs in with a shop login name.
func (s *Sessions) LoginManual(ctx context.Context, name string) (domain.User, error) {
	user, err := ManualUser(name, s.now())
	if err != nil {
		return domain.User{}, err
	}
	return s.save(ctx, user, "manual")
}

// LoginGoogle signs in with a Google ID token.
func (s *Sessions) LoginGoogle(ctx context.Context, credential string) (domain.User, error) {
	user, err := FromGoogleCredential(credential)
	if err != nil {
		return domain.User{}, err
	}
	return s.save(ctx, user, "google")
}

// Logout forgets the signed-in user.
func (s *Sessions) Logout(ctx context.Context) error {
	if err := s.profiles.ClearUser(ctx); err != nil {
		return fmt.Errorf("Logout: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Info().Msg("Signed out")
	return nil
}

func (s *Sessions) save(ctx context.Context, user domain.User, method string) (domain.User, error) {
	if err := s.profiles.SaveUser(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("save session: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("user_id", user.ID).
		Str("method", method).
		Msg("Signed in")
	return user, nil
}
