package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/persist"
)

func TestManualUser(t *testing.T) {
	now := time.UnixMilli(1709280000123)
	u, err := ManualUser("Vikas Kumar Jain", now)
	require.NoError(t, err)

	assert.Equal(t, "Vikas Kumar Jain", u.Name)
	// Only the first space becomes a dot.
	assert.Equal(t, "vikas.kumar jain@shop.local", u.Email)
	assert.Equal(t, "https://ui-avatars.com/api/?name=Vikas%20Kumar%20Jain&background=2563eb&color=fff", u.Picture)
	assert.Equal(t, "local-1709280000123", u.ID)
}

func TestManualUser_EmptyName(t *testing.T) {
	_, err := ManualUser("   ", time.Now())
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return tok
}

func TestFromGoogleCredential(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{
		"sub":     "1234567890",
		"name":    "Vikas Jain",
		"email":   "vikasbooks@gmail.com",
		"picture": "https://example.com/p.png",
	})

	u, err := FromGoogleCredential(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.User{
		Name:    "Vikas Jain",
		Email:   "vikasbooks@gmail.com",
		Picture: "https://example.com/p.png",
		ID:      "1234567890",
	}, u)
}

func TestFromGoogleCredential_Invalid(t *testing.T) {
	_, err := FromGoogleCredential("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidCredential)

	_, err = FromGoogleCredential(signedToken(t, jwt.MapClaims{"name": "No Subject"}))
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(persist.NewMemoryStore())
	s.now = func() time.Time { return time.UnixMilli(42) }

	_, err := s.Current(ctx)
	assert.ErrorIs(t, err, ErrSignedOut)

	u, err := s.LoginManual(ctx, "Ravi")
	require.NoError(t, err)
	assert.Equal(t, "local-42", u.ID)

	got, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	require.NoError(t, s.Logout(ctx))
	_, err = s.Current(ctx)
	assert.ErrorIs(t, err, ErrSignedOut)
}
