// Package identity turns a manual shop login or a Google sign-in credential
// into the user shown in the header. It does not restrict access to data.
package identity

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// ErrInvalidCredential is returned when a Google credential cannot be decoded.
var ErrInvalidCredential = errors.New("invalid credential")

// ManualUser builds a local user from a typed shop login name.
func ManualUser(name string, now time.Time) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: login name is required", domain.ErrValidation)
	}

	return domain.User{
		Name:    name,
		Email:   strings.Replace(strings.ToLower(name), " ", ".", 1) + "@shop.local",
		Picture: avatarURL(name),
		ID:      fmt.Sprintf("local-%d", now.UnixMilli()),
	}, nil
}

func avatarURL(name string) string {
	q := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return "https://ui-avatars.com/api/?name=" + q + "&background=2563eb&color=fff"
}

// googleClaims are the ID token fields used for display.
type googleClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// FromGoogleCredential reads the profile from a Google ID token. The
// signature is not verified; the result is only displayed.
func FromGoogleCredential(credential string) (domain.User, error) {
	var claims googleClaims
	_, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(credential), &claims)
	if err != nil {
		return domain.User{}, fmt.Errorf("FromGoogleCredential: %w: %v", ErrInvalidCredential, err)
	}
	if claims.Subject == "" {
		return domain.User{}, fmt.Errorf("FromGoogleCredential: %w: missing sub", ErrInvalidCredential)
	}

	return domain.User{
		Name:    claims.Name,
		Email:   claims.Email,
		Picture: claims.Picture,
		ID:      claims.Subject,
	}, nil
}
