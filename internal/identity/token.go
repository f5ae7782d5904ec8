package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	autherrors "codeberg.org/wastewatch/authclient/internal/errors"
)

// tokens expiring within this window are refreshed before use
const tokenRefreshBuffer = 30 * time.Second

// holds the token material of one session and refreshes it on demand
type tokenSource struct {
	mu           sync.Mutex
	uid          string
	idToken      string
	refreshToken string
	expiresAt    time.Time

	refresh   func(ctx context.Context, refreshToken string) (*RefreshedToken, error)
	now       func() time.Time
	onRefresh func(ctx context.Context, s *tokenSource)
	onFailure func(ctx context.Context, uid string, err error)
}

// returns the cached ID token, refreshing it when it is about to expire
// or when force is set
func (s *tokenSource) Token(ctx context.Context, force bool) (string, error) {
	if s == nil {
		return "", autherrors.NewProviderError(autherrors.CodeNoCurrentUser)
	}

	s.mu.Lock()

	if !force && s.idToken != "" && s.now().Add(tokenRefreshBuffer).Before(s.expiresAt) {
		token := s.idToken
		s.mu.Unlock()
		return token, nil
	}

	refreshed, err := s.refresh(ctx, s.refreshToken)
	if err != nil {
		uid := s.uid
		s.mu.Unlock()

		if s.onFailure != nil {
			s.onFailure(ctx, uid, err)
		}
		return "", err
	}

	s.idToken = refreshed.IDToken
	if refreshed.RefreshToken != "" {
		s.refreshToken = refreshed.RefreshToken
	}
	s.expiresAt = s.now().Add(refreshed.ExpiresIn)
	token := s.idToken
	s.mu.Unlock()

	if s.onRefresh != nil {
		s.onRefresh(ctx, s)
	}

	return token, nil
}

// returns a consistent copy of the token fields
func (s *tokenSource) snapshot() (idToken, refreshToken string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.idToken, s.refreshToken, s.expiresAt
}

// TokenClaims are the ID token claims the client reads without verifying.
// Verification is the backend's job.
type TokenClaims struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
	Firebase      struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
	jwt.RegisteredClaims
}

// decodes the claims of an ID token without checking its signature
func ParseTokenClaims(idToken string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("failed to parse id token: %w", err)
	}

	return claims, nil
}

// returns the expiry encoded in idToken, or fallback when it has none
func tokenExpiry(idToken string, fallback time.Time) time.Time {
	claims, err := ParseTokenClaims(idToken)
	if err != nil || claims.ExpiresAt == nil {
		return fallback
	}

	return claims.ExpiresAt.Time
}
