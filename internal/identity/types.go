package identity

import (
	"context"
	"time"
)

// provider ids reported on users
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google.com"
)

// User is the provider-owned session handle. Callers read its fields and
// ask it for token material; they never mutate it.
type User struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName,omitempty"`
	ProviderID    string `json:"providerId"`
	EmailVerified bool   `json:"emailVerified"`

	// shared by every copy of the handle
	tokens *tokenSource
}

// returns a possibly refreshed ID token for this session
func (u *User) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	return u.tokens.Token(ctx, forceRefresh)
}

// Credential is the result of a successful sign-up or sign-in call.
type Credential struct {
	UID          string
	Email        string
	DisplayName  string
	ProviderID   string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
	IsNewUser    bool
}

// AccountInfo is the profile returned by an account lookup.
type AccountInfo struct {
	UID           string
	Email         string
	DisplayName   string
	EmailVerified bool
	Disabled      bool
}

// RefreshedToken is the result of exchanging a refresh token.
type RefreshedToken struct {
	UID          string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// IdPCredential is what a federated sign-in hands to the provider.
type IdPCredential struct {
	ProviderID  string
	IDToken     string
	AccessToken string
}

// Transport is the identity provider's remote surface.
type Transport interface {
	SignUp(ctx context.Context, email, password string) (*Credential, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Credential, error)
	SignInWithIdP(ctx context.Context, credential IdPCredential) (*Credential, error)
	Lookup(ctx context.Context, idToken string) (*AccountInfo, error)
	Delete(ctx context.Context, idToken string) error
	Refresh(ctx context.Context, refreshToken string) (*RefreshedToken, error)
}

// FederatedSignIn runs an interactive sign-in against an external IdP.
type FederatedSignIn interface {
	ProviderID() string
	Credential(ctx context.Context) (*IdPCredential, error)
}

// PersistedUser is the stored form of the current session.
type PersistedUser struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName,omitempty"`
	ProviderID    string    `json:"providerId"`
	EmailVerified bool      `json:"emailVerified"`
	IDToken       string    `json:"idToken"`
	RefreshToken  string    `json:"refreshToken"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Persistence stores the current session across process restarts.
type Persistence interface {
	Load(ctx context.Context) (*PersistedUser, error)
	Save(ctx context.Context, user PersistedUser) error
	Clear(ctx context.Context) error
}

// Option configures an Auth.
type Option func(*Auth)

// stores sessions with p instead of in memory
func WithPersistence(p Persistence) Option {
	return func(a *Auth) {
		a.persistence = p
	}
}

// enables SignInWithPopup using f
func WithFederated(f FederatedSignIn) Option {
	return func(a *Auth) {
		a.federated = f
	}
}

// overrides the clock used for token expiry
func WithClock(now func() time.Time) Option {
	return func(a *Auth) {
		a.now = now
	}
}
