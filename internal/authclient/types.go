package authclient

import (
	"context"
	"encoding/json"

	"codeberg.org/wastewatch/authclient/internal/backend"
	"codeberg.org/wastewatch/authclient/internal/identity"
)

// IdentityProvider is the session manager the client drives.
// *identity.Auth implements it.
type IdentityProvider interface {
	CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*identity.User, error)
	SignInWithEmailAndPassword(ctx context.Context, email, password string) (*identity.User, error)
	SignInWithPopup(ctx context.Context) (*identity.User, error)
	SignOut(ctx context.Context) error
	CurrentUser() *identity.User
	IDToken(ctx context.Context, user *identity.User, forceRefresh bool) (string, error)
	DeleteUser(ctx context.Context, user *identity.User) error
	OnAuthStateChanged(fn func(*identity.User)) func()
	Events(ctx context.Context) <-chan *identity.User
}

// VerificationAPI is the backend that turns a provider token into an
// application session. *backend.Client implements it.
type VerificationAPI interface {
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.Response, error)
	Login(ctx context.Context, req backend.LoginRequest) (*backend.Response, error)
	Logout(ctx context.Context) error
}

// Kind classifies a failed outcome.
type Kind string

const (
	KindProvider   Kind = "provider"
	KindBackend    Kind = "backend"
	KindNetwork    Kind = "network"
	KindTimeout    Kind = "timeout"
	KindValidation Kind = "validation"
	KindInternal   Kind = "internal"
	KindUnknown    Kind = "unknown"

	// the flow failed and the provider account it created could not be removed
	KindInconsistentState Kind = "inconsistent_state"
)

// Outcome is the result of every auth flow: either Success with the
// provider user and the backend payload, or a failure with Error set.
// Build it with succeeded or failed only.
type Outcome struct {
	Success bool            `json:"success"`
	User    *identity.User  `json:"user,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Kind    Kind            `json:"kind,omitempty"`
}

// Registration is the input of Register.
type Registration struct {
	Email    string
	Password string
	Username string
	Phone    string
	Role     string // defaults to RoleUser
}

// application roles accepted at registration
const (
	RoleUser   = "user"
	RoleWorker = "worker"
)
