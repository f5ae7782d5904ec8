package authclient

import (
	"context"
	"slices"
	"time"

	"codeberg.org/wastewatch/authclient/internal/backend"
	"codeberg.org/wastewatch/authclient/internal/identity"
	"codeberg.org/wastewatch/authclient/internal/logger"
)

// Client runs the authentication flows against the identity provider and
// the backend verification API. Flows never return errors: every failure,
// panics included, becomes a failed Outcome.
type Client struct {
	provider IdentityProvider
	api      VerificationAPI

	rollbackAttempts int
	rollbackBackoff  time.Duration
	shutdown         context.Context
}

type Option func(*Client)

// sets how often a failed registration retries deleting its provider
// account, and the initial delay between attempts (doubled each retry)
func WithRollbackPolicy(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.rollbackAttempts = max(attempts, 1)
		c.rollbackBackoff = backoff
	}
}

// ends rollback backoff waits early once ctx is done. the attempt in
// flight still finishes; no further attempts are made.
func WithShutdown(ctx context.Context) Option {
	return func(c *Client) {
		c.shutdown = ctx
	}
}

// creates a new auth client
func New(provider IdentityProvider, api VerificationAPI, opts ...Option) *Client {
	c := &Client{
		provider:         provider,
		api:              api,
		rollbackAttempts: 3,
		rollbackBackoff:  500 * time.Millisecond,
		shutdown:         context.Background(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// creates a provider account and registers it with the backend. if any
// step after account creation fails, the account is deleted again.
func (c *Client) Register(ctx context.Context, reg Registration) Outcome {
	return guard("register", msgRegistrationFailed, func() Outcome {
		if reg.Role == "" {
			reg.Role = RoleUser
		}

		if !slices.Contains([]string{RoleUser, RoleWorker}, reg.Role) {
			return failed(KindValidation, "Invalid role: "+reg.Role)
		}

		user, err := c.provider.CreateUserWithEmailAndPassword(ctx, reg.Email, reg.Password)
		if err != nil {
			return failedWith(err, messageOr(err, msgRegistrationFailed))
		}

		token, err := c.provider.IDToken(ctx, user, false)
		if err != nil {
			return c.compensate(ctx, user, err)
		}

		resp, err := c.api.Register(ctx, backend.RegisterRequest{
			IDToken:     token,
			Username:    reg.Username,
			Email:       reg.Email,
			Phone:       reg.Phone,
			Role:        reg.Role,
			FirebaseUID: user.UID,
		})
		if err != nil {
			return c.compensate(ctx, user, err)
		}

		logger.Info("user registered", "uid", user.UID, "role", reg.Role)

		return succeeded(user, resp.Payload)
	})
}

// signs in with email and password and verifies the session with the backend
func (c *Client) Login(ctx context.Context, email, password string) Outcome {
	return guard("login", msgLoginFailed, func() Outcome {
		user, err := c.provider.SignInWithEmailAndPassword(ctx, email, password)
		if err != nil {
			return failedWith(err, loginMessage(err))
		}

		token, err := c.provider.IDToken(ctx, user, false)
		if err != nil {
			return failedWith(err, loginMessage(err))
		}

		resp, err := c.api.Login(ctx, backend.LoginRequest{
			IDToken: token,
			Email:   email,
		})
		if err != nil {
			return failedWith(err, loginMessage(err))
		}

		return succeeded(user, resp.Payload)
	})
}

// runs the interactive federated sign-in and verifies the session with the
// backend, flagged as a federated login
func (c *Client) LoginWithFederatedProvider(ctx context.Context) Outcome {
	return guard("federated login", msgLoginFailed, func() Outcome {
		user, err := c.provider.SignInWithPopup(ctx)
		if err != nil {
			return failedWith(err, messageOr(err, msgLoginFailed))
		}

		token, err := c.provider.IDToken(ctx, user, false)
		if err != nil {
			return failedWith(err, messageOr(err, msgLoginFailed))
		}

		resp, err := c.api.Login(ctx, backend.LoginRequest{
			IDToken:      token,
			Email:        user.Email,
			Username:     user.DisplayName,
			FirebaseUID:  user.UID,
			IsGoogleAuth: true,
		})
		if err != nil {
			return failedWith(err, messageOr(err, msgLoginFailed))
		}

		return succeeded(user, resp.Payload)
	})
}

// ends the provider session and clears the backend session. signing out
// while signed out succeeds.
func (c *Client) Logout(ctx context.Context) Outcome {
	return guard("logout", msgLogoutFailed, func() Outcome {
		if err := c.provider.SignOut(ctx); err != nil {
			return failedWith(err, messageOr(err, msgLogoutFailed))
		}

		if err := c.api.Logout(ctx); err != nil {
			return failedWith(err, messageOr(err, msgLogoutFailed))
		}

		return succeeded(nil, nil)
	})
}

// returns the signed-in user, or nil
func (c *Client) CurrentUser() *identity.User {
	return c.provider.CurrentUser()
}

// returns a fresh ID token for the signed-in user, or "" when signed out.
// unlike the flows, provider failures are returned to the caller.
func (c *Client) IDToken(ctx context.Context) (string, error) {
	user := c.provider.CurrentUser()
	if user == nil {
		return "", nil
	}

	return c.provider.IDToken(ctx, user, false)
}

// calls fn with the current user now and after every session change.
// the returned function unsubscribes.
func (c *Client) OnAuthChange(fn func(*identity.User)) func() {
	return c.provider.OnAuthStateChanged(fn)
}

// streams session changes until ctx is done
func (c *Client) Events(ctx context.Context) <-chan *identity.User {
	return c.provider.Events(ctx)
}

// runs a flow, turning a panic into a failed outcome
func guard(op, fallback string, flow func() Outcome) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("auth flow panicked", "op", op, "panic", r)
			out = failed(KindInternal, fallback)
		}
	}()

	return flow()
}
