package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	autherrors "codeberg.org/wastewatch/authclient/internal/errors"
	"codeberg.org/wastewatch/authclient/internal/logger"
)

// Auth owns the provider session: the signed-in user, its tokens and the
// listeners watching it. One Auth is shared by everything in the process.
type Auth struct {
	transport   Transport
	persistence Persistence
	federated   FederatedSignIn
	now         func() time.Time

	mu      sync.RWMutex
	current *User

	listenersMu sync.Mutex
	listeners   map[int]func(*User)
	nextID      int

	// transitions waiting for delivery, in the order they happened
	notifyMu    sync.Mutex
	pending     []notification
	dispatching bool
}

// a state to deliver; target nil means every listener
type notification struct {
	user   *User
	target func(*User)
}

// creates a session manager on top of transport
func New(transport Transport, opts ...Option) *Auth {
	a := &Auth{
		transport:   transport,
		persistence: NewMemoryPersistence(),
		now:         time.Now,
		listeners:   make(map[int]func(*User)),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// loads a persisted session, if any, and makes it current
func (a *Auth) Restore(ctx context.Context) (*User, error) {
	stored, err := a.persistence.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	if stored == nil || stored.UID == "" || stored.RefreshToken == "" {
		return nil, nil
	}

	expiresAt := stored.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = tokenExpiry(stored.IDToken, time.Time{})
	}

	user := a.newUser(userFields{
		uid:           stored.UID,
		email:         stored.Email,
		displayName:   stored.DisplayName,
		providerID:    stored.ProviderID,
		emailVerified: stored.EmailVerified,
	}, stored.IDToken, stored.RefreshToken, expiresAt)

	a.setCurrent(ctx, user, false)

	logger.Debug("restored persisted session", "uid", user.UID)

	return user, nil
}

// creates an account and signs it in
func (a *Auth) CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*User, error) {
	cred, err := a.transport.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user := a.userFromCredential(cred)
	a.setCurrent(ctx, user, true)

	return user, nil
}

// signs in with email and password
func (a *Auth) SignInWithEmailAndPassword(ctx context.Context, email, password string) (*User, error) {
	cred, err := a.transport.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user := a.userFromCredential(cred)

	// the password sign-in response omits verification state
	if info, err := a.transport.Lookup(ctx, cred.IDToken); err == nil {
		user.EmailVerified = info.EmailVerified
		if user.DisplayName == "" {
			user.DisplayName = info.DisplayName
		}
	} else {
		logger.Debug("account lookup after sign-in failed", "uid", user.UID, "error", err)
	}

	a.setCurrent(ctx, user, true)

	return user, nil
}

// runs the configured federated sign-in and exchanges its credential
func (a *Auth) SignInWithPopup(ctx context.Context) (*User, error) {
	if a.federated == nil {
		return nil, autherrors.NewProviderError(autherrors.CodeOperationNotAllowed)
	}

	idpCredential, err := a.federated.Credential(ctx)
	if err != nil {
		return nil, err
	}

	cred, err := a.transport.SignInWithIdP(ctx, *idpCredential)
	if err != nil {
		return nil, err
	}

	user := a.userFromCredential(cred)
	user.EmailVerified = true
	a.setCurrent(ctx, user, true)

	return user, nil
}

// ends the current session; signing out twice is not an error
func (a *Auth) SignOut(ctx context.Context) error {
	a.setCurrent(ctx, nil, false)

	if err := a.persistence.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}

	return nil
}

// returns the signed-in user, or nil
func (a *Auth) CurrentUser() *User {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.current
}

// returns a fresh ID token for user
func (a *Auth) IDToken(ctx context.Context, user *User, forceRefresh bool) (string, error) {
	if user == nil {
		return "", autherrors.NewProviderError(autherrors.CodeNoCurrentUser)
	}

	return user.IDToken(ctx, forceRefresh)
}

// deletes user's account and signs it out if it is current.
// an account that no longer exists counts as deleted.
func (a *Auth) DeleteUser(ctx context.Context, user *User) error {
	if user == nil {
		return autherrors.NewProviderError(autherrors.CodeNoCurrentUser)
	}

	token, err := user.IDToken(ctx, false)
	if err == nil {
		err = a.transport.Delete(ctx, token)
	}

	if err != nil && !autherrors.HasCode(err, autherrors.CodeUserNotFound) {
		return err
	}

	if current := a.CurrentUser(); current != nil && current.UID == user.UID {
		a.setCurrent(ctx, nil, false)
		if err := a.persistence.Clear(ctx); err != nil {
			logger.Warn("failed to clear persisted session after delete", "uid", user.UID, "error", err)
		}
	}

	return nil
}

// registers fn for session transitions and calls it with the current
// user first. the returned function unsubscribes.
func (a *Auth) OnAuthStateChanged(fn func(*User)) func() {
	// no transition can slip between registering fn and queuing its first state
	a.mu.RLock()
	a.listenersMu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.listenersMu.Unlock()

	a.enqueue(notification{user: a.current, target: fn})
	a.mu.RUnlock()

	a.dispatch()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.listenersMu.Lock()
			delete(a.listeners, id)
			a.listenersMu.Unlock()
		})
	}
}

// streams session transitions until ctx is done. the stream holds only
// the latest state, so a slow reader skips intermediate transitions.
func (a *Auth) Events(ctx context.Context) <-chan *User {
	ch := make(chan *User, 1)

	var mu sync.Mutex
	closed := false

	unsubscribe := a.OnAuthStateChanged(func(user *User) {
		mu.Lock()
		defer mu.Unlock()

		if closed {
			return
		}

		select {
		case ch <- user:
		default:
			// drop the stale state in favor of the new one
			select {
			case <-ch:
			default:
			}
			ch <- user
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()

		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}

// swaps the current user, persists it, and notifies listeners when the
// signed-in identity changed. listeners see transitions in swap order.
func (a *Auth) setCurrent(ctx context.Context, user *User, persist bool) {
	a.mu.Lock()
	previous := a.current
	a.current = user
	changed := uidOf(previous) != uidOf(user)
	if changed {
		a.enqueue(notification{user: user})
	}
	a.mu.Unlock()

	if persist && user != nil {
		a.persist(ctx, user)
	}

	if changed {
		a.dispatch()
	}
}

// queues n. callers hold a.mu so queue order matches swap order.
func (a *Auth) enqueue(n notification) {
	a.notifyMu.Lock()
	a.pending = append(a.pending, n)
	a.notifyMu.Unlock()
}

// delivers queued notifications one at a time. a caller that finds a
// delivery in progress leaves its notification to that goroutine, which
// also covers listeners that change the session themselves.
func (a *Auth) dispatch() {
	a.notifyMu.Lock()
	if a.dispatching {
		a.notifyMu.Unlock()
		return
	}
	a.dispatching = true

	for len(a.pending) > 0 {
		n := a.pending[0]
		a.pending = a.pending[1:]
		a.notifyMu.Unlock()

		if n.target != nil {
			callListener(n.target, n.user)
		} else {
			for _, fn := range a.snapshotListeners() {
				callListener(fn, n.user)
			}
		}

		a.notifyMu.Lock()
	}

	a.dispatching = false
	a.notifyMu.Unlock()
}

func (a *Auth) snapshotListeners() []func(*User) {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()

	listeners := make([]func(*User), 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}

	return listeners
}

func (a *Auth) persist(ctx context.Context, user *User) {
	idToken, refreshToken, expiresAt := user.tokens.snapshot()

	err := a.persistence.Save(ctx, PersistedUser{
		UID:           user.UID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		ProviderID:    user.ProviderID,
		EmailVerified: user.EmailVerified,
		IDToken:       idToken,
		RefreshToken:  refreshToken,
		ExpiresAt:     expiresAt,
	})

	if err != nil {
		logger.Warn("failed to persist session", "uid", user.UID, "error", err)
	}
}

type userFields struct {
	uid           string
	email         string
	displayName   string
	providerID    string
	emailVerified bool
}

func (a *Auth) userFromCredential(cred *Credential) *User {
	expiresAt := a.now().Add(cred.ExpiresIn)
	if cred.ExpiresIn <= 0 {
		expiresAt = tokenExpiry(cred.IDToken, a.now())
	}

	return a.newUser(userFields{
		uid:         cred.UID,
		email:       cred.Email,
		displayName: cred.DisplayName,
		providerID:  cred.ProviderID,
	}, cred.IDToken, cred.RefreshToken, expiresAt)
}

func (a *Auth) newUser(fields userFields, idToken, refreshToken string, expiresAt time.Time) *User {
	user := &User{
		UID:           fields.uid,
		Email:         fields.email,
		DisplayName:   fields.displayName,
		ProviderID:    fields.providerID,
		EmailVerified: fields.emailVerified,
	}

	user.tokens = &tokenSource{
		uid:          fields.uid,
		idToken:      idToken,
		refreshToken: refreshToken,
		expiresAt:    expiresAt,
		refresh:      a.transport.Refresh,
		now:          a.now,
		onRefresh: func(ctx context.Context, _ *tokenSource) {
			if current := a.CurrentUser(); current == user {
				a.persist(ctx, user)
			}
		},
		onFailure: func(ctx context.Context, _ string, err error) {
			a.handleRefreshFailure(ctx, user, err)
		},
	}

	return user
}

// a refresh rejected because the account is gone or disabled ends the session
func (a *Auth) handleRefreshFailure(ctx context.Context, user *User, err error) {
	switch autherrors.ProviderCode(err) {
	case autherrors.CodeUserNotFound, autherrors.CodeUserDisabled,
		autherrors.CodeUserTokenExpired, autherrors.CodeInvalidRefreshToken:
	default:
		return
	}

	if a.CurrentUser() != user {
		return
	}

	logger.Info("session revoked by provider, signing out", "uid", user.UID, "code", autherrors.ProviderCode(err))

	a.setCurrent(ctx, nil, false)
	if clearErr := a.persistence.Clear(ctx); clearErr != nil {
		logger.Warn("failed to clear persisted session", "uid", user.UID, "error", clearErr)
	}
}

func callListener(fn func(*User), user *User) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("auth state listener panicked", "panic", r)
		}
	}()

	fn(user)
}

func uidOf(user *User) string {
	if user == nil {
		return ""
	}

	return user.UID
}
