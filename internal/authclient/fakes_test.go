package authclient

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/stretchr/testify/mock"

	"codeberg.org/wastewatch/authclient/internal/backend"
	autherrors "codeberg.org/wastewatch/authclient/internal/errors"
	"codeberg.org/wastewatch/authclient/internal/identity"
)

// stateful stand-in for the identity provider session
type fakeProvider struct {
	mu       sync.Mutex
	accounts map[string]fakeAccount // by email
	current  *identity.User
	nextUID  int

	tokenErr    error
	signOutErr  error
	popupUser   *identity.User
	popupErr    error
	deleteErrs  []error // consumed one per DeleteUser call
	deleteCalls int
	panicWith   any

	listeners []func(*identity.User)
}

type fakeAccount struct {
	user     *identity.User
	password string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{accounts: make(map[string]fakeAccount)}
}

func (f *fakeProvider) exists(email string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.accounts[email]
	return ok
}

func (f *fakeProvider) addAccount(email, password string) *identity.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextUID++
	user := &identity.User{UID: fmt.Sprintf("uid-%d", f.nextUID), Email: email, ProviderID: identity.ProviderPassword}
	f.accounts[email] = fakeAccount{user: user, password: password}

	return user
}

func (f *fakeProvider) setCurrent(user *identity.User) {
	f.mu.Lock()
	f.current = user
	listeners := slices.Clone(f.listeners)
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(user)
	}
}

func (f *fakeProvider) CreateUserWithEmailAndPassword(_ context.Context, email, password string) (*identity.User, error) {
	if f.panicWith != nil {
		panic(f.panicWith)
	}

	if f.exists(email) {
		return nil, autherrors.NewProviderError(autherrors.CodeEmailAlreadyInUse)
	}

	if len(password) < 4 {
		return nil, &autherrors.ProviderError{
			Code:    autherrors.CodeWeakPassword,
			Message: "Firebase: Password should be at least 6 characters (auth/weak-password).",
		}
	}

	user := f.addAccount(email, password)
	f.setCurrent(user)

	return user, nil
}

func (f *fakeProvider) SignInWithEmailAndPassword(_ context.Context, email, password string) (*identity.User, error) {
	if f.panicWith != nil {
		panic(f.panicWith)
	}

	f.mu.Lock()
	acc, ok := f.accounts[email]
	f.mu.Unlock()

	if !ok {
		return nil, autherrors.NewProviderError(autherrors.CodeUserNotFound)
	}

	if acc.password != password {
		return nil, autherrors.NewProviderError(autherrors.CodeWrongPassword)
	}

	f.setCurrent(acc.user)

	return acc.user, nil
}

func (f *fakeProvider) SignInWithPopup(_ context.Context) (*identity.User, error) {
	if f.popupErr != nil {
		return nil, f.popupErr
	}

	f.setCurrent(f.popupUser)

	return f.popupUser, nil
}

func (f *fakeProvider) SignOut(_ context.Context) error {
	if f.signOutErr != nil {
		return f.signOutErr
	}

	if f.CurrentUser() != nil {
		f.setCurrent(nil)
	}

	return nil
}

func (f *fakeProvider) CurrentUser() *identity.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.current
}

func (f *fakeProvider) IDToken(_ context.Context, user *identity.User, _ bool) (string, error) {
	if user == nil {
		return "", autherrors.NewProviderError(autherrors.CodeNoCurrentUser)
	}

	if f.tokenErr != nil {
		return "", f.tokenErr
	}

	return "token-" + user.UID, nil
}

func (f *fakeProvider) DeleteUser(ctx context.Context, user *identity.User) error {
	f.mu.Lock()
	f.deleteCalls++
	var err error
	if len(f.deleteErrs) > 0 {
		err, f.deleteErrs = f.deleteErrs[0], f.deleteErrs[1:]
	}
	f.mu.Unlock()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err != nil {
		return err
	}

	f.mu.Lock()
	for email, acc := range f.accounts {
		if acc.user.UID == user.UID {
			delete(f.accounts, email)
		}
	}
	wasCurrent := f.current != nil && f.current.UID == user.UID
	f.mu.Unlock()

	if wasCurrent {
		f.setCurrent(nil)
	}

	return nil
}

func (f *fakeProvider) OnAuthStateChanged(fn func(*identity.User)) func() {
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	f.mu.Unlock()

	fn(f.CurrentUser())

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listeners = nil
	}
}

func (f *fakeProvider) Events(_ context.Context) <-chan *identity.User {
	ch := make(chan *identity.User, 1)
	ch <- f.CurrentUser()
	close(ch)

	return ch
}

// backend verification API mock
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Register(ctx context.Context, req backend.RegisterRequest) (*backend.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*backend.Response)
	return resp, args.Error(1)
}

func (m *mockAPI) Login(ctx context.Context, req backend.LoginRequest) (*backend.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*backend.Response)
	return resp, args.Error(1)
}

func (m *mockAPI) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func okResponse(body string) *backend.Response {
	return &backend.Response{Status: 200, Payload: []byte(body)}
}
