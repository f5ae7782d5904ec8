package tui

import (
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/wastewatch/authclient/internal/authclient"
	"codeberg.org/wastewatch/authclient/internal/config"
	"codeberg.org/wastewatch/authclient/internal/identity"
)

type fakeAuth struct {
	current      *identity.User
	registration authclient.Registration
	email        string
	outcome      authclient.Outcome

	// federated sign-in waits for its context, like an unanswered consent page
	waitForCancel bool
	deadline      time.Time
}

func (f *fakeAuth) Register(_ context.Context, reg authclient.Registration) authclient.Outcome {
	f.registration = reg
	return f.outcome
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) authclient.Outcome {
	f.email = email
	return f.outcome
}

func (f *fakeAuth) LoginWithFederatedProvider(ctx context.Context) authclient.Outcome {
	if !f.waitForCancel {
		return f.outcome
	}

	f.deadline, _ = ctx.Deadline()
	<-ctx.Done()

	return authclient.Outcome{
		Error: "Firebase: Error (auth/popup-closed-by-user).",
		Kind:  authclient.KindProvider,
	}
}

func (f *fakeAuth) Logout(_ context.Context) authclient.Outcome {
	f.current = nil
	return f.outcome
}

func (f *fakeAuth) CurrentUser() *identity.User {
	return f.current
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func typeText(f *Form, text string) {
	for _, r := range text {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// fills the focused field and moves to the next one
func fill(f *Form, values ...string) {
	for _, v := range values {
		typeText(f, v)
		f.Update(key(tea.KeyTab))
	}
}

func TestForm_LoginSubmission(t *testing.T) {
	f := NewForm(FormLogin)

	typeText(f, "a@b.com")
	f.Update(key(tea.KeyEnter))
	typeText(f, "pw123")

	_, cmd := f.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)

	msg, ok := cmd().(SubmitFormMsg)
	require.True(t, ok)
	assert.Equal(t, FormLogin, msg.kind)
	assert.Equal(t, "a@b.com", msg.registration.Email)
	assert.Equal(t, "pw123", msg.registration.Password)
	assert.Empty(t, msg.registration.Role)
}

func TestForm_RequiredFields(t *testing.T) {
	f := NewForm(FormLogin)
	typeText(f, "a@b.com")

	assert.Equal(t, "Password is required.", f.Validate())

	_, cmd := f.Update(key(tea.KeyCtrlS))
	require.NotNil(t, cmd)

	msg, ok := cmd().(FlashMsg)
	require.True(t, ok)
	assert.Equal(t, FlashWarning, msg.level)
}

func TestForm_RegisterPasswordMismatch(t *testing.T) {
	f := NewForm(FormRegister)
	fill(f, "alice", "a@b.com", "555-0100", "pw123", "pw124")

	assert.Equal(t, "Password and confirm password do not match.", f.Validate())
}

func TestForm_RegisterSubmission(t *testing.T) {
	f := NewForm(FormRegister)
	fill(f, "alice", "a@b.com", "", "pw123", "pw123")

	// focus is on the role selector now
	f.Update(key(tea.KeyRight))
	assert.Equal(t, authclient.RoleWorker, f.Role())

	_, cmd := f.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)

	msg, ok := cmd().(SubmitFormMsg)
	require.True(t, ok)
	assert.Equal(t, authclient.Registration{
		Email:    "a@b.com",
		Password: "pw123",
		Username: "alice",
		Role:     authclient.RoleWorker,
	}, msg.registration)
}

func TestForm_TogglePasswords(t *testing.T) {
	f := NewForm(FormRegister)

	passwords := func() []textinput.EchoMode {
		var modes []textinput.EchoMode
		for _, field := range f.fields {
			if field.secret {
				modes = append(modes, field.input.EchoMode)
			}
		}
		return modes
	}

	assert.Equal(t, []textinput.EchoMode{textinput.EchoPassword, textinput.EchoPassword}, passwords())

	f.Update(key(tea.KeyCtrlT))
	assert.Equal(t, []textinput.EchoMode{textinput.EchoNormal, textinput.EchoNormal}, passwords())

	f.Update(key(tea.KeyCtrlT))
	assert.Equal(t, []textinput.EchoMode{textinput.EchoPassword, textinput.EchoPassword}, passwords())
}

func TestForm_Escape(t *testing.T) {
	_, cmd := NewForm(FormLogin).Update(key(tea.KeyEsc))
	require.NotNil(t, cmd)

	_, ok := cmd().(CloseFormMsg)
	assert.True(t, ok)
}

func TestWelcome_Commands(t *testing.T) {
	w := NewWelcome(false)

	for _, r := range "register" {
		w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := w.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, OpenFormMsg{kind: FormRegister}, cmd())
	assert.Empty(t, w.input)

	// google is hidden without federated sign-in
	for _, r := range "google" {
		w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd = w.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, FlashMsg{text: "unknown command: google.", level: FlashWarning}, cmd())
}

func TestModel_SuccessfulLogin(t *testing.T) {
	user := &identity.User{UID: "uid-1", Email: "a@b.com"}
	auth := &fakeAuth{outcome: authclient.Outcome{Success: true, User: user}}
	m := NewApp(context.Background(), auth, nil, false)

	m.Update(OpenFormMsg{kind: FormLogin})
	assert.Equal(t, StateForm, m.state)

	_, cmd := m.Update(SubmitFormMsg{kind: FormLogin, registration: authclient.Registration{Email: "a@b.com", Password: "pw"}})
	assert.Equal(t, opLogin, m.busy)
	require.NotNil(t, cmd)

	// keys are ignored while busy
	_, keyCmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Nil(t, keyCmd)
	assert.Equal(t, StateForm, m.state)

	auth.current = user
	m.Update(OutcomeMsg{op: opLogin, outcome: auth.Login(context.Background(), "a@b.com", "pw")})

	assert.Empty(t, m.busy)
	assert.Equal(t, StateWelcome, m.state)
	assert.Same(t, user, m.user)
	require.NotNil(t, m.flash)
	assert.Equal(t, "Login successful.", m.flash.text)
	assert.Equal(t, "a@b.com", auth.email)
}

func TestModel_FailedRegistrationKeepsForm(t *testing.T) {
	auth := &fakeAuth{outcome: authclient.Outcome{Error: "email taken", Kind: authclient.KindBackend}}
	m := NewApp(context.Background(), auth, nil, false)

	m.Update(OpenFormMsg{kind: FormRegister})
	m.Update(OutcomeMsg{op: opRegister, outcome: auth.outcome})

	assert.Equal(t, StateForm, m.state)
	require.NotNil(t, m.flash)
	assert.Equal(t, "email taken", m.flash.text)
	assert.Equal(t, FlashError, m.flash.level)
}

func TestModel_FlashExpiry(t *testing.T) {
	m := NewApp(context.Background(), &fakeAuth{}, nil, false)

	m.Update(FlashMsg{text: "first", level: FlashInfo})
	first := m.flash.id
	m.Update(FlashMsg{text: "second", level: FlashInfo})

	// the first timer must not clear the newer message
	m.Update(flashExpiredMsg{id: first})
	require.NotNil(t, m.flash)
	assert.Equal(t, "second", m.flash.text)

	m.Update(flashExpiredMsg{id: m.flash.id})
	assert.Nil(t, m.flash)
}

func TestModel_FollowsAuthChanges(t *testing.T) {
	events := make(chan *identity.User, 1)
	m := NewApp(context.Background(), &fakeAuth{}, events, false)

	user := &identity.User{UID: "uid-1", Email: "a@b.com"}
	events <- user

	msg := waitForAuthChange(events)()
	_, next := m.Update(msg)

	assert.Same(t, user, m.user)
	assert.NotNil(t, next, "model keeps listening")
	assert.Contains(t, m.View(), "signed in as a@b.com")

	close(events)
	assert.Nil(t, waitForAuthChange(events)())
}

func TestModel_Logout(t *testing.T) {
	auth := &fakeAuth{
		current: &identity.User{UID: "uid-1"},
		outcome: authclient.Outcome{Success: true},
	}
	m := NewApp(context.Background(), auth, nil, false)

	_, cmd := m.Update(RunOpMsg{op: opLogout})
	require.NotNil(t, cmd)
	assert.Equal(t, opLogout, m.busy)

	m.Update(runLogout(context.Background(), auth)())

	assert.Nil(t, m.user)
	assert.Equal(t, "Logged out.", m.flash.text)
	assert.Contains(t, m.View(), "not signed in")
}

func TestModel_EscCancelsGoogleSignIn(t *testing.T) {
	auth := &fakeAuth{waitForCancel: true}
	m := NewApp(context.Background(), auth, nil, true)

	_, cmd := m.Update(RunOpMsg{op: opGoogle})
	require.NotNil(t, cmd)
	assert.Equal(t, opGoogle, m.busy)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	require.NotEmpty(t, batch)

	started := time.Now()
	result := make(chan tea.Msg, 1)
	go func() { result <- batch[0]() }()

	m.Update(key(tea.KeyEsc))

	var msg tea.Msg
	select {
	case msg = <-result:
	case <-time.After(5 * time.Second):
		t.Fatal("google sign-in was not canceled")
	}

	assert.WithinDuration(t, started.Add(config.DefaultGoogleTimeout), auth.deadline, 5*time.Second)

	m.Update(msg)

	assert.Empty(t, m.busy)
	assert.Nil(t, m.cancel)
	require.NotNil(t, m.flash)
	assert.Equal(t, FlashError, m.flash.level)
	assert.Contains(t, m.flash.text, "auth/popup-closed-by-user")
}
