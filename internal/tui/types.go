package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"

	"codeberg.org/wastewatch/authclient/internal/authclient"
	"codeberg.org/wastewatch/authclient/internal/identity"
)

// represents the current state of the TUI
type AppState int

const (
	StateWelcome AppState = iota
	StateForm
)

// Authenticator is the part of the auth client the TUI drives.
// *authclient.Client implements it.
type Authenticator interface {
	Register(ctx context.Context, reg authclient.Registration) authclient.Outcome
	Login(ctx context.Context, email, password string) authclient.Outcome
	LoginWithFederatedProvider(ctx context.Context) authclient.Outcome
	Logout(ctx context.Context) authclient.Outcome
	CurrentUser() *identity.User
}

// main TUI application model
type Model struct {
	ctx    context.Context
	auth   Authenticator
	events <-chan *identity.User

	state   AppState
	width   int
	height  int
	welcome *Welcome
	form    *Form
	flash   *Flash
	flashID int
	spinner spinner.Model
	busy    string // label of the operation in flight, "" when idle
	cancel  context.CancelFunc
	user    *identity.User
}

// sent when an auth operation finishes
type OutcomeMsg struct {
	op      string
	outcome authclient.Outcome
}

// sent when the signed-in user changes
type AuthChangedMsg struct {
	user *identity.User
}

// asks the model to open a form
type OpenFormMsg struct {
	kind FormKind
}

// asks the model to show a flash message
type FlashMsg struct {
	text  string
	level FlashLevel
}

// auth operation names
const (
	opRegister = "register"
	opLogin    = "login"
	opGoogle   = "google"
	opLogout   = "logout"
)
