package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/wastewatch/authclient/internal/authclient"
	"codeberg.org/wastewatch/authclient/internal/identity"
)

func runRegister(ctx context.Context, auth Authenticator, reg authclient.Registration) tea.Cmd {
	return func() tea.Msg {
		return OutcomeMsg{op: opRegister, outcome: auth.Register(ctx, reg)}
	}
}

func runLogin(ctx context.Context, auth Authenticator, email, password string) tea.Cmd {
	return func() tea.Msg {
		return OutcomeMsg{op: opLogin, outcome: auth.Login(ctx, email, password)}
	}
}

func runGoogle(ctx context.Context, auth Authenticator) tea.Cmd {
	return func() tea.Msg {
		return OutcomeMsg{op: opGoogle, outcome: auth.LoginWithFederatedProvider(ctx)}
	}
}

func runLogout(ctx context.Context, auth Authenticator) tea.Cmd {
	return func() tea.Msg {
		return OutcomeMsg{op: opLogout, outcome: auth.Logout(ctx)}
	}
}

// waits for the next session change. nil when there is no stream or it closed.
func waitForAuthChange(events <-chan *identity.User) tea.Cmd {
	if events == nil {
		return nil
	}

	return func() tea.Msg {
		user, ok := <-events
		if !ok {
			return nil
		}

		return AuthChangedMsg{user: user}
	}
}

// flash text for a finished operation
func outcomeFlash(op string, outcome authclient.Outcome) (string, FlashLevel) {
	if !outcome.Success {
		return outcome.Error, FlashError
	}

	switch op {
	case opRegister:
		return "Registration successful.", FlashSuccess
	case opLogout:
		return "Logged out.", FlashInfo
	default:
		return "Login successful.", FlashSuccess
	}
}
