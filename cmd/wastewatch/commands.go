package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"codeberg.org/wastewatch/authclient/internal/authclient"
	"codeberg.org/wastewatch/authclient/internal/config"
	"codeberg.org/wastewatch/authclient/internal/identity"
	"codeberg.org/wastewatch/authclient/internal/logger"
	"codeberg.org/wastewatch/authclient/internal/tui"
)

type commandFunc func(ctx context.Context, a *app, args []string) int

var commands = map[string]commandFunc{
	"register": runRegister,
	"login":    runLogin,
	"google":   runGoogle,
	"logout":   runLogout,
	"whoami":   runWhoami,
	"token":    runToken,
	"watch":    runWatch,
	"tui":      runTUI,
	"help":     nil,
}

// one reader for the whole run so piped input isn't lost between prompts
var stdin = bufio.NewReader(os.Stdin)

func runRegister(ctx context.Context, a *app, args []string) int {
	flags, err := config.ParseRegisterFlags(args, os.Stderr)
	if err != nil {
		return usageError(err)
	}

	password := flags.Password
	if password == "" {
		if password, err = readPassword("Password: "); err != nil {
			return usageError(err)
		}

		if term.IsTerminal(os.Stdin.Fd()) {
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return usageError(err)
			}

			if confirm != password {
				return usageError(errors.New("passwords do not match"))
			}
		}
	}

	return printOutcome(a.client.Register(ctx, authclient.Registration{
		Email:    flags.Email,
		Password: password,
		Username: flags.Username,
		Phone:    flags.Phone,
		Role:     flags.Role,
	}))
}

func runLogin(ctx context.Context, a *app, args []string) int {
	flags, err := config.ParseLoginFlags(args, os.Stderr)
	if err != nil {
		return usageError(err)
	}

	password := flags.Password
	if password == "" {
		if password, err = readPassword("Password: "); err != nil {
			return usageError(err)
		}
	}

	return printOutcome(a.client.Login(ctx, flags.Email, password))
}

func runGoogle(ctx context.Context, a *app, args []string) int {
	flags, err := config.ParseGoogleFlags(args, os.Stderr)
	if err != nil {
		return usageError(err)
	}

	if !a.cfg.FederatedEnabled() {
		return usageError(errors.New("google sign-in needs GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET"))
	}

	ctx, cancel := context.WithTimeout(ctx, flags.Timeout)
	defer cancel()

	fmt.Fprintln(os.Stderr, "waiting for sign-in to finish in the browser...")

	return printOutcome(a.client.LoginWithFederatedProvider(ctx))
}

func runLogout(ctx context.Context, a *app, _ []string) int {
	return printOutcome(a.client.Logout(ctx))
}

func runWhoami(_ context.Context, a *app, _ []string) int {
	user := a.client.CurrentUser()
	if user == nil {
		fmt.Fprintln(os.Stderr, "not signed in")
		return 1
	}

	printJSON(user)
	return 0
}

func runToken(ctx context.Context, a *app, args []string) int {
	flags, err := config.ParseTokenFlags(args, os.Stderr)
	if err != nil {
		return usageError(err)
	}

	var token string
	if flags.Force {
		token, err = a.session.IDToken(ctx, a.session.CurrentUser(), true)
	} else {
		token, err = a.client.IDToken(ctx)
	}

	if err != nil {
		logger.ErrorErr(err, "failed to get id token")
		return 1
	}

	if token == "" {
		fmt.Fprintln(os.Stderr, "not signed in")
		return 1
	}

	fmt.Println(token)
	return 0
}

// auth state as printed by watch
type authEvent struct {
	SignedIn bool           `json:"signedIn"`
	User     *identity.User `json:"user,omitempty"`
}

func runWatch(ctx context.Context, a *app, _ []string) int {
	for user := range a.client.Events(ctx) {
		printJSON(authEvent{SignedIn: user != nil, User: user})
	}

	return 0
}

func runTUI(ctx context.Context, a *app, _ []string) int {
	model := tui.NewApp(ctx, a.client, a.client.Events(ctx), a.cfg.FederatedEnabled())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "error running wastewatch: %v\n", err)
		return 1
	}

	return 0
}

// reads a password without echo on a terminal, or one line from piped stdin
func readPassword(prompt string) (string, error) {
	fd := os.Stdin.Fd()

	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// prints the outcome and returns the exit code for it
func printOutcome(outcome authclient.Outcome) int {
	printJSON(outcome)

	if !outcome.Success {
		return 1
	}

	return 0
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		logger.ErrorErr(err, "failed to write output")
	}
}

func usageError(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	fmt.Fprintln(os.Stderr, err)
	return 2
}
