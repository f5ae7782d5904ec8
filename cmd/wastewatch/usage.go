package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

const usageText = `# wastewatch

Sign in to the waste reporting service from the terminal.

## Usage

    wastewatch <command> [flags]

Running without a command on a terminal opens the interactive UI.

## Commands

- **register** create an account (--email, --username, --phone, --role user|worker, --password)
- **login** sign in with email and password (--email, --password)
- **google** sign in with Google in the browser (--timeout)
- **logout** sign out and end the backend session
- **whoami** show the signed-in user
- **token** print a fresh ID token (--force to refresh it now)
- **watch** print sign-in changes until interrupted
- **tui** open the interactive UI
- **help** show this help

Passwords are prompted for when --password is empty, or read from stdin when it is piped.

## Environment

- FIREBASE_API_KEY (required)
- FIREBASE_AUTH_EMULATOR_HOST
- BACKEND_URL (default http://localhost:5000)
- GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, OAUTH_CALLBACK_PORT
- REDIS_URL keeps the session between runs
- REQUEST_TIMEOUT, BACKEND_RATE_LIMIT
- LOG_FILE, ENVIRONMENT
`

// writes the help text, rendered as markdown when w is a terminal
func printUsage(w io.Writer, styled bool) {
	if styled {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			if out, err := r.Render(usageText); err == nil {
				fmt.Fprint(w, out)
				return
			}
		}
	}

	fmt.Fprint(w, usageText)
}
