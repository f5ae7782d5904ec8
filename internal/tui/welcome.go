package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/wastewatch/authclient/internal/identity"
)

// welcome screen model
type Welcome struct {
	input    string
	commands []Command
}

// represents an available TUI command
type Command struct {
	Name        string
	Description string
	Available   bool
}

// sent by commands that run an auth operation
type RunOpMsg struct {
	op string
}

// returns a new welcome screen
func NewWelcome(federated bool) *Welcome {
	commands := []Command{
		{Name: "login", Description: "sign in with email and password", Available: true},
		{Name: "register", Description: "create an account", Available: true},
		{Name: "google", Description: "sign in with google", Available: federated},
		{Name: "logout", Description: "sign out", Available: true},
		{Name: "whoami", Description: "show the signed-in user", Available: true},
		{Name: "quit", Description: "exit wastewatch", Available: true},
	}

	return &Welcome{commands: commands}
}

func (w *Welcome) Update(msg tea.Msg) (*Welcome, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return w, nil
	}

	switch key.String() {
	case "enter":
		cmd := w.executeCommand()
		w.input = ""
		return w, cmd

	case "backspace":
		if len(w.input) > 0 {
			w.input = w.input[:len(w.input)-1]
		}

	default:
		if len(key.String()) == 1 {
			w.input += key.String()
		}
	}

	return w, nil
}

func (w *Welcome) available(name string) bool {
	for _, cmd := range w.commands {
		if cmd.Name == name {
			return cmd.Available
		}
	}

	return false
}

func (w *Welcome) executeCommand() tea.Cmd {
	name := strings.ToLower(strings.TrimSpace(w.input))

	if name == "" {
		return nil
	}

	if !w.available(name) {
		return flash(fmt.Sprintf("unknown command: %s.", name), FlashWarning)
	}

	switch name {
	case "quit":
		return tea.Quit

	case "login":
		return func() tea.Msg { return OpenFormMsg{kind: FormLogin} }

	case "register":
		return func() tea.Msg { return OpenFormMsg{kind: FormRegister} }

	case "whoami":
		return func() tea.Msg { return RunOpMsg{op: "whoami"} }

	default:
		return func() tea.Msg { return RunOpMsg{op: name} }
	}
}

func (w *Welcome) View(user *identity.User) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(logo))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("report waste, track the cleanup"))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(describeUser(user)))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("commands:"))
	b.WriteString("\n\n")

	for _, cmd := range w.commands {
		if !cmd.Available {
			continue
		}

		line := fmt.Sprintf("  %s %s",
			commandStyle.Render(cmd.Name),
			commandDescStyle.Render("- "+cmd.Description),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(promptStyle.Render("> "))
	b.WriteString(inputStyle.Render(w.input + "_"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("type a command and press enter. press ctrl+c to quit."))

	return b.String()
}

func describeUser(user *identity.User) string {
	if user == nil {
		return "not signed in"
	}

	name := user.Email
	if user.DisplayName != "" {
		name = fmt.Sprintf("%s <%s>", user.DisplayName, user.Email)
	}

	return fmt.Sprintf("signed in as %s (%s)", name, user.ProviderID)
}

func flash(text string, level FlashLevel) tea.Cmd {
	return func() tea.Msg {
		return FlashMsg{text: text, level: level}
	}
}
