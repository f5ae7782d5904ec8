package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/wastewatch/authclient/internal/config"
	"codeberg.org/wastewatch/authclient/internal/identity"
)

// creates the TUI. events is the session change stream; it may be nil.
func NewApp(ctx context.Context, auth Authenticator, events <-chan *identity.User, federated bool) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = infoStyle

	return &Model{
		ctx:     ctx,
		auth:    auth,
		events:  events,
		state:   StateWelcome,
		welcome: NewWelcome(federated),
		spinner: s,
		user:    auth.CurrentUser(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForAuthChange(m.events))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// while an operation runs only esc does anything: it cancels it
		if m.busy != "" {
			if msg.String() == "esc" && m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case AuthChangedMsg:
		m.user = msg.user
		return m, waitForAuthChange(m.events)

	case FlashMsg:
		return m, m.showFlash(msg.text, msg.level)

	case flashExpiredMsg:
		m.expireFlash(msg)
		return m, nil

	case OpenFormMsg:
		m.form = NewForm(msg.kind)
		m.state = StateForm
		return m, textinput.Blink

	case CloseFormMsg:
		m.form = nil
		m.state = StateWelcome
		return m, nil

	case SubmitFormMsg:
		if msg.kind == FormRegister {
			return m, m.start(opRegister, runRegister(m.operationContext(0), m.auth, msg.registration))
		}
		return m, m.start(opLogin, runLogin(m.operationContext(0), m.auth, msg.registration.Email, msg.registration.Password))

	case RunOpMsg:
		return m, m.runOp(msg.op)

	case OutcomeMsg:
		return m, m.finish(msg)
	}

	switch m.state {
	case StateForm:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd

	default:
		var cmd tea.Cmd
		m.welcome, cmd = m.welcome.Update(msg)
		return m, cmd
	}
}

func (m *Model) runOp(op string) tea.Cmd {
	switch op {
	case opGoogle:
		return m.start(opGoogle, runGoogle(m.operationContext(config.DefaultGoogleTimeout), m.auth))

	case opLogout:
		return m.start(opLogout, runLogout(m.operationContext(0), m.auth))

	default:
		return m.showFlash(describeUser(m.auth.CurrentUser()), FlashInfo)
	}
}

// derives the context of the next operation, bounded by timeout when it
// is positive. esc cancels it while the operation runs.
func (m *Model) operationContext(timeout time.Duration) context.Context {
	var ctx context.Context
	if timeout > 0 {
		ctx, m.cancel = context.WithTimeout(m.ctx, timeout)
	} else {
		ctx, m.cancel = context.WithCancel(m.ctx)
	}

	return ctx
}

// marks op as in flight and runs cmd alongside the spinner
func (m *Model) start(op string, cmd tea.Cmd) tea.Cmd {
	m.busy = op
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) finish(msg OutcomeMsg) tea.Cmd {
	m.busy = ""
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	if msg.outcome.Success {
		m.user = m.auth.CurrentUser()
		m.form = nil
		m.state = StateWelcome
	}

	text, level := outcomeFlash(msg.op, msg.outcome)
	return m.showFlash(text, level)
}

func (m *Model) View() string {
	var b strings.Builder

	switch m.state {
	case StateForm:
		b.WriteString("\n")
		b.WriteString(m.form.View())
	default:
		b.WriteString(m.welcome.View(m.user))
	}

	b.WriteString("\n\n")

	if m.busy != "" {
		b.WriteString(m.spinner.View())
		b.WriteString(infoStyle.Render(" " + m.busy + "..."))
		b.WriteString(helpStyle.Render("  esc to cancel"))
	} else {
		b.WriteString(m.flash.View())
	}

	b.WriteString("\n")

	return b.String()
}
