package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/wastewatch/authclient/internal/authclient"
)

type FormKind int

const (
	FormLogin FormKind = iota
	FormRegister
)

func (k FormKind) String() string {
	if k == FormRegister {
		return "register"
	}

	return "login"
}

// form field keys
const (
	fieldUsername = "username"
	fieldEmail    = "email"
	fieldPhone    = "phone"
	fieldPassword = "password"
	fieldConfirm  = "confirm"
)

const msgPasswordMismatch = "Password and confirm password do not match."

type formField struct {
	key      string
	label    string
	input    textinput.Model
	secret   bool
	required bool
}

// Form collects credentials for login or registration
type Form struct {
	kind          FormKind
	fields        []formField
	roles         []string
	role          int
	focus         int
	showPasswords bool
}

// sent when a valid form is submitted
type SubmitFormMsg struct {
	kind         FormKind
	registration authclient.Registration
}

// sent when the user leaves the form
type CloseFormMsg struct{}

// returns a new form of the given kind
func NewForm(kind FormKind) *Form {
	f := &Form{kind: kind}

	switch kind {
	case FormRegister:
		f.fields = []formField{
			newField(fieldUsername, "username", false, true),
			newField(fieldEmail, "email", false, true),
			newField(fieldPhone, "phone", false, false),
			newField(fieldPassword, "password", true, true),
			newField(fieldConfirm, "confirm password", true, true),
		}
		f.roles = []string{authclient.RoleUser, authclient.RoleWorker}

	default:
		f.fields = []formField{
			newField(fieldEmail, "email", false, true),
			newField(fieldPassword, "password", true, true),
		}
	}

	f.fields[0].input.Focus()

	return f
}

func newField(key, label string, secret, required bool) formField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 40
	ti.TextStyle = inputStyle

	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}

	return formField{
		key:      key,
		label:    label,
		input:    ti,
		secret:   secret,
		required: required,
	}
}

// number of focusable rows: the inputs plus the role selector
func (f *Form) rows() int {
	if len(f.roles) > 0 {
		return len(f.fields) + 1
	}

	return len(f.fields)
}

func (f *Form) onRoleSelector() bool {
	return len(f.roles) > 0 && f.focus == len(f.fields)
}

func (f *Form) setFocus(i int) tea.Cmd {
	rows := f.rows()
	f.focus = ((i % rows) + rows) % rows

	var cmd tea.Cmd
	for idx := range f.fields {
		if idx == f.focus {
			cmd = f.fields[idx].input.Focus()
		} else {
			f.fields[idx].input.Blur()
		}
	}

	return cmd
}

// flips every password field between masked and plain text
func (f *Form) TogglePasswords() {
	f.showPasswords = !f.showPasswords

	mode := textinput.EchoPassword
	if f.showPasswords {
		mode = textinput.EchoNormal
	}

	for idx := range f.fields {
		if f.fields[idx].secret {
			f.fields[idx].input.EchoMode = mode
		}
	}
}

func (f *Form) Value(key string) string {
	for _, field := range f.fields {
		if field.key == key {
			return strings.TrimSpace(field.input.Value())
		}
	}

	return ""
}

// returns the selected role, or "" for a login form
func (f *Form) Role() string {
	if len(f.roles) == 0 {
		return ""
	}

	return f.roles[f.role]
}

// checks the form before submission and returns the message to show, or ""
func (f *Form) Validate() string {
	for _, field := range f.fields {
		if field.required && strings.TrimSpace(field.input.Value()) == "" {
			return fmt.Sprintf("%s is required.", strings.ToUpper(field.label[:1])+field.label[1:])
		}
	}

	if f.kind == FormRegister && f.fields[f.index(fieldPassword)].input.Value() != f.fields[f.index(fieldConfirm)].input.Value() {
		return msgPasswordMismatch
	}

	return ""
}

func (f *Form) index(key string) int {
	for idx, field := range f.fields {
		if field.key == key {
			return idx
		}
	}

	return -1
}

// builds the submission; passwords are taken verbatim
func (f *Form) submission() SubmitFormMsg {
	return SubmitFormMsg{
		kind: f.kind,
		registration: authclient.Registration{
			Email:    f.Value(fieldEmail),
			Password: f.fields[f.index(fieldPassword)].input.Value(),
			Username: f.Value(fieldUsername),
			Phone:    f.Value(fieldPhone),
			Role:     f.Role(),
		},
	}
}

func (f *Form) submit() tea.Cmd {
	if problem := f.Validate(); problem != "" {
		return func() tea.Msg {
			return FlashMsg{text: problem, level: FlashWarning}
		}
	}

	msg := f.submission()
	return func() tea.Msg {
		return msg
	}
}

func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return f, func() tea.Msg { return CloseFormMsg{} }

		case "ctrl+t":
			f.TogglePasswords()
			return f, nil

		case "tab", "down":
			return f, f.setFocus(f.focus + 1)

		case "shift+tab", "up":
			return f, f.setFocus(f.focus - 1)

		case "ctrl+s":
			return f, f.submit()

		case "enter":
			if f.focus == f.rows()-1 {
				return f, f.submit()
			}
			return f, f.setFocus(f.focus + 1)
		}

		if f.onRoleSelector() {
			switch key.String() {
			case "left", "right", " ":
				f.role = (f.role + 1) % len(f.roles)
			}
			return f, nil
		}
	}

	if f.onRoleSelector() {
		return f, nil
	}

	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)

	return f, cmd
}

func (f *Form) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(strings.ToUpper(f.kind.String())))
	b.WriteString("\n\n")

	for idx, field := range f.fields {
		label := labelStyle
		if idx == f.focus {
			label = labelFocusedStyle
		}

		b.WriteString(label.Render(field.label))
		b.WriteString(promptStyle.Render("> "))
		b.WriteString(field.input.View())
		b.WriteString("\n")
	}

	if len(f.roles) > 0 {
		label := labelStyle
		if f.onRoleSelector() {
			label = labelFocusedStyle
		}

		options := make([]string, len(f.roles))
		for idx, role := range f.roles {
			if idx == f.role {
				options[idx] = commandStyle.Render("(•) " + role)
			} else {
				options[idx] = commandDescStyle.Render("( ) " + role)
			}
		}

		b.WriteString(label.Render("role"))
		b.WriteString(promptStyle.Render("> "))
		b.WriteString(strings.Join(options, "  "))
		b.WriteString("\n")
	}

	visibility := "show"
	if f.showPasswords {
		visibility = "hide"
	}

	b.WriteString(helpStyle.Render(fmt.Sprintf(
		"tab: next field. ctrl+t: %s passwords. enter on the last field: submit. esc: back.", visibility)))

	return b.String()
}
