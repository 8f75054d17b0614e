package views

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskhold/internal/session"
	"github.com/tgienger/taskhold/internal/ui/keys"
	"github.com/tgienger/taskhold/internal/ui/styles"
)

// ShowLogin signals to switch back to the sign-in screen
type ShowLogin struct{}

type registerFailedMsg struct {
	reason string
}

// RegisterView is the account creation screen
type RegisterView struct {
	session *session.Store
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	name       textinput.Model
	email      textinput.Model
	password   textinput.Model
	confirm    textinput.Model
	focusIdx   int // 0-3 inputs, 4=create button, 5=login link
	errMsg     string
	submitting bool
}

// NewRegisterView creates the account creation screen
func NewRegisterView(sess *session.Store) *RegisterView {
	name := textinput.New()
	name.Placeholder = "Full name"
	name.CharLimit = 100
	name.Focus()

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 100

	password := textinput.New()
	password.Placeholder = "Password (min 6 characters)"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword

	confirm := textinput.New()
	confirm.Placeholder = "Confirm password"
	confirm.CharLimit = 100
	confirm.EchoMode = textinput.EchoPassword

	return &RegisterView{
		session:  sess,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		name:     name,
		email:    email,
		password: password,
		confirm:  confirm,
	}
}

func (v *RegisterView) Init() tea.Cmd {
	return textinput.Blink
}

// submit validates locally before calling the store. The session store
// only checks email uniqueness; field presence, password match and
// minimum length are this screen's contract.
func (v *RegisterView) submit() tea.Cmd {
	name := strings.TrimSpace(v.name.Value())
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	confirm := v.confirm.Value()

	if name == "" || email == "" || password == "" || confirm == "" {
		return func() tea.Msg { return registerFailedMsg{reason: "Please fill in all fields"} }
	}
	if password != confirm {
		return func() tea.Msg { return registerFailedMsg{reason: "Passwords do not match"} }
	}
	if len(password) < 6 {
		return func() tea.Msg { return registerFailedMsg{reason: "Password must be at least 6 characters"} }
	}

	return func() tea.Msg {
		ident, err := v.session.Register(name, email, password)
		if err != nil {
			if errors.Is(err, session.ErrDuplicateIdentity) {
				return registerFailedMsg{reason: "Email already registered"}
			}
			return registerFailedMsg{reason: "Registration failed"}
		}
		return LoggedIn{Identity: ident}
	}
}

// Update handles messages
func (v *RegisterView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case registerFailedMsg:
		v.submitting = false
		v.errMsg = msg.reason
		return v, nil

	case tea.KeyMsg:
		if v.submitting {
			return v, nil
		}

		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return ShowLogin{} }

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % 6
			v.updateFocus()
			return v, textinput.Blink

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + 5) % 6
			v.updateFocus()
			return v, textinput.Blink

		case key.Matches(msg, v.keys.Enter):
			switch {
			case v.focusIdx < 3:
				v.focusIdx++
				v.updateFocus()
				return v, nil
			case v.focusIdx == 5:
				return v, func() tea.Msg { return ShowLogin{} }
			default:
				v.submitting = true
				v.errMsg = ""
				return v, v.submit()
			}

		case msg.String() == "ctrl+s":
			v.submitting = true
			v.errMsg = ""
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.name, cmd = v.name.Update(msg)
	case 1:
		v.email, cmd = v.email.Update(msg)
	case 2:
		v.password, cmd = v.password.Update(msg)
	case 3:
		v.confirm, cmd = v.confirm.Update(msg)
	}
	return v, cmd
}

func (v *RegisterView) updateFocus() {
	v.name.Blur()
	v.email.Blur()
	v.password.Blur()
	v.confirm.Blur()
	switch v.focusIdx {
	case 0:
		v.name.Focus()
	case 1:
		v.email.Focus()
	case 2:
		v.password.Focus()
	case 3:
		v.confirm.Focus()
	}
}

// View renders the view
func (v *RegisterView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	inputStyles := make([]lipgloss.Style, 4)
	for i := range inputStyles {
		inputStyles[i] = s.Input
	}
	btnStyle := s.Button
	linkStyle := s.TitleMuted

	switch {
	case v.focusIdx < 4:
		inputStyles[v.focusIdx] = s.InputFocused
	case v.focusIdx == 4:
		btnStyle = s.ButtonFocused
	case v.focusIdx == 5:
		linkStyle = s.Title
	}

	inputWidth := clamp(contentWidth-6, 20, 40)

	status := ""
	if v.submitting {
		status = s.TitleMuted.Render("Creating account...")
	} else if v.errMsg != "" {
		status = s.ErrorText.Render(v.errMsg)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Create Account"),
		s.TitleMuted.Render("Sign up to get started"),
		"",
		inputStyles[0].Width(inputWidth).Render(v.name.View()),
		inputStyles[1].Width(inputWidth).Render(v.email.View()),
		inputStyles[2].Width(inputWidth).Render(v.password.View()),
		inputStyles[3].Width(inputWidth).Render(v.confirm.View()),
		"",
		btnStyle.Render(" Create Account "),
		"",
		status,
		"",
		linkStyle.Render("Already have an account? Sign in"),
		"",
		s.TitleMuted.Render("Tab: next • ↵: submit • Esc: back"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
