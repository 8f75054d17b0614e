package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskhold/internal/models"
	"github.com/tgienger/taskhold/internal/session"
	"github.com/tgienger/taskhold/internal/ui/keys"
	"github.com/tgienger/taskhold/internal/ui/styles"
)

// LoggedIn signals a successful login or registration
type LoggedIn struct {
	Identity *models.Identity
}

// ShowRegister signals to switch to the register screen
type ShowRegister struct{}

type loginFailedMsg struct {
	err error
}

// LoginView is the sign-in screen
type LoginView struct {
	session *session.Store
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	email      textinput.Model
	password   textinput.Model
	focusIdx   int // 0=email, 1=password, 2=sign in, 3=register link
	errMsg     string
	submitting bool
}

// NewLoginView creates the sign-in screen
func NewLoginView(sess *session.Store) *LoginView {
	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 100
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword

	return &LoginView{
		session:  sess,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		email:    email,
		password: password,
	}
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *LoginView) submit() tea.Cmd {
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	if email == "" || password == "" {
		return func() tea.Msg {
			return loginFailedMsg{err: nil}
		}
	}

	return func() tea.Msg {
		ident, err := v.session.Login(email, password)
		if err != nil {
			return loginFailedMsg{err: err}
		}
		return LoggedIn{Identity: ident}
	}
}

// Update handles messages
func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case loginFailedMsg:
		v.submitting = false
		switch {
		case msg.err == nil:
			v.errMsg = "Please fill in all fields"
		default:
			// Login failure is reported the same way regardless of cause.
			v.errMsg = "Invalid email or password"
		}
		return v, nil

	case tea.KeyMsg:
		if v.submitting {
			return v, nil
		}

		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % 4
			v.updateFocus()
			return v, textinput.Blink

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + 3) % 4
			v.updateFocus()
			return v, textinput.Blink

		case key.Matches(msg, v.keys.Enter):
			switch v.focusIdx {
			case 0:
				v.focusIdx = 1
				v.updateFocus()
				return v, nil
			case 3:
				return v, func() tea.Msg { return ShowRegister{} }
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
		v.email, cmd = v.email.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) updateFocus() {
	v.email.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		v.email.Focus()
	case 1:
		v.password.Focus()
	}
}

// View renders the view
func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	emailStyle := s.Input
	passwordStyle := s.Input
	btnStyle := s.Button
	linkStyle := s.TitleMuted

	switch v.focusIdx {
	case 0:
		emailStyle = s.InputFocused
	case 1:
		passwordStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	case 3:
		linkStyle = s.Title
	}

	inputWidth := clamp(contentWidth-6, 20, 40)

	status := ""
	if v.submitting {
		status = s.TitleMuted.Render("Signing in...")
	} else if v.errMsg != "" {
		status = s.ErrorText.Render(v.errMsg)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Welcome Back"),
		s.TitleMuted.Render("Sign in to your account"),
		"",
		emailStyle.Width(inputWidth).Render(v.email.View()),
		passwordStyle.Width(inputWidth).Render(v.password.View()),
		"",
		btnStyle.Render(" Sign In "),
		"",
		status,
		"",
		linkStyle.Render("Don't have an account? Register"),
		"",
		s.TitleMuted.Render("Tab: next • ↵: submit • Ctrl+C: quit"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
