package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskhold/internal/session"
	"github.com/tgienger/taskhold/internal/tasks"
	"github.com/tgienger/taskhold/internal/ui/keys"
	"github.com/tgienger/taskhold/internal/ui/styles"
)

// BackToTasks signals to return to the task list
type BackToTasks struct{}

// LoggedOut signals that the active session was ended
type LoggedOut struct{}

// ProfileView shows the active identity and task stats
type ProfileView struct {
	session *session.Store
	store   *tasks.Store
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	confirmingLogout bool
}

// NewProfileView creates the profile screen
func NewProfileView(sess *session.Store, store *tasks.Store) *ProfileView {
	return &ProfileView{
		session: sess,
		store:   store,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
	}
}

func (v *ProfileView) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (v *ProfileView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		if v.confirmingLogout {
			switch msg.String() {
			case "y", "Y":
				v.confirmingLogout = false
				v.session.Logout()
				// The working set is invalid across an owner change;
				// refresh clears it now that no session is active.
				v.store.Refresh()
				return v, func() tea.Msg { return LoggedOut{} }
			case "n", "N", "esc":
				v.confirmingLogout = false
				return v, nil
			}
			return v, nil
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToTasks{} }
		case msg.String() == "l":
			v.confirmingLogout = true
			return v, nil
		}
	}

	return v, nil
}

// View renders the view
func (v *ProfileView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	if v.confirmingLogout {
		return v.renderLogoutConfirm()
	}

	ident := v.session.Current()
	if ident == nil {
		return s.TitleMuted.Render("No active session")
	}

	total, completed, pending := v.store.Counts()
	rate := 0
	if total > 0 {
		rate = completed * 100 / total
	}

	card := s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(ident.Name),
		s.TitleMuted.Render(ident.Email),
		s.TitleMuted.Render("Member since "+ident.CreatedAt.String()),
	))

	stats := s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Task Statistics"),
		"",
		s.StatValue.Render(fmt.Sprintf("%d", total))+s.StatLabel.Render(" total"),
		s.StatValue.Render(fmt.Sprintf("%d", completed))+s.StatLabel.Render(" completed"),
		s.StatValue.Render(fmt.Sprintf("%d", pending))+s.StatLabel.Render(" pending"),
		s.StatValue.Render(fmt.Sprintf("%d%%", rate))+s.StatLabel.Render(" completion rate"),
	))

	content := lipgloss.JoinVertical(lipgloss.Left,
		card,
		"",
		stats,
		"",
		s.Help.Render(
			fmt.Sprintf("%s logout • %s back • %s quit",
				s.HelpKey.Render("l"),
				s.HelpKey.Render("esc"),
				s.HelpKey.Render("q"),
			),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProfileView) renderLogoutConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Logout?"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
