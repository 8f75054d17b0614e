package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/taskhold/internal/session"
	"github.com/tgienger/taskhold/internal/tasks"
	"github.com/tgienger/taskhold/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewTasks
	ViewProfile
)

type sessionResolvedMsg struct{}

type App struct {
	session     *session.Store
	tasks       *tasks.Store
	currentView View
	login       *views.LoginView
	register    *views.RegisterView
	taskList    *views.TaskListView
	profile     *views.ProfileView
	width       int
	height      int
}

// Creates a new application
func NewApp(sess *session.Store, store *tasks.Store) *App {
	return &App{
		session: sess,
		tasks:   store,
		login:   views.NewLoginView(sess),
	}
}

func (a *App) Init() tea.Cmd {
	// Resolve the persisted session before rendering any
	// session-dependent screen.
	return func() tea.Msg {
		a.session.Bootstrap()
		return sessionResolvedMsg{}
	}
}

func (a *App) openTasks() tea.Cmd {
	a.currentView = ViewTasks
	a.taskList = views.NewTaskListView(a.tasks)

	return tea.Batch(
		a.taskList.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) openLogin() tea.Cmd {
	a.currentView = ViewLogin
	a.login = views.NewLoginView(a.session)
	return tea.Batch(
		a.login.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case sessionResolvedMsg:
		if a.session.State() == session.StateAuthenticated {
			return a, a.openTasks()
		}
		return a, a.openLogin()

	case views.LoggedIn:
		return a, a.openTasks()

	case views.LoggedOut:
		return a, a.openLogin()

	case views.ShowRegister:
		a.currentView = ViewRegister
		a.register = views.NewRegisterView(a.session)
		return a, tea.Batch(
			a.register.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)

	case views.ShowLogin:
		return a, a.openLogin()

	case views.ShowProfile:
		a.currentView = ViewProfile
		a.profile = views.NewProfileView(a.session, a.tasks)
		return a, tea.Batch(
			a.profile.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)

	case views.BackToTasks:
		return a, a.openTasks()
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewLogin:
		_, cmd = a.login.Update(msg)
	case ViewRegister:
		_, cmd = a.register.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	case ViewProfile:
		_, cmd = a.profile.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	if a.session.State() == session.StateResolving {
		return "Loading..."
	}

	switch a.currentView {
	case ViewRegister:
		if a.register != nil {
			return a.register.View()
		}
	case ViewTasks:
		if a.taskList != nil {
			return a.taskList.View()
		}
	case ViewProfile:
		if a.profile != nil {
			return a.profile.View()
		}
	}
	return a.login.View()
}
