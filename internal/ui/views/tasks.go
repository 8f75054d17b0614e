package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskhold/internal/models"
	"github.com/tgienger/taskhold/internal/tasks"
	"github.com/tgienger/taskhold/internal/ui/keys"
	"github.com/tgienger/taskhold/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// Filter selects which tasks are visible in the list
type Filter int

const (
	FilterAll Filter = iota
	FilterPending
	FilterCompleted
)

func (f Filter) String() string {
	switch f {
	case FilterPending:
		return "Pending"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// ShowProfile signals to open the profile screen
type ShowProfile struct{}

// TaskListView shows the active identity's tasks
type TaskListView struct {
	store  *tasks.Store
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	tasks   []models.Task
	filter  Filter
	cursor  int
	scrollY int
	loaded  bool
	errMsg  string

	// Task creation/editing
	editing      bool
	editingNew   bool
	editingID    string
	editTitle    textinput.Model
	editDesc     textarea.Model
	editDue      textinput.Model
	editPriority models.Priority
	editDone     bool
	editFocusIdx int // 0=title, 1=desc, 2=due, 3=priority, 4=done, 5=save
	editErr      string

	// Task view mode (read-only detail view)
	viewingTask bool

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string

	// Help popup
	showHelpPopup bool
}

// NewTaskListView creates a new task list view
func NewTaskListView(store *tasks.Store) *TaskListView {
	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 100

	editDesc := textarea.New()
	editDesc.Placeholder = "Description (optional)"
	editDesc.CharLimit = 500
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editDue := textinput.New()
	editDue.Placeholder = "YYYY-MM-DD"
	editDue.CharLimit = 10

	return &TaskListView{
		store:     store,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		editTitle: editTitle,
		editDesc:  editDesc,
		editDue:   editDue,
	}
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks
}

type tasksLoadedMsg struct {
	tasks []models.Task
}

type taskOpFailedMsg struct {
	err error
}

func (v *TaskListView) loadTasks() tea.Msg {
	if err := v.store.Refresh(); err != nil {
		return taskOpFailedMsg{err: err}
	}
	return tasksLoadedMsg{tasks: v.store.List()}
}

// reload re-reads the working set without touching durable storage
func (v *TaskListView) reload() tea.Msg {
	return tasksLoadedMsg{tasks: v.store.List()}
}

// visible returns the tasks matching the current filter
func (v *TaskListView) visible() []models.Task {
	if v.filter == FilterAll {
		return v.tasks
	}
	var out []models.Task
	for _, t := range v.tasks {
		if (v.filter == FilterCompleted) == t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case tasksLoadedMsg:
		v.tasks = msg.tasks
		v.loaded = true
		v.errMsg = ""
		if n := len(v.visible()); v.cursor >= n {
			v.cursor = max(0, n-1)
		}
		return v, nil

	case taskOpFailedMsg:
		v.errMsg = msg.err.Error()
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.viewingTask {
			return v.updateViewingTask(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := v.visible()

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(visible)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Filter):
		v.filter = (v.filter + 1) % 3
		v.cursor = 0
		v.scrollY = 0
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if len(visible) > 0 {
			task := visible[v.cursor]
			done := !task.Completed
			if err := v.store.Update(task.ID, models.Patch{Completed: &done}); err != nil {
				v.errMsg = err.Error()
				return v, nil
			}
			return v, v.reload
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if len(visible) > 0 {
			v.viewingTask = true
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if len(visible) > 0 {
			v.startEditTask(visible[v.cursor])
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if len(visible) > 0 {
			v.confirmingDelete = true
			v.deleteTargetID = visible[v.cursor].ID
		}
		return v, nil

	case msg.String() == "r":
		return v, v.loadTasks

	case msg.String() == "p":
		return v, func() tea.Msg { return ShowProfile{} }

	case msg.String() == "?":
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		v.viewingTask = false
		if err := v.store.Delete(v.deleteTargetID); err != nil {
			v.errMsg = err.Error()
			return v, nil
		}
		return v, v.reload
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := v.visible()
	if len(visible) == 0 || v.cursor >= len(visible) {
		v.viewingTask = false
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewingTask = false
		return v, nil
	case key.Matches(msg, v.keys.Edit):
		v.viewingTask = false
		v.startEditTask(visible[v.cursor])
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Delete):
		v.confirmingDelete = true
		v.deleteTargetID = visible[v.cursor].ID
		return v, nil
	case key.Matches(msg, v.keys.Toggle):
		task := visible[v.cursor]
		done := !task.Completed
		if err := v.store.Update(task.ID, models.Patch{Completed: &done}); err != nil {
			v.errMsg = err.Error()
			return v, nil
		}
		return v, v.reload
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		v.editErr = ""
		return v, nil

	case msg.String() == "ctrl+s":
		return v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % 6
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + 5) % 6
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		// Enter on title or due date moves to next field
		if v.editFocusIdx == 0 || v.editFocusIdx == 2 {
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		}
		if v.editFocusIdx == 3 {
			v.editPriority = v.editPriority.Next()
			return v, nil
		}
		if v.editFocusIdx == 4 {
			v.editDone = !v.editDone
			return v, nil
		}
		if v.editFocusIdx == 5 {
			return v.saveTask()
		}
		// Textarea keeps enter for newlines

	case msg.String() == " ":
		if v.editFocusIdx == 3 {
			v.editPriority = v.editPriority.Next()
			return v, nil
		}
		if v.editFocusIdx == 4 {
			v.editDone = !v.editDone
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case 0:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case 1:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case 2:
		v.editDue, cmd = v.editDue.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingNew = true
	v.editingID = ""
	v.editFocusIdx = 0
	v.editErr = ""
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editDue.SetValue(models.Today().String())
	v.editPriority = models.PriorityMedium
	v.editDone = false
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(task models.Task) {
	v.editing = true
	v.editingNew = false
	v.editingID = task.ID
	v.editFocusIdx = 0
	v.editErr = ""
	v.editTitle.SetValue(task.Title)
	v.editDesc.SetValue(task.Description)
	v.editDue.SetValue(task.DueDate.String())
	v.editPriority = task.Priority
	v.editDone = task.Completed
	v.updateEditFocus()
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editDue.Blur()

	switch v.editFocusIdx {
	case 0:
		v.editTitle.Focus()
	case 1:
		v.editDesc.Focus()
	case 2:
		v.editDue.Focus()
	}
}

// saveTask validates the form and commits it to the store. Title and
// date validation happen here: the store trusts its callers.
func (v *TaskListView) saveTask() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		v.editErr = "Please enter a task title"
		return v, nil
	}

	due, err := models.ParseDate(strings.TrimSpace(v.editDue.Value()))
	if err != nil {
		v.editErr = "Due date must be YYYY-MM-DD"
		return v, nil
	}

	desc := strings.TrimSpace(v.editDesc.Value())

	if v.editingNew {
		_, err = v.store.Create(tasks.Input{
			Title:       title,
			Description: desc,
			Priority:    v.editPriority,
			DueDate:     due,
			Completed:   v.editDone,
		})
	} else {
		priority := v.editPriority
		done := v.editDone
		err = v.store.Update(v.editingID, models.Patch{
			Title:       &title,
			Description: &desc,
			Priority:    &priority,
			DueDate:     &due,
			Completed:   &done,
		})
	}
	if err != nil {
		v.editErr = err.Error()
		return v, nil
	}

	v.editing = false
	v.editErr = ""
	return v, v.reload
}

func (v *TaskListView) ensureVisible() {
	// Each task item is 2 lines + 1 margin = 3 lines
	availableHeight := v.height - 10
	if availableHeight < 3 {
		availableHeight = 3
	}
	visibleItems := availableHeight / 3
	if visibleItems < 1 {
		visibleItems = 1
	}

	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.renderEditForm()
	}

	if v.viewingTask {
		return v.renderTaskView()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading tasks...")
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles

	total, completed, pending := v.store.Counts()
	stats := lipgloss.JoinHorizontal(lipgloss.Center,
		s.StatValue.Render(fmt.Sprintf("%d", total)), s.StatLabel.Render(" total  "),
		s.StatValue.Render(fmt.Sprintf("%d", pending)), s.StatLabel.Render(" pending  "),
		s.StatValue.Render(fmt.Sprintf("%d", completed)), s.StatLabel.Render(" done"),
	)

	filterLine := s.TitleMuted.Render("Filter: ") + s.Title.Render(v.filter.String())

	lines := []string{
		s.Title.Render("My Tasks"),
		stats,
		filterLine,
	}
	if v.errMsg != "" {
		lines = append(lines, s.ErrorText.Render(v.errMsg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles
	visible := v.visible()

	if len(visible) == 0 {
		switch v.filter {
		case FilterPending:
			return s.TitleMuted.Render("All tasks completed!")
		case FilterCompleted:
			return s.TitleMuted.Render("No completed tasks")
		default:
			return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
		}
	}

	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	visibleItems := availableHeight / 3
	if visibleItems < 1 {
		visibleItems = 1
	}

	var items []string
	endIdx := min(v.scrollY+visibleItems, len(visible))

	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(visible[i], i == v.cursor))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	check := "[ ] "
	if task.Completed {
		check = "[x] "
	}
	titleLine := check + task.Title

	badge := s.PriorityStyle(string(task.Priority)).Render(string(task.Priority))
	metaLine := badge + s.TitleMuted.Render("  due "+task.DueDate.String())

	var titleStyle, metaStyle lipgloss.Style
	switch {
	case selected:
		titleStyle = s.ListSelected.Width(width)
		metaStyle = s.ListSelected.Width(width)
	case task.Completed:
		titleStyle = s.ListCompleted.Width(width)
		metaStyle = s.ListItem.Width(width)
	default:
		titleStyle = s.ListItem.Width(width)
		metaStyle = s.ListItem.Width(width)
	}

	title := titleStyle.Render(titleLine)
	meta := metaStyle.Render(metaLine)

	return lipgloss.JoinVertical(lipgloss.Left, title, meta) + "\n"
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if !v.editingNew {
		formTitle = "Edit Task"
	}

	titleStyle := s.Input
	descStyle := s.Input
	dueStyle := s.Input
	priorityStyle := s.Input
	doneStyle := s.Input
	btnStyle := s.Button

	switch v.editFocusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		dueStyle = s.InputFocused
	case 3:
		priorityStyle = s.InputFocused
	case 4:
		doneStyle = s.InputFocused
	case 5:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	priorityText := s.PriorityStyle(string(v.editPriority)).Render(string(v.editPriority))
	doneText := "[ ] pending"
	if v.editDone {
		doneText = "[x] completed"
	}

	errLine := ""
	if v.editErr != "" {
		errLine = s.ErrorText.Render(v.editErr)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.editTitle.View()),
		"",
		"Description:",
		descStyle.Render(v.editDesc.View()),
		"",
		"Due date:",
		dueStyle.Width(14).Render(v.editDue.View()),
		"",
		"Priority:",
		priorityStyle.Width(12).Render(priorityText),
		"",
		"Status:",
		doneStyle.Width(16).Render(doneText),
		"",
		btnStyle.Render(" Save "),
		errLine,
		s.TitleMuted.Render("Tab: next • Space: cycle • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderTaskView() string {
	visible := v.visible()
	if len(visible) == 0 || v.cursor >= len(visible) {
		return ""
	}

	s := v.styles
	task := visible[v.cursor]
	contentWidth := styles.ContentWidth(v.width)
	textWidth := clamp(contentWidth-10, 20, 70)

	status := "Pending"
	if task.Completed {
		status = "Completed"
	}

	descText := task.Description
	if descText == "" {
		descText = s.TitleMuted.Render("No description")
	}

	labelStyle := s.TitleMuted
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.MarginBottom(1).Render(task.Title),
		"",
		labelStyle.Render("Status"),
		status,
		"",
		labelStyle.Render("Priority"),
		s.PriorityStyle(string(task.Priority)).Render(string(task.Priority)),
		"",
		labelStyle.Render("Due date"),
		task.DueDate.String(),
		"",
		labelStyle.Render("Created"),
		task.CreatedAt.String(),
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
		"",
		s.Help.Render(
			fmt.Sprintf("%s edit • %s toggle • %s delete • %s back",
				s.HelpKey.Render("e"),
				s.HelpKey.Render("space"),
				s.HelpKey.Render("d"),
				s.HelpKey.Render("esc"),
			),
		),
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
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

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	return v.styles.Help.Render(
		fmt.Sprintf("%s view • %s toggle • %s new • %s edit • %s del • %s filter • %s profile • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("space"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("f"),
			v.styles.HelpKey.Render("p"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      view task",
		s.HelpKey.Render("space") + "  toggle complete",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("e") + "      edit task",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("f") + "      cycle filter",
		s.HelpKey.Render("r") + "      reload",
		s.HelpKey.Render("p") + "      profile",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
