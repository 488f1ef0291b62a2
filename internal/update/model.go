package update

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/teamtodo/internal/app"
	"github.com/sandeepkv93/teamtodo/internal/commands"
	"github.com/sandeepkv93/teamtodo/internal/scheduler"
	"github.com/sandeepkv93/teamtodo/internal/state"
	"github.com/sandeepkv93/teamtodo/internal/views"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Dashboard string
	Tasks     string
	Goals     string
	Users     string
	Help      string
	Quit      string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type promptKind string

const (
	promptAdd  promptKind = "add"
	promptEdit promptKind = "edit"
)

// PromptState is the single-line editor used for quick add and edit.
type PromptState struct {
	Active   bool
	Kind     promptKind
	TargetID string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

// Deps is what the TUI needs from the rest of the program.
type Deps struct {
	App       *app.App
	Frame     *views.Frame
	Scheduler *scheduler.Engine
	Notifier  DesktopNotifier
	Desktop   bool
	Logger    *slog.Logger
}

type Model struct {
	App            *app.App
	Frame          *views.Frame
	Scheduler      *scheduler.Engine
	Cursors        map[state.Tab]int
	Palette        CommandPaletteState
	Prompt         PromptState
	HelpVisible    bool
	DetailVisible  bool
	Notifications  []Notification
	DesktopEnabled bool
	notifier       DesktopNotifier
	log            *slog.Logger
	drops          *scheduler.DropWatch
	Status         StatusBar
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error
	// Bubble components used for rich TUI controls
	taskTable      table.Model
	promptInput    textinput.Model
	commandInput   textinput.Model
	rateProgress   progress.Model
	saveSpinner    spinner.Model
	helpModel      help.Model
	detailViewport viewport.Model
	spinnerActive  bool
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// SchedulerEventMsg carries one fired scheduler event into the update loop.
type SchedulerEventMsg struct {
	Event scheduler.Event
}

type SaveDoneMsg struct {
	Result commands.Result
	Err    error
}

func NewModel(deps Deps) Model {
	m := Model{
		App:            deps.App,
		Frame:          deps.Frame,
		Scheduler:      deps.Scheduler,
		Cursors:        make(map[state.Tab]int, len(state.Tabs)),
		DesktopEnabled: deps.Desktop,
		notifier:       NoopDesktopNotifier{},
		log:            deps.Logger,
		drops:          &scheduler.DropWatch{},
		Keys: GlobalKeyMap{
			Dashboard: "1",
			Tasks:     "2",
			Goals:     "3",
			Users:     "4",
			Help:      "?",
			Quit:      "q",
		},
	}
	if deps.Notifier != nil {
		m.notifier = deps.Notifier
	}
	if m.log == nil {
		m.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Done", Width: 4},
		{Title: "Task", Width: 30},
		{Title: "Priority", Width: 8},
		{Title: "Category", Width: 10},
		{Title: "Assignee", Width: 10},
	}
	m.taskTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(12))

	m.promptInput = textinput.New()
	m.promptInput.Prompt = "add> "
	m.promptInput.CharLimit = 256
	m.promptInput.Width = 48

	m.commandInput = textinput.New()
	m.commandInput.Prompt = ":"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.rateProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

	m.saveSpinner = spinner.New()
	m.saveSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
	m.detailViewport = viewport.New(44, 12)
}

// syncBubbleData copies the latest rendered frame into the bubble
// components and clamps the cursors to the row counts.
func (m *Model) syncBubbleData() {
	if m.Frame == nil {
		return
	}
	tasks := m.Frame.Tasks()
	m.Cursors[state.TabTasks] = clampCursor(m.Cursors[state.TabTasks], len(tasks.Rows))
	m.Cursors[state.TabGoals] = clampCursor(m.Cursors[state.TabGoals], len(m.Frame.Goals().Rows))
	m.Cursors[state.TabUsers] = clampCursor(m.Cursors[state.TabUsers], len(m.Frame.Users().Rows))

	rows := make([]table.Row, 0, len(tasks.Rows))
	for _, r := range tasks.Rows {
		done := ""
		if r.Completed {
			done = "x"
		}
		rows = append(rows, table.Row{fmt.Sprint(r.Position), done, r.Text, string(r.Priority), r.Category, r.Assignee.Name})
	}
	m.taskTable.SetRows(rows)
	if len(rows) > 0 {
		m.taskTable.SetCursor(m.Cursors[state.TabTasks])
	}

	if row, ok := m.selectedTask(); ok {
		m.detailViewport.SetContent(views.RenderMarkdown(views.RenderTaskDetail(row), m.detailViewport.Width))
	} else {
		m.detailViewport.SetContent("no task selected")
	}

	if m.Palette.Active {
		m.commandInput.Focus()
	}
	if m.Prompt.Active {
		m.promptInput.Focus()
	}
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func (m Model) currentTab() state.Tab {
	if m.App == nil {
		return state.TabDashboard
	}
	return m.App.Selection().Tab
}

func (m Model) selectedTask() (views.TaskRow, bool) {
	rows := m.Frame.Tasks().Rows
	i := m.Cursors[state.TabTasks]
	if i < 0 || i >= len(rows) {
		return views.TaskRow{}, false
	}
	return rows[i], true
}

func (m Model) selectedGoal() (views.GoalRow, bool) {
	rows := m.Frame.Goals().Rows
	i := m.Cursors[state.TabGoals]
	if i < 0 || i >= len(rows) {
		return views.GoalRow{}, false
	}
	return rows[i], true
}

func (m Model) selectedUser() (views.UserRow, bool) {
	rows := m.Frame.Users().Rows
	i := m.Cursors[state.TabUsers]
	if i < 0 || i >= len(rows) {
		return views.UserRow{}, false
	}
	return rows[i], true
}
