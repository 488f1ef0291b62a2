package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/teamtodo/internal/commands"
	"github.com/sandeepkv93/teamtodo/internal/scheduler"
	"github.com/sandeepkv93/teamtodo/internal/state"
	"github.com/sandeepkv93/teamtodo/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.Scheduler != nil {
		return waitForSchedulerCmd(m.Scheduler.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed), nil
		}
		if m.Prompt.Active {
			return m.handlePromptKey(typed), nil
		}

		switch typed.String() {
		case ":", "/":
			m.openPalette("")
			return m, nil
		case m.Keys.Dashboard:
			return m.switchTab(state.TabDashboard), nil
		case m.Keys.Tasks:
			return m.switchTab(state.TabTasks), nil
		case m.Keys.Goals:
			return m.switchTab(state.TabGoals), nil
		case m.Keys.Users:
			return m.switchTab(state.TabUsers), nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case "S", "ctrl+s":
			if m.spinnerActive || m.App == nil {
				return m, nil
			}
			m.spinnerActive = true
			m.Status = StatusBar{Text: "saving", IsError: false}
			return m, tea.Batch(m.saveSpinner.Tick, saveCmd(m.App.Save))
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}

		switch m.currentTab() {
		case state.TabDashboard:
			return m.handleDashboardKey(typed), nil
		case state.TabTasks:
			return m.handleTasksKey(typed), nil
		case state.TabGoals:
			return m.handleGoalsKey(typed), nil
		case state.TabUsers:
			return m.handleUsersKey(typed), nil
		}
	case spinner.TickMsg:
		if m.spinnerActive {
			var cmd tea.Cmd
			m.saveSpinner, cmd = m.saveSpinner.Update(typed)
			return m, cmd
		}
	case SaveDoneMsg:
		m.spinnerActive = false
		return m.applyResult(typed.Result, typed.Err), nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case SchedulerEventMsg:
		m = m.onSchedulerEvent(typed.Event)
		if m.Scheduler != nil {
			return m, waitForSchedulerCmd(m.Scheduler.C())
		}
		return m, nil
	}

	return m, nil
}

func (m Model) onSchedulerEvent(ev scheduler.Event) Model {
	switch ev.Kind {
	case scheduler.KindAutosave:
		if m.App == nil {
			return m
		}
		if err := m.App.Autosave(); err != nil {
			m.LastError = err
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			m.notify("Autosave", err.Error(), "error")
		}
	case scheduler.KindToastExpiry:
		if m.Frame != nil {
			m.Frame.DismissToast(ev.Ref)
		}
	}
	if m.Scheduler != nil && m.drops != nil {
		if n := m.drops.Check(m.Scheduler); n > 0 {
			m.log.Warn("scheduler events dropped", "dropped", n, "pending", m.Scheduler.Pending())
		}
	}
	return m
}

// applyResult reflects a handler outcome in the status bar and the
// notification log.
func (m Model) applyResult(res commands.Result, err error) Model {
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m
	}
	m.LastError = nil
	m.Status = StatusBar{Text: res.Message, IsError: false}
	if !res.Noop {
		m.notify("Command", res.Message, "info")
	}
	return m
}

func (m Model) switchTab(t state.Tab) Model {
	if m.App == nil {
		return m
	}
	res, err := m.App.SwitchTab(commands.TabArgs{Tab: string(t)})
	return m.applyResult(res, err)
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	if m.spinnerActive {
		status = strings.TrimSpace(status + " " + m.saveSpinner.View())
	}

	tab := m.currentTab()
	body, side := "", ""
	switch tab {
	case state.TabDashboard:
		body = views.RenderStatsPanel(m.Frame.Stats())
		side = m.renderGoalSummary()
	case state.TabTasks:
		body = m.renderTasksView()
		if m.DetailVisible {
			side = m.detailViewport.View()
		}
	case state.TabGoals:
		body = views.RenderGoalsPanel(m.Frame.Goals(), m.Cursors[state.TabGoals])
	case state.TabUsers:
		body = views.RenderUsersPanel(m.Frame.Users(), m.Cursors[state.TabUsers])
	}
	if h := m.renderHelpIfVisible(); h != "" {
		side = strings.TrimSpace(side + "\n" + h)
	}

	names := make([]string, 0, len(state.Tabs))
	for _, t := range state.Tabs {
		names = append(names, string(t))
	}
	palette := m.renderCommandPalette()
	if m.Prompt.Active {
		palette = m.promptInput.View()
	}

	return views.RenderApp(views.AppData{
		Header:      fmt.Sprintf("teamtodo | user: %s", m.Frame.Users().ActiveName),
		Tabs:        views.RenderTabs(names, string(tab)),
		Body:        body,
		Side:        side,
		StatusLine:  status,
		StatusError: m.Status.IsError,
		Toasts:      m.Frame.Toasts(),
		Palette:     palette,
		Footer:      fmt.Sprintf("keys: %s-%s tabs | : cmd | ctrl+s save | %s help | %s quit", m.Keys.Dashboard, m.Keys.Users, m.Keys.Help, m.Keys.Quit),
	})
}

func waitForSchedulerCmd(ch <-chan scheduler.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return SchedulerEventMsg{Event: ev}
	}
}

func saveCmd(save func() (commands.Result, error)) tea.Cmd {
	return func() tea.Msg {
		res, err := save()
		return SaveDoneMsg{Result: res, Err: err}
	}
}
