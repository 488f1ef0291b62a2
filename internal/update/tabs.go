package update

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/teamtodo/internal/commands"
	"github.com/sandeepkv93/teamtodo/internal/model"
	"github.com/sandeepkv93/teamtodo/internal/state"
)

var periodCycle = []model.StatsPeriod{model.PeriodMonthly, model.PeriodQuarterly}

var sortCycle = []model.SortOrder{model.SortNewest, model.SortOldest, model.SortPriority}

func (m Model) handleDashboardKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "p":
		sel := m.App.Selection()
		res, err := m.App.ChangeStatsPeriod(commands.PeriodArgs{Period: string(nextIn(periodCycle, sel.StatsPeriod))})
		return m.applyResult(res, err)
	}
	return m
}

func (m Model) handleTasksKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		m.moveCursor(state.TabTasks, 1, len(m.Frame.Tasks().Rows))
	case "k", "up":
		m.moveCursor(state.TabTasks, -1, len(m.Frame.Tasks().Rows))
	case "a":
		m.openPrompt(promptAdd, "", "")
	case "e":
		if row, ok := m.selectedTask(); ok {
			m.openPrompt(promptEdit, row.ID, row.Text)
		}
	case " ", "x":
		if row, ok := m.selectedTask(); ok {
			res, err := m.App.ToggleTask(commands.RefArgs{Ref: row.ID})
			return m.applyResult(res, err)
		}
	case "d":
		if row, ok := m.selectedTask(); ok {
			res, err := m.App.DeleteTask(commands.RefArgs{Ref: row.ID})
			return m.applyResult(res, err)
		}
	case "f":
		sel := m.App.Selection()
		res, err := m.App.ChangeFilter(commands.FilterArgs{Status: string(sel.StatusFilter.Next()), User: sel.AssigneeFilter})
		return m.applyResult(res, err)
	case "s":
		sel := m.App.Selection()
		res, err := m.App.ChangeSort(commands.SortArgs{Order: string(nextIn(sortCycle, sel.Sort))})
		return m.applyResult(res, err)
	case "enter":
		m.DetailVisible = !m.DetailVisible
	}
	return m
}

func (m Model) handleGoalsKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		m.moveCursor(state.TabGoals, 1, len(m.Frame.Goals().Rows))
	case "k", "up":
		m.moveCursor(state.TabGoals, -1, len(m.Frame.Goals().Rows))
	case "a":
		m.openPalette("goal add ")
	case "+", "=", "-":
		row, ok := m.selectedGoal()
		if !ok {
			return m
		}
		done := row.Done + 1
		if msg.String() == "-" {
			done = row.Done - 1
		}
		res, err := m.App.SetGoalProgress(commands.GoalProgressArgs{Ref: row.ID, Completed: done})
		return m.applyResult(res, err)
	case "d":
		if row, ok := m.selectedGoal(); ok {
			res, err := m.App.DeleteGoal(commands.RefArgs{Ref: row.ID})
			return m.applyResult(res, err)
		}
	}
	return m
}

func (m Model) handleUsersKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		m.moveCursor(state.TabUsers, 1, len(m.Frame.Users().Rows))
	case "k", "up":
		m.moveCursor(state.TabUsers, -1, len(m.Frame.Users().Rows))
	case "a":
		m.openPalette("user add ")
	case "enter":
		if row, ok := m.selectedUser(); ok {
			res, err := m.App.SwitchUser(commands.RefArgs{Ref: row.ID})
			return m.applyResult(res, err)
		}
	case "d":
		if row, ok := m.selectedUser(); ok {
			res, err := m.App.DeleteUser(commands.RefArgs{Ref: row.ID})
			return m.applyResult(res, err)
		}
	}
	return m
}

func (m *Model) moveCursor(tab state.Tab, delta, n int) {
	m.Cursors[tab] = clampCursor(m.Cursors[tab]+delta, n)
}

func nextIn[T comparable](cycle []T, cur T) T {
	for i, v := range cycle {
		if v == cur {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}
