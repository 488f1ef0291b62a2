package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/teamtodo/internal/state"
	"github.com/sandeepkv93/teamtodo/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.currentTab()),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Dashboard, Action: "switch to dashboard"},
		{Key: m.Keys.Tasks, Action: "switch to tasks"},
		{Key: m.Keys.Goals, Action: "switch to goals"},
		{Key: m.Keys.Users, Action: "switch to users"},
		{Key: ":", Action: "open command palette"},
		{Key: "ctrl+s", Action: "save now"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.currentTab() {
	case state.TabDashboard:
		return []KeyBinding{
			{Key: "p", Action: "cycle stats period"},
		}
	case state.TabTasks:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "a", Action: "quick add (!high #category)"},
			{Key: "space", Action: "toggle completed"},
			{Key: "e/d", Action: "edit / delete task"},
			{Key: "f/s", Action: "cycle filter / sort"},
			{Key: "enter", Action: "toggle detail pane"},
		}
	case state.TabGoals:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "a", Action: "add goal"},
			{Key: "+/-", Action: "adjust progress"},
			{Key: "d", Action: "delete goal"},
		}
	case state.TabUsers:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "a", Action: "add user"},
			{Key: "enter", Action: "switch to user"},
			{Key: "d", Action: "delete user"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
