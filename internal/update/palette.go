package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/teamtodo/internal/commands"
)

func (m *Model) openPalette(prefill string) {
	m.Palette.Active = true
	m.Palette.Input = prefill
	m.commandInput.SetValue(prefill)
	m.commandInput.CursorEnd()
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active", IsError: false}
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()
	if m.App == nil {
		return m
	}
	res, err := m.App.Run(raw)
	return m.applyResult(res, err)
}

func (m *Model) openPrompt(kind promptKind, targetID, prefill string) {
	m.Prompt = PromptState{Active: true, Kind: kind, TargetID: targetID}
	m.promptInput.Prompt = string(kind) + "> "
	m.promptInput.SetValue(prefill)
	m.promptInput.CursorEnd()
	m.promptInput.Focus()
}

func (m *Model) closePrompt() {
	m.Prompt = PromptState{}
	m.promptInput.SetValue("")
	m.promptInput.Blur()
}

// handlePromptKey edits the quick add or edit line. Enter submits it:
// quick add goes through the command parser so !priority and #category
// tokens work, edit replaces the target task's text.
func (m Model) handlePromptKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		m.Status = StatusBar{Text: "input cancelled", IsError: false}
	case "enter":
		value := m.promptInput.Value()
		kind, target := m.Prompt.Kind, m.Prompt.TargetID
		m.closePrompt()
		if m.App == nil {
			return m
		}
		switch kind {
		case promptAdd:
			res, err := m.App.Run("add " + value)
			m = m.applyResult(res, err)
		case promptEdit:
			res, err := m.App.EditTask(commands.EditArgs{Ref: target, Text: value})
			m = m.applyResult(res, err)
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.promptInput.SetValue(m.promptInput.Value() + string(msg.Runes))
			return m
		}
		var cmd tea.Cmd
		m.promptInput, cmd = m.promptInput.Update(msg)
		_ = cmd
	}
	return m
}
