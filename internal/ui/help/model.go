package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailclient/internal/keys"
	"github.com/nhle/mailclient/internal/theme"
)

// commandSummary lists the command palette verbs shown under the key table.
var commandSummary = []string{
	"refresh              reload the current folder",
	"compose              open a new message",
	"mkdir <name>         create a custom folder",
	"folder <name>        switch folder by name",
	"contacts             open the address book",
	"export <file.eml>    save the open message",
	"logout               sign out",
	"quit                 leave the client",
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	commands := theme.TitleStyle.MarginTop(1).Render("Commands")
	var lines []string
	for _, c := range commandSummary {
		lines = append(lines, theme.MutedStyle.Render(c))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{title, helpText, commands}, lines...)...,
	)

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
