// Package archive renders the archive-group prompt shown before a
// message is archived.
package archive

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailclient/internal/mailbox"
	"github.com/nhle/mailclient/internal/theme"
)

// ConfirmMsg carries the chosen group; empty means the default group.
type ConfirmMsg struct {
	Group string
}

// CancelMsg is dispatched when the prompt is dismissed.
type CancelMsg struct{}

// Model is the archive-group prompt.
type Model struct {
	form   *huh.Form
	group  *string
	groups []string
	width  int
	height int
}

// New creates an idle prompt.
func New(width, height int) Model {
	return Model{group: new(string), width: width, height: height}
}

// Start opens the prompt. groups are offered as suggestions only; any
// text is accepted.
func (m *Model) Start(groups []string, current string) tea.Cmd {
	m.groups = groups
	*m.group = current
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Archive group").
				Description("Leave empty for " + mailbox.DefaultArchiveGroup + ". Tab completes.").
				Suggestions(groups).
				Value(m.group),
		),
	).WithWidth(min(max(m.width-8, 30), 70)).WithShowHelp(false)
	return m.form.Init()
}

// Update handles messages for the prompt.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "esc" {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		group := *m.group
		return m, func() tea.Msg { return ConfirmMsg{Group: group} }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the prompt and the known groups.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	sections := []string{theme.TitleStyle.Render("Archive message"), m.form.View()}
	if len(m.groups) > 0 {
		sections = append(sections, "", theme.MutedStyle.Render("Existing groups:"))
		for _, g := range m.groups {
			sections = append(sections, theme.ListItemStyle.Render(g))
		}
	}
	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the prompt dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
