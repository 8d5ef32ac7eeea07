// Package folderlist renders the folder column of the mailbox page.
package folderlist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailclient/internal/keys"
	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/theme"
)

// SelectMsg is sent when the user picks a folder.
type SelectMsg struct {
	Folder model.FolderRef
}

// Model is the folder column. The cursor moves freely; the active folder
// only changes when a SelectMsg has been handled.
type Model struct {
	folders  []model.Folder
	selected *model.FolderRef
	cursor   int
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates an empty folder column.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

// SetFolders replaces the folder list and the active folder. The cursor
// follows the active folder.
func (m *Model) SetFolders(folders []model.Folder, selected *model.FolderRef) {
	m.folders = folders
	m.selected = selected
	if selected != nil {
		for i, f := range folders {
			if selected.Matches(f) {
				m.cursor = i
				break
			}
		}
	}
	m.cursor = min(m.cursor, max(len(folders)-1, 0))
}

// Find returns the folder whose display name equals name, ignoring case.
func (m Model) Find(name string) (model.Folder, bool) {
	for _, f := range m.folders {
		if strings.EqualFold(f.DisplayName(), name) {
			return f, true
		}
	}
	return model.Folder{}, false
}

// Update handles key presses while the column has focus.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.folders) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(kmsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(kmsg, m.keys.Down):
		if m.cursor < len(m.folders)-1 {
			m.cursor++
		}
	case key.Matches(kmsg, m.keys.Select):
		ref := m.folders[m.cursor].Ref()
		return m, func() tea.Msg { return SelectMsg{Folder: ref} }
	}
	return m, nil
}

// View renders the folder names, marking the active one.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Folders")
	if len(m.folders) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, theme.MutedStyle.Render("No folders"))
	}

	lines := []string{title}
	for i, f := range m.folders {
		name := f.DisplayName()
		active := m.selected != nil && m.selected.Matches(f)

		var row string
		switch {
		case active:
			row = theme.SelectedItemStyle.Render(name)
		default:
			row = theme.ListItemStyle.Inherit(theme.FolderKindStyle(f.Kind)).Render(name)
		}
		if i == m.cursor {
			row = lipgloss.NewStyle().Reverse(true).Render(row)
		}
		lines = append(lines, row)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// SetSize updates the column dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
