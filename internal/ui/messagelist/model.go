// Package messagelist renders the messages of the active folder.
package messagelist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailclient/internal/keys"
	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/theme"
)

// emptyText is the placeholder for a folder without messages.
const emptyText = "No messages"

// OpenMsg is sent when the user opens the message under the cursor.
type OpenMsg struct {
	MessageID int64
}

// Model is the message list column.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	open   *int64
	title  string
	width  int
	height int
}

// New creates an empty message list.
func New(k *keys.KeyMap, width, height int) Model {
	open := new(int64)
	l := list.New([]list.Item{}, ItemDelegate{open: open}, width, max(height-2, 0))
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Model{
		list:   l,
		keys:   k,
		open:   open,
		width:  width,
		height: height,
	}
}

// SetMessages replaces the rows. openID is the open message (0 for none),
// which is highlighted independently of the cursor.
func (m *Model) SetMessages(messages []model.Message, folder *model.FolderRef, openID int64) tea.Cmd {
	*m.open = openID
	m.title = ""
	if folder != nil {
		m.title = folder.Title()
	}

	items := make([]list.Item, len(messages))
	for i, msg := range messages {
		items[i] = MessageItem{Message: msg}
	}
	return m.list.SetItems(items)
}

// Len returns the number of rows.
func (m Model) Len() int {
	return len(m.list.Items())
}

// Selected returns the message under the cursor.
func (m Model) Selected() (model.Message, bool) {
	item, ok := m.list.SelectedItem().(MessageItem)
	if !ok {
		return model.Message{}, false
	}
	return item.Message, true
}

// Update handles key presses while the list has focus.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && key.Matches(kmsg, m.keys.Select) {
		sel, ok := m.Selected()
		if !ok {
			return m, nil
		}
		id := sel.ID
		return m, func() tea.Msg { return OpenMsg{MessageID: id} }
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the folder heading and its rows, or the placeholder.
func (m Model) View() string {
	title := theme.TitleStyle.Render(m.title)

	if len(m.list.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			theme.PlaceholderStyle(m.width, max(m.height-2, 1)).Render(emptyText),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, m.list.View())
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-2, 0))
}
