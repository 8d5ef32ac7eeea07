package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailclient/internal/keys"
	"github.com/nhle/mailclient/internal/mailbox"
	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/theme"
)

// BackMsg signals the parent to return focus to the message list.
type BackMsg struct{}

// ActionMsg asks the parent to run an action on the open message.
type ActionMsg struct {
	Action mailbox.Action
}

// StarLabel is the label of the star toggle for msg.
func StarLabel(msg model.Message) string {
	if msg.IsStarred {
		return "Unstar"
	}
	return "Star"
}

// ArchiveLabel is the label of the archive toggle for msg.
func ArchiveLabel(msg model.Message) string {
	if msg.IsArchived {
		return "Unarchive"
	}
	return "Archive"
}

// Model is the message detail view.
type Model struct {
	message     *model.Message
	attachments []model.Attachment
	viewport    viewport.Model
	keys        *keys.KeyMap
	width       int
	height      int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, max(height-2, 0))
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(kmsg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(kmsg, m.keys.Star):
			if m.message != nil {
				return m, func() tea.Msg { return ActionMsg{Action: mailbox.ActionToggleStar} }
			}

		case key.Matches(kmsg, m.keys.Archive):
			if m.message != nil {
				return m, func() tea.Msg { return ActionMsg{Action: mailbox.ActionToggleArchive} }
			}

		case key.Matches(kmsg, m.keys.Export):
			if m.message != nil {
				return m, func() tea.Msg { return ActionMsg{Action: mailbox.ActionExport} }
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the action bar above the scrollable message.
func (m Model) View() string {
	if m.message == nil {
		return theme.PlaceholderStyle(m.width, m.height).Render("No message selected")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.actionBar(), "", m.viewport.View())
}

func (m Model) actionBar() string {
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	item := func(k, label string) string {
		return keyStyle.Render("["+k+"]") + " " + label
	}
	return strings.Join([]string{
		item("s", StarLabel(*m.message)),
		item("a", ArchiveLabel(*m.message)),
		item("e", "Export"),
		item("esc", "Back"),
	}, "   ")
}

// renderContent builds the headers, attachments and body for the viewport.
func (m Model) renderContent() string {
	if m.message == nil {
		return ""
	}
	msg := m.message
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	title := mailbox.Subject(msg.Subject)
	if msg.IsStarred {
		title = theme.StarStyle.Render("★ ") + title
	}
	sections = append(sections, titleStyle.Render(title))

	badges := []string{
		theme.FolderKindStyle(msg.Folder).Render(model.KindLabel(msg.Folder, msg.CustomFolder)),
	}
	if msg.IsDraft {
		badges = append(badges, theme.FolderKindStyle(model.FolderDrafts).Render("Draft"))
	}
	if msg.IsArchived {
		group := msg.ArchiveGroup
		if group == "" {
			group = mailbox.DefaultArchiveGroup
		}
		badges = append(badges, theme.FolderKindStyle(model.FolderArchive).Render("Archived: "+group))
	}
	sections = append(sections, strings.Join(badges, "  "), "")

	metaStyle := theme.MutedStyle
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	if msg.Recipients != "" {
		sections = append(sections, fmt.Sprintf("%s  %s",
			metaStyle.Render("To:"), valStyle.Render(msg.Recipients)))
	}
	if ts := msg.Timestamp(); !ts.IsZero() {
		sections = append(sections, fmt.Sprintf("%s  %s",
			metaStyle.Render("Date:"), valStyle.Render(mailbox.FormatTimestamp(ts))))
	}

	if len(m.attachments) > 0 {
		sections = append(sections, "", metaStyle.Render(fmt.Sprintf("Attachments (%d)", len(m.attachments))))
		for _, a := range m.attachments {
			name := a.Filename
			if a.RelativePath != "" {
				name = a.RelativePath
			}
			sections = append(sections, fmt.Sprintf("  %s  %s  %s",
				valStyle.Render(name),
				metaStyle.Render(a.MimeType),
				metaStyle.Render(mailbox.FormatSize(a.SizeBytes)),
			))
		}
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	sections = append(sections, "", sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0))), "")

	body := msg.Body
	if strings.TrimSpace(body) == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("(empty message)")
	}
	sections = append(sections, lipgloss.NewStyle().Width(max(m.width-2, 10)).Render(body))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetMessage updates the message being displayed. The scroll position is
// kept when the same message is re-rendered after a flag change.
func (m *Model) SetMessage(msg *model.Message, attachments []model.Attachment) {
	same := msg != nil && m.message != nil && m.message.ID == msg.ID
	m.message = msg
	m.attachments = attachments
	m.viewport.SetContent(m.renderContent())
	if !same {
		m.viewport.GotoTop()
	}
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 0)
	m.viewport.SetContent(m.renderContent())
}
