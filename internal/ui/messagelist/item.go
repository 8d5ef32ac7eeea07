package messagelist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailclient/internal/mailbox"
	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/theme"
)

// MessageItem wraps a model.Message so it can be used in a bubbles/list.
type MessageItem struct {
	Message model.Message
}

// FilterValue returns the string used for fuzzy filtering.
func (i MessageItem) FilterValue() string { return i.Message.Subject }

// Title returns the subject line shown for the row.
func (i MessageItem) Title() string { return mailbox.Subject(i.Message.Subject) }

// Description returns the folder label and body preview.
func (i MessageItem) Description() string {
	label := model.KindLabel(i.Message.Folder, i.Message.CustomFolder)
	return label + " · " + mailbox.Preview(i.Message.Body)
}

// ItemDelegate implements list.ItemDelegate for message rows.
type ItemDelegate struct {
	// open points at the id of the open message. Shared by reference with
	// the list Model so updates are visible without rebuilding items.
	open *int64
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws one message as a subject line and a preview line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(MessageItem)
	if !ok {
		return
	}
	msg := it.Message

	star := " "
	if msg.IsStarred {
		star = theme.StarStyle.Render("★")
	}

	width := m.Width()
	stamp := ""
	if ts := msg.Timestamp(); !ts.IsZero() {
		stamp = mailbox.FormatTimestamp(ts)
	}

	subjectWidth := max(width-lipgloss.Width(stamp)-6, 1)
	subject := truncate(it.Title(), subjectWidth)
	gap := max(width-lipgloss.Width(subject)-lipgloss.Width(stamp)-6, 1)

	line1 := fmt.Sprintf("%s %s%s%s", star, subject, strings.Repeat(" ", gap), theme.MutedStyle.Render(stamp))
	line2 := "  " + theme.FolderKindStyle(msg.Folder).Render(model.KindLabel(msg.Folder, msg.CustomFolder)) +
		theme.MutedStyle.Render(" · "+truncate(mailbox.Preview(msg.Body), max(width-20, 10)))

	style := theme.ListItemStyle
	if d.open != nil && msg.ID == *d.open {
		style = theme.SelectedItemStyle
	}
	row := style.Render(lipgloss.JoinVertical(lipgloss.Left, line1, line2))

	if index == m.Index() {
		row = lipgloss.NewStyle().Bold(true).Render(row)
	}
	fmt.Fprint(w, row)
}

// truncate shortens s to at most n runes, marking the cut with "…".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
