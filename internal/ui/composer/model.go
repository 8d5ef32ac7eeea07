// Package composer renders the compose overlay: the message form, the
// staged attachment list and the inline send status.
package composer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailclient/internal/keys"
	"github.com/nhle/mailclient/internal/mailbox"
	"github.com/nhle/mailclient/internal/theme"
)

// SendMsg asks the parent to send the message or save it as a draft.
type SendMsg struct {
	Fields      mailbox.ComposeFields
	SaveAsDraft bool
}

// StageMsg asks the parent to stage local files or folders.
type StageMsg struct {
	Paths []string
}

// RemoveMsg asks the parent to drop a staged attachment.
type RemoveMsg struct {
	Index int
}

// CloseMsg discards the draft.
type CloseMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	recipients string
	subject    string
	body       string
}

// Model is the compose overlay.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	pathInput textinput.Model
	attaching bool
	cursor    int

	state mailbox.ComposeState

	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new compose overlay.
func New(k *keys.KeyMap, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "~/report.pdf, ~/photos"
	ti.Prompt = "Attach: "

	m := Model{
		fb:        &formBindings{},
		pathInput: ti,
		keys:      k,
		width:     width,
		height:    height,
	}
	m.form = m.buildForm()
	return m
}

// Reset clears the form for a new message and focuses the recipients.
func (m *Model) Reset() tea.Cmd {
	*m.fb = formBindings{}
	m.attaching = false
	m.cursor = 0
	m.pathInput.Reset()
	m.state = mailbox.ComposeState{Open: true}
	m.form = m.buildForm()
	return m.form.Init()
}

// SetState mirrors the compose part of the mailbox state.
func (m *Model) SetState(s mailbox.ComposeState) {
	m.state = s
	m.cursor = min(m.cursor, max(len(s.Draft.Attachments)-1, 0))
}

// Fields returns the current form values.
func (m Model) Fields() mailbox.ComposeFields {
	return mailbox.ComposeFields{
		Recipients: m.fb.recipients,
		Subject:    m.fb.subject,
		Body:       m.fb.body,
	}
}

// Update handles messages for the compose overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if m.attaching {
			return m.updateAttaching(kmsg)
		}
		if cmd, handled := m.handleKey(kmsg); handled {
			return m, cmd
		}
	}
	if m.attaching {
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		var send tea.Cmd
		if !m.state.Sending {
			send = m.send(false)
		}
		m.form = m.buildForm()
		return m, tea.Batch(send, m.form.Init())
	case huh.StateAborted:
		return m, func() tea.Msg { return CloseMsg{} }
	}

	return m, cmd
}

// handleKey processes the compose shortcuts that sit above the form.
func (m *Model) handleKey(kmsg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(kmsg, m.keys.Back):
		return func() tea.Msg { return CloseMsg{} }, true

	case key.Matches(kmsg, m.keys.Send):
		if m.state.Sending {
			return nil, true
		}
		return m.send(false), true

	case key.Matches(kmsg, m.keys.SaveDraft):
		if m.state.Sending {
			return nil, true
		}
		return m.send(true), true

	case key.Matches(kmsg, m.keys.Attach):
		m.attaching = true
		m.pathInput.Reset()
		return m.pathInput.Focus(), true

	case key.Matches(kmsg, m.keys.NextFile):
		if n := len(m.state.Draft.Attachments); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
		return nil, true

	case key.Matches(kmsg, m.keys.Detach):
		if len(m.state.Draft.Attachments) == 0 {
			return nil, true
		}
		index := m.cursor
		return func() tea.Msg { return RemoveMsg{Index: index} }, true
	}
	return nil, false
}

func (m Model) updateAttaching(kmsg tea.KeyMsg) (Model, tea.Cmd) {
	switch kmsg.String() {
	case "esc":
		m.attaching = false
		m.pathInput.Blur()
		return m, nil
	case "enter":
		paths := SplitPaths(m.pathInput.Value())
		m.attaching = false
		m.pathInput.Blur()
		m.pathInput.Reset()
		if len(paths) == 0 {
			return m, nil
		}
		return m, func() tea.Msg { return StageMsg{Paths: paths} }
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(kmsg)
	return m, cmd
}

func (m Model) send(saveAsDraft bool) tea.Cmd {
	msg := SendMsg{Fields: m.Fields(), SaveAsDraft: saveAsDraft}
	return func() tea.Msg { return msg }
}

// SplitPaths splits a comma separated path list, dropping blanks.
func SplitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// View renders the compose overlay.
func (m Model) View() string {
	sections := []string{
		theme.TitleStyle.Render("New Message"),
		m.form.View(),
		m.renderAttachments(),
	}

	if m.attaching {
		sections = append(sections, m.pathInput.View())
	}

	if m.state.Status != "" {
		sections = append(sections, theme.StatusTextStyle(m.state.StatusError).Render(m.state.Status))
	}

	sections = append(sections, theme.HelpStyle.Render(
		"ctrl+s send · ctrl+d save draft · ctrl+o attach · ctrl+n/ctrl+x select/remove · esc discard",
	))

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderAttachments() string {
	list := m.state.Draft.Attachments
	header := theme.MutedStyle.Render(fmt.Sprintf("Attachments (%d)", len(list)))
	if m.state.Staging {
		header += theme.MutedStyle.Render("  reading files…")
	}
	if len(list) == 0 {
		return header
	}

	lines := []string{header}
	for i, a := range list {
		row := fmt.Sprintf("%s  %s  %s", a.DisplayPath(), a.MimeType, mailbox.FormatSize(a.Size))
		if i == m.cursor {
			lines = append(lines, theme.SelectedItemStyle.Render(row))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(row))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.pathInput.Width = max(width-14, 10)
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("To").
				Placeholder("alice@example.com, bob@example.com").
				Value(&m.fb.recipients),
			huh.NewInput().
				Title("Subject").
				Value(&m.fb.subject),
			huh.NewText().
				Title("Body").
				Lines(8).
				Value(&m.fb.body),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m Model) formWidth() int {
	return min(max(m.width-8, 40), 100)
}
