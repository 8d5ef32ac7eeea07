// Package contacts renders the address book overlay.
package contacts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nhle/mailclient/internal/api"
	"github.com/nhle/mailclient/internal/keys"
	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/theme"
)

// ungrouped is the heading for contacts without a group name.
const ungrouped = "No group"

// AddMsg asks the parent to add a contact.
type AddMsg struct {
	Request api.AddContactRequest
}

// RefreshMsg asks the parent to reload the address book.
type RefreshMsg struct{}

// CloseMsg dismisses the overlay.
type CloseMsg struct{}

// Section is one group of contacts.
type Section struct {
	Name     string
	Contacts []model.Contact
}

// Group splits contacts by group name. Named groups are collated for
// locale; contacts without a group come last.
func Group(contacts []model.Contact, locale language.Tag) []Section {
	byName := make(map[string][]model.Contact)
	var names []string
	for _, c := range contacts {
		name := c.GroupName
		if name == "" {
			name = ungrouped
		}
		if _, seen := byName[name]; !seen && name != ungrouped {
			names = append(names, name)
		}
		byName[name] = append(byName[name], c)
	}
	collate.New(locale).SortStrings(names)
	if _, ok := byName[ungrouped]; ok {
		names = append(names, ungrouped)
	}

	sections := make([]Section, 0, len(names))
	for _, n := range names {
		sections = append(sections, Section{Name: n, Contacts: byName[n]})
	}
	return sections
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	username string
	alias    string
	group    string
}

// Model is the address book overlay.
type Model struct {
	contacts []model.Contact
	loaded   bool
	locale   language.Tag

	form   *huh.Form
	fb     *formBindings
	adding bool

	keys   *keys.KeyMap
	width  int
	height int
}

// New creates the overlay.
func New(k *keys.KeyMap, locale language.Tag, width, height int) Model {
	return Model{
		fb:     &formBindings{},
		locale: locale,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetContacts mirrors the address book part of the mailbox state.
func (m *Model) SetContacts(contacts []model.Contact, loaded bool) {
	m.contacts = contacts
	m.loaded = loaded
}

// Adding reports whether the add form is open.
func (m Model) Adding() bool {
	return m.adding
}

// Update handles messages for the overlay.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.adding {
		return m.updateForm(msg)
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(kmsg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	case key.Matches(kmsg, m.keys.Refresh):
		return m, func() tea.Msg { return RefreshMsg{} }
	case kmsg.String() == "n":
		cmd := m.startAdd()
		return m, cmd
	}
	return m, nil
}

func (m *Model) startAdd() tea.Cmd {
	*m.fb = formBindings{}
	m.adding = true

	var groups []string
	for _, s := range Group(m.contacts, m.locale) {
		if s.Name != ungrouped {
			groups = append(groups, s.Name)
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&m.fb.username).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("username is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Alias").
				Placeholder("optional").
				Value(&m.fb.alias),
			huh.NewInput().
				Title("Group").
				Placeholder("optional").
				Suggestions(groups).
				Value(&m.fb.group),
		),
	).WithWidth(min(max(m.width-8, 30), 70)).WithShowHelp(false)
	return m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && key.Matches(kmsg, m.keys.Back) {
		m.adding = false
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.adding = false
		req := api.AddContactRequest{
			Username:  m.fb.username,
			Alias:     m.fb.alias,
			GroupName: m.fb.group,
		}
		return m, func() tea.Msg { return AddMsg{Request: req} }
	case huh.StateAborted:
		m.adding = false
		return m, nil
	}
	return m, cmd
}

// View renders the grouped address book or the add form.
func (m Model) View() string {
	sections := []string{theme.TitleStyle.Render("Contacts")}

	switch {
	case m.adding:
		sections = append(sections, m.form.View())
	case !m.loaded:
		sections = append(sections, theme.MutedStyle.Render("Loading contacts…"))
	case len(m.contacts) == 0:
		sections = append(sections, theme.MutedStyle.Render("No contacts yet"))
	default:
		for _, s := range Group(m.contacts, m.locale) {
			sections = append(sections,
				lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Render(
					fmt.Sprintf("%s (%d)", s.Name, len(s.Contacts)),
				),
			)
			for _, c := range s.Contacts {
				sections = append(sections, theme.ListItemStyle.Render(label(c)))
			}
		}
	}

	sections = append(sections, "", theme.HelpStyle.Render("n add · r refresh · esc close"))
	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// label is the alias, or the user id when no alias was given.
func label(c model.Contact) string {
	if c.Alias != "" {
		return c.Alias
	}
	return fmt.Sprintf("user #%d", c.ContactUserID)
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
