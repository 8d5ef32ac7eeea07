package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/nhle/mailclient/internal/auth"
	"github.com/nhle/mailclient/internal/mailbox"
	"github.com/nhle/mailclient/internal/route"
	"github.com/nhle/mailclient/internal/theme"
	"github.com/nhle/mailclient/internal/ui"
	"github.com/nhle/mailclient/internal/ui/archive"
	"github.com/nhle/mailclient/internal/ui/command"
	"github.com/nhle/mailclient/internal/ui/composer"
	"github.com/nhle/mailclient/internal/ui/contacts"
	"github.com/nhle/mailclient/internal/ui/detail"
	"github.com/nhle/mailclient/internal/ui/folderlist"
	helpview "github.com/nhle/mailclient/internal/ui/help"
	"github.com/nhle/mailclient/internal/ui/login"
	"github.com/nhle/mailclient/internal/ui/messagelist"
)

// Overlay is a view drawn over the mailbox panes.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayCommand
	OverlayCompose
	OverlayArchive
	OverlayContacts
)

// Pane is the mailbox column that receives key presses.
type Pane int

const (
	PaneFolders Pane = iota
	PaneMessages
	PaneDetail
)

// Deps are the collaborators of the root model.
type Deps struct {
	Auth    *auth.Controller
	Mailbox *mailbox.Controller
	Locale  string
	Logger  *zap.Logger
}

// Model is the root Bubble Tea model. It plays the part of the browser:
// it owns the current page, routes keys to the page controllers and
// applies their results on the Update goroutine.
type Model struct {
	page    route.Page
	overlay Overlay
	focus   Pane
	layout  ui.Layout
	keys    *KeyMap
	logger  *zap.Logger

	auth  *auth.Controller
	mail  *mailbox.Controller
	state mailbox.State

	login       login.Model
	folders     folderlist.Model
	messages    messagelist.Model
	detail      detail.Model
	composer    composer.Model
	archive     archive.Model
	contacts    contacts.Model
	helpView    helpview.Model
	commandView command.Model

	ready bool
}

// New creates the root model. When a session token is already stored the
// model starts on the mailbox page and the login form is never drawn.
func New(d Deps) Model {
	keys := DefaultKeyMap()
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	locale, err := language.Parse(d.Locale)
	if err != nil {
		locale = language.English
	}

	m := Model{
		page:        route.PageLogin,
		focus:       PaneMessages,
		keys:        keys,
		logger:      logger,
		auth:        d.Auth,
		mail:        d.Mailbox,
		state:       mailbox.NewState(),
		login:       login.New(keys, 80, 24),
		folders:     folderlist.New(keys, 20, 22),
		messages:    messagelist.New(keys, 56, 22),
		detail:      detail.New(keys, 56, 22),
		composer:    composer.New(keys, 80, 22),
		archive:     archive.New(80, 22),
		contacts:    contacts.New(keys, locale, 80, 22),
		helpView:    helpview.New(keys, 80, 22),
		commandView: command.New(80, 22),
	}
	if m.auth.StartupRedirect() != nil {
		m.page = route.PageMailbox
	}
	return m
}

// Page returns the current page.
func (m Model) Page() route.Page {
	return m.page
}

// Init redirects to the mailbox when a session exists, otherwise it
// focuses the login form.
func (m Model) Init() tea.Cmd {
	if cmd := m.auth.StartupRedirect(); cmd != nil {
		return cmd
	}
	return m.login.Init()
}

// Update handles messages and dispatches to the active page.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		// Forward so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case route.NavigateMsg:
		return m.navigate(msg.To)

	// --- auth page ---

	case login.SubmitMsg:
		cmd, err := m.auth.Submit(msg.Mode, msg.Credentials)
		if err != nil {
			m.login.SetStatus(auth.Status{Text: err.Error(), Error: true}, false)
			return m, m.reopenLogin()
		}
		spin := m.login.SetStatus(auth.Pending(msg.Mode), true)
		return m, tea.Batch(spin, cmd)

	case auth.ResultMsg:
		status, cmd := m.auth.Apply(msg)
		if status.Error {
			m.login.SetStatus(status, false)
			return m, m.reopenLogin()
		}
		spin := m.login.SetStatus(status, true)
		return m, tea.Batch(spin, cmd)

	// --- mailbox views ---

	case folderlist.SelectMsg:
		m.focus = PaneMessages
		return m.dispatch(mailbox.Event{Action: mailbox.ActionSelectFolder, Folder: msg.Folder})

	case messagelist.OpenMsg:
		m.focus = PaneDetail
		return m.dispatch(mailbox.Event{Action: mailbox.ActionOpenMessage, MessageID: msg.MessageID})

	case detail.BackMsg:
		m.focus = PaneMessages
		return m, nil

	case detail.ActionMsg:
		return m.detailAction(msg.Action)

	case archive.ConfirmMsg:
		m.overlay = OverlayNone
		return m.dispatch(mailbox.Event{Action: mailbox.ActionToggleArchive, Group: msg.Group})

	case archive.CancelMsg:
		m.overlay = OverlayNone
		return m, nil

	case composer.SendMsg:
		action := mailbox.ActionSend
		if msg.SaveAsDraft {
			action = mailbox.ActionSaveDraft
		}
		return m.dispatch(mailbox.Event{Action: action, Fields: msg.Fields})

	case composer.StageMsg:
		return m.dispatch(mailbox.Event{Action: mailbox.ActionStageFiles, Paths: expandPaths(msg.Paths)})

	case composer.RemoveMsg:
		return m.dispatch(mailbox.Event{Action: mailbox.ActionRemoveAttachment, Index: msg.Index})

	case composer.CloseMsg:
		m.overlay = OverlayNone
		return m.dispatch(mailbox.Event{Action: mailbox.ActionCloseCompose})

	case contacts.AddMsg:
		return m.dispatch(mailbox.Event{Action: mailbox.ActionAddContact, Contact: msg.Request})

	case contacts.RefreshMsg:
		return m.dispatch(mailbox.Event{Action: mailbox.ActionLoadContacts, Force: true})

	case contacts.CloseMsg:
		m.overlay = OverlayNone
		return m, nil

	case command.CommandMsg:
		m.overlay = OverlayNone
		return m.executeCommand(msg)

	case command.CancelMsg:
		m.overlay = OverlayNone
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if cmd, ok := m.mail.Apply(&m.state, msg); ok {
		m.sync()
		return m, cmd
	}

	return m.updateActiveView(msg)
}

// navigate swaps the page. Both pages start from a fresh state, the way
// a page load would.
func (m Model) navigate(to route.Page) (tea.Model, tea.Cmd) {
	m.logger.Debug("navigate", zap.Stringer("page", to))
	m.page = to
	m.overlay = OverlayNone
	m.focus = PaneMessages
	m.state = mailbox.NewState()

	if to == route.PageLogin {
		m.login = login.New(m.keys, m.layout.ContentWidth(), m.layout.ContentHeight())
		m.sync()
		return m, m.login.Init()
	}

	cmd := m.mail.Dispatch(&m.state, mailbox.Event{Action: mailbox.ActionBootstrap})
	m.sync()
	return m, cmd
}

// dispatch runs a mailbox action and refreshes the views.
func (m Model) dispatch(ev mailbox.Event) (tea.Model, tea.Cmd) {
	cmd := m.mail.Dispatch(&m.state, ev)
	m.sync()
	return m, cmd
}

// sync projects the mailbox state into the views.
func (m *Model) sync() {
	s := &m.state
	m.folders.SetFolders(s.Folders, s.Selected)
	m.messages.SetMessages(s.Messages, s.Selected, s.SelectedID)
	m.detail.SetMessage(s.Detail, s.Attachments)
	m.composer.SetState(s.Compose)
	m.contacts.SetContacts(s.Contacts, s.ContactsLoaded)

	if m.overlay == OverlayCompose && !s.Compose.Open {
		m.overlay = OverlayNone
	}
}

func (m *Model) reopenLogin() tea.Cmd {
	return m.login.Reopen()
}

// detailAction runs an action requested from the detail view. Archiving
// asks for a group first; unarchiving does not need one.
func (m Model) detailAction(action mailbox.Action) (tea.Model, tea.Cmd) {
	if !m.state.HasSelection() {
		return m, nil
	}

	switch action {
	case mailbox.ActionToggleArchive:
		if m.state.Detail.IsArchived {
			return m.dispatch(mailbox.Event{Action: mailbox.ActionToggleArchive})
		}
		m.overlay = OverlayArchive
		return m, m.archive.Start(m.mail.ArchiveGroups(&m.state), m.state.Detail.ArchiveGroup)

	case mailbox.ActionExport:
		m.overlay = OverlayCommand
		return m, m.commandView.Prefill(fmt.Sprintf("export message-%d.eml", m.state.Detail.ID))
	}

	return m.dispatch(mailbox.Event{Action: action})
}

// handleKey routes a key press to the current page and overlay.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.page == route.PageLogin {
		return m.updateActiveView(msg)
	}

	if m.overlay != OverlayNone {
		if m.overlay == OverlayHelp {
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
				m.overlay = OverlayNone
			}
			return m, nil
		}
		return m.updateActiveView(msg)
	}

	if m.state.Phase != mailbox.PhaseReady {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.overlay = OverlayHelp
		return m, nil

	case key.Matches(msg, m.keys.Command):
		m.overlay = OverlayCommand
		return m, m.commandView.Focus()

	case key.Matches(msg, m.keys.Compose):
		return m.openCompose()

	case key.Matches(msg, m.keys.Contacts):
		return m.openContacts()

	case key.Matches(msg, m.keys.NewFolder):
		m.overlay = OverlayCommand
		return m, m.commandView.Prefill("mkdir ")

	case key.Matches(msg, m.keys.Refresh):
		return m.dispatch(mailbox.Event{Action: mailbox.ActionRefresh})

	case key.Matches(msg, m.keys.Logout):
		return m.dispatch(mailbox.Event{Action: mailbox.ActionLogout})

	case key.Matches(msg, m.keys.NextPane):
		m.focus = m.nextPane(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevPane):
		m.focus = m.nextPane(-1)
		return m, nil

	case key.Matches(msg, m.keys.Star), key.Matches(msg, m.keys.Archive), key.Matches(msg, m.keys.Export):
		// Message actions work from any pane once a message is open.
		if m.state.HasSelection() {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m.updateActiveView(msg)
}

// nextPane cycles the focus. The detail pane is only reachable while a
// message is open.
func (m Model) nextPane(step int) Pane {
	panes := []Pane{PaneFolders, PaneMessages}
	if m.state.HasSelection() {
		panes = append(panes, PaneDetail)
	}
	idx := 0
	for i, p := range panes {
		if p == m.focus {
			idx = i
		}
	}
	return panes[(idx+step+len(panes))%len(panes)]
}

func (m Model) openCompose() (tea.Model, tea.Cmd) {
	m.overlay = OverlayCompose
	reset := m.composer.Reset()
	cmd := m.mail.Dispatch(&m.state, mailbox.Event{Action: mailbox.ActionOpenCompose})
	m.sync()
	return m, tea.Batch(reset, cmd)
}

func (m Model) openContacts() (tea.Model, tea.Cmd) {
	m.overlay = OverlayContacts
	return m.dispatch(mailbox.Event{Action: mailbox.ActionLoadContacts})
}

// executeCommand handles a command from the command palette.
func (m Model) executeCommand(c command.CommandMsg) (tea.Model, tea.Cmd) {
	if m.page != route.PageMailbox || m.state.Phase != mailbox.PhaseReady {
		if c.Name == "quit" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch c.Name {
	case "refresh":
		return m.dispatch(mailbox.Event{Action: mailbox.ActionRefresh})
	case "compose":
		return m.openCompose()
	case "contacts":
		return m.openContacts()
	case "mkdir":
		return m.dispatch(mailbox.Event{Action: mailbox.ActionCreateFolder, Name: c.Arg})
	case "folder":
		f, ok := m.folders.Find(c.Arg)
		if !ok {
			return m, m.notify(fmt.Sprintf("No folder named %q", c.Arg), true)
		}
		m.focus = PaneMessages
		return m.dispatch(mailbox.Event{Action: mailbox.ActionSelectFolder, Folder: f.Ref()})
	case "export":
		return m.dispatch(mailbox.Event{Action: mailbox.ActionExport, Path: expandHome(c.Arg)})
	case "logout":
		return m.dispatch(mailbox.Event{Action: mailbox.ActionLogout})
	case "help":
		m.overlay = OverlayHelp
		return m, nil
	case "quit":
		return m, tea.Quit
	default:
		return m, m.notify(fmt.Sprintf("Unknown command %q", c.Name), true)
	}
}

func (m *Model) notify(text string, isError bool) tea.Cmd {
	return m.mail.Notify(&m.state, text, isError)
}

// updateActiveView dispatches the message to the view that has focus.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.page == route.PageLogin {
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	switch m.overlay {
	case OverlayCommand:
		m.commandView, cmd = m.commandView.Update(msg)
		return m, cmd
	case OverlayCompose:
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	case OverlayArchive:
		m.archive, cmd = m.archive.Update(msg)
		return m, cmd
	case OverlayContacts:
		m.contacts, cmd = m.contacts.Update(msg)
		return m, cmd
	case OverlayHelp:
		return m, nil
	}

	switch m.focus {
	case PaneFolders:
		m.folders, cmd = m.folders.Update(msg)
	case PaneMessages:
		m.messages, cmd = m.messages.Update(msg)
	case PaneDetail:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.layout = ui.NewLayout(width, height)
	m.ready = true

	fw, fh := m.layout.FolderPane()
	m.folders.SetSize(fw, fh)

	mw, mh := m.layout.MainPane()
	m.messages.SetSize(mw, mh)
	m.detail.SetSize(mw, mh)

	cw, ch := m.layout.ContentWidth(), m.layout.ContentHeight()
	m.login.SetSize(cw, ch)
	m.composer.SetSize(cw, ch)
	m.archive.SetSize(cw, ch)
	m.contacts.SetSize(cw, ch)
	m.helpView.SetSize(cw, ch)
	m.commandView.SetSize(cw, ch)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Mail", m.headerContext())
	content := m.renderContent()

	var statusBar string
	if t := m.state.Toast; t != nil && m.page == route.PageMailbox {
		statusBar = m.layout.RenderToast(t.Text, t.Error)
	} else {
		statusBar = m.layout.RenderStatusBar(m.keyHints())
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

func (m Model) headerContext() string {
	if m.page != route.PageMailbox {
		return "not signed in"
	}
	var parts []string
	if m.state.User != nil {
		parts = append(parts, m.state.User.DisplayName())
	}
	if m.state.Selected != nil {
		parts = append(parts, m.state.Selected.Title())
	}
	return strings.Join(parts, " · ")
}

// renderContent returns the rendered string for the current page.
func (m Model) renderContent() string {
	if m.page == route.PageLogin {
		return m.login.View()
	}

	if m.state.Phase != mailbox.PhaseReady {
		return theme.PlaceholderStyle(m.layout.ContentWidth(), m.layout.ContentHeight()).
			Render("Loading mailbox…")
	}

	switch m.overlay {
	case OverlayHelp:
		return m.helpView.View()
	case OverlayCommand:
		return m.commandView.View()
	case OverlayCompose:
		return m.composer.View()
	case OverlayArchive:
		return m.archive.View()
	case OverlayContacts:
		return m.contacts.View()
	}

	main := m.messages.View()
	if m.focus == PaneDetail {
		main = m.detail.View()
	}
	return m.layout.RenderPanes(m.folders.View(), main, m.focus != PaneFolders)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.page == route.PageLogin {
		return "enter next field · ctrl+r sign in / register · ctrl+c quit"
	}

	switch m.overlay {
	case OverlayHelp:
		return "? close help | esc back"
	case OverlayCommand:
		return "enter execute | esc back"
	case OverlayCompose:
		return "ctrl+s send | ctrl+d draft | ctrl+o attach | esc discard"
	case OverlayArchive:
		return "enter archive | tab complete | esc cancel"
	case OverlayContacts:
		return "n add | r refresh | esc close"
	}

	switch m.focus {
	case PaneFolders:
		return "enter open folder | n new folder | tab messages | c compose | ? help | q quit"
	case PaneDetail:
		return "s star | a archive | e export | j/k scroll | esc back"
	default:
		return "enter open | r refresh | c compose | b contacts | L log out | ? help | q quit"
	}
}

// expandHome resolves a leading "~/" against the home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func expandPaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = expandHome(p)
	}
	return out
}
