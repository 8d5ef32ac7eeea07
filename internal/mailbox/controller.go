// Package mailbox drives the main mailbox page: bootstrap, folder and
// message selection, star/archive toggles, compose and logout.
//
// Every user action is an Event routed through an explicit dispatch
// table. Handlers mutate State synchronously and return a tea.Cmd for the
// network or file work; the command captures plain values, never State,
// and reports back with a result message that Apply folds into State.
//
// Star and archive are success-gated: the local copy of a message only
// changes after the server has confirmed the new value. A failed call
// leaves State exactly as it was and shows a toast.
package mailbox

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/nhle/mailclient/internal/api"
	"github.com/nhle/mailclient/internal/compose"
	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/route"
	"github.com/nhle/mailclient/internal/session"
)

// DefaultArchiveGroup labels archived messages when no group is given.
const DefaultArchiveGroup = "Ungrouped"

// Controller holds the collaborators of the mailbox page. Per-page data
// lives in State.
type Controller struct {
	api      API
	sessions *session.Store
	stager   compose.Stager
	logger   *zap.Logger
	toastTTL time.Duration
	locale   language.Tag

	// generation counts page lifetimes. It moves on bootstrap and when the
	// session ends, so results stamped with an older value are dropped.
	generation int
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithToastDuration sets how long toasts stay visible.
func WithToastDuration(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.toastTTL = d
		}
	}
}

// WithLocale sets the collation locale for archive groups. Unparseable
// tags fall back to English.
func WithLocale(tag string) Option {
	return func(c *Controller) {
		if t, err := language.Parse(tag); err == nil {
			c.locale = t
		}
	}
}

// WithStager replaces the attachment stager.
func WithStager(s compose.Stager) Option {
	return func(c *Controller) {
		c.stager = s
	}
}

// NewController creates a mailbox controller.
func NewController(client API, sessions *session.Store, opts ...Option) *Controller {
	c := &Controller{
		api:      client,
		sessions: sessions,
		logger:   zap.NewNop(),
		toastTTL: 3 * time.Second,
		locale:   language.English,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewState returns the state of a freshly opened mailbox page.
func NewState() State {
	return State{Phase: PhaseUnauthenticated}
}

// Dispatch runs the handler registered for ev.Action.
func (c *Controller) Dispatch(s *State, ev Event) tea.Cmd {
	h, ok := handlers[ev.Action]
	if !ok {
		c.logger.Error("no handler for action", zap.Int("action", int(ev.Action)))
		return nil
	}
	c.logger.Debug("dispatch", zap.Stringer("action", ev.Action))
	return c.stamp(h(c, s, ev))
}

// ArchiveGroups returns the suggestion list for the archive group input.
func (c *Controller) ArchiveGroups(s *State) []string {
	return ArchiveGroups(s.Messages, s.Detail, c.locale)
}

// Notify shows a toast for events that happen outside the dispatch
// table, such as an unknown command.
func (c *Controller) Notify(s *State, text string, isError bool) tea.Cmd {
	return c.showToast(s, text, isError)
}

// --- handlers ---

func (c *Controller) bootstrap(s *State, _ Event) tea.Cmd {
	c.generation++
	if !c.sessions.Authenticated() {
		s.Phase = PhaseUnauthenticated
		return route.Navigate(route.PageLogin)
	}

	s.Phase = PhaseLoading
	s.User = c.sessions.User()
	s.bootstrapPending = 3

	// The list needs a folder; without one it is fetched once the folder
	// list has picked the first folder.
	list := c.fetchMessages(s.Selected, true)
	s.listDeferred = list == nil

	return tea.Batch(
		c.fetchSession(),
		c.fetchFolders(true),
		list,
	)
}

func (c *Controller) loadSession(_ *State, _ Event) tea.Cmd {
	return c.fetchSession()
}

func (c *Controller) loadFolders(_ *State, _ Event) tea.Cmd {
	return c.fetchFolders(false)
}

func (c *Controller) loadMessages(s *State, _ Event) tea.Cmd {
	if s.Selected == nil {
		return nil
	}
	return c.fetchMessages(s.Selected, false)
}

// selectFolder clears the open message before the new list is fetched.
func (c *Controller) selectFolder(s *State, ev Event) tea.Cmd {
	ref := ev.Folder
	s.Selected = &ref
	s.clearSelection()
	return c.fetchMessages(s.Selected, false)
}

func (c *Controller) openMessage(_ *State, ev Event) tea.Cmd {
	client, id := c.api, ev.MessageID
	return func() tea.Msg {
		detail, err := client.Message(context.Background(), id)
		return messageOpenedMsg{id: id, detail: detail, err: err}
	}
}

func (c *Controller) toggleStar(s *State, _ Event) tea.Cmd {
	if s.Detail == nil {
		return nil
	}
	client, id, target := c.api, s.Detail.ID, !s.Detail.IsStarred
	return func() tea.Msg {
		err := client.SetStarred(context.Background(), id, target)
		return starResultMsg{id: id, target: target, err: err}
	}
}

func (c *Controller) toggleArchive(s *State, ev Event) tea.Cmd {
	if s.Detail == nil {
		return nil
	}
	client, id, target := c.api, s.Detail.ID, !s.Detail.IsArchived

	group := ""
	if target {
		group = strings.TrimSpace(ev.Group)
		if group == "" {
			group = DefaultArchiveGroup
		}
	}

	return func() tea.Msg {
		err := client.SetArchived(context.Background(), id, target, group)
		return archiveResultMsg{id: id, target: target, group: group, err: err}
	}
}

// openCompose starts a new session with an empty draft, or clears the
// status of the one already open.
func (c *Controller) openCompose(s *State, _ Event) tea.Cmd {
	if s.Compose.Open {
		s.Compose.Status = ""
		s.Compose.StatusError = false
		return nil
	}
	s.composeSeq++
	s.Compose = ComposeState{Open: true, Session: s.composeSeq}
	return nil
}

// closeCompose discards the draft, staged attachments included. Reads
// still in flight are dropped when they land.
func (c *Controller) closeCompose(s *State, _ Event) tea.Cmd {
	s.Compose = ComposeState{}
	return nil
}

func (c *Controller) send(s *State, ev Event) tea.Cmd {
	return c.submitCompose(s, ev.Fields, false)
}

func (c *Controller) saveDraft(s *State, ev Event) tea.Cmd {
	return c.submitCompose(s, ev.Fields, true)
}

func (c *Controller) submitCompose(s *State, f ComposeFields, saveAsDraft bool) tea.Cmd {
	s.Compose.Draft.Recipients = f.Recipients
	s.Compose.Draft.Subject = f.Subject
	s.Compose.Draft.Body = f.Body

	if err := s.Compose.Draft.Validate(); err != nil {
		s.Compose.Status = "Recipients are required"
		s.Compose.StatusError = true
		return nil
	}

	s.Compose.Sending = true
	s.Compose.StatusError = false
	if saveAsDraft {
		s.Compose.Status = "Saving draft…"
	} else {
		s.Compose.Status = "Sending…"
	}

	client, req, seq := c.api, s.Compose.Draft.Request(saveAsDraft), s.Compose.Session
	return func() tea.Msg {
		resp, err := client.Compose(context.Background(), req)
		return composeResultMsg{session: seq, saveAsDraft: saveAsDraft, resp: resp, err: err}
	}
}

func (c *Controller) stageFiles(s *State, ev Event) tea.Cmd {
	paths := slices.DeleteFunc(slices.Clone(ev.Paths), func(p string) bool {
		return strings.TrimSpace(p) == ""
	})
	if len(paths) == 0 || !s.Compose.Open {
		return nil
	}

	s.Compose.Staging = true
	stager, seq := c.stager, s.Compose.Session
	return func() tea.Msg {
		staged, err := stager.Stage(context.Background(), paths)
		return stagedMsg{session: seq, staged: staged, err: err}
	}
}

func (c *Controller) removeAttachment(s *State, ev Event) tea.Cmd {
	s.Compose.Draft.Attachments = compose.Remove(s.Compose.Draft.Attachments, ev.Index)
	return nil
}

func (c *Controller) createFolder(s *State, ev Event) tea.Cmd {
	name := strings.TrimSpace(ev.Name)
	if name == "" {
		return c.showToast(s, "Folder name is required", true)
	}
	client := c.api
	return func() tea.Msg {
		folder, err := client.CreateFolder(context.Background(), name)
		return folderCreatedMsg{folder: folder, err: err}
	}
}

// loadContacts fetches the address book on first use, or again when
// forced.
func (c *Controller) loadContacts(s *State, ev Event) tea.Cmd {
	if s.ContactsLoaded && !ev.Force {
		return nil
	}
	client := c.api
	return func() tea.Msg {
		contacts, err := client.Contacts(context.Background())
		return contactsLoadedMsg{contacts: contacts, err: err}
	}
}

func (c *Controller) addContact(s *State, ev Event) tea.Cmd {
	req := api.AddContactRequest{
		Username:  strings.TrimSpace(ev.Contact.Username),
		Alias:     strings.TrimSpace(ev.Contact.Alias),
		GroupName: strings.TrimSpace(ev.Contact.GroupName),
	}
	if req.Username == "" {
		return c.showToast(s, "Username is required", true)
	}
	client := c.api
	return func() tea.Msg {
		contact, err := client.AddContact(context.Background(), req)
		return contactAddedMsg{contact: contact, err: err}
	}
}

func (c *Controller) export(s *State, ev Event) tea.Cmd {
	if s.Detail == nil {
		return nil
	}
	path := strings.TrimSpace(ev.Path)
	if path == "" {
		return c.showToast(s, "Export path is required", true)
	}

	msg := *s.Detail
	attachments := slices.Clone(s.Attachments)
	from := ""
	if s.User != nil {
		from = s.User.Email
	}
	return func() tea.Msg {
		err := ExportFile(path, from, msg, attachments)
		return exportedMsg{path: path, err: err}
	}
}

// logout invalidates the token on the server on a best-effort basis.
// Local credentials are cleared whatever the outcome.
func (c *Controller) logout(_ *State, _ Event) tea.Cmd {
	client := c.api
	return func() tea.Msg {
		return loggedOutMsg{err: client.Logout(context.Background())}
	}
}

// --- fetch commands ---

func (c *Controller) fetchSession() tea.Cmd {
	client := c.api
	return func() tea.Msg {
		user, err := client.Session(context.Background())
		return sessionLoadedMsg{user: user, err: err}
	}
}

func (c *Controller) fetchFolders(bootstrap bool) tea.Cmd {
	client := c.api
	return func() tea.Msg {
		folders, err := client.Mailboxes(context.Background())
		return foldersLoadedMsg{folders: folders, bootstrap: bootstrap, err: err}
	}
}

// fetchMessages loads the list of ref, or returns nil without a folder.
func (c *Controller) fetchMessages(ref *model.FolderRef, bootstrap bool) tea.Cmd {
	if ref == nil {
		return nil
	}
	client, r := c.api, *ref
	return func() tea.Msg {
		msgs, err := client.Messages(context.Background(), r)
		return messagesLoadedMsg{ref: r, messages: msgs, bootstrap: bootstrap, err: err}
	}
}

// --- results ---

// Apply folds a result message into s. The bool reports whether msg
// belonged to the mailbox page.
func (c *Controller) Apply(s *State, msg tea.Msg) (tea.Cmd, bool) {
	if st, ok := msg.(stampedMsg); ok {
		if st.generation != c.generation {
			c.logger.Debug("dropping result of an earlier page", zap.String("msg", fmt.Sprintf("%T", st.msg)))
			return nil, true
		}
		cmd, handled := c.apply(s, st.msg)
		if !handled {
			// Not a mailbox result; hand it back to the caller unwrapped.
			inner := st.msg
			return func() tea.Msg { return inner }, true
		}
		return c.stamp(cmd), true
	}
	cmd, handled := c.apply(s, msg)
	return c.stamp(cmd), handled
}

func (c *Controller) apply(s *State, msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case sessionLoadedMsg:
		return c.applySession(s, msg), true
	case foldersLoadedMsg:
		return c.applyFolders(s, msg), true
	case messagesLoadedMsg:
		return c.applyMessages(s, msg), true
	case messageOpenedMsg:
		return c.applyOpened(s, msg), true
	case starResultMsg:
		return c.applyStar(s, msg), true
	case archiveResultMsg:
		return c.applyArchive(s, msg), true
	case composeResultMsg:
		return c.applyCompose(s, msg), true
	case stagedMsg:
		return c.applyStaged(s, msg), true
	case folderCreatedMsg:
		return c.applyFolderCreated(s, msg), true
	case contactsLoadedMsg:
		return c.applyContacts(s, msg), true
	case contactAddedMsg:
		return c.applyContactAdded(s, msg), true
	case exportedMsg:
		return c.applyExported(s, msg), true
	case loggedOutMsg:
		return c.applyLoggedOut(s, msg), true
	case ToastExpiredMsg:
		if s.Toast != nil && s.Toast.ID == msg.ID {
			s.Toast = nil
		}
		return nil, true
	}
	return nil, false
}

// bootstrapDone counts down the bootstrap fetches and moves to ready
// once all of them have resolved, successfully or not.
func (s *State) bootstrapDone(bootstrap bool) {
	if !bootstrap || s.bootstrapPending == 0 {
		return
	}
	s.bootstrapPending--
	if s.bootstrapPending == 0 && s.Phase == PhaseLoading {
		s.Phase = PhaseReady
	}
}

func (c *Controller) applySession(s *State, msg sessionLoadedMsg) tea.Cmd {
	s.bootstrapDone(true)
	if msg.err != nil {
		return c.fail(s, msg.err, "Unable to load session")
	}
	s.User = msg.user
	if err := c.sessions.SetUser(msg.user); err != nil {
		c.logger.Warn("storing user profile", zap.Error(err))
	}
	return nil
}

// applyFolders auto-selects the first folder. During bootstrap the
// deferred list fetch is issued for it; with no folder to select the
// list counts as resolved.
func (c *Controller) applyFolders(s *State, msg foldersLoadedMsg) tea.Cmd {
	s.bootstrapDone(msg.bootstrap)
	deferred := msg.bootstrap && s.listDeferred
	if deferred {
		s.listDeferred = false
	}

	if msg.err != nil {
		if deferred {
			s.bootstrapDone(true)
		}
		return c.fail(s, msg.err, "Unable to load folders")
	}
	s.Folders = msg.folders
	if s.Selected == nil && len(s.Folders) > 0 {
		ref := s.Folders[0].Ref()
		s.Selected = &ref
		return c.fetchMessages(s.Selected, deferred)
	}
	if deferred {
		s.bootstrapDone(true)
	}
	return nil
}

// applyMessages replaces the list. Within one page responses are
// applied in arrival order, so a slow response for a previous folder can
// overwrite a newer one.
func (c *Controller) applyMessages(s *State, msg messagesLoadedMsg) tea.Cmd {
	s.bootstrapDone(msg.bootstrap)
	if msg.err != nil {
		return c.fail(s, msg.err, "Unable to load messages")
	}
	s.Messages = msg.messages
	if s.SelectedID != 0 && s.messageIndex(s.SelectedID) < 0 {
		s.clearSelection()
	}
	return nil
}

func (c *Controller) applyOpened(s *State, msg messageOpenedMsg) tea.Cmd {
	if msg.err != nil {
		return c.fail(s, msg.err, "Unable to load message")
	}
	m := *msg.detail.Message
	s.SelectedID = msg.id
	s.Detail = &m
	s.Attachments = msg.detail.Attachments
	return nil
}

// applyStar is success-gated: the flag only changes once the server has
// accepted it.
func (c *Controller) applyStar(s *State, msg starResultMsg) tea.Cmd {
	if msg.err != nil {
		return c.fail(s, msg.err, "Unable to update star")
	}
	if s.Detail != nil && s.Detail.ID == msg.id {
		s.Detail.IsStarred = msg.target
	}
	if i := s.messageIndex(msg.id); i >= 0 {
		s.Messages[i].IsStarred = msg.target
	}
	text := "Star removed"
	if msg.target {
		text = "Message starred"
	}
	return c.showToast(s, text, false)
}

// applyArchive is success-gated like applyStar. Archiving moves the
// message between folders, so the list is reloaded on success only.
func (c *Controller) applyArchive(s *State, msg archiveResultMsg) tea.Cmd {
	if msg.err != nil {
		return c.fail(s, msg.err, "Unable to update archive")
	}
	if s.Detail != nil && s.Detail.ID == msg.id {
		s.Detail.IsArchived = msg.target
		if msg.target {
			s.Detail.ArchiveGroup = msg.group
		}
	}
	text := "Message restored"
	if msg.target {
		text = "Message archived"
	}
	return tea.Batch(
		c.showToast(s, text, false),
		c.loadMessages(s, Event{}),
	)
}

// applyCompose reports on the surface that sent the request. When that
// surface has been closed since, only a toast is shown.
func (c *Controller) applyCompose(s *State, msg composeResultMsg) tea.Cmd {
	current := s.Compose.Open && s.Compose.Session == msg.session
	if !current {
		switch {
		case api.IsUnauthorized(msg.err):
			return c.expire(s)
		case msg.err != nil:
			c.logger.Warn("compose failed after close", zap.Bool("draft", msg.saveAsDraft), zap.Error(msg.err))
			return c.showToast(s, api.UserMessage(msg.err, "Unable to send"), true)
		case msg.saveAsDraft:
			return c.showToast(s, "Draft saved", false)
		default:
			return tea.Batch(
				c.showToast(s, "Message sent", false),
				c.loadMessages(s, Event{}),
			)
		}
	}

	s.Compose.Sending = false
	if msg.err != nil {
		if api.IsUnauthorized(msg.err) {
			return c.expire(s)
		}
		c.logger.Warn("compose failed", zap.Bool("draft", msg.saveAsDraft), zap.Error(msg.err))
		s.Compose.Status = api.UserMessage(msg.err, "Unable to send")
		s.Compose.StatusError = true
		return nil
	}

	if msg.saveAsDraft {
		s.Compose.Status = "Draft saved"
		s.Compose.StatusError = false
		return c.showToast(s, "Draft saved", false)
	}

	s.Compose = ComposeState{}
	return tea.Batch(
		c.showToast(s, "Message sent", false),
		c.loadMessages(s, Event{}),
	)
}

// applyStaged merges a whole batch, or nothing when any read failed.
// Batches for a compose session that has been discarded are dropped.
func (c *Controller) applyStaged(s *State, msg stagedMsg) tea.Cmd {
	if !s.Compose.Open || s.Compose.Session != msg.session {
		c.logger.Debug("dropping staged files of a closed draft", zap.Int("files", len(msg.staged)))
		return nil
	}
	s.Compose.Staging = false
	if msg.err != nil {
		c.logger.Warn("staging attachments", zap.Error(msg.err))
		var readErr *compose.ReadError
		if errors.As(msg.err, &readErr) {
			return c.showToast(s, readErr.Error(), true)
		}
		return c.showToast(s, "Unable to read attachments", true)
	}
	s.Compose.Draft.Attachments = compose.Merge(s.Compose.Draft.Attachments, msg.staged)
	return nil
}

func (c *Controller) applyFolderCreated(s *State, msg folderCreatedMsg) tea.Cmd {
	if msg.err != nil {
		return c.fail(s, msg.err, "Unable to create folder")
	}
	return tea.Batch(
		c.showToast(s, fmt.Sprintf("Folder %q created", msg.folder.DisplayName()), false),
		c.fetchFolders(false),
	)
}

func (c *Controller) applyContacts(s *State, msg contactsLoadedMsg) tea.Cmd {
	if msg.err != nil {
		return c.fail(s, msg.err, "Unable to load contacts")
	}
	s.Contacts = msg.contacts
	s.ContactsLoaded = true
	return nil
}

func (c *Controller) applyContactAdded(s *State, msg contactAddedMsg) tea.Cmd {
	if msg.err != nil {
		return c.fail(s, msg.err, "Unable to add contact")
	}
	s.Contacts = append(s.Contacts, *msg.contact)
	return c.showToast(s, "Contact added", false)
}

func (c *Controller) applyExported(s *State, msg exportedMsg) tea.Cmd {
	if msg.err != nil {
		c.logger.Warn("export failed", zap.String("path", msg.path), zap.Error(msg.err))
		return c.showToast(s, "Unable to export message", true)
	}
	return c.showToast(s, "Saved to "+msg.path, false)
}

func (c *Controller) applyLoggedOut(s *State, msg loggedOutMsg) tea.Cmd {
	if msg.err != nil && !api.IsUnauthorized(msg.err) {
		c.logger.Warn("logout request failed", zap.Error(msg.err))
	}
	return c.expire(s)
}

// fail handles a failed request: a 401 ends the session, anything else
// becomes an error toast.
func (c *Controller) fail(s *State, err error, fallback string) tea.Cmd {
	if api.IsUnauthorized(err) {
		return c.expire(s)
	}
	c.logger.Warn(fallback, zap.Error(err))
	return c.showToast(s, api.UserMessage(err, fallback), true)
}

// expire clears the stored credentials and leaves for the login page.
// The API client has normally cleared them already; clearing again is
// harmless.
func (c *Controller) expire(s *State) tea.Cmd {
	c.generation++
	if err := c.sessions.Clear(); err != nil {
		c.logger.Error("clearing session", zap.Error(err))
	}
	*s = NewState()
	return route.Navigate(route.PageLogin)
}

// stamp tags the results of cmd with the current generation.
func (c *Controller) stamp(cmd tea.Cmd) tea.Cmd {
	return stampCmd(c.generation, cmd)
}

func stampCmd(generation int, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		return stampMsg(generation, cmd())
	}
}

func stampMsg(generation int, msg tea.Msg) tea.Msg {
	switch msg := msg.(type) {
	case nil, ToastExpiredMsg, route.NavigateMsg, stampedMsg:
		return msg
	case tea.BatchMsg:
		out := make(tea.BatchMsg, len(msg))
		for i, cmd := range msg {
			out[i] = stampCmd(generation, cmd)
		}
		return out
	}
	return stampedMsg{generation: generation, msg: msg}
}

func (c *Controller) showToast(s *State, text string, isError bool) tea.Cmd {
	s.toastSeq++
	id := s.toastSeq
	s.Toast = &Toast{ID: id, Text: text, Error: isError}
	return tea.Tick(c.toastTTL, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}
