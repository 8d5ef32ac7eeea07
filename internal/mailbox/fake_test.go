package mailbox

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailclient/internal/api"
	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/session"
)

// fakeAPI records calls and returns canned results.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	user      *model.User
	folders   []model.Folder
	messages  map[model.FolderKind][]model.Message
	details   map[int64]*api.MessageDetail
	contacts  []model.Contact
	composeRq []api.ComposeRequest
	archived  []string

	errs map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		user: &model.User{ID: 1, Username: "alice", Email: "alice@example.com"},
		folders: []model.Folder{
			{ID: 1, Name: "inbox", Kind: model.FolderInbox},
			{ID: 2, Name: "drafts", Kind: model.FolderDrafts},
			{ID: 3, Name: "Receipts", Kind: model.FolderCustom},
		},
		messages: map[model.FolderKind][]model.Message{
			model.FolderInbox: {
				{ID: 10, Folder: model.FolderInbox, Subject: "Hello", Body: "hi there"},
				{ID: 11, Folder: model.FolderInbox, Subject: "Invoice", ArchiveGroup: "Bills"},
			},
		},
		details: map[int64]*api.MessageDetail{
			10: {
				Message:     &model.Message{ID: 10, Folder: model.FolderInbox, Subject: "Hello", Body: "hi there"},
				Attachments: []model.Attachment{{ID: 1, MessageID: 10, Filename: "a.txt", SizeBytes: 2048}},
			},
			11: {Message: &model.Message{ID: 11, Folder: model.FolderInbox, Subject: "Invoice", ArchiveGroup: "Bills"}},
		},
		errs: map[string]error{},
	}
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeAPI) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Logout(context.Context) error { return f.record("logout") }

func (f *fakeAPI) Session(context.Context) (*model.User, error) {
	if err := f.record("session"); err != nil {
		return nil, err
	}
	return f.user, nil
}

func (f *fakeAPI) Mailboxes(context.Context) ([]model.Folder, error) {
	if err := f.record("mailboxes"); err != nil {
		return nil, err
	}
	return f.folders, nil
}

func (f *fakeAPI) Messages(_ context.Context, ref model.FolderRef) ([]model.Message, error) {
	if err := f.record("messages"); err != nil {
		return nil, err
	}
	return f.messages[ref.Kind], nil
}

func (f *fakeAPI) Message(_ context.Context, id int64) (*api.MessageDetail, error) {
	if err := f.record("message"); err != nil {
		return nil, err
	}
	d, ok := f.details[id]
	if !ok {
		return nil, &api.Error{Status: 404, Message: "Message not found"}
	}
	cp := *d.Message
	return &api.MessageDetail{Message: &cp, Attachments: d.Attachments}, nil
}

func (f *fakeAPI) Compose(_ context.Context, req api.ComposeRequest) (*api.ComposeResponse, error) {
	if err := f.record("compose"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.composeRq = append(f.composeRq, req)
	f.mu.Unlock()
	resp := &api.ComposeResponse{Success: true}
	if req.SaveAsDraft {
		resp.DraftID = 99
	}
	return resp, nil
}

func (f *fakeAPI) SetStarred(context.Context, int64, bool) error { return f.record("star") }

func (f *fakeAPI) SetArchived(_ context.Context, id int64, archived bool, group string) error {
	if err := f.record("archive"); err != nil {
		return err
	}
	f.mu.Lock()
	f.archived = append(f.archived, fmt.Sprintf("%d:%t:%s", id, archived, group))
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) CreateFolder(_ context.Context, name string) (*model.Folder, error) {
	if err := f.record("create-folder"); err != nil {
		return nil, err
	}
	folder := model.Folder{ID: 50, Name: name, Kind: model.FolderCustom}
	f.mu.Lock()
	f.folders = append(f.folders, folder)
	f.mu.Unlock()
	return &folder, nil
}

func (f *fakeAPI) Contacts(context.Context) ([]model.Contact, error) {
	if err := f.record("contacts"); err != nil {
		return nil, err
	}
	return f.contacts, nil
}

func (f *fakeAPI) AddContact(_ context.Context, req api.AddContactRequest) (*model.Contact, error) {
	if err := f.record("add-contact"); err != nil {
		return nil, err
	}
	return &model.Contact{ID: 7, Alias: req.Alias, GroupName: req.GroupName, ContactUserID: 2}, nil
}

type harness struct {
	t     *testing.T
	api   *fakeAPI
	store *session.Store
	ctrl  *Controller
	state State
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := session.NewStore(session.NewMemory())
	require.NoError(t, err)
	require.NoError(t, store.Save(model.Session{
		Token: "tok",
		User:  &model.User{Username: "alice"},
	}))

	fake := newFakeAPI()
	return &harness{
		t:     t,
		api:   fake,
		store: store,
		ctrl:  NewController(fake, store, WithToastDuration(time.Millisecond)),
		state: NewState(),
	}
}

// exec runs cmd and every command it batches, returning the produced
// messages without applying them.
func exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, exec(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// run executes cmd and applies its results, following up commands until
// nothing is left. Toast expiry is collected but not applied so tests can
// inspect the toast. Messages that are not mailbox results are returned.
func (h *harness) run(cmd tea.Cmd) []tea.Msg {
	var other []tea.Msg
	queue := exec(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		if _, ok := msg.(ToastExpiredMsg); ok {
			continue
		}
		next, handled := h.ctrl.Apply(&h.state, msg)
		if !handled {
			other = append(other, msg)
			continue
		}
		queue = append(queue, exec(next)...)
	}
	return other
}

func (h *harness) dispatch(ev Event) []tea.Msg {
	return h.run(h.ctrl.Dispatch(&h.state, ev))
}

// ready bootstraps the page and opens message 10 of the inbox.
func (h *harness) ready() {
	h.t.Helper()
	h.dispatch(Event{Action: ActionBootstrap})
	require.Equal(h.t, PhaseReady, h.state.Phase)
	h.dispatch(Event{Action: ActionOpenMessage, MessageID: 10})
	require.NotNil(h.t, h.state.Detail)
}
