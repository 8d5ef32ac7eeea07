package mailbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailclient/internal/api"
	"github.com/nhle/mailclient/internal/compose"
	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/route"
)

func TestBootstrap_WithoutTokenRedirectsToLogin(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Clear())

	out := h.dispatch(Event{Action: ActionBootstrap})
	assert.Equal(t, []any{route.NavigateMsg{To: route.PageLogin}}, toAny(out))
	assert.Equal(t, PhaseUnauthenticated, h.state.Phase)
	assert.Empty(t, h.api.calls)
}

func TestBootstrap_LoadsEverythingAndSelectsFirstFolder(t *testing.T) {
	h := newHarness(t)

	cmd := h.ctrl.Dispatch(&h.state, Event{Action: ActionBootstrap})
	assert.Equal(t, PhaseLoading, h.state.Phase)
	assert.Equal(t, "alice", h.state.User.Username)

	h.run(cmd)
	assert.Equal(t, PhaseReady, h.state.Phase)
	assert.Equal(t, "alice@example.com", h.state.User.Email)
	assert.Equal(t, "alice@example.com", h.store.User().Email)
	require.Len(t, h.state.Folders, 3)
	require.NotNil(t, h.state.Selected)
	assert.Equal(t, model.FolderInbox, h.state.Selected.Kind)
	assert.Len(t, h.state.Messages, 2)
	assert.False(t, h.state.HasSelection())
}

func TestBootstrap_FailureOnlyToasts(t *testing.T) {
	h := newHarness(t)
	h.api.errs["mailboxes"] = &api.Error{Status: 500, Message: "Failed to load folders"}

	h.dispatch(Event{Action: ActionBootstrap})
	assert.Equal(t, PhaseReady, h.state.Phase)
	assert.Equal(t, "alice@example.com", h.state.User.Email)
	require.NotNil(t, h.state.Toast)
	assert.True(t, h.state.Toast.Error)
	assert.Equal(t, "Failed to load folders", h.state.Toast.Text)
}

func TestBootstrap_StaysLoadingUntilFirstFolderListArrives(t *testing.T) {
	h := newHarness(t)

	firstWave := exec(h.ctrl.Dispatch(&h.state, Event{Action: ActionBootstrap}))
	require.Len(t, firstWave, 2, "session and folders; the list waits for a folder")

	var followUps []tea.Cmd
	for _, msg := range firstWave {
		next, handled := h.ctrl.Apply(&h.state, msg)
		require.True(t, handled)
		if next != nil {
			followUps = append(followUps, next)
		}
	}
	assert.Equal(t, PhaseLoading, h.state.Phase)
	assert.Empty(t, h.state.Messages)
	require.Len(t, followUps, 1)

	h.run(followUps[0])
	assert.Equal(t, PhaseReady, h.state.Phase)
	assert.Len(t, h.state.Messages, 2)
}

func TestBootstrap_NoFoldersStillBecomesReady(t *testing.T) {
	h := newHarness(t)
	h.api.folders = nil

	h.dispatch(Event{Action: ActionBootstrap})
	assert.Equal(t, PhaseReady, h.state.Phase)
	assert.Nil(t, h.state.Selected)
	assert.Zero(t, h.api.called("messages"))
}

func TestUnauthorized_ClearsSessionAndNavigatesToLogin(t *testing.T) {
	h := newHarness(t)
	h.ready()

	h.api.errs["messages"] = fmt.Errorf("GET /api/messages: %w", api.ErrUnauthorized)
	out := h.dispatch(Event{Action: ActionRefresh})

	assert.Contains(t, toAny(out), any(route.NavigateMsg{To: route.PageLogin}))
	assert.Empty(t, h.store.Token())
	assert.Nil(t, h.store.User())
	assert.Equal(t, PhaseUnauthenticated, h.state.Phase)
	assert.Nil(t, h.state.Detail)
}

func TestSelectFolder_ClearsSelectionBeforeListResolves(t *testing.T) {
	h := newHarness(t)
	h.ready()

	cmd := h.ctrl.Dispatch(&h.state, Event{
		Action: ActionSelectFolder,
		Folder: model.Folder{Name: "drafts", Kind: model.FolderDrafts}.Ref(),
	})
	assert.Nil(t, h.state.Detail)
	assert.Zero(t, h.state.SelectedID)
	assert.Empty(t, h.state.Attachments)
	assert.Equal(t, model.FolderDrafts, h.state.Selected.Kind)
	assert.Len(t, h.state.Messages, 2, "list is replaced only when the response arrives")

	h.run(cmd)
	assert.Empty(t, h.state.Messages)
	assert.False(t, h.state.HasSelection())
}

func TestLoadMessages_KeepsSelectionWhenStillListed(t *testing.T) {
	h := newHarness(t)
	h.ready()

	h.dispatch(Event{Action: ActionRefresh})
	assert.Equal(t, int64(10), h.state.SelectedID)
	require.NotNil(t, h.state.Detail)

	h.api.messages[model.FolderInbox] = h.api.messages[model.FolderInbox][1:]
	h.dispatch(Event{Action: ActionRefresh})
	assert.Zero(t, h.state.SelectedID)
	assert.Nil(t, h.state.Detail)
}

func TestOpenMessage_FetchesDetail(t *testing.T) {
	h := newHarness(t)
	h.ready()

	assert.Equal(t, 1, h.api.called("message"))
	assert.Equal(t, "hi there", h.state.Detail.Body)
	require.Len(t, h.state.Attachments, 1)

	h.dispatch(Event{Action: ActionOpenMessage, MessageID: 10})
	assert.Equal(t, 2, h.api.called("message"))

	h.dispatch(Event{Action: ActionOpenMessage, MessageID: 404})
	assert.Equal(t, int64(10), h.state.SelectedID)
	require.NotNil(t, h.state.Toast)
	assert.Equal(t, "Message not found", h.state.Toast.Text)
}

func TestToggleStar_MutatesOnlyOnSuccess(t *testing.T) {
	h := newHarness(t)
	h.ready()

	h.api.errs["star"] = &api.Error{Status: 500, Message: "Failed to update star"}
	h.dispatch(Event{Action: ActionToggleStar})
	assert.False(t, h.state.Detail.IsStarred)
	assert.False(t, h.state.Messages[0].IsStarred)
	require.NotNil(t, h.state.Toast)
	assert.True(t, h.state.Toast.Error)

	delete(h.api.errs, "star")
	h.dispatch(Event{Action: ActionToggleStar})
	assert.True(t, h.state.Detail.IsStarred)
	assert.True(t, h.state.Messages[0].IsStarred)
	assert.Equal(t, "Message starred", h.state.Toast.Text)
	assert.False(t, h.state.Toast.Error)

	h.dispatch(Event{Action: ActionToggleStar})
	assert.False(t, h.state.Detail.IsStarred)
}

func TestToggleStar_NoSelectionIsNoop(t *testing.T) {
	h := newHarness(t)
	assert.Nil(t, h.ctrl.Dispatch(&h.state, Event{Action: ActionToggleStar}))
	assert.Nil(t, h.ctrl.Dispatch(&h.state, Event{Action: ActionToggleArchive}))
}

func TestToggleArchive_FailureLeavesListAndFlag(t *testing.T) {
	h := newHarness(t)
	h.ready()
	before := append([]model.Message(nil), h.state.Messages...)
	listCalls := h.api.called("messages")

	h.api.errs["archive"] = &api.Error{Status: 500, Message: "Failed to update archive"}
	h.dispatch(Event{Action: ActionToggleArchive, Group: "Work"})

	assert.False(t, h.state.Detail.IsArchived)
	assert.Empty(t, h.state.Detail.ArchiveGroup)
	assert.Equal(t, before, h.state.Messages)
	assert.Equal(t, listCalls, h.api.called("messages"))
	require.NotNil(t, h.state.Toast)
	assert.True(t, h.state.Toast.Error)
	assert.Equal(t, "Failed to update archive", h.state.Toast.Text)
}

func TestToggleArchive_SuccessReloadsList(t *testing.T) {
	h := newHarness(t)
	h.ready()
	listCalls := h.api.called("messages")

	// After archiving the message is no longer in the inbox.
	h.api.messages[model.FolderInbox] = h.api.messages[model.FolderInbox][1:]
	h.dispatch(Event{Action: ActionToggleArchive, Group: "  Work "})

	assert.Equal(t, []string{"10:true:Work"}, h.api.archived)
	assert.Equal(t, listCalls+1, h.api.called("messages"))
	assert.Len(t, h.state.Messages, 1)
	assert.Nil(t, h.state.Detail, "archived message left the folder")
	assert.Equal(t, "Message archived", h.state.Toast.Text)
}

func TestToggleArchive_DefaultGroup(t *testing.T) {
	h := newHarness(t)
	h.ready()

	h.dispatch(Event{Action: ActionToggleArchive})
	assert.Equal(t, []string{"10:true:" + DefaultArchiveGroup}, h.api.archived)
}

func TestToggleArchive_UnarchiveSendsNoGroup(t *testing.T) {
	h := newHarness(t)
	h.api.details[10].Message.IsArchived = true
	h.ready()

	h.dispatch(Event{Action: ActionToggleArchive, Group: "ignored"})
	assert.Equal(t, []string{"10:false:"}, h.api.archived)
	assert.False(t, h.state.Detail.IsArchived)
	assert.Equal(t, "Message restored", h.state.Toast.Text)
}

func TestCompose_EmptyRecipientsNeverCallsAPI(t *testing.T) {
	h := newHarness(t)
	h.ready()
	h.dispatch(Event{Action: ActionOpenCompose})

	for _, action := range []Action{ActionSend, ActionSaveDraft} {
		cmd := h.ctrl.Dispatch(&h.state, Event{
			Action: action,
			Fields: ComposeFields{Recipients: "   ", Subject: "s", Body: "b"},
		})
		assert.Nil(t, cmd)
		assert.Equal(t, "Recipients are required", h.state.Compose.Status)
		assert.True(t, h.state.Compose.StatusError)
		assert.True(t, h.state.Compose.Open)
	}
	assert.Zero(t, h.api.called("compose"))
}

func TestCompose_SendClosesAndReloads(t *testing.T) {
	h := newHarness(t)
	h.ready()
	listCalls := h.api.called("messages")

	h.dispatch(Event{Action: ActionOpenCompose})
	h.state.Compose.Draft.Attachments = []compose.Staged{{Filename: "a.txt", RelativePath: "a.txt", Data: "YQ=="}}

	cmd := h.ctrl.Dispatch(&h.state, Event{
		Action: ActionSend,
		Fields: ComposeFields{Recipients: "bob", Subject: "Hi", Body: "Body"},
	})
	assert.True(t, h.state.Compose.Sending)
	h.run(cmd)

	require.Len(t, h.api.composeRq, 1)
	req := h.api.composeRq[0]
	assert.False(t, req.SaveAsDraft)
	assert.Equal(t, "bob", req.Recipients)
	require.Len(t, req.Attachments, 1)

	assert.False(t, h.state.Compose.Open)
	assert.Empty(t, h.state.Compose.Draft.Attachments)
	assert.Equal(t, listCalls+1, h.api.called("messages"))
	assert.Equal(t, "Message sent", h.state.Toast.Text)
}

func TestCompose_SaveDraftKeepsComposeOpen(t *testing.T) {
	h := newHarness(t)
	h.ready()
	listCalls := h.api.called("messages")

	h.dispatch(Event{Action: ActionOpenCompose})
	h.dispatch(Event{Action: ActionSaveDraft, Fields: ComposeFields{Recipients: "bob"}})

	require.Len(t, h.api.composeRq, 1)
	assert.True(t, h.api.composeRq[0].SaveAsDraft)
	assert.True(t, h.state.Compose.Open)
	assert.Equal(t, "Draft saved", h.state.Compose.Status)
	assert.False(t, h.state.Compose.StatusError)
	assert.Equal(t, "bob", h.state.Compose.Draft.Recipients)
	assert.Equal(t, listCalls, h.api.called("messages"))
}

func TestCompose_FailureStaysOpenWithInlineError(t *testing.T) {
	h := newHarness(t)
	h.ready()
	h.api.errs["compose"] = &api.Error{Status: 400, Message: "Unknown recipient bob"}

	h.dispatch(Event{Action: ActionOpenCompose})
	h.dispatch(Event{Action: ActionSend, Fields: ComposeFields{Recipients: "bob"}})

	assert.True(t, h.state.Compose.Open)
	assert.False(t, h.state.Compose.Sending)
	assert.Equal(t, "Unknown recipient bob", h.state.Compose.Status)
	assert.True(t, h.state.Compose.StatusError)
}

func TestStageFiles_DuplicateKeepsLater(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("first"), 0o644))

	h.dispatch(Event{Action: ActionOpenCompose})
	h.dispatch(Event{Action: ActionStageFiles, Paths: []string{path}})
	require.Len(t, h.state.Compose.Draft.Attachments, 1)

	require.NoError(t, os.WriteFile(path, []byte("second!"), 0o644))
	h.dispatch(Event{Action: ActionStageFiles, Paths: []string{path}})

	require.Len(t, h.state.Compose.Draft.Attachments, 1)
	assert.Equal(t, int64(7), h.state.Compose.Draft.Attachments[0].Size)
	assert.False(t, h.state.Compose.Staging)
}

func TestStageFiles_FailureAddsNothing(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(good, []byte("ok"), 0o644))

	h.dispatch(Event{Action: ActionOpenCompose})
	h.dispatch(Event{Action: ActionStageFiles, Paths: []string{good, filepath.Join(dir, "missing.txt")}})

	assert.Empty(t, h.state.Compose.Draft.Attachments)
	require.NotNil(t, h.state.Toast)
	assert.True(t, h.state.Toast.Error)
	assert.Contains(t, h.state.Toast.Text, "missing.txt")
}

func TestRemoveAttachment(t *testing.T) {
	h := newHarness(t)
	h.state.Compose.Draft.Attachments = []compose.Staged{{Filename: "a"}, {Filename: "b"}}

	h.dispatch(Event{Action: ActionRemoveAttachment, Index: 0})
	assert.Equal(t, []compose.Staged{{Filename: "b"}}, h.state.Compose.Draft.Attachments)
}

func TestCloseCompose_DiscardsDraft(t *testing.T) {
	h := newHarness(t)
	h.dispatch(Event{Action: ActionOpenCompose})
	h.state.Compose.Draft.Recipients = "bob"

	h.dispatch(Event{Action: ActionCloseCompose})
	assert.Equal(t, ComposeState{}, h.state.Compose)
}

func TestStageFiles_LateBatchAfterCloseIsDropped(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("draft"), 0o644))

	h.dispatch(Event{Action: ActionOpenCompose})
	pending := h.ctrl.Dispatch(&h.state, Event{Action: ActionStageFiles, Paths: []string{path}})
	require.NotNil(t, pending)
	h.dispatch(Event{Action: ActionCloseCompose})

	h.run(pending)
	h.dispatch(Event{Action: ActionOpenCompose})

	assert.True(t, h.state.Compose.Open)
	assert.Empty(t, h.state.Compose.Draft.Attachments)
	assert.False(t, h.state.Compose.Staging)
}

func TestStageFiles_IgnoredWhileComposeClosed(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	cmd := h.ctrl.Dispatch(&h.state, Event{Action: ActionStageFiles, Paths: []string{path}})
	assert.Nil(t, cmd)
	assert.False(t, h.state.Compose.Staging)
}

func TestOpenCompose_StartsFromEmptyDraft(t *testing.T) {
	h := newHarness(t)
	h.dispatch(Event{Action: ActionOpenCompose})
	first := h.state.Compose.Session
	h.state.Compose.Draft.Recipients = "bob"
	h.dispatch(Event{Action: ActionCloseCompose})

	h.dispatch(Event{Action: ActionOpenCompose})
	assert.Empty(t, h.state.Compose.Draft.Recipients)
	assert.NotEqual(t, first, h.state.Compose.Session)
}

func TestCompose_SendResultAfterCloseOnlyToasts(t *testing.T) {
	h := newHarness(t)
	h.ready()

	h.dispatch(Event{Action: ActionOpenCompose})
	pending := h.ctrl.Dispatch(&h.state, Event{Action: ActionSaveDraft, Fields: ComposeFields{Recipients: "bob"}})
	h.dispatch(Event{Action: ActionCloseCompose})
	h.dispatch(Event{Action: ActionOpenCompose})

	h.run(pending)
	assert.True(t, h.state.Compose.Open)
	assert.Empty(t, h.state.Compose.Status)
	assert.Equal(t, "Draft saved", h.state.Toast.Text)
}

func TestCreateFolder(t *testing.T) {
	h := newHarness(t)
	h.ready()

	h.dispatch(Event{Action: ActionCreateFolder, Name: "  "})
	assert.Zero(t, h.api.called("create-folder"))
	assert.True(t, h.state.Toast.Error)

	h.dispatch(Event{Action: ActionCreateFolder, Name: "Travel"})
	assert.Equal(t, 1, h.api.called("create-folder"))
	require.Len(t, h.state.Folders, 4)
	assert.Equal(t, "Travel", h.state.Folders[3].DisplayName())
	assert.Equal(t, model.FolderInbox, h.state.Selected.Kind)
}

func TestContacts_LoadedOnceUnlessForced(t *testing.T) {
	h := newHarness(t)
	h.api.contacts = []model.Contact{{ID: 1, Alias: "bob", GroupName: "Friends"}}

	h.dispatch(Event{Action: ActionLoadContacts})
	h.dispatch(Event{Action: ActionLoadContacts})
	assert.Equal(t, 1, h.api.called("contacts"))
	assert.True(t, h.state.ContactsLoaded)
	assert.Len(t, h.state.Contacts, 1)

	h.dispatch(Event{Action: ActionLoadContacts, Force: true})
	assert.Equal(t, 2, h.api.called("contacts"))
}

func TestAddContact(t *testing.T) {
	h := newHarness(t)

	h.dispatch(Event{Action: ActionAddContact, Contact: api.AddContactRequest{Username: " "}})
	assert.Zero(t, h.api.called("add-contact"))

	h.dispatch(Event{Action: ActionAddContact, Contact: api.AddContactRequest{Username: "bob", Alias: "Bobby", GroupName: "Friends"}})
	require.Len(t, h.state.Contacts, 1)
	assert.Equal(t, "Bobby", h.state.Contacts[0].Alias)
	assert.Equal(t, "Contact added", h.state.Toast.Text)
}

func TestExport_WritesEML(t *testing.T) {
	h := newHarness(t)
	h.ready()
	path := filepath.Join(t.TempDir(), "out", "hello.eml")

	h.dispatch(Event{Action: ActionExport, Path: path})
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Subject: Hello")
	assert.Equal(t, "Saved to "+path, h.state.Toast.Text)
}

func TestLogout_AlwaysClearsSession(t *testing.T) {
	h := newHarness(t)
	h.ready()
	h.api.errs["logout"] = errors.New("connection refused")

	out := h.dispatch(Event{Action: ActionLogout})
	assert.Equal(t, 1, h.api.called("logout"))
	assert.Contains(t, toAny(out), any(route.NavigateMsg{To: route.PageLogin}))
	assert.False(t, h.store.Authenticated())
	assert.Nil(t, h.state.Toast, "logout failures are not surfaced")
}

func TestLogout_LateBootstrapResultsAreDropped(t *testing.T) {
	h := newHarness(t)
	pending := h.ctrl.Dispatch(&h.state, Event{Action: ActionBootstrap})
	h.dispatch(Event{Action: ActionLogout})
	require.False(t, h.store.Authenticated())

	out := h.run(pending)
	assert.Empty(t, out, "no second redirect")
	assert.Zero(t, h.api.called("messages"))
	assert.Equal(t, NewState(), h.state)
}

func TestBootstrap_ResultsOfPreviousPageAreDropped(t *testing.T) {
	h := newHarness(t)
	h.ready()
	pending := h.ctrl.Dispatch(&h.state, Event{Action: ActionSelectFolder, Folder: h.state.Folders[1].Ref()})

	h.state = NewState()
	h.dispatch(Event{Action: ActionBootstrap})
	require.Equal(t, PhaseReady, h.state.Phase)
	inbox := *h.state.Selected

	h.run(pending)
	assert.Equal(t, inbox, *h.state.Selected)
	assert.Len(t, h.state.Messages, 2)
}

func TestToastExpiry(t *testing.T) {
	h := newHarness(t)
	h.ctrl.showToast(&h.state, "first", false)
	h.ctrl.showToast(&h.state, "second", false)

	h.ctrl.Apply(&h.state, ToastExpiredMsg{ID: 1})
	require.NotNil(t, h.state.Toast)
	assert.Equal(t, "second", h.state.Toast.Text)

	h.ctrl.Apply(&h.state, ToastExpiredMsg{ID: 2})
	assert.Nil(t, h.state.Toast)
}

func TestDispatch_EveryActionHasHandler(t *testing.T) {
	for a := range actionNames {
		_, ok := handlers[a]
		assert.True(t, ok, "action %s", a)
	}
}

func toAny(msgs []tea.Msg) []any {
	out := make([]any, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m)
	}
	return out
}
