package mailbox

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailclient/internal/api"
	"github.com/nhle/mailclient/internal/compose"
	"github.com/nhle/mailclient/internal/model"
)

// Result messages. Commands build them from captured values only; Apply
// folds them into State.

type sessionLoadedMsg struct {
	user *model.User
	err  error
}

type foldersLoadedMsg struct {
	folders   []model.Folder
	bootstrap bool
	err       error
}

type messagesLoadedMsg struct {
	ref       model.FolderRef
	messages  []model.Message
	bootstrap bool
	err       error
}

type messageOpenedMsg struct {
	id     int64
	detail *api.MessageDetail
	err    error
}

type starResultMsg struct {
	id     int64
	target bool
	err    error
}

type archiveResultMsg struct {
	id     int64
	target bool
	group  string
	err    error
}

type composeResultMsg struct {
	session     int
	saveAsDraft bool
	resp        *api.ComposeResponse
	err         error
}

type stagedMsg struct {
	session int
	staged  []compose.Staged
	err     error
}

type folderCreatedMsg struct {
	folder *model.Folder
	err    error
}

type contactsLoadedMsg struct {
	contacts []model.Contact
	err      error
}

type contactAddedMsg struct {
	contact *model.Contact
	err     error
}

type exportedMsg struct {
	path string
	err  error
}

type loggedOutMsg struct {
	err error
}

// stampedMsg carries a result together with the page generation that
// issued it.
type stampedMsg struct {
	generation int
	msg        tea.Msg
}

// ToastExpiredMsg hides the toast with the given ID if it is still shown.
type ToastExpiredMsg struct {
	ID int
}
