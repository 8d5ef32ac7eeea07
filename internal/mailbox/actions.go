package mailbox

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailclient/internal/api"
	"github.com/nhle/mailclient/internal/model"
)

// Action is a discrete user (or page) action on the mailbox.
type Action int

const (
	ActionBootstrap Action = iota
	ActionLoadSession
	ActionLoadFolders
	ActionLoadMessages
	ActionRefresh
	ActionSelectFolder
	ActionOpenMessage
	ActionToggleStar
	ActionToggleArchive
	ActionOpenCompose
	ActionCloseCompose
	ActionSend
	ActionSaveDraft
	ActionStageFiles
	ActionRemoveAttachment
	ActionCreateFolder
	ActionLoadContacts
	ActionAddContact
	ActionExport
	ActionLogout
)

var actionNames = map[Action]string{
	ActionBootstrap:        "bootstrap",
	ActionLoadSession:      "load-session",
	ActionLoadFolders:      "load-folders",
	ActionLoadMessages:     "load-messages",
	ActionRefresh:          "refresh",
	ActionSelectFolder:     "select-folder",
	ActionOpenMessage:      "open-message",
	ActionToggleStar:       "toggle-star",
	ActionToggleArchive:    "toggle-archive",
	ActionOpenCompose:      "open-compose",
	ActionCloseCompose:     "close-compose",
	ActionSend:             "send",
	ActionSaveDraft:        "save-draft",
	ActionStageFiles:       "stage-files",
	ActionRemoveAttachment: "remove-attachment",
	ActionCreateFolder:     "create-folder",
	ActionLoadContacts:     "load-contacts",
	ActionAddContact:       "add-contact",
	ActionExport:           "export",
	ActionLogout:           "logout",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Event is an Action plus its arguments. Only the fields the action
// reads need to be set.
type Event struct {
	Action Action

	Folder    model.FolderRef       // SelectFolder
	MessageID int64                 // OpenMessage
	Group     string                // ToggleArchive
	Fields    ComposeFields         // Send, SaveDraft
	Paths     []string              // StageFiles
	Index     int                   // RemoveAttachment
	Name      string                // CreateFolder
	Contact   api.AddContactRequest // AddContact
	Path      string                // Export
	Force     bool                  // LoadContacts
}

// ComposeFields are the text fields of the compose form.
type ComposeFields struct {
	Recipients string
	Subject    string
	Body       string
}

// handler runs an action against the state and returns the follow-up
// command, if any.
type handler func(c *Controller, s *State, ev Event) tea.Cmd

// handlers is the dispatch table from actions to their handlers.
var handlers = map[Action]handler{
	ActionBootstrap:        (*Controller).bootstrap,
	ActionLoadSession:      (*Controller).loadSession,
	ActionLoadFolders:      (*Controller).loadFolders,
	ActionLoadMessages:     (*Controller).loadMessages,
	ActionRefresh:          (*Controller).loadMessages,
	ActionSelectFolder:     (*Controller).selectFolder,
	ActionOpenMessage:      (*Controller).openMessage,
	ActionToggleStar:       (*Controller).toggleStar,
	ActionToggleArchive:    (*Controller).toggleArchive,
	ActionOpenCompose:      (*Controller).openCompose,
	ActionCloseCompose:     (*Controller).closeCompose,
	ActionSend:             (*Controller).send,
	ActionSaveDraft:        (*Controller).saveDraft,
	ActionStageFiles:       (*Controller).stageFiles,
	ActionRemoveAttachment: (*Controller).removeAttachment,
	ActionCreateFolder:     (*Controller).createFolder,
	ActionLoadContacts:     (*Controller).loadContacts,
	ActionAddContact:       (*Controller).addContact,
	ActionExport:           (*Controller).export,
	ActionLogout:           (*Controller).logout,
}
