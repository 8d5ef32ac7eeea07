package mailbox

import (
	"github.com/nhle/mailclient/internal/compose"
	"github.com/nhle/mailclient/internal/model"
)

// Phase is the coarse lifecycle of the mailbox page.
type Phase int

const (
	PhaseUnauthenticated Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unauthenticated"
	}
}

// Toast is a transient notice drawn over the ready page.
type Toast struct {
	ID    int
	Text  string
	Error bool
}

// ComposeState is the compose surface. Status is the inline message
// under the form.
type ComposeState struct {
	Open bool
	// Session identifies one open/close cycle of the surface; results
	// carrying an older session are dropped.
	Session     int
	Draft       compose.Draft
	Status      string
	StatusError bool
	Sending     bool
	Staging     bool
}

// State is everything the mailbox page shows. It is owned by the root
// model and only mutated on the Update goroutine; views read it.
type State struct {
	Phase Phase
	User  *model.User

	Folders  []model.Folder
	Selected *model.FolderRef

	Messages []model.Message

	// SelectedID is the open message, 0 when none. Detail and
	// Attachments always belong to it.
	SelectedID  int64
	Detail      *model.Message
	Attachments []model.Attachment

	Compose ComposeState

	Contacts       []model.Contact
	ContactsLoaded bool

	Toast *Toast

	// bootstrapPending counts bootstrap fetches still in flight.
	bootstrapPending int
	// listDeferred marks the bootstrap list fetch as waiting for the
	// folder list to pick a folder.
	listDeferred bool
	composeSeq   int
	toastSeq     int
}

// HasSelection reports whether a message is open.
func (s *State) HasSelection() bool {
	return s.Detail != nil
}

// clearSelection drops the open message and its attachments.
func (s *State) clearSelection() {
	s.SelectedID = 0
	s.Detail = nil
	s.Attachments = nil
}

// messageIndex returns the position of id in the message list, or -1.
func (s *State) messageIndex(id int64) int {
	for i, m := range s.Messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}
