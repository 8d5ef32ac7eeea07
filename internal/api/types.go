package api

import (
	"errors"
	"fmt"

	"github.com/nhle/mailclient/internal/model"
)

// AuthResponse is returned by POST /api/login and POST /api/register.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (r *AuthResponse) validate() error {
	if r.Token == "" {
		return errors.New("missing token")
	}
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User *model.User `json:"user"`
}

func (r *sessionResponse) validate() error {
	if r.User == nil {
		return errors.New("missing user")
	}
	return nil
}

type mailboxesResponse struct {
	Folders []model.Folder `json:"folders"`
}

func (r *mailboxesResponse) validate() error {
	for i, f := range r.Folders {
		if !f.Kind.Valid() {
			return fmt.Errorf("folder %d: unknown kind %q", i, f.Kind)
		}
	}
	return nil
}

type messagesResponse struct {
	Messages []model.Message `json:"messages"`
}

// MessageDetail is the body of GET /api/messages/{id}.
type MessageDetail struct {
	Message     *model.Message     `json:"message"`
	Attachments []model.Attachment `json:"attachments"`
}

func (r *MessageDetail) validate() error {
	if r.Message == nil {
		return errors.New("missing message")
	}
	return nil
}

// ComposeAttachment is a staged file inlined in a compose request.
// Data is the base64-encoded file content.
type ComposeAttachment struct {
	Filename     string `json:"filename"`
	MimeType     string `json:"mimeType"`
	RelativePath string `json:"relativePath"`
	Data         string `json:"data"`
}

// ComposeRequest is the body of POST /api/messages. The same endpoint
// sends a message or saves it as a draft.
type ComposeRequest struct {
	Recipients  string              `json:"recipients"`
	Subject     string              `json:"subject"`
	Body        string              `json:"body"`
	SaveAsDraft bool                `json:"saveAsDraft"`
	Attachments []ComposeAttachment `json:"attachments,omitempty"`
}

// ComposeResponse is the body returned by POST /api/messages. DraftID is
// only set when the message was saved as a draft.
type ComposeResponse struct {
	Success bool  `json:"success"`
	DraftID int64 `json:"draftId,omitempty"`
}

type starRequest struct {
	Starred bool `json:"starred"`
}

type archiveRequest struct {
	Archived     bool   `json:"archived"`
	ArchiveGroup string `json:"archiveGroup,omitempty"`
}

type createFolderRequest struct {
	Name string           `json:"name"`
	Kind model.FolderKind `json:"kind"`
}

type folderResponse struct {
	Folder *model.Folder `json:"folder"`
}

func (r *folderResponse) validate() error {
	if r.Folder == nil {
		return errors.New("missing folder")
	}
	return nil
}

type contactsResponse struct {
	Contacts []model.Contact `json:"contacts"`
}

// AddContactRequest is the body of POST /api/contacts. Alias and
// GroupName are optional; the server defaults the alias to the username.
type AddContactRequest struct {
	Username  string `json:"username"`
	Alias     string `json:"alias,omitempty"`
	GroupName string `json:"groupName,omitempty"`
}

type contactResponse struct {
	Contact *model.Contact `json:"contact"`
}

func (r *contactResponse) validate() error {
	if r.Contact == nil {
		return errors.New("missing contact")
	}
	return nil
}
