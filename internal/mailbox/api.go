package mailbox

import (
	"context"

	"github.com/nhle/mailclient/internal/api"
	"github.com/nhle/mailclient/internal/model"
)

// API is the part of the REST client used by the mailbox page.
// *api.Client implements it.
type API interface {
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*model.User, error)
	Mailboxes(ctx context.Context) ([]model.Folder, error)
	Messages(ctx context.Context, ref model.FolderRef) ([]model.Message, error)
	Message(ctx context.Context, id int64) (*api.MessageDetail, error)
	Compose(ctx context.Context, req api.ComposeRequest) (*api.ComposeResponse, error)
	SetStarred(ctx context.Context, id int64, starred bool) error
	SetArchived(ctx context.Context, id int64, archived bool, group string) error
	CreateFolder(ctx context.Context, name string) (*model.Folder, error)
	Contacts(ctx context.Context) ([]model.Contact, error)
	AddContact(ctx context.Context, req api.AddContactRequest) (*model.Contact, error)
}

var _ API = (*api.Client)(nil)
