package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nhle/mailclient/internal/model"
)

// Login authenticates with username and password. A 401 here means bad
// credentials and is returned as an *Error, not as ErrUnauthorized.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/login",
		body:   loginRequest{Username: username, Password: password},
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/register",
		body:   registerRequest{Username: username, Email: email, Password: password},
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/api/logout"}, nil)
}

// Session returns the profile of the signed-in user.
func (c *Client) Session(ctx context.Context) (*model.User, error) {
	var out sessionResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/session"}, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Mailboxes lists the folders of the user in server order.
func (c *Client) Mailboxes(ctx context.Context) ([]model.Folder, error) {
	var out mailboxesResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/mailboxes"}, &out); err != nil {
		return nil, err
	}
	return out.Folders, nil
}

// MessagesPath builds the list query for a folder: the kind, plus the
// custom folder name for custom folders.
func MessagesPath(ref model.FolderRef) string {
	params := url.Values{}
	params.Set("folder", string(ref.Kind))
	if ref.Kind == model.FolderCustom && ref.Custom != "" {
		params.Set("custom", ref.Custom)
	}
	return "/api/messages?" + params.Encode()
}

// Messages lists the messages of one folder.
func (c *Client) Messages(ctx context.Context, ref model.FolderRef) ([]model.Message, error) {
	var out messagesResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: MessagesPath(ref)}, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// Message returns the full message and its attachment metadata.
func (c *Client) Message(ctx context.Context, id int64) (*MessageDetail, error) {
	var out MessageDetail
	path := fmt.Sprintf("/api/messages/%d", id)
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Compose sends a message or saves it as a draft.
func (c *Client) Compose(ctx context.Context, req ComposeRequest) (*ComposeResponse, error) {
	var out ComposeResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/messages",
		body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetStarred sets the star flag of a message.
func (c *Client) SetStarred(ctx context.Context, id int64, starred bool) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/messages/%d/star", id),
		body:   starRequest{Starred: starred},
	}, nil)
}

// SetArchived sets the archive flag of a message. group labels the
// archived message and is ignored by the server when unarchiving.
func (c *Client) SetArchived(ctx context.Context, id int64, archived bool, group string) error {
	body := archiveRequest{Archived: archived}
	if archived {
		body.ArchiveGroup = group
	}
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/messages/%d/archive", id),
		body:   body,
	}, nil)
}

// CreateFolder creates a custom folder.
func (c *Client) CreateFolder(ctx context.Context, name string) (*model.Folder, error) {
	var out folderResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/folders",
		body:   createFolderRequest{Name: name, Kind: model.FolderCustom},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Folder, nil
}

// Contacts lists the address book.
func (c *Client) Contacts(ctx context.Context) ([]model.Contact, error) {
	var out contactsResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/contacts"}, &out); err != nil {
		return nil, err
	}
	return out.Contacts, nil
}

// AddContact adds another user to the address book.
func (c *Client) AddContact(ctx context.Context, req AddContactRequest) (*model.Contact, error) {
	var out contactResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/contacts",
		body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Contact, nil
}
