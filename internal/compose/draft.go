// Package compose holds the in-memory compose draft and stages local
// files as attachments.
package compose

import (
	"errors"
	"strings"

	"github.com/nhle/mailclient/internal/api"
)

// ErrRecipientsRequired is returned when a draft has no recipients.
var ErrRecipientsRequired = errors.New("please enter at least one recipient")

// Draft is the content of the open compose surface. It is never
// persisted unless saved through the API.
type Draft struct {
	Recipients  string
	Subject     string
	Body        string
	Attachments []Staged
}

// Validate checks the draft before any request is sent. Addresses are
// not format-checked; the server is the authority.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Recipients) == "" {
		return ErrRecipientsRequired
	}
	return nil
}

// Request builds the POST /api/messages payload.
func (d Draft) Request(saveAsDraft bool) api.ComposeRequest {
	req := api.ComposeRequest{
		Recipients:  strings.TrimSpace(d.Recipients),
		Subject:     strings.TrimSpace(d.Subject),
		Body:        d.Body,
		SaveAsDraft: saveAsDraft,
	}
	for _, a := range d.Attachments {
		req.Attachments = append(req.Attachments, api.ComposeAttachment{
			Filename:     a.Filename,
			MimeType:     a.MimeType,
			RelativePath: a.RelativePath,
			Data:         a.Data,
		})
	}
	return req
}

// Empty reports whether nothing has been entered yet.
func (d Draft) Empty() bool {
	return strings.TrimSpace(d.Recipients) == "" &&
		strings.TrimSpace(d.Subject) == "" &&
		strings.TrimSpace(d.Body) == "" &&
		len(d.Attachments) == 0
}
