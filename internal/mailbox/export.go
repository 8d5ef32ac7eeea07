package mailbox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/mailclient/internal/model"
)

// WriteEML writes msg as an RFC 5322 message with a single plain-text
// body. Attachment content is not available on the client, so only their
// names are listed in a header.
func WriteEML(w io.Writer, from string, msg model.Message, attachments []model.Attachment) error {
	var h mail.Header
	h.SetSubject(msg.Subject)
	if ts := msg.Timestamp(); !ts.IsZero() {
		h.SetDate(ts)
	}
	if from != "" {
		h.SetAddressList("From", []*mail.Address{{Address: from}})
	}
	if msg.Recipients != "" {
		h.Set("To", msg.Recipients)
	}
	if err := h.GenerateMessageID(); err != nil {
		return fmt.Errorf("generating message id: %w", err)
	}
	h.Set("X-Mailclient-Folder", model.KindLabel(msg.Folder, msg.CustomFolder))
	if msg.ArchiveGroup != "" {
		h.Set("X-Mailclient-Archive-Group", msg.ArchiveGroup)
	}
	if len(attachments) > 0 {
		names := make([]string, 0, len(attachments))
		for _, a := range attachments {
			name := a.RelativePath
			if name == "" {
				name = a.Filename
			}
			names = append(names, name)
		}
		h.Set("X-Mailclient-Attachments", strings.Join(names, ", "))
	}
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	body, err := mail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(body, msg.Body); err != nil {
		body.Close()
		return fmt.Errorf("writing body: %w", err)
	}
	if err := body.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}
	return nil
}

// ExportFile writes msg to path, creating parent directories.
func ExportFile(path, from string, msg model.Message, attachments []model.Attachment) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteEML(f, from, msg, attachments); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
