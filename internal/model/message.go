package model

import "time"

// Message mirrors a message record owned by the server. The client keeps
// a read-through copy for the open folder and the selected message.
type Message struct {
	ID           int64      `json:"id"`
	OwnerID      int64      `json:"ownerId"`
	Folder       FolderKind `json:"folder"`
	CustomFolder string     `json:"customFolder"`
	ArchiveGroup string     `json:"archiveGroup"`
	Subject      string     `json:"subject"`
	Body         string     `json:"body"`
	Recipients   string     `json:"recipients"`
	IsStarred    bool       `json:"isStarred"`
	IsDraft      bool       `json:"isDraft"`
	IsArchived   bool       `json:"isArchived"`
	CreatedAt    int64      `json:"createdAt"`
	UpdatedAt    int64      `json:"updatedAt"`
}

// Timestamp returns the most recent of the update and creation times.
// A zero time means the server sent neither.
func (m Message) Timestamp() time.Time {
	ts := m.UpdatedAt
	if ts == 0 {
		ts = m.CreatedAt
	}
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// Attachment is the metadata of a stored attachment. Content is never
// fetched back; the server is authoritative once a message is sent.
type Attachment struct {
	ID           int64  `json:"id"`
	MessageID    int64  `json:"messageId"`
	Filename     string `json:"filename"`
	StoragePath  string `json:"storagePath"`
	RelativePath string `json:"relativePath"`
	MimeType     string `json:"mimeType"`
	SizeBytes    int64  `json:"sizeBytes"`
}
