package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFolder_DisplayName(t *testing.T) {
	tests := []struct {
		name   string
		folder Folder
		want   string
	}{
		{"built-in uses label", Folder{Kind: FolderDrafts, Name: "drafts"}, "Drafts"},
		{"custom uses own name", Folder{Kind: FolderCustom, Name: "Receipts"}, "Receipts"},
		{"custom without name", Folder{Kind: FolderCustom}, "Custom folder"},
		{"unknown kind falls back to name", Folder{Kind: "spam", Name: "Spam"}, "Spam"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.folder.DisplayName())
		})
	}
}

func TestFolderRef_Matches(t *testing.T) {
	receipts := Folder{Kind: FolderCustom, Name: "Receipts"}
	travel := Folder{Kind: FolderCustom, Name: "Travel"}
	inbox := Folder{Kind: FolderInbox, Name: "inbox"}

	ref := receipts.Ref()
	assert.Equal(t, "Receipts", ref.Custom)
	assert.True(t, ref.Matches(receipts))
	assert.False(t, ref.Matches(travel))
	assert.False(t, ref.Matches(inbox))

	inboxRef := inbox.Ref()
	assert.Empty(t, inboxRef.Custom)
	assert.True(t, inboxRef.Matches(Folder{Kind: FolderInbox, Name: "renamed"}))
}

func TestMessage_Timestamp(t *testing.T) {
	assert.True(t, Message{}.Timestamp().IsZero())
	assert.Equal(t, time.Unix(100, 0), Message{CreatedAt: 100}.Timestamp())
	assert.Equal(t, time.Unix(200, 0), Message{CreatedAt: 100, UpdatedAt: 200}.Timestamp())
}
