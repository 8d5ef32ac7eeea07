package folderlist

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailclient/internal/keys"
	"github.com/nhle/mailclient/internal/model"
)

var folders = []model.Folder{
	{ID: 1, Kind: model.FolderInbox, Name: "inbox"},
	{ID: 2, Kind: model.FolderDrafts, Name: "drafts"},
	{ID: 3, Kind: model.FolderCustom, Name: "Receipts"},
}

func TestSetFolders_CursorFollowsActiveFolder(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 20, 10)
	ref := folders[2].Ref()
	m.SetFolders(folders, &ref)

	assert.Equal(t, 2, m.cursor)
	view := m.View()
	assert.Contains(t, view, "Inbox")
	assert.Contains(t, view, "Drafts")
	assert.Contains(t, view, "Receipts")
}

func TestUpdate_EnterSelectsFolderUnderCursor(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 20, 10)
	ref := folders[0].Ref()
	m.SetFolders(folders, &ref)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SelectMsg{Folder: folders[1].Ref()}, cmd())
}

func TestFind(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 20, 10)
	m.SetFolders(folders, nil)

	f, ok := m.Find("receipts")
	require.True(t, ok)
	assert.Equal(t, int64(3), f.ID)

	_, ok = m.Find("Spam")
	assert.False(t, ok)
}

func TestView_Empty(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 20, 10)
	assert.Contains(t, m.View(), "No folders")
}
