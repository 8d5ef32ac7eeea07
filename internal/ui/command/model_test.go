package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want CommandMsg
	}{
		{"refresh", CommandMsg{Name: "refresh"}},
		{"  SYNC  ", CommandMsg{Name: "refresh"}},
		{"mkdir Travel plans", CommandMsg{Name: "mkdir", Arg: "Travel plans"}},
		{"export  ~/mail/note.eml ", CommandMsg{Name: "export", Arg: "~/mail/note.eml"}},
		{"q", CommandMsg{Name: "quit"}},
		{"folder Receipts", CommandMsg{Name: "folder", Arg: "Receipts"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.line))
		})
	}
}

func TestModel_EnterEmitsCommand(t *testing.T) {
	m := New(80, 10)
	m.input.SetValue("mkdir Receipts")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Name: "mkdir", Arg: "Receipts"}, cmd())
	assert.Empty(t, m.input.Value())
}

func TestModel_EmptyEnterCancels(t *testing.T) {
	m := New(80, 10)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CancelMsg{}, cmd())
}
