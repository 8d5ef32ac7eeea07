// Package route names the pages of the application and the message used
// to move between them.
package route

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Page identifies a top-level screen.
type Page int

const (
	PageLogin Page = iota
	PageMailbox
)

func (p Page) String() string {
	switch p {
	case PageLogin:
		return "login"
	case PageMailbox:
		return "mailbox"
	default:
		return "unknown"
	}
}

// NavigateMsg asks the root model to replace the current page. The
// target page starts from a fresh state.
type NavigateMsg struct {
	To Page
}

// Navigate returns a command that navigates to page immediately.
func Navigate(page Page) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{To: page}
	}
}

// NavigateAfter navigates to page once delay has elapsed.
func NavigateAfter(page Page, delay time.Duration) tea.Cmd {
	if delay <= 0 {
		return Navigate(page)
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return NavigateMsg{To: page}
	})
}
