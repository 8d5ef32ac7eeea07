package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailclient/internal/theme"
)

// FolderPaneWidth is the fixed width of the folder column.
const FolderPaneWidth = 22

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 0)
}

// FolderPane returns the inner size of the folder column.
func (l Layout) FolderPane() (width, height int) {
	return FolderPaneWidth - 2, max(l.ContentHeight()-2, 0)
}

// MainPane returns the inner size of the message list / detail column.
func (l Layout) MainPane() (width, height int) {
	return max(l.Width-FolderPaneWidth-2, 0), max(l.ContentHeight()-2, 0)
}

// RenderHeader renders the top header bar with a title on the left and
// context (account, folder) on the right.
func (l Layout) RenderHeader(title string, context string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	contextRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(context)

	gap := max(l.Width-
		lipgloss.Width(titleRendered)-
		lipgloss.Width(contextRendered), 0)

	filler := theme.HeaderStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.HeaderStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		contextRendered,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	return l.fillBar(theme.StatusBarStyle.Render(hints))
}

// RenderToast renders a notice in place of the status bar hints.
func (l Layout) RenderToast(text string, isError bool) string {
	return l.fillBar(theme.ToastStyle(isError).Render(text))
}

func (l Layout) fillBar(rendered string) string {
	gap := max(l.Width-lipgloss.Width(rendered), 0)

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderPanes joins the folder column and the main column side by side.
// focusMain selects which of the two gets the highlighted border.
func (l Layout) RenderPanes(folders, main string, focusMain bool) string {
	fw, h := l.FolderPane()
	mw, _ := l.MainPane()

	left, right := theme.FocusedPaneStyle, theme.PaneStyle
	if focusMain {
		left, right = theme.PaneStyle, theme.FocusedPaneStyle
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		left.Width(fw).Height(h).Render(folders),
		right.Width(mw).Height(h).Render(main),
	)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
