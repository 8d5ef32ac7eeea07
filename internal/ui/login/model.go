// Package login renders the sign-in and registration forms.
package login

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailclient/internal/auth"
	"github.com/nhle/mailclient/internal/keys"
	"github.com/nhle/mailclient/internal/theme"
)

// SubmitMsg is dispatched when the active form is completed.
type SubmitMsg struct {
	Mode        auth.Mode
	Credentials auth.Credentials
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	username string
	email    string
	password string
	confirm  string
}

// Model is the auth page: one of two mutually exclusive forms plus the
// inline status line.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	keys   *keys.KeyMap
	mode   auth.Mode
	status auth.Status
	busy   bool
	spin   spinner.Model
	width  int
	height int
}

// New creates the page in login mode.
func New(k *keys.KeyMap, width, height int) Model {
	m := Model{
		fb:     &formBindings{},
		keys:   k,
		spin:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(theme.MutedStyle)),
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

// Init focuses the first field of the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Mode returns the active form.
func (m Model) Mode() auth.Mode {
	return m.mode
}

// Status returns the inline message.
func (m Model) Status() auth.Status {
	return m.status
}

// SwitchMode activates the other form. The status line is cleared and
// the username field gets focus; typed values are kept.
func (m *Model) SwitchMode(mode auth.Mode) tea.Cmd {
	m.mode = mode
	m.status = auth.Status{}
	m.busy = false
	m.form = m.buildForm()
	return m.form.Init()
}

// SetStatus shows text under the form. A non-error status while a
// request is pending locks the form until the result arrives; the
// returned command animates the spinner meanwhile.
func (m *Model) SetStatus(s auth.Status, busy bool) tea.Cmd {
	wasBusy := m.busy
	m.status = s
	m.busy = busy
	if busy && !wasBusy {
		return m.spin.Tick
	}
	return nil
}

// Reopen rebuilds the form after a submit so the user can correct it.
func (m *Model) Reopen() tea.Cmd {
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the auth page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && m.keys != nil && !m.busy {
		if key.Matches(kmsg, m.keys.SwitchMode) {
			next := auth.ModeRegister
			if m.mode == auth.ModeRegister {
				next = auth.ModeLogin
			}
			cmd := m.SwitchMode(next)
			return m, cmd
		}
	}

	if m.busy {
		if _, ok := msg.(spinner.TickMsg); ok {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.submit()
	}
	if m.form.State == huh.StateAborted {
		cmd := m.Reopen()
		return m, cmd
	}

	return m, cmd
}

func (m Model) submit() tea.Cmd {
	msg := SubmitMsg{
		Mode: m.mode,
		Credentials: auth.Credentials{
			Username: m.fb.username,
			Email:    m.fb.email,
			Password: m.fb.password,
			Confirm:  m.fb.confirm,
		},
	}
	return func() tea.Msg { return msg }
}

// View renders the active form and its status line.
func (m Model) View() string {
	title := "Sign in"
	switchHint := "ctrl+r  create an account"
	if m.mode == auth.ModeRegister {
		title = "Create account"
		switchHint = "ctrl+r  back to sign in"
	}

	sections := []string{
		theme.TitleStyle.Render(title),
		m.form.View(),
	}
	if m.status.Text != "" {
		status := theme.StatusTextStyle(m.status.Error).Render(m.status.Text)
		if m.busy {
			status = m.spin.View() + " " + status
		}
		sections = append(sections, status)
	}
	sections = append(sections, "", theme.HelpStyle.Render(switchHint))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Username").
			Value(&m.fb.username),
	}
	if m.mode == auth.ModeRegister {
		fields = append(fields,
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&m.fb.email),
		)
	}
	fields = append(fields,
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.password),
	)
	if m.mode == auth.ModeRegister {
		fields = append(fields,
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.confirm),
		)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 30), 60)
}
