// Package auth drives the sign-in and registration page: field
// validation, the single API call per submit, session persistence and the
// delayed redirect into the mailbox.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/mailclient/internal/api"
	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/route"
	"github.com/nhle/mailclient/internal/session"
)

// Mode selects which of the two forms is active.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

var (
	ErrMissingFields    = errors.New("please fill in all required fields")
	ErrPasswordMismatch = errors.New("the two passwords do not match")
)

const (
	loginFallback    = "Unable to sign in"
	registerFallback = "Unable to create account"
)

// Credentials are the raw form values.
type Credentials struct {
	Username string
	Email    string
	Password string
	Confirm  string
}

// Trimmed returns a copy with surrounding whitespace removed from every
// field, passwords included.
func (c Credentials) Trimmed() Credentials {
	return Credentials{
		Username: strings.TrimSpace(c.Username),
		Email:    strings.TrimSpace(c.Email),
		Password: strings.TrimSpace(c.Password),
		Confirm:  strings.TrimSpace(c.Confirm),
	}
}

// Validate checks the form before any request is made.
func Validate(mode Mode, c Credentials) error {
	c = c.Trimmed()
	if mode == ModeLogin {
		if c.Username == "" || c.Password == "" {
			return ErrMissingFields
		}
		return nil
	}
	if c.Username == "" || c.Email == "" || c.Password == "" || c.Confirm == "" {
		return ErrMissingFields
	}
	if c.Password != c.Confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// API is the subset of the REST client used by the auth page.
type API interface {
	Login(ctx context.Context, username, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (*api.AuthResponse, error)
}

// ResultMsg carries the outcome of a submit back to Update.
type ResultMsg struct {
	Mode     Mode
	Response *api.AuthResponse
	Err      error
}

// Status is the inline message under the form.
type Status struct {
	Text  string
	Error bool
}

// Controller owns the auth page behaviour. It holds no per-page state;
// the view keeps mode and status.
type Controller struct {
	api      API
	sessions *session.Store
	logger   *zap.Logger
	delay    time.Duration
}

// NewController creates a controller. delay is how long the success
// message stays visible before the mailbox opens.
func NewController(client API, sessions *session.Store, delay time.Duration, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		api:      client,
		sessions: sessions,
		logger:   logger,
		delay:    delay,
	}
}

// StartupRedirect returns a navigation to the mailbox when a token is
// already stored, or nil when the form should be shown.
func (c *Controller) StartupRedirect() tea.Cmd {
	if c.sessions.Authenticated() {
		return route.Navigate(route.PageMailbox)
	}
	return nil
}

// Pending returns the status shown while a request is in flight.
func Pending(mode Mode) Status {
	if mode == ModeRegister {
		return Status{Text: "Creating account…"}
	}
	return Status{Text: "Signing in…"}
}

// Submit validates the form and returns the command performing the
// request. A validation error is returned without a command.
func (c *Controller) Submit(mode Mode, creds Credentials) (tea.Cmd, error) {
	if err := Validate(mode, creds); err != nil {
		return nil, err
	}
	creds = creds.Trimmed()
	client := c.api

	return func() tea.Msg {
		ctx := context.Background()
		var (
			resp *api.AuthResponse
			err  error
		)
		if mode == ModeRegister {
			resp, err = client.Register(ctx, creds.Username, creds.Email, creds.Password)
		} else {
			resp, err = client.Login(ctx, creds.Username, creds.Password)
		}
		return ResultMsg{Mode: mode, Response: resp, Err: err}
	}, nil
}

// Apply stores the session on success and schedules the redirect. On
// failure it returns the message to display and no command.
func (c *Controller) Apply(msg ResultMsg) (Status, tea.Cmd) {
	if msg.Err != nil {
		c.logger.Warn("authentication failed",
			zap.Stringer("mode", msg.Mode),
			zap.Error(msg.Err),
		)
		return Status{Text: failureText(msg.Mode, msg.Err), Error: true}, nil
	}

	err := c.sessions.Save(model.Session{
		Token: msg.Response.Token,
		User:  msg.Response.User,
	})
	if err != nil {
		c.logger.Error("saving session", zap.Error(err))
		return Status{Text: "Unable to save session: " + err.Error(), Error: true}, nil
	}

	text := "Signed in, redirecting…"
	if msg.Mode == ModeRegister {
		text = "Account created, opening your mailbox…"
	}
	return Status{Text: text}, route.NavigateAfter(route.PageMailbox, c.delay)
}

// failureText is the server message verbatim, or the generic fallback
// for the mode.
func failureText(mode Mode, err error) string {
	if text, ok := api.ServerMessage(err); ok {
		return text
	}
	if mode == ModeRegister {
		return registerFallback
	}
	return loginFallback
}
