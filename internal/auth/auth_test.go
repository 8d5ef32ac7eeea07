package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailclient/internal/api"
	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/route"
	"github.com/nhle/mailclient/internal/session"
)

type fakeAPI struct {
	calls    []string
	username string
	password string
	email    string
	resp     *api.AuthResponse
	err      error
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (*api.AuthResponse, error) {
	f.calls = append(f.calls, "login")
	f.username, f.password = username, password
	return f.resp, f.err
}

func (f *fakeAPI) Register(_ context.Context, username, email, password string) (*api.AuthResponse, error) {
	f.calls = append(f.calls, "register")
	f.username, f.email, f.password = username, email, password
	return f.resp, f.err
}

func newController(t *testing.T, fake *fakeAPI) (*Controller, *session.Store) {
	t.Helper()
	return newControllerWith(t, fake)
}

func newControllerWith(t *testing.T, client API) (*Controller, *session.Store) {
	t.Helper()
	store, err := session.NewStore(session.NewMemory())
	require.NoError(t, err)
	return NewController(client, store, 0, nil), store
}

// newErrorServer answers every request with 401 and body.
func newErrorServer(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		creds Credentials
		want  error
	}{
		{"login ok", ModeLogin, Credentials{Username: "alice", Password: "secret"}, nil},
		{"login missing password", ModeLogin, Credentials{Username: "alice"}, ErrMissingFields},
		{"login whitespace only", ModeLogin, Credentials{Username: "  ", Password: "x"}, ErrMissingFields},
		{"register ok", ModeRegister, Credentials{Username: "a", Email: "a@x", Password: "p", Confirm: "p"}, nil},
		{"register missing email", ModeRegister, Credentials{Username: "a", Password: "p", Confirm: "p"}, ErrMissingFields},
		{"register mismatch", ModeRegister, Credentials{Username: "a", Email: "a@x", Password: "p", Confirm: "q"}, ErrPasswordMismatch},
		{"register trims before compare", ModeRegister, Credentials{Username: "a", Email: "a@x", Password: "p ", Confirm: " p"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.mode, tt.creds)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSubmit_ValidationFailureSendsNothing(t *testing.T) {
	fake := &fakeAPI{}
	c, _ := newController(t, fake)

	cmd, err := c.Submit(ModeRegister, Credentials{Username: "a", Email: "a@x", Password: "p", Confirm: "q"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Nil(t, cmd)
	assert.Empty(t, fake.calls)
}

func TestLogin_StoresSessionAndRedirects(t *testing.T) {
	fake := &fakeAPI{resp: &api.AuthResponse{
		Token: "tok-alice",
		User:  &model.User{ID: 1, Username: "alice", Email: "alice@example.com"},
	}}
	c, store := newController(t, fake)

	cmd, err := c.Submit(ModeLogin, Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	require.NotNil(t, cmd)

	msg, ok := cmd().(ResultMsg)
	require.True(t, ok)
	assert.Equal(t, []string{"login"}, fake.calls)
	assert.Equal(t, "alice", fake.username)
	assert.Equal(t, "secret", fake.password)

	status, nav := c.Apply(msg)
	assert.False(t, status.Error)
	assert.NotEmpty(t, status.Text)
	assert.Equal(t, "tok-alice", store.Token())
	assert.Equal(t, "alice", store.User().Username)

	require.NotNil(t, nav)
	assert.Equal(t, route.NavigateMsg{To: route.PageMailbox}, nav())
}

func TestRegister_SendsTrimmedFields(t *testing.T) {
	fake := &fakeAPI{resp: &api.AuthResponse{Token: "t"}}
	c, store := newController(t, fake)

	cmd, err := c.Submit(ModeRegister, Credentials{Username: " bob ", Email: " bob@x ", Password: "pw", Confirm: "pw"})
	require.NoError(t, err)
	status, _ := c.Apply(cmd().(ResultMsg))

	assert.Equal(t, []string{"register"}, fake.calls)
	assert.Equal(t, "bob", fake.username)
	assert.Equal(t, "bob@x", fake.email)
	assert.False(t, status.Error)
	assert.True(t, store.Authenticated())
	assert.Nil(t, store.User())
}

func TestApply_FailureShowsServerMessageOrFallback(t *testing.T) {
	c, store := newController(t, &fakeAPI{})

	status, nav := c.Apply(ResultMsg{Mode: ModeLogin, Err: errors.New("dial tcp: refused")})
	assert.True(t, status.Error)
	assert.Equal(t, "Unable to sign in", status.Text)
	assert.Nil(t, nav)

	status, _ = c.Apply(ResultMsg{Mode: ModeRegister, Err: errors.New("boom")})
	assert.Equal(t, "Unable to create account", status.Text)

	assert.False(t, store.Authenticated())
}

func TestStartupRedirect(t *testing.T) {
	c, store := newController(t, &fakeAPI{})
	assert.Nil(t, c.StartupRedirect())

	require.NoError(t, store.Save(model.Session{Token: "tok"}))
	cmd := c.StartupRedirect()
	require.NotNil(t, cmd)
	assert.Equal(t, route.NavigateMsg{To: route.PageMailbox}, cmd())
}

func TestApply_ServerMessageVerbatim(t *testing.T) {
	srv := newErrorServer(t, `{"error":{"code":"invalid_credentials","message":"Invalid username or password"}}`)
	client := api.NewClient(srv, nil)
	c, _ := newControllerWith(t, client)

	cmd, err := c.Submit(ModeLogin, Credentials{Username: "alice", Password: "wrong"})
	require.NoError(t, err)
	status, nav := c.Apply(cmd().(ResultMsg))

	assert.True(t, status.Error)
	assert.Equal(t, "Invalid username or password", status.Text)
	assert.Nil(t, nav)
}
