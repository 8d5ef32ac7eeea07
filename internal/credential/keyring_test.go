package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/session"
)

func newTestKeyring() *Keyring {
	return New(keyring.NewArrayKeyring(nil))
}

func TestKeyring_NotFoundMapsToSessionError(t *testing.T) {
	k := newTestKeyring()

	_, err := k.Get(session.TokenKey)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// Some backends treat removing a missing key as a no-op.
	if err := k.Delete(session.TokenKey); err != nil {
		assert.ErrorIs(t, err, session.ErrNotFound)
	}
}

func TestKeyring_RoundTrip(t *testing.T) {
	k := newTestKeyring()

	require.NoError(t, k.Set(session.TokenKey, "tok"))
	got, err := k.Get(session.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	require.NoError(t, k.Delete(session.TokenKey))
	_, err = k.Get(session.TokenKey)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestKeyring_BacksSessionStore(t *testing.T) {
	k := newTestKeyring()
	s, err := session.NewStore(k)
	require.NoError(t, err)

	require.NoError(t, s.Save(model.Session{Token: "tok", User: &model.User{Username: "alice"}}))
	require.NoError(t, s.Clear())

	reloaded, err := session.NewStore(k)
	require.NoError(t, err)
	assert.False(t, reloaded.Authenticated())
}
