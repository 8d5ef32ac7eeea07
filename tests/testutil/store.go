package testutil

import (
	"testing"

	"github.com/nhle/mailclient/internal/model"
	"github.com/nhle/mailclient/internal/session"
	"github.com/nhle/mailclient/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewSession returns a session store backed by an in-memory SQLite
// database. A non-empty token signs the given user in.
func NewSession(t *testing.T, token string, user *model.User) *session.Store {
	t.Helper()

	sessions, err := session.NewStore(NewTestStore(t))
	if err != nil {
		t.Fatalf("creating session store: %v", err)
	}
	if token != "" {
		if err := sessions.Save(model.Session{Token: token, User: user}); err != nil {
			t.Fatalf("saving session: %v", err)
		}
	}
	return sessions
}
