// Package session persists the signed-in user's token and profile in a
// durable key/value backend.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nhle/mailclient/internal/model"
)

// Keys under which the session is stored. Both are written on sign-in and
// removed together on sign-out.
const (
	TokenKey = "mail.token"
	UserKey  = "mail.user"
)

// ErrNotFound is returned by a Backend when a key has no value.
var ErrNotFound = errors.New("session key not found")

// Backend is a durable string key/value store.
type Backend interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store caches the session in memory and writes it through to a Backend.
// It is safe for concurrent use; the API client reads the token from
// command goroutines.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	token   string
	user    *model.User
}

// NewStore creates a Store and hydrates it from backend. A missing or
// unreadable profile leaves the user nil; the token is kept.
func NewStore(backend Backend) (*Store, error) {
	s := &Store{backend: backend}

	token, err := backend.Get(TokenKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("reading %s: %w", TokenKey, err)
	}
	s.token = token

	raw, err := backend.Get(UserKey)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("reading %s: %w", UserKey, err)
	default:
		var u model.User
		if json.Unmarshal([]byte(raw), &u) == nil {
			s.user = &u
		}
	}

	return s, nil
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the stored profile, or nil.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether a token is present.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Save persists a new session.
func (s *Store) Save(sess model.Session) error {
	if sess.Token == "" {
		return errors.New("saving session: empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Set(TokenKey, sess.Token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	s.token = sess.Token

	if err := s.writeUser(sess.User); err != nil {
		// A token is never left behind without the profile saved with it.
		if derr := s.backend.Delete(TokenKey); derr != nil && !errors.Is(derr, ErrNotFound) {
			err = errors.Join(err, fmt.Errorf("rolling back token: %w", derr))
		}
		s.token = ""
		s.user = nil
		return err
	}
	return nil
}

// SetUser replaces the stored profile, keeping the token.
func (s *Store) SetUser(u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeUser(u)
}

func (s *Store) writeUser(u *model.User) error {
	if u == nil {
		if err := s.backend.Delete(UserKey); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("clearing user: %w", err)
		}
		s.user = nil
		return nil
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := s.backend.Set(UserKey, string(data)); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	cp := *u
	s.user = &cp
	return nil
}

// Clear removes the token and the profile. The in-memory copy is always
// cleared, even when the backend fails.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil

	var errs []error
	for _, key := range []string{TokenKey, UserKey} {
		if err := s.backend.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("deleting %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
