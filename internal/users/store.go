// Package users manages the registry of registered users and credential
// verification. The registry is one JSON document mapping username to
// record, rewritten atomically on every mutation.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/storage"
)

var (
	ErrDuplicateUser    = errors.New("username already taken")
	ErrUnknownUser      = errors.New("unknown user")
	ErrBadCredentials   = errors.New("bad credentials")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrPasswordTooShort = errors.New("password must be at least 4 characters")
)

// Session identifies an authenticated user for the lifetime of the process.
type Session struct {
	ID       string
	Username string
}

type record struct {
	PasswordDigest string     `json:"password_digest"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// Store holds the user registry, loaded lazily from disk on first use.
// Usernames are case-sensitive exact-match keys.
type Store struct {
	path   string
	hasher Hasher
	users  map[string]record
}

func NewStore(path string, hasher Hasher) *Store {
	return &Store{path: path, hasher: hasher}
}

// Register creates a new user, hashing the password and persisting the
// registry. Fails with ErrDuplicateUser for an existing username.
func (s *Store) Register(ctx context.Context, username, password string) error {
	if len(username) < 3 {
		return ErrUsernameTooShort
	}
	if len(password) < 4 {
		return ErrPasswordTooShort
	}

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	if _, exists := s.users[username]; exists {
		return ErrDuplicateUser
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.users[username] = record{PasswordDigest: digest, CreatedAt: time.Now().UTC()}
	if err := s.save(); err != nil {
		delete(s.users, username)
		return err
	}

	slog.InfoContext(ctx, "User registered", "username", username)
	return nil
}

// Login verifies credentials and returns a process-lifetime session.
// The user's last_login timestamp is updated on success.
func (s *Store) Login(ctx context.Context, username, password string) (Session, error) {
	if err := s.ensureLoaded(); err != nil {
		return Session{}, err
	}

	rec, exists := s.users[username]
	if !exists {
		return Session{}, ErrUnknownUser
	}
	if !s.hasher.Verify(password, rec.PasswordDigest) {
		return Session{}, ErrBadCredentials
	}

	now := time.Now().UTC()
	rec.LastLogin = &now
	s.users[username] = rec
	if err := s.save(); err != nil {
		slog.WarnContext(ctx, "Failed to persist last login", "username", username, "error", err)
	}

	slog.InfoContext(ctx, "User logged in", "username", username)
	return Session{ID: uuid.NewString(), Username: username}, nil
}

// Exists reports whether a username is registered.
func (s *Store) Exists(username string) (bool, error) {
	if err := s.ensureLoaded(); err != nil {
		return false, err
	}
	_, ok := s.users[username]
	return ok, nil
}

// Stats returns registration and last-login times for a user.
func (s *Store) Stats(username string) (created time.Time, lastLogin *time.Time, err error) {
	if err := s.ensureLoaded(); err != nil {
		return time.Time{}, nil, err
	}
	rec, ok := s.users[username]
	if !ok {
		return time.Time{}, nil, ErrUnknownUser
	}
	return rec.CreatedAt, rec.LastLogin, nil
}

func (s *Store) ensureLoaded() error {
	if s.users != nil {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.users = make(map[string]record)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read user registry: %w", err)
	}

	users := make(map[string]record)
	if err := json.Unmarshal(raw, &users); err != nil {
		return fmt.Errorf("%w %s: %v", storage.ErrCorruptDocument, s.path, err)
	}
	s.users = users
	return nil
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}
	raw, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user registry: %w", err)
	}
	if err := storage.WriteFileAtomic(s.path, raw); err != nil {
		return fmt.Errorf("write user registry: %w", err)
	}
	return nil
}
