// Package storage persists one JSON document per user on the local
// filesystem. Every mutation rewrites the whole document atomically:
// the new version is written to a temp file in the same directory and
// renamed over the target, so a crash mid-write never exposes a
// truncated document. A single process is assumed to own a user's
// document at a time; cross-process access is out of scope.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gosimple/slug"

	"spendwise/internal/cache"
	"spendwise/internal/core"
)

var ErrCorruptDocument = errors.New("corrupt document")

const (
	documentFile = "data.json"
	cacheSize    = 64
	cacheTTL     = 5 * time.Minute
)

// Document is the persisted unit for one user: the full expense history in
// insertion order plus the budget set.
type Document struct {
	Expenses []core.Expense `json:"expenses"`
	Budgets  []core.Budget  `json:"budgets"`
}

// clone copies the document so callers can mutate their view without
// touching the cached one.
func (d Document) clone() Document {
	out := Document{}
	if d.Expenses != nil {
		out.Expenses = append([]core.Expense(nil), d.Expenses...)
	}
	if d.Budgets != nil {
		out.Budgets = append([]core.Budget(nil), d.Budgets...)
	}
	return out
}

// Store reads and writes per-user documents under a base directory.
type Store struct {
	baseDir string
	docs    *cache.LRU[Document]
}

func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "users"), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{
		baseDir: baseDir,
		docs:    cache.NewLRU[Document](cacheSize, cacheTTL),
	}, nil
}

// UserDir returns the directory holding a user's document. The name is
// derived from the slugified username plus a short digest so distinct
// case-sensitive usernames never collide after slugging.
func (s *Store) UserDir(username string) string {
	sum := sha256.Sum256([]byte(username))
	name := slug.Make(username)
	if name == "" {
		name = "user"
	}
	return filepath.Join(s.baseDir, "users", name+"-"+hex.EncodeToString(sum[:4]))
}

func (s *Store) documentPath(username string) string {
	return filepath.Join(s.UserDir(username), documentFile)
}

// Load returns the user's document. A missing file yields an empty
// document; an unparseable one is surfaced as ErrCorruptDocument rather
// than silently treated as empty.
func (s *Store) Load(ctx context.Context, username string) (Document, error) {
	if doc, ok := s.docs.Get(username); ok {
		return doc.clone(), nil
	}

	path := s.documentPath(username)
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Document{}, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w %s: %v", ErrCorruptDocument, path, err)
	}

	s.docs.Set(username, doc.clone())
	slog.DebugContext(ctx, "Document loaded", "username", username, "expenses", len(doc.Expenses), "budgets", len(doc.Budgets))
	return doc, nil
}

// Save atomically replaces the user's document on disk and refreshes the
// cache. On failure the previously committed document stays in place.
func (s *Store) Save(ctx context.Context, username string, doc Document) error {
	dir := s.UserDir(username)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create user directory: %w", err)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if err := WriteFileAtomic(s.documentPath(username), raw); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	s.docs.Set(username, doc.clone())
	slog.DebugContext(ctx, "Document saved", "username", username, "expenses", len(doc.Expenses), "budgets", len(doc.Budgets))
	return nil
}

// WriteFileAtomic writes data to a temp file in the target's directory,
// syncs it, and renames it over the target path. Readers either see the
// old content or the new one, never a partial write.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
