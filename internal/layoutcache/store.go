// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layoutcache persists parsed table-of-contents indexes in a
// SQLite database so repeated runs against the same report skip the TOC
// scan. Entries are keyed by a content digest of the source file, so a
// replaced or edited report never serves a stale index.
package layoutcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/audit-engine/internal/layout"
)

// digestPrefix bounds how much of the file the digest reads. The head
// of a PDF pins its xref offsets, so edits move bytes there too.
const digestPrefix = 64 * 1024

// Store manages the layout cache database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS layouts (
			digest TEXT PRIMARY KEY,
			source_path TEXT,
			created_at TEXT,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_layouts_source_path ON layouts(source_path)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Load returns the cached index for the document at path, or ok=false
// on a cache miss.
func (s *Store) Load(path string) (*layout.Index, bool, error) {
	key, err := digest(path)
	if err != nil {
		return nil, false, err
	}

	var payload string
	err = s.db.QueryRow(`SELECT payload FROM layouts WHERE digest = ?`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying cache: %w", err)
	}

	var idx layout.Index
	if err := yaml.Unmarshal([]byte(payload), &idx); err != nil {
		return nil, false, fmt.Errorf("parsing cached layout: %w", err)
	}
	idx.Restore()
	return &idx, true, nil
}

// Save stores the index for the document at path, replacing any
// previous entry for the same content.
func (s *Store) Save(path string, idx *layout.Index) error {
	key, err := digest(path)
	if err != nil {
		return err
	}

	payload, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO layouts (digest, source_path, created_at, payload) VALUES (?, ?, ?, ?)`,
		key, path, time.Now().UTC().Format(time.RFC3339), string(payload),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached index for the document at path.
func (s *Store) Invalidate(path string) error {
	key, err := digest(path)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM layouts WHERE digest = ?`, key); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// digest keys a document by its size and the hash of its first
// digestPrefix bytes.
func digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("reading document info: %w", err)
	}

	h := sha256.New()
	if _, err := io.Copy(h, io.LimitReader(f, digestPrefix)); err != nil {
		return "", fmt.Errorf("hashing document: %w", err)
	}
	return fmt.Sprintf("%d-%s", info.Size(), hex.EncodeToString(h.Sum(nil))), nil
}
