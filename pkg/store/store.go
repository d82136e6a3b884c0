package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Persisted state keys. One JSON blob per key; values are whatever shape the
// caller last saved.
const (
	KeyConversations     = "conversations"
	KeyDocuments         = "documents"
	KeySelectedDocuments = "selectedDocuments"
	KeyResumeData        = "resumeData"
	KeyNotifications     = "notifications"
	KeyComparisonResult  = "comparisonResult"
	KeyCompareSelection  = "selectedDocsForComparison"
	KeySearchFilters     = "searchFilters"
	KeyThemeMode         = "themeMode"
)

// Store is a key-value persistence layer for client session state, backed by
// SQLite. It is a cache, not a source of truth: reads that fail for any reason
// behave as a cache miss, and failed writes are dropped silently.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the state database at the given path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create state dir: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init state schema: %v", err)
	}

	return &Store{db: db}, nil
}

// Load unmarshals the stored value for key into `into` and reports whether it
// did. On a missing key, unreadable database, or corrupt blob it leaves `into`
// untouched and returns false.
func (s *Store) Load(key string, into interface{}) bool {
	var blob []byte
	err := s.db.QueryRow("SELECT value FROM session_state WHERE key = ?", key).Scan(&blob)
	if err != nil {
		return false
	}
	return json.Unmarshal(blob, into) == nil
}

// Save marshals value and upserts it under key. Serialization or write
// failures are swallowed.
func (s *Store) Save(key string, value interface{}) {
	blob, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.db.Exec(`
		INSERT INTO session_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, blob, time.Now())
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
