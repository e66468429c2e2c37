// Package history provides SQLite-based persistence for finalized chat messages.
// The database is opened lazily and created on first use.
// If opening the DB or executing queries fails, the store falls back to in-memory storage.
package history

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/workspacehq/assistant/internal/logger"
)

var errMemoryOnly = errors.New("history: no database path configured")

// Record is one archived message.
type Record struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Failed         bool      `json:"failed"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store archives messages per conversation.
type Store struct {
	path string

	mu     sync.Mutex
	memory []Record // in-memory fallback

	dbOnce  sync.Once
	db      *sql.DB
	initErr error
}

// NewStore returns a store backed by the SQLite file at path. An empty path
// keeps everything in memory.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// initDB lazily opens the SQLite database and creates the messages table if it doesn't exist.
func (s *Store) initDB() {
	if s.path == "" {
		s.initErr = errMemoryOnly
		return
	}
	var err error
	s.db, err = sql.Open("sqlite", "file:"+s.path+"?_pragma=busy_timeout(10000)")
	if err != nil {
		s.initErr = err
		logger.L.Warn("sqlite open failed; using in-memory history", "error", err, "path", s.path)
		return
	}
	if _, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        conversation_id TEXT NOT NULL,
        message_id TEXT NOT NULL,
        role TEXT NOT NULL,
        content TEXT NOT NULL,
        failed INTEGER NOT NULL DEFAULT 0,
        created_at DATETIME NOT NULL
    );`); err != nil {
		s.initErr = err
		logger.L.Warn("sqlite table creation failed; using in-memory history", "error", err, "path", s.path)
		return
	}
	logger.L.Info("sqlite history DB initialized", "path", s.path)
}

func (s *Store) usable() bool {
	s.dbOnce.Do(s.initDB)
	return s.initErr == nil && s.db != nil
}

// Save persists a record to SQLite when available and always keeps an
// in-memory copy as fallback.
func (s *Store) Save(ctx context.Context, rec Record) error {
	if s.usable() {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO messages (conversation_id, message_id, role, content, failed, created_at) VALUES (?,?,?,?,?,?);`,
			rec.ConversationID, rec.MessageID, rec.Role, rec.Content, rec.Failed, rec.CreatedAt.UTC())
		if err != nil {
			logger.L.Error("failed to store message in sqlite; falling back to memory", "error", err)
		}
	}

	s.mu.Lock()
	rec.ID = int64(len(s.memory) + 1)
	s.memory = append(s.memory, rec)
	s.mu.Unlock()
	return nil
}

// List returns all records of a conversation in chronological order.
func (s *Store) List(ctx context.Context, conversationID string) ([]Record, error) {
	if s.usable() {
		out, err := s.listSQL(ctx, conversationID)
		if err == nil {
			return out, nil
		}
		logger.L.Error("failed to list messages from sqlite; reading memory", "error", err)
	}

	var out []Record
	s.mu.Lock()
	for _, r := range s.memory {
		if r.ConversationID == conversationID {
			out = append(out, r)
		}
	}
	s.mu.Unlock()
	return out, nil
}

func (s *Store) listSQL(ctx context.Context, conversationID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, message_id, role, content, failed, created_at FROM messages WHERE conversation_id = ? ORDER BY id ASC;`,
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.ConversationID, &r.MessageID, &r.Role, &r.Content, &r.Failed, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle, if one was opened.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
