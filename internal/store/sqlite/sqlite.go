package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/terminal-chat/internal/store"
)

// DefaultHistoryCap is the number of messages kept per community.
const DefaultHistoryCap = 1000

//go:embed schema.sql
var schema string

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db         *sql.DB
	historyCap int
}

// Option customizes a SQLiteStore.
type Option func(*SQLiteStore)

// WithHistoryCap overrides the per-community message cap. Non-positive values are ignored.
func WithHistoryCap(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.historyCap = n
		}
	}
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string, opts ...Option) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, nil, opts...)
}

// NewWithSetup creates a new SQLite store, applies the schema and then runs setup.
// Useful for tests that need to seed or tamper with the database.
func NewWithSetup(dbPath string, setup func(*sql.DB) error, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	s := &SQLiteStore{db: db, historyCap: DefaultHistoryCap}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== ProfileStore implementation ====

// CreateProfile inserts a new profile.
func (s *SQLiteStore) CreateProfile(ctx context.Context, p *store.Profile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO profiles (username, password_hash, display_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, p.Username, p.PasswordHash, p.DisplayName, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrProfileExists
	}
	return nil
}

// GetProfile retrieves a profile by username.
func (s *SQLiteStore) GetProfile(ctx context.Context, username string) (*store.Profile, error) {
	query := `
		SELECT username, password_hash, display_name, created_at
		FROM profiles
		WHERE username = ?
	`
	var p store.Profile
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&p.Username,
		&p.PasswordHash,
		&p.DisplayName,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %q: %w", username, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query profile: %w", err)
	}

	return &p, nil
}

// ==== SessionStore implementation ====

// CreateSession persists a new session record.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *store.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO sessions (token, username, display_name, created_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, sess.Token, sess.Username, sess.DisplayName, sess.CreatedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by token.
func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*store.Session, error) {
	query := `
		SELECT token, username, display_name, created_at
		FROM sessions
		WHERE token = ?
	`
	var sess store.Session
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&sess.Token,
		&sess.Username,
		&sess.DisplayName,
		&sess.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	return &sess, nil
}

// RenameDisplayName updates the profile and the session display name atomically.
func (s *SQLiteStore) RenameDisplayName(ctx context.Context, username, token, displayName string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	result, err := tx.ExecContext(ctx, `UPDATE profiles SET display_name = ? WHERE username = ?`, displayName, username)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("profile %q: %w", username, store.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET display_name = ? WHERE token = ?`, displayName, token); err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ==== MessageLog implementation ====

// AppendMessage persists msg and trims the community log to the history cap.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *store.ChatMessage) error {
	if msg.StoredAt.IsZero() {
		msg.StoredAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	query := `
		INSERT INTO messages (community, username, display_name, content, timestamp, is_command, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query,
		msg.Community, msg.Username, msg.DisplayName, msg.Content, msg.Timestamp, msg.IsCommand, msg.StoredAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	trim := `
		DELETE FROM messages
		WHERE community = ? AND id NOT IN (
			SELECT id FROM messages WHERE community = ? ORDER BY id DESC LIMIT ?
		)
	`
	if _, err := tx.ExecContext(ctx, trim, msg.Community, msg.Community, s.historyCap); err != nil {
		return fmt.Errorf("trim messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	msg.ID = id
	return nil
}

// TailMessages returns the most recent n messages of community, oldest first.
func (s *SQLiteStore) TailMessages(ctx context.Context, community string, n int) ([]*store.ChatMessage, error) {
	if n <= 0 {
		return []*store.ChatMessage{}, nil
	}

	query := `
		SELECT id, community, username, display_name, content, timestamp, is_command, stored_at
		FROM messages
		WHERE community = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, community, n)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.ChatMessage, 0, n)
	for rows.Next() {
		var msg store.ChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.Community,
			&msg.Username,
			&msg.DisplayName,
			&msg.Content,
			&msg.Timestamp,
			&msg.IsCommand,
			&msg.StoredAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Reverse to oldest first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
