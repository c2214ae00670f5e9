package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrProfileExists is returned when creating a profile whose username is taken.
	ErrProfileExists = errors.New("profile already exists")
)

// Profile represents a persisted user profile.
type Profile struct {
	Username     string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

// Session binds an opaque token to a user identity.
type Session struct {
	Token       string
	Username    string
	DisplayName string
	CreatedAt   time.Time
}

// ChatMessage is a persisted entry of a community's message log.
type ChatMessage struct {
	ID          int64
	Username    string
	DisplayName string
	Community   string
	Content     string
	Timestamp   string // wall clock "HH:MM" as shown to clients
	IsCommand   bool
	StoredAt    time.Time
}

// ProfileStore handles profile persistence.
type ProfileStore interface {
	// CreateProfile inserts a new profile. Returns ErrProfileExists if the username is taken.
	CreateProfile(ctx context.Context, p *Profile) error

	// GetProfile retrieves a profile by username.
	GetProfile(ctx context.Context, username string) (*Profile, error)
}

// SessionStore handles session persistence.
type SessionStore interface {
	// CreateSession persists a new session record.
	CreateSession(ctx context.Context, s *Session) error

	// GetSession retrieves a session by token.
	GetSession(ctx context.Context, token string) (*Session, error)

	// RenameDisplayName updates the profile of username and the session of token
	// in a single transaction.
	RenameDisplayName(ctx context.Context, username, token, displayName string) error
}

// MessageLog handles the capped per-community message history.
type MessageLog interface {
	// AppendMessage adds msg to its community log and drops the oldest entries
	// beyond the configured cap. msg.ID is set on success.
	AppendMessage(ctx context.Context, msg *ChatMessage) error

	// TailMessages returns the most recent n messages of community, oldest first.
	TailMessages(ctx context.Context, community string, n int) ([]*ChatMessage, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	ProfileStore
	SessionStore
	MessageLog

	// Close closes the underlying database connection.
	Close() error
}
