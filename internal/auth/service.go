package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vovakirdan/terminal-chat/internal/store"
	"github.com/vovakirdan/terminal-chat/internal/utils"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingCredentials is returned when username or password is empty.
	ErrMissingCredentials = errors.New("username and password required")
	// ErrSessionNotFound is returned when a token does not resolve to a session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidDisplayName is returned for empty or whitespace-only display names.
	ErrInvalidDisplayName = errors.New("display name cannot be empty")
)

// CredentialStore is the persistence the auth service needs.
type CredentialStore interface {
	store.ProfileStore
	store.SessionStore
}

// Service provides authentication and session operations.
type Service struct {
	store  CredentialStore
	hasher PasswordHasher

	// mu serializes read-modify-write sequences on the credential store.
	mu sync.Mutex
}

// NewService creates a new authentication service.
func NewService(st CredentialStore, hasher PasswordHasher) *Service {
	if hasher == nil {
		hasher = SHA256Hasher{}
	}
	return &Service{
		store:  st,
		hasher: hasher,
	}
}

// RegisterOrLogin authenticates username with password, creating the profile on first sight.
// The returned bool reports whether the profile was just created.
func (s *Service) RegisterOrLogin(ctx context.Context, username, password string) (*store.Profile, bool, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, false, ErrMissingCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.store.GetProfile(ctx, username)
	switch {
	case err == nil:
		if !s.hasher.Verify(profile.PasswordHash, password) {
			return nil, false, ErrInvalidCredentials
		}
		return profile, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, fmt.Errorf("get profile: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, err
	}
	profile = &store.Profile{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  username,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return nil, false, fmt.Errorf("create profile: %w", err)
	}
	return profile, true, nil
}

// CreateSession issues a new opaque token bound to username.
func (s *Service) CreateSession(ctx context.Context, username, displayName string) (string, error) {
	token, err := utils.NewToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	sess := &store.Session{
		Token:       token,
		Username:    username,
		DisplayName: displayName,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// ResolveSession looks up the session bound to token.
func (s *Service) ResolveSession(ctx context.Context, token string) (*store.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	sess, err := s.store.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// RenameDisplayName sets a new display name on the profile and session.
// The name is trimmed; the stored value is returned.
func (s *Service) RenameDisplayName(ctx context.Context, username, token, newName string) (string, error) {
	name := strings.TrimSpace(newName)
	if name == "" {
		return "", ErrInvalidDisplayName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.RenameDisplayName(ctx, username, token, name); err != nil {
		return "", fmt.Errorf("rename display name: %w", err)
	}
	return name, nil
}
