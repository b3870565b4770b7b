// Package session tracks the single active user and the identity strategy
// behind it. Exactly one strategy is chosen at process start: the local
// credential directory, or the remote identity service.
package session

import (
	"context"
	"sync"

	"gastos/internal/core"
)

// Authenticator is the identity strategy. Implementations: Local
// (store-backed directory, bcrypt credentials) and Remote (cloud identity
// service plus profile records).
type Authenticator interface {
	Register(ctx context.Context, username, email, password string) error
	// Login resolves identifier (username or email) plus password to the
	// authenticated user.
	Login(ctx context.Context, identifier, password string) (core.User, error)
	Logout(ctx context.Context) error
	// DeleteAccount removes target (a username locally, an identity id
	// remotely) on behalf of current. Local deletion cascades to the
	// user's ledger entry.
	DeleteAccount(ctx context.Context, current core.User, target string) error
	// Users lists the visible user directory.
	Users(ctx context.Context) ([]core.User, error)
}

// Session holds the process-wide current user. The mutex only guards the
// current-user pointer; operations themselves run one at a time.
type Session struct {
	auth Authenticator

	mu      sync.Mutex
	current *core.User
}

func New(auth Authenticator) *Session {
	return &Session{auth: auth}
}

func (s *Session) Register(ctx context.Context, username, email, password string) error {
	return s.auth.Register(ctx, username, email, password)
}

func (s *Session) Login(ctx context.Context, identifier, password string) (core.User, error) {
	user, err := s.auth.Login(ctx, identifier, password)
	if err != nil {
		return core.User{}, err
	}
	s.mu.Lock()
	s.current = &user
	s.mu.Unlock()
	return user, nil
}

func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return s.auth.Logout(ctx)
}

// Current returns the active user, if any.
func (s *Session) Current() (core.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return core.User{}, false
	}
	return *s.current, true
}

// DeleteAccount removes target and clears the session when the active
// user deleted themselves.
func (s *Session) DeleteAccount(ctx context.Context, target string) error {
	current, ok := s.Current()
	if !ok {
		return core.ErrUserNotFound
	}
	if err := s.auth.DeleteAccount(ctx, current, target); err != nil {
		return err
	}
	if target == current.Username || target == current.RemoteID {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
	}
	return nil
}

func (s *Session) Users(ctx context.Context) ([]core.User, error) {
	return s.auth.Users(ctx)
}
