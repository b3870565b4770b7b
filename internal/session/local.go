package session

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"gastos/internal/core"
	"gastos/internal/store"
)

// Local authenticates against the persisted user directory. Credentials
// are stored bcrypt-hashed.
type Local struct {
	store *store.Store
}

func NewLocal(st *store.Store) *Local {
	return &Local{store: st}
}

func (l *Local) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return core.ErrValidation
	}

	users, err := l.store.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		if u.Username == username || u.Email == email {
			return core.ErrDuplicateUser
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	users = append(users, core.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err := l.store.SaveUsers(ctx, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

func (l *Local) Login(ctx context.Context, identifier, password string) (core.User, error) {
	users, err := l.store.LoadUsers(ctx)
	if err != nil {
		return core.User{}, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		if u.Username != identifier && u.Email != identifier {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil {
			return u, nil
		}
		// Identifier matched but the credential did not. Keep scanning:
		// a username of one user may equal the email of another.
	}
	return core.User{}, core.ErrInvalidCredentials
}

func (l *Local) Logout(context.Context) error { return nil }

// DeleteAccount removes target from the directory and drops their entire
// ledger entry. Other owners' ledgers are untouched.
func (l *Local) DeleteAccount(ctx context.Context, _ core.User, target string) error {
	users, err := l.store.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	kept := users[:0]
	for _, u := range users {
		if u.Username != target {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(users) {
		return core.ErrUserNotFound
	}
	if err := l.store.SaveUsers(ctx, kept); err != nil {
		return fmt.Errorf("save users: %w", err)
	}

	ledger, err := l.store.LoadLedger(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	delete(ledger, target)
	if err := l.store.SaveLedger(ctx, ledger); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

func (l *Local) Users(ctx context.Context) ([]core.User, error) {
	return l.store.LoadUsers(ctx)
}
