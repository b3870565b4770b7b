// Package memory is an in-process stand-in for the cloud collaborator,
// used by tests and for offline development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"gastos/internal/core"
	"gastos/internal/remote"
)

type account struct {
	uid      string
	password string
}

type Backend struct {
	mu       sync.Mutex
	accounts map[string]account          // email → account
	profiles map[string]remote.Profile   // uid → profile
	docs     []remote.Document
	now      func() time.Time
}

func New() *Backend {
	return &Backend{
		accounts: map[string]account{},
		profiles: map[string]remote.Profile{},
		now:      time.Now,
	}
}

func (b *Backend) SignUp(_ context.Context, email, password string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.accounts[email]; ok {
		return "", core.ErrDuplicateUser
	}
	uid := uuid.NewString()
	b.accounts[email] = account{uid: uid, password: password}
	return uid, nil
}

func (b *Backend) SignIn(_ context.Context, email, password string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[email]
	if !ok || acc.password != password {
		return "", core.ErrInvalidCredentials
	}
	return acc.uid, nil
}

func (b *Backend) SignOut(context.Context) error { return nil }

func (b *Backend) DeleteIdentity(_ context.Context, uid string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for email, acc := range b.accounts {
		if acc.uid == uid {
			delete(b.accounts, email)
			return nil
		}
	}
	return nil
}

func (b *Backend) SetProfile(_ context.Context, p remote.Profile) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles[p.UID] = p
	return nil
}

func (b *Backend) GetProfile(_ context.Context, uid string) (remote.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.profiles[uid]
	if !ok {
		return remote.Profile{}, core.ErrUserNotFound
	}
	return p, nil
}

func (b *Backend) FindProfileByUsername(_ context.Context, username string) (remote.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.profiles {
		if p.Username == username {
			return p, nil
		}
	}
	return remote.Profile{}, core.ErrUserNotFound
}

func (b *Backend) ListProfiles(_ context.Context, limit int) ([]remote.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]remote.Profile, 0, len(b.profiles))
	for _, p := range b.profiles {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func (b *Backend) DeleteProfile(_ context.Context, uid string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.profiles, uid)
	return nil
}

func (b *Backend) Insert(_ context.Context, d remote.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = b.now()
	}
	b.docs = append(b.docs, d)
	return nil
}

func (b *Backend) ListByOwner(_ context.Context, uid string) ([]remote.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []remote.Document
	for _, d := range b.docs {
		if d.UID == uid {
			out = append(out, d)
		}
	}
	return out, nil
}

func (b *Backend) ListAll(context.Context) ([]remote.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]remote.Document(nil), b.docs...), nil
}

func (b *Backend) Delete(_ context.Context, uid string, ts int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, d := range b.docs {
		if d.UID == uid && d.TS == ts {
			b.docs = append(b.docs[:i], b.docs[i+1:]...)
			return nil
		}
	}
	return nil
}
