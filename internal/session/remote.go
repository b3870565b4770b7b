package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gastos/internal/core"
	"gastos/internal/remote"
	"gastos/internal/store"
)

// Remote authenticates against the cloud identity service. The local
// store is only used as a fallback for the user listing.
type Remote struct {
	id    remote.Identity
	store *store.Store
	now   func() time.Time
}

func NewRemote(id remote.Identity, st *store.Store) *Remote {
	return &Remote{id: id, store: st, now: time.Now}
}

// Register creates the remote identity, then the profile record keyed by
// the generated identity id.
func (r *Remote) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return core.ErrValidation
	}

	uid, err := r.id.SignUp(ctx, email, password)
	if err != nil {
		return wrapBackend(err)
	}

	profile := remote.Profile{
		UID:       uid,
		Username:  username,
		Email:     email,
		CreatedAt: r.now().UTC(),
	}
	if err := r.id.SetProfile(ctx, profile); err != nil {
		return wrapBackend(err)
	}
	return nil
}

// Login accepts an email-shaped identifier for direct sign-in, or a bare
// username that is first resolved to its profile's email.
func (r *Remote) Login(ctx context.Context, identifier, password string) (core.User, error) {
	email := identifier
	username := ""

	if !strings.Contains(identifier, "@") {
		profile, err := r.id.FindProfileByUsername(ctx, identifier)
		if errors.Is(err, core.ErrUserNotFound) {
			return core.User{}, core.ErrUserNotFound
		}
		if err != nil {
			return core.User{}, wrapBackend(err)
		}
		email = profile.Email
		username = profile.Username
	}

	uid, err := r.id.SignIn(ctx, email, password)
	if err != nil {
		return core.User{}, wrapBackend(err)
	}

	if username == "" {
		// Direct email sign-in: recover the username from the profile,
		// falling back to the identifier when no profile exists.
		username = identifier
		if profile, err := r.id.GetProfile(ctx, uid); err == nil {
			username = profile.Username
		}
	}

	return core.User{Username: username, Email: email, RemoteID: uid}, nil
}

func (r *Remote) Logout(ctx context.Context) error {
	if err := r.id.SignOut(ctx); err != nil {
		return wrapBackend(err)
	}
	return nil
}

// DeleteAccount deletes the profile record then the identity itself.
// Permitted solely for the requester's own identity id.
func (r *Remote) DeleteAccount(ctx context.Context, current core.User, target string) error {
	if current.RemoteID == "" || current.RemoteID != target {
		return core.ErrForbidden
	}
	if err := r.id.DeleteProfile(ctx, target); err != nil {
		return wrapBackend(err)
	}
	if err := r.id.DeleteIdentity(ctx, target); err != nil {
		return wrapBackend(err)
	}
	return nil
}

// Users lists remote profiles, capped at 50 like the original client.
// A failed remote read falls back to the local directory.
func (r *Remote) Users(ctx context.Context) ([]core.User, error) {
	profiles, err := r.id.ListProfiles(ctx, 50)
	if err != nil {
		slog.WarnContext(ctx, "Remote user listing failed, falling back to local directory",
			"error", err)
		return r.store.LoadUsers(ctx)
	}
	users := make([]core.User, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, core.User{
			Username: p.Username,
			Email:    p.Email,
			RemoteID: p.UID,
		})
	}
	return users, nil
}

// wrapBackend surfaces remote identity faults under the ErrAuthBackend
// sentinel while leaving already-classified errors alone.
func wrapBackend(err error) error {
	if errors.Is(err, core.ErrAuthBackend) ||
		errors.Is(err, core.ErrDuplicateUser) ||
		errors.Is(err, core.ErrUserNotFound) ||
		errors.Is(err, core.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrAuthBackend, err)
}
