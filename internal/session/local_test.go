package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
	"gastos/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "gastos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestLocalRegisterRejectsDuplicates(t *testing.T) {
	st := newTestStore(t)
	l := NewLocal(st)
	ctx := context.Background()

	require.NoError(t, l.Register(ctx, "ana", "ana@example.com", "secreto"))

	// Same username, different email
	err := l.Register(ctx, "ana", "otra@example.com", "secreto")
	assert.ErrorIs(t, err, core.ErrDuplicateUser)

	// Same email, different username
	err = l.Register(ctx, "ana2", "ana@example.com", "secreto")
	assert.ErrorIs(t, err, core.ErrDuplicateUser)

	users, err := l.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestLocalRegisterRequiresAllFields(t *testing.T) {
	l := NewLocal(newTestStore(t))
	ctx := context.Background()

	assert.ErrorIs(t, l.Register(ctx, "", "a@b.c", "x"), core.ErrValidation)
	assert.ErrorIs(t, l.Register(ctx, "ana", "", "x"), core.ErrValidation)
	assert.ErrorIs(t, l.Register(ctx, "ana", "a@b.c", ""), core.ErrValidation)
}

func TestLocalLoginByUsernameOrEmail(t *testing.T) {
	l := NewLocal(newTestStore(t))
	ctx := context.Background()
	require.NoError(t, l.Register(ctx, "ana", "ana@example.com", "secreto"))

	u, err := l.Login(ctx, "ana", "secreto")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)

	u, err = l.Login(ctx, "ana@example.com", "secreto")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)

	// Credentials are never stored in the clear
	assert.NotEqual(t, "secreto", u.PasswordHash)

	_, err = l.Login(ctx, "ana", "mal")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	_, err = l.Login(ctx, "nadie", "secreto")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestLocalDeleteCascadesToLedger(t *testing.T) {
	st := newTestStore(t)
	l := NewLocal(st)
	ctx := context.Background()

	require.NoError(t, l.Register(ctx, "ana", "ana@example.com", "x"))
	require.NoError(t, l.Register(ctx, "luis", "luis@example.com", "x"))

	ledger := core.Ledger{
		"ana":  {{Description: "a", Amount: core.Money{Cents: 100}, Category: "c", TS: 1}},
		"luis": {{Description: "b", Amount: core.Money{Cents: 200}, Category: "c", TS: 2}},
	}
	require.NoError(t, st.SaveLedger(ctx, ledger))

	require.NoError(t, l.DeleteAccount(ctx, core.User{Username: "luis"}, "ana"))

	users, err := l.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "luis", users[0].Username)

	got, err := st.LoadLedger(ctx)
	require.NoError(t, err)
	assert.NotContains(t, got, "ana")
	// Other owners' ledgers untouched
	require.Len(t, got["luis"], 1)
	assert.Equal(t, "b", got["luis"][0].Description)

	err = l.DeleteAccount(ctx, core.User{Username: "luis"}, "nadie")
	assert.ErrorIs(t, err, core.ErrUserNotFound)
}

func TestSessionTracksCurrentUser(t *testing.T) {
	l := NewLocal(newTestStore(t))
	sess := New(l)
	ctx := context.Background()

	_, ok := sess.Current()
	assert.False(t, ok)

	require.NoError(t, sess.Register(ctx, "ana", "ana@example.com", "secreto"))

	// Failed login leaves no session behind
	_, err := sess.Login(ctx, "ana", "mal")
	require.Error(t, err)
	_, ok = sess.Current()
	assert.False(t, ok)

	u, err := sess.Login(ctx, "ana", "secreto")
	require.NoError(t, err)
	cur, ok := sess.Current()
	require.True(t, ok)
	assert.Equal(t, u.Username, cur.Username)

	require.NoError(t, sess.Logout(ctx))
	_, ok = sess.Current()
	assert.False(t, ok)
}

func TestSessionDeleteOwnAccountClearsSession(t *testing.T) {
	l := NewLocal(newTestStore(t))
	sess := New(l)
	ctx := context.Background()

	require.NoError(t, sess.Register(ctx, "ana", "ana@example.com", "secreto"))
	_, err := sess.Login(ctx, "ana", "secreto")
	require.NoError(t, err)

	require.NoError(t, sess.DeleteAccount(ctx, "ana"))
	_, ok := sess.Current()
	assert.False(t, ok)
}
