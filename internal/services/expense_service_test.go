package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
	"gastos/internal/remote"
	"gastos/internal/remote/memory"
	"gastos/internal/store"
)

var ana = core.User{Username: "ana", Email: "ana@example.com", RemoteID: "uid-ana"}

// brokenMirror fails every call, standing in for an unreachable cloud
// collection.
type brokenMirror struct{}

func (brokenMirror) Insert(context.Context, remote.Document) error {
	return errors.New("mirror unreachable")
}

func (brokenMirror) ListByOwner(context.Context, string) ([]remote.Document, error) {
	return nil, errors.New("mirror unreachable")
}

func (brokenMirror) ListAll(context.Context) ([]remote.Document, error) {
	return nil, errors.New("mirror unreachable")
}

func (brokenMirror) Delete(context.Context, string, int64) error {
	return errors.New("mirror unreachable")
}

func newTestService(t *testing.T, mirror remote.ExpenseCollection) (*ExpenseService, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "gastos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewExpenseService(st, mirror), st
}

func validExpense(desc string) core.Expense {
	return core.Expense{
		Description: desc,
		Amount:      core.Money{Cents: 500000},
		Category:    "Alimentación",
		Type:        core.Variable,
	}
}

func TestCreateAppendsAndStampsUniqueTS(t *testing.T) {
	s, st := newTestService(t, nil)
	ctx := context.Background()

	// Frozen clock: every create collides on the raw millisecond stamp
	fixed := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	first, err := s.Create(ctx, ana, validExpense("a"))
	require.NoError(t, err)
	second, err := s.Create(ctx, ana, validExpense("b"))
	require.NoError(t, err)
	third, err := s.Create(ctx, ana, validExpense("c"))
	require.NoError(t, err)

	assert.Equal(t, fixed.UnixMilli(), first.TS)
	assert.Equal(t, fixed.UnixMilli()+1, second.TS)
	assert.Equal(t, fixed.UnixMilli()+2, third.TS)

	ledger, err := st.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger["ana"], 3)
	assert.Equal(t, int64(1500000), ledger.TotalFor("ana").Cents)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	s, st := newTestService(t, nil)
	ctx := context.Background()

	bads := []core.Expense{
		{Description: "", Amount: core.Money{Cents: 1}, Category: "c"},
		{Description: "a", Amount: core.Money{Cents: -1}, Category: "c"},
		{Description: "a", Amount: core.Money{Cents: 1}, Category: ""},
	}
	for i, e := range bads {
		_, err := s.Create(ctx, ana, e)
		assert.ErrorIs(t, err, core.ErrValidation, "case %d", i)
	}

	// Nothing was appended
	ledger, err := st.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger["ana"])
}

func TestCreateDefaultsTypeToVariable(t *testing.T) {
	s, _ := newTestService(t, nil)

	e := validExpense("a")
	e.Type = ""
	created, err := s.Create(context.Background(), ana, e)
	require.NoError(t, err)
	assert.Equal(t, core.Variable, created.Type)
}

func TestCreatePushesToMirror(t *testing.T) {
	mirror := memory.New()
	s, _ := newTestService(t, mirror)
	ctx := context.Background()

	created, err := s.Create(ctx, ana, validExpense("a"))
	require.NoError(t, err)

	docs, err := mirror.ListByOwner(ctx, "uid-ana")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, created.TS, docs[0].TS)
	assert.Equal(t, "ana", docs[0].Username)
	assert.Equal(t, 5000.0, docs[0].Amount)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	s, st := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.Create(ctx, ana, validExpense("a"))
	require.NoError(t, err)
	e := validExpense("b")
	e.Amount = core.Money{Cents: 200000}
	_, err = s.Create(ctx, ana, e)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, ana, 1))

	ledger, err := st.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger["ana"], 1)
	assert.Equal(t, "a", ledger["ana"][0].Description)
	assert.Equal(t, int64(500000), ledger.TotalFor("ana").Cents)

	// Out-of-range deletes are rejected and never corrupt the ledger
	assert.ErrorIs(t, s.Delete(ctx, ana, 5), core.ErrExpenseNotFound)
	assert.ErrorIs(t, s.Delete(ctx, ana, -1), core.ErrExpenseNotFound)
	ledger, err = st.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Len(t, ledger["ana"], 1)
}

func TestDeleteRemovesMirroredCounterpart(t *testing.T) {
	mirror := memory.New()
	s, _ := newTestService(t, mirror)
	ctx := context.Background()

	_, err := s.Create(ctx, ana, validExpense("a"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, ana, 0))

	docs, err := mirror.ListByOwner(ctx, "uid-ana")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestTakeForEditRemovesImmediately(t *testing.T) {
	s, st := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.Create(ctx, ana, validExpense("a"))
	require.NoError(t, err)

	taken, err := s.TakeForEdit(ctx, "ana", 0)
	require.NoError(t, err)
	assert.Equal(t, "a", taken.Description)

	// Gone until resubmitted through Create
	ledger, err := st.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger["ana"])

	_, err = s.TakeForEdit(ctx, "ana", 0)
	assert.ErrorIs(t, err, core.ErrExpenseNotFound)
}

func TestSyncDownIsAdditiveAndIdempotent(t *testing.T) {
	mirror := memory.New()
	s, st := newTestService(t, mirror)
	ctx := context.Background()

	local, err := s.Create(ctx, ana, validExpense("local"))
	require.NoError(t, err)

	// Remote snapshot: one record already known locally, one new
	require.NoError(t, mirror.Insert(ctx, remote.Document{
		UID: "uid-ana", Username: "ana", Description: "local",
		Amount: 5000, Category: "Alimentación", TS: local.TS,
	}))
	require.NoError(t, mirror.Insert(ctx, remote.Document{
		UID: "uid-ana", Username: "ana", Description: "remoto",
		Amount: 2000, Category: "Transporte", Type: "Fixed",
		Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), TS: local.TS + 100,
	}))

	require.NoError(t, s.SyncDown(ctx, ana))

	ledger, err := st.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger["ana"], 2)
	assert.Equal(t, "remoto", ledger["ana"][1].Description)
	assert.Equal(t, int64(200000), ledger["ana"][1].Amount.Cents)

	// Second pass over the same snapshot changes nothing
	require.NoError(t, s.SyncDown(ctx, ana))
	ledger, err = st.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Len(t, ledger["ana"], 2)
}

func TestSyncDownWithoutMirrorIsNoop(t *testing.T) {
	s, _ := newTestService(t, nil)
	require.NoError(t, s.SyncDown(context.Background(), ana))

	// A user without a remote identity never hits the mirror either
	s2, _ := newTestService(t, memory.New())
	require.NoError(t, s2.SyncDown(context.Background(), core.User{Username: "local-only"}))
}

// Mirror failures never block, roll back or corrupt the local operation.
func TestMirrorFailuresAreIsolated(t *testing.T) {
	s, st := newTestService(t, brokenMirror{})
	ctx := context.Background()

	// Create still appends locally despite the failed push
	created, err := s.Create(ctx, ana, validExpense("a"))
	require.NoError(t, err)

	ledger, err := st.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger["ana"], 1)
	assert.Equal(t, created.TS, ledger["ana"][0].TS)

	// Sync-down keeps the local ledger as is and reports no error
	require.NoError(t, s.SyncDown(ctx, ana))
	ledger, err = st.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Len(t, ledger["ana"], 1)

	// Delete proceeds locally even when the remote counterpart delete fails
	require.NoError(t, s.Delete(ctx, ana, 0))
	ledger, err = st.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger["ana"])
}

func TestSyncDownDefaultsMissingFields(t *testing.T) {
	mirror := memory.New()
	s, st := newTestService(t, mirror)
	ctx := context.Background()

	fixed := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	// Record written by an older client: no type, no date
	require.NoError(t, mirror.Insert(ctx, remote.Document{
		UID: "uid-ana", Description: "viejo", Amount: 10, TS: 42,
	}))
	require.NoError(t, s.SyncDown(ctx, ana))

	ledger, err := st.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger["ana"], 1)
	got := ledger["ana"][0]
	assert.Equal(t, core.Variable, got.Type)
	assert.Equal(t, fixed, got.Date)
	assert.Equal(t, int64(42), got.TS)
}
