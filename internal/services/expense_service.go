// Package services orchestrates expense operations across the local store
// and the optional cloud mirror. Local persistence always happens first;
// mirror calls are best-effort with at most one attempt.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gastos/internal/core"
	"gastos/internal/remote"
	"gastos/internal/store"
)

// ExpenseService owns the ledger mutations. Every operation reloads the
// ledger before mutating and saves the whole copy back.
type ExpenseService struct {
	store  *store.Store
	mirror remote.ExpenseCollection // nil when running without a cloud backend
	now    func() time.Time
}

func NewExpenseService(st *store.Store, mirror remote.ExpenseCollection) *ExpenseService {
	return &ExpenseService{store: st, mirror: mirror, now: time.Now}
}

// Create validates, stamps and appends one expense to owner's ledger,
// then pushes it to the mirror. A failed push is logged and neither rolls
// back nor retries.
func (s *ExpenseService) Create(ctx context.Context, owner core.User, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	now := s.now()
	e.Type = e.Type.OrVariable()
	e.Date = now
	e.TS = now.UnixMilli()

	ledger, err := s.store.LoadLedger(ctx)
	if err != nil {
		return core.Expense{}, fmt.Errorf("load ledger: %w", err)
	}

	// TS is the merge key, so it must be unique within the owner's
	// ledger. Bump by a millisecond until it is.
	for ledger.HasTS(owner.Username, e.TS) {
		e.TS++
	}

	ledger[owner.Username] = append(ledger[owner.Username], e)
	if err := s.store.SaveLedger(ctx, ledger); err != nil {
		return core.Expense{}, fmt.Errorf("save ledger: %w", err)
	}

	s.pushToMirror(ctx, owner, e)
	return e, nil
}

// List returns a fresh copy of owner's expenses in insertion order.
func (s *ExpenseService) List(ctx context.Context, owner string) ([]core.Expense, error) {
	ledger, err := s.store.LoadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return ledger[owner], nil
}

// Delete removes the expense at index within owner's ledger. The remote
// counterpart is deleted first, best-effort; the local store stays
// authoritative either way. Callers gate this behind an explicit
// confirmation.
func (s *ExpenseService) Delete(ctx context.Context, owner core.User, index int) error {
	ledger, err := s.store.LoadLedger(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	entries := ledger[owner.Username]
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("%w: index %d", core.ErrExpenseNotFound, index)
	}
	target := entries[index]

	if s.mirror != nil && owner.RemoteID != "" {
		if err := s.mirror.Delete(ctx, owner.RemoteID, target.TS); err != nil {
			slog.WarnContext(ctx, "Failed to delete mirrored expense, proceeding locally",
				"owner", owner.Username, "ts", target.TS, "error", err)
		}
	}

	ledger[owner.Username] = append(entries[:index], entries[index+1:]...)
	if err := s.store.SaveLedger(ctx, ledger); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// TakeForEdit removes the expense at index from owner's ledger and
// returns it for form editing. The record only comes back if the caller
// resubmits it through Create; abandoning the edit discards it for good.
// That loss window is a deliberate carry-over from the original flow.
func (s *ExpenseService) TakeForEdit(ctx context.Context, owner string, index int) (core.Expense, error) {
	ledger, err := s.store.LoadLedger(ctx)
	if err != nil {
		return core.Expense{}, fmt.Errorf("load ledger: %w", err)
	}

	entries := ledger[owner]
	if index < 0 || index >= len(entries) {
		return core.Expense{}, fmt.Errorf("%w: index %d", core.ErrExpenseNotFound, index)
	}
	taken := entries[index]

	ledger[owner] = append(entries[:index], entries[index+1:]...)
	if err := s.store.SaveLedger(ctx, ledger); err != nil {
		return core.Expense{}, fmt.Errorf("save ledger: %w", err)
	}
	return taken, nil
}

// SyncDown merges owner's mirrored expenses into the local ledger,
// deduplicating by timestamp. Additive only: local entries are never
// removed or overwritten. Running it twice with the same remote snapshot
// changes nothing the second time.
func (s *ExpenseService) SyncDown(ctx context.Context, owner core.User) error {
	if s.mirror == nil || owner.RemoteID == "" {
		return nil
	}

	docs, err := s.mirror.ListByOwner(ctx, owner.RemoteID)
	if err != nil {
		slog.WarnContext(ctx, "Sync-down failed, keeping local ledger as is",
			"owner", owner.Username, "error", err)
		return nil
	}

	ledger, err := s.store.LoadLedger(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	added := 0
	for _, d := range docs {
		if ledger.HasTS(owner.Username, d.TS) {
			continue
		}
		ledger[owner.Username] = append(ledger[owner.Username], s.fromDocument(d))
		added++
	}
	if added == 0 {
		return nil
	}

	if err := s.store.SaveLedger(ctx, ledger); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	slog.InfoContext(ctx, "Merged mirrored expenses into local ledger",
		"owner", owner.Username, "added", added)
	return nil
}

func (s *ExpenseService) pushToMirror(ctx context.Context, owner core.User, e core.Expense) {
	if s.mirror == nil || owner.RemoteID == "" {
		return
	}
	doc := remote.Document{
		UID:         owner.RemoteID,
		Username:    owner.Username,
		Description: e.Description,
		Amount:      e.Amount.Colones(),
		Category:    e.Category,
		Type:        string(e.Type),
		Date:        e.Date,
		TS:          e.TS,
	}
	if err := s.mirror.Insert(ctx, doc); err != nil {
		slog.WarnContext(ctx, "Failed to mirror expense, keeping local copy only",
			"owner", owner.Username, "ts", e.TS, "error", err)
	}
}

// fromDocument converts a mirrored record, defaulting fields older
// mirror writes left unset.
func (s *ExpenseService) fromDocument(d remote.Document) core.Expense {
	e := core.Expense{
		Description: d.Description,
		Amount:      core.Money{Cents: core.CentsFromFloat(d.Amount)},
		Category:    d.Category,
		Type:        core.ExpenseType(d.Type).OrVariable(),
		Date:        d.Date,
		TS:          d.TS,
	}
	if e.Date.IsZero() {
		e.Date = s.now()
	}
	if e.TS == 0 {
		e.TS = s.now().UnixMilli()
	}
	return e
}
