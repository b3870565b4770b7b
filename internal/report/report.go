// Package report computes the aggregated views: sums by category, the
// trailing 12-month series, the 6-month trend and the grand total, over
// the union of all local ledger entries and any mirrored records not yet
// present locally.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/core"
	"gastos/internal/remote"
	"gastos/internal/store"
)

// Report is the full aggregation output consumed by the presentation
// layer.
type Report struct {
	Categories []core.CategoryAmount `json:"categories"`
	Monthly    []core.MonthBucket    `json:"monthly"`
	Trend      []core.MonthBucket    `json:"trend"`
	Total      core.Money            `json:"total"`
	Entries    int                   `json:"entries"`
}

type Builder struct {
	store  *store.Store
	mirror remote.ExpenseCollection // nil when running without a cloud backend
	now    func() time.Time
}

func NewBuilder(st *store.Store, mirror remote.ExpenseCollection) *Builder {
	return &Builder{store: st, mirror: mirror, now: time.Now}
}

// Build assembles the candidate set and computes all aggregates. The
// local ledger and the mirror are read concurrently; a mirror failure
// only shrinks the candidate set, never fails the report.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	var (
		ledger core.Ledger
		docs   []remote.Document
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ledger, err = b.store.LoadLedger(gctx)
		if err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if b.mirror == nil {
			return nil
		}
		var err error
		docs, err = b.mirror.ListAll(gctx)
		if err != nil {
			slog.WarnContext(gctx, "Remote expenses unavailable, reporting on local data only",
				"error", err)
			docs = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	entries := candidateSet(ledger, docs, b.now)

	months12 := core.LastNMonths(12, b.now())
	months6 := core.LastNMonths(6, b.now())

	return Report{
		Categories: CategoryTotals(entries),
		Monthly:    MonthlyTotals(entries, months12),
		Trend:      MonthlyTotals(entries, months6),
		Total:      GrandTotal(entries),
		Entries:    len(entries),
	}, nil
}

// candidateSet is every local entry across all owners, plus remote
// records whose timestamp is absent from the union of all local
// timestamps.
func candidateSet(ledger core.Ledger, docs []remote.Document, now func() time.Time) []core.Expense {
	owners := make([]string, 0, len(ledger))
	for owner := range ledger {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	var entries []core.Expense
	for _, owner := range owners {
		entries = append(entries, ledger[owner]...)
	}

	for _, d := range docs {
		ts := d.TS
		if ts == 0 {
			ts = now().UnixMilli()
		}
		if ledger.AnyTS(ts) {
			continue
		}
		date := d.Date
		if date.IsZero() {
			date = now()
		}
		entries = append(entries, core.Expense{
			Description: d.Description,
			Amount:      core.Money{Cents: core.CentsFromFloat(d.Amount)},
			Category:    d.Category,
			Type:        core.ExpenseType(d.Type).OrVariable(),
			Date:        date,
			TS:          ts,
		})
	}
	return entries
}

// CategoryTotals sums amounts per category, sorted by category name.
func CategoryTotals(entries []core.Expense) []core.CategoryAmount {
	totals := map[string]int64{}
	for _, e := range entries {
		totals[e.Category] += e.Amount.Cents
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]core.CategoryAmount, 0, len(names))
	for _, name := range names {
		out = append(out, core.CategoryAmount{
			Name:   name,
			Amount: core.Money{Cents: totals[name]},
		})
	}
	return out
}

// MonthlyTotals buckets amounts into the given month keys, zero-filling
// months with no matching expense. The output order follows months.
func MonthlyTotals(entries []core.Expense, months []string) []core.MonthBucket {
	totals := map[string]int64{}
	for _, e := range entries {
		totals[core.MonthKey(e.Date)] += e.Amount.Cents
	}

	out := make([]core.MonthBucket, 0, len(months))
	for _, m := range months {
		out = append(out, core.MonthBucket{
			Month: m,
			Total: core.Money{Cents: totals[m]},
		})
	}
	return out
}

// GrandTotal sums every entry's amount.
func GrandTotal(entries []core.Expense) core.Money {
	var cents int64
	for _, e := range entries {
		cents += e.Amount.Cents
	}
	return core.Money{Cents: cents}
}
