package core

import (
	"strings"
	"time"
)

const (
	Fixed    ExpenseType = "Fixed"
	Variable ExpenseType = "Variable"
)

type (
	ExpenseType string

	// User is a registered account. PasswordHash is only populated for
	// locally registered users; RemoteID only for cloud-backed ones.
	User struct {
		Username     string `json:"usuario"`
		Email        string `json:"email"`
		PasswordHash string `json:"password,omitempty"`
		RemoteID     string `json:"uid,omitempty"`
	}

	Expense struct {
		Description string      `json:"desc"`
		Amount      Money       `json:"monto"`
		Category    string      `json:"categoria"`
		Type        ExpenseType `json:"tipo"`
		Date        time.Time   `json:"fecha"`
		// TS is the creation instant in epoch milliseconds. It doubles
		// as the expense's natural key during merges: no two expenses
		// of the same owner may share a TS.
		TS int64 `json:"ts"`
	}

	// Ledger maps an owner's username to their expenses, oldest first.
	Ledger map[string][]Expense
)

func (t ExpenseType) IsValid() bool {
	return t == Fixed || t == Variable
}

// OrVariable falls back to Variable for records written before the type
// field existed.
func (t ExpenseType) OrVariable() ExpenseType {
	if t == "" {
		return Variable
	}
	return t
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// HasTS reports whether owner already has an expense stamped with ts.
func (l Ledger) HasTS(owner string, ts int64) bool {
	for _, e := range l[owner] {
		if e.TS == ts {
			return true
		}
	}
	return false
}

// AnyTS reports whether any owner has an expense stamped with ts.
// Cross-owner dedup for report building.
func (l Ledger) AnyTS(ts int64) bool {
	for owner := range l {
		if l.HasTS(owner, ts) {
			return true
		}
	}
	return false
}

// TotalFor sums the amounts of one owner's expenses.
func (l Ledger) TotalFor(owner string) Money {
	var cents int64
	for _, e := range l[owner] {
		cents += e.Amount.Cents
	}
	return Money{Cents: cents}
}

// MonthKey buckets an instant into its calendar month as "YYYY-MM".
// Bucketing is done in UTC so the same record lands in the same bucket
// on every machine.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// LastNMonths returns the trailing n month keys ending at now's month,
// in chronological order.
func LastNMonths(n int, now time.Time) []string {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, first.AddDate(0, -i, 0).Format("2006-01"))
	}
	return keys
}
