// Package balance maintains the per-account balance history: refresh
// snapshots, retroactive backfill, and per-period deduplication.
package balance

import (
	"context"
	"errors"
	"time"

	"networth/internal/domain/account"
)

// Domain errors
var (
	ErrNoBalances     = errors.New("no existing balances to backfill from")
	ErrRecordNotFound = errors.New("balance record not found")
)

// BackfillEpoch is the first month the dashboard covers. Backfill never
// synthesizes records before it.
var BackfillEpoch = time.Date(2022, time.December, 1, 0, 0, 0, 0, time.UTC)

// Record is a point-in-time balance snapshot for one account. Records are
// created by refreshes, imports, and backfill; they are deleted by user
// action or dedup cleanup, never updated in place.
type Record struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Current   float64   `json:"current"`
	Available *float64  `json:"available"`
	Limit     *float64  `json:"limit"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateParams contains parameters for inserting a balance record.
type CreateParams struct {
	AccountID string
	Current   float64
	Available *float64
	Limit     *float64
	Date      time.Time
}

// Snapshot is a provider-reported current balance.
type Snapshot struct {
	Current   float64
	Available *float64
	Limit     *float64
}

// Source fetches the current balance for one account from its provider.
// Each provider client contributes one implementation.
type Source interface {
	CurrentBalance(ctx context.Context, item *account.Item, acct *account.Account) (*Snapshot, error)
}

// RefreshResult reports a freshly appended balance and its delta versus the
// immediately preceding record.
type RefreshResult struct {
	Record   *Record `json:"balance"`
	Previous float64 `json:"previousBalance"`
	Change   float64 `json:"change"`
}

// StartOfMonth truncates t to the first instant of its calendar month in UTC.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
}
