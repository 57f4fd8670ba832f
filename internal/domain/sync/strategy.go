package sync

import (
	"context"

	"networth/internal/domain/account"
)

// Strategy merges a provider's transaction data into the persisted set for
// one account. Implementations must converge no matter how many times the
// same provider data is replayed.
type Strategy interface {
	// Name identifies the strategy in results and logs
	Name() string

	// Sync runs one full reconciliation pass for the account
	Sync(ctx context.Context, item *account.Item, acct *account.Account) (*Result, error)
}
