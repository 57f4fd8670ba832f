package transaction

import (
	"context"
	"time"
)

// Repository defines the interface for transaction data access.
// Implementations must enforce uniqueness on (accountId, providerTransactionId).
type Repository interface {
	// BulkCreateIfAbsent inserts every entry that does not already exist,
	// keyed by (accountId, providerTransactionId), as one all-or-nothing
	// unit. Existing rows are left untouched (first write wins). The
	// returned slice reports the outcome per input entry, in order.
	BulkCreateIfAbsent(ctx context.Context, params []CreateParams) ([]UpsertOutcome, error)

	// UpsertOverwrite inserts the transaction or, on conflict, overwrites
	// its amount, pending flag, and merchant name. Used for snapshot
	// imports and direct user edits, never by delta reconciliation.
	UpsertOverwrite(ctx context.Context, params CreateParams) (*Transaction, error)

	// UpdateByProviderID applies a provider modification to the matching
	// row. Returns the number of rows updated; zero is not an error.
	UpdateByProviderID(ctx context.Context, accountID, providerTransactionID string, params UpdateParams) (int64, error)

	// DeleteByProviderIDs deletes all rows matching the given provider
	// transaction IDs for an account. Deleting zero rows is not an error.
	DeleteByProviderIDs(ctx context.Context, accountID string, providerTransactionIDs []string) (int64, error)

	// ReplaceWindow deletes every transaction for the account dated within
	// [start, end] and inserts the given entries fresh, as one
	// all-or-nothing unit. Returns the number of rows inserted.
	ReplaceWindow(ctx context.Context, accountID string, start, end time.Time, params []CreateParams) (int, error)

	// ListByAccountID retrieves transactions for an account ordered by
	// date descending.
	ListByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*Transaction, error)
}
