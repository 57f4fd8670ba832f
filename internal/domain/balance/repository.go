package balance

import "context"

// Repository defines the interface for balance record data access.
type Repository interface {
	// Create inserts a new balance record
	Create(ctx context.Context, params CreateParams) (*Record, error)

	// GetByID retrieves a record by its ID. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*Record, error)

	// ListByAccountID retrieves all records for an account, newest first
	ListByAccountID(ctx context.Context, accountID string) ([]*Record, error)

	// ListByAccountIDAsc retrieves all records for an account, oldest first
	ListByAccountIDAsc(ctx context.Context, accountID string) ([]*Record, error)

	// Latest retrieves the newest record for an account. Returns (nil, nil)
	// when the account has no records.
	Latest(ctx context.Context, accountID string) (*Record, error)

	// Delete removes a single record
	Delete(ctx context.Context, id string) error

	// DeleteByIDs removes all records in the given ID list and returns the
	// number deleted
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}
