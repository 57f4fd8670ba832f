package account

import "context"

// Repository defines the interface for account data access.
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create creates a new account
	Create(ctx context.Context, params CreateParams) (*Account, error)

	// GetByID retrieves an account by its ID. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*Account, error)

	// List retrieves all accounts ordered by name
	List(ctx context.Context) ([]*Account, error)

	// UpdateNickname sets or clears the user-assigned nickname
	UpdateNickname(ctx context.Context, id string, nickname *string) (*Account, error)

	// SetHidden updates the hidden flag
	SetHidden(ctx context.Context, id string, hidden bool) (*Account, error)
}

// ItemRepository defines the interface for institution-link data access.
type ItemRepository interface {
	// Create creates a new institution link
	Create(ctx context.Context, params CreateItemParams) (*Item, error)

	// GetByID retrieves an item by its ID. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*Item, error)

	// FindByProviderInstitution finds an existing link for a provider and
	// institution. Returns (nil, nil) when absent.
	FindByProviderInstitution(ctx context.Context, provider, institutionID string) (*Item, error)

	// UpdateSyncCursor persists the transaction sync cursor for a link
	UpdateSyncCursor(ctx context.Context, id, cursor string) error
}
