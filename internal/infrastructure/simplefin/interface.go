package simplefin

import (
	"context"
	"time"
)

// ClientInterface defines the SimpleFIN operations the domain layer depends on.
type ClientInterface interface {
	// ClaimSetupToken exchanges a one-time setup token for an access URL
	ClaimSetupToken(ctx context.Context, setupToken string) (string, error)

	// FetchAccounts fetches all account snapshots behind an access URL
	FetchAccounts(ctx context.Context, accessURL string, start, end *time.Time) (*AccountsResponse, error)
}
