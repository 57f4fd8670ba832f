package coinbase

import (
	"context"

	"networth/internal/domain/account"
	"networth/internal/domain/balance"
)

// BalanceSource adapts the Coinbase client to the balance.Source contract.
// Crypto accounts have no credit limit; current and available are both the
// USD valuation of the holdings.
type BalanceSource struct {
	client ClientInterface
}

// NewBalanceSource creates a balance source backed by the Coinbase client.
func NewBalanceSource(client ClientInterface) *BalanceSource {
	return &BalanceSource{client: client}
}

var _ balance.Source = (*BalanceSource)(nil)

// CurrentBalance values the wallet in USD at the current spot price.
func (s *BalanceSource) CurrentBalance(ctx context.Context, item *account.Item, acct *account.Account) (*balance.Snapshot, error) {
	usd, err := s.client.AccountBalanceUSD(ctx, item.AccessToken, acct.ProviderAccountID)
	if err != nil {
		return nil, err
	}
	available := usd
	return &balance.Snapshot{Current: usd, Available: &available}, nil
}
