package plaid

import (
	"context"
	"fmt"
	"time"

	"networth/internal/domain/account"
	"networth/internal/domain/balance"
)

// balanceFreshness is how stale a provider-cached balance may be before the
// provider is asked to refresh it.
const balanceFreshness = 24 * time.Hour

// BalanceSource adapts the Plaid client to the balance.Source contract.
type BalanceSource struct {
	client ClientInterface
}

// NewBalanceSource creates a balance source backed by the Plaid client.
func NewBalanceSource(client ClientInterface) *BalanceSource {
	return &BalanceSource{client: client}
}

var _ balance.Source = (*BalanceSource)(nil)

// CurrentBalance fetches the item's balances and returns the entry for the
// given account.
func (s *BalanceSource) CurrentBalance(ctx context.Context, item *account.Item, acct *account.Account) (*balance.Snapshot, error) {
	resp, err := s.client.AccountBalances(ctx, item.AccessToken, time.Now().Add(-balanceFreshness))
	if err != nil {
		return nil, err
	}

	for _, a := range resp.Accounts {
		if a.AccountID != acct.ProviderAccountID {
			continue
		}
		snapshot := &balance.Snapshot{
			Available: a.Balances.Available,
			Limit:     a.Balances.Limit,
		}
		if a.Balances.Current != nil {
			snapshot.Current = *a.Balances.Current
		}
		return snapshot, nil
	}
	return nil, fmt.Errorf("account %s not found in plaid response", acct.ProviderAccountID)
}
