package simplefin

import (
	"context"
	"fmt"
	"strconv"

	"networth/internal/domain/account"
	"networth/internal/domain/balance"
)

// BalanceSource adapts the SimpleFIN client to the balance.Source contract.
type BalanceSource struct {
	client ClientInterface
}

// NewBalanceSource creates a balance source backed by the SimpleFIN client.
func NewBalanceSource(client ClientInterface) *BalanceSource {
	return &BalanceSource{client: client}
}

var _ balance.Source = (*BalanceSource)(nil)

// CurrentBalance fetches the bridge snapshot and returns the balance of the
// matching account. The item's access token is its SimpleFIN access URL.
func (s *BalanceSource) CurrentBalance(ctx context.Context, item *account.Item, acct *account.Account) (*balance.Snapshot, error) {
	resp, err := s.client.FetchAccounts(ctx, item.AccessToken, nil, nil)
	if err != nil {
		return nil, err
	}

	for i := range resp.Accounts {
		sf := &resp.Accounts[i]
		if "simplefin_"+sf.ID != acct.ProviderAccountID {
			continue
		}

		current, err := strconv.ParseFloat(sf.Balance, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance '%s': %w", sf.Balance, err)
		}

		snapshot := &balance.Snapshot{Current: current}
		if sf.AvailableBalance != nil {
			available, err := strconv.ParseFloat(*sf.AvailableBalance, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse available balance '%s': %w", *sf.AvailableBalance, err)
			}
			snapshot.Available = &available
		}
		return snapshot, nil
	}
	return nil, fmt.Errorf("account %s not found in simplefin response", acct.ProviderAccountID)
}
