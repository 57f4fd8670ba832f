package plaid

import (
	"context"
	"time"
)

// ClientInterface defines the Plaid operations the domain layer depends on.
// Tests provide mock implementations.
type ClientInterface interface {
	// TransactionsSync fetches one page of the transaction change feed
	TransactionsSync(ctx context.Context, accessToken, cursor string, count int) (*TransactionsSyncResponse, error)

	// InvestmentTransactions fetches one offset page of a date-window fetch
	InvestmentTransactions(ctx context.Context, accessToken string, accountIDs []string, startDate, endDate string, offset, count int) (*InvestmentTransactionsResponse, error)

	// AccountBalances fetches fresh balances for every account on an item
	AccountBalances(ctx context.Context, accessToken string, minLastUpdated time.Time) (*AccountBalancesResponse, error)
}
