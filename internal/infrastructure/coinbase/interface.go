package coinbase

import (
	"context"

	"github.com/shopspring/decimal"
)

// ClientInterface defines the Coinbase operations the domain layer depends on.
type ClientInterface interface {
	// ListAccounts fetches the user's wallets
	ListAccounts(ctx context.Context, accessToken string) ([]Account, error)

	// SpotPrice fetches the current USD spot price for a currency
	SpotPrice(ctx context.Context, currency string) (decimal.Decimal, error)

	// AccountBalanceUSD values one wallet in USD at the current spot price
	AccountBalanceUSD(ctx context.Context, accessToken, providerAccountID string) (float64, error)
}
