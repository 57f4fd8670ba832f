// Package coinbase is a thin HTTP client for the Coinbase v2 API, used to
// value crypto accounts in USD.
package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	baseURL        = "https://api.coinbase.com"
	defaultTimeout = 30 * time.Second
	apiVersion     = "2024-02-07"
	accountsPath   = "/v2/accounts?limit=100"
)

// Client handles communication with the Coinbase API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new Coinbase API client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
	}
}

// Money is an amount/currency pair. Coinbase returns amounts as strings.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Account represents one Coinbase wallet.
type Account struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Balance       Money  `json:"balance"`
	NativeBalance *Money `json:"native_balance"`
}

type accountsResponse struct {
	Data []Account `json:"data"`
}

type spotPriceResponse struct {
	Data Money `json:"data"`
}

// ListAccounts fetches the user's wallets.
func (c *Client) ListAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+accountsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("CB-VERSION", apiVersion)

	var resp accountsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// SpotPrice fetches the current USD spot price for a currency.
func (c *Client) SpotPrice(ctx context.Context, currency string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/v2/prices/%s-USD/spot", c.baseURL, currency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("CB-VERSION", apiVersion)

	var resp spotPriceResponse
	if err := c.do(req, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch spot price for %s: %w", currency, err)
	}

	price, err := decimal.NewFromString(resp.Data.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse spot price '%s': %w", resp.Data.Amount, err)
	}
	return price, nil
}

// AccountBalanceUSD values one wallet in USD: holdings multiplied by the
// current spot price. providerAccountID may carry the "coinbase_" prefix
// the dashboard stores, or the raw wallet ID.
func (c *Client) AccountBalanceUSD(ctx context.Context, accessToken, providerAccountID string) (float64, error) {
	accounts, err := c.ListAccounts(ctx, accessToken)
	if err != nil {
		return 0, err
	}

	want := providerAccountID
	if !strings.HasPrefix(want, "coinbase_") {
		want = "coinbase_" + want
	}

	var wallet *Account
	for i := range accounts {
		if "coinbase_"+accounts[i].ID == want {
			wallet = &accounts[i]
			break
		}
	}
	if wallet == nil {
		return 0, fmt.Errorf("account %s not found in coinbase response", providerAccountID)
	}

	amount, err := decimal.NewFromString(wallet.Balance.Amount)
	if err != nil {
		return 0, fmt.Errorf("failed to parse balance '%s': %w", wallet.Balance.Amount, err)
	}

	price, err := c.SpotPrice(ctx, wallet.Balance.Currency)
	if err != nil {
		return 0, err
	}

	return amount.Mul(price).InexactFloat64(), nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coinbase API error (status %d): %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
