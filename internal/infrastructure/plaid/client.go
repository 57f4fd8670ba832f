// Package plaid is a thin HTTP client for the subset of the Plaid API this
// dashboard consumes: transaction delta sync, investment transaction windows,
// and current balances.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Environments maps a Plaid environment name to its base URL.
var Environments = map[string]string{
	"sandbox":    "https://sandbox.plaid.com",
	"production": "https://production.plaid.com",
}

const (
	defaultTimeout  = 60 * time.Second
	apiVersion      = "2020-09-14"
	syncPath        = "/transactions/sync"
	investmentsPath = "/investments/transactions/get"
	balancesPath    = "/accounts/balance/get"
)

// Client handles communication with the Plaid API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new Plaid API client for the given environment.
// Unknown environments fall back to sandbox.
func NewClient(clientID, secret, environment string) *Client {
	baseURL, ok := Environments[environment]
	if !ok {
		baseURL = Environments["sandbox"]
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseURL,
		clientID:   clientID,
		secret:     secret,
	}
}

// APIError is a structured error returned by the Plaid API. Callers can
// branch on ErrorCode to map provider failures to user-facing responses.
type APIError struct {
	ErrorType      string  `json:"error_type"`
	ErrorCode      string  `json:"error_code"`
	ErrorMessage   string  `json:"error_message"`
	DisplayMessage *string `json:"display_message"`
	StatusCode     int     `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid API error (status %d): %s - %s", e.StatusCode, e.ErrorCode, e.ErrorMessage)
}

// Plaid error codes this application handles explicitly.
const (
	ErrorCodeItemLoginRequired  = "ITEM_LOGIN_REQUIRED"
	ErrorCodeInvalidAccessToken = "INVALID_ACCESS_TOKEN"
	ErrorCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrorCodeInstitutionDown    = "INSTITUTION_DOWN"
)

// Transaction represents one entry in a transactions sync feed.
type Transaction struct {
	AccountID               string                   `json:"account_id"`
	TransactionID           string                   `json:"transaction_id"`
	DateString              string                   `json:"date"`
	AuthorizedDateString    *string                  `json:"authorized_date"`
	Name                    string                   `json:"name"`
	MerchantName            *string                  `json:"merchant_name"`
	MerchantEntityID        *string                  `json:"merchant_entity_id"`
	Amount                  float64                  `json:"amount"`
	Category                []string                 `json:"category"`
	PersonalFinanceCategory *PersonalFinanceCategory `json:"personal_finance_category"`
	Pending                 bool                     `json:"pending"`
	ISOCurrencyCode         *string                  `json:"iso_currency_code"`
	PaymentChannel          *string                  `json:"payment_channel"`
	PaymentMeta             *PaymentMeta             `json:"payment_meta"`
	Location                *Location                `json:"location"`
}

// PersonalFinanceCategory is Plaid's refined category taxonomy.
type PersonalFinanceCategory struct {
	Primary  string `json:"primary"`
	Detailed string `json:"detailed"`
}

// PaymentMeta carries payment metadata for transfer-like transactions.
type PaymentMeta struct {
	Payee         *string `json:"payee"`
	PaymentMethod *string `json:"payment_method"`
}

// Location carries merchant location data when the provider knows it.
type Location struct {
	City    *string `json:"city"`
	Region  *string `json:"region"`
	Country *string `json:"country"`
}

// GetDate parses the transaction date (YYYY-MM-DD).
func (t *Transaction) GetDate() (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", t.DateString)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date '%s': %w", t.DateString, err)
	}
	return parsed, nil
}

// GetAuthorizedDate parses the authorized date if present.
func (t *Transaction) GetAuthorizedDate() (*time.Time, error) {
	if t.AuthorizedDateString == nil || *t.AuthorizedDateString == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *t.AuthorizedDateString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse authorized_date '%s': %w", *t.AuthorizedDateString, err)
	}
	return &parsed, nil
}

// PrimaryCategory returns the first legacy category entry, if any.
func (t *Transaction) PrimaryCategory() *string {
	if len(t.Category) == 0 {
		return nil
	}
	return &t.Category[0]
}

// RemovedTransaction identifies a transaction the provider deleted.
type RemovedTransaction struct {
	AccountID     string `json:"account_id"`
	TransactionID string `json:"transaction_id"`
}

// TransactionsSyncResponse is one page of the transaction change feed.
type TransactionsSyncResponse struct {
	Added      []Transaction        `json:"added"`
	Modified   []Transaction        `json:"modified"`
	Removed    []RemovedTransaction `json:"removed"`
	HasMore    bool                 `json:"has_more"`
	NextCursor string               `json:"next_cursor"`
}

// TransactionsSync fetches one page of the change feed. An empty cursor
// requests the full history from the beginning of the feed.
func (c *Client) TransactionsSync(ctx context.Context, accessToken, cursor string, count int) (*TransactionsSyncResponse, error) {
	body := map[string]any{
		"access_token": accessToken,
		"count":        count,
		"options": map[string]any{
			"include_original_description": true,
		},
	}
	if cursor != "" {
		body["cursor"] = cursor
	}

	var resp TransactionsSyncResponse
	if err := c.post(ctx, syncPath, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InvestmentTransaction represents one investment movement.
type InvestmentTransaction struct {
	InvestmentTransactionID string   `json:"investment_transaction_id"`
	AccountID               string   `json:"account_id"`
	SecurityID              *string  `json:"security_id"`
	DateString              string   `json:"date"`
	Name                    string   `json:"name"`
	Amount                  float64  `json:"amount"`
	Fees                    *float64 `json:"fees"`
	Price                   float64  `json:"price"`
	Quantity                float64  `json:"quantity"`
	Type                    string   `json:"type"`
	Subtype                 string   `json:"subtype"`
	ISOCurrencyCode         *string  `json:"iso_currency_code"`
}

// GetDate parses the investment transaction date (YYYY-MM-DD).
func (t *InvestmentTransaction) GetDate() (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", t.DateString)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date '%s': %w", t.DateString, err)
	}
	return parsed, nil
}

// Security is a security definition referenced by investment transactions.
type Security struct {
	SecurityID   string   `json:"security_id"`
	Name         *string  `json:"name"`
	TickerSymbol *string  `json:"ticker_symbol"`
	ISIN         *string  `json:"isin"`
	CUSIP        *string  `json:"cusip"`
	Type         *string  `json:"type"`
	ClosePrice   *float64 `json:"close_price"`
}

// InvestmentTransactionsResponse is one offset page of a window fetch.
type InvestmentTransactionsResponse struct {
	InvestmentTransactions      []InvestmentTransaction `json:"investment_transactions"`
	Securities                  []Security              `json:"securities"`
	TotalInvestmentTransactions int                     `json:"total_investment_transactions"`
}

// InvestmentTransactions fetches one offset/count page of investment
// transactions for the given accounts and date window (dates YYYY-MM-DD).
func (c *Client) InvestmentTransactions(ctx context.Context, accessToken string, accountIDs []string, startDate, endDate string, offset, count int) (*InvestmentTransactionsResponse, error) {
	body := map[string]any{
		"access_token": accessToken,
		"start_date":   startDate,
		"end_date":     endDate,
		"options": map[string]any{
			"offset":      offset,
			"count":       count,
			"account_ids": accountIDs,
		},
	}

	var resp InvestmentTransactionsResponse
	if err := c.post(ctx, investmentsPath, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AccountBalance holds the balance fields of one account in a balances
// response. Plaid reports all three as nullable.
type AccountBalance struct {
	Current   *float64 `json:"current"`
	Available *float64 `json:"available"`
	Limit     *float64 `json:"limit"`
}

// BalanceAccount pairs a provider account ID with its balances.
type BalanceAccount struct {
	AccountID string         `json:"account_id"`
	Balances  AccountBalance `json:"balances"`
}

// AccountBalancesResponse is the response to a balance fetch.
type AccountBalancesResponse struct {
	Accounts []BalanceAccount `json:"accounts"`
}

// AccountBalances fetches fresh balances for every account on an item,
// forcing the provider to refresh anything older than minLastUpdated.
func (c *Client) AccountBalances(ctx context.Context, accessToken string, minLastUpdated time.Time) (*AccountBalancesResponse, error) {
	body := map[string]any{
		"access_token": accessToken,
		"options": map[string]any{
			"min_last_updated_datetime": minLastUpdated.UTC().Format(time.RFC3339),
		},
	}

	var resp AccountBalancesResponse
	if err := c.post(ctx, balancesPath, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post sends a JSON request with client credentials and decodes the response
// into out. Non-200 responses are returned as *APIError when parseable.
func (c *Client) post(ctx context.Context, path string, body map[string]any, out any) error {
	body["client_id"] = c.clientID
	body["secret"] = c.secret

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Plaid-Version", apiVersion)

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
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.ErrorCode == "" {
			return fmt.Errorf("plaid request failed with status %d: %s", resp.StatusCode, string(data))
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
