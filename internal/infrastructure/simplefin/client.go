// Package simplefin implements the SimpleFIN bridge protocol: one-time setup
// token claims and authenticated account snapshot fetches.
package simplefin

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"encoding/json"
)

const defaultTimeout = 60 * time.Second

// Client handles communication with a SimpleFIN bridge.
type Client struct {
	httpClient *http.Client
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new SimpleFIN client.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: defaultTimeout}}
}

// Org identifies the institution behind a SimpleFIN account.
type Org struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

// Transaction is one transaction embedded in an account snapshot. Posted is
// unix seconds; Amount is a decimal string.
type Transaction struct {
	ID          string  `json:"id"`
	Posted      int64   `json:"posted"`
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
	Payee       *string `json:"payee"`
	Pending     *bool   `json:"pending"`
}

// PostedTime returns the posted timestamp as a time.Time.
func (t *Transaction) PostedTime() time.Time {
	return time.Unix(t.Posted, 0).UTC()
}

// IsPending returns the pending flag, defaulting to false.
func (t *Transaction) IsPending() bool {
	return t.Pending != nil && *t.Pending
}

// Account is one account snapshot including its recent transactions.
// BalanceDate is unix seconds; balances are decimal strings.
type Account struct {
	ID               string        `json:"id"`
	Org              Org           `json:"org"`
	Name             string        `json:"name"`
	Currency         string        `json:"currency"`
	Balance          string        `json:"balance"`
	AvailableBalance *string       `json:"available-balance"`
	BalanceDate      int64         `json:"balance-date"`
	Transactions     []Transaction `json:"transactions"`
}

// BalanceTime returns the balance timestamp as a time.Time.
func (a *Account) BalanceTime() time.Time {
	return time.Unix(a.BalanceDate, 0).UTC()
}

// AccountsResponse is the bridge's /accounts payload. Errors carries
// institution-level warnings that do not fail the whole fetch.
type AccountsResponse struct {
	Errors   []string  `json:"errors"`
	Accounts []Account `json:"accounts"`
}

// DecodeSetupToken decodes a base64 setup token into its claim URL.
func DecodeSetupToken(setupToken string) (string, error) {
	claimURL, err := base64.StdEncoding.DecodeString(strings.TrimSpace(setupToken))
	if err != nil {
		return "", fmt.Errorf("failed to decode setup token: %w", err)
	}
	return string(claimURL), nil
}

// ClaimSetupToken exchanges a one-time setup token for a permanent access
// URL. The claim URL may only be POSTed to once.
func (c *Client) ClaimSetupToken(ctx context.Context, setupToken string) (string, error) {
	claimURL, err := DecodeSetupToken(setupToken)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claimURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create claim request: %w", err)
	}
	req.Header.Set("Content-Length", "0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to claim setup token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read claim response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to claim setup token: %d %s", resp.StatusCode, resp.Status)
	}

	return strings.TrimSpace(string(body)), nil
}

// ParseAccessURL splits a SimpleFIN access URL into a credential-free base
// URL (with trailing slash) and its basic-auth username and password.
func ParseAccessURL(accessURL string) (baseURL, username, password string, err error) {
	u, err := url.Parse(accessURL)
	if err != nil {
		return "", "", "", fmt.Errorf("invalid access URL: %w", err)
	}
	if u.User != nil {
		username = u.User.Username()
		password, _ = u.User.Password()
		u.User = nil
	}
	baseURL = u.String()
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL, username, password, nil
}

// FetchAccounts fetches all account snapshots reachable through an access
// URL. start and end, when non-nil, bound the embedded transaction history.
func (c *Client) FetchAccounts(ctx context.Context, accessURL string, start, end *time.Time) (*AccountsResponse, error) {
	baseURL, username, password, err := ParseAccessURL(accessURL)
	if err != nil {
		return nil, err
	}

	endpoint := baseURL + "accounts"
	params := url.Values{}
	if start != nil {
		params.Set("start-date", fmt.Sprintf("%d", start.Unix()))
	}
	if end != nil {
		params.Set("end-date", fmt.Sprintf("%d", end.Unix()))
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(username, password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("simplefin error: %d - %s", resp.StatusCode, string(body))
	}

	var accountsResp AccountsResponse
	if err := json.Unmarshal(body, &accountsResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &accountsResp, nil
}

// MapAccountType guesses a dashboard account type and subtype from the
// account name. SimpleFIN has no type taxonomy of its own.
func MapAccountType(name string) (accountType string, subtype *string) {
	lower := strings.ToLower(name)
	sub := func(s string) *string { return &s }
	switch {
	case strings.Contains(lower, "checking"):
		return "depository", sub("checking")
	case strings.Contains(lower, "saving"):
		return "depository", sub("savings")
	case strings.Contains(lower, "credit"):
		return "credit", sub("credit card")
	case strings.Contains(lower, "investment"), strings.Contains(lower, "401k"), strings.Contains(lower, "ira"):
		return "investment", sub("brokerage")
	default:
		return "depository", nil
	}
}

// AccountMask returns the last four characters of a provider account ID.
func AccountMask(id string) string {
	if len(id) <= 4 {
		return id
	}
	return id[len(id)-4:]
}
