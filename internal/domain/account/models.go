// Package account holds the account and institution-link domain entities.
package account

import (
	"errors"
	"time"
)

// Supported providers for institution links.
const (
	ProviderPlaid     = "plaid"
	ProviderCoinbase  = "coinbase"
	ProviderSimpleFIN = "simplefin"
)

// Account types as reported by providers.
const (
	TypeDepository = "depository"
	TypeCredit     = "credit"
	TypeInvestment = "investment"
	TypeLoan       = "loan"
	TypeBrokerage  = "brokerage"
)

// Domain errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrItemNotFound    = errors.New("item not found")
)

// Account represents one financial account at one institution.
type Account struct {
	ID                string    `json:"id"`
	ItemID            string    `json:"itemId"`
	ProviderAccountID string    `json:"providerAccountId"`
	Name              string    `json:"name"`
	Nickname          *string   `json:"nickname"`
	Type              string    `json:"type"`
	Subtype           *string   `json:"subtype"`
	Mask              *string   `json:"mask"`
	Hidden            bool      `json:"hidden"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// UsesWindowSync reports whether transaction syncs for this account replace a
// trailing date window instead of following the incremental cursor feed.
// Investment-type accounts have no cursor feed at the provider.
func (a *Account) UsesWindowSync() bool {
	return a.Type == TypeInvestment || a.Type == TypeBrokerage
}

// DisplayName returns the nickname when set, the provider name otherwise.
func (a *Account) DisplayName() string {
	if a.Nickname != nil && *a.Nickname != "" {
		return *a.Nickname
	}
	return a.Name
}

// Item represents one provider connection (a Plaid item, a Coinbase OAuth
// grant, or a SimpleFIN access URL). One item owns many accounts.
type Item struct {
	ID              string    `json:"id"`
	Provider        string    `json:"provider"`
	ItemID          string    `json:"itemId"`
	AccessToken     string    `json:"-"`
	InstitutionID   *string   `json:"institutionId"`
	InstitutionName *string   `json:"institutionName"`
	SyncCursor      *string   `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateParams contains parameters for creating a new account.
type CreateParams struct {
	ItemID            string
	ProviderAccountID string
	Name              string
	Type              string
	Subtype           *string
	Mask              *string
}

// Validate validates the create parameters.
func (p CreateParams) Validate() error {
	if p.ItemID == "" {
		return errors.New("item ID is required")
	}
	if p.ProviderAccountID == "" {
		return errors.New("provider account ID is required")
	}
	if p.Name == "" {
		return errors.New("account name is required")
	}
	if p.Type == "" {
		return errors.New("account type is required")
	}
	return nil
}

// CreateItemParams contains parameters for creating a new institution link.
type CreateItemParams struct {
	Provider        string
	ItemID          string
	AccessToken     string
	InstitutionID   *string
	InstitutionName *string
}

// Validate validates the item create parameters.
func (p CreateItemParams) Validate() error {
	if p.Provider == "" {
		return errors.New("provider is required")
	}
	if p.ItemID == "" {
		return errors.New("provider item ID is required")
	}
	if p.AccessToken == "" {
		return errors.New("access token is required")
	}
	return nil
}
