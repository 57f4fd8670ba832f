// Package transaction holds the transaction domain entity and store contract.
package transaction

import "time"

// UpsertOutcome reports which branch a first-write-wins upsert took.
type UpsertOutcome string

const (
	// OutcomeInserted means the row did not exist and was created.
	OutcomeInserted UpsertOutcome = "inserted"
	// OutcomeSkippedDuplicate means a row with the same
	// (accountId, providerTransactionId) already existed and was left as-is.
	OutcomeSkippedDuplicate UpsertOutcome = "skipped_duplicate"
)

// Transaction represents one financial movement on an account. The pair
// (AccountID, ProviderTransactionID) is unique and is the idempotency key
// for all sync upserts.
type Transaction struct {
	ID                      string     `json:"id"`
	AccountID               string     `json:"accountId"`
	ProviderTransactionID   string     `json:"providerTransactionId"`
	Date                    time.Time  `json:"date"`
	AuthorizedDate          *time.Time `json:"authorizedDate"`
	Name                    string     `json:"name"`
	MerchantName            *string    `json:"merchantName"`
	MerchantEntityID        *string    `json:"merchantEntityId"`
	Amount                  float64    `json:"amount"`
	Category                *string    `json:"category"`
	PersonalFinanceCategory *string    `json:"personalFinanceCategory"`
	Pending                 bool       `json:"pending"`
	ISOCurrencyCode         *string    `json:"isoCurrencyCode"`
	PaymentChannel          *string    `json:"paymentChannel"`
	Payee                   *string    `json:"payee"`
	PaymentMethod           *string    `json:"paymentMethod"`
	LocationCity            *string    `json:"locationCity"`
	LocationRegion          *string    `json:"locationRegion"`
	LocationCountry         *string    `json:"locationCountry"`

	// Investment fields, set only by window syncs.
	Fees         *float64 `json:"fees"`
	Price        *float64 `json:"price"`
	Quantity     *float64 `json:"quantity"`
	SecurityID   *string  `json:"securityId"`
	TickerSymbol *string  `json:"tickerSymbol"`
	ISIN         *string  `json:"isin"`
	CUSIP        *string  `json:"cusip"`
	SecurityName *string  `json:"securityName"`
	SecurityType *string  `json:"securityType"`
	ClosePrice   *float64 `json:"closePrice"`
	Type         *string  `json:"type"`
	Subtype      *string  `json:"subtype"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateParams contains the full field mapping for inserting a transaction.
type CreateParams struct {
	AccountID               string
	ProviderTransactionID   string
	Date                    time.Time
	AuthorizedDate          *time.Time
	Name                    string
	MerchantName            *string
	MerchantEntityID        *string
	Amount                  float64
	Category                *string
	PersonalFinanceCategory *string
	Pending                 bool
	ISOCurrencyCode         *string
	PaymentChannel          *string
	Payee                   *string
	PaymentMethod           *string
	LocationCity            *string
	LocationRegion          *string
	LocationCountry         *string

	Fees         *float64
	Price        *float64
	Quantity     *float64
	SecurityID   *string
	TickerSymbol *string
	ISIN         *string
	CUSIP        *string
	SecurityName *string
	SecurityType *string
	ClosePrice   *float64
	Type         *string
	Subtype      *string
}

// UpdateParams contains the fields a provider "modified" entry may change.
type UpdateParams struct {
	Date         time.Time
	Name         string
	Amount       float64
	Category     *string
	MerchantName *string
	Pending      bool
}
