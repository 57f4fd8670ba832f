package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"networth/internal/domain/account"
	"networth/internal/domain/transaction"
	"networth/internal/infrastructure/plaid"
)

// WindowMonths is the width of the investment replace window, counted back
// from today.
const WindowMonths = 24

// WindowClient is the slice of the Plaid client the window strategy uses.
type WindowClient interface {
	InvestmentTransactions(ctx context.Context, accessToken string, accountIDs []string, startDate, endDate string, offset, count int) (*plaid.InvestmentTransactionsResponse, error)
}

// WindowStrategy reconciles investment accounts by fetching every movement in
// a trailing window and replacing the stored window wholesale. If any page
// fetch fails the stored window is left untouched.
type WindowStrategy struct {
	client       WindowClient
	transactions transaction.Repository
	logs         LogRepository
	pageSize     int
	now          func() time.Time
}

// NewWindowStrategy creates the full-window-replace reconciliation strategy.
func NewWindowStrategy(client WindowClient, transactions transaction.Repository, logs LogRepository) *WindowStrategy {
	return &WindowStrategy{
		client:       client,
		transactions: transactions,
		logs:         logs,
		pageSize:     DefaultPageSize,
		now:          time.Now,
	}
}

// Name implements Strategy.
func (s *WindowStrategy) Name() string { return "window" }

// Sync implements Strategy. Errors propagate to the caller, which owns the
// error log entry for window syncs.
func (s *WindowStrategy) Sync(ctx context.Context, item *account.Item, acct *account.Account) (*Result, error) {
	// Fetched transaction dates parse to midnight UTC, so the replace window
	// must span whole days. A window carrying the current time-of-day would
	// leave same-day rows outside the delete predicate and the fresh insert
	// would collide with them.
	now := s.now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, -WindowMonths, 0)
	startDate := start.Format("2006-01-02")
	endDate := end.Format("2006-01-02")

	fetched, securities, err := s.fetchWindow(ctx, item, acct, startDate, endDate)
	if err != nil {
		return nil, err
	}

	params, err := s.toCreateParams(acct.ID, fetched, securities)
	if err != nil {
		return nil, err
	}

	inserted, err := s.transactions.ReplaceWindow(ctx, acct.ID, start, end, params)
	if err != nil {
		return nil, fmt.Errorf("failed to replace transaction window: %w", err)
	}

	entry, err := s.logs.Create(ctx, CreateLogParams{
		AccountID:       acct.ID,
		StartDate:       start,
		EndDate:         end,
		NumTransactions: inserted,
		Status:          StatusSuccess,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write download log: %w", err)
	}

	log.Printf("Account %s: window sync complete window=%s..%s inserted=%d",
		acct.ID, startDate, endDate, inserted)

	return &Result{
		Strategy: s.Name(),
		Added:    len(fetched),
		Inserted: inserted,
		Log:      entry,
	}, nil
}

// fetchWindow pages through the window with offset pagination until the
// provider's reported total is reached.
func (s *WindowStrategy) fetchWindow(ctx context.Context, item *account.Item, acct *account.Account, startDate, endDate string) ([]plaid.InvestmentTransaction, map[string]plaid.Security, error) {
	var fetched []plaid.InvestmentTransaction
	securities := make(map[string]plaid.Security)
	accountIDs := []string{acct.ProviderAccountID}

	offset := 0
	for {
		page, err := s.client.InvestmentTransactions(ctx, item.AccessToken, accountIDs, startDate, endDate, offset, s.pageSize)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch investment transactions at offset %d: %w", offset, err)
		}

		fetched = append(fetched, page.InvestmentTransactions...)
		for _, sec := range page.Securities {
			securities[sec.SecurityID] = sec
		}

		offset += len(page.InvestmentTransactions)
		if offset >= page.TotalInvestmentTransactions {
			break
		}
		if len(page.InvestmentTransactions) == 0 {
			// The provider reported more rows than it returns. Stop rather
			// than loop forever.
			log.Printf("Account %s: investment pagination stalled at offset %d of %d",
				acct.ID, offset, page.TotalInvestmentTransactions)
			break
		}
	}

	return fetched, securities, nil
}

func (s *WindowStrategy) toCreateParams(accountID string, fetched []plaid.InvestmentTransaction, securities map[string]plaid.Security) ([]transaction.CreateParams, error) {
	params := make([]transaction.CreateParams, 0, len(fetched))
	for i := range fetched {
		tx := &fetched[i]
		date, err := tx.GetDate()
		if err != nil {
			return nil, err
		}

		price := tx.Price
		quantity := tx.Quantity
		txType := tx.Type
		txSubtype := tx.Subtype
		p := transaction.CreateParams{
			AccountID:             accountID,
			ProviderTransactionID: tx.InvestmentTransactionID,
			Date:                  date,
			Name:                  tx.Name,
			Amount:                tx.Amount,
			ISOCurrencyCode:       tx.ISOCurrencyCode,
			Fees:                  tx.Fees,
			Price:                 &price,
			Quantity:              &quantity,
			SecurityID:            tx.SecurityID,
			Type:                  &txType,
			Subtype:               &txSubtype,
		}
		if tx.SecurityID != nil {
			if sec, ok := securities[*tx.SecurityID]; ok {
				p.SecurityName = sec.Name
				p.TickerSymbol = sec.TickerSymbol
				p.ISIN = sec.ISIN
				p.CUSIP = sec.CUSIP
				p.SecurityType = sec.Type
				p.ClosePrice = sec.ClosePrice
			}
		}
		params = append(params, p)
	}
	return params, nil
}
