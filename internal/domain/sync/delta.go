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

// DefaultPageSize is how many feed entries each sync page requests.
const DefaultPageSize = 500

// DeltaClient is the slice of the Plaid client the delta strategy uses.
type DeltaClient interface {
	TransactionsSync(ctx context.Context, accessToken, cursor string, count int) (*plaid.TransactionsSyncResponse, error)
}

// DeltaStrategy reconciles via the provider's cursor-based change feed:
// modifications and removals are applied eagerly per page, additions are
// accumulated and inserted in one all-or-nothing batch after pagination,
// keyed by (accountId, providerTransactionId) with first-write-wins.
type DeltaStrategy struct {
	client       DeltaClient
	transactions transaction.Repository
	items        account.ItemRepository
	logs         LogRepository
	pageSize     int
	now          func() time.Time
}

// NewDeltaStrategy creates the delta-sync reconciliation strategy.
func NewDeltaStrategy(client DeltaClient, transactions transaction.Repository, items account.ItemRepository, logs LogRepository) *DeltaStrategy {
	return &DeltaStrategy{
		client:       client,
		transactions: transactions,
		items:        items,
		logs:         logs,
		pageSize:     DefaultPageSize,
		now:          time.Now,
	}
}

// Name implements Strategy.
func (s *DeltaStrategy) Name() string { return "delta" }

// Sync implements Strategy. On failure it writes its own error log entry
// before returning; no entries from the pending added batch are applied.
func (s *DeltaStrategy) Sync(ctx context.Context, item *account.Item, acct *account.Account) (*Result, error) {
	result, err := s.sync(ctx, item, acct)
	if err != nil {
		s.logFailure(ctx, acct.ID, err)
		return nil, err
	}
	return result, nil
}

func (s *DeltaStrategy) sync(ctx context.Context, item *account.Item, acct *account.Account) (*Result, error) {
	cursor := ""
	if item.SyncCursor != nil {
		cursor = *item.SyncCursor
	}

	result := &Result{Strategy: s.Name()}
	var added []plaid.Transaction

	for {
		page, err := s.client.TransactionsSync(ctx, item.AccessToken, cursor, s.pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch sync page: %w", err)
		}

		log.Printf("Account %s: sync page added=%d modified=%d removed=%d has_more=%v",
			acct.ID, len(page.Added), len(page.Modified), len(page.Removed), page.HasMore)

		// The feed multiplexes every account on the item.
		added = append(added, filterByAccount(page.Added, acct.ProviderAccountID)...)

		for _, modified := range filterByAccount(page.Modified, acct.ProviderAccountID) {
			n, err := s.applyModification(ctx, acct.ID, modified)
			if err != nil {
				return nil, err
			}
			// A modification with no matching row is a no-op, not an error.
			result.Modified += int(n)
		}

		var removedIDs []string
		for _, removed := range page.Removed {
			if removed.AccountID == acct.ProviderAccountID {
				removedIDs = append(removedIDs, removed.TransactionID)
			}
		}
		if len(removedIDs) > 0 {
			n, err := s.transactions.DeleteByProviderIDs(ctx, acct.ID, removedIDs)
			if err != nil {
				return nil, fmt.Errorf("failed to delete removed transactions: %w", err)
			}
			result.Removed += int(n)
		}

		cursor = page.NextCursor
		if !page.HasMore {
			break
		}
	}

	params, err := s.toCreateParams(acct.ID, added)
	if err != nil {
		return nil, err
	}

	outcomes, err := s.transactions.BulkCreateIfAbsent(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to insert added transactions: %w", err)
	}
	for _, outcome := range outcomes {
		if outcome == transaction.OutcomeInserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}
	result.Added = len(added)

	start, end, err := dateRange(added, s.now)
	if err != nil {
		return nil, err
	}

	// Persist the cursor before the success log. A cursor failure then
	// yields a single error entry instead of a success entry followed by
	// an error entry for the same attempt.
	if err := s.items.UpdateSyncCursor(ctx, item.ID, cursor); err != nil {
		return nil, fmt.Errorf("failed to persist sync cursor: %w", err)
	}

	entry, err := s.logs.Create(ctx, CreateLogParams{
		AccountID:       acct.ID,
		StartDate:       start,
		EndDate:         end,
		NumTransactions: len(added),
		Status:          StatusSuccess,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write download log: %w", err)
	}
	result.Log = entry

	log.Printf("Account %s: delta sync complete added=%d inserted=%d skipped=%d modified=%d removed=%d",
		acct.ID, result.Added, result.Inserted, result.Skipped, result.Modified, result.Removed)

	return result, nil
}

func (s *DeltaStrategy) applyModification(ctx context.Context, accountID string, tx plaid.Transaction) (int64, error) {
	date, err := tx.GetDate()
	if err != nil {
		return 0, err
	}
	return s.transactions.UpdateByProviderID(ctx, accountID, tx.TransactionID, transaction.UpdateParams{
		Date:         date,
		Name:         tx.Name,
		Amount:       tx.Amount,
		Category:     tx.PrimaryCategory(),
		MerchantName: tx.MerchantName,
		Pending:      tx.Pending,
	})
}

func (s *DeltaStrategy) toCreateParams(accountID string, added []plaid.Transaction) ([]transaction.CreateParams, error) {
	params := make([]transaction.CreateParams, 0, len(added))
	for i := range added {
		tx := &added[i]
		date, err := tx.GetDate()
		if err != nil {
			return nil, err
		}
		authorized, err := tx.GetAuthorizedDate()
		if err != nil {
			return nil, err
		}

		p := transaction.CreateParams{
			AccountID:             accountID,
			ProviderTransactionID: tx.TransactionID,
			Date:                  date,
			AuthorizedDate:        authorized,
			Name:                  tx.Name,
			MerchantName:          tx.MerchantName,
			MerchantEntityID:      tx.MerchantEntityID,
			Amount:                tx.Amount,
			Category:              tx.PrimaryCategory(),
			Pending:               tx.Pending,
			ISOCurrencyCode:       tx.ISOCurrencyCode,
			PaymentChannel:        tx.PaymentChannel,
		}
		if tx.PersonalFinanceCategory != nil {
			p.PersonalFinanceCategory = &tx.PersonalFinanceCategory.Primary
		}
		if tx.PaymentMeta != nil {
			p.Payee = tx.PaymentMeta.Payee
			p.PaymentMethod = tx.PaymentMeta.PaymentMethod
		}
		if tx.Location != nil {
			p.LocationCity = tx.Location.City
			p.LocationRegion = tx.Location.Region
			p.LocationCountry = tx.Location.Country
		}
		params = append(params, p)
	}
	return params, nil
}

// logFailure appends an error entry; the sync has already failed, so a log
// write error is only logged, not returned.
func (s *DeltaStrategy) logFailure(ctx context.Context, accountID string, syncErr error) {
	msg := syncErr.Error()
	now := s.now()
	_, err := s.logs.Create(ctx, CreateLogParams{
		AccountID:       accountID,
		StartDate:       now,
		EndDate:         now,
		NumTransactions: 0,
		Status:          StatusError,
		ErrorMessage:    &msg,
	})
	if err != nil {
		log.Printf("Account %s: failed to write error download log: %v", accountID, err)
	}
}

func filterByAccount(txs []plaid.Transaction, providerAccountID string) []plaid.Transaction {
	var out []plaid.Transaction
	for _, tx := range txs {
		if tx.AccountID == providerAccountID {
			out = append(out, tx)
		}
	}
	return out
}

// dateRange returns the min and max transaction dates of the added set, or
// (now, now) when the set is empty.
func dateRange(added []plaid.Transaction, now func() time.Time) (time.Time, time.Time, error) {
	if len(added) == 0 {
		n := now()
		return n, n, nil
	}

	var start, end time.Time
	for i := range added {
		date, err := added[i].GetDate()
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if start.IsZero() || date.Before(start) {
			start = date
		}
		if end.IsZero() || date.After(end) {
			end = date
		}
	}
	return start, end, nil
}
