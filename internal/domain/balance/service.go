package balance

import (
	"context"
	"fmt"
	"log"
	"time"

	"networth/internal/domain/account"
)

// Service contains the business logic for balance history maintenance.
type Service struct {
	repo     Repository
	accounts account.Repository
	items    account.ItemRepository
	sources  map[string]Source
	now      func() time.Time
}

// NewService creates a new balance service. sources maps a provider name to
// the client that can fetch that provider's current balances.
func NewService(repo Repository, accounts account.Repository, items account.ItemRepository, sources map[string]Source) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		items:    items,
		sources:  sources,
		now:      time.Now,
	}
}

// Refresh fetches the account's current balance from its provider, appends a
// record dated now, and reports the change versus the previous record.
func (s *Service) Refresh(ctx context.Context, accountID string) (*RefreshResult, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil {
		return nil, account.ErrAccountNotFound
	}

	item, err := s.items.GetByID(ctx, acct.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, account.ErrItemNotFound
	}

	source, ok := s.sources[item.Provider]
	if !ok {
		return nil, fmt.Errorf("no balance source for provider %q", item.Provider)
	}

	previous := 0.0
	if latest, err := s.repo.Latest(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to get latest balance: %w", err)
	} else if latest != nil {
		previous = latest.Current
	}

	snapshot, err := source.CurrentBalance(ctx, item, acct)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance from %s: %w", item.Provider, err)
	}

	record, err := s.repo.Create(ctx, CreateParams{
		AccountID: accountID,
		Current:   snapshot.Current,
		Available: snapshot.Available,
		Limit:     snapshot.Limit,
		Date:      s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create balance record: %w", err)
	}

	log.Printf("Refreshed balance for account %s: %.2f (change %.2f)", accountID, record.Current, record.Current-previous)

	return &RefreshResult{
		Record:   record,
		Previous: previous,
		Change:   record.Current - previous,
	}, nil
}

// Backfill synthesizes a first-of-month balance record for every month
// between BackfillEpoch and the current month that has none, carrying
// forward the oldest known balance. Returns the number of records created.
func (s *Service) Backfill(ctx context.Context, accountID string) (int, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil {
		return 0, account.ErrAccountNotFound
	}

	records, err := s.repo.ListByAccountIDAsc(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to list balances: %w", err)
	}
	if len(records) == 0 {
		return 0, ErrNoBalances
	}

	oldest := records[0]

	// Months already covered, keyed by exact start-of-month timestamp.
	covered := make(map[time.Time]struct{}, len(records))
	for _, r := range records {
		covered[StartOfMonth(r.Date)] = struct{}{}
	}

	created := 0
	last := StartOfMonth(s.now())
	for month := BackfillEpoch; !month.After(last); month = month.AddDate(0, 1, 0) {
		if _, ok := covered[month]; ok {
			continue
		}
		_, err := s.repo.Create(ctx, CreateParams{
			AccountID: accountID,
			Current:   oldest.Current,
			Available: oldest.Available,
			Limit:     oldest.Limit,
			Date:      month,
		})
		if err != nil {
			return created, fmt.Errorf("failed to backfill month %s: %w", month.Format("2006-01"), err)
		}
		created++
	}

	log.Printf("Backfilled %d monthly balance records for account %s", created, accountID)
	return created, nil
}

// DedupDaily deletes all but the most recent balance record per calendar day
// and returns the number deleted.
func (s *Service) DedupDaily(ctx context.Context, accountID string) (int64, error) {
	return s.dedupByPeriod(ctx, accountID, "2006-01-02")
}

// DedupMonthly deletes all but the most recent balance record per calendar
// month and returns the number deleted.
func (s *Service) DedupMonthly(ctx context.Context, accountID string) (int64, error) {
	return s.dedupByPeriod(ctx, accountID, "2006-01")
}

// dedupByPeriod groups records by the date formatted with layout. The input
// is ordered newest first, so the first record seen per group is the keeper.
func (s *Service) dedupByPeriod(ctx context.Context, accountID, layout string) (int64, error) {
	records, err := s.repo.ListByAccountID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to list balances: %w", err)
	}

	seen := make(map[string]struct{})
	var doomed []string
	for _, r := range records {
		key := r.Date.UTC().Format(layout)
		if _, ok := seen[key]; ok {
			doomed = append(doomed, r.ID)
			continue
		}
		seen[key] = struct{}{}
	}

	if len(doomed) == 0 {
		return 0, nil
	}

	deleted, err := s.repo.DeleteByIDs(ctx, doomed)
	if err != nil {
		return 0, fmt.Errorf("failed to delete duplicate records: %w", err)
	}

	log.Printf("Deleted %d duplicate balance records for account %s", deleted, accountID)
	return deleted, nil
}

// History returns the account's balance records, newest first.
func (s *Service) History(ctx context.Context, accountID string) ([]*Record, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil {
		return nil, account.ErrAccountNotFound
	}
	return s.repo.ListByAccountID(ctx, accountID)
}

// DeleteRecord removes one balance record after verifying it belongs to the
// given account.
func (s *Service) DeleteRecord(ctx context.Context, accountID, recordID string) error {
	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("failed to get balance record: %w", err)
	}
	if record == nil || record.AccountID != accountID {
		return ErrRecordNotFound
	}
	return s.repo.Delete(ctx, recordID)
}
