package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"networth/internal/domain/account"
	"networth/internal/domain/transaction"
)

// Service orchestrates transaction syncs: it resolves the account and its
// item, picks the reconciliation strategy for the account type, and exposes
// the download log.
type Service struct {
	accounts     account.Repository
	items        account.ItemRepository
	transactions transaction.Repository
	logs         LogRepository
	delta        Strategy
	window       Strategy
	now          func() time.Time
}

// NewService creates a sync service with the two reconciliation strategies.
func NewService(accounts account.Repository, items account.ItemRepository, transactions transaction.Repository, logs LogRepository, delta, window Strategy) *Service {
	return &Service{
		accounts:     accounts,
		items:        items,
		transactions: transactions,
		logs:         logs,
		delta:        delta,
		window:       window,
		now:          time.Now,
	}
}

// Download runs one sync for the account. Investment accounts use the
// full-window-replace strategy, everything else the delta feed. Window
// failures are recorded in the download log here; the delta strategy records
// its own failures.
func (s *Service) Download(ctx context.Context, accountID string) (*Result, error) {
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

	strat := s.delta
	if acct.UsesWindowSync() {
		strat = s.window
	}

	log.Printf("Account %s: starting %s sync", acct.ID, strat.Name())

	result, err := strat.Sync(ctx, item, acct)
	if err != nil {
		if _, ok := strat.(*WindowStrategy); ok {
			s.logFailure(ctx, acct.ID, err)
		}
		return nil, err
	}
	return result, nil
}

// Downloads lists the download log for an account, newest first.
func (s *Service) Downloads(ctx context.Context, accountID string) ([]*DownloadLog, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil {
		return nil, account.ErrAccountNotFound
	}
	return s.logs.ListByAccountID(ctx, accountID)
}

// Transactions lists the stored transactions for an account, newest first.
func (s *Service) Transactions(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Transaction, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil {
		return nil, account.ErrAccountNotFound
	}
	return s.transactions.ListByAccountID(ctx, accountID, limit, offset)
}

func (s *Service) logFailure(ctx context.Context, accountID string, syncErr error) {
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
