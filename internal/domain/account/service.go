package account

import (
	"context"
	"fmt"
)

// Service contains the business logic for account operations
type Service struct {
	repo Repository
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetAccount retrieves an account by ID
func (s *Service) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	acct, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil {
		return nil, ErrAccountNotFound
	}
	return acct, nil
}

// ListAccounts retrieves all accounts
func (s *Service) ListAccounts(ctx context.Context) ([]*Account, error) {
	return s.repo.List(ctx)
}

// UpdateNickname sets or clears the nickname for an account
func (s *Service) UpdateNickname(ctx context.Context, accountID string, nickname *string) (*Account, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	if nickname != nil && *nickname == "" {
		nickname = nil
	}
	return s.repo.UpdateNickname(ctx, accountID, nickname)
}

// ToggleVisibility flips the hidden flag for an account and returns the
// updated record.
func (s *Service) ToggleVisibility(ctx context.Context, accountID string) (*Account, error) {
	acct, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.repo.SetHidden(ctx, accountID, !acct.Hidden)
}
