// Package link implements provider onboarding flows that turn provider
// credentials into persisted items, accounts, and seed data.
package link

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"networth/internal/domain/account"
	"networth/internal/domain/balance"
	"networth/internal/domain/transaction"
	"networth/internal/infrastructure/simplefin"
)

// ClaimResult reports what a SimpleFIN claim created.
type ClaimResult struct {
	Items        []*account.Item    `json:"items"`
	Accounts     []*account.Account `json:"accounts"`
	Transactions int                `json:"transactions"`
	Warnings     []string           `json:"warnings"`
}

// Service wires provider onboarding into the stores.
type Service struct {
	simplefin    simplefin.ClientInterface
	items        account.ItemRepository
	accounts     account.Repository
	balances     balance.Repository
	transactions transaction.Repository
	now          func() time.Time
}

// NewService creates a link service.
func NewService(sf simplefin.ClientInterface, items account.ItemRepository, accounts account.Repository, balances balance.Repository, transactions transaction.Repository) *Service {
	return &Service{
		simplefin:    sf,
		items:        items,
		accounts:     accounts,
		balances:     balances,
		transactions: transactions,
		now:          time.Now,
	}
}

// ClaimSimpleFIN exchanges a one-time setup token for an access URL, then
// persists one item per institution, one account per snapshot, the snapshot
// balance, and the embedded transactions. Claiming is not idempotent at the
// bridge (the token burns on first use), so persistence failures after the
// claim surface the access URL loss to the caller as an error.
func (s *Service) ClaimSimpleFIN(ctx context.Context, setupToken string) (*ClaimResult, error) {
	accessURL, err := s.simplefin.ClaimSetupToken(ctx, setupToken)
	if err != nil {
		return nil, fmt.Errorf("failed to claim setup token: %w", err)
	}

	resp, err := s.simplefin.FetchAccounts(ctx, accessURL, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	result := &ClaimResult{Warnings: resp.Errors}
	itemsByDomain := make(map[string]*account.Item)

	for i := range resp.Accounts {
		sf := &resp.Accounts[i]

		item, err := s.itemForOrg(ctx, sf.Org, accessURL, itemsByDomain, result)
		if err != nil {
			return nil, err
		}

		acct, err := s.createAccount(ctx, item, sf)
		if err != nil {
			return nil, err
		}
		result.Accounts = append(result.Accounts, acct)

		if err := s.seedBalance(ctx, acct, sf); err != nil {
			return nil, err
		}

		n, err := s.seedTransactions(ctx, acct, sf)
		if err != nil {
			return nil, err
		}
		result.Transactions += n
	}

	log.Printf("SimpleFIN claim complete: %d items, %d accounts, %d transactions",
		len(result.Items), len(result.Accounts), result.Transactions)

	return result, nil
}

// itemForOrg returns the item for an institution, reusing an existing link
// for the same org domain or creating a fresh one with the new access URL.
func (s *Service) itemForOrg(ctx context.Context, org simplefin.Org, accessURL string, cache map[string]*account.Item, result *ClaimResult) (*account.Item, error) {
	if item, ok := cache[org.Domain]; ok {
		return item, nil
	}

	item, err := s.items.FindByProviderInstitution(ctx, account.ProviderSimpleFIN, org.Domain)
	if err != nil {
		return nil, fmt.Errorf("failed to look up institution link: %w", err)
	}
	if item == nil {
		domain := org.Domain
		name := org.Name
		if name == "" {
			name = org.Domain
		}
		item, err = s.items.Create(ctx, account.CreateItemParams{
			Provider:        account.ProviderSimpleFIN,
			ItemID:          fmt.Sprintf("simplefin_%s_%d", org.Domain, s.now().UnixMilli()),
			AccessToken:     accessURL,
			InstitutionID:   &domain,
			InstitutionName: &name,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create institution link: %w", err)
		}
		result.Items = append(result.Items, item)
	}

	cache[org.Domain] = item
	return item, nil
}

func (s *Service) createAccount(ctx context.Context, item *account.Item, sf *simplefin.Account) (*account.Account, error) {
	accountType, subtype := simplefin.MapAccountType(sf.Name)
	mask := simplefin.AccountMask(sf.ID)
	acct, err := s.accounts.Create(ctx, account.CreateParams{
		ItemID:            item.ID,
		ProviderAccountID: "simplefin_" + sf.ID,
		Name:              sf.Name,
		Type:              accountType,
		Subtype:           subtype,
		Mask:              &mask,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", sf.Name, err)
	}
	return acct, nil
}

func (s *Service) seedBalance(ctx context.Context, acct *account.Account, sf *simplefin.Account) error {
	current, err := strconv.ParseFloat(sf.Balance, 64)
	if err != nil {
		return fmt.Errorf("failed to parse balance '%s': %w", sf.Balance, err)
	}

	params := balance.CreateParams{
		AccountID: acct.ID,
		Current:   current,
		Date:      sf.BalanceTime(),
	}
	if sf.AvailableBalance != nil {
		available, err := strconv.ParseFloat(*sf.AvailableBalance, 64)
		if err != nil {
			return fmt.Errorf("failed to parse available balance '%s': %w", *sf.AvailableBalance, err)
		}
		params.Available = &available
	}

	if _, err := s.balances.Create(ctx, params); err != nil {
		return fmt.Errorf("failed to seed balance: %w", err)
	}
	return nil
}

// seedTransactions upserts the snapshot's embedded transactions. Overwrite
// semantics let a re-linked institution refresh amounts and pending flags.
func (s *Service) seedTransactions(ctx context.Context, acct *account.Account, sf *simplefin.Account) (int, error) {
	count := 0
	for i := range sf.Transactions {
		tx := &sf.Transactions[i]
		amount, err := strconv.ParseFloat(tx.Amount, 64)
		if err != nil {
			return count, fmt.Errorf("failed to parse transaction amount '%s': %w", tx.Amount, err)
		}

		params := transaction.CreateParams{
			AccountID:             acct.ID,
			ProviderTransactionID: "simplefin_" + tx.ID,
			Date:                  tx.PostedTime(),
			Name:                  tx.Description,
			Amount:                amount,
			MerchantName:          tx.Payee,
			Pending:               tx.IsPending(),
		}
		if _, err := s.transactions.UpsertOverwrite(ctx, params); err != nil {
			return count, fmt.Errorf("failed to upsert transaction %s: %w", tx.ID, err)
		}
		count++
	}
	return count, nil
}
