package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"networth/internal/domain/account"
)

type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

var _ account.Repository = (*AccountRepository)(nil)

const accountColumns = `id, item_id, provider_account_id, name, nickname, type, subtype, mask, hidden, created_at, updated_at`

func (r *AccountRepository) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	query := `
		INSERT INTO accounts (id, item_id, provider_account_id, name, type, subtype, mask)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + accountColumns

	row := r.db.QueryRowContext(
		ctx, query,
		uuid.New().String(), params.ItemID, params.ProviderAccountID,
		params.Name, params.Type, params.Subtype, params.Mask,
	)

	acct, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return acct, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acct, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acct, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) UpdateNickname(ctx context.Context, id string, nickname *string) (*account.Account, error) {
	query := `
		UPDATE accounts
		SET nickname = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING ` + accountColumns

	acct, err := scanAccount(r.db.QueryRowContext(ctx, query, nickname, id))
	if err == sql.ErrNoRows {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update nickname: %w", err)
	}
	return acct, nil
}

func (r *AccountRepository) SetHidden(ctx context.Context, id string, hidden bool) (*account.Account, error) {
	query := `
		UPDATE accounts
		SET hidden = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING ` + accountColumns

	acct, err := scanAccount(r.db.QueryRowContext(ctx, query, hidden, id))
	if err == sql.ErrNoRows {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set hidden: %w", err)
	}
	return acct, nil
}

// scanner abstracts *sql.Rows and the traced row so one scan routine serves
// both.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*account.Account, error) {
	var acct account.Account
	err := s.Scan(
		&acct.ID, &acct.ItemID, &acct.ProviderAccountID, &acct.Name,
		&acct.Nickname, &acct.Type, &acct.Subtype, &acct.Mask, &acct.Hidden,
		&acct.CreatedAt, &acct.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}
