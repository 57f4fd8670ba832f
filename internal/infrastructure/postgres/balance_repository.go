package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"networth/internal/domain/balance"
)

type BalanceRepository struct {
	db *DB
}

func NewBalanceRepository(db *DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

var _ balance.Repository = (*BalanceRepository)(nil)

const balanceColumns = `id, account_id, current, available, credit_limit, date, created_at`

func (r *BalanceRepository) Create(ctx context.Context, params balance.CreateParams) (*balance.Record, error) {
	query := `
		INSERT INTO account_balances (id, account_id, current, available, credit_limit, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + balanceColumns

	record, err := scanBalance(r.db.QueryRowContext(
		ctx, query,
		uuid.New().String(), params.AccountID, params.Current,
		params.Available, params.Limit, params.Date,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create balance record: %w", err)
	}
	return record, nil
}

func (r *BalanceRepository) GetByID(ctx context.Context, id string) (*balance.Record, error) {
	query := `SELECT ` + balanceColumns + ` FROM account_balances WHERE id = $1`

	record, err := scanBalance(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance record: %w", err)
	}
	return record, nil
}

func (r *BalanceRepository) ListByAccountID(ctx context.Context, accountID string) ([]*balance.Record, error) {
	return r.list(ctx, accountID, "DESC")
}

func (r *BalanceRepository) ListByAccountIDAsc(ctx context.Context, accountID string) ([]*balance.Record, error) {
	return r.list(ctx, accountID, "ASC")
}

func (r *BalanceRepository) list(ctx context.Context, accountID, direction string) ([]*balance.Record, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM account_balances
		WHERE account_id = $1
		ORDER BY date ` + direction

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balance records: %w", err)
	}
	defer rows.Close()

	var records []*balance.Record
	for rows.Next() {
		record, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance record: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balance records: %w", err)
	}
	return records, nil
}

func (r *BalanceRepository) Latest(ctx context.Context, accountID string) (*balance.Record, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM account_balances
		WHERE account_id = $1
		ORDER BY date DESC
		LIMIT 1
	`

	record, err := scanBalance(r.db.QueryRowContext(ctx, query, accountID))
	if err == sql.ErrNoRows {
		return nil, nil // No history yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest balance: %w", err)
	}
	return record, nil
}

func (r *BalanceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM account_balances WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete balance record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return balance.ErrRecordNotFound
	}
	return nil
}

func (r *BalanceRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM account_balances WHERE id = ANY($1)`

	result, err := r.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete balance records: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

func scanBalance(s scanner) (*balance.Record, error) {
	var record balance.Record
	err := s.Scan(
		&record.ID, &record.AccountID, &record.Current, &record.Available,
		&record.Limit, &record.Date, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
