package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"networth/internal/domain/transaction"
)

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

var _ transaction.Repository = (*TransactionRepository)(nil)

const transactionColumns = `id, account_id, provider_transaction_id, date, authorized_date, name,
	merchant_name, merchant_entity_id, amount, category, personal_finance_category, pending,
	iso_currency_code, payment_channel, payee, payment_method,
	location_city, location_region, location_country,
	fees, price, quantity, security_id, ticker_symbol, isin, cusip,
	security_name, security_type, close_price, type, subtype,
	created_at, updated_at`

const insertTransactionSQL = `
	INSERT INTO transactions (id, account_id, provider_transaction_id, date, authorized_date, name,
		merchant_name, merchant_entity_id, amount, category, personal_finance_category, pending,
		iso_currency_code, payment_channel, payee, payment_method,
		location_city, location_region, location_country,
		fees, price, quantity, security_id, ticker_symbol, isin, cusip,
		security_name, security_type, close_price, type, subtype)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)`

func insertArgs(p *transaction.CreateParams) []any {
	return []any{
		uuid.New().String(), p.AccountID, p.ProviderTransactionID, p.Date, p.AuthorizedDate, p.Name,
		p.MerchantName, p.MerchantEntityID, p.Amount, p.Category, p.PersonalFinanceCategory, p.Pending,
		p.ISOCurrencyCode, p.PaymentChannel, p.Payee, p.PaymentMethod,
		p.LocationCity, p.LocationRegion, p.LocationCountry,
		p.Fees, p.Price, p.Quantity, p.SecurityID, p.TickerSymbol, p.ISIN, p.CUSIP,
		p.SecurityName, p.SecurityType, p.ClosePrice, p.Type, p.Subtype,
	}
}

// BulkCreateIfAbsent inserts all entries in one transaction. The unique index
// on (account_id, provider_transaction_id) plus DO NOTHING gives first-write-
// wins; zero rows affected means the entry already existed.
func (r *TransactionRepository) BulkCreateIfAbsent(ctx context.Context, params []transaction.CreateParams) ([]transaction.UpsertOutcome, error) {
	outcomes := make([]transaction.UpsertOutcome, len(params))
	if len(params) == 0 {
		return outcomes, nil
	}

	query := insertTransactionSQL + `
	ON CONFLICT (account_id, provider_transaction_id) DO NOTHING`

	err := r.db.WithinTx(ctx, "db.Tx.BulkCreateIfAbsent", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i := range params {
			result, err := stmt.ExecContext(ctx, insertArgs(&params[i])...)
			if err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", params[i].ProviderTransactionID, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get affected rows: %w", err)
			}
			if n > 0 {
				outcomes[i] = transaction.OutcomeInserted
			} else {
				outcomes[i] = transaction.OutcomeSkippedDuplicate
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (r *TransactionRepository) UpsertOverwrite(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	query := insertTransactionSQL + `
	ON CONFLICT (account_id, provider_transaction_id) DO UPDATE SET
		amount = EXCLUDED.amount,
		pending = EXCLUDED.pending,
		merchant_name = EXCLUDED.merchant_name,
		updated_at = CURRENT_TIMESTAMP
	RETURNING ` + transactionColumns

	tx, err := scanTransaction(r.db.QueryRowContext(ctx, query, insertArgs(&params)...))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return tx, nil
}

func (r *TransactionRepository) UpdateByProviderID(ctx context.Context, accountID, providerTransactionID string, params transaction.UpdateParams) (int64, error) {
	query := `
		UPDATE transactions
		SET date = $1,
		    name = $2,
		    amount = $3,
		    category = $4,
		    merchant_name = $5,
		    pending = $6,
		    updated_at = CURRENT_TIMESTAMP
		WHERE account_id = $7 AND provider_transaction_id = $8
	`

	result, err := r.db.ExecContext(
		ctx, query,
		params.Date, params.Name, params.Amount, params.Category,
		params.MerchantName, params.Pending,
		accountID, providerTransactionID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

func (r *TransactionRepository) DeleteByProviderIDs(ctx context.Context, accountID string, providerTransactionIDs []string) (int64, error) {
	if len(providerTransactionIDs) == 0 {
		return 0, nil
	}

	query := `
		DELETE FROM transactions
		WHERE account_id = $1 AND provider_transaction_id = ANY($2)
	`

	result, err := r.db.ExecContext(ctx, query, accountID, pq.Array(providerTransactionIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// ReplaceWindow clears [start, end] and re-inserts the fetched set in one
// transaction, so a failed replace leaves the stored window untouched.
func (r *TransactionRepository) ReplaceWindow(ctx context.Context, accountID string, start, end time.Time, params []transaction.CreateParams) (int, error) {
	inserted := 0
	err := r.db.WithinTx(ctx, "db.Tx.ReplaceWindow", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM transactions
			WHERE account_id = $1 AND date >= $2 AND date <= $3
		`, accountID, start, end)
		if err != nil {
			return fmt.Errorf("failed to clear transaction window: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, insertTransactionSQL)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i := range params {
			if _, err := stmt.ExecContext(ctx, insertArgs(&params[i])...); err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", params[i].ProviderTransactionID, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction
	err := s.Scan(
		&tx.ID, &tx.AccountID, &tx.ProviderTransactionID, &tx.Date, &tx.AuthorizedDate, &tx.Name,
		&tx.MerchantName, &tx.MerchantEntityID, &tx.Amount, &tx.Category, &tx.PersonalFinanceCategory, &tx.Pending,
		&tx.ISOCurrencyCode, &tx.PaymentChannel, &tx.Payee, &tx.PaymentMethod,
		&tx.LocationCity, &tx.LocationRegion, &tx.LocationCountry,
		&tx.Fees, &tx.Price, &tx.Quantity, &tx.SecurityID, &tx.TickerSymbol, &tx.ISIN, &tx.CUSIP,
		&tx.SecurityName, &tx.SecurityType, &tx.ClosePrice, &tx.Type, &tx.Subtype,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
