package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"networth/internal/domain/sync"
)

type DownloadLogRepository struct {
	db *DB
}

func NewDownloadLogRepository(db *DB) *DownloadLogRepository {
	return &DownloadLogRepository{db: db}
}

var _ sync.LogRepository = (*DownloadLogRepository)(nil)

const downloadLogColumns = `id, account_id, start_date, end_date, num_transactions, status, error_message, created_at`

func (r *DownloadLogRepository) Create(ctx context.Context, params sync.CreateLogParams) (*sync.DownloadLog, error) {
	query := `
		INSERT INTO download_logs (id, account_id, start_date, end_date, num_transactions, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + downloadLogColumns

	entry, err := scanDownloadLog(r.db.QueryRowContext(
		ctx, query,
		uuid.New().String(), params.AccountID, params.StartDate, params.EndDate,
		params.NumTransactions, params.Status, params.ErrorMessage,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create download log: %w", err)
	}
	return entry, nil
}

func (r *DownloadLogRepository) ListByAccountID(ctx context.Context, accountID string) ([]*sync.DownloadLog, error) {
	query := `
		SELECT ` + downloadLogColumns + `
		FROM download_logs
		WHERE account_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list download logs: %w", err)
	}
	defer rows.Close()

	var entries []*sync.DownloadLog
	for rows.Next() {
		entry, err := scanDownloadLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan download log: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating download logs: %w", err)
	}
	return entries, nil
}

func scanDownloadLog(s scanner) (*sync.DownloadLog, error) {
	var entry sync.DownloadLog
	err := s.Scan(
		&entry.ID, &entry.AccountID, &entry.StartDate, &entry.EndDate,
		&entry.NumTransactions, &entry.Status, &entry.ErrorMessage, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
