package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"networth/internal/domain/account"
)

type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

var _ account.ItemRepository = (*ItemRepository)(nil)

const itemColumns = `id, provider, item_id, access_token, institution_id, institution_name, sync_cursor, created_at, updated_at`

func (r *ItemRepository) Create(ctx context.Context, params account.CreateItemParams) (*account.Item, error) {
	query := `
		INSERT INTO items (id, provider, item_id, access_token, institution_id, institution_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + itemColumns

	item, err := scanItem(r.db.QueryRowContext(
		ctx, query,
		uuid.New().String(), params.Provider, params.ItemID, params.AccessToken,
		params.InstitutionID, params.InstitutionName,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*account.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) FindByProviderInstitution(ctx context.Context, provider, institutionID string) (*account.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE provider = $1 AND institution_id = $2
		ORDER BY created_at ASC
		LIMIT 1
	`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, provider, institutionID))
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) UpdateSyncCursor(ctx context.Context, id, cursor string) error {
	query := `
		UPDATE items
		SET sync_cursor = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, cursor, id)
	if err != nil {
		return fmt.Errorf("failed to update sync cursor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return account.ErrItemNotFound
	}
	return nil
}

func scanItem(s scanner) (*account.Item, error) {
	var item account.Item
	err := s.Scan(
		&item.ID, &item.Provider, &item.ItemID, &item.AccessToken,
		&item.InstitutionID, &item.InstitutionName, &item.SyncCursor,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
