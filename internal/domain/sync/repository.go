package sync

import "context"

// LogRepository defines the append-only interface for download log access.
type LogRepository interface {
	// Create appends one download log entry
	Create(ctx context.Context, params CreateLogParams) (*DownloadLog, error)

	// ListByAccountID retrieves log entries for an account, newest first
	ListByAccountID(ctx context.Context, accountID string) ([]*DownloadLog, error)
}
