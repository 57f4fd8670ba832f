// Package sync implements transaction reconciliation between provider feeds
// and the persisted transaction set, plus the download audit log.
package sync

import "time"

// Download log statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DownloadLog records one sync attempt for an account. Entries are
// append-only; they are never mutated or deleted.
type DownloadLog struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"accountId"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	NumTransactions int       `json:"numTransactions"`
	Status          string    `json:"status"`
	ErrorMessage    *string   `json:"errorMessage"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateLogParams contains parameters for appending a download log entry.
type CreateLogParams struct {
	AccountID       string
	StartDate       time.Time
	EndDate         time.Time
	NumTransactions int
	Status          string
	ErrorMessage    *string
}

// Result reports what one sync applied to the store.
type Result struct {
	Strategy string       `json:"strategy"`
	Added    int          `json:"added"`
	Inserted int          `json:"inserted"`
	Skipped  int          `json:"skipped"`
	Modified int          `json:"modified"`
	Removed  int          `json:"removed"`
	Log      *DownloadLog `json:"downloadLog"`
}
