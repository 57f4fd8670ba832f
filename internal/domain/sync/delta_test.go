package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"networth/internal/domain/transaction"
	"networth/internal/infrastructure/plaid"
)

func newDeltaForTest(client DeltaClient, txRepo *MockTransactionRepo, itemRepo *MockItemRepo, logRepo *MockLogRepo) *DeltaStrategy {
	s := NewDeltaStrategy(client, txRepo, itemRepo, logRepo)
	s.now = func() time.Time { return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestDeltaSync_SinglePage(t *testing.T) {
	client := &MockDeltaClient{
		TransactionsSyncFunc: func(ctx context.Context, accessToken, cursor string, count int) (*plaid.TransactionsSyncResponse, error) {
			return &plaid.TransactionsSyncResponse{
				Added: []plaid.Transaction{
					{AccountID: "plaid-acc-1", TransactionID: "tx-1", DateString: "2024-03-10", Name: "Coffee", Amount: 4.5},
					{AccountID: "plaid-acc-1", TransactionID: "tx-2", DateString: "2024-03-12", Name: "Groceries", Amount: 82.1},
					{AccountID: "other-acc", TransactionID: "tx-other", DateString: "2024-03-11", Name: "Not ours", Amount: 10},
				},
				Modified: []plaid.Transaction{
					{AccountID: "plaid-acc-1", TransactionID: "tx-old", DateString: "2024-02-01", Name: "Rent", Amount: 1500},
				},
				Removed: []plaid.RemovedTransaction{
					{AccountID: "plaid-acc-1", TransactionID: "tx-gone"},
					{AccountID: "other-acc", TransactionID: "tx-other-gone"},
				},
				HasMore:    false,
				NextCursor: "cursor-after",
			}, nil
		},
	}

	var bulkParams []transaction.CreateParams
	var deletedIDs []string
	txRepo := &MockTransactionRepo{
		BulkCreateIfAbsentFunc: func(ctx context.Context, params []transaction.CreateParams) ([]transaction.UpsertOutcome, error) {
			bulkParams = params
			return []transaction.UpsertOutcome{transaction.OutcomeInserted, transaction.OutcomeSkippedDuplicate}, nil
		},
		UpdateByProviderIDFunc: func(ctx context.Context, accountID, providerTransactionID string, params transaction.UpdateParams) (int64, error) {
			if providerTransactionID != "tx-old" {
				t.Errorf("unexpected modified id %q", providerTransactionID)
			}
			return 1, nil
		},
		DeleteByProviderIDsFunc: func(ctx context.Context, accountID string, providerTransactionIDs []string) (int64, error) {
			deletedIDs = providerTransactionIDs
			return 1, nil
		},
	}

	var savedCursor string
	itemRepo := &MockItemRepo{
		UpdateSyncCursorFunc: func(ctx context.Context, id, cursor string) error {
			savedCursor = cursor
			return nil
		},
	}
	logRepo := &MockLogRepo{}

	s := newDeltaForTest(client, txRepo, itemRepo, logRepo)
	result, err := s.Sync(context.Background(), testItem(), testAccount("depository"))
	if err != nil {
		t.Fatalf("Sync() failed: %v", err)
	}

	if result.Added != 2 || result.Inserted != 1 || result.Skipped != 1 {
		t.Errorf("result = added %d inserted %d skipped %d, want 2/1/1", result.Added, result.Inserted, result.Skipped)
	}
	if result.Modified != 1 {
		t.Errorf("Modified = %d, want 1", result.Modified)
	}
	if result.Removed != 1 {
		t.Errorf("Removed = %d, want 1", result.Removed)
	}
	if len(bulkParams) != 2 {
		t.Fatalf("bulk insert got %d entries, want 2", len(bulkParams))
	}
	for _, p := range bulkParams {
		if p.AccountID != "acc-1" {
			t.Errorf("insert AccountID = %q, want acc-1", p.AccountID)
		}
	}
	if len(deletedIDs) != 1 || deletedIDs[0] != "tx-gone" {
		t.Errorf("deleted IDs = %v, want [tx-gone]", deletedIDs)
	}
	if savedCursor != "cursor-after" {
		t.Errorf("saved cursor = %q, want cursor-after", savedCursor)
	}

	if len(logRepo.Created) != 1 {
		t.Fatalf("download log entries = %d, want 1", len(logRepo.Created))
	}
	entry := logRepo.Created[0]
	if entry.Status != StatusSuccess {
		t.Errorf("log status = %q, want success", entry.Status)
	}
	if entry.NumTransactions != 2 {
		t.Errorf("log NumTransactions = %d, want 2", entry.NumTransactions)
	}
	wantStart := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)
	if !entry.StartDate.Equal(wantStart) || !entry.EndDate.Equal(wantEnd) {
		t.Errorf("log range = %v..%v, want %v..%v", entry.StartDate, entry.EndDate, wantStart, wantEnd)
	}
}

func TestDeltaSync_MultiPage(t *testing.T) {
	pages := []*plaid.TransactionsSyncResponse{
		{
			Added:      []plaid.Transaction{{AccountID: "plaid-acc-1", TransactionID: "tx-1", DateString: "2024-01-01", Name: "a"}},
			HasMore:    true,
			NextCursor: "cursor-1",
		},
		{
			Added:      []plaid.Transaction{{AccountID: "plaid-acc-1", TransactionID: "tx-2", DateString: "2024-01-02", Name: "b"}},
			HasMore:    false,
			NextCursor: "cursor-2",
		},
	}

	var cursorsSeen []string
	client := &MockDeltaClient{
		TransactionsSyncFunc: func(ctx context.Context, accessToken, cursor string, count int) (*plaid.TransactionsSyncResponse, error) {
			cursorsSeen = append(cursorsSeen, cursor)
			page := pages[0]
			pages = pages[1:]
			return page, nil
		},
	}

	txRepo := &MockTransactionRepo{
		BulkCreateIfAbsentFunc: func(ctx context.Context, params []transaction.CreateParams) ([]transaction.UpsertOutcome, error) {
			if len(params) != 2 {
				t.Errorf("bulk insert got %d entries, want 2", len(params))
			}
			return []transaction.UpsertOutcome{transaction.OutcomeInserted, transaction.OutcomeInserted}, nil
		},
	}

	var savedCursor string
	itemRepo := &MockItemRepo{
		UpdateSyncCursorFunc: func(ctx context.Context, id, cursor string) error {
			savedCursor = cursor
			return nil
		},
	}

	item := testItem()
	stored := "cursor-stored"
	item.SyncCursor = &stored

	s := newDeltaForTest(client, txRepo, itemRepo, &MockLogRepo{})
	result, err := s.Sync(context.Background(), item, testAccount("credit"))
	if err != nil {
		t.Fatalf("Sync() failed: %v", err)
	}

	if len(cursorsSeen) != 2 || cursorsSeen[0] != "cursor-stored" || cursorsSeen[1] != "cursor-1" {
		t.Errorf("cursors seen = %v, want [cursor-stored cursor-1]", cursorsSeen)
	}
	if savedCursor != "cursor-2" {
		t.Errorf("saved cursor = %q, want cursor-2", savedCursor)
	}
	if result.Inserted != 2 {
		t.Errorf("Inserted = %d, want 2", result.Inserted)
	}
}

func TestDeltaSync_Replay(t *testing.T) {
	// Replaying the same feed must converge: every entry already exists and
	// is skipped, nothing is double-counted.
	client := &MockDeltaClient{
		TransactionsSyncFunc: func(ctx context.Context, accessToken, cursor string, count int) (*plaid.TransactionsSyncResponse, error) {
			return &plaid.TransactionsSyncResponse{
				Added: []plaid.Transaction{
					{AccountID: "plaid-acc-1", TransactionID: "tx-1", DateString: "2024-03-10", Name: "Coffee"},
					{AccountID: "plaid-acc-1", TransactionID: "tx-2", DateString: "2024-03-11", Name: "Lunch"},
				},
			}, nil
		},
	}

	txRepo := &MockTransactionRepo{
		BulkCreateIfAbsentFunc: func(ctx context.Context, params []transaction.CreateParams) ([]transaction.UpsertOutcome, error) {
			return []transaction.UpsertOutcome{transaction.OutcomeSkippedDuplicate, transaction.OutcomeSkippedDuplicate}, nil
		},
	}

	s := newDeltaForTest(client, txRepo, &MockItemRepo{}, &MockLogRepo{})
	result, err := s.Sync(context.Background(), testItem(), testAccount("depository"))
	if err != nil {
		t.Fatalf("Sync() failed: %v", err)
	}

	if result.Inserted != 0 || result.Skipped != 2 {
		t.Errorf("result = inserted %d skipped %d, want 0/2", result.Inserted, result.Skipped)
	}
}

func TestDeltaSync_ModifiedWithoutMatch(t *testing.T) {
	client := &MockDeltaClient{
		TransactionsSyncFunc: func(ctx context.Context, accessToken, cursor string, count int) (*plaid.TransactionsSyncResponse, error) {
			return &plaid.TransactionsSyncResponse{
				Modified: []plaid.Transaction{
					{AccountID: "plaid-acc-1", TransactionID: "tx-unknown", DateString: "2024-03-01", Name: "Ghost"},
				},
			}, nil
		},
	}

	txRepo := &MockTransactionRepo{
		UpdateByProviderIDFunc: func(ctx context.Context, accountID, providerTransactionID string, params transaction.UpdateParams) (int64, error) {
			return 0, nil
		},
	}

	s := newDeltaForTest(client, txRepo, &MockItemRepo{}, &MockLogRepo{})
	result, err := s.Sync(context.Background(), testItem(), testAccount("depository"))
	if err != nil {
		t.Fatalf("Sync() failed: %v", err)
	}
	if result.Modified != 0 {
		t.Errorf("Modified = %d, want 0 for unmatched modification", result.Modified)
	}
}

func TestDeltaSync_EmptyFeedLogsNow(t *testing.T) {
	client := &MockDeltaClient{
		TransactionsSyncFunc: func(ctx context.Context, accessToken, cursor string, count int) (*plaid.TransactionsSyncResponse, error) {
			return &plaid.TransactionsSyncResponse{NextCursor: "c"}, nil
		},
	}
	logRepo := &MockLogRepo{}

	s := newDeltaForTest(client, &MockTransactionRepo{}, &MockItemRepo{}, logRepo)
	if _, err := s.Sync(context.Background(), testItem(), testAccount("loan")); err != nil {
		t.Fatalf("Sync() failed: %v", err)
	}

	if len(logRepo.Created) != 1 {
		t.Fatalf("download log entries = %d, want 1", len(logRepo.Created))
	}
	entry := logRepo.Created[0]
	want := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	if !entry.StartDate.Equal(want) || !entry.EndDate.Equal(want) {
		t.Errorf("empty feed log range = %v..%v, want now..now", entry.StartDate, entry.EndDate)
	}
	if entry.NumTransactions != 0 {
		t.Errorf("NumTransactions = %d, want 0", entry.NumTransactions)
	}
}

func TestDeltaSync_ProviderErrorWritesErrorLog(t *testing.T) {
	providerErr := errors.New("provider down")
	client := &MockDeltaClient{
		TransactionsSyncFunc: func(ctx context.Context, accessToken, cursor string, count int) (*plaid.TransactionsSyncResponse, error) {
			return nil, providerErr
		},
	}

	bulkCalled := false
	txRepo := &MockTransactionRepo{
		BulkCreateIfAbsentFunc: func(ctx context.Context, params []transaction.CreateParams) ([]transaction.UpsertOutcome, error) {
			bulkCalled = true
			return nil, nil
		},
	}

	cursorSaved := false
	itemRepo := &MockItemRepo{
		UpdateSyncCursorFunc: func(ctx context.Context, id, cursor string) error {
			cursorSaved = true
			return nil
		},
	}
	logRepo := &MockLogRepo{}

	s := newDeltaForTest(client, txRepo, itemRepo, logRepo)
	_, err := s.Sync(context.Background(), testItem(), testAccount("depository"))
	if !errors.Is(err, providerErr) {
		t.Fatalf("Sync() error = %v, want wrapped provider error", err)
	}

	if bulkCalled {
		t.Error("bulk insert ran despite provider failure")
	}
	if cursorSaved {
		t.Error("cursor persisted despite provider failure")
	}
	if len(logRepo.Created) != 1 {
		t.Fatalf("download log entries = %d, want 1", len(logRepo.Created))
	}
	entry := logRepo.Created[0]
	if entry.Status != StatusError {
		t.Errorf("log status = %q, want error", entry.Status)
	}
	if entry.ErrorMessage == nil || *entry.ErrorMessage == "" {
		t.Error("error log missing message")
	}
}

func TestDeltaSync_CursorFailureLogsSingleError(t *testing.T) {
	client := &MockDeltaClient{
		TransactionsSyncFunc: func(ctx context.Context, accessToken, cursor string, count int) (*plaid.TransactionsSyncResponse, error) {
			return &plaid.TransactionsSyncResponse{
				Added:      []plaid.Transaction{{AccountID: "plaid-acc-1", TransactionID: "tx-1", DateString: "2024-03-10", Name: "x"}},
				NextCursor: "cursor-after",
			}, nil
		},
	}
	itemRepo := &MockItemRepo{
		UpdateSyncCursorFunc: func(ctx context.Context, id, cursor string) error {
			return errors.New("db down")
		},
	}
	logRepo := &MockLogRepo{}

	s := newDeltaForTest(client, &MockTransactionRepo{}, itemRepo, logRepo)
	if _, err := s.Sync(context.Background(), testItem(), testAccount("depository")); err == nil {
		t.Fatal("Sync() expected error, got nil")
	}

	// One audit row per attempt: the cursor failure must not leave a
	// success entry behind alongside the error entry.
	if len(logRepo.Created) != 1 {
		t.Fatalf("download log entries = %d, want 1", len(logRepo.Created))
	}
	if logRepo.Created[0].Status != StatusError {
		t.Errorf("log status = %q, want error", logRepo.Created[0].Status)
	}
}

func TestDeltaSync_InsertFailureWritesErrorLog(t *testing.T) {
	client := &MockDeltaClient{
		TransactionsSyncFunc: func(ctx context.Context, accessToken, cursor string, count int) (*plaid.TransactionsSyncResponse, error) {
			return &plaid.TransactionsSyncResponse{
				Added: []plaid.Transaction{{AccountID: "plaid-acc-1", TransactionID: "tx-1", DateString: "2024-03-10", Name: "x"}},
			}, nil
		},
	}
	txRepo := &MockTransactionRepo{
		BulkCreateIfAbsentFunc: func(ctx context.Context, params []transaction.CreateParams) ([]transaction.UpsertOutcome, error) {
			return nil, errors.New("constraint violation")
		},
	}
	logRepo := &MockLogRepo{}

	s := newDeltaForTest(client, txRepo, &MockItemRepo{}, logRepo)
	if _, err := s.Sync(context.Background(), testItem(), testAccount("depository")); err == nil {
		t.Fatal("Sync() expected error, got nil")
	}

	if len(logRepo.Created) != 1 || logRepo.Created[0].Status != StatusError {
		t.Errorf("expected one error log entry, got %+v", logRepo.Created)
	}
}
