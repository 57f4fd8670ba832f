package sync

import (
	"context"
	"time"

	"networth/internal/domain/account"
	"networth/internal/domain/transaction"
	"networth/internal/infrastructure/plaid"
)

// MockTransactionRepo implements transaction.Repository for testing
type MockTransactionRepo struct {
	BulkCreateIfAbsentFunc  func(ctx context.Context, params []transaction.CreateParams) ([]transaction.UpsertOutcome, error)
	UpsertOverwriteFunc     func(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error)
	UpdateByProviderIDFunc  func(ctx context.Context, accountID, providerTransactionID string, params transaction.UpdateParams) (int64, error)
	DeleteByProviderIDsFunc func(ctx context.Context, accountID string, providerTransactionIDs []string) (int64, error)
	ReplaceWindowFunc       func(ctx context.Context, accountID string, start, end time.Time, params []transaction.CreateParams) (int, error)
	ListByAccountIDFunc     func(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Transaction, error)
}

func (m *MockTransactionRepo) BulkCreateIfAbsent(ctx context.Context, params []transaction.CreateParams) ([]transaction.UpsertOutcome, error) {
	if m.BulkCreateIfAbsentFunc != nil {
		return m.BulkCreateIfAbsentFunc(ctx, params)
	}
	return make([]transaction.UpsertOutcome, len(params)), nil
}

func (m *MockTransactionRepo) UpsertOverwrite(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	if m.UpsertOverwriteFunc != nil {
		return m.UpsertOverwriteFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockTransactionRepo) UpdateByProviderID(ctx context.Context, accountID, providerTransactionID string, params transaction.UpdateParams) (int64, error) {
	if m.UpdateByProviderIDFunc != nil {
		return m.UpdateByProviderIDFunc(ctx, accountID, providerTransactionID, params)
	}
	return 0, nil
}

func (m *MockTransactionRepo) DeleteByProviderIDs(ctx context.Context, accountID string, providerTransactionIDs []string) (int64, error) {
	if m.DeleteByProviderIDsFunc != nil {
		return m.DeleteByProviderIDsFunc(ctx, accountID, providerTransactionIDs)
	}
	return 0, nil
}

func (m *MockTransactionRepo) ReplaceWindow(ctx context.Context, accountID string, start, end time.Time, params []transaction.CreateParams) (int, error) {
	if m.ReplaceWindowFunc != nil {
		return m.ReplaceWindowFunc(ctx, accountID, start, end, params)
	}
	return len(params), nil
}

func (m *MockTransactionRepo) ListByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*transaction.Transaction, error) {
	if m.ListByAccountIDFunc != nil {
		return m.ListByAccountIDFunc(ctx, accountID, limit, offset)
	}
	return nil, nil
}

// MockItemRepo implements account.ItemRepository for testing
type MockItemRepo struct {
	CreateFunc                    func(ctx context.Context, params account.CreateItemParams) (*account.Item, error)
	GetByIDFunc                   func(ctx context.Context, id string) (*account.Item, error)
	FindByProviderInstitutionFunc func(ctx context.Context, provider, institutionID string) (*account.Item, error)
	UpdateSyncCursorFunc          func(ctx context.Context, id, cursor string) error
}

func (m *MockItemRepo) Create(ctx context.Context, params account.CreateItemParams) (*account.Item, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockItemRepo) GetByID(ctx context.Context, id string) (*account.Item, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockItemRepo) FindByProviderInstitution(ctx context.Context, provider, institutionID string) (*account.Item, error) {
	if m.FindByProviderInstitutionFunc != nil {
		return m.FindByProviderInstitutionFunc(ctx, provider, institutionID)
	}
	return nil, nil
}

func (m *MockItemRepo) UpdateSyncCursor(ctx context.Context, id, cursor string) error {
	if m.UpdateSyncCursorFunc != nil {
		return m.UpdateSyncCursorFunc(ctx, id, cursor)
	}
	return nil
}

// MockLogRepo implements LogRepository for testing
type MockLogRepo struct {
	CreateFunc          func(ctx context.Context, params CreateLogParams) (*DownloadLog, error)
	ListByAccountIDFunc func(ctx context.Context, accountID string) ([]*DownloadLog, error)

	Created []CreateLogParams
}

func (m *MockLogRepo) Create(ctx context.Context, params CreateLogParams) (*DownloadLog, error) {
	m.Created = append(m.Created, params)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return &DownloadLog{
		ID:              "log-1",
		AccountID:       params.AccountID,
		StartDate:       params.StartDate,
		EndDate:         params.EndDate,
		NumTransactions: params.NumTransactions,
		Status:          params.Status,
		ErrorMessage:    params.ErrorMessage,
	}, nil
}

func (m *MockLogRepo) ListByAccountID(ctx context.Context, accountID string) ([]*DownloadLog, error) {
	if m.ListByAccountIDFunc != nil {
		return m.ListByAccountIDFunc(ctx, accountID)
	}
	return nil, nil
}

// MockAccountRepo implements account.Repository for testing
type MockAccountRepo struct {
	CreateFunc         func(ctx context.Context, params account.CreateParams) (*account.Account, error)
	GetByIDFunc        func(ctx context.Context, id string) (*account.Account, error)
	ListFunc           func(ctx context.Context) ([]*account.Account, error)
	UpdateNicknameFunc func(ctx context.Context, id string, nickname *string) (*account.Account, error)
	SetHiddenFunc      func(ctx context.Context, id string, hidden bool) (*account.Account, error)
}

func (m *MockAccountRepo) Create(ctx context.Context, params account.CreateParams) (*account.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id string) (*account.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAccountRepo) List(ctx context.Context) ([]*account.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockAccountRepo) UpdateNickname(ctx context.Context, id string, nickname *string) (*account.Account, error) {
	if m.UpdateNicknameFunc != nil {
		return m.UpdateNicknameFunc(ctx, id, nickname)
	}
	return nil, nil
}

func (m *MockAccountRepo) SetHidden(ctx context.Context, id string, hidden bool) (*account.Account, error) {
	if m.SetHiddenFunc != nil {
		return m.SetHiddenFunc(ctx, id, hidden)
	}
	return nil, nil
}

// MockDeltaClient implements DeltaClient for testing
type MockDeltaClient struct {
	TransactionsSyncFunc func(ctx context.Context, accessToken, cursor string, count int) (*plaid.TransactionsSyncResponse, error)
}

func (m *MockDeltaClient) TransactionsSync(ctx context.Context, accessToken, cursor string, count int) (*plaid.TransactionsSyncResponse, error) {
	return m.TransactionsSyncFunc(ctx, accessToken, cursor, count)
}

// MockWindowClient implements WindowClient for testing
type MockWindowClient struct {
	InvestmentTransactionsFunc func(ctx context.Context, accessToken string, accountIDs []string, startDate, endDate string, offset, count int) (*plaid.InvestmentTransactionsResponse, error)
}

func (m *MockWindowClient) InvestmentTransactions(ctx context.Context, accessToken string, accountIDs []string, startDate, endDate string, offset, count int) (*plaid.InvestmentTransactionsResponse, error) {
	return m.InvestmentTransactionsFunc(ctx, accessToken, accountIDs, startDate, endDate, offset, count)
}

func testItem() *account.Item {
	return &account.Item{ID: "item-1", Provider: account.ProviderPlaid, ItemID: "plaid-item-1", AccessToken: "access-token"}
}

func testAccount(accountType string) *account.Account {
	return &account.Account{ID: "acc-1", ItemID: "item-1", ProviderAccountID: "plaid-acc-1", Name: "Test", Type: accountType}
}
