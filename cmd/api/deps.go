package main

import (
	"log"

	"networth/internal/domain/account"
	"networth/internal/domain/balance"
	"networth/internal/domain/link"
	"networth/internal/domain/sync"
	"networth/internal/infrastructure/coinbase"
	"networth/internal/infrastructure/plaid"
	"networth/internal/infrastructure/postgres"
	"networth/internal/infrastructure/simplefin"
	httphandlers "networth/internal/interfaces/http"
	"networth/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AccountHandler   *httphandlers.AccountHandler
	BalanceHandler   *httphandlers.BalanceHandler
	SyncHandler      *httphandlers.SyncHandler
	SimpleFINHandler *httphandlers.SimpleFINHandler

	// Services (for the admin CLI and tests)
	BalanceService *balance.Service
	SyncService    *sync.Service
	AccountRepo    *postgres.AccountRepository
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(db)
	itemRepo := postgres.NewItemRepository(db)
	balanceRepo := postgres.NewBalanceRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	downloadLogRepo := postgres.NewDownloadLogRepository(db)

	// Initialize provider clients
	plaidClient := plaid.NewClient(cfg.Plaid.ClientID, cfg.Plaid.Secret, cfg.Plaid.Environment)
	coinbaseClient := coinbase.NewClient()
	simplefinClient := simplefin.NewClient()

	// Initialize domain services
	accountService := account.NewService(accountRepo)

	balanceService := balance.NewService(balanceRepo, accountRepo, itemRepo, map[string]balance.Source{
		account.ProviderPlaid:     plaid.NewBalanceSource(plaidClient),
		account.ProviderCoinbase:  coinbase.NewBalanceSource(coinbaseClient),
		account.ProviderSimpleFIN: simplefin.NewBalanceSource(simplefinClient),
	})

	deltaStrategy := sync.NewDeltaStrategy(plaidClient, transactionRepo, itemRepo, downloadLogRepo)
	windowStrategy := sync.NewWindowStrategy(plaidClient, transactionRepo, downloadLogRepo)
	syncService := sync.NewService(accountRepo, itemRepo, transactionRepo, downloadLogRepo, deltaStrategy, windowStrategy)

	linkService := link.NewService(simplefinClient, itemRepo, accountRepo, balanceRepo, transactionRepo)

	// Initialize handlers
	accountHandler := httphandlers.NewAccountHandler(accountService)
	balanceHandler := httphandlers.NewBalanceHandler(balanceService)
	syncHandler := httphandlers.NewSyncHandler(syncService)
	simplefinHandler := httphandlers.NewSimpleFINHandler(linkService)

	return &Dependencies{
		DB:               db,
		AccountHandler:   accountHandler,
		BalanceHandler:   balanceHandler,
		SyncHandler:      syncHandler,
		SimpleFINHandler: simplefinHandler,
		BalanceService:   balanceService,
		SyncService:      syncService,
		AccountRepo:      accountRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
