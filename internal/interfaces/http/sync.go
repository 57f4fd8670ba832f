package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"networth/internal/domain/account"
	"networth/internal/domain/sync"
	"networth/internal/domain/transaction"
	"networth/internal/infrastructure/plaid"
)

const (
	defaultTransactionLimit = 100
	maxTransactionLimit     = 500
)

// SyncHandler serves transaction sync and download log endpoints.
type SyncHandler struct {
	syncService *sync.Service
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(syncService *sync.Service) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// HandleSync runs one reconciliation pass for the account.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	result, err := h.syncService.Download(r.Context(), accountID)
	if err != nil {
		if err == account.ErrAccountNotFound || err == account.ErrItemNotFound {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}

		var apiErr *plaid.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode {
			case plaid.ErrorCodeItemLoginRequired, plaid.ErrorCodeInvalidAccessToken, plaid.ErrorCodeInvalidCredentials:
				http.Error(w, "Institution connection needs to be re-authenticated", http.StatusBadRequest)
				return
			case plaid.ErrorCodeInstitutionDown:
				http.Error(w, "Institution is temporarily unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		log.Printf("Error syncing transactions for account %s: %v", accountID, err)
		http.Error(w, "Failed to sync transactions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleListTransactions returns the stored transactions for an account.
func (h *SyncHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	limit := queryInt(r, "limit", defaultTransactionLimit)
	if limit < 1 || limit > maxTransactionLimit {
		limit = defaultTransactionLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	transactions, err := h.syncService.Transactions(r.Context(), accountID, limit, offset)
	if err != nil {
		if err == account.ErrAccountNotFound {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		log.Printf("Error listing transactions for account %s: %v", accountID, err)
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}

	if transactions == nil {
		transactions = []*transaction.Transaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactions)
}

// HandleListDownloads returns the download log for an account, newest first.
func (h *SyncHandler) HandleListDownloads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	logs, err := h.syncService.Downloads(r.Context(), accountID)
	if err != nil {
		if err == account.ErrAccountNotFound {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		log.Printf("Error listing downloads for account %s: %v", accountID, err)
		http.Error(w, "Failed to list downloads", http.StatusInternalServerError)
		return
	}

	if logs == nil {
		logs = []*sync.DownloadLog{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
