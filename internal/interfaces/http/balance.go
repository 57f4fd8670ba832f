package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"networth/internal/domain/account"
	"networth/internal/domain/balance"
	"networth/internal/infrastructure/plaid"
)

// BalanceHandler serves balance history and maintenance endpoints.
type BalanceHandler struct {
	balanceService *balance.Service
}

// NewBalanceHandler creates a new balance handler.
func NewBalanceHandler(balanceService *balance.Service) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

type backfillResponse struct {
	RecordsCreated int `json:"recordsCreated"`
}

type dedupResponse struct {
	RecordsDeleted int64 `json:"recordsDeleted"`
}

// HandleRefresh fetches the current balance from the provider and appends a
// record. Provider credential failures surface as 400, provider outages as
// 503.
func (h *BalanceHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	result, err := h.balanceService.Refresh(r.Context(), accountID)
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

		log.Printf("Error refreshing balance for account %s: %v", accountID, err)
		http.Error(w, "Failed to refresh balance", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleHistory returns the balance records for an account, newest first.
func (h *BalanceHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	records, err := h.balanceService.History(r.Context(), accountID)
	if err != nil {
		if err == account.ErrAccountNotFound {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		log.Printf("Error listing balances for account %s: %v", accountID, err)
		http.Error(w, "Failed to list balances", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []*balance.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// HandleDeleteRecord removes one balance record.
func (h *BalanceHandler) HandleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.PathValue("id")
	recordID := r.PathValue("balanceId")
	if accountID == "" || recordID == "" {
		http.Error(w, "Account ID and balance ID are required", http.StatusBadRequest)
		return
	}

	if err := h.balanceService.DeleteRecord(r.Context(), accountID, recordID); err != nil {
		if err == balance.ErrRecordNotFound {
			http.Error(w, "Balance record not found", http.StatusNotFound)
			return
		}
		log.Printf("Error deleting balance record %s: %v", recordID, err)
		http.Error(w, "Failed to delete balance record", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleBackfill synthesizes missing first-of-month records back to the
// dashboard epoch. An account with no history at all is a 400.
func (h *BalanceHandler) HandleBackfill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	created, err := h.balanceService.Backfill(r.Context(), accountID)
	if err != nil {
		switch err {
		case account.ErrAccountNotFound:
			http.Error(w, "Account not found", http.StatusNotFound)
		case balance.ErrNoBalances:
			http.Error(w, "No existing balances to backfill from", http.StatusBadRequest)
		default:
			log.Printf("Error backfilling balances for account %s: %v", accountID, err)
			http.Error(w, "Failed to backfill balances", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(backfillResponse{RecordsCreated: created})
}

// HandleCleanDaily keeps the most recent record per calendar day.
func (h *BalanceHandler) HandleCleanDaily(w http.ResponseWriter, r *http.Request) {
	h.handleClean(w, r, h.balanceService.DedupDaily)
}

// HandleCleanMonthly keeps the most recent record per calendar month.
func (h *BalanceHandler) HandleCleanMonthly(w http.ResponseWriter, r *http.Request) {
	h.handleClean(w, r, h.balanceService.DedupMonthly)
}

func (h *BalanceHandler) handleClean(w http.ResponseWriter, r *http.Request, clean func(ctx context.Context, accountID string) (int64, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	deleted, err := clean(r.Context(), accountID)
	if err != nil {
		log.Printf("Error cleaning balances for account %s: %v", accountID, err)
		http.Error(w, "Failed to clean balances", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dedupResponse{RecordsDeleted: deleted})
}
