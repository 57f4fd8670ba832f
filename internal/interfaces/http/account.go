// Package http contains the HTTP handlers of the dashboard API.
package http

import (
	"encoding/json"
	"log"
	"net/http"

	"networth/internal/domain/account"
)

// AccountHandler serves account listing and account settings endpoints.
type AccountHandler struct {
	accountService *account.Service
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accountService *account.Service) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// HTTP request types (transport layer concerns)
type UpdateNicknameRequest struct {
	Nickname *string `json:"nickname"`
}

// HandleListAccounts returns all accounts.
func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accounts, err := h.accountService.ListAccounts(r.Context())
	if err != nil {
		log.Printf("Error listing accounts: %v", err)
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	if accounts == nil {
		accounts = []*account.Account{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accounts)
}

// HandleAccountByID returns a single account.
func (h *AccountHandler) HandleAccountByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	acct, err := h.accountService.GetAccount(r.Context(), accountID)
	if err != nil {
		if err == account.ErrAccountNotFound {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		log.Printf("Error getting account %s: %v", accountID, err)
		http.Error(w, "Failed to get account", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(acct)
}

// HandleUpdateNickname sets or clears the account nickname.
func (h *AccountHandler) HandleUpdateNickname(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	var req UpdateNicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	acct, err := h.accountService.UpdateNickname(r.Context(), accountID, req.Nickname)
	if err != nil {
		if err == account.ErrAccountNotFound {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		log.Printf("Error updating nickname for account %s: %v", accountID, err)
		http.Error(w, "Failed to update nickname", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(acct)
}

// HandleToggleVisibility flips the hidden flag.
func (h *AccountHandler) HandleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	acct, err := h.accountService.ToggleVisibility(r.Context(), accountID)
	if err != nil {
		if err == account.ErrAccountNotFound {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		log.Printf("Error toggling visibility for account %s: %v", accountID, err)
		http.Error(w, "Failed to toggle visibility", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(acct)
}
