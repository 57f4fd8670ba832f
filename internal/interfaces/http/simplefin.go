package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"networth/internal/domain/link"
)

// SimpleFINHandler serves the SimpleFIN onboarding endpoint.
type SimpleFINHandler struct {
	linkService *link.Service
}

// NewSimpleFINHandler creates a new SimpleFIN handler.
func NewSimpleFINHandler(linkService *link.Service) *SimpleFINHandler {
	return &SimpleFINHandler{linkService: linkService}
}

type ClaimRequest struct {
	SetupToken string `json:"setupToken"`
}

// HandleClaim exchanges a one-time setup token for a permanent connection and
// imports the accounts behind it.
func (h *SimpleFINHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SetupToken) == "" {
		http.Error(w, "Setup token is required", http.StatusBadRequest)
		return
	}

	result, err := h.linkService.ClaimSimpleFIN(r.Context(), strings.TrimSpace(req.SetupToken))
	if err != nil {
		log.Printf("Error claiming SimpleFIN token: %v", err)
		http.Error(w, "Failed to claim setup token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
