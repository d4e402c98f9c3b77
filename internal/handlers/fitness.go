package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"vitalsin/internal/models"
	"vitalsin/internal/store"
)

type FitnessHandler struct {
	tokens *store.Tokens
}

func NewFitnessHandler(tokens *store.Tokens) *FitnessHandler {
	return &FitnessHandler{tokens: tokens}
}

type tokenRequest struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SaveToken stores the token triple obtained by the app's OAuth flow,
// replacing any previous connection.
func (h *FitnessHandler) SaveToken(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" || req.RefreshToken == "" || req.ExpiresAt.IsZero() {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	err := h.tokens.Save(r.Context(), models.FitnessToken{
		UserID:       userID,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		http.Error(w, "could not save token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Disconnect removes the stored token; the fitness source then reports
// unavailable on the next sync.
func (h *FitnessHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	if err := h.tokens.Delete(r.Context(), userID); err != nil {
		http.Error(w, "could not disconnect", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
