package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"vitalsin/internal/models"
	"vitalsin/internal/store"
)

type CheckInHandler struct {
	checkIns *store.CheckIns
}

func NewCheckInHandler(checkIns *store.CheckIns) *CheckInHandler {
	return &CheckInHandler{checkIns: checkIns}
}

type checkInRequest struct {
	Kind      string          `json:"kind"`
	LocalDate string          `json:"local_date"` // YYYY-MM-DD provided by frontend
	Answers   json.RawMessage `json:"answers"`
	Notes     *string         `json:"notes"`
}

func validKind(k string) bool {
	return k == models.CheckInMorning || k == models.CheckInMidday || k == models.CheckInEvening
}

// Upsert creates or replaces the check-in for the same user, kind and local
// date. Cached energy scores are deliberately not invalidated here; a stale
// score stays until the user regenerates.
func (h *CheckInHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validKind(req.Kind) || req.LocalDate == "" || len(req.Answers) == 0 {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	parsedLocalDate, err := time.Parse("2006-01-02", req.LocalDate)
	if err != nil {
		http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	// Answers must at least be a JSON object.
	var probe map[string]any
	if err := json.Unmarshal(req.Answers, &probe); err != nil {
		http.Error(w, "answers must be a JSON object", http.StatusBadRequest)
		return
	}

	err = h.checkIns.Upsert(r.Context(), models.CheckIn{
		UserID:    userID,
		Kind:      req.Kind,
		LocalDate: parsedLocalDate,
		Answers:   []byte(req.Answers),
		Notes:     req.Notes,
	})
	if err != nil {
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"message":    "Check-in saved successfully",
		"kind":       req.Kind,
		"local_date": parsedLocalDate.Format("2006-01-02"),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *CheckInHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		http.Error(w, "invalid date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	checkIns, err := h.checkIns.CheckInsByDate(r.Context(), userID, day)
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}

	out := make([]checkInDTO, 0, len(checkIns))
	for _, c := range checkIns {
		out = append(out, toCheckInDTO(c))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Delete removes a check-in by kind and local_date (YYYY-MM-DD).
func (h *CheckInHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	var body struct {
		Kind      string `json:"kind"`
		LocalDate string `json:"local_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !validKind(body.Kind) || body.LocalDate == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	day, err := time.Parse("2006-01-02", body.LocalDate)
	if err != nil {
		http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	deleted, err := h.checkIns.Delete(r.Context(), userID, body.Kind, day)
	if err != nil {
		http.Error(w, "could not delete", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
