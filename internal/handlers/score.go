package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vitalsin/internal/models"
	"vitalsin/internal/score"
	"vitalsin/internal/store"
)

type ScoreHandler struct {
	engine *score.Engine
	scores *store.Scores
}

func NewScoreHandler(engine *score.Engine, scores *store.Scores) *ScoreHandler {
	return &ScoreHandler{engine: engine, scores: scores}
}

func bearerFrom(r *http.Request) string {
	if tok, ok := r.Context().Value("bearerToken").(string); ok {
		return tok
	}
	return ""
}

// GetToday implements get-or-compute: a cached score for today is returned
// as-is; otherwise the engine computes one. "No score yet" is a 200 with a
// null score, never an error.
func (h *ScoreHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	w.Header().Set("Content-Type", "application/json")

	if cached, err := h.scores.GetByDate(r.Context(), userID, startOfToday()); err == nil && cached != nil {
		json.NewEncoder(w).Encode(map[string]any{"score": toScoreDTO(*cached), "cached": true})
		return
	}

	result := h.engine.TodayScore(r.Context(), userID, bearerFrom(r))
	if result == nil {
		json.NewEncoder(w).Encode(map[string]any{"score": nil})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"score": result, "cached": false})
}

// Regenerate discards any cached explanation and forces fresh generation.
func (h *ScoreHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	w.Header().Set("Content-Type", "application/json")

	result := h.engine.Regenerate(r.Context(), userID, bearerFrom(r))
	if result == nil {
		json.NewEncoder(w).Encode(map[string]any{"score": nil})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"score": result, "cached": false})
}

type feedbackRequest struct {
	ScoreID string  `json:"score_id"`
	Matched bool    `json:"matched"`
	Comment *string `json:"comment"`
}

// Feedback records whether the explanation matched how the day actually felt.
// Transient (unsaved) scores cannot receive feedback.
func (h *ScoreHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ScoreID == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.ScoreID == score.TransientScoreID {
		http.Error(w, "score was not saved; feedback cannot be recorded", http.StatusConflict)
		return
	}

	err := h.scores.InsertFeedback(r.Context(), models.ScoreFeedback{
		UserID:  userID,
		ScoreID: req.ScoreID,
		Matched: req.Matched,
		Comment: req.Comment,
	})
	if err != nil {
		if errors.Is(err, store.ErrScoreNotFound) {
			http.Error(w, "score not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not record feedback", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"message": "Feedback recorded successfully",
		"success": true,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
