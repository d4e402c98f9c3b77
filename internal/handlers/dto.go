package handlers

import (
	"encoding/json"
	"time"

	"vitalsin/internal/models"
)

// checkInDTO ensures date-only strings for local_date and a consistent
// created_at string.
type checkInDTO struct {
	ID        int             `json:"id"`
	Kind      string          `json:"kind"`
	LocalDate string          `json:"local_date"`
	Answers   json.RawMessage `json:"answers"`
	Notes     *string         `json:"notes,omitempty"`
	CreatedAt string          `json:"created_at"`
}

func toCheckInDTO(c models.CheckIn) checkInDTO {
	return checkInDTO{
		ID:        c.ID,
		Kind:      c.Kind,
		LocalDate: c.LocalDate.Format("2006-01-02"),
		Answers:   json.RawMessage(c.Answers),
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

type metricDTO struct {
	MetricType     string   `json:"metric_type"`
	LocalDate      string   `json:"local_date"`
	SleepHours     *float64 `json:"sleep_hours,omitempty"`
	SleepQuality   *string  `json:"sleep_quality,omitempty"`
	RestingHRBpm   *int     `json:"resting_hr_bpm,omitempty"`
	HRVMs          *int     `json:"hrv_ms,omitempty"`
	ActiveCalories *int     `json:"active_calories,omitempty"`
	Steps          *int     `json:"steps,omitempty"`
	Source         string   `json:"source"`
	SyncedAt       string   `json:"synced_at"`
}

func toMetricDTO(m models.HealthMetric) metricDTO {
	return metricDTO{
		MetricType:     m.MetricType,
		LocalDate:      m.LocalDate.Format("2006-01-02"),
		SleepHours:     m.SleepHours,
		SleepQuality:   m.SleepQuality,
		RestingHRBpm:   m.RestingHRBpm,
		HRVMs:          m.HRVMs,
		ActiveCalories: m.ActiveCalories,
		Steps:          m.Steps,
		Source:         m.Source,
		SyncedAt:       m.SyncedAt.Format(time.RFC3339),
	}
}

// scoreDTO is the stored-score shape; live engine results marshal as
// score.Result directly.
type scoreDTO struct {
	ID          string               `json:"id"`
	LocalDate   string               `json:"local_date"`
	Score       float64              `json:"score"`
	Explanation string               `json:"explanation"`
	Actions     []models.ScoreAction `json:"actions"`
	CreatedAt   string               `json:"created_at"`
}

func toScoreDTO(s models.EnergyScore) scoreDTO {
	var actions []models.ScoreAction
	_ = json.Unmarshal(s.Actions, &actions)
	return scoreDTO{
		ID:          s.ID,
		LocalDate:   s.LocalDate.Format("2006-01-02"),
		Score:       s.Score,
		Explanation: s.Explanation,
		Actions:     actions,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

func toDateTimeStringPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
