package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserSettings holds per-user sync preferences. Re-read on every sync;
// toggles take effect on the next sync call, never mid-flight.
type UserSettings struct {
	UserID          int    `db:"user_id" json:"-"`
	MockDataEnabled bool   `db:"mock_data_enabled" json:"mock_data_enabled"`
	FitnessEnabled  bool   `db:"fitness_enabled" json:"fitness_enabled"`
	DeviceConnected bool   `db:"device_connected" json:"device_connected"`
	Platform        string `db:"platform" json:"platform"`
}

// Check-in kinds. One check-in per (user, kind, local_date).
const (
	CheckInMorning = "morning"
	CheckInMidday  = "midday"
	CheckInEvening = "evening"
)

type CheckIn struct {
	ID        int            `db:"id" json:"id"`
	UserID    int            `db:"user_id" json:"user_id"`
	Kind      string         `db:"kind" json:"kind"`
	LocalDate time.Time      `db:"local_date" json:"local_date"`
	Answers   types.JSONText `db:"answers" json:"answers"`
	Notes     *string        `db:"notes" json:"notes,omitempty"` // Encrypted in DB
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Canonical metric types. A sleep record carries the night's sleep plus the
// cardiovascular and calorie fields; a steps record carries only the count.
const (
	MetricSleep = "sleep"
	MetricSteps = "steps"
)

// Sleep quality tiers derived from duration.
const (
	QualityPoor = "poor"
	QualityFair = "fair"
	QualityGood = "good"
)

// HealthMetric is the provider-independent record for one (user, type, day).
// Writes fully replace the previous row; there is no partial merge.
type HealthMetric struct {
	ID             int       `db:"id" json:"id"`
	UserID         int       `db:"user_id" json:"user_id"`
	MetricType     string    `db:"metric_type" json:"metric_type"`
	LocalDate      time.Time `db:"local_date" json:"local_date"`
	SleepHours     *float64  `db:"sleep_hours" json:"sleep_hours,omitempty"`
	SleepQuality   *string   `db:"sleep_quality" json:"sleep_quality,omitempty"`
	RestingHRBpm   *int      `db:"resting_hr_bpm" json:"resting_hr_bpm,omitempty"`
	HRVMs          *int      `db:"hrv_ms" json:"hrv_ms,omitempty"`
	ActiveCalories *int      `db:"active_calories" json:"active_calories,omitempty"`
	Steps          *int      `db:"steps" json:"steps,omitempty"`
	Source         string    `db:"source" json:"source"`
	SyncedAt       time.Time `db:"synced_at" json:"synced_at"`
}

// DeviceSample is a raw sample uploaded by the mobile app from the OS health
// store. Samples are the feed for the device adapter, not canonical data.
type DeviceSample struct {
	ID         int       `db:"id" json:"id"`
	UserID     int       `db:"user_id" json:"user_id"`
	SampleType string    `db:"sample_type" json:"sample_type"`
	StartAt    time.Time `db:"start_at" json:"start_at"`
	EndAt      time.Time `db:"end_at" json:"end_at"`
	Value      float64   `db:"value" json:"value"`
	Unit       string    `db:"unit" json:"unit"`
}

// Device sample types accepted by the ingest endpoint.
const (
	SampleSleep      = "sleep_minutes"
	SampleSteps      = "steps"
	SampleHeartRate  = "heart_rate"
	SampleHRV        = "hrv"
	SampleActiveCals = "active_calories"
)

// FitnessToken is the explicit token-store value object for the third-party
// fitness API. One row per user; replaced wholesale on refresh.
type FitnessToken struct {
	UserID       int       `db:"user_id" json:"-"`
	AccessToken  string    `db:"access_token" json:"-"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
}

type ScoreAction struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

type EnergyScore struct {
	ID          string         `db:"id" json:"id"`
	UserID      int            `db:"user_id" json:"user_id"`
	LocalDate   time.Time      `db:"local_date" json:"local_date"`
	Score       float64        `db:"score" json:"score"`
	Explanation string         `db:"explanation" json:"explanation"` // Encrypted in DB
	Actions     types.JSONText `db:"actions" json:"actions"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// ScoreFeedback is append-only; never written against a transient score.
type ScoreFeedback struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	ScoreID   string    `db:"score_id" json:"score_id"`
	Matched   bool      `db:"matched" json:"matched"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
