package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"vitalsin/internal/models"
)

type Metrics struct {
	db *sqlx.DB
}

func NewMetrics(db *sqlx.DB) *Metrics { return &Metrics{db: db} }

// UpsertMetric fully replaces the row for (user, metric_type, local_date);
// fields the new record does not carry become NULL, never a stale merge.
func (s *Metrics) UpsertMetric(ctx context.Context, m models.HealthMetric) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO health_metrics
        (user_id, metric_type, local_date, sleep_hours, sleep_quality, resting_hr_bpm, hrv_ms, active_calories, steps, source, synced_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (user_id, metric_type, local_date)
        DO UPDATE SET
            sleep_hours = EXCLUDED.sleep_hours,
            sleep_quality = EXCLUDED.sleep_quality,
            resting_hr_bpm = EXCLUDED.resting_hr_bpm,
            hrv_ms = EXCLUDED.hrv_ms,
            active_calories = EXCLUDED.active_calories,
            steps = EXCLUDED.steps,
            source = EXCLUDED.source,
            synced_at = EXCLUDED.synced_at`,
		m.UserID, m.MetricType, dateKey(m.LocalDate), m.SleepHours, m.SleepQuality,
		m.RestingHRBpm, m.HRVMs, m.ActiveCalories, m.Steps, m.Source, m.SyncedAt)
	return err
}

func (s *Metrics) ListMetrics(ctx context.Context, userID int, start, end time.Time) ([]models.HealthMetric, error) {
	var out []models.HealthMetric
	err := s.db.SelectContext(ctx, &out, `SELECT id, user_id, metric_type, local_date, sleep_hours, sleep_quality, resting_hr_bpm, hrv_ms, active_calories, steps, source, synced_at
        FROM health_metrics
        WHERE user_id=$1 AND local_date >= $2 AND local_date <= $3
        ORDER BY local_date DESC, metric_type`, userID, dateKey(start), dateKey(end))
	return out, err
}

// StampLastSync records the display-only last successful sync time.
func (s *Metrics) StampLastSync(ctx context.Context, userID int, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO sync_state (user_id, last_health_sync) VALUES ($1, $2)
        ON CONFLICT (user_id) DO UPDATE SET last_health_sync = EXCLUDED.last_health_sync`, userID, t)
	return err
}

// LastSync returns nil when the user has never completed a sync.
func (s *Metrics) LastSync(ctx context.Context, userID int) (*time.Time, error) {
	var t *time.Time
	err := s.db.GetContext(ctx, &t, `SELECT last_health_sync FROM sync_state WHERE user_id=$1`, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}
