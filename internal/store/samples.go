package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"vitalsin/internal/models"
)

type Samples struct {
	db *sqlx.DB
}

func NewSamples(db *sqlx.DB) *Samples { return &Samples{db: db} }

func (s *Samples) Insert(ctx context.Context, samples []models.DeviceSample) error {
	if len(samples) == 0 {
		return nil
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO device_samples (user_id, sample_type, start_at, end_at, value, unit)
        VALUES (:user_id, :sample_type, :start_at, :end_at, :value, :unit)`, samples)
	return err
}

// SamplesInRange returns raw samples overlapping [start, end) for one type.
func (s *Samples) SamplesInRange(ctx context.Context, userID int, sampleType string, start, end time.Time) ([]models.DeviceSample, error) {
	var out []models.DeviceSample
	err := s.db.SelectContext(ctx, &out, `SELECT id, user_id, sample_type, start_at, end_at, value, unit
        FROM device_samples
        WHERE user_id=$1 AND sample_type=$2 AND start_at >= $3 AND start_at < $4
        ORDER BY start_at`, userID, sampleType, start, end)
	return out, err
}
