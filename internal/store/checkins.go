package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"vitalsin/internal/models"
	"vitalsin/internal/services"
)

type CheckIns struct {
	db     *sqlx.DB
	encSvc *services.EncryptionService
}

func NewCheckIns(db *sqlx.DB, encSvc *services.EncryptionService) *CheckIns {
	return &CheckIns{db: db, encSvc: encSvc}
}

// Upsert writes the (user, kind, local_date) slot, replacing any previous
// answers for that slot.
func (s *CheckIns) Upsert(ctx context.Context, c models.CheckIn) error {
	if err := s.encSvc.EncryptCheckIn(&c); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO check_ins (user_id, kind, local_date, answers, notes)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id, kind, local_date)
        DO UPDATE SET answers = EXCLUDED.answers, notes = EXCLUDED.notes`,
		c.UserID, c.Kind, dateKey(c.LocalDate), c.Answers, c.Notes)
	return err
}

// CheckInsByDate returns the day's check-ins ordered morning, midday, evening.
func (s *CheckIns) CheckInsByDate(ctx context.Context, userID int, day time.Time) ([]models.CheckIn, error) {
	var out []models.CheckIn
	err := s.db.SelectContext(ctx, &out, `SELECT id, user_id, kind, local_date, answers, notes, created_at
        FROM check_ins WHERE user_id=$1 AND local_date=$2
        ORDER BY CASE kind WHEN 'morning' THEN 1 WHEN 'midday' THEN 2 ELSE 3 END`, userID, dateKey(day))
	if err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.encSvc.DecryptCheckIn(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *CheckIns) Delete(ctx context.Context, userID int, kind string, day time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM check_ins WHERE user_id=$1 AND kind=$2 AND local_date=$3`,
		userID, kind, dateKey(day))
	if err != nil {
		return false, err
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}
