package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"vitalsin/internal/models"
	"vitalsin/internal/services"
)

type Scores struct {
	db     *sqlx.DB
	encSvc *services.EncryptionService
}

func NewScores(db *sqlx.DB, encSvc *services.EncryptionService) *Scores {
	return &Scores{db: db, encSvc: encSvc}
}

// UpsertScore is idempotent on (user, local_date): a conflicting write keeps
// the original row id and replaces the payload, so feedback already attached
// to the day's score survives a regenerate. The returned id is the one the
// row actually has, which on conflict is the original, not the candidate.
func (s *Scores) UpsertScore(ctx context.Context, sc models.EnergyScore) (string, error) {
	if err := s.encSvc.EncryptScore(&sc); err != nil {
		return "", err
	}
	var id string
	err := s.db.GetContext(ctx, &id, `INSERT INTO energy_scores (id, user_id, local_date, score, explanation, actions, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id, local_date)
        DO UPDATE SET
            score = EXCLUDED.score,
            explanation = EXCLUDED.explanation,
            actions = EXCLUDED.actions,
            created_at = EXCLUDED.created_at
        RETURNING id`,
		sc.ID, sc.UserID, dateKey(sc.LocalDate), sc.Score, sc.Explanation, sc.Actions, sc.CreatedAt)
	return id, err
}

// GetByDate returns nil when no score has been computed for the day yet.
func (s *Scores) GetByDate(ctx context.Context, userID int, day time.Time) (*models.EnergyScore, error) {
	var sc models.EnergyScore
	err := s.db.GetContext(ctx, &sc, `SELECT id, user_id, local_date, score, explanation, actions, created_at
        FROM energy_scores WHERE user_id=$1 AND local_date=$2`, userID, dateKey(day))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.encSvc.DecryptScore(&sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// InsertFeedback appends one feedback row; the score must belong to the user.
func (s *Scores) InsertFeedback(ctx context.Context, f models.ScoreFeedback) error {
	var owner int
	err := s.db.GetContext(ctx, &owner, `SELECT user_id FROM energy_scores WHERE id=$1`, f.ScoreID)
	if err != nil {
		if isNoRows(err) {
			return ErrScoreNotFound
		}
		return err
	}
	if owner != f.UserID {
		return ErrScoreNotFound
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO score_feedback (user_id, score_id, matched, comment)
        VALUES ($1, $2, $3, $4)`, f.UserID, f.ScoreID, f.Matched, f.Comment)
	return err
}

// ErrScoreNotFound is returned when feedback targets a score that does not
// exist for this user, including the transient sentinel.
var ErrScoreNotFound = errors.New("score not found")

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
