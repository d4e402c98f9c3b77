package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"vitalsin/internal/models"
)

type Tokens struct {
	db *sqlx.DB
}

func NewTokens(db *sqlx.DB) *Tokens { return &Tokens{db: db} }

// Get returns nil when the user has not connected the fitness provider.
func (s *Tokens) Get(ctx context.Context, userID int) (*models.FitnessToken, error) {
	var tok models.FitnessToken
	err := s.db.GetContext(ctx, &tok, `SELECT user_id, access_token, refresh_token, expires_at
        FROM fitness_tokens WHERE user_id=$1`, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &tok, nil
}

func (s *Tokens) Save(ctx context.Context, tok models.FitnessToken) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO fitness_tokens (user_id, access_token, refresh_token, expires_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id)
        DO UPDATE SET
            access_token = EXCLUDED.access_token,
            refresh_token = EXCLUDED.refresh_token,
            expires_at = EXCLUDED.expires_at`,
		tok.UserID, tok.AccessToken, tok.RefreshToken, tok.ExpiresAt)
	return err
}

func (s *Tokens) Delete(ctx context.Context, userID int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM fitness_tokens WHERE user_id=$1`, userID)
	return err
}
