package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"vitalsin/internal/models"
)

type Settings struct {
	db *sqlx.DB
}

func NewSettings(db *sqlx.DB) *Settings { return &Settings{db: db} }

// Settings returns the user's sync preferences, with defaults for users who
// have never saved any.
func (s *Settings) Settings(ctx context.Context, userID int) (models.UserSettings, error) {
	var out models.UserSettings
	err := s.db.GetContext(ctx, &out, `SELECT user_id, mock_data_enabled, fitness_enabled, device_connected, platform
        FROM user_settings WHERE user_id=$1`, userID)
	if err != nil {
		if isNoRows(err) {
			return models.UserSettings{UserID: userID, Platform: "other"}, nil
		}
		return models.UserSettings{}, err
	}
	return out, nil
}

func (s *Settings) Save(ctx context.Context, st models.UserSettings) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_settings (user_id, mock_data_enabled, fitness_enabled, device_connected, platform)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id)
        DO UPDATE SET
            mock_data_enabled = EXCLUDED.mock_data_enabled,
            fitness_enabled = EXCLUDED.fitness_enabled,
            device_connected = EXCLUDED.device_connected,
            platform = EXCLUDED.platform`,
		st.UserID, st.MockDataEnabled, st.FitnessEnabled, st.DeviceConnected, st.Platform)
	return err
}

// DeviceConnected is the side-effect-free permission probe the device
// adapter uses.
func (s *Settings) DeviceConnected(ctx context.Context, userID int) (bool, error) {
	st, err := s.Settings(ctx, userID)
	if err != nil {
		return false, err
	}
	return st.DeviceConnected, nil
}

// ActiveUserIDs lists every user for the nightly sync sweep.
func (s *Settings) ActiveUserIDs(ctx context.Context) ([]int, error) {
	var ids []int
	err := s.db.SelectContext(ctx, &ids, `SELECT id FROM users ORDER BY id`)
	return ids, err
}
