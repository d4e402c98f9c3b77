package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func RunMigrations(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_settings (
    user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    mock_data_enabled BOOLEAN NOT NULL DEFAULT false,
    fitness_enabled BOOLEAN NOT NULL DEFAULT false,
    device_connected BOOLEAN NOT NULL DEFAULT false,
    platform TEXT NOT NULL DEFAULT 'other'
);

CREATE TABLE IF NOT EXISTS check_ins (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    kind TEXT NOT NULL CHECK (kind IN ('morning', 'midday', 'evening')),
    local_date DATE NOT NULL DEFAULT CURRENT_DATE,
    answers JSONB NOT NULL DEFAULT '{}',
    notes TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE(user_id, kind, local_date)
);

CREATE TABLE IF NOT EXISTS health_metrics (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    metric_type TEXT NOT NULL CHECK (metric_type IN ('sleep', 'steps')),
    local_date DATE NOT NULL,
    sleep_hours NUMERIC(4,1),
    sleep_quality TEXT,
    resting_hr_bpm INTEGER,
    hrv_ms INTEGER,
    active_calories INTEGER,
    steps INTEGER,
    source TEXT NOT NULL,
    synced_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE(user_id, metric_type, local_date)
);

CREATE TABLE IF NOT EXISTS device_samples (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    sample_type TEXT NOT NULL,
    start_at TIMESTAMPTZ NOT NULL,
    end_at TIMESTAMPTZ NOT NULL,
    value DOUBLE PRECISION NOT NULL,
    unit TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_device_samples_user_window
    ON device_samples (user_id, sample_type, start_at);

CREATE TABLE IF NOT EXISTS fitness_tokens (
    user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    access_token TEXT NOT NULL,
    refresh_token TEXT NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS energy_scores (
    id TEXT PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    local_date DATE NOT NULL,
    score NUMERIC(3,1) NOT NULL CHECK (score BETWEEN 1 AND 10),
    explanation TEXT NOT NULL,
    actions JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE(user_id, local_date)
);

CREATE TABLE IF NOT EXISTS score_feedback (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    score_id TEXT NOT NULL REFERENCES energy_scores(id) ON DELETE CASCADE,
    matched BOOLEAN NOT NULL,
    comment TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sync_state (
    user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    last_health_sync TIMESTAMPTZ
);
`
	_, err := db.ExecContext(context.Background(), schema)
	return err
}
