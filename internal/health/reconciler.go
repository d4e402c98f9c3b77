package health

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vitalsin/internal/models"
)

// MetricWriter persists canonical records; Upsert fully replaces the row for
// the (user, type, date) key.
type MetricWriter interface {
	UpsertMetric(ctx context.Context, m models.HealthMetric) error
}

// SyncStamper records the last successful sync time, display-only.
type SyncStamper interface {
	StampLastSync(ctx context.Context, userID int, t time.Time) error
}

// SettingsReader loads the user's sync preferences.
type SettingsReader interface {
	Settings(ctx context.Context, userID int) (models.UserSettings, error)
}

// UserLister feeds the nightly sweep.
type UserLister interface {
	ActiveUserIDs(ctx context.Context) ([]int, error)
}

// Reconciler runs syncs: it picks a source, fetches, normalizes and upserts
// one record per populated (metric type, day). A sync that finds nothing is a
// normal outcome, reported as synced=false, never as an error.
type Reconciler struct {
	selector *Selector
	metrics  MetricWriter
	state    SyncStamper
	settings SettingsReader
	users    UserLister
	log      *zap.Logger
	now      func() time.Time
}

func NewReconciler(selector *Selector, metrics MetricWriter, state SyncStamper, settings SettingsReader, users UserLister, log *zap.Logger) *Reconciler {
	return &Reconciler{
		selector: selector,
		metrics:  metrics,
		state:    state,
		settings: settings,
		users:    users,
		log:      log,
		now:      time.Now,
	}
}

// SyncYesterday syncs the most recently completed calendar day. Intraday data
// is assumed incomplete, so "today" is never synced automatically.
func (r *Reconciler) SyncYesterday(ctx context.Context, userID int) (bool, error) {
	yesterday := StartOfDay(r.now()).AddDate(0, 0, -1)
	return r.syncWindow(ctx, userID, yesterday, yesterday.AddDate(0, 0, 1))
}

// SyncRange syncs the trailing `days` completed calendar days, used for the
// initial connection backfill and manual "sync now".
func (r *Reconciler) SyncRange(ctx context.Context, userID, days int) (bool, error) {
	end := StartOfDay(r.now())
	return r.syncWindow(ctx, userID, end.AddDate(0, 0, -days), end)
}

func (r *Reconciler) syncWindow(ctx context.Context, userID int, start, end time.Time) (bool, error) {
	prefs, err := r.settings.Settings(ctx, userID)
	if err != nil {
		return false, err
	}

	adapter, err := r.selector.Pick(ctx, userID, prefs)
	if err != nil {
		// Expected when nothing is connected; not an error to the caller.
		r.log.Info("no health source available", zap.Int("user_id", userID))
		return false, nil
	}

	fetched, err := adapter.FetchRange(ctx, userID, start, end)
	if err != nil {
		r.log.Warn("health fetch failed",
			zap.Int("user_id", userID), zap.String("source", adapter.Name()), zap.Error(err))
		return false, nil
	}

	syncedAt := r.now()
	written := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		partial, ok := fetched[DateKey(d)]
		if !ok || partial.Empty() {
			continue
		}
		for _, rec := range Normalize(userID, d, partial, adapter.Name(), syncedAt) {
			if err := r.metrics.UpsertMetric(ctx, rec); err != nil {
				r.log.Warn("metric upsert failed", zap.Int("user_id", userID),
					zap.String("metric_type", rec.MetricType),
					zap.String("date", DateKey(rec.LocalDate)), zap.Error(err))
				continue
			}
			written++
		}
	}

	if written == 0 {
		return false, nil
	}
	if err := r.state.StampLastSync(ctx, userID, syncedAt); err != nil {
		// The stamp is display-only; the sync itself already succeeded.
		r.log.Warn("could not stamp last sync", zap.Int("user_id", userID), zap.Error(err))
	}
	r.log.Info("health sync complete", zap.Int("user_id", userID),
		zap.String("source", adapter.Name()), zap.Int("records", written))
	return true, nil
}

// SweepYesterday runs the single-day sync for every user. One user's failure
// never aborts the sweep.
func (r *Reconciler) SweepYesterday(ctx context.Context) {
	ids, err := r.users.ActiveUserIDs(ctx)
	if err != nil {
		r.log.Error("sweep could not list users", zap.Error(err))
		return
	}
	for _, id := range ids {
		if _, err := r.SyncYesterday(ctx, id); err != nil {
			r.log.Warn("sweep sync failed", zap.Int("user_id", id), zap.Error(err))
		}
	}
}
