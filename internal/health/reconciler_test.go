package health_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"vitalsin/internal/health"
	"vitalsin/internal/models"
)

// fullAdapter reports every field for every requested day, like the
// synthetic source does.
type fullAdapter struct{ name string }

func (f *fullAdapter) Name() string                                   { return f.name }
func (f *fullAdapter) Available(ctx context.Context, userID int) bool { return true }

func (f *fullAdapter) FetchDay(ctx context.Context, userID int, day time.Time) (health.PartialMetrics, error) {
	hours := 7.2
	steps := 8000
	hrv := 55
	hr := 60
	kcal := 350
	return health.PartialMetrics{
		SleepHours: &hours, Steps: &steps, HRVMs: &hrv, RestingHRBpm: &hr, ActiveCalories: &kcal,
	}, nil
}

func (f *fullAdapter) FetchRange(ctx context.Context, userID int, start, end time.Time) (map[string]health.PartialMetrics, error) {
	out := map[string]health.PartialMetrics{}
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		m, _ := f.FetchDay(ctx, userID, d)
		out[health.DateKey(d)] = m
	}
	return out, nil
}

type memMetrics struct {
	rows map[string]models.HealthMetric
}

func newMemMetrics() *memMetrics { return &memMetrics{rows: map[string]models.HealthMetric{}} }

func (m *memMetrics) UpsertMetric(ctx context.Context, rec models.HealthMetric) error {
	key := rec.MetricType + "|" + health.DateKey(rec.LocalDate)
	m.rows[key] = rec
	return nil
}

type memStamper struct{ stamps []time.Time }

func (m *memStamper) StampLastSync(ctx context.Context, userID int, t time.Time) error {
	m.stamps = append(m.stamps, t)
	return nil
}

type fixedSettings struct{ s models.UserSettings }

func (f fixedSettings) Settings(ctx context.Context, userID int) (models.UserSettings, error) {
	return f.s, nil
}

type fixedUsers struct{ ids []int }

func (f fixedUsers) ActiveUserIDs(ctx context.Context) ([]int, error) { return f.ids, nil }

func newReconciler(synthetic, fitness, device health.Adapter, metrics *memMetrics, stamper *memStamper, prefs models.UserSettings) *health.Reconciler {
	selector := health.NewSelector(synthetic, fitness, device)
	return health.NewReconciler(selector, metrics, stamper, fixedSettings{s: prefs}, fixedUsers{ids: []int{1}}, zap.NewNop())
}

func TestReconciler_RangeSyncWritesBothTypesPerDay(t *testing.T) {
	metrics := newMemMetrics()
	stamper := &memStamper{}
	r := newReconciler(&fullAdapter{name: "synthetic"}, &fakeAdapter{name: "fitness"}, &fakeAdapter{name: "device"},
		metrics, stamper, models.UserSettings{MockDataEnabled: true})

	synced, err := r.SyncRange(context.Background(), 1, 7)

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !synced {
		t.Fatal("Expected synced=true")
	}
	// A fully-populated source yields one sleep and one steps record per day.
	if len(metrics.rows) != 14 {
		t.Errorf("Expected 14 records for 7 days, got %d", len(metrics.rows))
	}
	if len(stamper.stamps) != 1 {
		t.Errorf("Expected one last-sync stamp, got %d", len(stamper.stamps))
	}
	for key, rec := range metrics.rows {
		if rec.Source != "synthetic" {
			t.Errorf("record %s: expected synthetic provenance, got %q", key, rec.Source)
		}
	}
}

func TestReconciler_EmptyDaysAreSkipped(t *testing.T) {
	metrics := newMemMetrics()
	stamper := &memStamper{}
	// An available adapter with nothing to report for any day.
	empty := &fakeAdapter{name: "device", available: true}
	r := newReconciler(&fakeAdapter{name: "synthetic"}, &fakeAdapter{name: "fitness"}, empty,
		metrics, stamper, models.UserSettings{Platform: "ios", DeviceConnected: true})

	synced, err := r.SyncRange(context.Background(), 1, 7)

	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if synced {
		t.Error("Expected synced=false when no day has data")
	}
	if len(metrics.rows) != 0 {
		t.Errorf("Expected no records, got %d", len(metrics.rows))
	}
	if len(stamper.stamps) != 0 {
		t.Error("Last sync must not be stamped when nothing was written")
	}
}

func TestReconciler_NoSourceIsNotAnError(t *testing.T) {
	metrics := newMemMetrics()
	stamper := &memStamper{}
	r := newReconciler(&fakeAdapter{name: "synthetic"}, &fakeAdapter{name: "fitness"}, &fakeAdapter{name: "device"},
		metrics, stamper, models.UserSettings{Platform: "other"})

	synced, err := r.SyncYesterday(context.Background(), 1)

	if err != nil {
		t.Fatalf("Expected quiet no-source outcome, got error: %v", err)
	}
	if synced {
		t.Error("Expected synced=false with no source")
	}
}

func TestReconciler_SingleDaySyncTargetsYesterday(t *testing.T) {
	metrics := newMemMetrics()
	stamper := &memStamper{}
	r := newReconciler(&fullAdapter{name: "synthetic"}, &fakeAdapter{name: "fitness"}, &fakeAdapter{name: "device"},
		metrics, stamper, models.UserSettings{MockDataEnabled: true})

	synced, err := r.SyncYesterday(context.Background(), 1)

	if err != nil || !synced {
		t.Fatalf("Expected a successful sync, got synced=%v err=%v", synced, err)
	}
	if len(metrics.rows) != 2 {
		t.Fatalf("Expected 2 records for one day, got %d", len(metrics.rows))
	}
	yesterday := health.DateKey(time.Now().AddDate(0, 0, -1))
	for key := range metrics.rows {
		if key != models.MetricSleep+"|"+yesterday && key != models.MetricSteps+"|"+yesterday {
			t.Errorf("Unexpected record key %q, want date %s", key, yesterday)
		}
	}
}

func TestReconciler_ResyncReplacesRecords(t *testing.T) {
	metrics := newMemMetrics()
	stamper := &memStamper{}
	r := newReconciler(&fullAdapter{name: "synthetic"}, &fakeAdapter{name: "fitness"}, &fakeAdapter{name: "device"},
		metrics, stamper, models.UserSettings{MockDataEnabled: true})

	if _, err := r.SyncYesterday(context.Background(), 1); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	first := len(metrics.rows)
	if _, err := r.SyncYesterday(context.Background(), 1); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	// Same keys, replaced in place: last writer wins.
	if len(metrics.rows) != first {
		t.Errorf("Expected %d records after resync, got %d", first, len(metrics.rows))
	}
}
