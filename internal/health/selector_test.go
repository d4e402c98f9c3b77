package health_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"vitalsin/internal/health"
	"vitalsin/internal/models"
)

type fakeAdapter struct {
	name      string
	available bool
	data      map[string]health.PartialMetrics
	fetchErr  error
}

func (f *fakeAdapter) Name() string                                    { return f.name }
func (f *fakeAdapter) Available(ctx context.Context, userID int) bool  { return f.available }

func (f *fakeAdapter) FetchDay(ctx context.Context, userID int, day time.Time) (health.PartialMetrics, error) {
	if f.fetchErr != nil {
		return health.PartialMetrics{}, f.fetchErr
	}
	return f.data[health.DateKey(day)], nil
}

func (f *fakeAdapter) FetchRange(ctx context.Context, userID int, start, end time.Time) (map[string]health.PartialMetrics, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := map[string]health.PartialMetrics{}
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if m, ok := f.data[health.DateKey(d)]; ok {
			out[health.DateKey(d)] = m
		}
	}
	return out, nil
}

func TestSelector_PriorityOrder(t *testing.T) {
	cases := []struct {
		name        string
		mock        bool
		fitnessOn   bool
		fitnessOK   bool
		platform    string
		deviceOK    bool
		want        string
		wantNoPick  bool
	}{
		{name: "mock overrides everything", mock: true, fitnessOn: true, fitnessOK: true, platform: "ios", deviceOK: true, want: "synthetic"},
		{name: "fitness when enabled and available", fitnessOn: true, fitnessOK: true, platform: "ios", deviceOK: true, want: "fitness"},
		{name: "fitness enabled but unavailable falls through", fitnessOn: true, fitnessOK: false, platform: "ios", deviceOK: true, want: "device"},
		{name: "device on supported platform", platform: "android", deviceOK: true, want: "device"},
		{name: "device needs the permission grant", platform: "ios", deviceOK: false, wantNoPick: true},
		{name: "unsupported platform has no device store", platform: "other", deviceOK: true, wantNoPick: true},
		{name: "nothing configured", platform: "other", wantNoPick: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			selector := health.NewSelector(
				&fakeAdapter{name: "synthetic", available: true},
				&fakeAdapter{name: "fitness", available: tc.fitnessOK},
				&fakeAdapter{name: "device", available: tc.deviceOK},
			)
			prefs := models.UserSettings{
				MockDataEnabled: tc.mock,
				FitnessEnabled:  tc.fitnessOn,
				Platform:        tc.platform,
			}

			adapter, err := selector.Pick(context.Background(), 1, prefs)

			if tc.wantNoPick {
				if !errors.Is(err, health.ErrNoSource) {
					t.Fatalf("Expected ErrNoSource, got adapter=%v err=%v", adapter, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if adapter.Name() != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, adapter.Name())
			}
		})
	}
}

func TestSelector_Deterministic(t *testing.T) {
	selector := health.NewSelector(
		&fakeAdapter{name: "synthetic", available: true},
		&fakeAdapter{name: "fitness", available: true},
		&fakeAdapter{name: "device", available: true},
	)
	prefs := models.UserSettings{FitnessEnabled: true, Platform: "ios"}

	for i := 0; i < 10; i++ {
		adapter, err := selector.Pick(context.Background(), 1, prefs)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if adapter.Name() != "fitness" {
			t.Fatalf("Pick %d: expected fitness, got %q", i, adapter.Name())
		}
	}
}
