package health

import (
	"context"
	"math/rand"
	"time"
)

// SyntheticAdapter generates plausible bounded random metrics. It is always
// available and populates every field, which makes it useful for development
// and for exercising the full pipeline without a connected provider.
type SyntheticAdapter struct{}

func NewSyntheticAdapter() *SyntheticAdapter { return &SyntheticAdapter{} }

func (a *SyntheticAdapter) Name() string { return "synthetic" }

func (a *SyntheticAdapter) Available(ctx context.Context, userID int) bool { return true }

func (a *SyntheticAdapter) FetchDay(ctx context.Context, userID int, day time.Time) (PartialMetrics, error) {
	sleep := 6.0 + rand.Float64()*2.5          // [6.0, 8.5) hours
	steps := 5000 + rand.Intn(8000)            // [5000, 13000)
	hrv := 30 + rand.Intn(50)                  // [30, 80) ms
	restingHR := 55 + rand.Intn(20)            // [55, 75) bpm
	calories := 200 + rand.Intn(400)           // [200, 600) kcal

	return PartialMetrics{
		SleepHours:     &sleep,
		Steps:          &steps,
		HRVMs:          &hrv,
		RestingHRBpm:   &restingHR,
		ActiveCalories: &calories,
	}, nil
}

func (a *SyntheticAdapter) FetchRange(ctx context.Context, userID int, start, endExclusive time.Time) (map[string]PartialMetrics, error) {
	out := map[string]PartialMetrics{}
	for d := StartOfDay(start); d.Before(endExclusive); d = d.AddDate(0, 0, 1) {
		m, err := a.FetchDay(ctx, userID, d)
		if err != nil {
			return nil, err
		}
		out[DateKey(d)] = m
	}
	return out, nil
}
