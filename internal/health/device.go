package health

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"vitalsin/internal/models"
)

// SampleReader is the slice of the sample store the device adapter needs.
type SampleReader interface {
	SamplesInRange(ctx context.Context, userID int, sampleType string, start, end time.Time) ([]models.DeviceSample, error)
}

// PermissionReader reports whether the user has granted device health sharing.
type PermissionReader interface {
	DeviceConnected(ctx context.Context, userID int) (bool, error)
}

// DeviceAdapter reads raw samples the mobile app uploaded from the OS health
// store and aggregates them per day. It requires the one-time sharing grant;
// until that grant exists the adapter reports unavailable.
type DeviceAdapter struct {
	samples     SampleReader
	permissions PermissionReader
	log         *zap.Logger
}

func NewDeviceAdapter(samples SampleReader, permissions PermissionReader, log *zap.Logger) *DeviceAdapter {
	return &DeviceAdapter{samples: samples, permissions: permissions, log: log}
}

func (a *DeviceAdapter) Name() string { return "device" }

func (a *DeviceAdapter) Available(ctx context.Context, userID int) bool {
	granted, err := a.permissions.DeviceConnected(ctx, userID)
	if err != nil {
		a.log.Warn("device permission probe failed", zap.Int("user_id", userID), zap.Error(err))
		return false
	}
	return granted
}

func (a *DeviceAdapter) FetchDay(ctx context.Context, userID int, day time.Time) (PartialMetrics, error) {
	start := StartOfDay(day)
	end := start.AddDate(0, 0, 1)

	var out PartialMetrics

	// Each sample type is fetched and reduced independently so one type's
	// failure leaves the others intact.
	if minutes, ok := a.sum(ctx, userID, models.SampleSleep, start, end); ok && minutes > 0 {
		hours := minutes / 60
		out.SleepHours = &hours
	}
	if steps, ok := a.sum(ctx, userID, models.SampleSteps, start, end); ok && steps > 0 {
		n := int(math.Round(steps))
		out.Steps = &n
	}
	if bpm, ok := a.mean(ctx, userID, models.SampleHeartRate, start, end); ok {
		n := int(math.Round(bpm))
		out.RestingHRBpm = &n
	}
	if ms, ok := a.mean(ctx, userID, models.SampleHRV, start, end); ok {
		n := int(math.Round(ms))
		out.HRVMs = &n
	}
	if kcal, ok := a.sum(ctx, userID, models.SampleActiveCals, start, end); ok && kcal > 0 {
		n := int(math.Round(kcal))
		out.ActiveCalories = &n
	}

	return out, nil
}

func (a *DeviceAdapter) FetchRange(ctx context.Context, userID int, start, endExclusive time.Time) (map[string]PartialMetrics, error) {
	out := map[string]PartialMetrics{}
	for d := StartOfDay(start); d.Before(endExclusive); d = d.AddDate(0, 0, 1) {
		m, err := a.FetchDay(ctx, userID, d)
		if err != nil {
			return nil, err
		}
		if m.Empty() {
			continue
		}
		out[DateKey(d)] = m
	}
	return out, nil
}

func (a *DeviceAdapter) sum(ctx context.Context, userID int, sampleType string, start, end time.Time) (float64, bool) {
	samples, err := a.samples.SamplesInRange(ctx, userID, sampleType, start, end)
	if err != nil {
		a.log.Warn("device sample fetch failed",
			zap.Int("user_id", userID), zap.String("sample_type", sampleType), zap.Error(err))
		return 0, false
	}
	if len(samples) == 0 {
		return 0, false
	}
	var total float64
	for _, s := range samples {
		total += s.Value
	}
	return total, true
}

func (a *DeviceAdapter) mean(ctx context.Context, userID int, sampleType string, start, end time.Time) (float64, bool) {
	samples, err := a.samples.SamplesInRange(ctx, userID, sampleType, start, end)
	if err != nil {
		a.log.Warn("device sample fetch failed",
			zap.Int("user_id", userID), zap.String("sample_type", sampleType), zap.Error(err))
		return 0, false
	}
	if len(samples) == 0 {
		return 0, false
	}
	var total float64
	for _, s := range samples {
		total += s.Value
	}
	return total / float64(len(samples)), true
}
