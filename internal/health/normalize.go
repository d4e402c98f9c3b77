package health

import (
	"math"
	"time"

	"vitalsin/internal/models"
)

// QualityForDuration derives the sleep quality tier from duration in hours.
func QualityForDuration(hours float64) string {
	switch {
	case hours >= 7:
		return models.QualityGood
	case hours >= 6:
		return models.QualityFair
	default:
		return models.QualityPoor
	}
}

func roundToDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

// Normalize converts one day's provider payload into canonical records: a
// sleep record when the day has sleep or cardiovascular data, and a steps
// record when it has a step count. An empty payload yields no records.
func Normalize(userID int, day time.Time, m PartialMetrics, source string, syncedAt time.Time) []models.HealthMetric {
	var out []models.HealthMetric
	day = StartOfDay(day)

	if m.SleepHours != nil || m.RestingHRBpm != nil || m.HRVMs != nil || m.ActiveCalories != nil {
		rec := models.HealthMetric{
			UserID:         userID,
			MetricType:     models.MetricSleep,
			LocalDate:      day,
			RestingHRBpm:   m.RestingHRBpm,
			HRVMs:          m.HRVMs,
			ActiveCalories: m.ActiveCalories,
			Source:         source,
			SyncedAt:       syncedAt,
		}
		if m.SleepHours != nil {
			hours := roundToDecimal(*m.SleepHours)
			rec.SleepHours = &hours
			quality := QualityForDuration(hours)
			if m.SleepQuality != nil {
				quality = *m.SleepQuality
			}
			rec.SleepQuality = &quality
		}
		out = append(out, rec)
	}

	if m.Steps != nil {
		out = append(out, models.HealthMetric{
			UserID:     userID,
			MetricType: models.MetricSteps,
			LocalDate:  day,
			Steps:      m.Steps,
			Source:     source,
			SyncedAt:   syncedAt,
		})
	}

	return out
}
