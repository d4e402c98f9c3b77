package health

import (
	"context"
	"errors"
	"time"
)

// ErrNoSource is returned by the selector when no adapter can serve a sync.
var ErrNoSource = errors.New("no health data source available")

// PartialMetrics is what a provider reports for one calendar day. Every field
// is optional; an adapter leaves absent what it does not have and never
// substitutes zero values.
type PartialMetrics struct {
	SleepHours     *float64
	SleepQuality   *string
	Steps          *int
	HRVMs          *int
	RestingHRBpm   *int
	ActiveCalories *int
}

// Empty reports whether no field is populated.
func (m PartialMetrics) Empty() bool {
	return m.SleepHours == nil && m.SleepQuality == nil && m.Steps == nil &&
		m.HRVMs == nil && m.RestingHRBpm == nil && m.ActiveCalories == nil
}

// Adapter is the uniform read contract every health-data provider implements.
// Dates are calendar days; the map keys of FetchRange are DateKey strings.
// Adapter calls may fail on transport errors, but a provider having only some
// fields for a day is normal and is not an error.
type Adapter interface {
	Name() string
	// Available probes capability and permission without side effects.
	Available(ctx context.Context, userID int) bool
	FetchDay(ctx context.Context, userID int, day time.Time) (PartialMetrics, error)
	// FetchRange covers [start, endExclusive); days the provider has nothing
	// for are simply absent from the result.
	FetchRange(ctx context.Context, userID int, start, endExclusive time.Time) (map[string]PartialMetrics, error)
}

// DateKey formats a calendar day the way it is keyed throughout the service.
func DateKey(t time.Time) string { return t.Format("2006-01-02") }

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
