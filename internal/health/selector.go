package health

import (
	"context"

	"vitalsin/internal/models"
)

// platformSupported reports whether the OS health store exists on the
// user's platform.
func platformSupported(platform string) bool {
	return platform == "ios" || platform == "android"
}

// Selector picks exactly one adapter per sync call. Priority: synthetic when
// test-data mode is on (overrides everything), then the fitness API when the
// user enabled it and it is reachable, then the device health store when the
// platform has one. Sources are never blended within one sync.
type Selector struct {
	synthetic Adapter
	fitness   Adapter
	device    Adapter
}

func NewSelector(synthetic, fitness, device Adapter) *Selector {
	return &Selector{synthetic: synthetic, fitness: fitness, device: device}
}

type candidate struct {
	adapter  Adapter
	eligible func() bool
}

// Pick is re-evaluated on every sync invocation; preferences can change
// between calls so nothing here is cached.
func (s *Selector) Pick(ctx context.Context, userID int, prefs models.UserSettings) (Adapter, error) {
	candidates := []candidate{
		{s.synthetic, func() bool {
			return prefs.MockDataEnabled
		}},
		{s.fitness, func() bool {
			return prefs.FitnessEnabled && s.fitness.Available(ctx, userID)
		}},
		{s.device, func() bool {
			return platformSupported(prefs.Platform) && s.device.Available(ctx, userID)
		}},
	}

	for _, c := range candidates {
		if c.eligible() {
			return c.adapter, nil
		}
	}
	return nil, ErrNoSource
}
