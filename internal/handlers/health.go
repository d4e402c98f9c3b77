package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"vitalsin/internal/health"
	"vitalsin/internal/models"
	"vitalsin/internal/store"
)

type HealthHandler struct {
	reconciler *health.Reconciler
	selector   *health.Selector
	metrics    *store.Metrics
	samples    *store.Samples
	settings   *store.Settings
}

func NewHealthHandler(reconciler *health.Reconciler, selector *health.Selector, metrics *store.Metrics, samples *store.Samples, settings *store.Settings) *HealthHandler {
	return &HealthHandler{
		reconciler: reconciler,
		selector:   selector,
		metrics:    metrics,
		samples:    samples,
		settings:   settings,
	}
}

// SyncNow syncs yesterday's metrics from the selected source. A quiet day or
// an unavailable source both come back as {"synced": false}; the client shows
// "no data found", never an error dialog.
func (h *HealthHandler) SyncNow(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	synced, err := h.reconciler.SyncYesterday(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not sync", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"synced": synced})
}

// SyncRange backfills the trailing 7 days, used on initial connection and
// manual "sync now".
func (h *HealthHandler) SyncRange(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	synced, err := h.reconciler.SyncRange(r.Context(), userID, 7)
	if err != nil {
		http.Error(w, "could not sync", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"synced": synced})
}

// ListMetrics returns canonical records in [start, end], defaulting to the
// trailing 7 days.
func (h *HealthHandler) ListMetrics(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	end := time.Now()
	start := end.AddDate(0, 0, -7)
	q := r.URL.Query()
	if s := q.Get("start"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			http.Error(w, "invalid start format; expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		start = parsed
	}
	if e := q.Get("end"); e != "" {
		parsed, err := time.Parse("2006-01-02", e)
		if err != nil {
			http.Error(w, "invalid end format; expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end = parsed
	}

	metrics, err := h.metrics.ListMetrics(r.Context(), userID, start, end)
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	out := make([]metricDTO, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, toMetricDTO(m))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Status reports the last successful sync time and which source a sync would
// use right now.
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	lastSync, err := h.metrics.LastSync(r.Context(), userID)
	if err != nil {
		http.Error(w, "could not fetch status", http.StatusInternalServerError)
		return
	}

	source := "none"
	if prefs, err := h.settings.Settings(r.Context(), userID); err == nil {
		if adapter, err := h.selector.Pick(r.Context(), userID, prefs); err == nil {
			source = adapter.Name()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"last_health_sync": toDateTimeStringPtr(lastSync),
		"source":           source,
	})
}

type sampleRequest struct {
	SampleType string    `json:"sample_type"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
}

func validSampleType(t string) bool {
	switch t {
	case models.SampleSleep, models.SampleSteps, models.SampleHeartRate, models.SampleHRV, models.SampleActiveCals:
		return true
	}
	return false
}

// IngestSamples accepts a batch of raw samples the mobile app read from the
// OS health store. These feed the device adapter on the next sync.
func (h *HealthHandler) IngestSamples(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	var body []sampleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body) == 0 {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	samples := make([]models.DeviceSample, 0, len(body))
	for _, s := range body {
		if !validSampleType(s.SampleType) || s.EndAt.Before(s.StartAt) || s.Value < 0 {
			http.Error(w, "invalid sample", http.StatusBadRequest)
			return
		}
		samples = append(samples, models.DeviceSample{
			UserID:     userID,
			SampleType: s.SampleType,
			StartAt:    s.StartAt,
			EndAt:      s.EndAt,
			Value:      s.Value,
			Unit:       s.Unit,
		})
	}

	if err := h.samples.Insert(r.Context(), samples); err != nil {
		http.Error(w, "could not save samples", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"accepted": len(samples)})
}
