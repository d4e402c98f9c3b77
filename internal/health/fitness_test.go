package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"vitalsin/internal/health"
	"vitalsin/internal/models"
)

type fakeTokenStore struct {
	tok     *models.FitnessToken
	saved   []models.FitnessToken
	deletes int
	getErr  error
}

func (f *fakeTokenStore) Get(ctx context.Context, userID int) (*models.FitnessToken, error) {
	return f.tok, f.getErr
}

func (f *fakeTokenStore) Save(ctx context.Context, tok models.FitnessToken) error {
	f.saved = append(f.saved, tok)
	f.tok = &tok
	return nil
}

func (f *fakeTokenStore) Delete(ctx context.Context, userID int) error {
	f.deletes++
	f.tok = nil
	return nil
}

func TestIsExpiringSoon(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	buffer := 5 * time.Minute

	cases := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"already expired", now.Add(-time.Hour), true},
		{"inside the buffer", now.Add(2 * time.Minute), true},
		{"exactly at the buffer edge", now.Add(buffer), true},
		{"just beyond the buffer", now.Add(buffer + time.Second), false},
		{"far in the future", now.Add(time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := health.IsExpiringSoon(tc.expiresAt, now, buffer); got != tc.want {
				t.Errorf("IsExpiringSoon(%v) = %v, want %v", tc.expiresAt, got, tc.want)
			}
		})
	}
}

func TestFitnessAdapter_Available(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	connected := health.NewFitnessAdapter("http://unused", &oauth2.Config{}, &fakeTokenStore{
		tok: &models.FitnessToken{UserID: 1, AccessToken: "a"},
	}, log)
	if !connected.Available(ctx, 1) {
		t.Error("Expected available with a stored token")
	}

	// A stale token still counts as connected; refresh happens on fetch.
	stale := health.NewFitnessAdapter("http://unused", &oauth2.Config{}, &fakeTokenStore{
		tok: &models.FitnessToken{UserID: 1, AccessToken: "a", ExpiresAt: time.Now().Add(-time.Hour)},
	}, log)
	if !stale.Available(ctx, 1) {
		t.Error("Expected available with an expired token")
	}

	empty := health.NewFitnessAdapter("http://unused", &oauth2.Config{}, &fakeTokenStore{}, log)
	if empty.Available(ctx, 1) {
		t.Error("Expected unavailable without a token")
	}

	broken := health.NewFitnessAdapter("http://unused", &oauth2.Config{}, &fakeTokenStore{
		getErr: errors.New("db down"),
	}, log)
	if broken.Available(ctx, 1) {
		t.Error("Expected unavailable when the store errors")
	}
}

func freshStore() *fakeTokenStore {
	return &fakeTokenStore{tok: &models.FitnessToken{
		UserID:       1,
		AccessToken:  "live-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour),
	}}
}

func TestFitnessAdapter_FetchDayMapsBothSummaries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer live-token" {
			t.Errorf("Unexpected auth header %q", got)
		}
		switch {
		case strings.Contains(r.URL.Path, "/sleep/"):
			w.Write([]byte(`{"summary": {"totalMinutesAsleep": 432, "totalSleepRecords": 1, "totalTimeInBed": 470}}`))
		case strings.Contains(r.URL.Path, "/activities/"):
			w.Write([]byte(`{"summary": {"steps": 10500, "restingHeartRate": 58, "activityCalories": 420}}`))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	a := health.NewFitnessAdapter(srv.URL, &oauth2.Config{}, freshStore(), zap.NewNop())
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	m, err := a.FetchDay(context.Background(), 1, day)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m.SleepHours == nil || *m.SleepHours != 7.2 {
		t.Errorf("Expected 432 minutes as 7.2 hours, got %v", m.SleepHours)
	}
	if m.Steps == nil || *m.Steps != 10500 {
		t.Errorf("Expected 10500 steps, got %v", m.Steps)
	}
	if m.RestingHRBpm == nil || *m.RestingHRBpm != 58 {
		t.Errorf("Expected resting hr 58, got %v", m.RestingHRBpm)
	}
	if m.ActiveCalories == nil || *m.ActiveCalories != 420 {
		t.Errorf("Expected 420 calories, got %v", m.ActiveCalories)
	}
}

func TestFitnessAdapter_EndpointFailureLeavesFieldsAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/sleep/") {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"summary": {"steps": 4000}}`))
	}))
	defer srv.Close()

	a := health.NewFitnessAdapter(srv.URL, &oauth2.Config{}, freshStore(), zap.NewNop())

	m, err := a.FetchDay(context.Background(), 1, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("One endpoint failing must not fail the fetch: %v", err)
	}
	if m.SleepHours != nil {
		t.Errorf("Expected sleep absent after endpoint failure, got %v", m.SleepHours)
	}
	if m.Steps == nil || *m.Steps != 4000 {
		t.Errorf("Expected steps from the surviving endpoint, got %v", m.Steps)
	}
}

func TestFitnessAdapter_ExpiredTokenIsRefreshedAndSaved(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "new-token", "token_type": "Bearer", "expires_in": 3600}`))
	}))
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer new-token" {
			t.Errorf("Expected the refreshed token on the wire, got %q", got)
		}
		w.Write([]byte(`{"summary": {}}`))
	}))
	defer apiSrv.Close()

	store := &fakeTokenStore{tok: &models.FitnessToken{
		UserID:       1,
		AccessToken:  "old-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}}
	cfg := &oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: tokenSrv.URL}}
	a := health.NewFitnessAdapter(apiSrv.URL, cfg, store, zap.NewNop())

	if _, err := a.FetchDay(context.Background(), 1, time.Now().AddDate(0, 0, -1)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("Expected the refreshed token to be saved once, got %d saves", len(store.saved))
	}
	saved := store.saved[0]
	if saved.AccessToken != "new-token" {
		t.Errorf("Expected new access token persisted, got %q", saved.AccessToken)
	}
	// Provider omitted the refresh token, so the old one must be kept.
	if saved.RefreshToken != "refresh-token" {
		t.Errorf("Expected the prior refresh token carried forward, got %q", saved.RefreshToken)
	}
	if saved.UserID != 1 {
		t.Errorf("Expected token bound to user 1, got %d", saved.UserID)
	}
}

func TestFitnessAdapter_RefreshFailureClearsToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors": [{"errorType": "invalid_grant"}]}`, http.StatusBadRequest)
	}))
	defer tokenSrv.Close()

	store := &fakeTokenStore{tok: &models.FitnessToken{
		UserID:       1,
		AccessToken:  "old-token",
		RefreshToken: "dead-refresh",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}}
	cfg := &oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: tokenSrv.URL}}
	a := health.NewFitnessAdapter("http://unused", cfg, store, zap.NewNop())

	_, err := a.FetchDay(context.Background(), 1, time.Now().AddDate(0, 0, -1))
	if err == nil {
		t.Fatal("Expected an error when the refresh is rejected")
	}
	if store.deletes != 1 {
		t.Errorf("Expected the dead token cleared exactly once, got %d deletes", store.deletes)
	}
	if len(store.saved) != 0 {
		t.Error("Nothing should be saved after a failed refresh")
	}
}

func TestFitnessAdapter_FetchDayWithoutToken(t *testing.T) {
	a := health.NewFitnessAdapter("http://unused", &oauth2.Config{}, &fakeTokenStore{}, zap.NewNop())
	_, err := a.FetchDay(context.Background(), 1, time.Now().AddDate(0, 0, -1))
	if !errors.Is(err, health.ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}
