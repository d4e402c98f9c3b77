package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"vitalsin/internal/models"
)

// ErrNotConnected means no fitness token is stored for the user.
var ErrNotConnected = errors.New("fitness provider not connected")

// refreshSafetyBuffer is how long before expiry a token is already treated as
// expired, so a request never goes out with a token about to lapse mid-call.
const refreshSafetyBuffer = 5 * time.Minute

// TokenStore persists the per-user fitness token triple.
type TokenStore interface {
	Get(ctx context.Context, userID int) (*models.FitnessToken, error)
	Save(ctx context.Context, tok models.FitnessToken) error
	Delete(ctx context.Context, userID int) error
}

// IsExpiringSoon reports whether the token expires within buffer of now.
func IsExpiringSoon(expiresAt, now time.Time, buffer time.Duration) bool {
	return !expiresAt.After(now.Add(buffer))
}

// FitnessAdapter reads daily sleep and activity summaries from the
// third-party fitness REST API using a stored OAuth token.
type FitnessAdapter struct {
	baseURL string
	oauth   *oauth2.Config
	tokens  TokenStore
	client  *http.Client
	log     *zap.Logger
	now     func() time.Time
}

func NewFitnessAdapter(baseURL string, oauth *oauth2.Config, tokens TokenStore, log *zap.Logger) *FitnessAdapter {
	return &FitnessAdapter{
		baseURL: baseURL,
		oauth:   oauth,
		tokens:  tokens,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
		now:     time.Now,
	}
}

func (a *FitnessAdapter) Name() string { return "fitness" }

// Available reports whether a token is on file. It never refreshes; a stale
// token still counts as connected and is refreshed on the first fetch.
func (a *FitnessAdapter) Available(ctx context.Context, userID int) bool {
	tok, err := a.tokens.Get(ctx, userID)
	if err != nil {
		a.log.Warn("fitness token lookup failed", zap.Int("user_id", userID), zap.Error(err))
		return false
	}
	return tok != nil
}

func (a *FitnessAdapter) FetchDay(ctx context.Context, userID int, day time.Time) (PartialMetrics, error) {
	tok, err := a.freshToken(ctx, userID)
	if err != nil {
		return PartialMetrics{}, err
	}

	var out PartialMetrics

	// The two summary endpoints are fetched sequentially; either one failing
	// just leaves its fields absent.
	if sleep, err := a.fetchSleep(ctx, tok.AccessToken, day); err != nil {
		a.log.Warn("fitness sleep fetch failed", zap.Int("user_id", userID),
			zap.String("date", DateKey(day)), zap.Error(err))
	} else if sleep.Summary.TotalMinutesAsleep > 0 {
		hours := float64(sleep.Summary.TotalMinutesAsleep) / 60
		out.SleepHours = &hours
	}

	if act, err := a.fetchActivity(ctx, tok.AccessToken, day); err != nil {
		a.log.Warn("fitness activity fetch failed", zap.Int("user_id", userID),
			zap.String("date", DateKey(day)), zap.Error(err))
	} else {
		if act.Summary.Steps > 0 {
			steps := act.Summary.Steps
			out.Steps = &steps
		}
		if act.Summary.RestingHeartRate > 0 {
			hr := act.Summary.RestingHeartRate
			out.RestingHRBpm = &hr
		}
		if act.Summary.ActivityCalories > 0 {
			kcal := act.Summary.ActivityCalories
			out.ActiveCalories = &kcal
		}
	}

	return out, nil
}

func (a *FitnessAdapter) FetchRange(ctx context.Context, userID int, start, endExclusive time.Time) (map[string]PartialMetrics, error) {
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

// freshToken returns a usable token, refreshing it first when it is inside
// the expiry safety buffer. A failed refresh clears the stored token so the
// client re-prompts for consent instead of retrying a dead refresh token.
func (a *FitnessAdapter) freshToken(ctx context.Context, userID int) (*models.FitnessToken, error) {
	tok, err := a.tokens.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, ErrNotConnected
	}
	if !IsExpiringSoon(tok.ExpiresAt, a.now(), refreshSafetyBuffer) {
		return tok, nil
	}

	refreshed, err := a.refresh(ctx, *tok)
	if err != nil {
		a.log.Warn("fitness token refresh failed; clearing stored token",
			zap.Int("user_id", userID), zap.Error(err))
		_ = a.tokens.Delete(ctx, userID)
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if err := a.tokens.Save(ctx, *refreshed); err != nil {
		return nil, err
	}
	return refreshed, nil
}

// refresh exchanges the current token for a new one; it never mutates the
// input and returns a fully new value.
func (a *FitnessAdapter) refresh(ctx context.Context, cur models.FitnessToken) (*models.FitnessToken, error) {
	stale := &oauth2.Token{
		AccessToken:  cur.AccessToken,
		RefreshToken: cur.RefreshToken,
		Expiry:       time.Unix(1, 0), // force the source to refresh
	}
	tok, err := a.oauth.TokenSource(ctx, stale).Token()
	if err != nil {
		return nil, err
	}

	next := models.FitnessToken{
		UserID:       cur.UserID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	// Providers may omit the refresh token when it is unchanged.
	if next.RefreshToken == "" {
		next.RefreshToken = cur.RefreshToken
	}
	return &next, nil
}

type sleepSummaryResponse struct {
	Summary struct {
		TotalMinutesAsleep int `json:"totalMinutesAsleep"`
		TotalSleepRecords  int `json:"totalSleepRecords"`
		TotalTimeInBed     int `json:"totalTimeInBed"`
	} `json:"summary"`
}

type activitySummaryResponse struct {
	Summary struct {
		Steps            int `json:"steps"`
		RestingHeartRate int `json:"restingHeartRate"`
		ActivityCalories int `json:"activityCalories"`
	} `json:"summary"`
}

func (a *FitnessAdapter) fetchSleep(ctx context.Context, accessToken string, day time.Time) (*sleepSummaryResponse, error) {
	url := fmt.Sprintf("%s/1/user/-/sleep/date/%s.json", a.baseURL, DateKey(day))
	var out sleepSummaryResponse
	if err := a.getJSON(ctx, url, accessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *FitnessAdapter) fetchActivity(ctx context.Context, accessToken string, day time.Time) (*activitySummaryResponse, error) {
	url := fmt.Sprintf("%s/1/user/-/activities/date/%s.json", a.baseURL, DateKey(day))
	var out activitySummaryResponse
	if err := a.getJSON(ctx, url, accessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *FitnessAdapter) getJSON(ctx context.Context, url, accessToken string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("fitness call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fitness call returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}
	return nil
}
