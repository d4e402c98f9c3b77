package score

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"vitalsin/internal/models"
)

// RemoteClient calls the AI-augmented scoring endpoint. Any non-2xx status,
// transport error, parse failure or missing field is one and the same to the
// engine: the remote path failed and the local heuristic takes over.
type RemoteClient struct {
	baseURL string
	client  *http.Client
}

func NewRemoteClient(baseURL string) *RemoteClient {
	return &RemoteClient{baseURL: baseURL, client: &http.Client{}}
}

type remoteResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		ID          string               `json:"id"`
		Score       float64              `json:"score"`
		Explanation string               `json:"explanation"`
		Actions     []models.ScoreAction `json:"actions"`
		Date        string               `json:"date"`
	} `json:"data"`
}

// ComputeToday requests today's score for the authenticated user. The server
// resolves "today" and caches its own result; this client never re-caches.
func (c *RemoteClient) ComputeToday(ctx context.Context, bearer string, regenerate bool) (*Result, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("remote scoring not configured")
	}

	url := c.baseURL + "/v1/energy-score/today"
	if regenerate {
		url += "?regenerate=true"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote score call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("remote score returned status %d", resp.StatusCode)
	}

	var body remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode remote score response: %w", err)
	}
	if !body.Success || body.Data == nil {
		return nil, fmt.Errorf("remote score reported failure")
	}
	if body.Data.ID == "" || body.Data.Date == "" || body.Data.Explanation == "" {
		return nil, fmt.Errorf("remote score response missing required fields")
	}
	if body.Data.Score < 1 || body.Data.Score > 10 {
		return nil, fmt.Errorf("remote score %v out of range", body.Data.Score)
	}

	return &Result{
		ID:          body.Data.ID,
		Score:       body.Data.Score,
		Explanation: body.Data.Explanation,
		Actions:     body.Data.Actions,
		Date:        body.Data.Date,
		Source:      SourceRemote,
		Persisted:   true,
	}, nil
}
