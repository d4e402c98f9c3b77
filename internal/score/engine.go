package score

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vitalsin/internal/models"
)

const (
	SourceRemote = "remote"
	SourceLocal  = "local"

	// TransientScoreID marks a locally computed score whose cache write
	// failed; the value is returned to the user but will not survive a
	// reload, and feedback cannot be attached to it.
	TransientScoreID = "transient"
)

// Result is what consumers of the engine see for one (user, date).
type Result struct {
	ID          string               `json:"id"`
	Score       float64              `json:"score"`
	Explanation string               `json:"explanation"`
	Actions     []models.ScoreAction `json:"actions"`
	Date        string               `json:"date"`
	Source      string               `json:"source"`
	Persisted   bool                 `json:"persisted"`
}

// CheckInReader loads the day's check-ins, the local heuristic's only input.
type CheckInReader interface {
	CheckInsByDate(ctx context.Context, userID int, day time.Time) ([]models.CheckIn, error)
}

// Store caches computed scores keyed (user, date). Upsert is idempotent and
// returns the id the row ended up with, which on conflict is the one already
// stored, not the candidate's.
type Store interface {
	UpsertScore(ctx context.Context, s models.EnergyScore) (string, error)
}

// Engine computes the daily energy score: remote first under a deadline, then
// the local heuristic. It never returns an error across its public boundary
// for routine unavailability; "no score yet" is a nil Result.
type Engine struct {
	remote       *RemoteClient
	checkIns     CheckInReader
	scores       Store
	timeout      time.Duration
	regenTimeout time.Duration
	log          *zap.Logger
	now          func() time.Time
}

func NewEngine(remote *RemoteClient, checkIns CheckInReader, scores Store, timeout, regenTimeout time.Duration, log *zap.Logger) *Engine {
	return &Engine{
		remote:       remote,
		checkIns:     checkIns,
		scores:       scores,
		timeout:      timeout,
		regenTimeout: regenTimeout,
		log:          log,
		now:          time.Now,
	}
}

// TodayScore returns today's score, computing and caching it when needed.
func (e *Engine) TodayScore(ctx context.Context, userID int, bearer string) *Result {
	return e.compute(ctx, userID, bearer, false)
}

// Regenerate always re-attempts the remote path first, with the longer
// deadline, to force fresh generation over any cached explanation.
func (e *Engine) Regenerate(ctx context.Context, userID int, bearer string) *Result {
	return e.compute(ctx, userID, bearer, true)
}

func (e *Engine) compute(ctx context.Context, userID int, bearer string, regenerate bool) *Result {
	if userID <= 0 || bearer == "" {
		// Unauthenticated short-circuits both paths.
		return nil
	}

	timeout := e.timeout
	if regenerate {
		timeout = e.regenTimeout
	}
	remoteCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := e.remote.ComputeToday(remoteCtx, bearer, regenerate)
	if err == nil {
		// The remote result is authoritative and already cached server-side.
		return result
	}
	e.log.Warn("remote score unavailable, falling back to local",
		zap.Int("user_id", userID), zap.Error(err))

	return e.computeLocal(ctx, userID)
}

func (e *Engine) computeLocal(ctx context.Context, userID int) *Result {
	today := startOfDay(e.now())

	checkIns, err := e.checkIns.CheckInsByDate(ctx, userID, today)
	if err != nil {
		e.log.Warn("could not load check-ins", zap.Int("user_id", userID), zap.Error(err))
		return nil
	}
	if len(checkIns) == 0 {
		// Nothing to score yet; not an error.
		return nil
	}

	value, explanation, actions := ComputeLocal(FlattenCheckIns(checkIns))

	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		actionsJSON = []byte("[]")
	}
	record := models.EnergyScore{
		ID:          uuid.NewString(),
		UserID:      userID,
		LocalDate:   today,
		Score:       value,
		Explanation: explanation,
		Actions:     actionsJSON,
		CreatedAt:   e.now(),
	}

	result := &Result{
		Score:       value,
		Explanation: explanation,
		Actions:     actions,
		Date:        today.Format("2006-01-02"),
		Source:      SourceLocal,
		Persisted:   true,
	}

	// The store keeps the original row id when the day already has a score,
	// so the id handed to the client must be the one the upsert reports.
	persistedID, err := e.scores.UpsertScore(ctx, record)
	if err != nil {
		// The user still gets a value; it just will not survive a reload.
		e.log.Warn("score upsert failed, returning transient result",
			zap.Int("user_id", userID), zap.Error(err))
		result.ID = TransientScoreID
		result.Persisted = false
		return result
	}
	result.ID = persistedID

	return result
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
