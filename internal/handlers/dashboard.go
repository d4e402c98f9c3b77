package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

type DashboardHandler struct {
	db *sqlx.DB
}

func NewDashboardHandler(db *sqlx.DB) *DashboardHandler { return &DashboardHandler{db: db} }

type trendPoint struct {
	LocalDate string   `json:"local_date"`
	Score     *float64 `json:"score"`
}

type dashboardResponse struct {
	ReferenceDate     string       `json:"reference_date"`
	HasTodayScore     bool         `json:"has_today_score"`
	AverageWeekScore  float64      `json:"average_week_score"`
	AverageMonthScore float64      `json:"average_month_score"`
	CheckInsThisWeek  int          `json:"check_ins_this_week"`
	CurrentStreakDays int          `json:"current_streak_days"`
	Last7DaysTrend    []trendPoint `json:"last7_days_trend"`
}

// Get aggregates score history to power the home screen.
// Accepts optional query param: local_date=YYYY-MM-DD to use as the user's "today".
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int)

	refDateStr := r.URL.Query().Get("local_date")
	var refDate time.Time
	var err error
	if refDateStr == "" {
		if err = h.db.QueryRowx("SELECT CURRENT_DATE").Scan(&refDate); err != nil {
			http.Error(w, "could not determine current date", http.StatusInternalServerError)
			return
		}
	} else {
		refDate, err = time.Parse("2006-01-02", refDateStr)
		if err != nil {
			http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	aggQuery := `
		SELECT
			COALESCE(AVG(score) FILTER (WHERE local_date >= date_trunc('week', $2::timestamp)::date AND local_date <= $2), 0) AS avg_week,
			COALESCE(AVG(score) FILTER (WHERE date_trunc('month', local_date) = date_trunc('month', $2::date)), 0) AS avg_month
		FROM energy_scores
		WHERE user_id = $1`
	var avgWeek, avgMonth float64
	if err := h.db.QueryRowx(aggQuery, userID, refDate).Scan(&avgWeek, &avgMonth); err != nil {
		http.Error(w, "could not fetch aggregates", http.StatusInternalServerError)
		return
	}

	var hasToday bool
	if err := h.db.QueryRowx(`SELECT EXISTS (SELECT 1 FROM energy_scores WHERE user_id=$1 AND local_date=$2)`, userID, refDate).Scan(&hasToday); err != nil {
		http.Error(w, "could not check today's score", http.StatusInternalServerError)
		return
	}

	var checkInsWeek int
	if err := h.db.QueryRowx(`SELECT COUNT(*) FROM check_ins WHERE user_id=$1 AND local_date >= date_trunc('week', $2::timestamp)::date AND local_date <= $2`, userID, refDate).Scan(&checkInsWeek); err != nil {
		http.Error(w, "could not count check-ins", http.StatusInternalServerError)
		return
	}

	// Consecutive days with a check-in, ending at the reference date.
	streakQuery := `
		WITH d AS (
			SELECT DISTINCT local_date FROM check_ins WHERE user_id=$1 AND local_date <= $2
		), g AS (
			SELECT local_date, local_date - (ROW_NUMBER() OVER (ORDER BY local_date))::int AS grp FROM d
		), c AS (
			SELECT COUNT(*) AS cnt, MAX(local_date) AS maxd FROM g GROUP BY grp
		)
		SELECT COALESCE((SELECT cnt FROM c WHERE maxd = $2), 0)`
	var streak int
	if err := h.db.QueryRowx(streakQuery, userID, refDate).Scan(&streak); err != nil {
		http.Error(w, "could not compute streak", http.StatusInternalServerError)
		return
	}

	trendRows, err := h.db.Queryx(`
		SELECT d::date AS local_date, e.score
		FROM generate_series($2::date - INTERVAL '6 days', $2::date, INTERVAL '1 day') AS d
		LEFT JOIN energy_scores e ON e.user_id=$1 AND e.local_date = d::date
		ORDER BY d`, userID, refDate)
	if err != nil {
		http.Error(w, "could not fetch trend", http.StatusInternalServerError)
		return
	}
	defer trendRows.Close()
	var trend []trendPoint
	for trendRows.Next() {
		var d time.Time
		var s *float64
		if err := trendRows.Scan(&d, &s); err == nil {
			trend = append(trend, trendPoint{LocalDate: d.Format("2006-01-02"), Score: s})
		}
	}

	resp := dashboardResponse{
		ReferenceDate:     refDate.Format("2006-01-02"),
		HasTodayScore:     hasToday,
		AverageWeekScore:  avgWeek,
		AverageMonthScore: avgMonth,
		CheckInsThisWeek:  checkInsWeek,
		CurrentStreakDays: streak,
		Last7DaysTrend:    trend,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
