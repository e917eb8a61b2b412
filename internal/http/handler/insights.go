package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pulselog/internal/auth"
	"pulselog/internal/event"
	"pulselog/internal/insight"
	"pulselog/internal/trend"
)

type InsightHandler struct {
	Agg    *insight.Aggregator
	Store  insight.Store
	Engine *trend.Engine
	Events *event.Service

	// Default window for GET /insights.
	WindowDays int
}

type refreshReq struct {
	Day *string `json:"day"` // YYYY-MM-DD, defaults to today
}

func (h *InsightHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var day time.Time
	if r.Body != nil && r.ContentLength != 0 {
		var req refreshReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Day != nil && strings.TrimSpace(*req.Day) != "" {
			d, err := event.ParseDay(strings.TrimSpace(*req.Day))
			if err != nil {
				http.Error(w, "invalid day (YYYY-MM-DD)", http.StatusBadRequest)
				return
			}
			day = d
		}
	}
	if day.IsZero() {
		// "Today" is the user's today, not the server's.
		day = h.Events.DayFor(r.Context(), uid, time.Now())
	}

	ins, err := h.Agg.AggregateDaily(r.Context(), uid, day)
	if err != nil {
		switch {
		case errors.Is(err, insight.ErrSourceUnavailable):
			http.Error(w, "event source unavailable", http.StatusServiceUnavailable)
		case errors.Is(err, insight.ErrPersistenceFailure):
			http.Error(w, "insight store unavailable", http.StatusBadGateway)
		case errors.Is(err, insight.ErrInvalidWindow):
			http.Error(w, "invalid window", http.StatusBadRequest)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"day":         event.FormatDay(ins.Day),
		"computed_at": ins.ComputedAt,
	})
}

// insightDTO mirrors DailyInsight with absent metrics omitted, never
// rendered as zero.
type insightDTO struct {
	Day string `json:"day"`

	SleepHours     *float64 `json:"sleep_hours,omitempty"`
	MoodScore      *float64 `json:"mood_score,omitempty"`
	HydrationML    *float64 `json:"hydration_ml,omitempty"`
	Steps          *int64   `json:"steps,omitempty"`
	CaffeineDrinks *int64   `json:"caffeine_drinks,omitempty"`
	WorkoutCount   *int64   `json:"workout_count,omitempty"`
	WorkoutMinutes *float64 `json:"workout_minutes,omitempty"`

	TaskCompletion      *float64 `json:"task_completion,omitempty"`
	SupplementAdherence *float64 `json:"supplement_adherence,omitempty"`

	TipsSeen             int64 `json:"tips_seen"`
	AchievementsUnlocked int64 `json:"achievements_unlocked"`

	ComputedAt     time.Time `json:"computed_at"`
	SourceRevision uint64    `json:"source_revision"`
}

func (h *InsightHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	days := h.WindowDays
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid days", http.StatusBadRequest)
			return
		}
		days = n
	}

	rows, err := h.Store.Recent(r.Context(), uid, days)
	if err != nil {
		if errors.Is(err, insight.ErrInvalidWindow) {
			http.Error(w, "invalid window", http.StatusBadRequest)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]insightDTO, 0, len(rows))
	for _, ins := range rows {
		out = append(out, insightDTO{
			Day:                  event.FormatDay(ins.Day),
			SleepHours:           ins.SleepHours,
			MoodScore:            ins.MoodScore,
			HydrationML:          ins.HydrationML,
			Steps:                ins.Steps,
			CaffeineDrinks:       ins.CaffeineDrinks,
			WorkoutCount:         ins.WorkoutCount,
			WorkoutMinutes:       ins.WorkoutMinutes,
			TaskCompletion:       ins.TaskCompletion,
			SupplementAdherence:  ins.SupplementAdherence,
			TipsSeen:             ins.TipsSeen,
			AchievementsUnlocked: ins.AchievementsUnlocked,
			ComputedAt:           ins.ComputedAt,
			SourceRevision:       ins.SourceRevision,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *InsightHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	suggestions, err := h.Engine.Suggestions(r.Context(), uid)
	if err != nil {
		if errors.Is(err, insight.ErrInvalidWindow) {
			http.Error(w, "invalid window", http.StatusBadRequest)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(suggestions)
}
