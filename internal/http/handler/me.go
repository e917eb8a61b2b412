package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pulselog/internal/auth"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type MeHandler struct {
	DB *gorm.DB
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"user_id": uid,
	})
}

type profileDTO struct {
	Timezone            string   `json:"timezone"`
	ExpectedSupplements []string `json:"expected_supplements"`
	DailyStepGoal       *int64   `json:"daily_step_goal,omitempty"`
	DailyHydrationML    *float64 `json:"daily_hydration_ml,omitempty"`
}

func (h *MeHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var p auth.Profile
	if err := h.DB.Where("user_id = ?", uid).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = auth.Profile{UserID: uid, Timezone: "UTC"}
		} else {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(profileDTO{
		Timezone:            p.Timezone,
		ExpectedSupplements: []string(p.ExpectedSupplements),
		DailyStepGoal:       p.DailyStepGoal,
		DailyHydrationML:    p.DailyHydrationML,
	})
}

func (h *MeHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req profileDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		http.Error(w, "invalid timezone", http.StatusBadRequest)
		return
	}

	supplements := make([]string, 0, len(req.ExpectedSupplements))
	for _, s := range req.ExpectedSupplements {
		s = strings.TrimSpace(s)
		if s != "" {
			supplements = append(supplements, s)
		}
	}

	p := auth.Profile{
		UserID:              uid,
		Timezone:            tz,
		ExpectedSupplements: pq.StringArray(supplements),
		DailyStepGoal:       req.DailyStepGoal,
		DailyHydrationML:    req.DailyHydrationML,
		UpdatedAt:           time.Now(),
	}
	if err := h.DB.Save(&p).Error; err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
